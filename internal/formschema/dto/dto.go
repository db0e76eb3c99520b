package dto

import "github.com/fekuna/omnipos-marketplace-service/internal/model"

type SchemaResponse struct {
	ID           string                  `json:"id"`
	CategoryCode string                  `json:"category_code"`
	CategoryName string                  `json:"category_name"`
	IsActive     bool                    `json:"is_active"`
	Fields       []model.FieldDefinition `json:"fields"`
}

func NewSchemaResponse(cat *model.Category, schema *model.FormSchema) *SchemaResponse {
	fields := []model.FieldDefinition(schema.Fields)
	if fields == nil {
		fields = []model.FieldDefinition{}
	}
	return &SchemaResponse{
		ID:           schema.ID,
		CategoryCode: cat.Code,
		CategoryName: cat.Name,
		IsActive:     schema.IsActive,
		Fields:       fields,
	}
}

type CategoryWithForm struct {
	Code        string  `json:"category_code"`
	Name        string  `json:"category_name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	HasForm     bool    `json:"has_form"`
}

type ReplaceSchemaInput struct {
	Fields []model.FieldDefinition `json:"fields"`
}

type ValidateInput struct {
	Data map[string]interface{} `json:"data"`
}
