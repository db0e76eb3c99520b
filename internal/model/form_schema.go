package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
	FieldFile     FieldType = "file"
	FieldURL      FieldType = "url"
	FieldEmail    FieldType = "email"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldTextarea, FieldSelect, FieldRadio,
		FieldCheckbox, FieldDate, FieldFile, FieldURL, FieldEmail:
		return true
	}
	return false
}

type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldValidation holds the constraints the backend enforces. Min and Max are
// numeric bounds, the rest apply to string values.
type FieldValidation struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	Regex     string   `json:"regex,omitempty"`
}

type FieldDefinition struct {
	Name        string           `json:"field_name"`
	Label       string           `json:"field_label"`
	Type        FieldType        `json:"field_type"`
	Required    bool             `json:"is_required"`
	Order       int              `json:"order"`
	Placeholder string           `json:"placeholder,omitempty"`
	Default     interface{}      `json:"default_value,omitempty"`
	Options     []FieldOption    `json:"options,omitempty"`
	Validation  *FieldValidation `json:"validation,omitempty"`
	// Extra is passed through to the form renderer untouched.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

func (f FieldDefinition) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// FieldList is the JSONB column holding a schema's ordered fields.
type FieldList []FieldDefinition

func (l FieldList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *FieldList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = FieldList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("field list: unsupported type %T", src)
	}
	return json.Unmarshal(data, l)
}

type FormSchema struct {
	BaseModel
	CategoryID string    `db:"category_id" json:"category_id"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	Fields     FieldList `db:"fields" json:"fields"`
}
