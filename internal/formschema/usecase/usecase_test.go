package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/category/categorytest"
	categoryUC "github.com/fekuna/omnipos-marketplace-service/internal/category/usecase"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema"
	"github.com/fekuna/omnipos-marketplace-service/internal/formschema/formschematest"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// VEHICLES > CARS > SEDAN, plus an empty BIKES leaf and an inactive TRUCKS.
func newFixture(t *testing.T) (*formschematest.MemoryRepository, formschema.UseCase) {
	t.Helper()
	cats := categorytest.NewMemoryRepository()
	cats.Add("v", "VEHICLES", "", 1)
	cats.Add("c", "CARS", "v", 1)
	cats.Add("s", "SEDAN", "c", 1)
	cats.Add("b", "BIKES", "v", 2)
	cats.Add("t", "TRUCKS", "v", 3)
	cats.SetActive("t", false)

	schemas := formschematest.NewMemoryRepository(cats)
	schemas.Put("s", true,
		model.FieldDefinition{Name: "brand", Label: "Brand", Type: model.FieldText, Required: true, Order: 1},
		model.FieldDefinition{Name: "year", Label: "Year", Type: model.FieldNumber, Order: 2},
	)
	schemas.Put("c", true, model.FieldDefinition{Name: "x", Type: model.FieldText})
	schemas.Put("t", true, model.FieldDefinition{Name: "x", Type: model.FieldText})

	nav := categoryUC.NewCategoryUseCase(cats, 5, logger.NewNop())
	return schemas, NewFormSchemaUseCase(schemas, nav, logger.NewNop())
}

func TestGetSchema(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()

	schema, err := uc.GetSchema(ctx, "SEDAN")
	require.NoError(t, err)
	assert.Equal(t, "SEDAN", schema.CategoryCode)
	require.Len(t, schema.Fields, 2)
	assert.Equal(t, "brand", schema.Fields[0].Name)

	_, err = uc.GetSchema(ctx, "CARS")
	assert.True(t, apperror.IsCode(err, apperror.CodeNotLeafCategory))

	_, err = uc.GetSchema(ctx, "BIKES")
	assert.True(t, apperror.IsCode(err, apperror.CodeSchemaNotConfigured))

	_, err = uc.GetSchema(ctx, "NOPE")
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))

	_, err = uc.GetSchema(ctx, "TRUCKS")
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestInactiveSchemaIsNotConfigured(t *testing.T) {
	schemas, uc := newFixture(t)
	schemas.Put("b", false, model.FieldDefinition{Name: "x", Type: model.FieldText})

	_, err := uc.GetSchema(context.Background(), "BIKES")
	assert.True(t, apperror.IsCode(err, apperror.CodeSchemaNotConfigured))
}

func TestValidateSubmission(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()

	out, err := uc.ValidateSubmission(ctx, "SEDAN", map[string]interface{}{"brand": "Acme", "color": "red"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"brand": "Acme"}, out)

	_, err = uc.ValidateSubmission(ctx, "SEDAN", map[string]interface{}{"year": "soon"})
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"brand": "Brand is required",
		"year":  "Year must be a number",
	}, e.Fields)

	_, err = uc.ValidateSubmission(ctx, "CARS", map[string]interface{}{"x": "y"})
	assert.True(t, apperror.IsCode(err, apperror.CodeNotLeafCategory))
}

func TestReplaceSchema(t *testing.T) {
	schemas, uc := newFixture(t)
	ctx := context.Background()

	resp, err := uc.ReplaceSchema(ctx, "BIKES", []model.FieldDefinition{
		{Name: "gears", Type: model.FieldNumber, Order: 2},
		{Name: " frame ", Type: model.FieldSelect, Order: 1},
		{Name: "bell", Type: model.FieldCheckbox, Order: 2},
	})
	require.NoError(t, err)
	require.Len(t, resp.Fields, 3)
	assert.Equal(t, "frame", resp.Fields[0].Name)
	assert.Equal(t, "frame", resp.Fields[0].Label)
	assert.Equal(t, "gears", resp.Fields[1].Name, "stable for equal order")
	assert.Equal(t, "bell", resp.Fields[2].Name)

	stored, err := schemas.FindByCategoryID(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsActive)

	got, err := uc.GetSchema(ctx, "BIKES")
	require.NoError(t, err)
	assert.Len(t, got.Fields, 3)
}

func TestReplaceSchemaKeepsID(t *testing.T) {
	_, uc := newFixture(t)

	resp, err := uc.ReplaceSchema(context.Background(), "SEDAN", []model.FieldDefinition{{Name: "vin", Type: model.FieldText}})
	require.NoError(t, err)
	assert.Equal(t, "schema-s", resp.ID)
	assert.Len(t, resp.Fields, 1)
}

func TestReplaceSchemaRejectsBadFields(t *testing.T) {
	_, uc := newFixture(t)

	_, err := uc.ReplaceSchema(context.Background(), "BIKES", []model.FieldDefinition{
		{Name: "a", Type: model.FieldText},
		{Name: "a", Type: model.FieldText},
		{Name: "", Type: model.FieldText},
		{Name: "c", Type: "slider"},
	})
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, e.Code)
	assert.Len(t, e.Fields, 3)
	assert.Contains(t, e.Fields["fields[1]"], "duplicate")

	_, err = uc.ReplaceSchema(context.Background(), "NOPE", nil)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestListCategoriesWithForms(t *testing.T) {
	_, uc := newFixture(t)

	list, err := uc.ListCategoriesWithForms(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "CARS", list[0].Code)
	assert.Equal(t, "SEDAN", list[1].Code)
	assert.True(t, list[0].HasForm)
}
