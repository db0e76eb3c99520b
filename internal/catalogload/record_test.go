package catalogload

import (
	"testing"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRejectsNonArrayRoot(t *testing.T) {
	_, _, err := Parse([]byte(`{"category_code": "X"}`))
	assert.Error(t, err)

	_, _, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseNormalizesRows(t *testing.T) {
	records, warnings, err := Parse([]byte(`[
		"junk",
		{"name": "No code"},
		{"category_code": "  CNC  ", "parent_category_code": " LATHES ", "order": "2",
		 "description": "  ", "image_url": " https://img/cnc.png ", "is_active": "FALSE",
		 "category_fields_config": "[{\"field_id\": \"spindle\", \"type\": \"INPUT\", \"is_number\": true, \"is_required\": \"TRUE\"}]"},
		{"category_code": "LATHES", "name": "Lathes", "order": 1.0, "parent_category_code": null,
		 "category_fields_config": []},
		{"category_code": "PUMPS", "order": "first", "category_fields_config": "   "}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Len(t, warnings, 3)

	cnc := records[0]
	assert.Equal(t, "CNC", cnc.Code)
	assert.Equal(t, "CNC", cnc.Name, "name defaults to the code")
	assert.Equal(t, "LATHES", cnc.ParentCode)
	assert.Equal(t, 2, cnc.Order)
	assert.Nil(t, cnc.Description)
	require.NotNil(t, cnc.ImageURL)
	assert.Equal(t, "https://img/cnc.png", *cnc.ImageURL)
	assert.False(t, cnc.IsActive)
	assert.True(t, cnc.HasForm)
	require.Len(t, cnc.Fields, 1)
	assert.Equal(t, model.FieldNumber, cnc.Fields[0].Type)
	assert.True(t, cnc.Fields[0].Required)

	lathes := records[1]
	assert.Equal(t, "", lathes.ParentCode)
	assert.Equal(t, 1, lathes.Order)
	assert.True(t, lathes.IsActive, "missing is_active means active")
	assert.True(t, lathes.HasForm, "an empty list is still a form config")
	assert.Empty(t, lathes.Fields)

	pumps := records[2]
	assert.Equal(t, 0, pumps.Order)
	assert.False(t, pumps.HasForm)
}
