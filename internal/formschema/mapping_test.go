package formschema

import (
	"testing"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromExternalTypes(t *testing.T) {
	tests := []struct {
		name string
		item map[string]interface{}
		want model.FieldType
	}{
		{"select", map[string]interface{}{"type": "SELECT"}, model.FieldSelect},
		{"date lower", map[string]interface{}{"type": " date "}, model.FieldDate},
		{"file", map[string]interface{}{"type": "FILE"}, model.FieldFile},
		{"input number", map[string]interface{}{"type": "INPUT", "is_number": true}, model.FieldNumber},
		{"input textarea", map[string]interface{}{"type": "INPUT", "is_text_area": true}, model.FieldTextarea},
		{"number wins over textarea", map[string]interface{}{"type": "INPUT", "is_number": true, "is_text_area": true}, model.FieldNumber},
		{"plain input", map[string]interface{}{"type": "INPUT"}, model.FieldText},
		{"unknown", map[string]interface{}{"type": "SLIDER"}, model.FieldText},
		{"missing", map[string]interface{}{}, model.FieldText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromExternal(tt.item, 0).Type)
		})
	}
}

func TestFromExternalDefaultsAndExtras(t *testing.T) {
	f := FromExternal(map[string]interface{}{
		"type":          "SELECT",
		"is_required":   "Y",
		"place_holder":  "  pick one ",
		"options":       []interface{}{map[string]interface{}{"value": "new", "label": "New"}, "junk"},
		"min_date":      "2000-01-01",
		"ui_type":       nil,
		"default_value": "new",
		"unknown_key":   1,
	}, 3)

	assert.Equal(t, "field_3", f.Name)
	assert.Equal(t, "field_3", f.Label)
	assert.Equal(t, 4, f.Order)
	assert.True(t, f.Required)
	assert.Equal(t, "pick one", f.Placeholder)
	assert.Equal(t, []model.FieldOption{{Value: "new", Label: "New"}}, f.Options)
	assert.Equal(t, "new", f.Default)
	assert.Equal(t, map[string]interface{}{"min_date": "2000-01-01"}, f.Extra)
}

func TestParseExternalFields(t *testing.T) {
	fields := ParseExternalFields(`[{"field_id":"brand","label":"Brand","type":"INPUT","is_required":true},42,{"field_id":"year","type":"INPUT","is_number":true}]`)
	require.Len(t, fields, 2)
	assert.Equal(t, "brand", fields[0].Name)
	assert.Equal(t, 1, fields[0].Order)
	assert.Equal(t, "year", fields[1].Name)
	assert.Equal(t, 3, fields[1].Order, "order follows source position")

	assert.Nil(t, ParseExternalFields("not json"))
	assert.Nil(t, ParseExternalFields(""))
	assert.Nil(t, ParseExternalFields(map[string]interface{}{}))
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool(nil, true))
	assert.False(t, ParseBool(nil, false))
	assert.True(t, ParseBool("yes", false))
	assert.True(t, ParseBool(" t ", false))
	assert.False(t, ParseBool("FALSE", true))
	assert.True(t, ParseBool(1.0, false))
	assert.False(t, ParseBool(0.0, true))
	assert.True(t, ParseBool(true, false))
}
