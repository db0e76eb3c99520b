package formschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

// passthroughKeys are copied verbatim into FieldDefinition.Extra for the form
// renderer. default_value is lifted into FieldDefinition.Default instead.
var passthroughKeys = []string{
	"validation_regexs", "min_date", "max_date", "suffix_value",
	"prefix_value", "ui_type", "relevant_condition",
	"max_file_size", "is_pdf", "is_future_date_allowed",
}

// FromExternal maps one field of the catalog dump format onto a
// FieldDefinition. index is the field's position in its list.
func FromExternal(item map[string]interface{}, index int) model.FieldDefinition {
	name := trimmed(item["field_id"])
	if name == "" {
		name = fmt.Sprintf("field_%d", index)
	}
	label := trimmed(item["label"])
	if label == "" {
		label = name
	}

	field := model.FieldDefinition{
		Name:        name,
		Label:       label,
		Type:        externalType(item),
		Required:    ParseBool(item["is_required"], false),
		Order:       index + 1,
		Placeholder: trimmed(item["place_holder"]),
		Options:     externalOptions(item["options"]),
	}

	if v, ok := item["default_value"]; ok && v != nil {
		field.Default = v
	}
	for _, key := range passthroughKeys {
		if v, ok := item[key]; ok && v != nil {
			if field.Extra == nil {
				field.Extra = map[string]interface{}{}
			}
			field.Extra[key] = v
		}
	}
	return field
}

// ParseExternalFields accepts the raw category_fields_config value: a JSON
// array or a string holding one. Anything else yields no fields.
func ParseExternalFields(raw interface{}) []model.FieldDefinition {
	var items []interface{}
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			return nil
		}
	case []interface{}:
		items = v
	default:
		return nil
	}

	fields := make([]model.FieldDefinition, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		fields = append(fields, FromExternal(m, i))
	}
	return fields
}

func externalType(item map[string]interface{}) model.FieldType {
	switch strings.ToUpper(trimmed(item["type"])) {
	case "SELECT":
		return model.FieldSelect
	case "DATE":
		return model.FieldDate
	case "FILE":
		return model.FieldFile
	case "INPUT":
		if truthy(item["is_number"]) {
			return model.FieldNumber
		}
		if truthy(item["is_text_area"]) {
			return model.FieldTextarea
		}
		return model.FieldText
	}
	return model.FieldText
}

func externalOptions(raw interface{}) []model.FieldOption {
	list, ok := raw.([]interface{})
	if !ok {
		return []model.FieldOption{}
	}
	opts := make([]model.FieldOption, 0, len(list))
	for _, o := range list {
		m, ok := o.(map[string]interface{})
		if !ok {
			continue
		}
		opts = append(opts, model.FieldOption{
			Value: stringOf(m["value"]),
			Label: stringOf(m["label"]),
		})
	}
	return opts
}

// ParseBool reads dump-style booleans: real bools, or strings such as
// TRUE/1/YES/T/Y. nil yields def.
func ParseBool(v interface{}, def bool) bool {
	switch b := v.(type) {
	case nil:
		return def
	case bool:
		return b
	default:
		switch strings.ToUpper(strings.TrimSpace(stringOf(b))) {
		case "TRUE", "1", "YES", "T", "Y":
			return true
		}
		return false
	}
}

func truthy(v interface{}) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	case float64:
		return b != 0
	case json.Number:
		return b.String() != "0"
	}
	return true
}

func trimmed(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func stringOf(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
