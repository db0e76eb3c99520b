// Package catalogload imports categories and their form schemas from a
// catalog dump: a JSON array of category rows, each optionally carrying its
// form configuration.
package catalogload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-marketplace-service/internal/formschema"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

// Record is one normalized dump row.
type Record struct {
	Name        string
	Code        string
	ParentCode  string
	Order       int
	Description *string
	ImageURL    *string
	IsActive    bool
	// HasForm is set when the row carries a non-empty form configuration.
	HasForm bool
	Fields  []model.FieldDefinition
}

// Parse reads a dump. Rows that are not objects or have no category_code are
// skipped and reported in warnings; only a root that is not an array fails.
func Parse(data []byte) ([]Record, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rows []interface{}
	if err := dec.Decode(&rows); err != nil {
		return nil, nil, fmt.Errorf("catalog dump must be a JSON array of category objects: %w", err)
	}

	var (
		records  []Record
		warnings []string
	)
	for i, raw := range rows {
		row, ok := raw.(map[string]interface{})
		if !ok {
			warnings = append(warnings, fmt.Sprintf("row %d: skip (not an object)", i))
			continue
		}
		code := text(row["category_code"])
		if code == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: skip (empty category_code)", i))
			continue
		}

		order, ok := intOf(row["order"])
		if !ok {
			warnings = append(warnings, fmt.Sprintf("row %d (%s): order %v is not a number, using 0", i, code, row["order"]))
		}

		rec := Record{
			Name:        text(row["name"]),
			Code:        code,
			ParentCode:  text(row["parent_category_code"]),
			Order:       order,
			Description: optional(text(row["description"])),
			ImageURL:    optional(text(row["image_url"])),
			IsActive:    formschema.ParseBool(row["is_active"], true),
		}
		if rec.Name == "" {
			rec.Name = code
		}
		if cfg := row["category_fields_config"]; hasForm(cfg) {
			rec.HasForm = true
			rec.Fields = formschema.ParseExternalFields(cfg)
		}
		records = append(records, rec)
	}
	return records, warnings, nil
}

func hasForm(cfg interface{}) bool {
	switch v := cfg.(type) {
	case string:
		return strings.TrimSpace(v) != ""
	case []interface{}:
		return true
	}
	return false
}

func text(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// intOf reads an order value. Missing, null and empty values are 0.
func intOf(v interface{}) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		f, err := t.Float64()
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return int(f), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return i, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
