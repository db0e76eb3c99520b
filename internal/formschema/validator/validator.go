// Package validator checks a submission payload against a form schema.
//
// Every field is checked and all failures are reported together, keyed by
// field name, so a form can show every problem at once.
package validator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	urlPattern   = regexp.MustCompile(`^https?://(?:[-\w.])+(?:[:\d]+)?(?:/(?:[\w/_.])*)?(?:\?(?:[\w&=%.])*)?(?:#(?:[\w.])*)?$`)
)

var truthyStrings = map[string]bool{"true": true, "1": true, "yes": true, "on": true}

// Validate returns the cleaned values of every schema field present in
// payload, or a VALIDATION_ERROR carrying one message per offending field.
// Keys not named by the schema are ignored.
func Validate(fields []model.FieldDefinition, payload map[string]interface{}) (map[string]interface{}, error) {
	ordered := make([]model.FieldDefinition, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	errs := map[string]string{}
	out := make(map[string]interface{}, len(ordered))

	for _, field := range ordered {
		value := payload[field.Name]

		if isEmpty(value) {
			if field.Required {
				errs[field.Name] = field.DisplayLabel() + " is required"
				continue
			}
			if !isEmpty(field.Default) {
				out[field.Name] = field.Default
			}
			continue
		}

		cleaned, msg := checkField(field, value)
		if msg != "" {
			errs[field.Name] = msg
			continue
		}
		out[field.Name] = cleaned
	}

	if len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}
	return out, nil
}

func checkField(field model.FieldDefinition, value interface{}) (interface{}, string) {
	label := field.DisplayLabel()
	rules := field.Validation
	if rules == nil {
		rules = &model.FieldValidation{}
	}

	switch field.Type {
	case model.FieldNumber:
		n, ok := parseNumber(value)
		if !ok {
			return nil, label + " must be a number"
		}
		f := toFloat(n)
		if rules.Min != nil && f < *rules.Min {
			return nil, "Value must be at least " + formatBound(*rules.Min)
		}
		if rules.Max != nil && f > *rules.Max {
			return nil, "Value must be at most " + formatBound(*rules.Max)
		}
		value = n

	case model.FieldEmail:
		if !emailPattern.MatchString(scalarString(value)) {
			return nil, label + " must be a valid email"
		}

	case model.FieldURL:
		if !urlPattern.MatchString(scalarString(value)) {
			return nil, label + " must be a valid URL"
		}

	case model.FieldSelect, model.FieldRadio:
		if len(field.Options) > 0 && !hasOption(field.Options, value) {
			values := make([]string, len(field.Options))
			for i, o := range field.Options {
				values[i] = o.Value
			}
			return nil, label + " must be one of: " + strings.Join(values, ", ")
		}

	case model.FieldCheckbox:
		value = toBool(value)
	}

	if s, ok := value.(string); ok {
		n := utf8.RuneCountInString(s)
		if rules.MinLength != nil && n < *rules.MinLength {
			return nil, fmt.Sprintf("%s must be at least %d characters", label, *rules.MinLength)
		}
		if rules.MaxLength != nil && n > *rules.MaxLength {
			return nil, fmt.Sprintf("%s must be at most %d characters", label, *rules.MaxLength)
		}
		if re := compile(rules.Regex); re != nil && !re.MatchString(s) {
			return nil, label + " format is invalid"
		}
	}

	return value, ""
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	}
	return false
}

// parseNumber returns an int64 or float64; a decimal point in the input
// selects float parsing. Strings without one must be integers.
func parseNumber(v interface{}) (interface{}, bool) {
	var s string
	switch t := v.(type) {
	case bool:
		return nil, false
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
		return t, true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case json.Number:
		s = t.String()
	case string:
		s = t
	default:
		return nil, false
	}

	s = strings.TrimSpace(s)
	if strings.Contains(s, ".") {
		return parseFloat(s)
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// JSON numbers in exponent form, or too large for int64, are floats.
		if _, isNumber := v.(json.Number); isNumber {
			return parseFloat(s)
		}
		return nil, false
	}
	return i, true
}

func parseFloat(s string) (interface{}, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

func toFloat(n interface{}) float64 {
	switch t := n.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	}
	return 0
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return truthyStrings[strings.ToLower(t)]
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	}
	return v != nil
}

func hasOption(opts []model.FieldOption, v interface{}) bool {
	s, ok := scalar(v)
	if !ok {
		return false
	}
	for _, o := range opts {
		if o.Value == s {
			return true
		}
	}
	return false
}

// scalar renders strings and numbers for comparison; composite values have
// no scalar form.
func scalar(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func scalarString(v interface{}) string {
	if s, ok := scalar(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

var regexCache sync.Map // pattern -> *regexp.Regexp, nil for invalid patterns

// compile anchors pattern at the start of the value. Invalid patterns disable
// the check rather than rejecting every submission.
func compile(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	if cached, ok := regexCache.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		regexCache.Store(pattern, (*regexp.Regexp)(nil))
		return nil
	}
	regexCache.Store(pattern, re)
	return re
}
