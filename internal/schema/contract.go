package schema

import (
	"encoding/json"
	"fmt"
	"math"

	"marketmapper/internal/errors"
)

// FieldType enumerates the JSON shapes a contract field accepts
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeNumber    FieldType = "number"
	TypeInteger   FieldType = "integer"
	TypeBoolean   FieldType = "boolean"
	TypeArray     FieldType = "array"
	TypeObject    FieldType = "object"
	TypeStringMap FieldType = "string_map"
)

// Field declares the rules for one payload field
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Enum     []string  // allowed values, strings only
	Min, Max *float64  // numeric bounds, inclusive
	Elem     FieldType // element type for scalar arrays
	Items    *Contract // item contract for object arrays
	Fields   []Field   // nested object fields
}

// Contract declares an input or output payload shape. Unknown extra fields
// are tolerated: LLM outputs routinely carry commentary fields, and the
// normalization step ahead of validation already mapped the accepted aliases.
type Contract struct {
	Name   string
	Fields []Field
}

// Validate checks payload against the contract. The returned error is a
// VALIDATION_ERROR whose message carries the offending field path.
func (c Contract) Validate(payload map[string]interface{}) error {
	if payload == nil {
		return errors.ValidationError(c.Name, "payload is nil")
	}
	return validateFields(c.Name, c.Fields, payload)
}

func validateFields(path string, fields []Field, payload map[string]interface{}) error {
	for _, f := range fields {
		fieldPath := path + "." + f.Name
		raw, present := payload[f.Name]
		if !present || raw == nil {
			if f.Required {
				return errors.ValidationError(fieldPath, "required field missing")
			}
			continue
		}
		if err := validateValue(fieldPath, f, raw); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(path string, f Field, raw interface{}) error {
	switch f.Type {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return errors.ValidationError(path, fmt.Sprintf("expected string, got %T", raw))
		}
		if f.Required && s == "" {
			return errors.ValidationError(path, "must not be empty")
		}
		if len(f.Enum) > 0 && s != "" && !contains(f.Enum, s) {
			return errors.ValidationError(path, fmt.Sprintf("value %q not in %v", s, f.Enum))
		}
	case TypeNumber, TypeInteger:
		n, ok := asNumber(raw)
		if !ok {
			return errors.ValidationError(path, fmt.Sprintf("expected number, got %T", raw))
		}
		if f.Type == TypeInteger && n != math.Trunc(n) {
			return errors.ValidationError(path, "expected integer")
		}
		if f.Min != nil && n < *f.Min {
			return errors.ValidationError(path, fmt.Sprintf("value %v below minimum %v", n, *f.Min))
		}
		if f.Max != nil && n > *f.Max {
			return errors.ValidationError(path, fmt.Sprintf("value %v above maximum %v", n, *f.Max))
		}
	case TypeBoolean:
		if _, ok := raw.(bool); !ok {
			return errors.ValidationError(path, fmt.Sprintf("expected boolean, got %T", raw))
		}
	case TypeArray:
		items, ok := raw.([]interface{})
		if !ok {
			return errors.ValidationError(path, fmt.Sprintf("expected array, got %T", raw))
		}
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if f.Items != nil {
				obj, ok := item.(map[string]interface{})
				if !ok {
					return errors.ValidationError(itemPath, fmt.Sprintf("expected object, got %T", item))
				}
				if err := validateFields(itemPath, f.Items.Fields, obj); err != nil {
					return err
				}
			} else if f.Elem != "" {
				if err := validateValue(itemPath, Field{Name: f.Name, Type: f.Elem}, item); err != nil {
					return err
				}
			}
		}
	case TypeObject:
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return errors.ValidationError(path, fmt.Sprintf("expected object, got %T", raw))
		}
		if err := validateFields(path, f.Fields, obj); err != nil {
			return err
		}
	case TypeStringMap:
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return errors.ValidationError(path, fmt.Sprintf("expected object, got %T", raw))
		}
		for k, v := range obj {
			if _, ok := v.(string); !ok {
				return errors.ValidationError(path+"."+k, fmt.Sprintf("expected string value, got %T", v))
			}
		}
	default:
		return errors.ValidationError(path, fmt.Sprintf("unknown contract type %q", f.Type))
	}
	return nil
}

func asNumber(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Decode converts a validated payload into a typed value via JSON round trip
func Decode(payload map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode payload")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "failed to decode payload")
	}
	return nil
}

// Encode converts a typed value into a payload map
func Encode(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode value")
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode value")
	}
	return out, nil
}
