package pagecontent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"backoffice-backend/internal/apperrors"
)

// Values is the sanitized values map persisted on a component block. Scalar
// fields hold a string or nil, property fields hold []map[string]string.
type Values map[string]interface{}

// Option customizes value sanitizing.
type Option func(*options)

type options struct {
	richText func(string) string
}

// WithRichTextSanitizer filters non-empty rich text values through fn.
func WithRichTextSanitizer(fn func(string) string) Option {
	return func(o *options) {
		o.richText = fn
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// SanitizeValues checks raw against definition and returns a new map keyed by
// exactly the definition's field keys. Keys in raw that the definition does
// not declare are dropped. The first violation aborts with a validation error
// naming the field.
func SanitizeValues(definition Definition, raw map[string]interface{}, opts ...Option) (Values, error) {
	o := buildOptions(opts)
	sanitized := make(Values, len(definition.Fields))

	for _, field := range definition.Fields {
		value := raw[field.Key]

		if field.Type == FieldTypeProperty {
			entries, err := sanitizePropertyValue(field, value)
			if err != nil {
				return nil, err
			}
			sanitized[field.Key] = entries
			continue
		}

		scalar := sanitizeScalarValue(field.Type, value, o)
		if scalar == nil {
			sanitized[field.Key] = nil
		} else {
			sanitized[field.Key] = *scalar
		}
	}

	return sanitized, nil
}

func sanitizeScalarValue(fieldType FieldType, value interface{}, o options) *string {
	text, ok := stringify(value)
	if !ok {
		return nil
	}

	if fieldType == FieldTypeRichText {
		if text == "" {
			return nil
		}
		if o.richText != nil {
			text = o.richText(text)
			if text == "" {
				return nil
			}
		}
		return &text
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func sanitizePropertyValue(field Field, value interface{}) ([]map[string]string, error) {
	entries, ok := asEntryList(value)
	if !ok || len(entries) == 0 {
		return nil, apperrors.Validation("%s needs at least one entry", field.Key)
	}

	attributes := field.Attributes()
	sanitized := make([]map[string]string, 0, len(entries))

	for _, entry := range entries {
		object, ok := asObject(entry)
		if !ok {
			return nil, apperrors.Validation("%s has invalid format", field.Key)
		}

		clean := make(map[string]string, len(attributes))
		for _, attribute := range attributes {
			text, _ := stringify(object[attribute])
			text = strings.TrimSpace(text)
			if text == "" {
				return nil, apperrors.Validation("%s.%s is required", field.Key, attribute)
			}
			clean[attribute] = text
		}
		sanitized = append(sanitized, clean)
	}

	return sanitized, nil
}

// asEntryList accepts the list shapes produced by encoding/json as well as the
// sanitizer's own output so that sanitizing is idempotent in memory.
func asEntryList(value interface{}) ([]interface{}, bool) {
	switch list := value.(type) {
	case []interface{}:
		return list, true
	case []map[string]string:
		out := make([]interface{}, len(list))
		for i, entry := range list {
			out[i] = entry
		}
		return out, true
	case []map[string]interface{}:
		out := make([]interface{}, len(list))
		for i, entry := range list {
			out[i] = entry
		}
		return out, true
	default:
		return nil, false
	}
}

func asObject(value interface{}) (map[string]interface{}, bool) {
	switch object := value.(type) {
	case map[string]interface{}:
		if object == nil {
			return nil, false
		}
		return object, true
	case map[string]string:
		if object == nil {
			return nil, false
		}
		out := make(map[string]interface{}, len(object))
		for key, item := range object {
			out[key] = item
		}
		return out, true
	default:
		return nil, false
	}
}

// stringify renders a decoded JSON value as text. It returns false for nil.
func stringify(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), true
		}
		return string(encoded), true
	}
}
