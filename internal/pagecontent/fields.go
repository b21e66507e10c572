package pagecontent

import (
	"regexp"
	"strings"

	"backoffice-backend/internal/apperrors"
)

// FieldType is the closed set of value kinds a component field can hold.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeImage    FieldType = "image"
	FieldTypeButton   FieldType = "button"
	FieldTypeLink     FieldType = "link"
	FieldTypeRichText FieldType = "richtext"
	FieldTypeProperty FieldType = "property"
)

var fieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeTextarea,
	FieldTypeImage,
	FieldTypeButton,
	FieldTypeLink,
	FieldTypeRichText,
	FieldTypeProperty,
}

func (t FieldType) String() string {
	return string(t)
}

func (t FieldType) IsValid() bool {
	for _, candidate := range fieldTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseFieldType lower-cases and trims raw before matching it against the supported types.
func ParseFieldType(raw string) (FieldType, error) {
	candidate := FieldType(strings.ToLower(strings.TrimSpace(raw)))
	if !candidate.IsValid() {
		return "", apperrors.Validation("unsupported field type")
	}
	return candidate, nil
}

var fieldKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// IsFieldKey reports whether key is usable as a component field key.
func IsFieldKey(key string) bool {
	return fieldKeyPattern.MatchString(key)
}

// FieldInput is a field as submitted by an administrator.
type FieldInput struct {
	Key      string  `json:"key"`
	Type     string  `json:"type"`
	Property *string `json:"property,omitempty"`
}

// Field is a normalized field schema.
type Field struct {
	Key      string
	Type     FieldType
	Property *string
	Order    int
}

// Attributes returns the attribute names a property entry has to supply.
func (f Field) Attributes() []string {
	return PropertyAttributes(f.Property)
}

// Definition is a component definition as seen by the value sanitizer.
type Definition struct {
	ID     uint
	Name   string
	Slug   string
	Fields []Field
}

// NormalizeName trims a component name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// NormalizeDescription trims description and maps blank input to nil.
func NormalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// NormalizeFields validates a submitted field list. The index of each field in
// inputs becomes its persisted order.
func NormalizeFields(inputs []FieldInput) ([]Field, error) {
	if len(inputs) == 0 {
		return nil, apperrors.Validation("add at least one field")
	}

	seen := make(map[string]struct{}, len(inputs))
	fields := make([]Field, 0, len(inputs))

	for index, input := range inputs {
		key := strings.TrimSpace(input.Key)
		if key == "" {
			return nil, apperrors.Validation("field key is required")
		}
		if !IsFieldKey(key) {
			return nil, apperrors.Validation("keys may only use alphanumerics, underscore or hyphen, starting with a letter")
		}
		if _, exists := seen[key]; exists {
			return nil, apperrors.Validation("field keys must be unique")
		}
		seen[key] = struct{}{}

		fieldType, err := ParseFieldType(input.Type)
		if err != nil {
			return nil, err
		}

		var property *string
		if fieldType == FieldTypeProperty {
			raw := ""
			if input.Property != nil {
				raw = *input.Property
			}
			normalized := NormalizePropertyList(raw)
			if normalized == "" {
				return nil, apperrors.Validation("provide a property list")
			}
			property = &normalized
		}

		fields = append(fields, Field{
			Key:      key,
			Type:     fieldType,
			Property: property,
			Order:    index,
		})
	}

	return fields, nil
}

// NormalizePropertyList splits raw on commas, trims every token, drops empty
// tokens and removes duplicates while keeping the first occurrence.
func NormalizePropertyList(raw string) string {
	return strings.Join(splitAttributes(raw), ",")
}

// PropertyAttributes parses a stored property list. A missing or empty list
// falls back to a single "value" attribute.
func PropertyAttributes(property *string) []string {
	if property == nil {
		return []string{"value"}
	}
	attributes := splitAttributes(*property)
	if len(attributes) == 0 {
		return []string{"value"}
	}
	return attributes
}

func splitAttributes(raw string) []string {
	tokens := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(tokens))
	attributes := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		attributes = append(attributes, token)
	}
	return attributes
}
