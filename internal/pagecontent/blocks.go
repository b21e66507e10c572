package pagecontent

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"backoffice-backend/internal/apperrors"
)

// BlockType is the kind of content attached to a page block.
type BlockType string

const (
	BlockTypeCarousel  BlockType = "carousel"
	BlockTypeBanner    BlockType = "banner"
	BlockTypeImageText BlockType = "image_text"
	BlockTypeComponent BlockType = "component"
)

var blockTypes = []BlockType{
	BlockTypeCarousel,
	BlockTypeBanner,
	BlockTypeImageText,
	BlockTypeComponent,
}

func (t BlockType) String() string {
	return string(t)
}

func (t BlockType) IsValid() bool {
	for _, candidate := range blockTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseBlockType matches raw case-insensitively against the supported block types.
func ParseBlockType(raw string) (BlockType, error) {
	candidate := BlockType(strings.ToLower(strings.TrimSpace(raw)))
	if !candidate.IsValid() {
		return "", apperrors.Validation("invalid block type")
	}
	return candidate, nil
}

// ComponentContent is the persisted content of a component block.
type ComponentContent struct {
	ComponentID uint   `json:"componentId"`
	Values      Values `json:"values"`
}

// DefinitionLookup loads a component definition with its fields ordered.
// A missing definition is reported as (nil, nil) or a NOT_FOUND error.
type DefinitionLookup interface {
	FindDefinition(ctx context.Context, id uint) (*Definition, error)
}

// Normalizer turns submitted block content into the JSON persisted on a page block.
type Normalizer struct {
	definitions DefinitionLookup
	options     []Option
}

func NewNormalizer(definitions DefinitionLookup, opts ...Option) *Normalizer {
	return &Normalizer{definitions: definitions, options: opts}
}

// Normalize validates rawType and content. The returned content is nil when the
// block has no content.
func (n *Normalizer) Normalize(ctx context.Context, rawType string, content json.RawMessage) (BlockType, json.RawMessage, error) {
	blockType, err := ParseBlockType(rawType)
	if err != nil {
		return "", nil, err
	}

	decoded, err := decodeContent(content)
	if err != nil {
		return "", nil, err
	}

	var normalized interface{}
	switch blockType {
	case BlockTypeComponent:
		normalized, err = n.normalizeComponent(ctx, decoded)
	default:
		normalized, err = normalizeFixed(blockType, decoded)
	}
	if err != nil {
		return "", nil, err
	}
	if normalized == nil {
		return blockType, nil, nil
	}

	encoded, err := json.Marshal(normalized)
	if err != nil {
		return "", nil, apperrors.CreateFailed(err)
	}
	return blockType, encoded, nil
}

func normalizeFixed(blockType BlockType, decoded interface{}) (interface{}, error) {
	if decoded == nil {
		return nil, nil
	}
	object, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, apperrors.Validation("block content must be an object")
	}

	switch blockType {
	case BlockTypeCarousel:
		return normalizeCarousel(object)
	case BlockTypeBanner:
		return normalizeBanner(object)
	case BlockTypeImageText:
		return normalizeImageText(object)
	default:
		return nil, apperrors.Validation("invalid block type")
	}
}

func (n *Normalizer) normalizeComponent(ctx context.Context, decoded interface{}) (*ComponentContent, error) {
	object, ok := decoded.(map[string]interface{})
	if !ok || object == nil {
		return nil, apperrors.Validation("provide component content")
	}

	componentID, ok := parseComponentID(object["componentId"])
	if !ok {
		return nil, apperrors.Validation("select a component")
	}

	if n == nil || n.definitions == nil {
		return nil, apperrors.NotFound("component not found")
	}
	definition, err := n.definitions.FindDefinition(ctx, componentID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("component not found")
		}
		return nil, err
	}
	if definition == nil {
		return nil, apperrors.NotFound("component not found")
	}

	rawValues, ok := object["values"].(map[string]interface{})
	if !ok || rawValues == nil {
		return nil, apperrors.Validation("provide field values")
	}

	values, err := SanitizeValues(*definition, rawValues, n.options...)
	if err != nil {
		return nil, err
	}

	return &ComponentContent{ComponentID: definition.ID, Values: values}, nil
}

func decodeContent(content json.RawMessage) (interface{}, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var decoded interface{}
	if err := decoder.Decode(&decoded); err != nil {
		return nil, apperrors.Validation("block content must be valid JSON")
	}
	return decoded, nil
}

// maxComponentID is the largest id a JSON number carries exactly.
const maxComponentID = 1 << 53

// parseComponentID accepts a positive integral number given as a JSON number
// or a numeric string, so 1, 1.0, 1e0 and "1" name the same component.
func parseComponentID(value interface{}) (uint, bool) {
	var text string
	switch v := value.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return 0, false
	}

	id, err := strconv.ParseFloat(text, 64)
	if err != nil || id <= 0 || id > maxComponentID || id != math.Trunc(id) {
		return 0, false
	}
	return uint(id), true
}
