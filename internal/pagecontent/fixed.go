package pagecontent

import (
	"strings"

	"backoffice-backend/internal/apperrors"
)

// Image/text layouts.
const (
	LayoutImageOnly = "image_only"
	LayoutTextOnly  = "text_only"
	LayoutImageText = "image_text"
)

// CarouselItem is one slide of a carousel block.
type CarouselItem struct {
	ImageURL string  `json:"imageUrl"`
	Link     *string `json:"link"`
	Caption  *string `json:"caption"`
}

type CarouselContent struct {
	Items []CarouselItem `json:"items"`
}

type BannerContent struct {
	ImageURL string  `json:"imageUrl"`
	Link     *string `json:"link"`
	Caption  *string `json:"caption"`
}

// ImageTextItem is one row of an image_text block. Which of ImageURL and Text
// are required depends on Layout.
type ImageTextItem struct {
	Layout      string  `json:"layout"`
	ImageURL    *string `json:"imageUrl"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Text        *string `json:"text"`
}

type ImageTextContent struct {
	Items []ImageTextItem `json:"items"`
}

func normalizeCarousel(content map[string]interface{}) (*CarouselContent, error) {
	rawItems, err := contentItems(content, "carousel")
	if err != nil {
		return nil, err
	}

	result := &CarouselContent{Items: make([]CarouselItem, 0, len(rawItems))}
	for index, raw := range rawItems {
		item, ok := asObject(raw)
		if !ok {
			return nil, apperrors.Validation("carousel item %d has invalid format", index+1)
		}
		imageURL := optionalText(item["imageUrl"])
		if imageURL == nil {
			return nil, apperrors.Validation("carousel item %d needs an image", index+1)
		}
		result.Items = append(result.Items, CarouselItem{
			ImageURL: *imageURL,
			Link:     optionalText(item["link"]),
			Caption:  optionalText(item["caption"]),
		})
	}

	return result, nil
}

func normalizeBanner(content map[string]interface{}) (*BannerContent, error) {
	imageURL := optionalText(content["imageUrl"])
	if imageURL == nil {
		return nil, apperrors.Validation("banner needs an image")
	}
	return &BannerContent{
		ImageURL: *imageURL,
		Link:     optionalText(content["link"]),
		Caption:  optionalText(content["caption"]),
	}, nil
}

func normalizeImageText(content map[string]interface{}) (*ImageTextContent, error) {
	rawItems, err := contentItems(content, "image_text")
	if err != nil {
		return nil, err
	}

	result := &ImageTextContent{Items: make([]ImageTextItem, 0, len(rawItems))}
	for index, raw := range rawItems {
		item, ok := asObject(raw)
		if !ok {
			return nil, apperrors.Validation("image_text item %d has invalid format", index+1)
		}

		layout := LayoutImageOnly
		if value := optionalText(item["layout"]); value != nil {
			layout = strings.ToLower(*value)
		}

		entry := ImageTextItem{
			Layout:      layout,
			ImageURL:    optionalText(item["imageUrl"]),
			Title:       optionalText(item["title"]),
			Description: optionalText(item["description"]),
			Text:        optionalText(item["text"]),
		}

		switch layout {
		case LayoutImageOnly:
			if entry.ImageURL == nil {
				return nil, apperrors.Validation("image_text item %d needs an image", index+1)
			}
		case LayoutTextOnly:
			if entry.Text == nil {
				return nil, apperrors.Validation("image_text item %d needs text", index+1)
			}
		case LayoutImageText:
			if entry.ImageURL == nil || entry.Text == nil {
				return nil, apperrors.Validation("image_text item %d needs an image and text", index+1)
			}
		default:
			return nil, apperrors.Validation("image_text item %d has an unsupported layout", index+1)
		}

		result.Items = append(result.Items, entry)
	}

	return result, nil
}

func contentItems(content map[string]interface{}, blockType string) ([]interface{}, error) {
	raw, present := content["items"]
	if !present || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, apperrors.Validation("%s items must be a list", blockType)
	}
	return items, nil
}

// optionalText trims a scalar and maps blank values to nil.
func optionalText(value interface{}) *string {
	text, ok := stringify(value)
	if !ok {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &text
}
