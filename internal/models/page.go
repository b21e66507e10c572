package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"backoffice-backend/internal/pagecontent"
)

type Page struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name        string  `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string  `gorm:"uniqueIndex;not null" json:"slug"`
	Description *string `json:"description"`
	Order       int     `gorm:"not null;default:0" json:"order"`

	Blocks []PageBlock `gorm:"foreignKey:PageID" json:"blocks,omitempty"`
}

// PageBlock content is one of the carousel, banner, image_text or component
// shapes depending on Type, or null.
type PageBlock struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	PageID  uint                  `gorm:"not null;index" json:"pageId"`
	Name    string                `gorm:"not null" json:"name"`
	Type    pagecontent.BlockType `gorm:"type:varchar(32);not null" json:"type"`
	Content datatypes.JSON        `json:"content"`
	Order   int                   `gorm:"not null;default:0" json:"order"`
}

type CreatePageRequest struct {
	Name        string  `json:"name" binding:"no_html,max=255"`
	Slug        *string `json:"slug" binding:"omitempty,max=255"`
	Description *string `json:"description"`
}

type CreatePageBlockRequest struct {
	PageID  uint            `json:"pageId" binding:"required"`
	Name    string          `json:"name" binding:"no_html,max=255"`
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

type PageList struct {
	Data  []Page `json:"data"`
	Total int64  `json:"total"`
}
