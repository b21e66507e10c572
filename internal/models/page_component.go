package models

import (
	"time"

	"backoffice-backend/internal/pagecontent"
)

type PageComponent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name        string  `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string  `gorm:"uniqueIndex;not null" json:"slug"`
	Description *string `json:"description"`
	Order       int     `gorm:"not null;default:0" json:"order"`

	Fields []PageComponentField `gorm:"foreignKey:ComponentID" json:"fields"`
}

type PageComponentField struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ComponentID uint                  `gorm:"not null;index" json:"componentId"`
	Key         string                `gorm:"not null" json:"key"`
	Type        pagecontent.FieldType `gorm:"type:varchar(32);not null" json:"type"`
	Property    *string               `json:"property"`
	Order       int                   `gorm:"not null;default:0" json:"order"`
}

// Definition converts the component into the form used by value sanitizing.
// Fields are expected to be loaded in display order.
func (c *PageComponent) Definition() pagecontent.Definition {
	definition := pagecontent.Definition{
		ID:     c.ID,
		Name:   c.Name,
		Slug:   c.Slug,
		Fields: make([]pagecontent.Field, 0, len(c.Fields)),
	}
	for _, field := range c.Fields {
		definition.Fields = append(definition.Fields, pagecontent.Field{
			Key:      field.Key,
			Type:     field.Type,
			Property: field.Property,
			Order:    field.Order,
		})
	}
	return definition
}

// NewPageComponentFields builds field rows from normalized fields.
func NewPageComponentFields(componentID uint, fields []pagecontent.Field) []PageComponentField {
	rows := make([]PageComponentField, 0, len(fields))
	for _, field := range fields {
		rows = append(rows, PageComponentField{
			ComponentID: componentID,
			Key:         field.Key,
			Type:        field.Type,
			Property:    field.Property,
			Order:       field.Order,
		})
	}
	return rows
}

type PageComponentRequest struct {
	Name        string                   `json:"name" binding:"no_html,max=255"`
	Description *string                  `json:"description"`
	Fields      []pagecontent.FieldInput `json:"fields"`
}

type PageComponentList struct {
	Data  []PageComponent `json:"data"`
	Total int64           `json:"total"`
}
