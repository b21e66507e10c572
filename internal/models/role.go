package models

import (
	"time"

	"gorm.io/datatypes"
)

type Role struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name        string                      `gorm:"uniqueIndex;not null" json:"name"`
	Description *string                     `json:"description"`
	Order       int                         `gorm:"not null;default:0" json:"order"`
	Permissions datatypes.JSONSlice[string] `json:"permissions"`
}

type RoleRequest struct {
	Name        string   `json:"name" binding:"no_html,max=255"`
	Description *string  `json:"description"`
	Permissions []string `json:"permissions" binding:"dive,permission"`
}

// RoleListQuery mirrors the paging parameters accepted by the role list.
type RoleListQuery struct {
	PageIndex     int    `form:"pageIndex"`
	PageSize      int    `form:"pageSize"`
	OrderByColumn string `form:"orderByColumn"`
	OrderBy       string `form:"orderBy"`
}

type RoleList struct {
	Data  []Role `json:"data"`
	Total int64  `json:"total"`
}
