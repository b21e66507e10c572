package models

import (
	"time"

	"gorm.io/datatypes"

	"backoffice-backend/internal/ordering"
)

type AuditLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Action    string         `gorm:"not null" json:"action"`
	Module    string         `gorm:"not null;index" json:"module"`
	Category  string         `json:"category"`
	Detail    string         `gorm:"type:text" json:"detail"`
	ActorID   *uint          `gorm:"index" json:"actorId"`
	ActorName string         `json:"actorName"`
	ActorRole string         `json:"actorRole"`
	IPAddress string         `json:"ipAddress"`
	Metadata  datatypes.JSON `json:"metadata"`
}

// Actor identifies who performed an audited operation.
type Actor struct {
	ID   uint
	Name string
	Role string
	IP   string
}

// ReorderRequest carries the new order of an ordered collection.
type ReorderRequest struct {
	Entries []ordering.Entry `json:"entries" binding:"dive"`
}

// AuditLogFilterQuery holds the filters shared by the audit list endpoints.
// From and To are RFC 3339 timestamps; unparsable values are ignored.
type AuditLogFilterQuery struct {
	Module   string `form:"module"`
	Category string `form:"category"`
	ActorID  *uint  `form:"actorId"`
	From     string `form:"from"`
	To       string `form:"to"`
}

type AuditLogListQuery struct {
	AuditLogFilterQuery
	PageIndex     int    `form:"pageIndex"`
	PageSize      int    `form:"pageSize"`
	OrderByColumn string `form:"orderByColumn"`
	OrderBy       string `form:"orderBy"`
	Search        string `form:"search"`
}

type RecentAuditLogQuery struct {
	AuditLogFilterQuery
	Limit int `form:"limit"`
}

type AuditLogList struct {
	Data  []AuditLog `json:"data"`
	Total int64      `json:"total"`
}
