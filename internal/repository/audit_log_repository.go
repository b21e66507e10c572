package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"backoffice-backend/internal/models"
)

// AuditLogFilter narrows the audit list. Zero values do not filter.
type AuditLogFilter struct {
	Module   string
	Category string
	ActorID  *uint
	From     *time.Time
	To       *time.Time
	Search   string
}

// AuditListOptions is a resolved page of the audit list. Column must be a
// database column name.
type AuditListOptions struct {
	Filter AuditLogFilter
	Offset int
	Limit  int
	Column string
	Desc   bool
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, opts AuditListOptions) ([]models.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) List(ctx context.Context, opts AuditListOptions) ([]models.AuditLog, int64, error) {
	filtered := func() *gorm.DB {
		return applyAuditFilter(r.db.WithContext(ctx).Model(&models.AuditLog{}), opts.Filter)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := filtered().
		Order(clause.OrderByColumn{Column: clause.Column{Name: opts.Column}, Desc: opts.Desc})
	if opts.Column != "id" {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: opts.Desc})
	}
	if opts.Limit > 0 {
		query = query.Offset(opts.Offset).Limit(opts.Limit)
	}

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func applyAuditFilter(db *gorm.DB, filter AuditLogFilter) *gorm.DB {
	if filter.Module != "" {
		db = db.Where("module = ?", filter.Module)
	}
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.ActorID != nil {
		db = db.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.From != nil {
		db = db.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("created_at <= ?", *filter.To)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		db = db.Where(
			"action LIKE ? OR module LIKE ? OR detail LIKE ? OR actor_name LIKE ? OR actor_role LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}
	return db
}
