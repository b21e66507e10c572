package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"

	"backoffice-backend/internal/metrics"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/repository"
	"backoffice-backend/pkg/logger"
)

var errAuditRepositoryMissing = errors.New("audit log repository not configured")

const (
	defaultAuditPageSize = 20
	maxAuditPageSize     = 200
	maxRecentAuditLogs   = 100
)

var auditSortColumns = map[string]string{
	"createdAt": "created_at",
	"id":        "id",
	"module":    "module",
	"action":    "action",
	"category":  "category",
}

// Audit modules.
const (
	AuditModulePageComponent = "page_component"
	AuditModulePage          = "page"
	AuditModulePageBlock     = "page_block"
	AuditModuleRole          = "role"
)

// AuditEntry describes one audited change.
type AuditEntry struct {
	Module   string
	Category string
	Action   string
	Detail   string
	Metadata map[string]interface{}
}

// AuditService writes audit records. Failures are logged and never returned
// so they cannot fail the operation being audited.
type AuditService struct {
	repo repository.AuditLogRepository
}

func NewAuditService(repo repository.AuditLogRepository) *AuditService {
	if repo == nil {
		return nil
	}
	return &AuditService{repo: repo}
}

func (s *AuditService) Record(ctx context.Context, actor models.Actor, entry AuditEntry) {
	if s == nil || s.repo == nil {
		return
	}

	record := &models.AuditLog{
		Action:    entry.Action,
		Module:    entry.Module,
		Category:  entry.Category,
		Detail:    entry.Detail,
		ActorName: actor.Name,
		ActorRole: actor.Role,
		IPAddress: actor.IP,
	}
	if actor.ID != 0 {
		id := actor.ID
		record.ActorID = &id
	}

	if len(entry.Metadata) > 0 {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Failed to encode audit metadata")
		} else {
			record.Metadata = datatypes.JSON(encoded)
		}
	}

	if err := s.repo.Create(ctx, record); err != nil {
		metrics.AuditWriteFailed()
		logger.FromContext(ctx).WithError(err).WithFields(map[string]interface{}{
			"module": entry.Module,
			"action": entry.Action,
		}).Error("Failed to record audit log")
	}
}

// List returns one page of audit records, newest first unless asked otherwise.
func (s *AuditService) List(ctx context.Context, query models.AuditLogListQuery) (*models.AuditLogList, error) {
	if s == nil || s.repo == nil {
		return nil, errAuditRepositoryMissing
	}

	logs, total, err := s.repo.List(ctx, ResolveAuditListOptions(query))
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return &models.AuditLogList{Data: logs, Total: total}, nil
}

// Recent returns the latest records matching the filter, at most 100.
func (s *AuditService) Recent(ctx context.Context, query models.RecentAuditLogQuery) ([]models.AuditLog, error) {
	if s == nil || s.repo == nil {
		return nil, errAuditRepositoryMissing
	}

	limit := query.Limit
	switch {
	case limit <= 0:
		limit = defaultAuditPageSize
	case limit > maxRecentAuditLogs:
		limit = maxRecentAuditLogs
	}

	logs, _, err := s.repo.List(ctx, repository.AuditListOptions{
		Filter: resolveAuditFilter(query.AuditLogFilterQuery, ""),
		Limit:  limit,
		Column: "created_at",
		Desc:   true,
	})
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return logs, nil
}

// ResolveAuditListOptions clamps paging input and maps the requested sort to a
// column. The default order is created_at descending.
func ResolveAuditListOptions(query models.AuditLogListQuery) repository.AuditListOptions {
	pageIndex := query.PageIndex
	if pageIndex < 1 {
		pageIndex = 1
	}

	pageSize := query.PageSize
	switch {
	case pageSize <= 0:
		pageSize = defaultAuditPageSize
	case pageSize > maxAuditPageSize:
		pageSize = maxAuditPageSize
	}

	column, ok := auditSortColumns[strings.TrimSpace(query.OrderByColumn)]
	if !ok {
		column = auditSortColumns["createdAt"]
	}

	return repository.AuditListOptions{
		Filter: resolveAuditFilter(query.AuditLogFilterQuery, query.Search),
		Offset: (pageIndex - 1) * pageSize,
		Limit:  pageSize,
		Column: column,
		Desc:   strings.ToUpper(strings.TrimSpace(query.OrderBy)) != "ASC",
	}
}

func resolveAuditFilter(query models.AuditLogFilterQuery, search string) repository.AuditLogFilter {
	return repository.AuditLogFilter{
		Module:   strings.TrimSpace(query.Module),
		Category: strings.TrimSpace(query.Category),
		ActorID:  query.ActorID,
		From:     parseAuditTime(query.From),
		To:       parseAuditTime(query.To),
		Search:   strings.TrimSpace(search),
	}
}

func parseAuditTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}
