package service

import (
	"context"
	"errors"
	"strings"

	"backoffice-backend/internal/apperrors"
	"backoffice-backend/internal/metrics"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/ordering"
	"backoffice-backend/internal/pagecontent"
	"backoffice-backend/internal/repository"
)

var errRoleRepositoryMissing = errors.New("role repository not configured")

const (
	defaultRolePageSize = 20
	maxRolePageSize     = 100
)

var roleSortColumns = map[string]string{
	"order":     "order",
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"id":        "id",
}

type RoleService struct {
	repo  repository.RoleRepository
	audit *AuditService
}

func NewRoleService(repo repository.RoleRepository, audit *AuditService) *RoleService {
	if repo == nil {
		return nil
	}
	return &RoleService{repo: repo, audit: audit}
}

// ResolveRoleListOptions clamps paging input and maps the requested sort to a column.
func ResolveRoleListOptions(query models.RoleListQuery) repository.RoleListOptions {
	pageIndex := query.PageIndex
	if pageIndex < 1 {
		pageIndex = 1
	}

	pageSize := query.PageSize
	switch {
	case pageSize <= 0:
		pageSize = defaultRolePageSize
	case pageSize > maxRolePageSize:
		pageSize = maxRolePageSize
	}

	requested := strings.TrimSpace(query.OrderByColumn)
	column, ok := roleSortColumns[requested]
	if !ok {
		requested = "order"
		column = roleSortColumns[requested]
	}

	var desc bool
	switch strings.ToUpper(strings.TrimSpace(query.OrderBy)) {
	case "ASC":
		desc = false
	case "DESC":
		desc = true
	default:
		desc = requested != "order"
	}

	return repository.RoleListOptions{
		Offset: (pageIndex - 1) * pageSize,
		Limit:  pageSize,
		Column: column,
		Desc:   desc,
	}
}

func (s *RoleService) List(ctx context.Context, query models.RoleListQuery) (*models.RoleList, error) {
	if s == nil || s.repo == nil {
		return nil, errRoleRepositoryMissing
	}

	roles, total, err := s.repo.List(ctx, ResolveRoleListOptions(query))
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []models.Role{}
	}
	return &models.RoleList{Data: roles, Total: total}, nil
}

func (s *RoleService) GetByID(ctx context.Context, id uint) (*models.Role, error) {
	if s == nil || s.repo == nil {
		return nil, errRoleRepositoryMissing
	}

	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("role not found")
		}
		return nil, err
	}
	return role, nil
}

func (s *RoleService) Create(ctx context.Context, actor models.Actor, req models.RoleRequest) (*models.Role, error) {
	if s == nil || s.repo == nil {
		return nil, errRoleRepositoryMissing
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("provide role name")
	}

	var role *models.Role
	err := s.repo.Transaction(ctx, func(tx repository.RoleTx) error {
		exists, err := tx.ExistsByName(name, 0)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.AlreadyExists("role already exists")
		}

		order, err := tx.NextOrder()
		if err != nil {
			return err
		}

		role = &models.Role{
			Name:        name,
			Description: pagecontent.NormalizeDescription(req.Description),
			Order:       order,
			Permissions: NormalizePermissions(req.Permissions),
		}
		return tx.Create(role)
	})
	if err != nil {
		return nil, apperrors.CreateFailed(err)
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModuleRole,
		Category: "create",
		Action:   "create_role",
		Detail:   "created role " + role.Name,
		Metadata: map[string]interface{}{"roleId": role.ID, "permissions": []string(role.Permissions)},
	})
	return role, nil
}

func (s *RoleService) Update(ctx context.Context, actor models.Actor, id uint, req models.RoleRequest) (*models.Role, error) {
	if s == nil || s.repo == nil {
		return nil, errRoleRepositoryMissing
	}

	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("role not found")
		}
		return nil, apperrors.UpdateFailed(err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("provide role name")
	}

	err = s.repo.Transaction(ctx, func(tx repository.RoleTx) error {
		current, err := tx.GetByID(role.ID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NotFound("role not found")
			}
			return err
		}

		exists, err := tx.ExistsByName(name, current.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.AlreadyExists("role already exists")
		}

		current.Name = name
		current.Description = pagecontent.NormalizeDescription(req.Description)
		current.Permissions = NormalizePermissions(req.Permissions)
		if err := tx.Update(current); err != nil {
			return err
		}
		role = current
		return nil
	})
	if err != nil {
		return nil, apperrors.UpdateFailed(err)
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModuleRole,
		Category: "update",
		Action:   "update_role",
		Detail:   "updated role " + role.Name,
		Metadata: map[string]interface{}{"roleId": role.ID, "permissions": []string(role.Permissions)},
	})
	return role, nil
}

func (s *RoleService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	if s == nil || s.repo == nil {
		return errRoleRepositoryMissing
	}

	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("role not found")
		}
		return apperrors.DeleteFailed(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("role not found")
		}
		return apperrors.DeleteFailed(err)
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModuleRole,
		Category: "delete",
		Action:   "delete_role",
		Detail:   "deleted role " + role.Name,
		Metadata: map[string]interface{}{"roleId": role.ID},
	})
	return nil
}

func (s *RoleService) Reorder(ctx context.Context, actor models.Actor, entries []ordering.Entry) error {
	if s == nil || s.repo == nil {
		return errRoleRepositoryMissing
	}

	err := ordering.Apply(ctx, s.repo.OrderStore(), entries)
	metrics.ReorderApplied("roles", err)
	if err != nil {
		return err
	}

	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModuleRole,
		Category: "reorder",
		Action:   "reorder_roles",
		Detail:   "reordered roles",
		Metadata: map[string]interface{}{"entries": entries},
	})
	return nil
}

// NormalizePermissions trims every permission, drops empty ones and keeps the
// first occurrence of duplicates.
func NormalizePermissions(permissions []string) []string {
	result := make([]string, 0, len(permissions))
	seen := make(map[string]struct{}, len(permissions))
	for _, permission := range permissions {
		permission = strings.TrimSpace(permission)
		if permission == "" {
			continue
		}
		if _, ok := seen[permission]; ok {
			continue
		}
		seen[permission] = struct{}{}
		result = append(result, permission)
	}
	return result
}
