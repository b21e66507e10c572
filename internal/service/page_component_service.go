package service

import (
	"context"
	"errors"
	"time"

	"github.com/invopop/jsonschema"

	"backoffice-backend/internal/apperrors"
	"backoffice-backend/internal/metrics"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/pagecontent"
	"backoffice-backend/internal/repository"
	"backoffice-backend/pkg/cache"
	"backoffice-backend/pkg/logger"
)

var errComponentRepositoryMissing = errors.New("page component repository not configured")

type PageComponentService struct {
	repo  repository.PageComponentRepository
	cache *cache.Cache
	audit *AuditService
	now   func() time.Time
}

func NewPageComponentService(repo repository.PageComponentRepository, cacheService *cache.Cache, audit *AuditService) *PageComponentService {
	if repo == nil {
		return nil
	}
	return &PageComponentService{
		repo:  repo,
		cache: cacheService,
		audit: audit,
		now:   time.Now,
	}
}

func (s *PageComponentService) List(ctx context.Context) (*models.PageComponentList, error) {
	if s == nil || s.repo == nil {
		return nil, errComponentRepositoryMissing
	}

	if s.cache != nil && s.cache.Enabled() {
		var cached models.PageComponentList
		if err := s.cache.GetCachedComponentList(&cached); err == nil {
			metrics.CacheLookup("component_list", true)
			return &cached, nil
		}
		metrics.CacheLookup("component_list", false)
	}

	components, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if components == nil {
		components = []models.PageComponent{}
	}

	list := &models.PageComponentList{Data: components, Total: int64(len(components))}
	s.cacheValue(ctx, func() error { return s.cache.CacheComponentList(list) })
	return list, nil
}

func (s *PageComponentService) GetByID(ctx context.Context, id uint) (*models.PageComponent, error) {
	if s == nil || s.repo == nil {
		return nil, errComponentRepositoryMissing
	}

	if s.cache != nil && s.cache.Enabled() {
		var cached models.PageComponent
		if err := s.cache.GetCachedComponent(id, &cached); err == nil {
			metrics.CacheLookup("component", true)
			return &cached, nil
		}
		metrics.CacheLookup("component", false)
	}

	component, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("component not found")
		}
		return nil, err
	}

	s.cacheValue(ctx, func() error { return s.cache.CacheComponent(component.ID, component) })
	return component, nil
}

// FindDefinition resolves a component for block content normalization.
func (s *PageComponentService) FindDefinition(ctx context.Context, id uint) (*pagecontent.Definition, error) {
	component, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	definition := component.Definition()
	return &definition, nil
}

// Schema renders the values accepted by blocks of this component as JSON Schema.
func (s *PageComponentService) Schema(ctx context.Context, id uint) (*jsonschema.Schema, error) {
	definition, err := s.FindDefinition(ctx, id)
	if err != nil {
		return nil, err
	}
	return pagecontent.JSONSchema(*definition), nil
}

func (s *PageComponentService) Create(ctx context.Context, actor models.Actor, req models.PageComponentRequest) (*models.PageComponent, error) {
	if s == nil || s.repo == nil {
		return nil, errComponentRepositoryMissing
	}

	name, fields, err := normalizeComponentRequest(req)
	if err != nil {
		metrics.ContentRejected("component_definition")
		return nil, err
	}

	var component *models.PageComponent
	err = s.repo.Transaction(ctx, func(tx repository.PageComponentTx) error {
		exists, err := tx.ExistsByName(name, 0)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.AlreadyExists("component already exists")
		}

		slug, err := pagecontent.UniqueSlug(name, "component", s.now(), tx.ExistsBySlug)
		if err != nil {
			return err
		}

		order, err := tx.NextOrder()
		if err != nil {
			return err
		}

		component = &models.PageComponent{
			Name:        name,
			Slug:        slug,
			Description: pagecontent.NormalizeDescription(req.Description),
			Order:       order,
			Fields:      models.NewPageComponentFields(0, fields),
		}
		return tx.Create(component)
	})
	if err != nil {
		return nil, apperrors.CreateFailed(err)
	}

	s.invalidate(ctx, component.ID)
	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModulePageComponent,
		Category: "create",
		Action:   "create_page_component",
		Detail:   "created page component " + component.Name,
		Metadata: map[string]interface{}{"componentId": component.ID, "slug": component.Slug},
	})

	return component, nil
}

// Update replaces name, description and the whole field set. The slug never changes.
func (s *PageComponentService) Update(ctx context.Context, actor models.Actor, id uint, req models.PageComponentRequest) (*models.PageComponent, error) {
	if s == nil || s.repo == nil {
		return nil, errComponentRepositoryMissing
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("component not found")
		}
		return nil, apperrors.UpdateFailed(err)
	}

	name, fields, err := normalizeComponentRequest(req)
	if err != nil {
		metrics.ContentRejected("component_definition")
		return nil, err
	}

	var component *models.PageComponent
	err = s.repo.Transaction(ctx, func(tx repository.PageComponentTx) error {
		current, err := tx.GetByID(id)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NotFound("component not found")
			}
			return err
		}

		exists, err := tx.ExistsByName(name, current.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.AlreadyExists("component already exists")
		}

		current.Name = name
		current.Description = pagecontent.NormalizeDescription(req.Description)
		current.Fields = models.NewPageComponentFields(current.ID, fields)
		if err := tx.Update(current); err != nil {
			return err
		}
		component = current
		return nil
	})
	if err != nil {
		return nil, apperrors.UpdateFailed(err)
	}

	s.invalidate(ctx, component.ID)
	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModulePageComponent,
		Category: "update",
		Action:   "update_page_component",
		Detail:   "updated page component " + component.Name,
		Metadata: map[string]interface{}{"componentId": component.ID, "slug": component.Slug},
	})

	return component, nil
}

func (s *PageComponentService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	if s == nil || s.repo == nil {
		return errComponentRepositoryMissing
	}

	component, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("component not found")
		}
		return apperrors.DeleteFailed(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("component not found")
		}
		return apperrors.DeleteFailed(err)
	}

	s.invalidate(ctx, id)
	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModulePageComponent,
		Category: "delete",
		Action:   "delete_page_component",
		Detail:   "deleted page component " + component.Name,
		Metadata: map[string]interface{}{"componentId": component.ID, "slug": component.Slug},
	})
	return nil
}

func normalizeComponentRequest(req models.PageComponentRequest) (string, []pagecontent.Field, error) {
	name := pagecontent.NormalizeName(req.Name)
	if name == "" {
		return "", nil, apperrors.Validation("provide component name")
	}
	fields, err := pagecontent.NormalizeFields(req.Fields)
	if err != nil {
		return "", nil, err
	}
	return name, fields, nil
}

func (s *PageComponentService) cacheValue(ctx context.Context, store func() error) {
	if s.cache == nil || !s.cache.Enabled() {
		return
	}
	if err := store(); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Failed to cache page component")
	}
}

func (s *PageComponentService) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateComponent(id); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Failed to invalidate page component cache")
	}
}
