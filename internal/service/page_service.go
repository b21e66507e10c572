package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"

	"backoffice-backend/internal/apperrors"
	"backoffice-backend/internal/metrics"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/ordering"
	"backoffice-backend/internal/pagecontent"
	"backoffice-backend/internal/repository"
	"backoffice-backend/pkg/cache"
	"backoffice-backend/pkg/logger"
)

var errPageRepositoryMissing = errors.New("page repository not configured")

type PageService struct {
	pages      repository.PageRepository
	blocks     repository.PageBlockRepository
	normalizer *pagecontent.Normalizer
	cache      *cache.Cache
	audit      *AuditService
	now        func() time.Time
}

func NewPageService(
	pages repository.PageRepository,
	blocks repository.PageBlockRepository,
	normalizer *pagecontent.Normalizer,
	cacheService *cache.Cache,
	audit *AuditService,
) *PageService {
	if pages == nil || blocks == nil {
		return nil
	}
	return &PageService{
		pages:      pages,
		blocks:     blocks,
		normalizer: normalizer,
		cache:      cacheService,
		audit:      audit,
		now:        time.Now,
	}
}

func (s *PageService) ready() bool {
	return s != nil && s.pages != nil && s.blocks != nil
}

func (s *PageService) List(ctx context.Context) (*models.PageList, error) {
	if !s.ready() {
		return nil, errPageRepositoryMissing
	}

	if s.cache != nil && s.cache.Enabled() {
		var cached models.PageList
		if err := s.cache.GetCachedPageList(&cached); err == nil {
			metrics.CacheLookup("page_list", true)
			return &cached, nil
		}
		metrics.CacheLookup("page_list", false)
	}

	pages, err := s.pages.List(ctx)
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []models.Page{}
	}

	list := &models.PageList{Data: pages, Total: int64(len(pages))}
	s.cacheValue(ctx, func() error { return s.cache.CachePageList(list) })
	return list, nil
}

// GetByID returns the page with its blocks in display order.
func (s *PageService) GetByID(ctx context.Context, id uint) (*models.Page, error) {
	if !s.ready() {
		return nil, errPageRepositoryMissing
	}

	if s.cache != nil && s.cache.Enabled() {
		var cached models.Page
		if err := s.cache.GetCachedPage(id, &cached); err == nil {
			metrics.CacheLookup("page", true)
			return &cached, nil
		}
		metrics.CacheLookup("page", false)
	}

	page, err := s.pages.GetWithBlocks(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("page not found")
		}
		return nil, err
	}
	ensureBlocks(page)

	s.cacheValue(ctx, func() error { return s.cache.CachePage(page.ID, page) })
	return page, nil
}

// GetBySlug sanitizes slug with the same rules used when pages are created.
func (s *PageService) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	if !s.ready() {
		return nil, errPageRepositoryMissing
	}

	normalized := pagecontent.SanitizeSlug(slug)
	if normalized == "" {
		return nil, apperrors.NotFound("page not found")
	}

	if s.cache != nil && s.cache.Enabled() {
		var cached models.Page
		if err := s.cache.GetCachedPageBySlug(normalized, &cached); err == nil {
			metrics.CacheLookup("page_slug", true)
			return &cached, nil
		}
		metrics.CacheLookup("page_slug", false)
	}

	page, err := s.pages.GetBySlugWithBlocks(ctx, normalized)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("page not found")
		}
		return nil, err
	}
	ensureBlocks(page)

	s.cacheValue(ctx, func() error { return s.cache.CachePageBySlug(normalized, page) })
	return page, nil
}

func (s *PageService) Create(ctx context.Context, actor models.Actor, req models.CreatePageRequest) (*models.Page, error) {
	if !s.ready() {
		return nil, errPageRepositoryMissing
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("provide page name")
	}

	slugSource := name
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		slugSource = *req.Slug
	}

	var page *models.Page
	err := s.pages.Transaction(ctx, func(tx repository.PageTx) error {
		exists, err := tx.ExistsByName(name)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.AlreadyExists("page already exists")
		}

		slug, err := pagecontent.UniqueSlug(slugSource, "page", s.now(), tx.ExistsBySlug)
		if err != nil {
			return err
		}

		order, err := tx.NextOrder()
		if err != nil {
			return err
		}

		page = &models.Page{
			Name:        name,
			Slug:        slug,
			Description: pagecontent.NormalizeDescription(req.Description),
			Order:       order,
		}
		return tx.Create(page)
	})
	if err != nil {
		return nil, apperrors.CreateFailed(err)
	}
	page.Blocks = []models.PageBlock{}

	s.invalidate(ctx)
	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModulePage,
		Category: "create",
		Action:   "create_page",
		Detail:   "created page " + page.Name,
		Metadata: map[string]interface{}{"pageId": page.ID, "slug": page.Slug},
	})
	return page, nil
}

// Delete removes the page and all of its blocks.
func (s *PageService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	if !s.ready() {
		return errPageRepositoryMissing
	}

	page, err := s.pages.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("page not found")
		}
		return apperrors.DeleteFailed(err)
	}

	if err := s.pages.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("page not found")
		}
		return apperrors.DeleteFailed(err)
	}

	s.invalidate(ctx)
	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModulePage,
		Category: "delete",
		Action:   "delete_page",
		Detail:   "deleted page " + page.Name,
		Metadata: map[string]interface{}{"pageId": page.ID, "slug": page.Slug},
	})
	return nil
}

func (s *PageService) Reorder(ctx context.Context, actor models.Actor, entries []ordering.Entry) error {
	if !s.ready() {
		return errPageRepositoryMissing
	}

	err := ordering.Apply(ctx, s.pages.OrderStore(), entries)
	metrics.ReorderApplied("pages", err)
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModulePage,
		Category: "reorder",
		Action:   "reorder_pages",
		Detail:   "reordered pages",
		Metadata: map[string]interface{}{"entries": entries},
	})
	return nil
}

// CreateBlock validates the block content against its type and appends the
// block after the existing blocks of the page.
func (s *PageService) CreateBlock(ctx context.Context, actor models.Actor, req models.CreatePageBlockRequest) (*models.PageBlock, error) {
	if !s.ready() {
		return nil, errPageRepositoryMissing
	}

	if _, err := s.pages.GetByID(ctx, req.PageID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("page not found")
		}
		return nil, apperrors.CreateFailed(err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("provide block name")
	}

	blockType, content, err := s.normalizer.Normalize(ctx, req.Type, req.Content)
	if err != nil {
		if apperrors.IsValidation(err) {
			metrics.ContentRejected(rejectionKind(req.Type))
		}
		return nil, err
	}

	block := &models.PageBlock{
		PageID: req.PageID,
		Name:   name,
		Type:   blockType,
	}
	if content != nil {
		block.Content = datatypes.JSON(content)
	}

	if err := s.blocks.Append(ctx, block); err != nil {
		return nil, apperrors.CreateFailed(err)
	}

	s.invalidate(ctx)
	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModulePageBlock,
		Category: "create",
		Action:   "create_page_block",
		Detail:   "created " + string(block.Type) + " block " + block.Name,
		Metadata: map[string]interface{}{"pageId": block.PageID, "blockId": block.ID, "type": block.Type},
	})
	return block, nil
}

func (s *PageService) DeleteBlock(ctx context.Context, actor models.Actor, id uint) error {
	if !s.ready() {
		return errPageRepositoryMissing
	}

	block, err := s.blocks.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("page block not found")
		}
		return apperrors.DeleteFailed(err)
	}

	if err := s.blocks.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("page block not found")
		}
		return apperrors.DeleteFailed(err)
	}

	s.invalidate(ctx)
	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModulePageBlock,
		Category: "delete",
		Action:   "delete_page_block",
		Detail:   "deleted block " + block.Name,
		Metadata: map[string]interface{}{"pageId": block.PageID, "blockId": block.ID},
	})
	return nil
}

// ReorderBlocks reorders the blocks of one page. Ids of blocks on other pages count as missing.
func (s *PageService) ReorderBlocks(ctx context.Context, actor models.Actor, pageID uint, entries []ordering.Entry) error {
	if !s.ready() {
		return errPageRepositoryMissing
	}

	if _, err := s.pages.GetByID(ctx, pageID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("page not found")
		}
		return apperrors.UpdateFailed(err)
	}

	err := ordering.Apply(ctx, s.blocks.OrderStore(pageID), entries)
	metrics.ReorderApplied("page_blocks", err)
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	s.audit.Record(ctx, actor, AuditEntry{
		Module:   AuditModulePageBlock,
		Category: "reorder",
		Action:   "reorder_page_blocks",
		Detail:   "reordered page blocks",
		Metadata: map[string]interface{}{"pageId": pageID, "entries": entries},
	})
	return nil
}

func rejectionKind(rawType string) string {
	blockType, err := pagecontent.ParseBlockType(rawType)
	if err != nil {
		return "invalid_type"
	}
	return string(blockType)
}

func ensureBlocks(page *models.Page) {
	if page != nil && page.Blocks == nil {
		page.Blocks = []models.PageBlock{}
	}
}

func (s *PageService) cacheValue(ctx context.Context, store func() error) {
	if s.cache == nil || !s.cache.Enabled() {
		return
	}
	if err := store(); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Failed to cache page")
	}
}

func (s *PageService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePages(); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Failed to invalidate page cache")
	}
}
