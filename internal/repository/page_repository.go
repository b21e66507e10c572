package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"backoffice-backend/internal/models"
	"backoffice-backend/internal/ordering"
)

// PageTx is the page store inside one write transaction.
type PageTx interface {
	ExistsByName(name string) (bool, error)
	ExistsBySlug(slug string) (bool, error)
	NextOrder() (int, error)
	Create(page *models.Page) error
}

type PageRepository interface {
	List(ctx context.Context) ([]models.Page, error)
	GetByID(ctx context.Context, id uint) (*models.Page, error)
	GetWithBlocks(ctx context.Context, id uint) (*models.Page, error)
	GetBySlugWithBlocks(ctx context.Context, slug string) (*models.Page, error)
	Transaction(ctx context.Context, fn func(tx PageTx) error) error
	Delete(ctx context.Context, id uint) error
	OrderStore() ordering.Store
}

type pageRepository struct {
	db *gorm.DB
}

type pageTx struct {
	tx *gorm.DB
}

func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

func orderedBlocks(db *gorm.DB) *gorm.DB {
	return db.Order("\"order\" ASC, created_at ASC")
}

func (r *pageRepository) List(ctx context.Context) ([]models.Page, error) {
	var pages []models.Page
	err := r.db.WithContext(ctx).Order("\"order\" ASC, created_at DESC").Find(&pages).Error
	return pages, err
}

func (r *pageRepository) GetByID(ctx context.Context, id uint) (*models.Page, error) {
	var page models.Page
	if err := r.db.WithContext(ctx).First(&page, id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) GetWithBlocks(ctx context.Context, id uint) (*models.Page, error) {
	var page models.Page
	if err := r.db.WithContext(ctx).Preload("Blocks", orderedBlocks).First(&page, id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) GetBySlugWithBlocks(ctx context.Context, slug string) (*models.Page, error) {
	var page models.Page
	if err := r.db.WithContext(ctx).Preload("Blocks", orderedBlocks).Where("slug = ?", slug).First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) Transaction(ctx context.Context, fn func(tx PageTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockWriters(tx, "pages"); err != nil {
			return err
		}
		return fn(&pageTx{tx: tx})
	})
}

func (t *pageTx) ExistsByName(name string) (bool, error) {
	return existsWhere(t.tx, &models.Page{}, "name", name, 0)
}

func (t *pageTx) ExistsBySlug(slug string) (bool, error) {
	return existsWhere(t.tx, &models.Page{}, "slug", slug, 0)
}

func (t *pageTx) NextOrder() (int, error) {
	return nextOrder(t.tx, &models.Page{})
}

func (t *pageTx) Create(page *models.Page) error {
	return t.tx.Omit("Blocks").Create(page).Error
}

// Delete removes the page blocks before the page itself.
func (r *pageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ?", id).Delete(&models.PageBlock{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Page{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *pageRepository) OrderStore() ordering.Store {
	return newOrderingStore(r.db, func() interface{} { return &models.Page{} }, nil)
}

type PageBlockRepository interface {
	GetByID(ctx context.Context, id uint) (*models.PageBlock, error)
	Append(ctx context.Context, block *models.PageBlock) error
	Delete(ctx context.Context, id uint) error
	OrderStore(pageID uint) ordering.Store
}

type pageBlockRepository struct {
	db *gorm.DB
}

func NewPageBlockRepository(db *gorm.DB) PageBlockRepository {
	return &pageBlockRepository{db: db}
}

func (r *pageBlockRepository) GetByID(ctx context.Context, id uint) (*models.PageBlock, error) {
	var block models.PageBlock
	if err := r.db.WithContext(ctx).First(&block, id).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

// Append places block after the existing blocks of its page. The order is
// assigned and the row inserted in one transaction.
func (r *pageBlockRepository) Append(ctx context.Context, block *models.PageBlock) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockWriters(tx, fmt.Sprintf("page_blocks:%d", block.PageID)); err != nil {
			return err
		}
		order, err := nextOrder(tx.Where("page_id = ?", block.PageID), &models.PageBlock{})
		if err != nil {
			return err
		}
		block.Order = order
		return tx.Create(block).Error
	})
}

func (r *pageBlockRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.PageBlock{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// OrderStore limits reordering to the blocks of pageID.
func (r *pageBlockRepository) OrderStore(pageID uint) ordering.Store {
	return newOrderingStore(r.db, func() interface{} { return &models.PageBlock{} }, func(db *gorm.DB) *gorm.DB {
		return db.Where("page_id = ?", pageID)
	})
}
