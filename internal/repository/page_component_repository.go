package repository

import (
	"context"

	"gorm.io/gorm"

	"backoffice-backend/internal/models"
)

// PageComponentTx is the component store as seen from inside one write
// transaction.
type PageComponentTx interface {
	GetByID(id uint) (*models.PageComponent, error)
	ExistsByName(name string, excludeID uint) (bool, error)
	ExistsBySlug(slug string) (bool, error)
	NextOrder() (int, error)
	Create(component *models.PageComponent) error
	Update(component *models.PageComponent) error
}

type PageComponentRepository interface {
	List(ctx context.Context) ([]models.PageComponent, error)
	GetByID(ctx context.Context, id uint) (*models.PageComponent, error)
	Transaction(ctx context.Context, fn func(tx PageComponentTx) error) error
	Delete(ctx context.Context, id uint) error
}

type pageComponentRepository struct {
	db *gorm.DB
}

type pageComponentTx struct {
	tx *gorm.DB
}

func NewPageComponentRepository(db *gorm.DB) PageComponentRepository {
	return &pageComponentRepository{db: db}
}

func orderedFields(db *gorm.DB) *gorm.DB {
	return db.Order("\"order\" ASC, created_at ASC")
}

func (r *pageComponentRepository) List(ctx context.Context) ([]models.PageComponent, error) {
	var components []models.PageComponent
	err := r.db.WithContext(ctx).
		Preload("Fields", orderedFields).
		Order("\"order\" ASC, created_at DESC").
		Find(&components).Error
	return components, err
}

func (r *pageComponentRepository) GetByID(ctx context.Context, id uint) (*models.PageComponent, error) {
	var component models.PageComponent
	if err := r.db.WithContext(ctx).Preload("Fields", orderedFields).First(&component, id).Error; err != nil {
		return nil, err
	}
	return &component, nil
}

// Transaction runs fn with writers of page_components serialized, so name
// checks, slug suffixing and order assignment see a stable table.
func (r *pageComponentRepository) Transaction(ctx context.Context, fn func(tx PageComponentTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockWriters(tx, "page_components"); err != nil {
			return err
		}
		return fn(&pageComponentTx{tx: tx})
	})
}

func (t *pageComponentTx) GetByID(id uint) (*models.PageComponent, error) {
	var component models.PageComponent
	if err := t.tx.Preload("Fields", orderedFields).First(&component, id).Error; err != nil {
		return nil, err
	}
	return &component, nil
}

func (t *pageComponentTx) ExistsByName(name string, excludeID uint) (bool, error) {
	return existsWhere(t.tx, &models.PageComponent{}, "name", name, excludeID)
}

func (t *pageComponentTx) ExistsBySlug(slug string) (bool, error) {
	return existsWhere(t.tx, &models.PageComponent{}, "slug", slug, 0)
}

func (t *pageComponentTx) NextOrder() (int, error) {
	return nextOrder(t.tx, &models.PageComponent{})
}

func (t *pageComponentTx) Create(component *models.PageComponent) error {
	fields := component.Fields
	if err := t.tx.Omit("Fields").Create(component).Error; err != nil {
		return err
	}
	if err := createFields(t.tx, component.ID, fields); err != nil {
		return err
	}
	component.Fields = fields
	return nil
}

// Update saves the component and replaces its field rows.
func (t *pageComponentTx) Update(component *models.PageComponent) error {
	fields := component.Fields
	if err := t.tx.Omit("Fields").Save(component).Error; err != nil {
		return err
	}
	if err := t.tx.Where("component_id = ?", component.ID).Delete(&models.PageComponentField{}).Error; err != nil {
		return err
	}
	if err := createFields(t.tx, component.ID, fields); err != nil {
		return err
	}
	component.Fields = fields
	return nil
}

func createFields(tx *gorm.DB, componentID uint, fields []models.PageComponentField) error {
	for idx := range fields {
		fields[idx].ID = 0
		fields[idx].ComponentID = componentID
		if err := tx.Create(&fields[idx]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the fields before the component itself.
func (r *pageComponentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("component_id = ?", id).Delete(&models.PageComponentField{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.PageComponent{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
