package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"backoffice-backend/internal/models"
	"backoffice-backend/internal/ordering"
)

// RoleListOptions is a resolved page of the role list. Column must be a
// database column name.
type RoleListOptions struct {
	Offset int
	Limit  int
	Column string
	Desc   bool
}

// RoleTx is the role store inside one write transaction.
type RoleTx interface {
	GetByID(id uint) (*models.Role, error)
	ExistsByName(name string, excludeID uint) (bool, error)
	NextOrder() (int, error)
	Create(role *models.Role) error
	Update(role *models.Role) error
}

type RoleRepository interface {
	List(ctx context.Context, opts RoleListOptions) ([]models.Role, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Role, error)
	Transaction(ctx context.Context, fn func(tx RoleTx) error) error
	Delete(ctx context.Context, id uint) error
	OrderStore() ordering.Store
}

type roleRepository struct {
	db *gorm.DB
}

type roleTx struct {
	tx *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) List(ctx context.Context, opts RoleListOptions) ([]models.Role, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Role{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Model(&models.Role{}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: opts.Column}, Desc: opts.Desc})
	if opts.Column != "id" {
		query = query.Order("id ASC")
	}
	if opts.Limit > 0 {
		query = query.Offset(opts.Offset).Limit(opts.Limit)
	}

	var roles []models.Role
	if err := query.Find(&roles).Error; err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

func (r *roleRepository) GetByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) Transaction(ctx context.Context, fn func(tx RoleTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockWriters(tx, "roles"); err != nil {
			return err
		}
		return fn(&roleTx{tx: tx})
	})
}

func (t *roleTx) GetByID(id uint) (*models.Role, error) {
	var role models.Role
	if err := t.tx.First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (t *roleTx) ExistsByName(name string, excludeID uint) (bool, error) {
	return existsWhere(t.tx, &models.Role{}, "name", name, excludeID)
}

func (t *roleTx) NextOrder() (int, error) {
	return nextOrder(t.tx, &models.Role{})
}

func (t *roleTx) Create(role *models.Role) error {
	return t.tx.Create(role).Error
}

func (t *roleTx) Update(role *models.Role) error {
	return t.tx.Save(role).Error
}

func (r *roleRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Role{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *roleRepository) OrderStore() ordering.Store {
	return newOrderingStore(r.db, func() interface{} { return &models.Role{} }, nil)
}
