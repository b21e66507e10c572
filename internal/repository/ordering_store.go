package repository

import (
	"context"

	"gorm.io/gorm"

	"backoffice-backend/internal/ordering"
)

// orderingStore adapts an ordered table to ordering.Store. scope narrows the
// rows a reorder may touch, e.g. the blocks of one page.
type orderingStore struct {
	db       *gorm.DB
	newModel func() interface{}
	scope    func(*gorm.DB) *gorm.DB
}

type orderingTx struct {
	tx    *gorm.DB
	store *orderingStore
}

func newOrderingStore(db *gorm.DB, newModel func() interface{}, scope func(*gorm.DB) *gorm.DB) ordering.Store {
	if scope == nil {
		scope = func(db *gorm.DB) *gorm.DB { return db }
	}
	return &orderingStore{db: db, newModel: newModel, scope: scope}
}

func (s *orderingStore) Transaction(ctx context.Context, fn func(tx ordering.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderingTx{tx: tx, store: s})
	})
}

func (t *orderingTx) CountExisting(ids []uint) (int64, error) {
	var count int64
	err := t.tx.Model(t.store.newModel()).
		Scopes(t.store.scope).
		Where("id IN ?", ids).
		Count(&count).Error
	return count, err
}

func (t *orderingTx) SetOrder(id uint, order int) error {
	result := t.tx.Model(t.store.newModel()).
		Scopes(t.store.scope).
		Where("id = ?", id).
		Update("order", order)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// nextOrder returns MAX("order")+1 over the scoped rows, or 0 when there are none.
func nextOrder(db *gorm.DB, model interface{}) (int, error) {
	var maxOrder *int64
	row := db.Model(model).Select(`MAX("order")`).Row()
	if err := row.Scan(&maxOrder); err != nil {
		return 0, err
	}
	if maxOrder == nil {
		return 0, nil
	}
	return int(*maxOrder) + 1, nil
}
