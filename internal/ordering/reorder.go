// Package ordering applies explicit {id, order} reorder requests to an ordered
// collection. A request is validated against the stored rows and written in a
// single transaction so a partial order is never visible.
package ordering

import (
	"context"

	"backoffice-backend/internal/apperrors"
)

// Entry assigns a display order to one item.
type Entry struct {
	ID    uint `json:"id" binding:"required"`
	Order int  `json:"order"`
}

// Tx is the view of a collection inside one transaction.
type Tx interface {
	// CountExisting returns how many of ids exist in the collection.
	CountExisting(ids []uint) (int64, error)
	SetOrder(id uint, order int) error
}

// Store runs fn atomically. Returning an error from fn rolls back every write made through tx.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}

// Apply validates entries and writes every order in one transaction.
func Apply(ctx context.Context, store Store, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids, err := distinctIDs(entries)
	if err != nil {
		return err
	}

	return store.Transaction(ctx, func(tx Tx) error {
		count, err := tx.CountExisting(ids)
		if err != nil {
			return apperrors.UpdateFailed(err)
		}
		if count != int64(len(entries)) {
			return apperrors.NotFound("one or more items not found")
		}

		for _, entry := range entries {
			if err := tx.SetOrder(entry.ID, entry.Order); err != nil {
				return apperrors.UpdateFailed(err)
			}
		}
		return nil
	})
}

func distinctIDs(entries []Entry) ([]uint, error) {
	seen := make(map[uint]struct{}, len(entries))
	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		if _, ok := seen[entry.ID]; ok {
			return nil, apperrors.Validation("duplicate id in reorder request")
		}
		seen[entry.ID] = struct{}{}
		ids = append(ids, entry.ID)
	}
	return ids, nil
}
