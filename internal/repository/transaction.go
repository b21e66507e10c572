package repository

import (
	"gorm.io/gorm"
)

// lockWriters serializes the transactions that pass the same key until they
// end. Only PostgreSQL has transaction scoped advisory locks; elsewhere the
// enclosing transaction is all there is.
func lockWriters(tx *gorm.DB, key string) error {
	if tx.Dialector == nil || tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}

func existsWhere(tx *gorm.DB, model interface{}, column, value string, excludeID uint) (bool, error) {
	var count int64
	query := tx.Model(model).Where(column+" = ?", value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
