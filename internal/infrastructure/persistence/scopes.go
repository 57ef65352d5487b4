package persistence

import (
	"errors"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tenantRow restricts a query to one row of one tenant.
func tenantRow(tenantID, id uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("tenant_id = ? AND id = ?", tenantID, id)
	}
}

// forUpdate takes a row lock held until the enclosing transaction ends.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func orderByCreatedAt(tx *gorm.DB) *gorm.DB {
	return tx.Order("created_at")
}

// translateNotFound maps gorm's missing-row error onto the domain one.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
