package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// nextSequenceName returns prefix followed by the next 5-digit number used in
// column of table for the tenant, e.g. RET/2026/00042. Numbers are zero-padded
// so the lexical maximum is also the numeric one.
func nextSequenceName(ctx context.Context, db *gorm.DB, table, column string, tenantID uuid.UUID, prefix string) (string, error) {
	var names []string
	if err := db.WithContext(ctx).
		Table(table).
		Where("tenant_id = ? AND "+column+" LIKE ?", tenantID, prefix+"%").
		Order(column+" DESC").
		Limit(1).
		Pluck(column, &names).Error; err != nil {
		return "", err
	}

	next := 1
	if len(names) > 0 {
		if n, err := strconv.Atoi(strings.TrimPrefix(names[0], prefix)); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}
