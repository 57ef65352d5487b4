package persistence

import (
	"context"

	"github.com/erp/returns/internal/domain/trade"
	"github.com/erp/returns/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSalesOrderRepository persists sales orders and their items. Delivered
// quantities are written back here when a delivery is validated.
type GormSalesOrderRepository struct {
	db *gorm.DB
}

func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByIDForTenant finds a sales order by ID within a tenant
func (r *GormSalesOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	return r.find(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate serializes concurrent return requests against the same
// order. Only meaningful inside a transaction.
func (r *GormSalesOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	return r.find(r.db.WithContext(ctx).Scopes(forUpdate), tenantID, id)
}

func (r *GormSalesOrderRepository) find(db *gorm.DB, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	var row models.SalesOrderModel
	err := db.Scopes(tenantRow(tenantID, id)).Preload("Items", orderByCreatedAt).Take(&row).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return row.ToDomain(), nil
}

// Save creates or updates a sales order with its items
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	model := models.SalesOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}
		for i := range model.Items {
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
