package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/erp/returns/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReturnOrderRepository stores return orders with their lines. Lines are
// upserted one by one on Save and never deleted.
type GormReturnOrderRepository struct {
	db *gorm.DB
}

func NewGormReturnOrderRepository(db *gorm.DB) *GormReturnOrderRepository {
	return &GormReturnOrderRepository{db: db}
}

// FindByIDForTenant finds a return order by ID within a tenant
func (r *GormReturnOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.ReturnOrder, error) {
	return r.find(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds a return order and locks its row until the transaction ends
func (r *GormReturnOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.ReturnOrder, error) {
	return r.find(r.db.WithContext(ctx).Scopes(forUpdate), tenantID, id)
}

func (r *GormReturnOrderRepository) find(db *gorm.DB, tenantID, id uuid.UUID) (*trade.ReturnOrder, error) {
	var row models.ReturnOrderModel
	if err := db.Scopes(tenantRow(tenantID, id)).Preload("Lines", orderByCreatedAt).Take(&row).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return row.ToDomain(), nil
}

// FindAllForTenant lists active return orders with filtering and pagination
func (r *GormReturnOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.ReturnOrder, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReturnOrderModel{}).Where("tenant_id = ?", tenantID), filter)

	orderBy := ValidateSortField(filter.OrderBy, ReturnOrderSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.ReturnOrderModel
	if err := query.Preload("Lines", orderByCreatedAt).Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]trade.ReturnOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// CountForTenant counts active return orders matching filter
func (r *GormReturnOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReturnOrderModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountBySalesOrder counts active return orders raised against a sales order
func (r *GormReturnOrderRepository) CountBySalesOrder(ctx context.Context, tenantID, salesOrderID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReturnOrderModel{}).
		Where("tenant_id = ? AND sales_order_id = ? AND active = ?", tenantID, salesOrderID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type productQuantity struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// SumClaimedQuantityByProduct sums line quantities per product over the
// return orders of a sales order that still hold a claim. Refunded orders past
// draft have already lowered the delivered quantity. A cancelled order
// releases its claim except on lines whose reverse transfer completed, since
// those units came back; with the refund flag set they were never restored.
func (r *GormReturnOrderRepository) SumClaimedQuantityByProduct(ctx context.Context, tenantID, salesOrderID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []productQuantity
	if err := r.db.WithContext(ctx).
		Table("return_lines AS l").
		Select("l.product_id AS product_id, SUM(l.quantity) AS quantity").
		Joins("JOIN return_orders AS o ON o.id = l.return_order_id").
		Joins("LEFT JOIN transfers AS t ON t.id = l.transfer_id").
		Where("o.tenant_id = ? AND o.sales_order_id = ?", tenantID, salesOrderID).
		Where(r.db.
			Where("o.status <> ? AND NOT (o.to_refund = ? AND o.status IN ?)", trade.ReturnStatusCancelled, true,
				[]trade.ReturnStatus{trade.ReturnStatusConfirm, trade.ReturnStatusDone}).
			Or("o.status = ? AND o.to_refund = ? AND t.status = ?", trade.ReturnStatusCancelled, false,
				inventory.TransferStatusDone)).
		Group("l.product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	claimed := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		claimed[row.ProductID] = row.Quantity
	}
	return claimed, nil
}

// Save creates or updates a return order with its lines
func (r *GormReturnOrderRepository) Save(ctx context.Context, order *trade.ReturnOrder) error {
	model := models.ReturnOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(model).Error; err != nil {
			return err
		}
		for i := range model.Lines {
			if err := tx.Save(&model.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GenerateReturnName generates the next return order name of the current year.
// Format: RET/YYYY/NNNNN (e.g., RET/2026/00001)
func (r *GormReturnOrderRepository) GenerateReturnName(ctx context.Context, tenantID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("RET/%d/", time.Now().Year())
	return nextSequenceName(ctx, r.db, models.ReturnOrderModel{}.TableName(), "name", tenantID, prefix)
}

func (r *GormReturnOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = query.Where("active = ?", true)
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sales_order_number) LIKE ? OR LOWER(customer_name) LIKE ?",
			pattern, pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status", "customer_id", "sales_order_id":
			query = query.Where(key+" = ?", value)
		}
	}
	return query
}

var _ trade.ReturnOrderRepository = (*GormReturnOrderRepository)(nil)
