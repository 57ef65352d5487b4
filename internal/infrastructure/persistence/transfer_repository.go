package persistence

import (
	"context"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTransferRepository stores transfers and their stock moves.
type GormTransferRepository struct {
	db *gorm.DB
}

func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByIDForTenant finds a transfer by ID within a tenant
func (r *GormTransferRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Transfer, error) {
	return r.findOne(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds a transfer and locks its row until the transaction ends
func (r *GormTransferRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Transfer, error) {
	return r.findOne(r.db.WithContext(ctx).Scopes(forUpdate), tenantID, id)
}

func (r *GormTransferRepository) findOne(db *gorm.DB, tenantID, id uuid.UUID) (*inventory.Transfer, error) {
	var row models.TransferModel
	if err := db.Scopes(tenantRow(tenantID, id)).Preload("Moves", orderByCreatedAt).Take(&row).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return row.ToDomain()
}

// FindDoneDeliveriesBySalesOrder returns completed deliveries of a sales order, oldest first
func (r *GormTransferRepository) FindDoneDeliveriesBySalesOrder(ctx context.Context, tenantID, salesOrderID uuid.UUID) ([]inventory.Transfer, error) {
	return r.findMany(r.db.WithContext(ctx).
		Where("tenant_id = ? AND sales_order_id = ? AND role_kind = ? AND status = ?",
			tenantID, salesOrderID, inventory.TransferKindDelivery, inventory.TransferStatusDone).
		Order("done_at").Order("created_at"))
}

// FindByReturnOrder returns the reverse transfers created for a return order
func (r *GormTransferRepository) FindByReturnOrder(ctx context.Context, tenantID, returnOrderID uuid.UUID) ([]inventory.Transfer, error) {
	return r.findMany(r.db.WithContext(ctx).
		Where("tenant_id = ? AND role_kind = ? AND return_order_id = ?",
			tenantID, inventory.TransferKindReturn, returnOrderID).
		Order("created_at"))
}

// FindByReturnSource returns the deliveries marked as donors of a return order
func (r *GormTransferRepository) FindByReturnSource(ctx context.Context, tenantID, returnOrderID uuid.UUID) ([]inventory.Transfer, error) {
	return r.findMany(r.db.WithContext(ctx).
		Where("tenant_id = ? AND role_kind = ? AND return_source_id = ?",
			tenantID, inventory.TransferKindDelivery, returnOrderID).
		Order("created_at"))
}

func (r *GormTransferRepository) findMany(query *gorm.DB) ([]inventory.Transfer, error) {
	var rows []models.TransferModel
	if err := query.Preload("Moves", orderByCreatedAt).Find(&rows).Error; err != nil {
		return nil, err
	}
	transfers := make([]inventory.Transfer, 0, len(rows))
	for i := range rows {
		t, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, *t)
	}
	return transfers, nil
}

type originQuantity struct {
	OriginMoveID uuid.UUID
	Quantity     decimal.Decimal
}

// SumReversedQuantityByOriginMoves sums quantities of non-cancelled return
// moves per delivered move they reverse. Moves never reversed are absent.
func (r *GormTransferRepository) SumReversedQuantityByOriginMoves(ctx context.Context, tenantID uuid.UUID, moveIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	reversed := make(map[uuid.UUID]decimal.Decimal, len(moveIDs))
	if len(moveIDs) == 0 {
		return reversed, nil
	}

	var rows []originQuantity
	if err := r.db.WithContext(ctx).
		Table("stock_moves AS m").
		Select("m.origin_move_id AS origin_move_id, SUM(m.quantity) AS quantity").
		Joins("JOIN transfers AS t ON t.id = m.transfer_id").
		Where("t.tenant_id = ? AND t.role_kind = ? AND t.status <> ?",
			tenantID, inventory.TransferKindReturn, inventory.TransferStatusCancelled).
		Where("m.origin_move_id IN ?", moveIDs).
		Group("m.origin_move_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		reversed[row.OriginMoveID] = row.Quantity
	}
	return reversed, nil
}

// Save creates or updates a transfer with its moves
func (r *GormTransferRepository) Save(ctx context.Context, transfer *inventory.Transfer) error {
	if !transfer.Role.IsValid() {
		return shared.NewDomainError("INVALID_TRANSFER_ROLE", "Transfer role is not set")
	}
	model := models.TransferModelFromDomain(transfer)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Moves").Save(model).Error; err != nil {
			return err
		}
		for i := range model.Moves {
			if err := tx.Save(&model.Moves[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GenerateName returns the next transfer name for prefix, e.g. WH/RET/00001
func (r *GormTransferRepository) GenerateName(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	return nextSequenceName(ctx, r.db, models.TransferModel{}.TableName(), "name", tenantID, prefix+"/")
}

// Ensure GormTransferRepository implements TransferRepository
var _ inventory.TransferRepository = (*GormTransferRepository)(nil)
