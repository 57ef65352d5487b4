package persistence

import (
	"context"

	"github.com/erp/returns/internal/domain/partner"
	"github.com/erp/returns/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository stores customers in the customers table.
type GormCustomerRepository struct {
	db *gorm.DB
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByIDForTenant returns shared.ErrNotFound when the customer belongs to
// another tenant or does not exist.
func (r *GormCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	var row models.CustomerModel
	err := r.db.WithContext(ctx).
		Scopes(tenantRow(tenantID, id)).
		Take(&row).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return row.ToDomain(), nil
}

func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(customer)).Error
}
