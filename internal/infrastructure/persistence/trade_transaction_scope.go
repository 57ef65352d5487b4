package persistence

import (
	"context"

	appinv "github.com/erp/returns/internal/application/inventory"
	apptrade "github.com/erp/returns/internal/application/trade"
	"github.com/erp/returns/internal/domain/partner"
	"github.com/erp/returns/internal/domain/trade"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormTradeTransactionScope implements the trade TransactionScope. Every
// repository handed to fn, including the inventory side behind
// ReverseLogistics, shares one GORM transaction.
type GormTradeTransactionScope struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormTradeTransactionScope creates a new GormTradeTransactionScope.
func NewGormTradeTransactionScope(db *gorm.DB, logger *zap.Logger) *GormTradeTransactionScope {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormTradeTransactionScope{db: db, logger: logger}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTradeTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTradeRepositories{tx: tx, logger: s.logger})
	})
}

type gormTradeRepositories struct {
	tx     *gorm.DB
	logger *zap.Logger
}

func (r *gormTradeRepositories) ReturnOrderRepo() trade.ReturnOrderRepository {
	return NewGormReturnOrderRepository(r.tx)
}

func (r *gormTradeRepositories) SalesOrderRepo() trade.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.tx)
}

func (r *gormTradeRepositories) CustomerRepo() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormTradeRepositories) ReverseLogistics() apptrade.ReverseLogisticsGateway {
	return appinv.NewReverseLogistics(NewGormTransferRepository(r.tx), r.logger)
}

var _ apptrade.TransactionScope = (*GormTradeTransactionScope)(nil)
var _ apptrade.TransactionalRepositories = (*gormTradeRepositories)(nil)
