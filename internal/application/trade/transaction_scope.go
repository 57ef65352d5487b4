package trade

import (
	"context"

	inventoryapp "github.com/erp/returns/internal/application/inventory"
	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/partner"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/google/uuid"
)

// ReverseLogisticsGateway is the inventory side of the return workflow as seen
// from inside a trade transaction
type ReverseLogisticsGateway interface {
	FindReturnableMoves(ctx context.Context, tenantID, salesOrderID, productID uuid.UUID) ([]inventoryapp.ReturnableMove, error)
	CreateReverseTransfer(ctx context.Context, tenantID uuid.UUID, req inventoryapp.CreateReverseTransferRequest) (*inventory.Transfer, error)
	CancelTransfer(ctx context.Context, tenantID, transferID uuid.UUID) (*inventory.Transfer, error)
	ListReturnTransfers(ctx context.Context, tenantID, returnOrderID uuid.UUID) ([]inventory.Transfer, error)
}

// TransactionScope provides transactional access to the repositories of the
// return workflow.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Aggregate boundary notes:
//   - ReturnOrderRepo owns ReturnOrder and its lines.
//   - SalesOrderRepo is used to lock the sales order and, for refunds, to
//     write back delivered quantities.
//   - ReverseLogistics writes Transfer aggregates of the inventory context on
//     the same transaction so confirmation is all-or-nothing.
type TransactionalRepositories interface {
	ReturnOrderRepo() trade.ReturnOrderRepository
	SalesOrderRepo() trade.SalesOrderRepository
	CustomerRepo() partner.CustomerRepository
	ReverseLogistics() ReverseLogisticsGateway
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	returnOrderRepo  trade.ReturnOrderRepository
	salesOrderRepo   trade.SalesOrderRepository
	customerRepo     partner.CustomerRepository
	reverseLogistics ReverseLogisticsGateway
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	returnOrderRepo trade.ReturnOrderRepository,
	salesOrderRepo trade.SalesOrderRepository,
	customerRepo partner.CustomerRepository,
	reverseLogistics ReverseLogisticsGateway,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		returnOrderRepo:  returnOrderRepo,
		salesOrderRepo:   salesOrderRepo,
		customerRepo:     customerRepo,
		reverseLogistics: reverseLogistics,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ReturnOrderRepo returns the return order repository.
func (s *NoOpTransactionScope) ReturnOrderRepo() trade.ReturnOrderRepository {
	return s.returnOrderRepo
}

// SalesOrderRepo returns the sales order repository.
func (s *NoOpTransactionScope) SalesOrderRepo() trade.SalesOrderRepository {
	return s.salesOrderRepo
}

// CustomerRepo returns the customer repository.
func (s *NoOpTransactionScope) CustomerRepo() partner.CustomerRepository {
	return s.customerRepo
}

// ReverseLogistics returns the reverse logistics gateway.
func (s *NoOpTransactionScope) ReverseLogistics() ReverseLogisticsGateway {
	return s.reverseLogistics
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
var _ ReverseLogisticsGateway = (*inventoryapp.ReverseLogistics)(nil)
