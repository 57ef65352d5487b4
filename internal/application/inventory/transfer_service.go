package inventory

import (
	"context"

	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransferService exposes transfer operations to warehouse staff
type TransferService struct {
	transferRepo   inventory.TransferRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(transferRepo inventory.TransferRepository, txScope TransactionScope, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		transferRepo: transferRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TransferService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetByID retrieves a transfer by ID
func (s *TransferService) GetByID(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferResponse, error) {
	t, err := s.transferRepo.FindByIDForTenant(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}
	response := ToTransferResponse(t)
	return &response, nil
}

// ValidateTransfer executes a ready transfer and publishes TransferCompleted
func (s *TransferService) ValidateTransfer(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferResponse, error) {
	var t *inventory.Transfer
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		t, err = repos.TransferRepo().FindByIDForUpdate(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		if err := t.Validate(); err != nil {
			return err
		}
		return repos.TransferRepo().Save(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer validated",
		zap.String("transfer", t.Name),
		zap.String("role", t.Role.String()),
	)
	s.publish(ctx, t)

	response := ToTransferResponse(t)
	return &response, nil
}

// ErrReturnTransferOwnedByOrder is returned when staff try to cancel a
// reverse transfer directly. An open reverse transfer always belongs to a
// confirmed return order, and only cancelling that order may close it.
var ErrReturnTransferOwnedByOrder = shared.NewDomainError("INVALID_STATE",
	"Reverse transfers are cancelled by cancelling their return order")

// CancelTransfer cancels an open delivery
func (s *TransferService) CancelTransfer(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferResponse, error) {
	var t *inventory.Transfer
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		t, err = repos.TransferRepo().FindByIDForUpdate(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		if t.Role.IsReturn() && !t.Status.IsTerminal() {
			return ErrReturnTransferOwnedByOrder
		}
		if err := t.Cancel(); err != nil {
			return err
		}
		return repos.TransferRepo().Save(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer cancelled",
		zap.String("transfer", t.Name),
		zap.String("role", t.Role.String()),
	)
	s.publish(ctx, t)

	response := ToTransferResponse(t)
	return &response, nil
}

func (s *TransferService) publish(ctx context.Context, t *inventory.Transfer) {
	events := t.GetDomainEvents()
	t.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish transfer events",
			zap.String("transfer_id", t.ID.String()),
			zap.Error(err),
		)
	}
}
