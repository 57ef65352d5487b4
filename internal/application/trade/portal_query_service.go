package trade

import (
	"context"
	"strings"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PortalReadRepository is the read side of the customer portal. Every query is
// scoped to one tenant and one partner.
type PortalReadRepository interface {
	ListForPartner(ctx context.Context, tenantID, partnerID uuid.UUID, query PortalListQuery) ([]ReturnOrderSummary, error)
	CountForPartner(ctx context.Context, tenantID, partnerID uuid.UUID, query PortalListQuery) (int64, error)
	// FindForPartner returns shared.ErrNotFound for records of other partners
	FindForPartner(ctx context.Context, tenantID, partnerID, id uuid.UUID) (*PortalReturnDetail, error)
}

// ReturnCountCache caches the portal home return counter per partner
type ReturnCountCache interface {
	Get(ctx context.Context, tenantID, partnerID uuid.UUID) (int64, bool, error)
	Set(ctx context.Context, tenantID, partnerID uuid.UUID, count int64) error
	Invalidate(ctx context.Context, tenantID, partnerID uuid.UUID) error
}

// DefaultPortalPageSize is used when no page size is configured
const DefaultPortalPageSize = 20

// PortalQueryService serves the customer's own return orders
type PortalQueryService struct {
	readRepo   PortalReadRepository
	countCache ReturnCountCache
	pageSize   int
	logger     *zap.Logger
}

// NewPortalQueryService creates a new PortalQueryService. countCache may be nil.
func NewPortalQueryService(readRepo PortalReadRepository, countCache ReturnCountCache, pageSize int, logger *zap.Logger) *PortalQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = DefaultPortalPageSize
	}
	return &PortalQueryService{
		readRepo:   readRepo,
		countCache: countCache,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// List returns one page of the caller's return orders and the total matching
func (s *PortalQueryService) List(ctx context.Context, rc shared.RequestContext, query PortalListQuery) ([]ReturnOrderSummary, int64, error) {
	if err := requirePartner(rc); err != nil {
		return nil, 0, err
	}
	query, err := s.normalize(query)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.readRepo.CountForPartner(ctx, rc.TenantID, rc.PartnerID, query)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.readRepo.ListForPartner(ctx, rc.TenantID, rc.PartnerID, query)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].AccessURL = trade.ReturnOrderAccessURL(items[i].ID)
	}
	return items, total, nil
}

// Get returns one of the caller's return orders
func (s *PortalQueryService) Get(ctx context.Context, rc shared.RequestContext, id uuid.UUID) (*PortalReturnDetail, error) {
	if err := requirePartner(rc); err != nil {
		return nil, err
	}
	detail, err := s.readRepo.FindForPartner(ctx, rc.TenantID, rc.PartnerID, id)
	if err != nil {
		return nil, err
	}
	detail.AccessURL = trade.ReturnOrderAccessURL(detail.ID)
	return detail, nil
}

// Count returns the number of return orders of the caller's partner
func (s *PortalQueryService) Count(ctx context.Context, rc shared.RequestContext) (int64, error) {
	if err := requirePartner(rc); err != nil {
		return 0, err
	}
	if s.countCache != nil {
		count, ok, err := s.countCache.Get(ctx, rc.TenantID, rc.PartnerID)
		if err != nil {
			s.logger.Warn("return count cache read failed", zap.Error(err))
		} else if ok {
			return count, nil
		}
	}

	count, err := s.readRepo.CountForPartner(ctx, rc.TenantID, rc.PartnerID, PortalListQuery{})
	if err != nil {
		return 0, err
	}
	if s.countCache != nil {
		if err := s.countCache.Set(ctx, rc.TenantID, rc.PartnerID, count); err != nil {
			s.logger.Warn("return count cache write failed", zap.Error(err))
		}
	}
	return count, nil
}

func (s *PortalQueryService) normalize(query PortalListQuery) (PortalListQuery, error) {
	query.Status = strings.TrimSpace(query.Status)
	if query.Status == PortalFilterAll {
		query.Status = ""
	}
	if query.Status != "" && !trade.ReturnStatus(query.Status).IsValid() {
		return query, shared.NewDomainError("INVALID_FILTER", "Unknown status filter: "+query.Status)
	}
	switch query.SortBy {
	case PortalSortByDate, PortalSortByName, PortalSortBySale:
	case "":
		query.SortBy = PortalSortByDate
	default:
		return query, shared.NewDomainError("INVALID_SORT", "Unknown sort key: "+query.SortBy)
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = s.pageSize
	}
	return query, nil
}

func requirePartner(rc shared.RequestContext) error {
	if !rc.IsAuthenticated() {
		return shared.ErrUnauthorized
	}
	if !rc.HasPartner() {
		return shared.ErrForbidden
	}
	return nil
}
