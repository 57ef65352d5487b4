package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	apptrade "github.com/erp/returns/internal/application/trade"
	"github.com/erp/returns/internal/domain/inventory"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const dialectPostgres = "postgres"

// PortalReadRepository is the portal read side. It builds SQL with goqu and
// scans straight into the portal DTOs with sqlx, bypassing the aggregates.
type PortalReadRepository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

// NewPortalReadRepository creates a PortalReadRepository over db
func NewPortalReadRepository(db *sqlx.DB) *PortalReadRepository {
	return &PortalReadRepository{db: db, dialect: goqu.Dialect(dialectPostgres)}
}

// ListForPartner returns one page of the partner's active return orders
func (r *PortalReadRepository) ListForPartner(ctx context.Context, tenantID, partnerID uuid.UUID, query apptrade.PortalListQuery) ([]apptrade.ReturnOrderSummary, error) {
	ds := r.summaries().
		Where(partnerScope(tenantID, partnerID)...).
		Where(listFilters(query)...).
		GroupBy(goqu.I("o.id")).
		Order(portalOrder(query.SortBy)...)
	if query.PageSize > 0 {
		page := query.Page
		if page < 1 {
			page = 1
		}
		ds = ds.Limit(uint(query.PageSize)).Offset(uint((page - 1) * query.PageSize))
	}

	sqlQuery, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build portal list query: %w", err)
	}
	items := make([]apptrade.ReturnOrderSummary, 0)
	if err := r.db.SelectContext(ctx, &items, sqlQuery, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// CountForPartner counts the partner's active return orders matching query
func (r *PortalReadRepository) CountForPartner(ctx context.Context, tenantID, partnerID uuid.UUID, query apptrade.PortalListQuery) (int64, error) {
	sqlQuery, args, err := r.dialect.
		From(goqu.T("return_orders").As("o")).
		Select(goqu.COUNT("*")).
		Where(partnerScope(tenantID, partnerID)...).
		Where(listFilters(query)...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build portal count query: %w", err)
	}
	var count int64
	if err := r.db.GetContext(ctx, &count, sqlQuery, args...); err != nil {
		return 0, err
	}
	return count, nil
}

// FindForPartner returns a return order with its lines and transfer counts.
// Orders of other partners are reported as not found.
func (r *PortalReadRepository) FindForPartner(ctx context.Context, tenantID, partnerID, id uuid.UUID) (*apptrade.PortalReturnDetail, error) {
	sqlQuery, args, err := r.summaries().
		Where(partnerScope(tenantID, partnerID)...).
		Where(goqu.I("o.id").Eq(id)).
		GroupBy(goqu.I("o.id")).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build portal detail query: %w", err)
	}
	detail := &apptrade.PortalReturnDetail{}
	if err := r.db.GetContext(ctx, &detail.ReturnOrderSummary, sqlQuery, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if detail.Lines, err = r.lines(ctx, id); err != nil {
		return nil, err
	}
	if detail.DeliveryCount, err = r.countTransfers(ctx, tenantID,
		goqu.I("role_kind").Eq(string(inventory.TransferKindDelivery)),
		goqu.I("return_source_id").Eq(id)); err != nil {
		return nil, err
	}
	if detail.ReturnCount, err = r.countTransfers(ctx, tenantID,
		goqu.I("role_kind").Eq(string(inventory.TransferKindReturn)),
		goqu.I("return_order_id").Eq(id)); err != nil {
		return nil, err
	}
	return detail, nil
}

func (r *PortalReadRepository) summaries() *goqu.SelectDataset {
	return r.dialect.
		From(goqu.T("return_orders").As("o")).
		LeftJoin(goqu.T("return_lines").As("l"), goqu.On(goqu.I("l.return_order_id").Eq(goqu.I("o.id")))).
		Select(
			goqu.I("o.id"),
			goqu.I("o.name"),
			goqu.I("o.sales_order_id"),
			goqu.I("o.sales_order_number"),
			goqu.I("o.status"),
			goqu.I("o.reason"),
			goqu.L("COALESCE(SUM(l.quantity), 0)").As("total_quantity"),
			goqu.COUNT("l.id").As("line_count"),
			goqu.I("o.created_at"),
		)
}

func (r *PortalReadRepository) lines(ctx context.Context, returnOrderID uuid.UUID) ([]apptrade.PortalReturnLine, error) {
	sqlQuery, args, err := r.dialect.
		From(goqu.T("return_lines").As("l")).
		Join(goqu.T("return_orders").As("o"), goqu.On(goqu.I("o.id").Eq(goqu.I("l.return_order_id")))).
		Select(
			goqu.I("l.product_id"),
			goqu.I("l.product_name"),
			goqu.I("l.quantity"),
			goqu.L("COALESCE(NULLIF(l.reason, ''), o.reason)").As("reason"),
		).
		Where(goqu.I("l.return_order_id").Eq(returnOrderID)).
		Order(goqu.I("l.created_at").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build portal lines query: %w", err)
	}
	lines := make([]apptrade.PortalReturnLine, 0)
	if err := r.db.SelectContext(ctx, &lines, sqlQuery, args...); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *PortalReadRepository) countTransfers(ctx context.Context, tenantID uuid.UUID, conditions ...exp.Expression) (int, error) {
	sqlQuery, args, err := r.dialect.
		From("transfers").
		Select(goqu.COUNT("*")).
		Where(goqu.I("tenant_id").Eq(tenantID)).
		Where(conditions...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build transfer count query: %w", err)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, sqlQuery, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func partnerScope(tenantID, partnerID uuid.UUID) []exp.Expression {
	return []exp.Expression{
		goqu.I("o.tenant_id").Eq(tenantID),
		goqu.I("o.customer_id").Eq(partnerID),
		goqu.I("o.active").IsTrue(),
	}
}

func listFilters(query apptrade.PortalListQuery) []exp.Expression {
	filters := make([]exp.Expression, 0, 3)
	if query.Status != "" && query.Status != apptrade.PortalFilterAll {
		filters = append(filters, goqu.I("o.status").Eq(query.Status))
	}
	if query.DateBegin != nil {
		filters = append(filters, goqu.I("o.created_at").Gt(*query.DateBegin))
	}
	if query.DateEnd != nil {
		filters = append(filters, goqu.I("o.created_at").Lte(*query.DateEnd))
	}
	return filters
}

func portalOrder(sortBy string) []exp.OrderedExpression {
	switch sortBy {
	case apptrade.PortalSortByName:
		return []exp.OrderedExpression{goqu.I("o.name").Asc()}
	case apptrade.PortalSortBySale:
		return []exp.OrderedExpression{goqu.I("o.sales_order_number").Asc(), goqu.I("o.created_at").Desc()}
	default:
		return []exp.OrderedExpression{goqu.I("o.created_at").Desc()}
	}
}

var _ apptrade.PortalReadRepository = (*PortalReadRepository)(nil)
