package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newDeliveredOrder creates SO1 with one line of productID, fully ordered and delivered qty units
func newDeliveredOrder(t *testing.T, productID uuid.UUID, ordered, delivered int64) *SalesOrder {
	t.Helper()
	order, err := NewSalesOrder(uuid.New(), "SO-2026-00001", uuid.New(), "Azure Interior")
	require.NoError(t, err)
	_, err = order.AddItem(productID, "Desk Lamp", "LAMP-01", decimal.NewFromInt(ordered))
	require.NoError(t, err)
	if delivered > 0 {
		require.NoError(t, order.RecordDelivery(productID, decimal.NewFromInt(delivered)))
	}
	return order
}
