package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, defaultField otherwise
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ReturnOrderSortFields contains allowed sort fields for the staff return order listing
var ReturnOrderSortFields = map[string]bool{
	"created_at":         true,
	"updated_at":         true,
	"name":               true,
	"status":             true,
	"customer_name":      true,
	"sales_order_number": true,
	"confirmed_at":       true,
	"done_at":            true,
}
