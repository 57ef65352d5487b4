package partner

import (
	"strings"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer is the partner a sales order was sold to. Portal users act on
// behalf of exactly one customer.
type Customer struct {
	shared.TenantAggregateRoot
	Code   string
	Name   string
	Email  string
	Locale string
	Status CustomerStatus
	// ReturnLocationID is the stock location returned goods from this customer
	// are received into, when configured for the customer's locale
	ReturnLocationID *uuid.UUID
}

// NewCustomer creates an active customer
func NewCustomer(tenantID uuid.UUID, code, name string) (*Customer, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Status:              CustomerStatusActive,
	}, nil
}

// SetLocale sets the customer's locale, e.g. "en_US"
func (c *Customer) SetLocale(locale string) {
	c.Locale = locale
	c.Touch()
}

// SetReturnLocation sets the location returned goods are received into
func (c *Customer) SetReturnLocation(locationID uuid.UUID) {
	c.ReturnLocationID = &locationID
	c.Touch()
}

// ReturnLocation returns the configured return location or nil when unknown
func (c *Customer) ReturnLocation() *uuid.UUID {
	if c.ReturnLocationID == nil || *c.ReturnLocationID == uuid.Nil {
		return nil
	}
	id := *c.ReturnLocationID
	return &id
}

// IsActive reports whether the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}
