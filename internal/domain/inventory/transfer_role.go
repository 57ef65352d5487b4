package inventory

import (
	"fmt"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
)

// TransferKind is the persisted discriminator of a TransferRole
type TransferKind string

const (
	TransferKindDelivery TransferKind = "delivery"
	TransferKindReturn   TransferKind = "return"
)

// TransferRole says whether a transfer is an original outbound delivery or
// return traffic created for a specific return order. The zero value is not a
// valid role; use OriginalDelivery or ReturnOf.
type TransferRole struct {
	kind          TransferKind
	returnOrderID uuid.UUID
}

// OriginalDelivery is the role of an outbound delivery to the customer
func OriginalDelivery() TransferRole {
	return TransferRole{kind: TransferKindDelivery}
}

// ReturnOf is the role of a reverse transfer executing returnOrderID
func ReturnOf(returnOrderID uuid.UUID) TransferRole {
	return TransferRole{kind: TransferKindReturn, returnOrderID: returnOrderID}
}

// RestoreTransferRole rebuilds a role from its persisted columns
func RestoreTransferRole(kind string, returnOrderID *uuid.UUID) (TransferRole, error) {
	switch TransferKind(kind) {
	case TransferKindDelivery:
		if returnOrderID != nil && *returnOrderID != uuid.Nil {
			return TransferRole{}, shared.NewDomainError("INVALID_TRANSFER_ROLE",
				"A delivery transfer cannot reference a target return order")
		}
		return OriginalDelivery(), nil
	case TransferKindReturn:
		if returnOrderID == nil || *returnOrderID == uuid.Nil {
			return TransferRole{}, shared.NewDomainError("INVALID_TRANSFER_ROLE",
				"A return transfer must reference its return order")
		}
		return ReturnOf(*returnOrderID), nil
	}
	return TransferRole{}, shared.NewDomainError("INVALID_TRANSFER_ROLE",
		fmt.Sprintf("Unknown transfer role %q", kind))
}

// Kind returns the role discriminator
func (r TransferRole) Kind() TransferKind {
	return r.kind
}

// IsReturn reports whether the transfer is return traffic
func (r TransferRole) IsReturn() bool {
	return r.kind == TransferKindReturn
}

// IsDelivery reports whether the transfer is an original delivery
func (r TransferRole) IsDelivery() bool {
	return r.kind == TransferKindDelivery
}

// ReturnOrderID returns the return order a reverse transfer executes
func (r TransferRole) ReturnOrderID() (uuid.UUID, bool) {
	if r.kind != TransferKindReturn {
		return uuid.Nil, false
	}
	return r.returnOrderID, true
}

// ReturnOrderRef returns the target return order as a nullable column value
func (r TransferRole) ReturnOrderRef() *uuid.UUID {
	if id, ok := r.ReturnOrderID(); ok {
		return &id
	}
	return nil
}

// IsValid reports whether the role was built by one of the constructors
func (r TransferRole) IsValid() bool {
	switch r.kind {
	case TransferKindDelivery:
		return r.returnOrderID == uuid.Nil
	case TransferKindReturn:
		return r.returnOrderID != uuid.Nil
	}
	return false
}

// String renders the role for logs
func (r TransferRole) String() string {
	if id, ok := r.ReturnOrderID(); ok {
		return fmt.Sprintf("return_of(%s)", id)
	}
	return string(r.kind)
}
