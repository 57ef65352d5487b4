package shared

import "github.com/google/uuid"

// RequestContext identifies who is acting and on behalf of which partner.
// It is built once at the HTTP boundary and passed to every application operation.
type RequestContext struct {
	TenantID  uuid.UUID
	ActorID   uuid.UUID
	PartnerID uuid.UUID
}

// NewRequestContext creates a request context
func NewRequestContext(tenantID, actorID, partnerID uuid.UUID) RequestContext {
	return RequestContext{
		TenantID:  tenantID,
		ActorID:   actorID,
		PartnerID: partnerID,
	}
}

// IsAuthenticated reports whether an actor is known
func (rc RequestContext) IsAuthenticated() bool {
	return rc.ActorID != uuid.Nil && rc.TenantID != uuid.Nil
}

// HasPartner reports whether the caller acts for a customer partner
func (rc RequestContext) HasPartner() bool {
	return rc.PartnerID != uuid.Nil
}

// OwnsPartner reports whether partnerID is the caller's own partner
func (rc RequestContext) OwnsPartner(partnerID uuid.UUID) bool {
	return rc.HasPartner() && rc.PartnerID == partnerID
}
