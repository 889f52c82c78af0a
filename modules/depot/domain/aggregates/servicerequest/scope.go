package servicerequest

import (
	"time"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
	"github.com/vinadepot/depot-sdk/pkg/serrors"
)

// Scope is one of the two independent visibility dimensions over a request.
// Deleting in one scope never affects the other scope's view or the audit
// history; that independence is the mechanism's entire purpose.
type Scope string

const (
	ScopeDepot    Scope = "depot"
	ScopeCustomer Scope = "customer"
)

func (s Scope) Valid() bool {
	return s == ScopeDepot || s == ScopeCustomer
}

// AllowsRole reports whether the role belongs to the scope's actor set.
func (s Scope) AllowsRole(role permissions.Role) bool {
	switch s {
	case ScopeDepot:
		return role.IsDepot()
	case ScopeCustomer:
		return role.IsCustomer()
	default:
		return false
	}
}

var (
	ErrNotDeletable = serrors.NewError("NOT_DELETABLE", "status is not eligible for soft-delete in this scope", "Depot.Errors.NotDeletable")
	ErrForbidden    = serrors.NewError("FORBIDDEN", "role is not permitted for this scope", "Depot.Errors.Forbidden")
)

// CanDelete encodes "never allow deleting a request that still represents
// open work": depot staff may hide any finished request, customers only
// rejected or cancelled ones.
func CanDelete(status transition.Status, scope Scope) bool {
	switch scope {
	case ScopeDepot:
		switch status {
		case transition.StatusRejected, transition.StatusCancelled,
			transition.StatusCompleted, transition.StatusExported:
			return true
		}
	case ScopeCustomer:
		switch status {
		case transition.StatusRejected, transition.StatusCancelled:
			return true
		}
	}
	return false
}

// SoftDelete hides the request from the scope's default listing. Status and
// history are untouched.
func (r *ServiceRequest) SoftDelete(scope Scope, role permissions.Role, now time.Time) error {
	if !scope.AllowsRole(role) {
		return ErrForbidden
	}
	if !CanDelete(r.status, scope) {
		return ErrNotDeletable
	}
	switch scope {
	case ScopeDepot:
		r.depotDeletedAt = &now
	case ScopeCustomer:
		r.customerDeletedAt = &now
	}
	r.updatedAt = now
	return nil
}

// Restore clears the scope's timestamp. Restoring is non-destructive and is
// allowed regardless of current status.
func (r *ServiceRequest) Restore(scope Scope, role permissions.Role, now time.Time) error {
	if !scope.AllowsRole(role) {
		return ErrForbidden
	}
	switch scope {
	case ScopeDepot:
		r.depotDeletedAt = nil
	case ScopeCustomer:
		r.customerDeletedAt = nil
	}
	r.updatedAt = now
	return nil
}

// DeletedIn reports whether the request is hidden from the scope's default
// listing.
func (r *ServiceRequest) DeletedIn(scope Scope) bool {
	switch scope {
	case ScopeDepot:
		return r.depotDeletedAt != nil
	case ScopeCustomer:
		return r.customerDeletedAt != nil
	default:
		return false
	}
}
