package servicerequest

import (
	"context"

	"github.com/google/uuid"

	"github.com/go-faster/errors"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
)

var (
	ErrNotFound        = errors.New("service request not found")
	ErrVersionConflict = errors.New("service request was modified concurrently")
)

// FindParams filters listing queries. The zero value lists everything
// visible in the given scope.
type FindParams struct {
	Scope          Scope
	IncludeDeleted bool
	Status         *transition.Status
	Type           *RequestType
	ContainerNo    string
	Limit          int
	Offset         int
}

// Repository persists service requests. Save performs an optimistic version
// check: it fails with ErrVersionConflict when the stored version differs
// from the aggregate's loaded version, and increments it on success.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceRequest, error)
	Create(ctx context.Context, req *ServiceRequest) error
	Save(ctx context.Context, req *ServiceRequest) error
	Find(ctx context.Context, params *FindParams) ([]*ServiceRequest, error)
	// FindActiveByContainerNo returns requests for the container whose
	// status is non-terminal; the write-time guard for the single-active
	// invariant.
	FindActiveByContainerNo(ctx context.Context, containerNo string) ([]*ServiceRequest, error)
}
