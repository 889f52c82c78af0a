package repairticket

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("repair ticket not found")
	ErrVersionConflict = errors.New("repair ticket was modified concurrently")
)

// Repository persists repair tickets with the same optimistic versioning
// contract as the request repository.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*RepairTicket, error)
	Create(ctx context.Context, ticket *RepairTicket) error
	Save(ctx context.Context, ticket *RepairTicket) error
	FindOpenByContainerNo(ctx context.Context, containerNo string) ([]*RepairTicket, error)
}
