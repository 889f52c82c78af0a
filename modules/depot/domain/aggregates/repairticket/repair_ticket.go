package repairticket

import (
	"time"

	"github.com/google/uuid"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/servicerequest"
	"github.com/vinadepot/depot-sdk/pkg/serrors"
)

// Status is the repair ticket's own sub-lifecycle, separate from the parent
// request's.
type Status string

const (
	StatusChecking      Status = "CHECKING"
	StatusPendingAccept Status = "PENDING_ACCEPT"
	StatusRepairing     Status = "REPAIRING"
	StatusChecked       Status = "CHECKED"
	StatusRejected      Status = "REJECTED"
	StatusApproved      Status = "APPROVED"
)

func (s Status) Resolved() bool {
	return s == StatusApproved || s == StatusRejected
}

// CheckResult is the outcome of a standards check.
type CheckResult string

const (
	CheckPass CheckResult = "PASS"
	CheckFail CheckResult = "FAIL"
)

// Decision is the manager's call after a failed check.
type Decision string

const (
	DecisionRepairable   Decision = "REPAIRABLE"
	DecisionUnrepairable Decision = "UNREPAIRABLE"
)

var (
	ErrInvalidTicketState = serrors.NewError("INVALID_TICKET_STATE", "operation is not valid for the ticket's current status", "Depot.Errors.InvalidTicketState")
	ErrOrphanedTicket     = serrors.NewError("ORPHANED_TICKET", "no active service request is linked to this ticket's container", "Depot.Errors.OrphanedTicket")
)

// RepairTicket is linked to a ServiceRequest by container number only. It
// never owns the request and can outlive it; the coordinator resolves the
// link through the active-request index at each step.
type RepairTicket struct {
	id             uuid.UUID
	containerNo    string
	status         Status
	estimatedCost  int64
	managerComment string
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

// Open starts a standards check for a container.
func Open(containerNo string, now time.Time) *RepairTicket {
	return &RepairTicket{
		id:          uuid.New(),
		containerNo: servicerequest.NormalizeContainerNo(containerNo),
		status:      StatusChecking,
		createdAt:   now,
		updatedAt:   now,
	}
}

func Hydrate(
	id uuid.UUID,
	containerNo string,
	status Status,
	estimatedCost int64,
	managerComment string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *RepairTicket {
	return &RepairTicket{
		id:             id,
		containerNo:    servicerequest.NormalizeContainerNo(containerNo),
		status:         status,
		estimatedCost:  estimatedCost,
		managerComment: managerComment,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (t *RepairTicket) ID() uuid.UUID          { return t.id }
func (t *RepairTicket) ContainerNo() string    { return t.containerNo }
func (t *RepairTicket) Status() Status         { return t.status }
func (t *RepairTicket) EstimatedCost() int64   { return t.estimatedCost }
func (t *RepairTicket) ManagerComment() string { return t.managerComment }
func (t *RepairTicket) Version() int64         { return t.version }
func (t *RepairTicket) CreatedAt() time.Time   { return t.createdAt }
func (t *RepairTicket) UpdatedAt() time.Time   { return t.updatedAt }

func (t *RepairTicket) advance(to Status, now time.Time) {
	t.status = to
	t.updatedAt = now
}

// Approve resolves the ticket as passed. Valid from CHECKING (first check
// passed) and CHECKED (post-repair check passed).
func (t *RepairTicket) Approve(comment string, now time.Time) error {
	if t.status != StatusChecking && t.status != StatusChecked {
		return ErrInvalidTicketState
	}
	if comment != "" {
		t.managerComment = comment
	}
	t.advance(StatusApproved, now)
	return nil
}

// Quote parks the ticket on customer acceptance of a repair estimate.
func (t *RepairTicket) Quote(estimatedCost int64, comment string, now time.Time) error {
	if t.status != StatusChecking {
		return ErrInvalidTicketState
	}
	t.estimatedCost = estimatedCost
	if comment != "" {
		t.managerComment = comment
	}
	t.advance(StatusPendingAccept, now)
	return nil
}

// Accept moves an accepted quote into repair.
func (t *RepairTicket) Accept(now time.Time) error {
	if t.status != StatusPendingAccept {
		return ErrInvalidTicketState
	}
	t.advance(StatusRepairing, now)
	return nil
}

// FinishRepair marks the repair done, awaiting the re-check.
func (t *RepairTicket) FinishRepair(now time.Time) error {
	if t.status != StatusRepairing {
		return ErrInvalidTicketState
	}
	t.advance(StatusChecked, now)
	return nil
}

// Reject resolves the ticket as unrepairable or declined.
func (t *RepairTicket) Reject(comment string, now time.Time) error {
	if t.status.Resolved() {
		return ErrInvalidTicketState
	}
	if comment != "" {
		t.managerComment = comment
	}
	t.advance(StatusRejected, now)
	return nil
}
