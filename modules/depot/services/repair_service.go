package services

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/repairticket"
	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/servicerequest"
	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/pkg/composables"
	"github.com/vinadepot/depot-sdk/pkg/metrics"
)

const unrepairableReason = "container failed inspection and cannot be repaired"

// RepairService couples a container's inspection sub-workflow to its parent
// request. The link is by container number only; every step re-resolves the
// active request and surfaces ErrOrphanedTicket when none exists instead of
// dropping a repair outcome on the floor.
type RepairService struct {
	tickets  repairticket.Repository
	requests *RequestService
	reqRepo  servicerequest.Repository
}

func NewRepairService(tickets repairticket.Repository, requests *RequestService, reqRepo servicerequest.Repository) *RepairService {
	s := &RepairService{
		tickets:  tickets,
		requests: requests,
		reqRepo:  reqRepo,
	}
	requests.RegisterEffectHandler(transition.EffectOpenRepairCheck, s.openCheck)
	return s
}

// openCheck runs as the side effect of a request entering CHECKING. A check
// already open for the container is reused, so re-checks after repair do
// not spawn duplicate tickets.
func (s *RepairService) openCheck(ctx context.Context, req *servicerequest.ServiceRequest) {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		open, err := s.tickets.FindOpenByContainerNo(txCtx, req.ContainerNo())
		if err != nil {
			return err
		}
		if len(open) > 0 {
			return nil
		}
		return s.tickets.Create(txCtx, repairticket.Open(req.ContainerNo(), time.Now().UTC()))
	})
	if err != nil {
		composables.UseLogger(ctx).WithError(err).
			Errorf("depot: failed to open repair check for container %s", req.ContainerNo())
	}
}

func (s *RepairService) GetByID(ctx context.Context, id uuid.UUID) (*repairticket.RepairTicket, error) {
	if err := authorizeDepot(ctx, RepairsAuthzObject, "resolve"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*repairticket.RepairTicket, error) {
		return s.tickets.GetByID(txCtx, id)
	})
}

// linkedRequest resolves the active parent request for a ticket. Lock order
// is fixed: the request row is always read and written before the ticket
// row inside one transaction.
func (s *RepairService) linkedRequest(ctx context.Context, ticket *repairticket.RepairTicket) (*servicerequest.ServiceRequest, error) {
	active, err := s.reqRepo.FindActiveByContainerNo(ctx, ticket.ContainerNo())
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, repairticket.ErrOrphanedTicket.WithTemplateData(map[string]string{
			"ticket":      ticket.ID().String(),
			"containerNo": ticket.ContainerNo(),
		})
	}
	return active[0], nil
}

// CompleteCheck records a standards check outcome. PASS approves the ticket
// and moves the request back toward the next depot stage. FAIL either parks
// the pair on a repair quote (REPAIRABLE, estimatedCost required) or
// rejects both (UNREPAIRABLE).
func (s *RepairService) CompleteCheck(
	ctx context.Context,
	ticketID uuid.UUID,
	result repairticket.CheckResult,
	decision repairticket.Decision,
	estimatedCost int64,
	comment string,
) error {
	if err := authorizeDepot(ctx, RepairsAuthzObject, "resolve"); err != nil {
		return err
	}

	return composables.InTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.tickets.GetByID(txCtx, ticketID)
		if err != nil {
			return err
		}
		req, err := s.linkedRequest(txCtx, ticket)
		if err != nil {
			return err
		}
		now := time.Now().UTC()

		switch {
		case result == repairticket.CheckPass:
			if _, err := s.requests.ApplyTransition(txCtx, req.ID(), transition.StatusInYard, nil); err != nil {
				return err
			}
			if err := ticket.Approve(comment, now); err != nil {
				return err
			}
			metrics.RepairOutcomes.WithLabelValues("approved").Inc()

		case decision == repairticket.DecisionUnrepairable:
			if _, err := s.requests.ApplyTransition(txCtx, req.ID(), transition.StatusRejected, transition.Payload{
				transition.FieldReason: unrepairableReason,
			}); err != nil {
				return err
			}
			if err := ticket.Reject(comment, now); err != nil {
				return err
			}
			metrics.RepairOutcomes.WithLabelValues("rejected").Inc()

		default:
			if _, err := s.requests.ApplyTransition(txCtx, req.ID(), transition.StatusPendingAccept, transition.Payload{
				transition.FieldEstimatedCost: formatCost(estimatedCost),
			}); err != nil {
				return err
			}
			if err := ticket.Quote(estimatedCost, comment, now); err != nil {
				return err
			}
		}

		return s.tickets.Save(txCtx, ticket)
	})
}

// AcceptQuote moves an accepted repair estimate into repair.
func (s *RepairService) AcceptQuote(ctx context.Context, ticketID uuid.UUID) error {
	if err := authorizeDepot(ctx, RepairsAuthzObject, "accept"); err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.tickets.GetByID(txCtx, ticketID)
		if err != nil {
			return err
		}
		req, err := s.linkedRequest(txCtx, ticket)
		if err != nil {
			return err
		}
		if _, err := s.requests.ApplyTransition(txCtx, req.ID(), transition.StatusRepairing, nil); err != nil {
			return err
		}
		if err := ticket.Accept(time.Now().UTC()); err != nil {
			return err
		}
		return s.tickets.Save(txCtx, ticket)
	})
}

// DeclineQuote rejects both the ticket and the parent request.
func (s *RepairService) DeclineQuote(ctx context.Context, ticketID uuid.UUID, reason string) error {
	if err := authorizeDepot(ctx, RepairsAuthzObject, "accept"); err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.tickets.GetByID(txCtx, ticketID)
		if err != nil {
			return err
		}
		req, err := s.linkedRequest(txCtx, ticket)
		if err != nil {
			return err
		}
		if _, err := s.requests.ApplyTransition(txCtx, req.ID(), transition.StatusRejected, transition.Payload{
			transition.FieldReason: reason,
		}); err != nil {
			return err
		}
		if err := ticket.Reject(reason, time.Now().UTC()); err != nil {
			return err
		}
		metrics.RepairOutcomes.WithLabelValues("rejected").Inc()
		return s.tickets.Save(txCtx, ticket)
	})
}

// FinishRepair marks the repair done and sends the request back to
// CHECKING for the re-check.
func (s *RepairService) FinishRepair(ctx context.Context, ticketID uuid.UUID) error {
	if err := authorizeDepot(ctx, RepairsAuthzObject, "resolve"); err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.tickets.GetByID(txCtx, ticketID)
		if err != nil {
			return err
		}
		req, err := s.linkedRequest(txCtx, ticket)
		if err != nil {
			return err
		}
		if _, err := s.requests.ApplyTransition(txCtx, req.ID(), transition.StatusChecking, nil); err != nil {
			return err
		}
		if err := ticket.FinishRepair(time.Now().UTC()); err != nil {
			return err
		}
		return s.tickets.Save(txCtx, ticket)
	})
}

func formatCost(v int64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}
