package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/servicerequest"
	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
	"github.com/vinadepot/depot-sdk/pkg/composables"
	"github.com/vinadepot/depot-sdk/pkg/eventbus"
	"github.com/vinadepot/depot-sdk/pkg/metrics"
	"github.com/vinadepot/depot-sdk/pkg/serrors"
)

// EffectHandler runs after a transition has been persisted. Handler failures
// are logged and never fail the committed transition.
type EffectHandler func(ctx context.Context, req *servicerequest.ServiceRequest)

// RequestService is the entry point for everything that mutates a service
// request: creation, validated transitions, soft-delete visibility and
// document metadata. Reads go through it too so the caller's scope filter is
// applied uniformly.
type RequestService struct {
	repo      servicerequest.Repository
	catalog   *transition.Catalog
	publisher eventbus.EventBus
	effects   map[transition.Effect]EffectHandler
}

func NewRequestService(repo servicerequest.Repository, catalog *transition.Catalog, publisher eventbus.EventBus) *RequestService {
	return &RequestService{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		effects:   make(map[transition.Effect]EffectHandler),
	}
}

// RegisterEffectHandler binds a handler to a catalog effect. Later
// registrations replace earlier ones.
func (s *RequestService) RegisterEffectHandler(effect transition.Effect, handler EffectHandler) {
	s.effects[effect] = handler
}

// CanTransition is a pure catalog lookup; unknown combinations answer false.
func (s *RequestService) CanTransition(from, to transition.Status, role permissions.Role) bool {
	return s.catalog.CanTransition(from, to, role)
}

// ValidTransitions enumerates catalog rows in declaration order.
func (s *RequestService) ValidTransitions(from transition.Status, role permissions.Role) []transition.Transition {
	return s.catalog.ValidTransitions(from, role)
}

func (s *RequestService) Create(ctx context.Context, data *servicerequest.CreateDTO) (*servicerequest.ServiceRequest, error) {
	if err := authorizeDepot(ctx, RequestsAuthzObject, "create"); err != nil {
		return nil, err
	}
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsCustomer() {
		return nil, servicerequest.ErrForbidden
	}

	if fieldErrs, ok := data.Ok(); !ok {
		return nil, fieldErrs.First()
	}

	entity, err := data.ToEntity(actor.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return composables.InTxResult(ctx, func(txCtx context.Context) (*servicerequest.ServiceRequest, error) {
		active, err := s.repo.FindActiveByContainerNo(txCtx, entity.ContainerNo())
		if err != nil {
			return nil, err
		}
		if len(active) > 0 {
			return nil, servicerequest.ErrActiveDuplicate
		}
		if err := s.repo.Create(txCtx, entity); err != nil {
			return nil, err
		}
		s.publisher.Publish(servicerequest.NewCreatedEvent(entity, actor.ID))
		return entity, nil
	})
}

func (s *RequestService) GetByID(ctx context.Context, id uuid.UUID) (*servicerequest.ServiceRequest, error) {
	if err := authorizeDepot(ctx, RequestsAuthzObject, "view"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) (*servicerequest.ServiceRequest, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

// Find lists requests with the caller scope's soft-delete filter applied
// unless params.IncludeDeleted is set.
func (s *RequestService) Find(ctx context.Context, params *servicerequest.FindParams) ([]*servicerequest.ServiceRequest, error) {
	if err := authorizeDepot(ctx, RequestsAuthzObject, "view"); err != nil {
		return nil, err
	}
	return composables.InTxResult(ctx, func(txCtx context.Context) ([]*servicerequest.ServiceRequest, error) {
		return s.repo.Find(txCtx, params)
	})
}

// ApplyTransition validates and applies a single transition. Exactly one of
// two racing calls succeeds: the loser's optimistic save fails and is
// surfaced as an invalid transition, since its fromStatus precondition no
// longer holds.
func (s *RequestService) ApplyTransition(
	ctx context.Context,
	id uuid.UUID,
	to transition.Status,
	payload transition.Payload,
) (*servicerequest.ServiceRequest, error) {
	if err := authorizeDepot(ctx, RequestsAuthzObject, "transition"); err != nil {
		return nil, err
	}
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, err
	}

	var (
		from transition.Status
		row  transition.Transition
	)
	entity, err := composables.InTxResult(ctx, func(txCtx context.Context) (*servicerequest.ServiceRequest, error) {
		req, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}

		var ok bool
		row, ok = s.catalog.Find(req.Status(), to, actor.Role)
		if !ok {
			return nil, invalidTransition(req.Status(), to)
		}
		if row.Effect == transition.EffectCaptureGate && req.Type().GateTarget() != to {
			return nil, invalidTransition(req.Status(), to)
		}
		if err := transition.ValidatePayload(row, payload); err != nil {
			return nil, err
		}
		for _, docType := range servicerequest.RequiredDocTypesFor(to, req.Type()) {
			if !req.HasDocType(docType) {
				return nil, servicerequest.ErrMissingDocuments.WithTemplateData(map[string]string{
					"docType": string(docType),
				})
			}
		}
		if req.Status() == transition.StatusPending && to == transition.StatusReceived {
			active, err := s.repo.FindActiveByContainerNo(txCtx, req.ContainerNo())
			if err != nil {
				return nil, err
			}
			for _, other := range active {
				if other.ID() != req.ID() {
					return nil, servicerequest.ErrActiveDuplicate
				}
			}
		}

		from = req.Status()
		req.Transition(row, actor.Role, actor.ID, payload, time.Now().UTC())
		if err := s.repo.Save(txCtx, req); err != nil {
			if errors.Is(err, servicerequest.ErrVersionConflict) {
				return nil, invalidTransition(from, to)
			}
			return nil, err
		}
		return req, nil
	})
	if err != nil {
		s.countRejected(err)
		return nil, err
	}

	metrics.TransitionsApplied.WithLabelValues(string(to)).Inc()
	s.publisher.Publish(servicerequest.NewTransitionedEvent(entity, from, actor.Role, actor.ID))
	s.runEffect(ctx, entity, row.Effect)
	return entity, nil
}

func (s *RequestService) runEffect(ctx context.Context, req *servicerequest.ServiceRequest, effect transition.Effect) {
	if effect == transition.EffectNone {
		return
	}
	handler, ok := s.effects[effect]
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			composables.UseLogger(ctx).Errorf("depot: effect %s panicked for request %s: %v", effect, req.ID(), r)
		}
	}()
	handler(ctx, req)
}

func (s *RequestService) countRejected(err error) {
	var base *serrors.BaseError
	if errors.As(err, &base) {
		metrics.TransitionsRejected.WithLabelValues(base.Code).Inc()
		return
	}
	metrics.TransitionsRejected.WithLabelValues("INTERNAL").Inc()
}

func invalidTransition(from, to transition.Status) error {
	return transition.ErrInvalidTransition.WithTemplateData(map[string]string{
		"from": string(from),
		"to":   string(to),
	})
}

// SoftDelete hides the request from the caller scope's default listing.
func (s *RequestService) SoftDelete(ctx context.Context, id uuid.UUID, scope servicerequest.Scope) error {
	if err := authorizeDepot(ctx, RequestsAuthzObject, "delete"); err != nil {
		return err
	}
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		req, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := req.SoftDelete(scope, actor.Role, now); err != nil {
			return err
		}
		if err := s.repo.Save(txCtx, req); err != nil {
			return err
		}
		s.publisher.Publish(servicerequest.VisibilityChangedEvent{
			RequestID: req.ID(),
			Scope:     scope,
			Deleted:   true,
			ActorID:   actor.ID,
			At:        now,
		})
		return nil
	})
}

// Restore clears the scope's deletion timestamp; allowed from any status.
func (s *RequestService) Restore(ctx context.Context, id uuid.UUID, scope servicerequest.Scope) error {
	if err := authorizeDepot(ctx, RequestsAuthzObject, "restore"); err != nil {
		return err
	}
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		req, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := req.Restore(scope, actor.Role, now); err != nil {
			return err
		}
		if err := s.repo.Save(txCtx, req); err != nil {
			return err
		}
		s.publisher.Publish(servicerequest.VisibilityChangedEvent{
			RequestID: req.ID(),
			Scope:     scope,
			Deleted:   false,
			ActorID:   actor.ID,
			At:        now,
		})
		return nil
	})
}

// AddDocument records uploaded document metadata; the file itself lives in
// the external storage collaborator.
func (s *RequestService) AddDocument(ctx context.Context, id uuid.UUID, docType servicerequest.DocType, name string) error {
	if err := authorizeDepot(ctx, RequestsAuthzObject, "transition"); err != nil {
		return err
	}
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		req, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		req.AddDocument(servicerequest.DocumentMeta{
			ID:         uuid.New(),
			Type:       docType,
			Name:       name,
			UploadedBy: actor.ID,
			UploadedAt: time.Now().UTC(),
		})
		return s.repo.Save(txCtx, req)
	})
}

// IsChatAllowed is the predicate the external chat subsystem consults.
func (s *RequestService) IsChatAllowed(status transition.Status) bool {
	return transition.ChatAllowed(status)
}
