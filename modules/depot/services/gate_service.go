package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/servicerequest"
	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/pkg/metrics"
)

// GateService wraps the FORWARDED gate edges. It validates driver and plate
// before touching state and delegates the status change to the request
// service, which makes a second admission attempt fail as an invalid
// transition instead of double-recording credentials.
type GateService struct {
	requests *RequestService
}

func NewGateService(requests *RequestService) *GateService {
	return &GateService{requests: requests}
}

// Approve admits the truck. IMPORT and CONVERT requests gate in; EXPORT
// requests gate out. Plate and driver are captured exactly once per visit.
func (s *GateService) Approve(ctx context.Context, requestID uuid.UUID, licensePlate, driverName string) (*servicerequest.ServiceRequest, error) {
	if err := authorizeDepot(ctx, GateAuthzObject, "admit"); err != nil {
		return nil, err
	}

	plate := transition.NormalizePlate(licensePlate)
	payload := transition.Payload{
		transition.FieldLicensePlate: plate,
		transition.FieldDriverName:   driverName,
	}
	gateRow := transition.Transition{
		RequiredFields: []transition.Field{transition.FieldLicensePlate, transition.FieldDriverName},
	}
	if err := transition.ValidatePayload(gateRow, payload); err != nil {
		metrics.GateAdmissions.WithLabelValues("invalid").Inc()
		return nil, err
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	updated, err := s.requests.ApplyTransition(ctx, requestID, req.Type().GateTarget(), payload)
	if err != nil {
		metrics.GateAdmissions.WithLabelValues("denied").Inc()
		return nil, err
	}
	metrics.GateAdmissions.WithLabelValues("approved").Inc()
	return updated, nil
}

// Reject turns the truck away. GATE_REJECTED is terminal; a second reject
// on the same request fails as an invalid transition.
func (s *GateService) Reject(ctx context.Context, requestID uuid.UUID, reason string) (*servicerequest.ServiceRequest, error) {
	if err := authorizeDepot(ctx, GateAuthzObject, "admit"); err != nil {
		return nil, err
	}

	updated, err := s.requests.ApplyTransition(ctx, requestID, transition.StatusGateRejected, transition.Payload{
		transition.FieldReason: reason,
	})
	if err != nil {
		metrics.GateAdmissions.WithLabelValues("denied").Inc()
		return nil, err
	}
	metrics.GateAdmissions.WithLabelValues("rejected").Inc()
	return updated, nil
}
