package servicerequest

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
)

// RequestType is immutable after creation and decides which gate edge a
// forwarded request may take.
type RequestType string

const (
	TypeImport  RequestType = "IMPORT"
	TypeExport  RequestType = "EXPORT"
	TypeConvert RequestType = "CONVERT"
)

func (t RequestType) Valid() bool {
	return t == TypeImport || t == TypeExport || t == TypeConvert
}

// GateTarget returns the gate status this request type admits through.
func (t RequestType) GateTarget() transition.Status {
	if t == TypeExport {
		return transition.StatusGateOut
	}
	return transition.StatusGateIn
}

// ServiceRequest is the aggregate root of a container visit. All mutation
// goes through validated transitions; rows are never physically deleted.
type ServiceRequest struct {
	id                uuid.UUID
	requestType       RequestType
	containerNo       string
	status            transition.Status
	eta               *time.Time
	licensePlate      string
	driverName        string
	yardSlot          string
	rejectedReason    string
	depotDeletedAt    *time.Time
	customerDeletedAt *time.Time
	documents         []DocumentMeta
	history           []HistoryEntry
	version           int64
	createdAt         time.Time
	updatedAt         time.Time
}

// New creates a request in PENDING on behalf of a customer actor.
func New(requestType RequestType, containerNo string, eta *time.Time, actor uuid.UUID, now time.Time) *ServiceRequest {
	r := &ServiceRequest{
		id:          uuid.New(),
		requestType: requestType,
		containerNo: NormalizeContainerNo(containerNo),
		status:      transition.StatusPending,
		eta:         eta,
		createdAt:   now,
		updatedAt:   now,
	}
	r.history = append(r.history, HistoryEntry{
		Timestamp: now,
		From:      transition.StatusPending,
		To:        transition.StatusPending,
		ActorRole: permissions.RoleCustomerUser,
		ActorID:   actor,
		Note:      "request created",
	})
	return r
}

// Hydrate rebuilds an aggregate from persisted state.
func Hydrate(
	id uuid.UUID,
	requestType RequestType,
	containerNo string,
	status transition.Status,
	eta *time.Time,
	licensePlate string,
	driverName string,
	yardSlot string,
	rejectedReason string,
	depotDeletedAt *time.Time,
	customerDeletedAt *time.Time,
	documents []DocumentMeta,
	history []HistoryEntry,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *ServiceRequest {
	return &ServiceRequest{
		id:                id,
		requestType:       requestType,
		containerNo:       NormalizeContainerNo(containerNo),
		status:            status,
		eta:               eta,
		licensePlate:      licensePlate,
		driverName:        driverName,
		yardSlot:          yardSlot,
		rejectedReason:    rejectedReason,
		depotDeletedAt:    depotDeletedAt,
		customerDeletedAt: customerDeletedAt,
		documents:         documents,
		history:           history,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func NormalizeContainerNo(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

func (r *ServiceRequest) ID() uuid.UUID                { return r.id }
func (r *ServiceRequest) Type() RequestType            { return r.requestType }
func (r *ServiceRequest) ContainerNo() string          { return r.containerNo }
func (r *ServiceRequest) Status() transition.Status    { return r.status }
func (r *ServiceRequest) ETA() *time.Time              { return r.eta }
func (r *ServiceRequest) LicensePlate() string         { return r.licensePlate }
func (r *ServiceRequest) DriverName() string           { return r.driverName }
func (r *ServiceRequest) YardSlot() string             { return r.yardSlot }
func (r *ServiceRequest) RejectedReason() string       { return r.rejectedReason }
func (r *ServiceRequest) DepotDeletedAt() *time.Time   { return r.depotDeletedAt }
func (r *ServiceRequest) CustomerDeletedAt() *time.Time { return r.customerDeletedAt }
func (r *ServiceRequest) Version() int64               { return r.version }
func (r *ServiceRequest) CreatedAt() time.Time         { return r.createdAt }
func (r *ServiceRequest) UpdatedAt() time.Time         { return r.updatedAt }

func (r *ServiceRequest) Active() bool {
	return !r.status.Terminal()
}

// History returns a copy of the append-only audit trail.
func (r *ServiceRequest) History() []HistoryEntry {
	out := make([]HistoryEntry, len(r.history))
	copy(out, r.history)
	return out
}

func (r *ServiceRequest) Documents() []DocumentMeta {
	out := make([]DocumentMeta, len(r.documents))
	copy(out, r.documents)
	return out
}

func (r *ServiceRequest) AddDocument(doc DocumentMeta) {
	r.documents = append(r.documents, doc)
}

func (r *ServiceRequest) HasDocType(t DocType) bool {
	for _, d := range r.documents {
		if d.Type == t {
			return true
		}
	}
	return false
}

// Transition applies an already-validated catalog row. The caller (the
// request service) has checked CanTransition and the payload; this method
// performs the mutation and keeps the aggregate's internal invariants:
// history timestamps stay monotonic, gate credentials are stamped exactly
// once, a rejection reason never outlives the rejected family.
func (r *ServiceRequest) Transition(
	row transition.Transition,
	actorRole permissions.Role,
	actorID uuid.UUID,
	payload transition.Payload,
	now time.Time,
) {
	from := r.status

	if from.Rejected() && !row.To.Rejected() {
		r.rejectedReason = ""
	}
	if row.To.Rejected() {
		r.rejectedReason = payload.Get(transition.FieldReason)
	}

	if row.Effect == transition.EffectCaptureGate && r.licensePlate == "" && r.driverName == "" {
		r.licensePlate = transition.NormalizePlate(payload.Get(transition.FieldLicensePlate))
		r.driverName = payload.Get(transition.FieldDriverName)
	}

	if eta := payload.Get(transition.FieldETA); eta != "" {
		if parsed, err := time.Parse(time.RFC3339, eta); err == nil {
			r.eta = &parsed
		}
	}
	if slot := payload.Get(transition.FieldYardSlot); slot != "" {
		r.yardSlot = slot
	}

	ts := now
	if last := len(r.history); last > 0 && ts.Before(r.history[last-1].Timestamp) {
		ts = r.history[last-1].Timestamp
	}

	note := row.Description
	if reason := payload.Get(transition.FieldReason); reason != "" {
		note = reason
	}

	r.status = row.To
	r.updatedAt = ts
	r.history = append(r.history, HistoryEntry{
		Timestamp: ts,
		From:      from,
		To:        row.To,
		ActorRole: actorRole,
		ActorID:   actorID,
		Note:      note,
	})
}
