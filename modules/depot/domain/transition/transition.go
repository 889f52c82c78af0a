package transition

import (
	"regexp"
	"strings"

	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
	"github.com/vinadepot/depot-sdk/pkg/serrors"
)

// Field names a payload value a catalog row requires.
type Field string

const (
	FieldReason        Field = "reason"
	FieldLicensePlate  Field = "licensePlate"
	FieldDriverName    Field = "driverName"
	FieldETA           Field = "eta"
	FieldYardSlot      Field = "yardSlot"
	FieldEstimatedCost Field = "estimatedCost"
)

// Effect identifies the side-effect handler a transition triggers after it
// has been persisted. Effects never roll back a committed transition.
type Effect string

const (
	EffectNone            Effect = ""
	EffectActivateChat    Effect = "activate_chat"
	EffectCaptureGate     Effect = "capture_gate_credentials"
	EffectOpenRepairCheck Effect = "open_repair_check"
	EffectRequestPayment  Effect = "request_payment"
)

// Payload carries the actor-supplied values for a single transition attempt.
type Payload map[Field]string

func (p Payload) Get(f Field) string {
	return strings.TrimSpace(p[f])
}

// Transition is one row of the catalog: a valid edge, the roles that may
// drive it, the payload it requires and the effect it triggers.
type Transition struct {
	From           Status
	To             Status
	Description    string
	AllowedRoles   []permissions.Role
	RequiredFields []Field
	Effect         Effect
}

func (t Transition) Allows(role permissions.Role) bool {
	for _, r := range t.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	ErrInvalidTransition    = serrors.NewError("INVALID_TRANSITION", "transition is not allowed for the current status and role", "Depot.Errors.InvalidTransition")
	ErrMissingRequiredField = serrors.NewError("MISSING_REQUIRED_FIELD", "a required payload field is absent", "Depot.Errors.MissingRequiredField")
	ErrInvalidPlate         = serrors.NewError("INVALID_PLATE", "license plate is malformed", "Depot.Errors.InvalidPlate")
	ErrInvalidDriverName    = serrors.NewError("INVALID_DRIVER_NAME", "driver name is too short", "Depot.Errors.InvalidDriverName")
)

var platePattern = regexp.MustCompile(`^[A-Z0-9\-\s.]{5,20}$`)

// NormalizePlate uppercases and trims a license plate before validation.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// ValidatePayload checks the row's required fields against the payload.
// Field-specific rules: reason and driverName have minimum lengths, the
// plate must match the depot plate pattern after normalization.
func ValidatePayload(t Transition, p Payload) error {
	for _, field := range t.RequiredFields {
		value := p.Get(field)
		if value == "" {
			return ErrMissingRequiredField.WithTemplateData(map[string]string{
				"field": string(field),
			})
		}
		switch field {
		case FieldReason:
			if len(value) < 5 {
				return ErrMissingRequiredField.WithTemplateData(map[string]string{
					"field": string(field),
					"rule":  "min=5",
				})
			}
		case FieldLicensePlate:
			if !platePattern.MatchString(NormalizePlate(value)) {
				return ErrInvalidPlate
			}
		case FieldDriverName:
			if len(value) < 2 {
				return ErrInvalidDriverName
			}
		}
	}
	return nil
}
