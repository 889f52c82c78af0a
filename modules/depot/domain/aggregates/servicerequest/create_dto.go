package servicerequest

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vinadepot/depot-sdk/pkg/constants"
	"github.com/vinadepot/depot-sdk/pkg/serrors"
)

// CreateDTO is the customer-facing payload for opening a request.
type CreateDTO struct {
	Type        string `json:"type" validate:"required,oneof=IMPORT EXPORT CONVERT"`
	ContainerNo string `json:"container_no" validate:"required,min=4,max=20"`
	ETA         string `json:"eta" validate:"omitempty"`
}

func (d *CreateDTO) Normalize() {
	d.Type = strings.ToUpper(strings.TrimSpace(d.Type))
	d.ContainerNo = NormalizeContainerNo(d.ContainerNo)
	d.ETA = strings.TrimSpace(d.ETA)
}

// Ok validates the DTO and returns field-keyed errors on failure.
func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()

	errs := constants.Validate.Struct(d)
	if errs == nil {
		return serrors.ValidationErrors{}, true
	}

	validationErrors := serrors.ProcessValidatorErrors(
		errs.(validator.ValidationErrors),
		func(field string) string {
			return fmt.Sprintf("Depot.Requests.Fields.%s", field)
		},
	)
	return validationErrors, false
}

// ToEntity builds the PENDING aggregate. Call Ok first.
func (d *CreateDTO) ToEntity(actorID uuid.UUID, now time.Time) (*ServiceRequest, error) {
	var eta *time.Time
	if d.ETA != "" {
		parsed, err := time.Parse(time.RFC3339, d.ETA)
		if err != nil {
			return nil, serrors.NewFieldRequiredError("eta", "Depot.Requests.Fields.ETA")
		}
		eta = &parsed
	}
	return New(RequestType(d.Type), d.ContainerNo, eta, actorID, now), nil
}
