package servicerequest

import (
	"github.com/vinadepot/depot-sdk/pkg/serrors"
)

var (
	// ErrActiveDuplicate guards the single-active-request-per-container
	// invariant at creation and intake time.
	ErrActiveDuplicate = serrors.NewError("ACTIVE_DUPLICATE", "an active request already exists for this container", "Depot.Errors.ActiveDuplicate")

	// ErrMissingDocuments fires when the document checklist for the target
	// status is not satisfied.
	ErrMissingDocuments = serrors.NewError("MISSING_DOCUMENTS", "required documents are not on file for this transition", "Depot.Errors.MissingDocuments")
)
