package servicerequest

import (
	"time"

	"github.com/google/uuid"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
)

// DocType classifies an uploaded document reference. File storage is an
// external collaborator; the core keeps metadata only.
type DocType string

const (
	DocTypeDocument DocType = "DOCUMENT"
	DocTypePhoto    DocType = "PHOTO"
	DocTypeInvoice  DocType = "INVOICE"
)

type DocumentMeta struct {
	ID         uuid.UUID
	Type       DocType
	Name       string
	UploadedBy uuid.UUID
	UploadedAt time.Time
}

// RequiredDocTypesFor returns the document checklist for entering a status.
// Forwarding an IMPORT or EXPORT request requires at least one customs
// document on file; CONVERT moves inside the depot and needs none.
func RequiredDocTypesFor(status transition.Status, requestType RequestType) []DocType {
	if status == transition.StatusForwarded && requestType != TypeConvert {
		return []DocType{DocTypeDocument}
	}
	return nil
}
