package servicerequest

import (
	"time"

	"github.com/google/uuid"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
)

// HistoryEntry is one row of the append-only audit trail. Entries are never
// mutated and never revalidated against a later catalog.
type HistoryEntry struct {
	Timestamp time.Time
	From      transition.Status
	To        transition.Status
	ActorRole permissions.Role
	ActorID   uuid.UUID
	Note      string
}
