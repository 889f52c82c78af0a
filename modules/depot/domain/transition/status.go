package transition

// Status is the closed lifecycle state set of a service request. Unknown
// strings never round-trip into a Status: use ParseStatus at boundaries.
type Status string

const (
	StatusPending            Status = "PENDING"
	StatusReceived           Status = "RECEIVED"
	StatusScheduled          Status = "SCHEDULED"
	StatusScheduledInfoAdded Status = "SCHEDULED_INFO_ADDED"
	StatusForwarded          Status = "FORWARDED"
	StatusGateIn             Status = "GATE_IN"
	StatusGateOut            Status = "GATE_OUT"
	StatusGateRejected       Status = "GATE_REJECTED"
	StatusInYard             Status = "IN_YARD"
	StatusLeftYard           Status = "LEFT_YARD"
	StatusChecking           Status = "CHECKING"
	StatusPendingAccept      Status = "PENDING_ACCEPT"
	StatusRepairing          Status = "REPAIRING"
	StatusRejected           Status = "REJECTED"
	StatusCompleted          Status = "COMPLETED"
	StatusExported           Status = "EXPORTED"
	StatusCancelled          Status = "CANCELLED"
)

// AllStatuses is the declaration-order enumeration of the state set.
var AllStatuses = []Status{
	StatusPending,
	StatusReceived,
	StatusScheduled,
	StatusScheduledInfoAdded,
	StatusForwarded,
	StatusGateIn,
	StatusGateOut,
	StatusGateRejected,
	StatusInYard,
	StatusLeftYard,
	StatusChecking,
	StatusPendingAccept,
	StatusRepairing,
	StatusRejected,
	StatusCompleted,
	StatusExported,
	StatusCancelled,
}

var terminalStatuses = map[Status]struct{}{
	StatusGateRejected: {},
	StatusRejected:     {},
	StatusCompleted:    {},
	StatusExported:     {},
	StatusCancelled:    {},
}

var validStatuses = func() map[Status]struct{} {
	m := make(map[Status]struct{}, len(AllStatuses))
	for _, s := range AllStatuses {
		m[s] = struct{}{}
	}
	return m
}()

func (s Status) Valid() bool {
	_, ok := validStatuses[s]
	return ok
}

// Terminal reports whether no transition leads out of s. A container may
// have at most one request in a non-terminal status at any time.
func (s Status) Terminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// Rejected reports whether s belongs to the rejected family. Leaving a
// rejected-family status clears the request's rejection reason.
func (s Status) Rejected() bool {
	return s == StatusRejected || s == StatusGateRejected
}

func ParseStatus(v string) (Status, bool) {
	s := Status(v)
	return s, s.Valid()
}

// ChatAllowed reports whether the external chat subsystem may activate a
// channel for a request in this status.
func ChatAllowed(s Status) bool {
	switch s {
	case StatusScheduled, StatusScheduledInfoAdded, StatusForwarded,
		StatusGateIn, StatusGateOut, StatusInYard, StatusChecking,
		StatusPendingAccept, StatusRepairing, StatusLeftYard,
		StatusCompleted, StatusExported:
		return true
	default:
		return false
	}
}
