package transition

import (
	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
)

// Catalog is the authoritative, immutable table of valid transitions. It is
// built once at process start; a runtime change requires constructing a new
// catalog and swapping it in explicitly, never mutating rows in place.
type Catalog struct {
	rows  []Transition
	index map[Status][]int
}

func NewCatalog(rows []Transition) *Catalog {
	c := &Catalog{
		rows:  make([]Transition, len(rows)),
		index: make(map[Status][]int),
	}
	copy(c.rows, rows)
	for i, row := range c.rows {
		c.index[row.From] = append(c.index[row.From], i)
	}
	return c
}

// CanTransition is a pure lookup. Any unknown combination is a normal
// "not allowed" answer, never an error.
func (c *Catalog) CanTransition(from, to Status, role permissions.Role) bool {
	for _, i := range c.index[from] {
		row := c.rows[i]
		if row.To == to && row.Allows(role) {
			return true
		}
	}
	return false
}

// Find returns the catalog row for an edge if the role may drive it.
func (c *Catalog) Find(from, to Status, role permissions.Role) (Transition, bool) {
	for _, i := range c.index[from] {
		row := c.rows[i]
		if row.To == to && row.Allows(role) {
			return row, true
		}
	}
	return Transition{}, false
}

// ValidTransitions enumerates the rows leaving from that the role may drive,
// in catalog declaration order. When several candidates exist the caller
// chooses which to invoke; the catalog never guesses intent.
func (c *Catalog) ValidTransitions(from Status, role permissions.Role) []Transition {
	var out []Transition
	for _, i := range c.index[from] {
		row := c.rows[i]
		if row.Allows(role) {
			out = append(out, row)
		}
	}
	return out
}

// Rows returns a copy of the full table in declaration order.
func (c *Catalog) Rows() []Transition {
	out := make([]Transition, len(c.rows))
	copy(out, c.rows)
	return out
}

var depotStaff = []permissions.Role{permissions.RoleSaleAdmin, permissions.RoleSystemAdmin}

var anyParty = []permissions.Role{
	permissions.RoleCustomerAdmin,
	permissions.RoleCustomerUser,
	permissions.RoleSaleAdmin,
	permissions.RoleSystemAdmin,
}

var billing = []permissions.Role{
	permissions.RoleAccountant,
	permissions.RoleSaleAdmin,
	permissions.RoleSystemAdmin,
}

// Default builds the depot catalog. Declaration order here is the public
// enumeration order of ValidTransitions.
func Default() *Catalog {
	return NewCatalog([]Transition{
		{
			From:         StatusPending,
			To:           StatusReceived,
			Description:  "accept the request into depot intake",
			AllowedRoles: depotStaff,
		},
		{
			From:           StatusPending,
			To:             StatusRejected,
			Description:    "reject the request at intake",
			AllowedRoles:   depotStaff,
			RequiredFields: []Field{FieldReason},
		},
		{
			From:         StatusPending,
			To:           StatusCancelled,
			Description:  "cancel before intake",
			AllowedRoles: anyParty,
		},
		{
			From:           StatusReceived,
			To:             StatusScheduled,
			Description:    "schedule the container visit",
			AllowedRoles:   depotStaff,
			RequiredFields: []Field{FieldETA},
			Effect:         EffectActivateChat,
		},
		{
			From:           StatusReceived,
			To:             StatusRejected,
			Description:    "reject after intake review",
			AllowedRoles:   depotStaff,
			RequiredFields: []Field{FieldReason},
		},
		{
			From:         StatusScheduled,
			To:           StatusScheduledInfoAdded,
			Description:  "customer supplements visit information",
			AllowedRoles: permissions.CustomerRoles,
		},
		{
			From:         StatusScheduled,
			To:           StatusForwarded,
			Description:  "forward to the gate",
			AllowedRoles: depotStaff,
		},
		{
			From:         StatusScheduled,
			To:           StatusCancelled,
			Description:  "cancel a scheduled visit",
			AllowedRoles: anyParty,
		},
		{
			From:         StatusScheduledInfoAdded,
			To:           StatusForwarded,
			Description:  "forward to the gate",
			AllowedRoles: depotStaff,
		},
		{
			From:         StatusScheduledInfoAdded,
			To:           StatusCancelled,
			Description:  "cancel a scheduled visit",
			AllowedRoles: anyParty,
		},
		{
			From:           StatusForwarded,
			To:             StatusGateIn,
			Description:    "admit the truck through the inbound gate",
			AllowedRoles:   permissions.GateRoles,
			RequiredFields: []Field{FieldLicensePlate, FieldDriverName},
			Effect:         EffectCaptureGate,
		},
		{
			From:           StatusForwarded,
			To:             StatusGateOut,
			Description:    "admit the truck through the outbound gate",
			AllowedRoles:   permissions.GateRoles,
			RequiredFields: []Field{FieldLicensePlate, FieldDriverName},
			Effect:         EffectCaptureGate,
		},
		{
			From:           StatusForwarded,
			To:             StatusGateRejected,
			Description:    "turn the truck away at the gate",
			AllowedRoles:   permissions.GateRoles,
			RequiredFields: []Field{FieldReason},
		},
		{
			From:           StatusGateIn,
			To:             StatusInYard,
			Description:    "place the container into its yard slot",
			AllowedRoles:   depotStaff,
			RequiredFields: []Field{FieldYardSlot},
		},
		{
			From:         StatusInYard,
			To:           StatusChecking,
			Description:  "start the standards check",
			AllowedRoles: depotStaff,
			Effect:       EffectOpenRepairCheck,
		},
		{
			From:         StatusChecking,
			To:           StatusInYard,
			Description:  "standards check passed",
			AllowedRoles: depotStaff,
		},
		{
			From:           StatusChecking,
			To:             StatusPendingAccept,
			Description:    "repair quote awaiting customer acceptance",
			AllowedRoles:   depotStaff,
			RequiredFields: []Field{FieldEstimatedCost},
		},
		{
			From:           StatusChecking,
			To:             StatusRejected,
			Description:    "container cannot be repaired",
			AllowedRoles:   depotStaff,
			RequiredFields: []Field{FieldReason},
		},
		{
			From:         StatusPendingAccept,
			To:           StatusRepairing,
			Description:  "repair quote accepted",
			AllowedRoles: anyParty,
		},
		{
			From:           StatusPendingAccept,
			To:             StatusRejected,
			Description:    "repair quote declined",
			AllowedRoles:   anyParty,
			RequiredFields: []Field{FieldReason},
		},
		{
			From:         StatusRepairing,
			To:           StatusChecking,
			Description:  "re-check after repair",
			AllowedRoles: depotStaff,
		},
		{
			From:         StatusInYard,
			To:           StatusLeftYard,
			Description:  "container released from the yard",
			AllowedRoles: depotStaff,
		},
		{
			From:         StatusInYard,
			To:           StatusCompleted,
			Description:  "close and bill the visit",
			AllowedRoles: billing,
			Effect:       EffectRequestPayment,
		},
		{
			From:         StatusGateOut,
			To:           StatusLeftYard,
			Description:  "container left through the outbound gate",
			AllowedRoles: depotStaff,
		},
		{
			From:         StatusLeftYard,
			To:           StatusExported,
			Description:  "export confirmed, request payment",
			AllowedRoles: billing,
			Effect:       EffectRequestPayment,
		},
		{
			From:         StatusLeftYard,
			To:           StatusCompleted,
			Description:  "close and bill the visit",
			AllowedRoles: billing,
			Effect:       EffectRequestPayment,
		},
	})
}
