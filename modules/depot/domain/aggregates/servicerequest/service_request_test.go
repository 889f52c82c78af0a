package servicerequest_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/servicerequest"
	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
)

func newPending(t *testing.T) *servicerequest.ServiceRequest {
	t.Helper()
	return servicerequest.New(servicerequest.TypeImport, "tcnu1234567", nil, uuid.New(), time.Now().UTC())
}

func row(from, to transition.Status, fields ...transition.Field) transition.Transition {
	return transition.Transition{
		From:           from,
		To:             to,
		AllowedRoles:   permissions.AllRoles,
		RequiredFields: fields,
	}
}

func TestServiceRequest_New(t *testing.T) {
	t.Parallel()
	req := newPending(t)

	assert.Equal(t, transition.StatusPending, req.Status())
	assert.Equal(t, "TCNU1234567", req.ContainerNo())
	assert.True(t, req.Active())
	require.Len(t, req.History(), 1)
	assert.Equal(t, "request created", req.History()[0].Note)
}

func TestServiceRequest_Transition(t *testing.T) {
	t.Parallel()

	t.Run("History_Grows_By_One_Per_Transition", func(t *testing.T) {
		req := newPending(t)
		actor := uuid.New()
		now := time.Now().UTC()

		req.Transition(row(transition.StatusPending, transition.StatusReceived), permissions.RoleSaleAdmin, actor, nil, now)
		req.Transition(row(transition.StatusReceived, transition.StatusScheduled), permissions.RoleSaleAdmin, actor, nil, now.Add(time.Minute))

		history := req.History()
		require.Len(t, history, 3)
		assert.Equal(t, transition.StatusPending, history[1].From)
		assert.Equal(t, transition.StatusReceived, history[1].To)
		assert.Equal(t, transition.StatusReceived, history[2].From)
		assert.Equal(t, transition.StatusScheduled, history[2].To)
	})

	t.Run("History_Timestamps_Stay_Monotonic", func(t *testing.T) {
		req := newPending(t)
		actor := uuid.New()
		now := time.Now().UTC()

		req.Transition(row(transition.StatusPending, transition.StatusReceived), permissions.RoleSaleAdmin, actor, nil, now)
		// clock skew: second event carries an earlier wall time
		req.Transition(row(transition.StatusReceived, transition.StatusScheduled), permissions.RoleSaleAdmin, actor, nil, now.Add(-time.Hour))

		history := req.History()
		require.Len(t, history, 3)
		assert.False(t, history[2].Timestamp.Before(history[1].Timestamp))
	})

	t.Run("Reason_Is_Recorded_As_Note", func(t *testing.T) {
		req := newPending(t)

		req.Transition(
			row(transition.StatusPending, transition.StatusRejected, transition.FieldReason),
			permissions.RoleSaleAdmin, uuid.New(),
			transition.Payload{transition.FieldReason: "registry mismatch"},
			time.Now().UTC(),
		)

		assert.Equal(t, "registry mismatch", req.RejectedReason())
		history := req.History()
		assert.Equal(t, "registry mismatch", history[len(history)-1].Note)
	})

	t.Run("Reason_Cleared_On_Leaving_Rejected_Family", func(t *testing.T) {
		req := newPending(t)
		actor := uuid.New()

		req.Transition(
			row(transition.StatusPending, transition.StatusRejected, transition.FieldReason),
			permissions.RoleSaleAdmin, actor,
			transition.Payload{transition.FieldReason: "registry mismatch"},
			time.Now().UTC(),
		)
		require.Equal(t, "registry mismatch", req.RejectedReason())

		// a hypothetical reopen row; the default catalog has none, but the
		// aggregate invariant holds for any catalog
		req.Transition(row(transition.StatusRejected, transition.StatusPending), permissions.RoleSystemAdmin, actor, nil, time.Now().UTC())
		assert.Empty(t, req.RejectedReason())
	})

	t.Run("Gate_Credentials_Stamp_Exactly_Once", func(t *testing.T) {
		req := newPending(t)
		gateRow := transition.Transition{
			From:         transition.StatusForwarded,
			To:           transition.StatusGateIn,
			AllowedRoles: permissions.GateRoles,
			Effect:       transition.EffectCaptureGate,
		}

		req.Transition(gateRow, permissions.RoleGateStaff, uuid.New(), transition.Payload{
			transition.FieldLicensePlate: "51c-123.45",
			transition.FieldDriverName:   "Nguyen Van A",
		}, time.Now().UTC())
		assert.Equal(t, "51C-123.45", req.LicensePlate())
		assert.Equal(t, "Nguyen Van A", req.DriverName())

		req.Transition(gateRow, permissions.RoleGateStaff, uuid.New(), transition.Payload{
			transition.FieldLicensePlate: "99Z-999.99",
			transition.FieldDriverName:   "Someone Else",
		}, time.Now().UTC())
		assert.Equal(t, "51C-123.45", req.LicensePlate())
		assert.Equal(t, "Nguyen Van A", req.DriverName())
	})

	t.Run("Yard_Slot_And_ETA_From_Payload", func(t *testing.T) {
		req := newPending(t)
		eta := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

		req.Transition(
			row(transition.StatusReceived, transition.StatusScheduled, transition.FieldETA),
			permissions.RoleSaleAdmin, uuid.New(),
			transition.Payload{transition.FieldETA: eta.Format(time.RFC3339)},
			time.Now().UTC(),
		)
		require.NotNil(t, req.ETA())
		assert.True(t, req.ETA().Equal(eta))

		req.Transition(
			row(transition.StatusGateIn, transition.StatusInYard, transition.FieldYardSlot),
			permissions.RoleSaleAdmin, uuid.New(),
			transition.Payload{transition.FieldYardSlot: "B-14"},
			time.Now().UTC(),
		)
		assert.Equal(t, "B-14", req.YardSlot())
	})
}

func TestServiceRequest_GateTarget(t *testing.T) {
	t.Parallel()
	assert.Equal(t, transition.StatusGateIn, servicerequest.TypeImport.GateTarget())
	assert.Equal(t, transition.StatusGateIn, servicerequest.TypeConvert.GateTarget())
	assert.Equal(t, transition.StatusGateOut, servicerequest.TypeExport.GateTarget())
}

func TestServiceRequest_Documents(t *testing.T) {
	t.Parallel()
	req := newPending(t)

	assert.False(t, req.HasDocType(servicerequest.DocTypeDocument))
	req.AddDocument(servicerequest.DocumentMeta{
		ID:         uuid.New(),
		Type:       servicerequest.DocTypeDocument,
		Name:       "customs.pdf",
		UploadedBy: uuid.New(),
		UploadedAt: time.Now().UTC(),
	})
	assert.True(t, req.HasDocType(servicerequest.DocTypeDocument))
	assert.False(t, req.HasDocType(servicerequest.DocTypeInvoice))
}

func TestRequiredDocTypesFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []servicerequest.DocType{servicerequest.DocTypeDocument},
		servicerequest.RequiredDocTypesFor(transition.StatusForwarded, servicerequest.TypeImport))
	assert.Empty(t, servicerequest.RequiredDocTypesFor(transition.StatusForwarded, servicerequest.TypeConvert))
	assert.Empty(t, servicerequest.RequiredDocTypesFor(transition.StatusScheduled, servicerequest.TypeImport))
}

func TestServiceRequest_SoftDeleteScopes(t *testing.T) {
	t.Parallel()

	rejected := func(t *testing.T) *servicerequest.ServiceRequest {
		t.Helper()
		req := newPending(t)
		req.Transition(
			row(transition.StatusPending, transition.StatusRejected, transition.FieldReason),
			permissions.RoleSaleAdmin, uuid.New(),
			transition.Payload{transition.FieldReason: "registry mismatch"},
			time.Now().UTC(),
		)
		return req
	}

	t.Run("Scopes_Do_Not_Interfere", func(t *testing.T) {
		req := rejected(t)
		now := time.Now().UTC()

		require.NoError(t, req.SoftDelete(servicerequest.ScopeCustomer, permissions.RoleCustomerUser, now))
		assert.True(t, req.DeletedIn(servicerequest.ScopeCustomer))
		assert.False(t, req.DeletedIn(servicerequest.ScopeDepot))

		require.NoError(t, req.SoftDelete(servicerequest.ScopeDepot, permissions.RoleSaleAdmin, now))
		assert.True(t, req.DeletedIn(servicerequest.ScopeDepot))

		require.NoError(t, req.Restore(servicerequest.ScopeCustomer, permissions.RoleCustomerAdmin, now))
		assert.False(t, req.DeletedIn(servicerequest.ScopeCustomer))
		assert.True(t, req.DeletedIn(servicerequest.ScopeDepot))
	})

	t.Run("Delete_Preserves_Status_And_History", func(t *testing.T) {
		req := rejected(t)
		before := len(req.History())

		require.NoError(t, req.SoftDelete(servicerequest.ScopeDepot, permissions.RoleSystemAdmin, time.Now().UTC()))
		assert.Equal(t, transition.StatusRejected, req.Status())
		assert.Len(t, req.History(), before)
	})

	t.Run("Wrong_Scope_Role", func(t *testing.T) {
		req := rejected(t)
		err := req.SoftDelete(servicerequest.ScopeDepot, permissions.RoleCustomerUser, time.Now().UTC())
		require.ErrorIs(t, err, servicerequest.ErrForbidden)

		err = req.SoftDelete(servicerequest.ScopeCustomer, permissions.RoleGateStaff, time.Now().UTC())
		require.ErrorIs(t, err, servicerequest.ErrForbidden)
	})

	t.Run("Active_Request_Not_Deletable", func(t *testing.T) {
		req := newPending(t)
		err := req.SoftDelete(servicerequest.ScopeDepot, permissions.RoleSaleAdmin, time.Now().UTC())
		require.ErrorIs(t, err, servicerequest.ErrNotDeletable)
	})
}

func TestCanDelete(t *testing.T) {
	t.Parallel()

	depotDeletable := []transition.Status{
		transition.StatusRejected, transition.StatusCancelled,
		transition.StatusCompleted, transition.StatusExported,
	}
	for _, s := range depotDeletable {
		assert.Truef(t, servicerequest.CanDelete(s, servicerequest.ScopeDepot), "depot should delete %s", s)
	}
	assert.False(t, servicerequest.CanDelete(transition.StatusGateRejected, servicerequest.ScopeDepot))

	assert.True(t, servicerequest.CanDelete(transition.StatusRejected, servicerequest.ScopeCustomer))
	assert.True(t, servicerequest.CanDelete(transition.StatusCancelled, servicerequest.ScopeCustomer))
	assert.False(t, servicerequest.CanDelete(transition.StatusCompleted, servicerequest.ScopeCustomer))
	assert.False(t, servicerequest.CanDelete(transition.StatusExported, servicerequest.ScopeCustomer))
}

func TestCreateDTO(t *testing.T) {
	t.Parallel()

	t.Run("Valid", func(t *testing.T) {
		dto := &servicerequest.CreateDTO{Type: " import ", ContainerNo: " tcnu1234567 "}
		_, ok := dto.Ok()
		require.True(t, ok)
		assert.Equal(t, "IMPORT", dto.Type)
		assert.Equal(t, "TCNU1234567", dto.ContainerNo)
	})

	t.Run("Bad_Type", func(t *testing.T) {
		dto := &servicerequest.CreateDTO{Type: "TRANSIT", ContainerNo: "TCNU1234567"}
		fieldErrs, ok := dto.Ok()
		require.False(t, ok)
		assert.Contains(t, fieldErrs, "Type")
	})

	t.Run("Container_Too_Short", func(t *testing.T) {
		dto := &servicerequest.CreateDTO{Type: "IMPORT", ContainerNo: "AB"}
		fieldErrs, ok := dto.Ok()
		require.False(t, ok)
		assert.Contains(t, fieldErrs, "ContainerNo")
	})

	t.Run("Bad_ETA_Fails_ToEntity", func(t *testing.T) {
		dto := &servicerequest.CreateDTO{Type: "IMPORT", ContainerNo: "TCNU1234567", ETA: "tomorrow"}
		_, ok := dto.Ok()
		require.True(t, ok)
		_, err := dto.ToEntity(uuid.New(), time.Now().UTC())
		require.Error(t, err)
	})
}
