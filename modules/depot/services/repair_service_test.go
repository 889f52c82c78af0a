package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/repairticket"
	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/servicerequest"
	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
)

func openTicket(t *testing.T, f *fixture, containerNo string) *repairticket.RepairTicket {
	t.Helper()
	open, err := f.ticketRepo.FindOpenByContainerNo(context.Background(), containerNo)
	require.NoError(t, err)
	require.Len(t, open, 1)
	return open[0]
}

func TestRepairService_OpenCheck(t *testing.T) {
	t.Parallel()

	t.Run("Entering_Checking_Opens_A_Ticket", func(t *testing.T) {
		f := setupServices(t)
		ctx := actorCtx(permissions.RoleSaleAdmin)
		req := seedRequest(t, f.requestRepo, servicerequest.TypeImport, "TCNU1234567", transition.StatusInYard)

		_, err := f.requestService.ApplyTransition(ctx, req.ID(), transition.StatusChecking, nil)
		require.NoError(t, err)

		ticket := openTicket(t, f, "TCNU1234567")
		assert.Equal(t, repairticket.StatusChecking, ticket.Status())
	})

	t.Run("Recheck_Reuses_The_Open_Ticket", func(t *testing.T) {
		f := setupServices(t)
		ctx := actorCtx(permissions.RoleSaleAdmin)
		req := seedRequest(t, f.requestRepo, servicerequest.TypeImport, "TCNU1234567", transition.StatusInYard)

		_, err := f.requestService.ApplyTransition(ctx, req.ID(), transition.StatusChecking, nil)
		require.NoError(t, err)
		ticket := openTicket(t, f, "TCNU1234567")

		require.NoError(t, f.repairService.CompleteCheck(ctx, ticket.ID(), repairticket.CheckFail, repairticket.DecisionRepairable, 350, "door seal torn"))
		require.NoError(t, f.repairService.AcceptQuote(actorCtx(permissions.RoleCustomerUser), ticket.ID()))
		require.NoError(t, f.repairService.FinishRepair(ctx, ticket.ID()))

		open, err := f.ticketRepo.FindOpenByContainerNo(context.Background(), "TCNU1234567")
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, ticket.ID(), open[0].ID())
	})
}

func TestRepairService_CompleteCheck(t *testing.T) {
	t.Parallel()

	setupChecking := func(t *testing.T) (*fixture, context.Context, uuid.UUID, *repairticket.RepairTicket) {
		t.Helper()
		f := setupServices(t)
		ctx := actorCtx(permissions.RoleSaleAdmin)
		req := seedRequest(t, f.requestRepo, servicerequest.TypeImport, "TCNU1234567", transition.StatusInYard)
		_, err := f.requestService.ApplyTransition(ctx, req.ID(), transition.StatusChecking, nil)
		require.NoError(t, err)
		return f, ctx, req.ID(), openTicket(t, f, "TCNU1234567")
	}

	t.Run("Pass_Approves_And_Returns_To_Yard", func(t *testing.T) {
		f, ctx, reqID, ticket := setupChecking(t)

		require.NoError(t, f.repairService.CompleteCheck(ctx, ticket.ID(), repairticket.CheckPass, "", 0, "meets standard"))

		stored, err := f.repairService.GetByID(ctx, ticket.ID())
		require.NoError(t, err)
		assert.Equal(t, repairticket.StatusApproved, stored.Status())

		req, err := f.requestService.GetByID(ctx, reqID)
		require.NoError(t, err)
		assert.Equal(t, transition.StatusInYard, req.Status())
	})

	t.Run("Unrepairable_Rejects_Both", func(t *testing.T) {
		f, ctx, reqID, ticket := setupChecking(t)

		require.NoError(t, f.repairService.CompleteCheck(ctx, ticket.ID(), repairticket.CheckFail, repairticket.DecisionUnrepairable, 0, "frame cracked"))

		stored, err := f.repairService.GetByID(ctx, ticket.ID())
		require.NoError(t, err)
		assert.Equal(t, repairticket.StatusRejected, stored.Status())

		req, err := f.requestService.GetByID(ctx, reqID)
		require.NoError(t, err)
		assert.Equal(t, transition.StatusRejected, req.Status())
		assert.NotEmpty(t, req.RejectedReason())
	})

	t.Run("Repairable_Quotes_A_Repair", func(t *testing.T) {
		f, ctx, reqID, ticket := setupChecking(t)

		require.NoError(t, f.repairService.CompleteCheck(ctx, ticket.ID(), repairticket.CheckFail, repairticket.DecisionRepairable, 500, "floor panel dented"))

		stored, err := f.repairService.GetByID(ctx, ticket.ID())
		require.NoError(t, err)
		assert.Equal(t, repairticket.StatusPendingAccept, stored.Status())
		assert.Equal(t, int64(500), stored.EstimatedCost())

		req, err := f.requestService.GetByID(ctx, reqID)
		require.NoError(t, err)
		assert.Equal(t, transition.StatusPendingAccept, req.Status())
	})

	t.Run("Orphaned_Ticket_Is_Surfaced", func(t *testing.T) {
		f := setupServices(t)
		ctx := actorCtx(permissions.RoleSaleAdmin)
		ticket := repairticket.Open("ORPH1234567", time.Now().UTC())
		require.NoError(t, f.ticketRepo.Create(context.Background(), ticket))

		err := f.repairService.CompleteCheck(ctx, ticket.ID(), repairticket.CheckPass, "", 0, "")
		require.ErrorIs(t, err, repairticket.ErrOrphanedTicket)
	})
}

func TestRepairService_QuoteLifecycle(t *testing.T) {
	t.Parallel()

	setupQuoted := func(t *testing.T) (*fixture, uuid.UUID, *repairticket.RepairTicket) {
		t.Helper()
		f := setupServices(t)
		ctx := actorCtx(permissions.RoleSaleAdmin)
		req := seedRequest(t, f.requestRepo, servicerequest.TypeImport, "TCNU1234567", transition.StatusInYard)
		_, err := f.requestService.ApplyTransition(ctx, req.ID(), transition.StatusChecking, nil)
		require.NoError(t, err)
		ticket := openTicket(t, f, "TCNU1234567")
		require.NoError(t, f.repairService.CompleteCheck(ctx, ticket.ID(), repairticket.CheckFail, repairticket.DecisionRepairable, 500, "floor panel dented"))
		return f, req.ID(), ticket
	}

	t.Run("Customer_Accepts_Then_Repair_Finishes", func(t *testing.T) {
		f, reqID, ticket := setupQuoted(t)
		customerCtx := actorCtx(permissions.RoleCustomerUser)
		depotCtx := actorCtx(permissions.RoleSaleAdmin)

		require.NoError(t, f.repairService.AcceptQuote(customerCtx, ticket.ID()))
		req, err := f.requestService.GetByID(depotCtx, reqID)
		require.NoError(t, err)
		assert.Equal(t, transition.StatusRepairing, req.Status())

		require.NoError(t, f.repairService.FinishRepair(depotCtx, ticket.ID()))
		req, err = f.requestService.GetByID(depotCtx, reqID)
		require.NoError(t, err)
		assert.Equal(t, transition.StatusChecking, req.Status())

		stored, err := f.repairService.GetByID(depotCtx, ticket.ID())
		require.NoError(t, err)
		assert.Equal(t, repairticket.StatusChecked, stored.Status())

		// the re-check can still approve and release the container
		require.NoError(t, f.repairService.CompleteCheck(depotCtx, ticket.ID(), repairticket.CheckPass, "", 0, "repair verified"))
		req, err = f.requestService.GetByID(depotCtx, reqID)
		require.NoError(t, err)
		assert.Equal(t, transition.StatusInYard, req.Status())
	})

	t.Run("Customer_Declines_The_Quote", func(t *testing.T) {
		f, reqID, ticket := setupQuoted(t)
		customerCtx := actorCtx(permissions.RoleCustomerUser)
		depotCtx := actorCtx(permissions.RoleSaleAdmin)

		require.NoError(t, f.repairService.DeclineQuote(customerCtx, ticket.ID(), "repair quote too expensive"))

		req, err := f.requestService.GetByID(depotCtx, reqID)
		require.NoError(t, err)
		assert.Equal(t, transition.StatusRejected, req.Status())
		assert.Equal(t, "repair quote too expensive", req.RejectedReason())

		stored, err := f.repairService.GetByID(depotCtx, ticket.ID())
		require.NoError(t, err)
		assert.Equal(t, repairticket.StatusRejected, stored.Status())
	})

	t.Run("Customer_Cannot_Resolve_Checks", func(t *testing.T) {
		f, _, ticket := setupQuoted(t)

		err := f.repairService.FinishRepair(actorCtx(permissions.RoleCustomerUser), ticket.ID())
		require.Error(t, err)
	})
}
