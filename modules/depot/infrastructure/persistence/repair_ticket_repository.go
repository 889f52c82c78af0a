package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/repairticket"
	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/servicerequest"
	"github.com/vinadepot/depot-sdk/modules/depot/infrastructure/persistence/models"
	"github.com/vinadepot/depot-sdk/pkg/composables"
)

const (
	repairTicketFindQuery = `
		SELECT id, container_no, status, estimated_cost, manager_comment,
		       version, created_at, updated_at
		FROM depot_repair_tickets`

	repairTicketInsertQuery = `
		INSERT INTO depot_repair_tickets (
			id, container_no, status, estimated_cost, manager_comment,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	repairTicketUpdateQuery = `
		UPDATE depot_repair_tickets
		SET status = $1, estimated_cost = $2, manager_comment = $3,
		    version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6`
)

type RepairTicketRepository struct{}

func NewRepairTicketRepository() repairticket.Repository {
	return &RepairTicketRepository{}
}

func (r *RepairTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*repairticket.RepairTicket, error) {
	tickets, err := r.queryTickets(ctx, repairTicketFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, repairticket.ErrNotFound
	}
	return tickets[0], nil
}

func (r *RepairTicketRepository) Create(ctx context.Context, ticket *repairticket.RepairTicket) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	dbRow := toDBRepairTicket(ticket)
	if _, err := tx.Exec(
		ctx,
		repairTicketInsertQuery,
		dbRow.ID,
		dbRow.ContainerNo,
		dbRow.Status,
		dbRow.EstimatedCost,
		dbRow.ManagerComment,
		dbRow.Version,
		dbRow.CreatedAt,
		dbRow.UpdatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to insert repair ticket")
	}
	return nil
}

func (r *RepairTicketRepository) Save(ctx context.Context, ticket *repairticket.RepairTicket) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	dbRow := toDBRepairTicket(ticket)
	tag, err := tx.Exec(
		ctx,
		repairTicketUpdateQuery,
		dbRow.Status,
		dbRow.EstimatedCost,
		dbRow.ManagerComment,
		dbRow.UpdatedAt,
		dbRow.ID,
		dbRow.Version,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update repair ticket")
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, ticket.ID()); err != nil {
			return err
		}
		return repairticket.ErrVersionConflict
	}
	return nil
}

func (r *RepairTicketRepository) FindOpenByContainerNo(ctx context.Context, containerNo string) ([]*repairticket.RepairTicket, error) {
	query := repairTicketFindQuery + ` WHERE container_no = $1 AND NOT (status = ANY($2)) ORDER BY created_at`
	return r.queryTickets(ctx, query, servicerequest.NormalizeContainerNo(containerNo), resolvedStatusList())
}

func resolvedStatusList() []string {
	return []string{
		string(repairticket.StatusApproved),
		string(repairticket.StatusRejected),
	}
}

func (r *RepairTicketRepository) queryTickets(ctx context.Context, query string, args ...interface{}) ([]*repairticket.RepairTicket, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query repair tickets")
	}
	defer rows.Close()

	tickets := make([]*repairticket.RepairTicket, 0)
	for rows.Next() {
		var dbRow models.RepairTicket
		if err := rows.Scan(
			&dbRow.ID,
			&dbRow.ContainerNo,
			&dbRow.Status,
			&dbRow.EstimatedCost,
			&dbRow.ManagerComment,
			&dbRow.Version,
			&dbRow.CreatedAt,
			&dbRow.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan repair ticket")
		}
		ticket, err := toDomainRepairTicket(&dbRow)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}
