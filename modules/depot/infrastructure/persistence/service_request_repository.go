package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/servicerequest"
	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/modules/depot/infrastructure/persistence/models"
	"github.com/vinadepot/depot-sdk/pkg/composables"
)

func terminalStatusList() []string {
	out := make([]string, 0, len(transition.AllStatuses))
	for _, s := range transition.AllStatuses {
		if s.Terminal() {
			out = append(out, string(s))
		}
	}
	return out
}

const (
	serviceRequestFindQuery = `
		SELECT id, type, container_no, status, eta, license_plate, driver_name,
		       yard_slot, rejected_reason, depot_deleted_at, customer_deleted_at,
		       documents, history, version, created_at, updated_at
		FROM depot_service_requests`

	serviceRequestInsertQuery = `
		INSERT INTO depot_service_requests (
			id, type, container_no, status, eta, license_plate, driver_name,
			yard_slot, rejected_reason, depot_deleted_at, customer_deleted_at,
			documents, history, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	serviceRequestUpdateQuery = `
		UPDATE depot_service_requests
		SET status = $1, eta = $2, license_plate = $3, driver_name = $4,
		    yard_slot = $5, rejected_reason = $6, depot_deleted_at = $7,
		    customer_deleted_at = $8, documents = $9, history = $10,
		    version = version + 1, updated_at = $11
		WHERE id = $12 AND version = $13`

	// partial unique index over non-terminal statuses; see depot-schema.sql
	activeContainerConstraint = "depot_service_requests_active_container_no_idx"
)

type ServiceRequestRepository struct{}

func NewServiceRequestRepository() servicerequest.Repository {
	return &ServiceRequestRepository{}
}

func (r *ServiceRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*servicerequest.ServiceRequest, error) {
	requests, err := r.queryRequests(ctx, serviceRequestFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, servicerequest.ErrNotFound
	}
	return requests[0], nil
}

func (r *ServiceRequestRepository) Create(ctx context.Context, req *servicerequest.ServiceRequest) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	dbRow, err := toDBServiceRequest(req)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx,
		serviceRequestInsertQuery,
		dbRow.ID,
		dbRow.Type,
		dbRow.ContainerNo,
		dbRow.Status,
		dbRow.ETA,
		dbRow.LicensePlate,
		dbRow.DriverName,
		dbRow.YardSlot,
		dbRow.RejectedReason,
		dbRow.DepotDeletedAt,
		dbRow.CustomerDeletedAt,
		dbRow.Documents,
		dbRow.History,
		dbRow.Version,
		dbRow.CreatedAt,
		dbRow.UpdatedAt,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == activeContainerConstraint {
			return servicerequest.ErrActiveDuplicate
		}
		return errors.Wrap(err, "failed to insert service request")
	}
	return nil
}

func (r *ServiceRequestRepository) Save(ctx context.Context, req *servicerequest.ServiceRequest) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	dbRow, err := toDBServiceRequest(req)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(
		ctx,
		serviceRequestUpdateQuery,
		dbRow.Status,
		dbRow.ETA,
		dbRow.LicensePlate,
		dbRow.DriverName,
		dbRow.YardSlot,
		dbRow.RejectedReason,
		dbRow.DepotDeletedAt,
		dbRow.CustomerDeletedAt,
		dbRow.Documents,
		dbRow.History,
		dbRow.UpdatedAt,
		dbRow.ID,
		dbRow.Version,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update service request")
	}
	if tag.RowsAffected() == 0 {
		// either the row is gone or someone else won the version race
		if _, err := r.GetByID(ctx, req.ID()); err != nil {
			return err
		}
		return servicerequest.ErrVersionConflict
	}
	return nil
}

func (r *ServiceRequestRepository) Find(ctx context.Context, params *servicerequest.FindParams) ([]*servicerequest.ServiceRequest, error) {
	where, args := buildRequestFilters(params)
	query := serviceRequestFindQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", params.Limit)
	}
	if params.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", params.Offset)
	}
	return r.queryRequests(ctx, query, args...)
}

func (r *ServiceRequestRepository) FindActiveByContainerNo(ctx context.Context, containerNo string) ([]*servicerequest.ServiceRequest, error) {
	query := serviceRequestFindQuery + ` WHERE container_no = $1 AND NOT (status = ANY($2))`
	return r.queryRequests(ctx, query, servicerequest.NormalizeContainerNo(containerNo), terminalStatusList())
}

func buildRequestFilters(params *servicerequest.FindParams) ([]string, []interface{}) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if !params.IncludeDeleted {
		switch params.Scope {
		case servicerequest.ScopeCustomer:
			where = append(where, "customer_deleted_at IS NULL")
		default:
			where = append(where, "depot_deleted_at IS NULL")
		}
	}
	if params.Status != nil {
		args = append(args, string(*params.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Type != nil {
		args = append(args, string(*params.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if params.ContainerNo != "" {
		args = append(args, servicerequest.NormalizeContainerNo(params.ContainerNo))
		where = append(where, fmt.Sprintf("container_no = $%d", len(args)))
	}
	return where, args
}

func (r *ServiceRequestRepository) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*servicerequest.ServiceRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query service requests")
	}
	defer rows.Close()

	requests := make([]*servicerequest.ServiceRequest, 0)
	for rows.Next() {
		var dbRow models.ServiceRequest
		if err := rows.Scan(
			&dbRow.ID,
			&dbRow.Type,
			&dbRow.ContainerNo,
			&dbRow.Status,
			&dbRow.ETA,
			&dbRow.LicensePlate,
			&dbRow.DriverName,
			&dbRow.YardSlot,
			&dbRow.RejectedReason,
			&dbRow.DepotDeletedAt,
			&dbRow.CustomerDeletedAt,
			&dbRow.Documents,
			&dbRow.History,
			&dbRow.Version,
			&dbRow.CreatedAt,
			&dbRow.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan service request")
		}
		req, err := toDomainServiceRequest(&dbRow)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
