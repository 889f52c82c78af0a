package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/aggregates/servicerequest"
	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/modules/depot/infrastructure/persistence"
	"github.com/vinadepot/depot-sdk/pkg/composables"
	"github.com/vinadepot/depot-sdk/pkg/configuration"
)

type requestOutput struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	ContainerNo    string          `json:"container_no"`
	Status         string          `json:"status"`
	LicensePlate   string          `json:"license_plate,omitempty"`
	DriverName     string          `json:"driver_name,omitempty"`
	YardSlot       string          `json:"yard_slot,omitempty"`
	RejectedReason string          `json:"rejected_reason,omitempty"`
	Version        int64           `json:"version"`
	History        []historyOutput `json:"history"`
}

type historyOutput struct {
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorRole string    `json:"actor_role"`
	Note      string    `json:"note,omitempty"`
}

func connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	conf := configuration.Use()
	return pgxpool.New(ctx, conf.Database.ConnectionString())
}

func newRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Inspect service requests",
	}
	cmd.AddCommand(newRequestShowCmd())
	cmd.AddCommand(newRequestListCmd())
	return cmd
}

func newRequestShowCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one request with its full status history",
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID, err := uuid.Parse(id)
			if err != nil {
				return fmt.Errorf("invalid --id: %w", err)
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := composables.WithPool(cmd.Context(), pool)
			repo := persistence.NewServiceRequestRepository()
			req, err := repo.GetByID(ctx, requestID)
			if err != nil {
				return err
			}
			return writeJSON(toRequestOutput(req))
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "request id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newRequestListCmd() *cobra.Command {
	var (
		scope          string
		status         string
		containerNo    string
		includeDeleted bool
		limit          int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requests visible in a scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &servicerequest.FindParams{
				Scope:          servicerequest.Scope(scope),
				IncludeDeleted: includeDeleted,
				ContainerNo:    containerNo,
				Limit:          limit,
			}
			if status != "" {
				parsed, ok := transition.ParseStatus(status)
				if !ok {
					return fmt.Errorf("unknown status %q", status)
				}
				params.Status = &parsed
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := composables.WithPool(cmd.Context(), pool)
			repo := persistence.NewServiceRequestRepository()
			requests, err := repo.Find(ctx, params)
			if err != nil {
				return err
			}

			out := make([]requestOutput, 0, len(requests))
			for _, req := range requests {
				out = append(out, toRequestOutput(req))
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", string(servicerequest.ScopeDepot), "visibility scope (depot or customer)")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&containerNo, "container", "", "filter by container number")
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "include soft-deleted requests")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	return cmd
}

func toRequestOutput(req *servicerequest.ServiceRequest) requestOutput {
	history := make([]historyOutput, 0, len(req.History()))
	for _, e := range req.History() {
		history = append(history, historyOutput{
			Timestamp: e.Timestamp,
			From:      string(e.From),
			To:        string(e.To),
			ActorRole: string(e.ActorRole),
			Note:      e.Note,
		})
	}
	return requestOutput{
		ID:             req.ID().String(),
		Type:           string(req.Type()),
		ContainerNo:    req.ContainerNo(),
		Status:         string(req.Status()),
		LicensePlate:   req.LicensePlate(),
		DriverName:     req.DriverName(),
		YardSlot:       req.YardSlot(),
		RejectedReason: req.RejectedReason(),
		Version:        req.Version(),
		History:        history,
	}
}
