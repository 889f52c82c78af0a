package depot

import (
	"embed"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/modules/depot/infrastructure/persistence"
	"github.com/vinadepot/depot-sdk/modules/depot/services"
	"github.com/vinadepot/depot-sdk/pkg/application"
)

//go:embed infrastructure/persistence/schema/depot-schema.sql
var schemaFiles embed.FS

// Schema returns the reference DDL for the depot tables.
func Schema() ([]byte, error) {
	return schemaFiles.ReadFile("infrastructure/persistence/schema/depot-schema.sql")
}

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.RegisterSchema(&schemaFiles)

	requestRepo := persistence.NewServiceRequestRepository()
	ticketRepo := persistence.NewRepairTicketRepository()

	requestService := services.NewRequestService(
		requestRepo,
		transition.Default(),
		app.EventPublisher(),
	)
	gateService := services.NewGateService(requestService)
	repairService := services.NewRepairService(ticketRepo, requestService, requestRepo)

	app.RegisterServices(
		requestService,
		gateService,
		repairService,
	)
	return nil
}

func (m *Module) Name() string {
	return "depot"
}
