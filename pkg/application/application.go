package application

import (
	"embed"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vinadepot/depot-sdk/pkg/eventbus"
)

// Module is a self-contained feature package. Register wires the module's
// services into the application.
type Module interface {
	Name() string
	Register(app Application) error
}

// Application is the runtime container modules register themselves into.
type Application interface {
	DB() *pgxpool.Pool
	EventPublisher() eventbus.EventBus
	RegisterServices(services ...interface{})
	RegisterSchema(fs *embed.FS)
	Schemas() []*embed.FS
	Service(service interface{}) interface{}
	Services() map[reflect.Type]interface{}
}

func New(pool *pgxpool.Pool, publisher eventbus.EventBus) Application {
	return &application{
		pool:      pool,
		publisher: publisher,
		services:  make(map[reflect.Type]interface{}),
	}
}

type application struct {
	pool      *pgxpool.Pool
	publisher eventbus.EventBus
	services  map[reflect.Type]interface{}
	schemas   []*embed.FS
}

func (app *application) DB() *pgxpool.Pool {
	return app.pool
}

func (app *application) EventPublisher() eventbus.EventBus {
	return app.publisher
}

// RegisterServices registers a new service in the application by its type
func (app *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		app.services[serviceType] = service
	}
}

func (app *application) RegisterSchema(fs *embed.FS) {
	app.schemas = append(app.schemas, fs)
}

func (app *application) Schemas() []*embed.FS {
	return app.schemas
}

// Service retrieves a service by its type
func (app *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	svc, exists := app.services[serviceType]
	if !exists {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}

func (app *application) Services() map[reflect.Type]interface{} {
	return app.services
}

// LoadModules registers each module in order, failing fast on the first
// registration error.
func LoadModules(app Application, modules ...Module) error {
	for _, m := range modules {
		if err := m.Register(app); err != nil {
			return fmt.Errorf("failed to register module %s: %w", m.Name(), err)
		}
	}
	return nil
}
