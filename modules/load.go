package modules

import (
	"github.com/vinadepot/depot-sdk/modules/depot"
	"github.com/vinadepot/depot-sdk/pkg/application"
)

var BuiltInModules = []application.Module{
	depot.NewModule(),
}

// Load registers the built-in modules plus any external ones.
func Load(app application.Application, externalModules ...application.Module) error {
	if err := application.LoadModules(app, BuiltInModules...); err != nil {
		return err
	}
	return application.LoadModules(app, externalModules...)
}
