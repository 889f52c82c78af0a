package services

import (
	"context"

	"github.com/vinadepot/depot-sdk/pkg/authz"
	"github.com/vinadepot/depot-sdk/pkg/composables"
)

// Capability objects of the depot module.
const (
	RequestsAuthzObject = "depot.requests"
	GateAuthzObject     = "depot.gate"
	RepairsAuthzObject  = "depot.repairs"
)

const depotAuthzDomain = "depot"

var authorizeDepotFn = defaultAuthorizeDepot

func authorizeDepot(ctx context.Context, object, action string, opts ...authz.RequestOption) error {
	return authorizeDepotFn(ctx, object, action, opts...)
}

func defaultAuthorizeDepot(ctx context.Context, object, action string, opts ...authz.RequestOption) error {
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return err
	}

	req := authz.NewRequest(
		authz.SubjectForRole(string(actor.Role)),
		depotAuthzDomain,
		object,
		authz.NormalizeAction(action),
		opts...,
	)
	return authz.Use().Authorize(ctx, req)
}
