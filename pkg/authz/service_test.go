package authz_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinadepot/depot-sdk/pkg/authz"
)

const testModel = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub, r.dom) || r.sub == p.sub) && r.dom == p.dom && r.obj == p.obj && (r.act == p.act || p.act == "*")
`

const testPolicy = `p, role:Clerk, depot, depot.requests, view
p, role:Admin, depot, depot.requests, *
g, role:Supervisor, role:Clerk, depot
`

func writePolicyFiles(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.conf")
	policyPath := filepath.Join(dir, "policy.csv")
	require.NoError(t, os.WriteFile(modelPath, []byte(testModel), 0o600))
	require.NoError(t, os.WriteFile(policyPath, []byte(testPolicy), 0o600))
	return modelPath, policyPath
}

func newService(t *testing.T, mode authz.Mode) *authz.Service {
	t.Helper()
	modelPath, policyPath := writePolicyFiles(t)
	svc, err := authz.NewService(authz.Config{
		ModelPath:  modelPath,
		PolicyPath: policyPath,
		Mode:       mode,
		Logger:     logrus.New(),
	})
	require.NoError(t, err)
	return svc
}

func TestService_Authorize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Direct_Permission", func(t *testing.T) {
		svc := newService(t, authz.ModeEnforce)
		err := svc.Authorize(ctx, authz.NewRequest("role:Clerk", "depot", "depot.requests", "view"))
		require.NoError(t, err)
	})

	t.Run("Wildcard_Action", func(t *testing.T) {
		svc := newService(t, authz.ModeEnforce)
		err := svc.Authorize(ctx, authz.NewRequest("role:Admin", "depot", "depot.requests", "delete"))
		require.NoError(t, err)
	})

	t.Run("Inherited_Role", func(t *testing.T) {
		svc := newService(t, authz.ModeEnforce)
		err := svc.Authorize(ctx, authz.NewRequest("role:Supervisor", "depot", "depot.requests", "view"))
		require.NoError(t, err)
	})

	t.Run("Denied", func(t *testing.T) {
		svc := newService(t, authz.ModeEnforce)
		err := svc.Authorize(ctx, authz.NewRequest("role:Clerk", "depot", "depot.requests", "delete"))
		require.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("Shadow_Mode_Lets_Denials_Through", func(t *testing.T) {
		svc := newService(t, authz.ModeShadow)
		err := svc.Authorize(ctx, authz.NewRequest("role:Clerk", "depot", "depot.requests", "delete"))
		require.NoError(t, err)
	})

	t.Run("Disabled_Mode_Skips_Evaluation", func(t *testing.T) {
		svc := newService(t, authz.ModeDisabled)
		err := svc.Authorize(ctx, authz.NewRequest("role:Nobody", "depot", "depot.requests", "delete"))
		require.NoError(t, err)
	})
}

func TestService_Config(t *testing.T) {
	t.Parallel()

	t.Run("Missing_Model_Path", func(t *testing.T) {
		_, err := authz.NewService(authz.Config{PolicyPath: "policy.csv"})
		require.Error(t, err)
	})

	t.Run("Missing_Policy_Path", func(t *testing.T) {
		_, err := authz.NewService(authz.Config{ModelPath: "model.conf"})
		require.Error(t, err)
	})
}

func TestHelpers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "role:SaleAdmin", authz.SubjectForRole(" SaleAdmin "))
	assert.Equal(t, "transition", authz.NormalizeAction(" Transition "))
}

func TestService_ReloadPolicy(t *testing.T) {
	t.Parallel()
	modelPath, policyPath := writePolicyFiles(t)
	svc, err := authz.NewService(authz.Config{
		ModelPath:  modelPath,
		PolicyPath: policyPath,
		Mode:       authz.ModeEnforce,
		Logger:     logrus.New(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	req := authz.NewRequest("role:Clerk", "depot", "depot.requests", "transition")
	require.ErrorIs(t, svc.Authorize(ctx, req), authz.ErrForbidden)

	updated := testPolicy + "p, role:Clerk, depot, depot.requests, transition\n"
	require.NoError(t, os.WriteFile(policyPath, []byte(updated), 0o600))
	require.NoError(t, svc.ReloadPolicy(ctx))
	require.NoError(t, svc.Authorize(ctx, req))
}
