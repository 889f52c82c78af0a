package main

import (
	"github.com/spf13/cobra"

	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
	"github.com/vinadepot/depot-sdk/modules/depot/services"
	"github.com/vinadepot/depot-sdk/pkg/authz"
	"github.com/vinadepot/depot-sdk/pkg/configuration"
)

type policyEntry struct {
	Role    string `json:"role"`
	Object  string `json:"object"`
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
}

// policy check actions per capability object. The matrix printed here is
// what the service guards will enforce at runtime.
var policyActions = map[string][]string{
	services.RequestsAuthzObject: {"create", "view", "transition", "delete", "restore"},
	services.GateAuthzObject:     {"admit"},
	services.RepairsAuthzObject:  {"resolve", "accept"},
}

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the effective role/capability matrix from the access policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			svc, err := authz.NewService(authz.Config{
				ModelPath:  conf.Authz.ModelPath,
				PolicyPath: conf.Authz.PolicyPath,
				Mode:       authz.Mode(conf.Authz.Mode),
				Logger:     conf.Logger(),
			})
			if err != nil {
				return err
			}

			var out []policyEntry
			for _, role := range permissions.AllRoles {
				for _, object := range []string{
					services.RequestsAuthzObject,
					services.GateAuthzObject,
					services.RepairsAuthzObject,
				} {
					for _, action := range policyActions[object] {
						allowed, err := svc.Check(cmd.Context(), authz.NewRequest(
							authz.SubjectForRole(string(role)),
							"depot",
							object,
							action,
						))
						if err != nil {
							return err
						}
						out = append(out, policyEntry{
							Role:    string(role),
							Object:  object,
							Action:  action,
							Allowed: allowed,
						})
					}
				}
			}
			return writeJSON(out)
		},
	}
	return cmd
}
