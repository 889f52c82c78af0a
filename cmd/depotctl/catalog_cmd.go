package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
)

type catalogRow struct {
	From           string   `json:"from"`
	To             string   `json:"to"`
	Description    string   `json:"description"`
	AllowedRoles   []string `json:"allowed_roles"`
	RequiredFields []string `json:"required_fields,omitempty"`
	Effect         string   `json:"effect,omitempty"`
}

func newCatalogCmd() *cobra.Command {
	var (
		from string
		role string
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the transition catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := transition.Default()

			var rows []transition.Transition
			switch {
			case from != "":
				status, ok := transition.ParseStatus(from)
				if !ok {
					return fmt.Errorf("unknown status %q", from)
				}
				r := permissions.Role(role)
				if role == "" {
					r = permissions.RoleSystemAdmin
				} else if !r.Valid() {
					return fmt.Errorf("unknown role %q", role)
				}
				rows = catalog.ValidTransitions(status, r)
			default:
				rows = catalog.Rows()
			}

			out := make([]catalogRow, 0, len(rows))
			for _, row := range rows {
				roles := make([]string, 0, len(row.AllowedRoles))
				for _, r := range row.AllowedRoles {
					roles = append(roles, string(r))
				}
				fields := make([]string, 0, len(row.RequiredFields))
				for _, f := range row.RequiredFields {
					fields = append(fields, string(f))
				}
				out = append(out, catalogRow{
					From:           string(row.From),
					To:             string(row.To),
					Description:    row.Description,
					AllowedRoles:   roles,
					RequiredFields: fields,
					Effect:         effectName(row.Effect),
				})
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "only transitions out of this status")
	cmd.Flags().StringVar(&role, "role", "", "only transitions this role may drive (with --from)")
	return cmd
}

func effectName(e transition.Effect) string {
	switch e {
	case transition.EffectActivateChat:
		return "activate_chat"
	case transition.EffectCaptureGate:
		return "capture_gate"
	case transition.EffectOpenRepairCheck:
		return "open_repair_check"
	case transition.EffectRequestPayment:
		return "request_payment"
	default:
		return ""
	}
}
