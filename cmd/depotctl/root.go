package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "depotctl",
		Short: "Depot service request lifecycle tools",
	}
	cmd.AddCommand(newCatalogCmd())
	cmd.AddCommand(newPolicyCmd())
	cmd.AddCommand(newRequestCmd())
	cmd.AddCommand(newSchemaCmd())
	return cmd
}

func execute() {
	_ = newRootCmd().Execute()
}
