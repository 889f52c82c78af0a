package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vinadepot/depot-sdk/modules/depot"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the reference DDL for the depot tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ddl, err := depot.Schema()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(ddl))
			return nil
		},
	}
}
