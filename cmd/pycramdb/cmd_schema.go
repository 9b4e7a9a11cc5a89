package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pycramdb/action"
	"pycramdb/store"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create any missing tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready: %d action kinds on %s\n", len(db.Registry().Variants()), db.Driver())
			return nil
		},
	}
}

func newSchemaCmd(a *app) *cobra.Command {
	var driver string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the DDL for every table",
		Long:  "Print the CREATE statements for the value, action and outbox tables.\nNothing is connected to; --driver overrides the configured driver.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if driver == "" {
				driver = a.cfg.Database.Driver
			}
			ddl, err := store.SchemaFor(driver, action.Builtin())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), ddl)
			return nil
		},
	}
	cmd.Flags().StringVar(&driver, "driver", "", "sqlite or postgres")
	return cmd
}
