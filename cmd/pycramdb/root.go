package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pycramdb/config"
	"pycramdb/store"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "pycramdb",
		Short:         "Robot action store",
		Long:          "pycramdb records robot actions in a relational database, one table per action kind.",
		Version:       fmt.Sprintf("pycramdb %s", Version),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			return setupLogging(&cfg.Log, cmd.ErrOrStderr())
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "pycramdb.yaml", "path to config file (.yaml or .toml)")

	cmd.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSchemaCmd(a),
		newInsertCmd(a),
		newLoadCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newWatchCmd(a),
	)
	return cmd
}

func (a *app) openStore() (*store.DB, error) {
	db, err := store.Open(&a.cfg.Database, nil)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func (a *app) eventsEnabled() bool {
	return a.cfg.Messaging.Backend != "" && a.cfg.Messaging.Backend != "none"
}

// enableEvents queues action events in the outbox whenever a messaging
// backend is configured, so a later serve publishes them.
func (a *app) enableEvents(db *store.DB) {
	if a.eventsEnabled() {
		db.EnableEvents(a.cfg.Messaging.EventsTopic, a.cfg.Messaging.Source)
	}
}
