package main

import (
	"fmt"

	"relay/pkg/config"
	"relay/pkg/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema for the status store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Store.Driver != config.StorePostgres {
				fmt.Fprintf(cmd.OutOrStdout(), "store driver %q needs no migrations\n", cfg.Store.Driver)
				return nil
			}

			db, err := database.ConnectPostgres(cfg.Store.PostgresURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
