// dbtool creates, seeds and dumps the microblog database.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/microblog-app/microblog-back/internal/config"
	"github.com/microblog-app/microblog-back/internal/database"
	"github.com/microblog-app/microblog-back/internal/logs"
	"github.com/microblog-app/microblog-back/internal/schema"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.LoadConfig()

	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Microblog database maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DBUrl == "" {
				return fmt.Errorf("DATABASE_URL manquant")
			}
			return database.Connect(cfg)
		},
	}
	root.PersistentFlags().StringVar(&cfg.DBDriver, "driver", cfg.DBDriver, "database driver: postgres | sqlite")
	root.PersistentFlags().StringVar(&cfg.DBUrl, "dsn", cfg.DBUrl, "database URL (defaults to DATABASE_URL)")

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the tables",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := schema.Migrate(database.DB); err != nil {
					logs.LogJSON("ERROR", "Migration failed", map[string]interface{}{"error": err})
					return err
				}
				logs.LogJSON("INFO", "Schema migrated", nil)
				return nil
			},
		},
		&cobra.Command{
			Use:   "populate",
			Short: "Create the tables and insert sample users and posts",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := schema.Migrate(database.DB); err != nil {
					return err
				}
				inserted, err := schema.Populate(database.DB)
				if err != nil {
					logs.LogJSON("ERROR", "Populate failed", map[string]interface{}{"error": err})
					return err
				}
				logs.LogJSON("INFO", "Populate done", map[string]interface{}{"inserted": inserted})
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print every row of every table as JSON lines",
			RunE: func(cmd *cobra.Command, args []string) error {
				enc := json.NewEncoder(cmd.OutOrStdout())
				var encodeErr error
				err := schema.Dump(database.DB, func(table string, row map[string]interface{}) {
					if encodeErr == nil {
						encodeErr = enc.Encode(map[string]interface{}{"table": table, "row": row})
					}
				})
				if err != nil {
					return err
				}
				return encodeErr
			},
		},
	)
	return root
}
