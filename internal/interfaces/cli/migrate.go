package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/fragvocab/internal/infrastructure/database/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL vocabulary schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, source, err := migrationTarget(cmd)
			if err != nil {
				return err
			}
			if err := postgres.MigrateUp(dbURL, source); err != nil {
				return err
			}
			PrintSuccess(cmd, "schema is up to date")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, source, err := migrationTarget(cmd)
			if err != nil {
				return err
			}
			if err := postgres.MigrateDown(dbURL, source, steps); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("rolled back %d migration(s)", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, source, err := migrationTarget(cmd)
			if err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationStatus(dbURL, source)
			if err != nil {
				return err
			}
			return PrintResult(cmd, migrationState{Version: version, Dirty: dirty})
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

// migrationTarget returns the database URL and migration source from config.
// The postgres section is used whether or not the sink is enabled.
func migrationTarget(cmd *cobra.Command) (string, string, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return "", "", err
	}
	cfg := cliCtx.Config
	return postgres.BuildDSN(postgresConfig(cfg)), postgres.SourceURL(cfg.Postgres.MigrationPath), nil
}

type migrationState struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s migrationState) String() string {
	if s.Version == 0 {
		return "no migrations applied"
	}
	if s.Dirty {
		return fmt.Sprintf("version %d (dirty)", s.Version)
	}
	return fmt.Sprintf("version %d", s.Version)
}
