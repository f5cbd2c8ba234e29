package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/domxml/internal/infrastructure/sqlite"
)

func newInitDBCmd(c *cli) *cobra.Command {
	var noSeed bool

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create or migrate the library database",
		Long: `Create the library database, apply pending migrations and, unless
--no-seed is given, add sample data to an empty database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := sqlite.NewDB(c.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if !noSeed {
				if err := sqlite.Seed(cmd.Context(), db); err != nil {
					return fmt.Errorf("seeding database: %w", err)
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "database ready: %s\n", db.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "do not add sample data")
	return cmd
}
