// Package cli implements storectl, the storefront admin command.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/bewear-pt/storefront/internal/pkg/env"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	// Migrations overrides the migration directory picked from DB_DRIVER.
	Migrations string
}

// NewRootCommand creates the root command for storectl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storectl",
		Short: "Storefront administration",
		Long:  "Administrative tasks for the storefront: schema migrations, catalog seeding and job queue inspection.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env.SetupEnvFile()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Migrations, "migrations", "", "migration source URL (default file://migrations/<driver>)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewQueueCommand(opts))

	return cmd
}
