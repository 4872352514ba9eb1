package commands

import (
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/lumen/internal/database"
)

func newMigrateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := database.New(e.cfg.ConnectionString())
			if err != nil {
				return err
			}
			defer db.Close()

			return database.Migrate(cmd.Context(), db, e.log)
		},
	}
}
