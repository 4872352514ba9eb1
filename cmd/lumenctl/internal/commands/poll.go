package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/lumen/internal/app"
)

func newPollCommand(e *env) *cobra.Command {
	var owner ownerFlags

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Run one mailbox poll cycle and print its report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := owner.owner()
			if err != nil {
				return err
			}

			db, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			a, err := app.New(cmd.Context(), e.cfg, db, e.log)
			if err != nil {
				return err
			}

			rep, err := a.Poller.RunOnce(cmd.Context(), o)

			// Let background indexing of this cycle's transactions finish.
			a.Ingest.Wait()

			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if err := enc.Encode(rep); err != nil {
				return fmt.Errorf("encoding report: %w", err)
			}

			return nil
		},
	}

	owner.bind(cmd)

	return cmd
}
