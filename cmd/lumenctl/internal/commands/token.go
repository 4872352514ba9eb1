package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/lumen/internal/auth"
)

func newTokenCommand(e *env) *cobra.Command {
	var (
		owner      ownerFlags
		smsConsent bool
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for calling the API as an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := owner.owner()
			if err != nil {
				return err
			}

			token, err := auth.Issue(e.cfg.Auth.JWTSecret, auth.Principal{Owner: o, SMSConsent: smsConsent}, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}

	owner.bind(cmd)
	cmd.Flags().BoolVar(&smsConsent, "sms-consent", false, "grant the SMS ingestion consent claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
