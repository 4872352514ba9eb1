package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	credentialstore "github.com/MrJamesThe3rd/lumen/internal/credential/store"
	"github.com/MrJamesThe3rd/lumen/internal/gmail"
)

func newAuthCommand(e *env) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize the monitored mailbox and store its credential",
		Long: "Prints the Google consent URL, then exchanges the authorization code for a " +
			"credential. Pass --code to skip the prompt.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !e.cfg.GmailConfigured() {
				return errors.New("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET must be set")
			}

			db, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			connector := gmail.NewConnector(gmail.Config{
				ClientID:       e.cfg.Gmail.ClientID,
				ClientSecret:   e.cfg.Gmail.ClientSecret,
				RedirectURL:    e.cfg.Gmail.RedirectURL,
				MonitoredEmail: e.cfg.Gmail.MonitoredEmail,
				Identity:       e.cfg.Gmail.Identity,
			}, credentialstore.New(db), e.log)

			if code == "" {
				url, _ := connector.AuthURL()

				fmt.Fprintf(cmd.OutOrStdout(), "Open this URL and grant access:\n\n  %s\n\nAuthorization code: ", url)

				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading authorization code: %w", err)
				}

				code = strings.TrimSpace(line)
			}

			if code == "" {
				return errors.New("no authorization code given")
			}

			mailbox, err := connector.ExchangeCode(cmd.Context(), code)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stored credential for %s\n", mailbox)

			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "authorization code from the consent redirect")

	return cmd
}
