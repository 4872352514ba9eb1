package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/lumen/internal/ingest"
)

type parsedSMS struct {
	Payment      bool           `yaml:"payment"`
	Rejection    string         `yaml:"rejection,omitempty"`
	Amount       string         `yaml:"amount,omitempty"`
	Counterparty string         `yaml:"counterparty,omitempty"`
	Network      string         `yaml:"network,omitempty"`
	Direction    string         `yaml:"direction,omitempty"`
	Reference    string         `yaml:"reference,omitempty"`
	Account      string         `yaml:"account,omitempty"`
	Balance      string         `yaml:"balance,omitempty"`
	Metadata     map[string]any `yaml:"metadata,omitempty"`
}

func newParseSMSCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-sms [file]",
		Short: "Run the SMS extraction rules on a forwarded message without storing anything",
		Args:  cobra.MaximumNArgs(1),
		// Offline: no config or database needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()

			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening message: %w", err)
				}
				defer f.Close()

				in = f
			}

			raw, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("reading message: %w", err)
			}

			return writeParsed(cmd.OutOrStdout(), string(raw))
		},
	}
}

func writeParsed(w io.Writer, raw string) error {
	out := parsedSMS{}

	n, rej := ingest.NormalizeSMS(ingest.SMS{Raw: raw})
	if rej != nil {
		out.Rejection = rej.String()
	} else {
		c := n.Candidate

		out.Payment = true
		out.Amount = c.Amount.StringFixed(2)
		out.Counterparty = c.Counterparty
		out.Network = string(c.Network)
		out.Direction = string(c.Direction)
		out.Reference = c.ReferenceID
		out.Account = c.MaskedAccount
		out.Metadata = n.Metadata

		if c.Balance != nil {
			out.Balance = c.Balance.StringFixed(2)
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	return enc.Close()
}
