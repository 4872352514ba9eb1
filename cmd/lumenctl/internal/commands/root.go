// Package commands implements the lumenctl operator commands.
package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/lumen/internal/account"
	"github.com/MrJamesThe3rd/lumen/internal/config"
	"github.com/MrJamesThe3rd/lumen/internal/database"
	"github.com/MrJamesThe3rd/lumen/internal/logger"
)

// env is what every command that touches the database needs.
type env struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	e := &env{log: zerolog.Nop()}

	var envFile string

	rootCmd := &cobra.Command{
		Use:   "lumenctl",
		Short: "Operate the Lumen ingestion pipeline",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load(envFile)

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			e.cfg = cfg
			e.log = logger.New(cfg.App.LogLevel, true).Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(
		newMigrateCommand(e),
		newAuthCommand(e),
		newParseSMSCommand(),
		newPollCommand(e),
		newTokenCommand(e),
	)

	return rootCmd
}

func (e *env) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := database.New(e.cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(ctx, db, e.log); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// ownerFlags binds --owner-id and --owner-type.
type ownerFlags struct {
	id  int64
	typ string
}

func (f *ownerFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.id, "owner-id", 0, "account id the transactions belong to (required)")
	cmd.Flags().StringVar(&f.typ, "owner-type", string(account.TypeConsumer), "consumer or business")
	_ = cmd.MarkFlagRequired("owner-id")
}

func (f *ownerFlags) owner() (account.Owner, error) {
	o := account.Owner{ID: f.id, Type: account.Type(f.typ)}
	if err := o.Validate(); err != nil {
		return account.Owner{}, fmt.Errorf("--owner-id/--owner-type: %w", err)
	}

	return o, nil
}
