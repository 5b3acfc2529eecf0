package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"casinobot/database"
	"casinobot/domain/entities"
	"casinobot/domain/services"
	"casinobot/infrastructure"
	"casinobot/repository"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the casinobot CLI. With no subcommand it runs the bot.
func NewRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "casinobot",
		Short:         "Discord casino bot with a guild bank and multiplayer blackjack",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
		RunE: runBot,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the Discord bot",
			Args:  cobra.NoArgs,
			RunE:  runBot,
		},
		newMigrateCommand(),
		newGrantCommand(),
		newFundBankCommand(),
		newAuditCommand(),
	)
	return root
}

func runBot(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Run(ctx)
}

func newMigrateCommand() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return database.MigrateUp()
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := "1"
				if len(args) == 1 {
					steps = args[0]
				}
				return database.MigrateDown(steps)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return database.MigrateStatus()
			},
		},
	)
	return migrate
}

func newGrantCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grant <guild-id> <user-id> <amount>",
		Short: "Mint bits into a user's account",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseInt64Args(args)
			if err != nil {
				return err
			}
			guildID, userID, amount := ids[0], ids[1], ids[2]

			return withLedger(cmd.Context(), func(ctx context.Context, ledger ledgerAdmin) error {
				balance, err := ledger.Credit(ctx, guildID, userID, amount, entities.TransactionTypeGrant, map[string]any{"source": "cli"})
				if err != nil {
					return err
				}
				log.WithFields(log.Fields{
					"guildID": guildID,
					"userID":  userID,
					"amount":  amount,
					"balance": balance,
				}).Info("Granted bits")
				return nil
			})
		},
	}
}

func newFundBankCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fund-bank <guild-id> <amount>",
		Short: "Mint bits into a guild's house bank",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseInt64Args(args)
			if err != nil {
				return err
			}
			guildID, amount := ids[0], ids[1]

			return withLedger(cmd.Context(), func(ctx context.Context, ledger ledgerAdmin) error {
				balance, err := ledger.BankCredit(ctx, guildID, amount, entities.TransactionTypeBankDeposit, map[string]any{"source": "cli"})
				if err != nil {
					return err
				}
				log.WithFields(log.Fields{
					"guildID": guildID,
					"amount":  amount,
					"bank":    balance,
				}).Info("Funded house bank")
				return reportAudit(ctx, ledger, guildID)
			})
		},
	}
}

func newAuditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <guild-id>",
		Short: "Check that a guild's balances match its transaction log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseInt64Args(args)
			if err != nil {
				return err
			}
			return withLedger(cmd.Context(), func(ctx context.Context, ledger ledgerAdmin) error {
				return reportAudit(ctx, ledger, ids[0])
			})
		},
	}
}

// reportAudit logs the guild totals and fails when they disagree with the log
func reportAudit(ctx context.Context, ledger ledgerAdmin, guildID int64) error {
	audit, err := ledger.Audit(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to audit guild %d: %w", guildID, err)
	}
	fields := log.Fields{
		"guildID":  guildID,
		"accounts": audit.AccountTotal,
		"bank":     audit.BankBalance,
		"recorded": audit.Recorded,
	}
	if !audit.Balanced() {
		log.WithFields(fields).Error("Ledger out of balance")
		return fmt.Errorf("guild %d holds %d but its log records %d", guildID, audit.Held(), audit.Recorded)
	}
	log.WithFields(fields).Info("Ledger balanced")
	return nil
}

// ledgerAdmin is the slice of the ledger the admin commands use
type ledgerAdmin interface {
	Credit(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error)
	BankCredit(ctx context.Context, guildID, amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error)
	Audit(ctx context.Context, guildID int64) (*entities.LedgerAudit, error)
}

// withLedger opens the database for a one-shot admin command. Events are
// dropped since no bot is listening.
func withLedger(ctx context.Context, fn func(ctx context.Context, ledger ledgerAdmin) error) error {
	db, err := database.NewConnection(ctx, database.EnvDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := repository.NewUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
	return fn(ctx, services.NewLedgerService(uowFactory))
}

func parseInt64Args(args []string) ([]int64, error) {
	values := make([]int64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", arg, err)
		}
		values[i] = v
	}
	return values, nil
}
