package cmd

import (
	"fmt"
	"os"

	"golang.org/x/exp/slog"

	"finlink/internal/config"
	"finlink/internal/utils/logger"

	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "finlink",
	Short: "Finlink - bank account linking and transaction synchronization",
	Long: `Finlink links a user's bank account through a financial-data
aggregator, ingests transaction history, and keeps it synchronized daily
while preserving user edits and suppressing duplicates.`,
	PersistentPreRun: setup,
	SilenceUsage:     true,
	SilenceErrors:    true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(_ *cobra.Command, _ []string) {
	cfg = config.MustLoad()
	log = logger.New(cfg.Env)
}
