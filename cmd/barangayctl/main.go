package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/EmpoweredVote/barangay-admin/internal/config"
	"github.com/EmpoweredVote/barangay-admin/internal/logger"
	"github.com/EmpoweredVote/barangay-admin/internal/server"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "barangayctl",
	Short: "Operator commands for the barangay admin backend",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(logLevel, true)
	},
	SilenceUsage: true,
}

var logLevel string

func main() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withStores opens the stores named by the environment configuration, the
// same way the server does, and closes them after fn returns.
func withStores(ctx context.Context, fn func(*server.Stores) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := server.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}
