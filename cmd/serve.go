package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hireloop/hireloop/pkg/hireloop"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interview orchestrator server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := hireloop.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		application, err := hireloop.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("wire application: %w", err)
		}
		return application.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
