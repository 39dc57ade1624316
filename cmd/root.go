package cmd

import (
	"github.com/spf13/cobra"
)

const app = "hireloop"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hireloop runs AI-driven voice interviews over websocket and REST",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", app+".yaml", "path to the config file")
}
