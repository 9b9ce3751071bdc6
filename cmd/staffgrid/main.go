package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func defaultConfigPath() string {
	if s := os.Getenv("STAFFGRID_CONFIG"); s != "" {
		return s
	}
	return "config.yaml"
}

var rootCmd = &cobra.Command{
	Use:          "staffgrid <command>",
	Short:        "Personnel directory service and client",
	SilenceUsage: true,
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to config.yaml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
