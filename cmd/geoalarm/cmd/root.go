package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/benmeehan/geo-alarm/internal/app"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string

	rootCmd = &cobra.Command{
		Use:   "geoalarm",
		Short: "Proximity alarm that fires when the device reaches a target location.",
		Long: `Tracks the device position from a serial GPS sensor or Google geolocation
and raises an alarm once the device is within the configured radius of the target.

Alarm events, status reports and control commands travel over MQTT when enabled.
Send SIGUSR1 to suspend location tracking and SIGUSR2 to resume it.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return app.Run(ctx, configPath)
		},
	}
)

// Execute runs the geoalarm CLI and exits with non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to configuration file")
}
