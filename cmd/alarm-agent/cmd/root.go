package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/order-alarm/internal/config"
	"github.com/oshokin/order-alarm/internal/service/agent"
	"github.com/oshokin/order-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// pushAddress overrides the push ingress listen address.
	pushAddress string
	// tokenFile path where the push token is persisted.
	tokenFile string

	// rootCmd represents the base command for running the agent.
	rootCmd = &cobra.Command{
		Use:   "alarm-agent [control-address]",
		Short: "Run the order alarm agent.",
		Long: `Starts the agent that turns order push messages into a ringing alarm.

Push messages arrive over HTTP (POST /v1/messages). When the host application
is not in the foreground, the agent loops the alarm sound and shows a
persistent notification until it is stopped, the application is resumed, or
the auto-stop delay elapses.

The gRPC control address can be provided as argument to override config
(e.g., 127.0.0.1:50061). Settings are optional: defaults are used when the
configuration file does not exist.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use control address argument if provided, otherwise rely on config.
			var controlAddress string
			if len(args) > 0 {
				controlAddress = args[0]
			}

			options := &agent.Options{
				ConfigPath:     configPath,
				ControlAddress: controlAddress,
				PushAddress:    pushAddress,
				TokenFile:      tokenFile,
			}

			return agent.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-agent CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&pushAddress, "push-address", "p", "", "push ingress listen address")
	rootCmd.Flags().StringVarP(&tokenFile, "token-file", "t", "", "path to persist the push token")
}
