package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/order-alarm/internal/config"
	domain "github.com/oshokin/order-alarm/internal/domain/alarm"
	"github.com/oshokin/order-alarm/internal/service/client"
	"github.com/oshokin/order-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// request is the alarm content.
	request domain.Request

	// rootCmd represents the base command for ringing the alarm.
	rootCmd = &cobra.Command{
		Use:   "alarm-start [control-address]",
		Short: "Ring the alarm directly.",
		Long: `Starts the alarm on the agent without going through the push ingress.

The foreground check is skipped. Empty title and body are replaced by the
localized fallbacks of the agent. A running alarm is replaced and its
auto-stop timer restarted.`,
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

			options := &client.Options{
				ConfigPath:     cfgPath,
				ControlAddress: controlAddress,
				Action:         client.ActionStart,
				Request:        request,
			}

			return client.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-start CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&request.Title, "title", "", "notification title")
	rootCmd.Flags().StringVar(&request.Body, "body", "", "notification text")
	rootCmd.Flags().StringVar(&request.URL, "url", "", "deep link opened by tapping the notification")
}
