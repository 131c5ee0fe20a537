package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/order-alarm/internal/config"
	"github.com/oshokin/order-alarm/internal/service/order"
	"github.com/oshokin/order-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// options collects the flag values.
	options order.Options

	// rootCmd represents the base command for announcing an order.
	rootCmd = &cobra.Command{
		Use:   "alarm-push [push-address]",
		Short: "Send a new order push message to the agent.",
		Long: `Composes the "new order" push message and posts it to the agent's push
ingress, as the order backend does when an order is created.

The agent answers whether it rang the alarm or left the message to the
application in the foreground. Push address can be provided as argument or
loaded from configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use push address argument if provided, otherwise rely on config.
			if len(args) > 0 {
				options.PushAddress = args[0]
			}

			options.ConfigPath = cfgPath

			return order.Run(ctx, &options)
		},
	}
)

// Execute runs the alarm-push CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.Flags()
	flags.StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&options.Order.ID, "order-id", "", "order document id")
	flags.StringVar(&options.Order.Status, "status", "", "order status (defaults to Pendente)")
	flags.StringVar(&options.Order.CustomerName, "customer", "", "customer name shown in the notification")
	flags.StringVar(&options.Order.Code, "code", "", "order number shown in the notification")
	flags.StringVar(&options.MessageID, "message-id", "", "message id (generated by the agent when empty)")
	flags.StringVar(&options.Token, "token", "", "report this push token before the message")
}
