package order

import (
	"context"
	"fmt"

	"github.com/oshokin/order-alarm/internal/api/http/ingress"
	"github.com/oshokin/order-alarm/internal/config"
	"github.com/oshokin/order-alarm/internal/domain/push"
	"github.com/oshokin/order-alarm/internal/logger"
	"github.com/oshokin/order-alarm/internal/service/common"
)

// Options configures alarm-push.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// PushAddress overrides the ingress address from config when specified.
	PushAddress string
	// Order is the order announced by the message.
	Order push.Order
	// MessageID is sent as is; the agent generates one when empty.
	MessageID string
	// Token, when set, is reported as a refreshed push token before the message.
	Token string
}

// sender delivers messages to the ingress.
type sender interface {
	Send(ctx context.Context, msg *push.Message) (*ingress.MessageResponse, error)
	RefreshToken(ctx context.Context, value string) error
}

// Run sends the order message to the agent.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-push")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err = logger.Configure(cfg.LogLevel); err != nil {
		return err
	}

	pushAddress := cfg.PushAddress
	if opts.PushAddress != "" {
		pushAddress = opts.PushAddress
	}

	pusher, err := common.NewPusher(pushAddress, cfg.Timeout)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Sending order push", "push_address", pushAddress, "order_id", opts.Order.ID)

	return send(ctx, pusher, opts)
}

func send(ctx context.Context, s sender, opts *Options) error {
	if opts.Token != "" {
		if err := s.RefreshToken(ctx, opts.Token); err != nil {
			return err
		}

		logger.Info(ctx, "Push token delivered")
	}

	msg := push.NewOrderMessage(opts.Order)
	msg.ID = opts.MessageID

	response, err := s.Send(ctx, msg)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Order push delivered", "message_id", response.MessageID, "action", response.Action)

	return nil
}
