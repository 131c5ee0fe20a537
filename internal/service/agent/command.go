package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/jonboulle/clockwork"
	"google.golang.org/grpc"

	alarmapi "github.com/oshokin/order-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/order-alarm/internal/api/http/ingress"
	"github.com/oshokin/order-alarm/internal/config"
	"github.com/oshokin/order-alarm/internal/foreground"
	"github.com/oshokin/order-alarm/internal/logger"
	"github.com/oshokin/order-alarm/internal/media"
	"github.com/oshokin/order-alarm/internal/notification"
	"github.com/oshokin/order-alarm/internal/service/activity"
	"github.com/oshokin/order-alarm/internal/version"
)

// Options controls the alarm-agent process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ControlAddress overrides the gRPC listen address.
	ControlAddress string
	// PushAddress overrides the HTTP push ingress listen address.
	PushAddress string
	// TokenFile overrides the push token JSON path.
	TokenFile string

	// Player replaces the configured sound backend.
	Player media.Player
	// CenterOptions configure the notification center.
	CenterOptions []notification.Option
	// Detector replaces the lifecycle and process based foreground detection.
	Detector foreground.Detector
	// Processes replaces the process table check behind lifecycle reports.
	Processes foreground.Detector
	// Requester replaces the desktop permission notice.
	Requester activity.Requester
	// Clock drives the auto-stop timer; the real clock when nil.
	Clock clockwork.Clock
}

var (
	// ErrNoListenAddress indicates missing listen configuration.
	ErrNoListenAddress = errors.New("no listen address configured")
	// errUnknownBackend is returned for a sound backend the agent cannot build.
	errUnknownBackend = errors.New("unknown sound backend")
)

// Run starts the push ingress and the control service and blocks until the
// context is canceled or one of the servers fails. The alarm is stopped
// before Run returns.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-agent")

	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = logger.Configure(settings.LogLevel); err != nil {
		return err
	}

	applyOverrides(settings, opts)

	logger.InfoKV(ctx, "Starting alarm agent", version.KV()...)

	controlAddress, err := resolveListenAddress(settings.ControlAddress)
	if err != nil {
		return fmt.Errorf("resolve control address: %w", err)
	}

	pushAddress, err := resolveListenAddress(settings.PushAddress)
	if err != nil {
		return fmt.Errorf("resolve push address: %w", err)
	}

	comps, err := newComponents(settings, opts)
	if err != nil {
		return fmt.Errorf("initialise components: %w", err)
	}

	// Whatever happens to the servers, the sound must not outlive the agent.
	defer comps.controller.Close(context.WithoutCancel(ctx))

	lc := net.ListenConfig{}

	controlListener, err := lc.Listen(ctx, "tcp", controlAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", controlAddress, err)
	}

	pushListener, err := lc.Listen(ctx, "tcp", pushAddress)
	if err != nil {
		_ = controlListener.Close()

		return fmt.Errorf("listen on %s: %w", pushAddress, err)
	}

	grpcServer := grpc.NewServer()
	alarmapi.RegisterAlarmServiceServer(
		grpcServer,
		alarmapi.NewServer(comps.controller, comps.activity, comps.fallbacks),
	)

	httpServer := &http.Server{
		Handler:           ingress.NewHandler(comps.receiver),
		ReadHeaderTimeout: settings.Timeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.InfoKV(ctx, "Alarm agent listening",
		"control_address", controlListener.Addr().String(),
		"push_address", pushListener.Addr().String(),
		"token_file", settings.TokenFile,
		"auto_stop_delay", settings.AutoStopDelay,
	)

	serveErrors := make(chan error, 2) //nolint:mnd // One slot per server.

	go func() {
		if serveErr := grpcServer.Serve(controlListener); serveErr != nil &&
			!errors.Is(serveErr, grpc.ErrServerStopped) {
			serveErrors <- fmt.Errorf("serve gRPC: %w", serveErr)

			return
		}

		serveErrors <- nil
	}()

	go func() {
		if serveErr := httpServer.Serve(pushListener); serveErr != nil &&
			!errors.Is(serveErr, http.ErrServerClosed) {
			serveErrors <- fmt.Errorf("serve HTTP: %w", serveErr)

			return
		}

		serveErrors <- nil
	}()

	var runErr error

	select {
	case <-ctx.Done():
		logger.Info(ctx, "Shutting down alarm agent")
	case runErr = <-serveErrors:
		logger.ErrorKV(ctx, "Server stopped unexpectedly", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settings.Timeout)
	defer cancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WarnKV(ctx, "HTTP server shutdown failed", "error", err)
	}

	grpcServer.GracefulStop()

	logger.Info(ctx, "Alarm agent stopped")

	return runErr
}

// applyOverrides replaces configured values with command line overrides.
func applyOverrides(settings *config.Config, opts *Options) {
	if opts.ControlAddress != "" {
		settings.ControlAddress = opts.ControlAddress
	}

	if opts.PushAddress != "" {
		settings.PushAddress = opts.PushAddress
	}

	if opts.TokenFile != "" {
		settings.TokenFile = opts.TokenFile
	}
}

// resolveListenAddress validates a host:port listen address.
// A bare port (e.g. "8061") binds on loopback.
func resolveListenAddress(address string) (string, error) {
	if address == "" {
		return "", ErrNoListenAddress
	}

	if _, _, err := net.SplitHostPort(address); err == nil {
		return address, nil
	}

	if _, err := net.LookupPort("tcp", address); err != nil {
		return "", fmt.Errorf("invalid listen address format %q: %w", address, err)
	}

	return net.JoinHostPort("127.0.0.1", address), nil
}
