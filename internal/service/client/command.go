package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	alarmapi "github.com/oshokin/order-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/order-alarm/internal/config"
	domain "github.com/oshokin/order-alarm/internal/domain/alarm"
	"github.com/oshokin/order-alarm/internal/domain/permission"
	"github.com/oshokin/order-alarm/internal/logger"
	"github.com/oshokin/order-alarm/internal/service/common"
)

// Action selects what the command asks the agent to do.
type Action int

const (
	// ActionStart rings the alarm with Options.Request.
	ActionStart Action = iota
	// ActionStop silences the alarm on behalf of the local user.
	ActionStop
	// ActionResume reports that the host application came to the foreground.
	ActionResume
	// ActionPause reports that the host application left the foreground.
	ActionPause
)

// String returns the binary-facing name of the action.
func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionResume:
		return "resume"
	case ActionPause:
		return "pause"
	default:
		return "unknown"
	}
}

// Options configures a client command.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ControlAddress overrides the agent address from config when specified.
	ControlAddress string
	// Action is the operation to perform.
	Action Action
	// Request is the alarm content for ActionStart.
	Request domain.Request
	// Launch reports the "created" lifecycle event before resuming, which
	// makes the agent request missing permissions.
	Launch bool
	// Attempts bounds how many times the call is tried; DefaultAttempts when zero.
	Attempts int
}

// api is the subset of common.Client used by the commands.
type api interface {
	StartAlarm(ctx context.Context, req *domain.Request) (*domain.Snapshot, error)
	StopAlarm(ctx context.Context, actor *domain.Actor) (*domain.Snapshot, error)
	ReportLifecycle(ctx context.Context, event string) (*domain.Snapshot, []permission.Result, error)
}

const (
	// DefaultAttempts is how many times a call is tried before giving up.
	DefaultAttempts = 3

	// retryInterval separates two attempts.
	retryInterval = 1 * time.Second
)

// errUnknownAction is returned for an Action outside the declared constants.
var errUnknownAction = errors.New("unknown action")

// Run performs opts.Action against the agent, retrying transient failures.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-"+opts.Action.String())

	// Load settings from configuration file, defaults when it is absent.
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err = logger.Configure(cfg.LogLevel); err != nil {
		return err
	}

	// Use control address from options if provided, otherwise use config.
	controlAddress := cfg.ControlAddress
	if opts.ControlAddress != "" {
		controlAddress = opts.ControlAddress
	}

	client, err := common.Dial(ctx, controlAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Contacting alarm agent", "control_address", controlAddress)

	return run(ctx, client, opts)
}

// run performs the action with retries against the given API.
func run(ctx context.Context, client api, opts *Options) error {
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	call, err := actionCall(client, opts)
	if err != nil {
		return err
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		snapshot, callErr := call(ctx)
		if callErr == nil {
			logger.Infof(ctx, "Alarm is %s", FormatSnapshot(snapshot))

			return nil
		}

		lastErr = callErr

		// Log error but continue retrying for transient failures.
		logger.ErrorKV(ctx, "Call to alarm agent failed", "attempt", attempt, "error", callErr)

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	return fmt.Errorf("%s alarm: %w", opts.Action, lastErr)
}

// actionCall binds the action to a single call against the API.
func actionCall(client api, opts *Options) (func(context.Context) (*domain.Snapshot, error), error) {
	switch opts.Action {
	case ActionStart:
		request := opts.Request

		return func(ctx context.Context) (*domain.Snapshot, error) {
			return client.StartAlarm(ctx, &request)
		}, nil
	case ActionStop:
		// Identify current user and hostname for audit logging.
		actor, err := common.DetectActor()
		if err != nil {
			return nil, err
		}

		return func(ctx context.Context) (*domain.Snapshot, error) {
			return client.StopAlarm(ctx, actor)
		}, nil
	case ActionResume:
		launched := !opts.Launch

		return func(ctx context.Context) (*domain.Snapshot, error) {
			if !launched {
				_, results, err := client.ReportLifecycle(ctx, alarmapi.EventCreated)
				if err != nil {
					return nil, err
				}

				launched = true

				logPermissions(ctx, results)
			}

			snapshot, _, err := client.ReportLifecycle(ctx, alarmapi.EventResumed)

			return snapshot, err
		}, nil
	case ActionPause:
		return func(ctx context.Context) (*domain.Snapshot, error) {
			snapshot, _, err := client.ReportLifecycle(ctx, alarmapi.EventPaused)

			return snapshot, err
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownAction, opts.Action)
	}
}

// FormatSnapshot converts an alarm snapshot to a readable log message.
func FormatSnapshot(snapshot *domain.Snapshot) string {
	if snapshot == nil {
		return "<nil state>"
	}

	// Extract timestamp with fallback for missing data.
	timestamp := "<unknown>"
	if !snapshot.ChangedAt.IsZero() {
		timestamp = snapshot.ChangedAt.Format(time.RFC3339)
	}

	if snapshot.IsAlarming() {
		title := ""
		if snapshot.Request != nil {
			title = snapshot.Request.Title
		}

		return fmt.Sprintf("alarming %q (%s)", title, timestamp)
	}

	reason := string(snapshot.StopReason)
	if reason == "" {
		reason = "never started"
	}

	// Format actor as username@hostname when known.
	if snapshot.StoppedBy != nil {
		reason = fmt.Sprintf("%s by %s@%s", reason, snapshot.StoppedBy.Username, snapshot.StoppedBy.Hostname)
	}

	return fmt.Sprintf("idle, %s (%s)", reason, timestamp)
}

// logPermissions reports the outcome of the launch permission request.
func logPermissions(ctx context.Context, results []permission.Result) {
	if len(results) == 0 {
		logger.Info(ctx, "No permissions were requested")

		return
	}

	if denied := permission.Denied(results); len(denied) > 0 {
		logger.WarnKV(ctx, "Permissions denied", "permissions", denied)

		return
	}

	logger.InfoKV(ctx, "Permissions granted", "count", len(results))
}
