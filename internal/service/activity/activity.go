package activity

import (
	"context"

	domain "github.com/oshokin/order-alarm/internal/domain/alarm"
	"github.com/oshokin/order-alarm/internal/domain/permission"
	"github.com/oshokin/order-alarm/internal/foreground"
	"github.com/oshokin/order-alarm/internal/logger"
)

// Stopper silences the alarm.
type Stopper interface {
	Stop(ctx context.Context, reason domain.StopReason, actor *domain.Actor) *domain.Snapshot
}

// Requester asks the platform for a batch of permissions.
type Requester interface {
	Request(ctx context.Context, permissions []permission.Permission) ([]permission.Result, error)
}

// LifecycleReporter records lifecycle transitions for foreground detection.
type LifecycleReporter interface {
	Report(state foreground.Lifecycle)
}

// Options configures an Activity.
type Options struct {
	// Stopper is the alarm controller.
	Stopper Stopper
	// Requester asks for permissions; nil skips the request.
	Requester Requester
	// Lifecycle receives resume/pause transitions; optional.
	Lifecycle LifecycleReporter
	// PlatformVersion decides whether notification posting is requested.
	PlatformVersion int
	// Granted lists permissions already held.
	Granted []permission.Permission
}

// Activity is the entry point of the host application.
type Activity struct {
	stopper         Stopper
	requester       Requester
	lifecycle       LifecycleReporter
	platformVersion int
	granted         []permission.Permission
}

// New creates an Activity.
func New(opts Options) *Activity {
	return &Activity{
		stopper:         opts.Stopper,
		requester:       opts.Requester,
		lifecycle:       opts.Lifecycle,
		platformVersion: opts.PlatformVersion,
		granted:         append([]permission.Permission(nil), opts.Granted...),
	}
}

// OnCreate requests every required permission that is not held yet, in a
// single batch, and returns the observed results.
func (a *Activity) OnCreate(ctx context.Context) []permission.Result {
	ctx = logger.WithName(ctx, "activity")

	missing := permission.Missing(permission.Required(a.platformVersion), a.granted)
	if len(missing) == 0 || a.requester == nil {
		logger.DebugKV(ctx, "No permissions to request", "platform_version", a.platformVersion)

		return nil
	}

	logger.InfoKV(ctx, "Requesting permissions", "permissions", missing)

	results, err := a.requester.Request(ctx, missing)
	if err != nil {
		logger.WarnKV(ctx, "Permission request failed", "error", err)

		return nil
	}

	a.OnRequestPermissionsResult(ctx, results)

	return results
}

// OnRequestPermissionsResult acknowledges the results. Denials are logged;
// features relying on them degrade on their own.
func (a *Activity) OnRequestPermissionsResult(ctx context.Context, results []permission.Result) {
	for _, r := range results {
		if r.Granted {
			logger.DebugKV(ctx, "Permission granted", "permission", r.Permission)
		}
	}

	if denied := permission.Denied(results); len(denied) > 0 {
		logger.WarnKV(ctx, "Permissions denied", "permissions", denied)
	}
}

// OnResume marks the application as foregrounded and stops any alarm.
func (a *Activity) OnResume(ctx context.Context) *domain.Snapshot {
	ctx = logger.WithName(ctx, "activity")

	if a.lifecycle != nil {
		a.lifecycle.Report(foreground.LifecycleResumed)
	}

	logger.Debug(ctx, "Application resumed, stopping alarm")

	return a.stopper.Stop(ctx, domain.StopReasonResume, nil)
}

// OnPause marks the application as backgrounded.
func (a *Activity) OnPause(ctx context.Context) {
	if a.lifecycle != nil {
		a.lifecycle.Report(foreground.LifecyclePaused)
	}

	logger.Debug(logger.WithName(ctx, "activity"), "Application paused")
}
