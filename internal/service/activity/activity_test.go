package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/order-alarm/internal/domain/alarm"
	"github.com/oshokin/order-alarm/internal/domain/permission"
	"github.com/oshokin/order-alarm/internal/foreground"
)

var errTestNotice = errors.New("no notification daemon")

// fakeStopper counts stops and mimics the controller's idle/alarming states.
type fakeStopper struct {
	stops  int
	status domain.Status
}

func (s *fakeStopper) Stop(_ context.Context, reason domain.StopReason, _ *domain.Actor) *domain.Snapshot {
	s.stops++
	s.status = domain.StatusIdle

	return &domain.Snapshot{Status: s.status, StopReason: reason}
}

// fakeRequester records requested batches.
type fakeRequester struct {
	batches [][]permission.Permission
	grant   bool
	err     error
}

func (r *fakeRequester) Request(_ context.Context, perms []permission.Permission) ([]permission.Result, error) {
	r.batches = append(r.batches, perms)

	if r.err != nil {
		return nil, r.err
	}

	results := make([]permission.Result, 0, len(perms))
	for _, p := range perms {
		results = append(results, permission.Result{Permission: p, Granted: r.grant})
	}

	return results, nil
}

// TestActivity_OnCreateRequestsOneBatch verifies the missing permissions are requested once, together.
func TestActivity_OnCreateRequestsOneBatch(t *testing.T) {
	t.Parallel()

	requester := &fakeRequester{grant: true}
	a := New(Options{
		Stopper:         new(fakeStopper),
		Requester:       requester,
		PlatformVersion: 34,
		Granted:         []permission.Permission{permission.WakeLock},
	})

	results := a.OnCreate(context.Background())

	require.Len(t, requester.batches, 1)
	require.Equal(t, []permission.Permission{
		permission.FineLocation,
		permission.CoarseLocation,
		permission.ModifyAudioSettings,
		permission.PostNotifications,
	}, requester.batches[0])
	require.Len(t, results, 4)
}

// TestActivity_OnCreateOldPlatform verifies notification posting is skipped on old platforms.
func TestActivity_OnCreateOldPlatform(t *testing.T) {
	t.Parallel()

	requester := new(fakeRequester)
	a := New(Options{Stopper: new(fakeStopper), Requester: requester, PlatformVersion: 30})

	results := a.OnCreate(context.Background())
	require.NotContains(t, requester.batches[0], permission.PostNotifications)
	require.Equal(t, requester.batches[0], permission.Denied(results))
}

// TestActivity_OnCreateNothingMissing verifies no request when everything is granted or the request fails.
func TestActivity_OnCreateNothingMissing(t *testing.T) {
	t.Parallel()

	requester := new(fakeRequester)
	a := New(Options{
		Stopper:         new(fakeStopper),
		Requester:       requester,
		PlatformVersion: 30,
		Granted:         permission.Required(30),
	})

	require.Nil(t, a.OnCreate(context.Background()))
	require.Empty(t, requester.batches)

	requester.err = errTestNotice
	a = New(Options{Stopper: new(fakeStopper), Requester: requester})
	require.Nil(t, a.OnCreate(context.Background()))
	require.Len(t, requester.batches, 1)
}

// TestActivity_OnResumeAlwaysStops verifies resume always ends idle and reports the lifecycle.
func TestActivity_OnResumeAlwaysStops(t *testing.T) {
	t.Parallel()

	stopper := &fakeStopper{status: domain.StatusAlarming}
	tracker := foreground.NewTracker()
	a := New(Options{Stopper: stopper, Lifecycle: tracker})

	for range 2 {
		s := a.OnResume(context.Background())
		require.Equal(t, domain.StatusIdle, s.Status)
		require.Equal(t, domain.StopReasonResume, s.StopReason)
	}

	require.Equal(t, 2, stopper.stops)
	require.True(t, tracker.IsForegrounded(context.Background()))

	a.OnPause(context.Background())
	require.False(t, tracker.IsForegrounded(context.Background()))
}

// TestNoticeRequester verifies the notice is posted and results are reported as not granted.
func TestNoticeRequester(t *testing.T) {
	t.Parallel()

	var posted string

	r := NewNoticeRequester("Doceria")
	r.notify = func(_, message string, _ any) error {
		posted = message

		return nil
	}

	results, err := r.Request(context.Background(), []permission.Permission{permission.WakeLock})
	require.NoError(t, err)
	require.Equal(t, []permission.Result{{Permission: permission.WakeLock, Granted: false}}, results)
	require.Contains(t, posted, "WAKE_LOCK")

	r.notify = func(string, string, any) error { return errTestNotice }

	_, err = r.Request(context.Background(), []permission.Permission{permission.WakeLock})
	require.ErrorIs(t, err, errTestNotice)
}
