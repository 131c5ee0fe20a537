package alarm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/order-alarm/internal/domain/alarm"
	"github.com/oshokin/order-alarm/internal/media"
	"github.com/oshokin/order-alarm/internal/notification"
)

const testDelay = 120 * time.Second

var (
	errTestAcquire = errors.New("no audio device")
	errTestStop    = errors.New("illegal state")
)

// journal records resource events in order across fakes.
type journal struct {
	events []string
	mu     sync.Mutex
}

func (j *journal) add(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.events = append(j.events, fmt.Sprintf(format, args...))
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	return append([]string(nil), j.events...)
}

// fakePlayer hands out numbered playbacks.
type fakePlayer struct {
	journal    *journal
	acquired   int
	acquireErr error
	stopErr    error
	live       map[int]bool
}

func (p *fakePlayer) Acquire(context.Context) (media.Playback, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}

	p.acquired++
	p.journal.add("acquire#%d", p.acquired)

	if p.live == nil {
		p.live = make(map[int]bool)
	}

	p.live[p.acquired] = true

	return &fakePlayback{player: p, id: p.acquired}, nil
}

// fakePlayback implements media.Playback.
type fakePlayback struct {
	player  *fakePlayer
	id      int
	playing bool
}

func (pb *fakePlayback) Play(context.Context) error {
	pb.playing = true
	pb.player.journal.add("play#%d", pb.id)

	return nil
}

func (pb *fakePlayback) Stop() error {
	if pb.player.stopErr != nil {
		return pb.player.stopErr
	}

	if !pb.playing {
		return media.ErrNotPlaying
	}

	pb.playing = false
	pb.player.journal.add("stop#%d", pb.id)

	return nil
}

func (pb *fakePlayback) Release() error {
	delete(pb.player.live, pb.id)
	pb.player.journal.add("release#%d", pb.id)

	return nil
}

type fixture struct {
	controller *Controller
	clock      *clockwork.FakeClock
	center     *notification.Center
	player     *fakePlayer
	journal    *journal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	j := new(journal)
	player := &fakePlayer{journal: j}
	clock := clockwork.NewFakeClock()
	noDisplay := func(string, string, any) error { return nil }
	center := notification.NewCenter(notification.WithDisplay(noDisplay, noDisplay))

	c := New(Options{
		Player:        player,
		Notifier:      center,
		Clock:         clock,
		AutoStopDelay: testDelay,
		Channel:       notification.Channel{ID: "orders", Name: "Pedidos"},
		Scheme:        "doceria",
		StopLabel:     "Parar",
	})

	return &fixture{
		controller: c,
		clock:      clock,
		center:     center,
		player:     player,
		journal:    j,
	}
}

func testRequest() *domain.Request {
	return &domain.Request{
		Title: "Novo pedido recebido",
		Body:  "Pedido de Maria (#42)",
		URL:   "/pedidos/42",
	}
}

// TestController_StopWhenIdleIsNoop verifies stopping an idle controller keeps it idle.
func TestController_StopWhenIdleIsNoop(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	before := f.controller.State()

	for range 3 {
		s := f.controller.Stop(context.Background(), domain.StopReasonAction, nil)
		require.Equal(t, domain.StatusIdle, s.Status)
		require.Equal(t, before, s)
	}

	require.Empty(t, f.journal.all())
	require.Empty(t, f.center.Active())
}

// TestController_StartShowsNotificationAndPlays verifies the alarming side effects.
func TestController_StartShowsNotificationAndPlays(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	s := f.controller.Start(context.Background(), testRequest())
	require.Equal(t, domain.StatusAlarming, s.Status)
	require.Equal(t, testRequest(), s.Request)
	require.Equal(t, []string{"acquire#1", "play#1"}, f.journal.all())

	n, ok := f.center.Get(NotificationID)
	require.True(t, ok)
	require.Equal(t, "orders", n.ChannelID)
	require.Equal(t, "Novo pedido recebido", n.Title)
	require.Equal(t, notification.PriorityMax, n.Priority)
	require.True(t, n.Ongoing)
	require.False(t, n.AutoCancel)
	require.Equal(t, "doceria://open?notification_url=%2Fpedidos%2F42", n.Content.Target)

	stop, ok := n.Action(ActionStop)
	require.True(t, ok)
	require.Equal(t, "Parar", stop.Label)
	require.Equal(t, "doceria://alarm/stop", stop.Target)
	require.Equal(t, CommandStop, stop.Command)
	require.Equal(t, CommandOpen, n.Content.Command)
}

// TestController_RestartReleasesPreviousPlayback verifies no sound resource leaks on repeated starts.
func TestController_RestartReleasesPreviousPlayback(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.controller.Start(context.Background(), testRequest())
	f.controller.Start(context.Background(), &domain.Request{Title: "Pedido #5"})

	require.Equal(t, []string{
		"acquire#1", "play#1",
		"stop#1", "release#1",
		"acquire#2", "play#2",
	}, f.journal.all())
	require.Len(t, f.player.live, 1)

	// Notification replaced, not duplicated.
	active := f.center.Active()
	require.Len(t, active, 1)
	require.Equal(t, "Pedido #5", active[0].Title)
}

// TestController_StopReleasesEverything verifies the stop action path.
func TestController_StopReleasesEverything(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	actor := &domain.Actor{Hostname: "caixa-01", Username: "atendente"}

	f.controller.Start(context.Background(), testRequest())
	s := f.controller.Stop(context.Background(), domain.StopReasonAction, actor)

	require.Equal(t, domain.StatusIdle, s.Status)
	require.Equal(t, domain.StopReasonAction, s.StopReason)
	require.Equal(t, actor, s.StoppedBy)
	require.NotSame(t, actor, s.StoppedBy)
	require.Nil(t, s.Request)
	require.Empty(t, f.center.Active())
	require.Empty(t, f.player.live)

	// Second stop keeps the first stop's details.
	again := f.controller.Stop(context.Background(), domain.StopReasonResume, nil)
	require.Equal(t, s, again)
}

// TestController_AutoStop verifies the timer silences the alarm after the delay.
func TestController_AutoStop(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.controller.Start(context.Background(), testRequest())

	f.clock.Advance(testDelay - time.Second)
	require.True(t, f.controller.State().IsAlarming())

	f.clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		return !f.controller.State().IsAlarming()
	}, time.Second, time.Millisecond)

	s := f.controller.State()
	require.Equal(t, domain.StopReasonTimeout, s.StopReason)
	require.Empty(t, f.center.Active())
	require.Empty(t, f.player.live)
}

// TestController_RestartRearmsTimer verifies the timer counts from the latest start.
func TestController_RestartRearmsTimer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.controller.Start(context.Background(), testRequest())
	f.clock.Advance(testDelay / 2)

	f.controller.Start(context.Background(), testRequest())
	f.clock.Advance(testDelay/2 + time.Second)

	// Give a stale callback the chance to run; it must not stop the new alarm.
	time.Sleep(20 * time.Millisecond)
	require.True(t, f.controller.State().IsAlarming())

	f.clock.Advance(testDelay / 2)
	require.Eventually(t, func() bool {
		return !f.controller.State().IsAlarming()
	}, time.Second, time.Millisecond)
}

// TestController_StopErrorsAreSwallowed verifies playback stop failures never escape.
func TestController_StopErrorsAreSwallowed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.controller.Start(context.Background(), testRequest())
	f.player.stopErr = errTestStop

	require.NotPanics(t, func() {
		s := f.controller.Stop(context.Background(), domain.StopReasonAction, nil)
		require.Equal(t, domain.StatusIdle, s.Status)
	})

	// Released despite the stop failure.
	require.Empty(t, f.player.live)
}

// TestController_StartWithoutSound verifies a missing audio device still shows the alarm.
func TestController_StartWithoutSound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.player.acquireErr = errTestAcquire

	s := f.controller.Start(context.Background(), nil)
	require.Equal(t, domain.StatusAlarming, s.Status)
	require.Len(t, f.center.Active(), 1)

	f.controller.Close(context.Background())
	require.Equal(t, domain.StopReasonShutdown, f.controller.State().StopReason)
}

// TestController_HangingDisplayDoesNotBlockStop verifies a desktop alert that
// never returns leaves Start and Stop responsive.
func TestController_HangingDisplayDoesNotBlockStop(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	hang := func(string, string, any) error {
		<-release

		return nil
	}

	center := notification.NewCenter(notification.WithDisplay(hang, hang))
	c := New(Options{
		Player:        &fakePlayer{journal: new(journal)},
		Notifier:      center,
		Clock:         clockwork.NewFakeClock(),
		AutoStopDelay: testDelay,
		Channel:       notification.Channel{ID: "orders", Importance: notification.ImportanceHigh},
		Scheme:        "doceria",
	})

	done := make(chan *domain.Snapshot, 1)

	go func() {
		ctx := context.Background()

		c.Start(ctx, testRequest())
		done <- c.Stop(ctx, domain.StopReasonAction, nil)
	}()

	select {
	case s := <-done:
		require.Equal(t, domain.StatusIdle, s.Status)
	case <-time.After(time.Second):
		t.Fatal("controller waited for the notification display")
	}

	require.Empty(t, center.Active())

	close(release)
	center.Wait()
}
