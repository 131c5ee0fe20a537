package alarm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	domain "github.com/oshokin/order-alarm/internal/domain/alarm"
	"github.com/oshokin/order-alarm/internal/logger"
	"github.com/oshokin/order-alarm/internal/media"
	"github.com/oshokin/order-alarm/internal/notification"
)

const (
	// NotificationID is shared by every alarm so a new alarm replaces the previous one.
	NotificationID = 2024

	// ActionStop is the id of the notification's stop button.
	ActionStop = "stop"
	// ActionOpen is the id of the notification's tap-through action.
	ActionOpen = "open"

	// CommandStop fires the stop action.
	CommandStop = "alarm-stop"
	// CommandOpen is run by the host's scheme handler when the notification is tapped.
	CommandOpen = "alarm-resume"

	// soundUsageAlarm routes the channel sound through the alarm stream.
	soundUsageAlarm = "alarm"
)

// Notifier is the notification surface the controller drives.
type Notifier interface {
	EnsureChannel(ctx context.Context, channel notification.Channel) bool
	Show(ctx context.Context, n *notification.Notification) error
	Cancel(ctx context.Context, id int)
}

// Options configures a Controller.
type Options struct {
	// Player acquires the alarm sound.
	Player media.Player
	// Notifier shows and removes the alarm notification.
	Notifier Notifier
	// Clock schedules the auto-stop; the real clock when nil.
	Clock clockwork.Clock
	// AutoStopDelay is how long an alarm rings without interaction.
	AutoStopDelay time.Duration
	// Channel is the notification channel, created on the first start.
	Channel notification.Channel
	// Scheme is the deep link scheme of the host application.
	Scheme string
	// StopLabel is the localized text of the stop button.
	StopLabel string
}

// Controller is the alarm state machine. All methods are safe for concurrent use.
type Controller struct {
	// player acquires a new playback on every start.
	player media.Player
	// notifier shows the persistent notification.
	notifier Notifier
	// clock schedules the auto-stop timer.
	clock clockwork.Clock
	// delay is the auto-stop delay.
	delay time.Duration
	// channel is the alarm notification channel.
	channel notification.Channel
	// scheme builds notification deep links.
	scheme string
	// stopLabel is the stop button text.
	stopLabel string

	// snapshot is the current alarm state.
	snapshot *domain.Snapshot
	// playback is the sound resource owned while alarming.
	playback media.Playback
	// timer is the armed auto-stop timer, nil while idle.
	timer clockwork.Timer
	// generation invalidates auto-stop callbacks of earlier starts.
	generation uint64
	// mu serializes state transitions.
	mu sync.Mutex
}

// New creates an idle controller.
func New(opts Options) *Controller {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	channel := opts.Channel
	channel.Importance = notification.ImportanceHigh
	channel.Vibration = true
	channel.Lights = true
	channel.SoundUsage = soundUsageAlarm

	return &Controller{
		player:    opts.Player,
		notifier:  opts.Notifier,
		clock:     clock,
		delay:     opts.AutoStopDelay,
		channel:   channel,
		scheme:    opts.Scheme,
		stopLabel: opts.StopLabel,
		snapshot: &domain.Snapshot{
			Status:    domain.StatusIdle,
			ChangedAt: clock.Now(),
		},
	}
}

// Start rings the alarm for the request. It is valid from any state: a
// running alarm is replaced, its sound released before a new one is acquired.
// Failures of the sound or the display are logged, never returned.
func (c *Controller) Start(ctx context.Context, req *domain.Request) *domain.Snapshot {
	ctx = logger.WithName(ctx, "alarm")

	c.mu.Lock()
	defer c.mu.Unlock()

	req = req.Clone()
	if req == nil {
		req = new(domain.Request)
	}

	c.cancelTimerLocked()
	c.releasePlaybackLocked(ctx)

	if c.notifier.EnsureChannel(ctx, c.channel) {
		logger.InfoKV(ctx, "Alarm channel created", "channel_id", c.channel.ID)
	}

	c.startPlaybackLocked(ctx)

	if err := c.notifier.Show(ctx, c.buildNotification(req)); err != nil {
		logger.WarnKV(ctx, "Unable to show alarm notification", "error", err)
	}

	c.generation++
	generation := c.generation

	if c.delay > 0 {
		timerCtx := context.WithoutCancel(ctx)
		c.timer = c.clock.AfterFunc(c.delay, func() {
			c.expire(timerCtx, generation)
		})
	}

	c.snapshot = &domain.Snapshot{
		Status:    domain.StatusAlarming,
		Request:   req,
		ChangedAt: c.clock.Now(),
	}

	logger.InfoKV(ctx, "Alarm started", "title", req.Title, "url", req.URL, "auto_stop", c.delay.String())

	return c.snapshot.Clone()
}

// Stop silences the alarm. It is idempotent: stopping an idle alarm keeps
// it idle and leaves the snapshot untouched. Playback errors are logged.
func (c *Controller) Stop(ctx context.Context, reason domain.StopReason, actor *domain.Actor) *domain.Snapshot {
	ctx = logger.WithName(ctx, "alarm")

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked(ctx, reason, actor)

	return c.snapshot.Clone()
}

// State returns the current alarm snapshot.
func (c *Controller) State() *domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot.Clone()
}

// Close stops the alarm and releases the sound for process teardown.
func (c *Controller) Close(ctx context.Context) {
	c.Stop(ctx, domain.StopReasonShutdown, nil)
}

// expire is the auto-stop callback; stale generations are ignored.
func (c *Controller) expire(ctx context.Context, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation || c.snapshot.Status != domain.StatusAlarming {
		return
	}

	logger.InfoKV(ctx, "Alarm auto-stop delay elapsed", "delay", c.delay.String())

	c.stopLocked(ctx, domain.StopReasonTimeout, nil)
}

func (c *Controller) stopLocked(ctx context.Context, reason domain.StopReason, actor *domain.Actor) {
	// Invalidate any auto-stop callback already waiting on the lock.
	c.generation++

	c.cancelTimerLocked()
	c.releasePlaybackLocked(ctx)
	c.notifier.Cancel(ctx, NotificationID)

	if c.snapshot.Status == domain.StatusIdle {
		return
	}

	c.snapshot = &domain.Snapshot{
		Status:     domain.StatusIdle,
		ChangedAt:  c.clock.Now(),
		StopReason: reason,
		StoppedBy:  actor.Clone(),
	}

	logger.InfoKV(ctx, "Alarm stopped", "reason", string(reason), "actor", actor)
}

func (c *Controller) cancelTimerLocked() {
	if c.timer == nil {
		return
	}

	c.timer.Stop()
	c.timer = nil
}

func (c *Controller) startPlaybackLocked(ctx context.Context) {
	if c.player == nil {
		return
	}

	playback, err := c.player.Acquire(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Unable to acquire alarm sound", "error", err)

		return
	}

	c.playback = playback

	if err = playback.Play(ctx); err != nil {
		logger.WarnKV(ctx, "Unable to play alarm sound", "error", err)
	}
}

// releasePlaybackLocked stops and frees the owned sound. A playback that is
// not playing is not an error; other failures are logged and swallowed.
func (c *Controller) releasePlaybackLocked(ctx context.Context) {
	if c.playback == nil {
		return
	}

	playback := c.playback
	c.playback = nil

	if err := playback.Stop(); err != nil && !errors.Is(err, media.ErrNotPlaying) {
		logger.WarnKV(ctx, "Alarm sound did not stop cleanly", "error", err)
	}

	if err := playback.Release(); err != nil {
		logger.WarnKV(ctx, "Alarm sound was not released cleanly", "error", err)
	}
}

func (c *Controller) buildNotification(req *domain.Request) *notification.Notification {
	return &notification.Notification{
		ID:         NotificationID,
		ChannelID:  c.channel.ID,
		Title:      req.Title,
		Body:       req.Body,
		Category:   notification.CategoryAlarm,
		Priority:   notification.PriorityMax,
		Public:     true,
		Ongoing:    true,
		AutoCancel: false,
		FullScreen: true,
		Content: notification.Action{
			ID:      ActionOpen,
			Target:  notification.OpenLink(c.scheme, req.URL),
			Command: CommandOpen,
		},
		Actions: []notification.Action{{
			ID:      ActionStop,
			Label:   c.stopLabel,
			Target:  notification.StopLink(c.scheme),
			Command: CommandStop,
		}},
	}
}
