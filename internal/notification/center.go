package notification

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/oshokin/order-alarm/internal/logger"
)

// ErrUnknownChannel is returned when a notification names a channel that was never created.
var ErrUnknownChannel = errors.New("unknown notification channel")

// displayFunc matches beeep.Notify and beeep.Alert.
type displayFunc func(title, message string, icon any) error

// Center keeps the registered channels and active notifications and
// displays new notifications on the desktop.
//
// Desktop toasts carry only a title and a body. Actions and the content tap
// are not rendered, so their links are never opened by the toast itself.
// They fire when something runs the action's Command: alarm-stop for the
// stop button, and alarm-resume from the host's scheme handler for a tap.
//
// A desktop alert may block for a long time, so displays run on their own
// goroutines and never hold the Center's lock.
type Center struct {
	// channels holds every channel created so far, by id.
	channels map[string]Channel
	// active holds the notifications currently shown, by id.
	active map[int]*Notification
	// alert displays notifications of high importance channels.
	alert displayFunc
	// notify displays everything else.
	notify displayFunc
	// icon is passed to the display functions.
	icon any
	// displays tracks the running display goroutines.
	displays sync.WaitGroup
	// mu protects channels and active.
	mu sync.Mutex
}

// Option configures a Center.
type Option func(*Center)

// WithIcon sets the icon shown next to desktop notifications (path or bytes).
func WithIcon(icon any) Option {
	return func(c *Center) {
		c.icon = icon
	}
}

// WithDisplay replaces the desktop display functions; nil keeps the default.
func WithDisplay(alert, notify func(title, message string, icon any) error) Option {
	return func(c *Center) {
		if alert != nil {
			c.alert = alert
		}

		if notify != nil {
			c.notify = notify
		}
	}
}

// NewCenter creates a Center that displays through beeep.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		channels: make(map[string]Channel),
		active:   make(map[int]*Notification),
		alert:    beeep.Alert,
		notify:   beeep.Notify,
		icon:     "",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// EnsureChannel registers the channel unless one with the same id exists.
// It reports whether the channel was created by this call.
func (c *Center) EnsureChannel(ctx context.Context, channel Channel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.channels[channel.ID]; ok {
		return false
	}

	c.channels[channel.ID] = channel

	logger.DebugKV(ctx, "Notification channel created", "channel_id", channel.ID, "name", channel.Name)

	return true
}

// Show adds or replaces the notification and starts displaying it without
// waiting for the desktop. A failed display is logged and the entry stays
// active.
func (c *Center) Show(ctx context.Context, n *Notification) error {
	c.mu.Lock()

	channel, ok := c.channels[n.ChannelID]
	if !ok {
		c.mu.Unlock()

		return fmt.Errorf("%w: %q", ErrUnknownChannel, n.ChannelID)
	}

	c.active[n.ID] = n.Clone()
	c.mu.Unlock()

	display := c.notify
	if channel.Importance == ImportanceHigh || n.Priority == PriorityMax {
		display = c.alert
	}

	displayCtx := logger.WithKV(context.WithoutCancel(ctx), "notification_id", n.ID)
	title, body, channelID := n.Title, n.Body, n.ChannelID
	commands := actionCommands(n)

	c.displays.Go(func() {
		if err := display(title, body, c.icon); err != nil {
			logger.WarnKV(displayCtx, "Unable to display notification", "error", err)

			return
		}

		logger.DebugKV(displayCtx, "Notification shown", "channel_id", channelID, "actions", commands)
	})

	return nil
}

// Wait blocks until every started display has returned.
func (c *Center) Wait() {
	c.displays.Wait()
}

// actionCommands maps action ids to the commands that fire them.
func actionCommands(n *Notification) map[string]string {
	commands := make(map[string]string, len(n.Actions)+1)

	for _, action := range append([]Action{n.Content}, n.Actions...) {
		if action.ID != "" && action.Command != "" {
			commands[action.ID] = action.Command
		}
	}

	return commands
}

// Cancel removes the notification with the given id; unknown ids are ignored.
// Desktop toasts already on screen expire on their own.
func (c *Center) Cancel(ctx context.Context, id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.active[id]; !ok {
		return
	}

	delete(c.active, id)

	logger.DebugKV(ctx, "Notification cancelled", "notification_id", id)
}

// Get returns a copy of the active notification with the given id.
func (c *Center) Get(id int) (*Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.active[id]

	return n.Clone(), ok
}

// Active returns copies of the active notifications ordered by id.
func (c *Center) Active() []*Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := slices.Sorted(maps.Keys(c.active))
	result := make([]*Notification, 0, len(ids))

	for _, id := range ids {
		result = append(result, c.active[id].Clone())
	}

	return result
}
