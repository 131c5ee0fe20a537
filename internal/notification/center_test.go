package notification

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/order-alarm/internal/logger"
)

var errNoDisplay = errors.New("no display")

// recorder counts calls to the display functions.
type recorder struct {
	mu      sync.Mutex
	alerts  []string
	notices []string
	err     error
}

func (r *recorder) alert(title, _ string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.alerts = append(r.alerts, title)

	return r.err
}

func (r *recorder) notify(title, _ string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notices = append(r.notices, title)

	return r.err
}

func (r *recorder) shown() (alerts, notices []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.alerts), slices.Clone(r.notices)
}

func newTestCenter(r *recorder) *Center {
	return NewCenter(WithDisplay(r.alert, r.notify))
}

// TestCenter_EnsureChannelIsIdempotent verifies a channel is created once and reused.
func TestCenter_EnsureChannelIsIdempotent(t *testing.T) {
	t.Parallel()

	c := newTestCenter(new(recorder))
	ch := Channel{ID: "orders", Name: "Pedidos", Importance: ImportanceHigh}

	require.True(t, c.EnsureChannel(context.Background(), ch))
	require.False(t, c.EnsureChannel(context.Background(), ch))
	require.False(t, c.EnsureChannel(context.Background(), Channel{ID: "orders", Name: "renamed"}))
	require.Equal(t, "Pedidos", c.channels["orders"].Name)
}

// TestCenter_ShowAndCancel verifies the active table and the display routing.
func TestCenter_ShowAndCancel(t *testing.T) {
	t.Parallel()

	r := new(recorder)
	c := newTestCenter(r)
	ctx := context.Background()

	err := c.Show(ctx, &Notification{ID: 1, ChannelID: "missing"})
	require.ErrorIs(t, err, ErrUnknownChannel)

	c.EnsureChannel(ctx, Channel{ID: "orders", Importance: ImportanceHigh})
	c.EnsureChannel(ctx, Channel{ID: "info"})

	require.NoError(t, c.Show(ctx, &Notification{ID: 1, ChannelID: "orders", Title: "alarm"}))
	require.NoError(t, c.Show(ctx, &Notification{ID: 2, ChannelID: "info", Title: "note"}))
	c.Wait()

	alerts, notices := r.shown()
	require.Equal(t, []string{"alarm"}, alerts)
	require.Equal(t, []string{"note"}, notices)

	active := c.Active()
	require.Len(t, active, 2)
	require.Equal(t, 1, active[0].ID)

	// Replace by id.
	require.NoError(t, c.Show(ctx, &Notification{ID: 1, ChannelID: "orders", Title: "again"}))
	got, ok := c.Get(1)
	require.True(t, ok)
	require.Equal(t, "again", got.Title)

	c.Cancel(ctx, 1)
	c.Cancel(ctx, 1)

	_, ok = c.Get(1)
	require.False(t, ok)
	require.Len(t, c.Active(), 1)
}

// TestCenter_ShowKeepsEntryOnDisplayError verifies that a failed display is
// logged and still counts as shown.
func TestCenter_ShowKeepsEntryOnDisplayError(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).Sugar())

	r := &recorder{err: errNoDisplay}
	c := newTestCenter(r)

	c.EnsureChannel(ctx, Channel{ID: "orders"})

	require.NoError(t, c.Show(ctx, &Notification{ID: 7, ChannelID: "orders", Priority: PriorityMax}))
	c.Wait()

	_, ok := c.Get(7)
	require.True(t, ok)

	alerts, _ := r.shown()
	require.Len(t, alerts, 1)

	warnings := logs.FilterMessage("Unable to display notification").All()
	require.Len(t, warnings, 1)
	require.Equal(t, errNoDisplay.Error(), warnings[0].ContextMap()["error"])
}

// TestCenter_SlowDisplayDoesNotBlock verifies a hanging desktop alert holds
// up neither Show nor the calls that follow it.
func TestCenter_SlowDisplayDoesNotBlock(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{}, 1)

	hang := func(string, string, any) error {
		started <- struct{}{}
		<-release

		return nil
	}

	c := NewCenter(WithDisplay(hang, hang))
	ctx := context.Background()

	c.EnsureChannel(ctx, Channel{ID: "orders", Importance: ImportanceHigh})

	returned := make(chan error, 1)

	go func() {
		returned <- c.Show(ctx, &Notification{ID: 1, ChannelID: "orders"})
	}()

	select {
	case err := <-returned:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Show waited for the display")
	}

	<-started

	_, ok := c.Get(1)
	require.True(t, ok)

	c.Cancel(ctx, 1)
	require.Empty(t, c.Active())

	close(release)
	c.Wait()
}

// TestCenter_ActionCommands verifies every action with a command is reported.
func TestCenter_ActionCommands(t *testing.T) {
	t.Parallel()

	n := &Notification{
		Content: Action{ID: "open", Command: "alarm-resume"},
		Actions: []Action{
			{ID: "stop", Label: "Parar", Command: "alarm-stop"},
			{ID: "snooze", Label: "Adiar"},
		},
	}

	require.Equal(t, map[string]string{
		"open": "alarm-resume",
		"stop": "alarm-stop",
	}, actionCommands(n))
	require.Empty(t, actionCommands(new(Notification)))
}

// TestLinks verifies the deep links carried by notification actions.
func TestLinks(t *testing.T) {
	t.Parallel()

	require.Equal(t, "doceria://open", OpenLink("doceria", ""))
	require.Equal(t, "doceria://open?notification_url=%2Fpedidos%2F42", OpenLink("doceria", "/pedidos/42"))
	require.Equal(t, "doceria://alarm/stop", StopLink("doceria"))
}

// TestNotificationClone verifies actions are copied.
func TestNotificationClone(t *testing.T) {
	t.Parallel()

	n := &Notification{ID: 1, Actions: []Action{{ID: "stop"}}}
	c := n.Clone()
	c.Actions[0].ID = "changed"

	a, ok := n.Action("stop")
	require.True(t, ok)
	require.Equal(t, "stop", a.ID)

	_, ok = n.Action("snooze")
	require.False(t, ok)
	require.Nil(t, (*Notification)(nil).Clone())
}
