package notification

import "slices"

// Importance controls how intrusive a channel is.
type Importance int

const (
	// ImportanceDefault shows a regular toast.
	ImportanceDefault Importance = iota
	// ImportanceHigh shows an alert that demands attention.
	ImportanceHigh
)

// Priority orders notifications within a channel.
type Priority int

const (
	// PriorityDefault is the normal priority.
	PriorityDefault Priority = iota
	// PriorityMax is used for alarms.
	PriorityMax
)

// CategoryAlarm marks a notification as an alarm.
const CategoryAlarm = "alarm"

// Channel groups notifications sharing the same behavior.
type Channel struct {
	ID          string
	Name        string
	Description string
	Importance  Importance
	// Vibration and Lights request the matching hardware cues.
	Vibration bool
	Lights    bool
	// SoundUsage tells the platform which audio stream carries the channel sound.
	SoundUsage string
}

// Action is a button or tap target attached to a notification.
type Action struct {
	// ID is the command the action triggers.
	ID string
	// Label is the text shown on the button; empty for tap targets.
	Label string
	// Target is the deep link opened when the action fires.
	Target string
	// Command is the local command that fires the action on desktops whose
	// toasts render no buttons or tap targets.
	Command string
}

// Notification is a single entry on the notification surface.
type Notification struct {
	ID        int
	ChannelID string
	Title     string
	Body      string
	Category  string
	Priority  Priority
	// Public makes the content visible on a locked screen.
	Public bool
	// Ongoing notifications cannot be swiped away.
	Ongoing bool
	// AutoCancel removes the notification when it is tapped.
	AutoCancel bool
	// FullScreen asks the platform to show the content action immediately.
	FullScreen bool
	// Content is fired when the notification body is tapped.
	Content Action
	// Actions are the buttons shown below the text.
	Actions []Action
}

// Clone returns a deep copy of the notification.
func (n *Notification) Clone() *Notification {
	if n == nil {
		return nil
	}

	cloned := *n
	cloned.Actions = slices.Clone(n.Actions)

	return &cloned
}

// Action returns the action with the given id.
func (n *Notification) Action(id string) (Action, bool) {
	for _, a := range n.Actions {
		if a.ID == id {
			return a, true
		}
	}

	return Action{}, false
}
