package alarm

import "time"

// Status is the lifecycle state of the alarm.
type Status int

const (
	// StatusIdle means no sound is playing and no alarm notification is shown.
	StatusIdle Status = iota
	// StatusAlarming means the sound loops and the alarm notification is shown.
	StatusAlarming
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAlarming:
		return "alarming"
	default:
		return "unknown"
	}
}

// ParseStatus converts the output of Status.String back to a Status.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "idle":
		return StatusIdle, true
	case "alarming":
		return StatusAlarming, true
	default:
		return StatusIdle, false
	}
}

// StopReason tells why an alarm went back to idle.
type StopReason string

const (
	// StopReasonNone is used while the alarm has never been stopped.
	StopReasonNone StopReason = ""
	// StopReasonAction is the user tapping the notification's stop action.
	StopReasonAction StopReason = "action"
	// StopReasonTimeout is the auto-stop timer firing.
	StopReasonTimeout StopReason = "timeout"
	// StopReasonResume is the host application coming to the foreground.
	StopReasonResume StopReason = "resume"
	// StopReasonShutdown is the agent process tearing down.
	StopReasonShutdown StopReason = "shutdown"
)

// Request carries what a started alarm displays. It is transient and never persisted.
type Request struct {
	// Title is the notification title.
	Title string
	// Body is the notification text.
	Body string
	// URL is the deep link opened by tapping the notification; empty when absent.
	URL string
}

// Clone returns a copy of the request.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}

	cloned := *r

	return &cloned
}

// Actor identifies who dismissed the alarm.
type Actor struct {
	// Hostname is the machine name where the action was performed.
	Hostname string
	// Username is the system user who triggered the action.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// Snapshot represents the alarm at a specific point in time.
type Snapshot struct {
	// Status is the current lifecycle state.
	Status Status
	// Request is what the running alarm shows; nil while idle.
	Request *Request
	// ChangedAt is when the status last changed.
	ChangedAt time.Time
	// StopReason is why the alarm last went idle.
	StopReason StopReason
	// StoppedBy is who dismissed the alarm through the stop action, if anyone.
	StoppedBy *Actor
}

// IsAlarming reports whether the alarm is currently sounding.
func (s *Snapshot) IsAlarming() bool {
	return s != nil && s.Status == StatusAlarming
}

// Clone returns a copy of the snapshot to avoid leaking internal references.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}

	return &Snapshot{
		Status:     s.Status,
		Request:    s.Request.Clone(),
		ChangedAt:  s.ChangedAt,
		StopReason: s.StopReason,
		StoppedBy:  s.StoppedBy.Clone(),
	}
}
