package foreground

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/order-alarm/internal/logger"
)

// Detector reports whether the host application is in the foreground.
type Detector interface {
	IsForegrounded(ctx context.Context) bool
}

// Lifecycle is a state reported by the host application.
type Lifecycle int

const (
	// LifecycleUnknown means the application never reported.
	LifecycleUnknown Lifecycle = iota
	// LifecycleResumed means the application is visible.
	LifecycleResumed
	// LifecyclePaused means the application went to the background.
	LifecyclePaused
)

// String returns the lowercase name of the lifecycle state.
func (l Lifecycle) String() string {
	switch l {
	case LifecycleResumed:
		return "resumed"
	case LifecyclePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Tracker remembers the last lifecycle state reported by the application.
type Tracker struct {
	// state is the last reported lifecycle state.
	state Lifecycle
	// mu protects state.
	mu sync.RWMutex
}

// NewTracker creates a tracker with no report yet.
func NewTracker() *Tracker {
	return new(Tracker)
}

// Report stores a lifecycle state.
func (t *Tracker) Report(state Lifecycle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = state
}

// State returns the last reported lifecycle state.
func (t *Tracker) State() Lifecycle {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.state
}

// Known reports whether the application ever reported its lifecycle.
func (t *Tracker) Known() bool {
	return t.State() != LifecycleUnknown
}

// IsForegrounded implements Detector.
func (t *Tracker) IsForegrounded(context.Context) bool {
	return t.State() == LifecycleResumed
}

// processListFunc matches ps.Processes.
type processListFunc func() ([]ps.Process, error)

// ProcessDetector treats the application as foregrounded while its process is running.
type ProcessDetector struct {
	// executable is the process name to look for, compared case-insensitively.
	executable string
	// processes lists the running processes.
	processes processListFunc
}

// NewProcessDetector creates a detector looking for the given executable name.
func NewProcessDetector(executable string) *ProcessDetector {
	return &ProcessDetector{
		executable: normalizeExecutable(executable),
		processes:  ps.Processes,
	}
}

// IsForegrounded implements Detector. Listing failures count as background.
func (d *ProcessDetector) IsForegrounded(ctx context.Context) bool {
	if d.executable == "" {
		return false
	}

	processList, err := d.processes()
	if err != nil {
		logger.WarnKV(ctx, "Unable to list processes, assuming background", "error", err)

		return false
	}

	for _, process := range processList {
		if process == nil {
			continue
		}

		if normalizeExecutable(process.Executable()) == d.executable {
			return true
		}
	}

	return false
}

// normalizeExecutable strips the directory and a Windows .exe suffix.
func normalizeExecutable(name string) string {
	name = strings.ToLower(filepath.Base(strings.TrimSpace(name)))
	if name == "." {
		return ""
	}

	return strings.TrimSuffix(name, ".exe")
}

// Chain combines lifecycle reports with a live fallback check. A pause
// report means background. Otherwise the fallback answers, so a resume
// report never outlives the application process.
type Chain struct {
	tracker  *Tracker
	fallback Detector
}

// NewChain creates a detector combining the tracker with fallback.
func NewChain(tracker *Tracker, fallback Detector) *Chain {
	return &Chain{
		tracker:  tracker,
		fallback: fallback,
	}
}

// IsForegrounded implements Detector.
func (c *Chain) IsForegrounded(ctx context.Context) bool {
	state := LifecycleUnknown
	if c.tracker != nil {
		state = c.tracker.State()
	}

	if state == LifecyclePaused {
		return false
	}

	if c.fallback == nil {
		return state == LifecycleResumed
	}

	return c.fallback.IsForegrounded(ctx)
}
