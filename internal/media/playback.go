package media

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oshokin/order-alarm/internal/logger"
)

var (
	// ErrNotPlaying is returned by Stop when nothing is playing.
	ErrNotPlaying = errors.New("playback is not playing")
	// ErrReleased is returned when a released playback is used again.
	ErrReleased = errors.New("playback is released")
)

// Player acquires playback resources for the alarm sound.
type Player interface {
	Acquire(ctx context.Context) (Playback, error)
}

// Playback is an acquired sound resource.
type Playback interface {
	// Play starts looping the sound in the background. Playing twice is a no-op.
	Play(ctx context.Context) error
	// Stop halts the loop, returning ErrNotPlaying when it was not running.
	Stop() error
	// Release stops the loop if needed and frees the resource for good.
	Release() error
}

// maxBackoffFactor caps the wait after repeated failures relative to the pause.
const maxBackoffFactor = 32

// playOnceFunc plays the sound a single time, blocking until it ends or ctx is done.
type playOnceFunc func(ctx context.Context) error

// loopPlayback repeats playOnce until stopped.
type loopPlayback struct {
	// playOnce plays the sound a single time.
	playOnce playOnceFunc
	// pause is waited between iterations and grows while iterations keep failing.
	pause time.Duration

	// cancel stops the running loop; nil when idle.
	cancel context.CancelFunc
	// done is closed when the running loop exits.
	done chan struct{}
	// released marks the resource as freed.
	released bool
	// mu protects cancel, done and released.
	mu sync.Mutex
}

func newLoopPlayback(playOnce playOnceFunc, pause time.Duration) *loopPlayback {
	return &loopPlayback{
		playOnce: playOnce,
		pause:    pause,
	}
}

// Play implements Playback.
func (p *loopPlayback) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return ErrReleased
	}

	if p.cancel != nil {
		return nil
	}

	// The loop outlives the caller's request but keeps its logger.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	p.cancel = cancel
	p.done = done

	go p.loop(loopCtx, done)

	return nil
}

// Stop implements Playback.
func (p *loopPlayback) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	released := p.released
	p.mu.Unlock()

	if cancel == nil {
		if released {
			return ErrReleased
		}

		return ErrNotPlaying
	}

	cancel()
	<-done

	return nil
}

// Release implements Playback.
func (p *loopPlayback) Release() error {
	err := p.Stop()

	p.mu.Lock()
	p.released = true
	p.mu.Unlock()

	if errors.Is(err, ErrNotPlaying) || errors.Is(err, ErrReleased) {
		return nil
	}

	return err
}

func (p *loopPlayback) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	failures := 0

	for {
		err := p.playOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		// Only the first failure of a run is reported.
		switch {
		case err != nil:
			failures++

			if failures == 1 {
				logger.WarnKV(ctx, "Alarm sound iteration failed, backing off", "error", err)
			}
		case failures > 0:
			logger.InfoKV(ctx, "Alarm sound recovered", "failed_iterations", failures)

			failures = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay(p.pause, failures)):
		}
	}
}

// retryDelay doubles pause for every consecutive failure after the first,
// capped at maxBackoffFactor times pause.
func retryDelay(pause time.Duration, failures int) time.Duration {
	limit := pause * maxBackoffFactor
	delay := pause

	for i := 1; i < failures && delay < limit; i++ {
		delay *= 2
	}

	return min(delay, limit)
}
