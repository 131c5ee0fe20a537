package media

import (
	"context"
	"time"

	"github.com/gen2brain/beeep"
)

// beepPause separates two beeps.
const beepPause = 300 * time.Millisecond

// BeepPlayer sounds the system beep in a loop.
type BeepPlayer struct {
	// beep matches beeep.Beep.
	beep func(freq float64, duration int) error
	// freq is the tone frequency in Hz.
	freq float64
	// duration is the tone length in milliseconds.
	duration int
}

// NewBeepPlayer creates a player using beeep's default tone.
func NewBeepPlayer() *BeepPlayer {
	return &BeepPlayer{
		beep:     beeep.Beep,
		freq:     beeep.DefaultFreq,
		duration: beeep.DefaultDuration,
	}
}

// Acquire implements Player.
func (p *BeepPlayer) Acquire(context.Context) (Playback, error) {
	return newLoopPlayback(p.playOnce, beepPause), nil
}

func (p *BeepPlayer) playOnce(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	return p.beep(p.freq, p.duration)
}
