package receiver

import (
	"context"
	"errors"
	"time"

	domain "github.com/oshokin/order-alarm/internal/domain/alarm"
	"github.com/oshokin/order-alarm/internal/domain/push"
	"github.com/oshokin/order-alarm/internal/foreground"
	"github.com/oshokin/order-alarm/internal/logger"
	"github.com/oshokin/order-alarm/internal/repository/token"
)

// Starter starts the alarm.
type Starter interface {
	Start(ctx context.Context, req *domain.Request) *domain.Snapshot
}

// Outcome tells what the receiver did with a message.
type Outcome string

const (
	// OutcomeAlarm means the alarm was started.
	OutcomeAlarm Outcome = "alarm"
	// OutcomeInApp means the foregrounded application handles the message.
	OutcomeInApp Outcome = "in_app"
)

// Receiver routes push messages to the alarm controller.
type Receiver struct {
	// starter is the alarm controller.
	starter Starter
	// detector tells whether the application is in the foreground.
	detector foreground.Detector
	// tokens stores refreshed push tokens; optional.
	tokens token.Repository
	// fallbacks are the localized title and body.
	fallbacks push.Fallbacks
	// now is the clock used for token timestamps.
	now func() time.Time
}

// New creates a receiver. tokens may be nil, in which case refreshed tokens are only logged.
func New(starter Starter, detector foreground.Detector, tokens token.Repository, fallbacks push.Fallbacks) *Receiver {
	return &Receiver{
		starter:   starter,
		detector:  detector,
		tokens:    tokens,
		fallbacks: fallbacks,
		now:       time.Now,
	}
}

// OnMessageReceived resolves the message and starts the alarm unless the
// application is in the foreground. It never fails.
func (r *Receiver) OnMessageReceived(ctx context.Context, msg *push.Message) Outcome {
	ctx = logger.WithName(ctx, "receiver")
	if msg != nil && msg.ID != "" {
		ctx = logger.WithKV(ctx, "message_id", msg.ID)
	}

	req := push.Resolve(msg, r.fallbacks)

	logger.InfoKV(ctx, "Push message received", "title", req.Title, "body", req.Body)

	if r.isForegrounded(ctx) {
		logger.Info(ctx, "Application in foreground, leaving the message to the in-app layer")

		return OutcomeInApp
	}

	logger.Info(ctx, "Application in background, starting alarm")

	r.starter.Start(ctx, req)

	return OutcomeAlarm
}

// OnNewToken logs a refreshed push token and stores it when a repository is set.
func (r *Receiver) OnNewToken(ctx context.Context, value string) error {
	ctx = logger.WithName(ctx, "receiver")

	if value == "" {
		return token.ErrEmpty
	}

	logger.InfoKV(ctx, "Push token refreshed", "token", value)

	if r.tokens == nil {
		return nil
	}

	err := r.tokens.Save(ctx, &token.Token{
		Value:     value,
		UpdatedAt: r.now(),
	})
	if err != nil {
		logger.ErrorKV(ctx, "Failed to persist push token", "error", err)

		return err
	}

	return nil
}

// LastToken returns the stored push token, or token.ErrNotFound.
func (r *Receiver) LastToken(ctx context.Context) (*token.Token, error) {
	if r.tokens == nil {
		return nil, token.ErrNotFound
	}

	t, err := r.tokens.Load(ctx)
	if err != nil && !errors.Is(err, token.ErrNotFound) {
		logger.ErrorKV(logger.WithName(ctx, "receiver"), "Failed to load push token", "error", err)
	}

	return t, err
}

// isForegrounded shields the receiver from a detector panic; failures mean background.
func (r *Receiver) isForegrounded(ctx context.Context) (foregrounded bool) {
	if r.detector == nil {
		return false
	}

	defer func() {
		if p := recover(); p != nil {
			logger.ErrorKV(ctx, "Foreground detection panicked, assuming background", "panic", p)

			foregrounded = false
		}
	}()

	return r.detector.IsForegrounded(ctx)
}
