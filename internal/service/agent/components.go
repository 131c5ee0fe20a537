package agent

import (
	"fmt"

	"github.com/oshokin/order-alarm/internal/config"
	"github.com/oshokin/order-alarm/internal/domain/push"
	"github.com/oshokin/order-alarm/internal/foreground"
	"github.com/oshokin/order-alarm/internal/media"
	"github.com/oshokin/order-alarm/internal/notification"
	"github.com/oshokin/order-alarm/internal/repository/token"
	"github.com/oshokin/order-alarm/internal/service/activity"
	"github.com/oshokin/order-alarm/internal/service/alarm"
	"github.com/oshokin/order-alarm/internal/service/receiver"
)

// components are the agent's wired services.
type components struct {
	controller *alarm.Controller
	center     *notification.Center
	tracker    *foreground.Tracker
	receiver   *receiver.Receiver
	activity   *activity.Activity
	fallbacks  push.Fallbacks
}

// newComponents builds the object graph from settings. Hooks set in opts
// replace the platform-backed parts.
func newComponents(settings *config.Config, opts *Options) (*components, error) {
	player := opts.Player
	if player == nil {
		var err error

		if player, err = newPlayer(settings.Sound); err != nil {
			return nil, err
		}
	}

	center := notification.NewCenter(opts.CenterOptions...)

	controller := alarm.New(alarm.Options{
		Player:        player,
		Notifier:      center,
		Clock:         opts.Clock,
		AutoStopDelay: settings.AutoStopDelay,
		Channel: notification.Channel{
			ID:          settings.Channel.ID,
			Name:        settings.Channel.Name,
			Description: settings.Channel.Description,
		},
		Scheme:    settings.App.Scheme,
		StopLabel: settings.Strings.Stop,
	})

	tracker := foreground.NewTracker()

	detector := opts.Detector
	if detector == nil {
		var processes foreground.Detector = foreground.NewProcessDetector(settings.App.Executable)
		if opts.Processes != nil {
			processes = opts.Processes
		}

		detector = foreground.NewChain(tracker, processes)
	}

	fallbacks := push.Fallbacks{
		Title: settings.Strings.AppName,
		Body:  settings.Strings.OrderBody,
	}

	requester := opts.Requester
	if requester == nil {
		requester = activity.NewNoticeRequester(settings.Strings.AppName)
	}

	return &components{
		controller: controller,
		center:     center,
		tracker:    tracker,
		receiver: receiver.New(
			controller,
			detector,
			token.NewFileRepository(settings.TokenFile),
			fallbacks,
		),
		activity: activity.New(activity.Options{
			Stopper:         controller,
			Requester:       requester,
			Lifecycle:       tracker,
			PlatformVersion: settings.Permissions.PlatformVersion,
			Granted:         settings.Permissions.Granted,
		}),
		fallbacks: fallbacks,
	}, nil
}

// newPlayer selects the sound backend.
func newPlayer(sound config.Sound) (media.Player, error) {
	switch sound.Backend {
	case config.SoundBackendBeep:
		return media.NewBeepPlayer(), nil
	case config.SoundBackendCommand, "":
		player, err := media.NewCommandPlayer(sound.Command, sound.Args, sound.File)
		if err != nil {
			return nil, fmt.Errorf("create sound player: %w", err)
		}

		return player, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, sound.Backend)
	}
}
