package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/order-alarm/internal/domain/permission"
)

// TestValidate checks defaults and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty config gets defaults.
	settings := new(Config)

	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultControlAddress, settings.ControlAddress)
	require.Equal(t, DefaultPushAddress, settings.PushAddress)
	require.Equal(t, DefaultAutoStopDelay, settings.AutoStopDelay)
	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, DefaultTokenFilename, settings.TokenFile)
	require.Equal(t, SoundBackendCommand, settings.Sound.Backend)
	require.Equal(t, "Doceria", settings.Strings.AppName)
	require.Equal(t, "doceria-orders-channel", settings.Channel.ID)

	// Bad control socket.
	settings = &Config{ControlAddress: "bad:address"}
	require.Error(t, Validate(settings))

	// Bad push socket.
	settings = &Config{PushAddress: "bad:address"}
	require.Error(t, Validate(settings))

	// Negative delay.
	settings = &Config{AutoStopDelay: -time.Second}
	require.ErrorIs(t, Validate(settings), errNegativeDelay)

	// Unknown backend.
	settings = &Config{Sound: Sound{Backend: "vinyl"}}
	require.ErrorIs(t, Validate(settings), errUnknownSoundBackend)

	// Unknown log level.
	settings = &Config{LogLevel: "chatty"}
	require.ErrorIs(t, Validate(settings), errUnknownLogLevel)

	// Unknown permission.
	settings = &Config{Permissions: Permissions{Granted: []permission.Permission{"CAMERA"}}}
	require.ErrorIs(t, Validate(settings), errUnknownPermission)

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ControlAddress: "127.0.0.1:50051",
		PushAddress:    "127.0.0.1:8081",
		AutoStopDelay:  30 * time.Second,
		Sound:          Sound{Backend: SoundBackendBeep},
		Permissions: Permissions{
			PlatformVersion: 34,
			Granted:         []permission.Permission{permission.WakeLock},
		},
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.ControlAddress, loaded.ControlAddress)
	require.Equal(t, settings.PushAddress, loaded.PushAddress)
	require.Equal(t, settings.AutoStopDelay, loaded.AutoStopDelay)
	require.Equal(t, SoundBackendBeep, loaded.Sound.Backend)
	require.Equal(t, settings.Permissions, loaded.Permissions)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.ErrorIs(t, Save(path, nil), errConfigIsNotSet)
}

// TestLoadOrDefault ensures a missing file yields validated defaults.
func TestLoadOrDefault(t *testing.T) {
	t.Parallel()

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultControlAddress, cfg.ControlAddress)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
