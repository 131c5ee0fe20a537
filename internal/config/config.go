package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/order-alarm/internal/domain/permission"
	"github.com/oshokin/order-alarm/internal/logger"
)

// Config holds the settings shared by the order-alarm binaries.
type Config struct {
	// ControlAddress is the gRPC address of the agent control service.
	ControlAddress string `yaml:"control_addr"`
	// PushAddress is the HTTP address where push messages are delivered.
	PushAddress string `yaml:"push_addr"`
	// TokenFile is the path to the JSON file storing the last push token.
	TokenFile string `yaml:"token_file"`
	// AutoStopDelay silences a ringing alarm that nobody dismissed.
	AutoStopDelay time.Duration `yaml:"auto_stop_delay"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// App identifies the host application.
	App App `yaml:"app"`
	// Strings holds the localized fallback texts.
	Strings Strings `yaml:"strings"`
	// Channel describes the alarm notification channel.
	Channel Channel `yaml:"channel"`
	// Sound selects how the alarm sound is played.
	Sound Sound `yaml:"sound"`
	// Permissions describes the platform the entry activity runs on.
	Permissions Permissions `yaml:"permissions"`
}

// App identifies the host application.
type App struct {
	// Executable is the process name used to tell whether the app is running.
	Executable string `yaml:"executable"`
	// Scheme is the deep link scheme used by notification actions.
	Scheme string `yaml:"scheme"`
}

// Strings holds the localized fallback texts.
type Strings struct {
	// AppName is the fallback notification title.
	AppName string `yaml:"app_name"`
	// OrderBody is the fallback notification text.
	OrderBody string `yaml:"notification_order_body"`
	// Stop is the label of the stop action.
	Stop string `yaml:"stop"`
}

// Channel describes the alarm notification channel.
type Channel struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Sound selects how the alarm sound is played.
type Sound struct {
	// Backend is SoundBackendCommand or SoundBackendBeep.
	Backend string `yaml:"backend"`
	// File is the audio file played by the command backend.
	File string `yaml:"file"`
	// Command overrides the platform player executable.
	Command string `yaml:"command"`
	// Args are passed to Command before File.
	Args []string `yaml:"args"`
}

// Permissions describes the platform the entry activity runs on.
type Permissions struct {
	// PlatformVersion decides whether notification posting must be requested.
	PlatformVersion int `yaml:"platform_version"`
	// Granted lists permissions already held; they are not requested again.
	Granted []permission.Permission `yaml:"granted"`
}

const (
	// DefaultConfigFilename is the default filename for agent settings.
	DefaultConfigFilename = "order-alarm-settings.yaml"

	// DefaultTokenFilename is the default filename for the push token JSON.
	DefaultTokenFilename = "order-alarm-token.json"

	// DefaultControlAddress is where the agent listens for control RPCs.
	DefaultControlAddress = "127.0.0.1:50061"

	// DefaultPushAddress is where the agent listens for push messages.
	DefaultPushAddress = "127.0.0.1:8061"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultAutoStopDelay is how long an alarm rings before it stops by itself.
	DefaultAutoStopDelay = 120 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// SoundBackendCommand plays the sound file through an external player.
	SoundBackendCommand = "command"
	// SoundBackendBeep plays a system beep.
	SoundBackendBeep = "beep"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownSoundBackend is returned for an unsupported sound backend.
	errUnknownSoundBackend = errors.New("unknown sound backend")
	// errUnknownLogLevel is returned for an unparsable log level.
	errUnknownLogLevel = errors.New("unknown log level")
	// errUnknownPermission is returned for a granted permission nobody requests.
	errUnknownPermission = errors.New("unknown permission")
	// errNegativeDelay is returned for a negative auto-stop delay.
	errNegativeDelay = errors.New("auto-stop delay must not be negative")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault reads configuration like Load but falls back to defaults
// when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = new(Config)
		if err = Validate(cfg); err != nil {
			return nil, err
		}

		return cfg, nil
	}

	return cfg, err
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for formatting and fills in defaults.
//
//nolint:cyclop // Flat list of defaults is easier to follow than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ControlAddress == "" {
		settings.ControlAddress = DefaultControlAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ControlAddress); err != nil {
		return fmt.Errorf("invalid control address: %w", err)
	}

	if settings.PushAddress == "" {
		settings.PushAddress = DefaultPushAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.PushAddress); err != nil {
		return fmt.Errorf("invalid push address: %w", err)
	}

	if settings.AutoStopDelay < 0 {
		return errNegativeDelay
	}

	if settings.AutoStopDelay == 0 {
		settings.AutoStopDelay = DefaultAutoStopDelay
	}

	// Set default timeout if not specified
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.TokenFile == "" {
		settings.TokenFile = DefaultTokenFilename
	}

	if settings.LogLevel != "" {
		if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
			return fmt.Errorf("%w: %q", errUnknownLogLevel, settings.LogLevel)
		}
	}

	applyAppDefaults(settings)

	switch settings.Sound.Backend {
	case "":
		settings.Sound.Backend = SoundBackendCommand
	case SoundBackendCommand, SoundBackendBeep:
	default:
		return fmt.Errorf("%w: %q", errUnknownSoundBackend, settings.Sound.Backend)
	}

	known := permission.Required(permission.NotificationsMinPlatformVersion)
	for _, p := range settings.Permissions.Granted {
		if !slices.Contains(known, p) {
			return fmt.Errorf("%w: %q", errUnknownPermission, p)
		}
	}

	return nil
}

// applyAppDefaults fills the identity, strings and channel sections.
func applyAppDefaults(settings *Config) {
	setDefault(&settings.App.Executable, "doceria")
	setDefault(&settings.App.Scheme, "doceria")
	setDefault(&settings.Strings.AppName, "Doceria")
	setDefault(&settings.Strings.OrderBody, "Você recebeu um novo pedido.")
	setDefault(&settings.Strings.Stop, "Parar")
	setDefault(&settings.Channel.ID, "doceria-orders-channel")
	setDefault(&settings.Channel.Name, "Pedidos da Doceria")
	setDefault(&settings.Channel.Description, "Alertas de pedidos com alarme sonoro.")
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
