package media

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// commandPause separates two plays of the sound file.
const commandPause = 200 * time.Millisecond

// ErrUnsupportedOS indicates no default audio command exists for the current OS.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// CommandPlayer plays a sound file by running an external player in a loop.
type CommandPlayer struct {
	// name is the player executable.
	name string
	// args are the full argument list, sound file included.
	args []string
}

// NewCommandPlayer creates a player for the given file.
// An empty command picks the built-in player of the current OS:
//   - Linux:   `paplay <file>`
//   - macOS:   `afplay <file>`
//   - Windows: PowerShell's Media.SoundPlayer
func NewCommandPlayer(command string, args []string, file string) (*CommandPlayer, error) {
	if command != "" {
		full := append(append([]string(nil), args...), file)

		return &CommandPlayer{name: command, args: full}, nil
	}

	name, defaultArgs, err := defaultCommand(file)
	if err != nil {
		return nil, err
	}

	return &CommandPlayer{name: name, args: defaultArgs}, nil
}

// Acquire implements Player.
func (p *CommandPlayer) Acquire(context.Context) (Playback, error) {
	if _, err := exec.LookPath(p.name); err != nil {
		return nil, fmt.Errorf("find audio player %q: %w", p.name, err)
	}

	return newLoopPlayback(p.playOnce, commandPause), nil
}

// playOnce runs the player command to completion.
func (p *CommandPlayer) playOnce(ctx context.Context) error {
	//nolint:gosec // The command comes from the agent configuration.
	return exec.CommandContext(ctx, p.name, p.args...).Run()
}

func defaultCommand(file string) (string, []string, error) {
	osName := strings.ToLower(runtime.GOOS)

	switch {
	case strings.Contains(osName, "linux"):
		return "paplay", []string{file}, nil
	case strings.Contains(osName, "darwin"):
		return "afplay", []string{file}, nil
	case strings.Contains(osName, "windows"):
		script := fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", strings.ReplaceAll(file, "'", "''"))

		return "powershell.exe", []string{"-NoProfile", "-Command", script}, nil
	default:
		return "", nil, fmt.Errorf("no audio player for %s: %w", runtime.GOOS, ErrUnsupportedOS)
	}
}
