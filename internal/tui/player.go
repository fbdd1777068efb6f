package tui

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Player plays pronunciation audio
type Player interface {
	Play(ctx context.Context, data []byte, ext string) error
}

// ExecPlayer plays audio through the first command line player found
type ExecPlayer struct {
	lookPath func(string) (string, error)
	goos     string
}

// NewExecPlayer creates a player for the current platform
func NewExecPlayer() *ExecPlayer {
	return &ExecPlayer{lookPath: exec.LookPath, goos: runtime.GOOS}
}

// Play writes data to a temporary file and plays it to completion
func (p *ExecPlayer) Play(ctx context.Context, data []byte, ext string) error {
	f, err := os.CreateTemp("", "vocabquiz_*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp audio file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write temp audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	name, args, err := p.command(f.Name())
	if err != nil {
		return err
	}
	if out, err := exec.CommandContext(ctx, name, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, out)
	}
	return nil
}

// command picks the player for the platform. mpg123 is preferred on Linux
// since it handles MP3 best.
func (p *ExecPlayer) command(file string) (string, []string, error) {
	switch p.goos {
	case "darwin":
		return "afplay", []string{file}, nil
	case "windows":
		return "cmd", []string{"/c", "start", "/min", file}, nil
	}

	candidates := []struct {
		name string
		args []string
	}{
		{"mpg123", []string{"-q", file}},
		{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet", file}},
		{"play", []string{"-q", file}},
		{"paplay", []string{file}},
		{"aplay", []string{"-q", file}},
	}
	for _, c := range candidates {
		if _, err := p.lookPath(c.name); err == nil {
			return c.name, c.args, nil
		}
	}
	return "", nil, fmt.Errorf("no audio player found. Install mpg123, ffplay, sox, paplay, or aplay")
}
