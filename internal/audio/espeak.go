package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ESpeakConfig holds configuration for espeak-ng audio generation
type ESpeakConfig struct {
	Voice     string // Voice variant (e.g., "en", "en-us", "en+f3")
	Speed     int    // Speech speed in words per minute (default: 140)
	Pitch     int    // Pitch adjustment, 0 to 99 (default: 50)
	Amplitude int    // Volume/amplitude, 0 to 200 (default: 100)
	WordGap   int    // Gap between words in 10ms units (default: 0)
}

// DefaultESpeakConfig returns a slow, clear English voice
func DefaultESpeakConfig() *ESpeakConfig {
	return &ESpeakConfig{
		Voice:     "en",
		Speed:     140,
		Pitch:     50,
		Amplitude: 100,
	}
}

// ESpeak speaks text with the local espeak-ng engine. It works offline and
// serves as the fallback for the online providers.
type ESpeak struct {
	config *ESpeakConfig
	binary string
}

// NewESpeak creates an espeak-ng provider. It fails when espeak-ng is not
// installed.
func NewESpeak(config *ESpeakConfig) (*ESpeak, error) {
	if err := checkESpeakInstalled(); err != nil {
		return nil, err
	}
	return &ESpeak{config: normalizeESpeakConfig(config), binary: "espeak-ng"}, nil
}

func normalizeESpeakConfig(config *ESpeakConfig) *ESpeakConfig {
	def := DefaultESpeakConfig()
	if config == nil {
		return def
	}
	c := *config
	if c.Voice == "" {
		c.Voice = def.Voice
	}
	if c.Speed == 0 {
		c.Speed = def.Speed
	}
	c.Speed = clamp(c.Speed, 80, 450)
	if c.Pitch == 0 {
		c.Pitch = def.Pitch
	}
	c.Pitch = clamp(c.Pitch, 0, 99)
	if c.Amplitude == 0 {
		c.Amplitude = def.Amplitude
	}
	c.Amplitude = clamp(c.Amplitude, 0, 200)
	if c.WordGap < 0 {
		c.WordGap = 0
	}
	return &c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// args builds the espeak-ng command line writing WAV to stdout
func (e *ESpeak) args(text string) []string {
	args := []string{
		"-v", e.config.Voice,
		"-s", fmt.Sprintf("%d", e.config.Speed),
		"-p", fmt.Sprintf("%d", e.config.Pitch),
		"-a", fmt.Sprintf("%d", e.config.Amplitude),
	}
	if e.config.WordGap > 0 {
		args = append(args, "-g", fmt.Sprintf("%d", e.config.WordGap))
	}
	return append(args, "--stdout", text)
}

// Synthesize returns WAV audio for text
func (e *ESpeak) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, e.args(strings.TrimSpace(text))...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("espeak-ng failed: %w\nOutput: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("no audio data received from espeak-ng")
	}
	return nopCloser(stdout.Bytes()), nil
}

// Name returns the provider name
func (e *ESpeak) Name() string {
	return "espeak-ng"
}

// IsAvailable checks if espeak-ng is installed
func (e *ESpeak) IsAvailable() error {
	return checkESpeakInstalled()
}

// checkESpeakInstalled verifies that espeak-ng is available on the system
func checkESpeakInstalled() error {
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}

// ListVoices returns the English voice variants worth offering
func ListVoices() []string {
	return []string{
		"en",      // Default English voice
		"en-us",   // American English
		"en-gb",   // British English
		"en+m3",   // English male voice 3
		"en+f3",   // English female voice 3
	}
}
