package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadSettingsDefaults(t *testing.T) {
	resetViper(t)
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	if s.Text.Provider != "gemini" || s.Text.Timeout != 10*time.Second {
		t.Errorf("Unexpected text settings: %+v", s.Text)
	}
	if s.Image.Provider != "pollinations" || s.Image.Timeout != 4*time.Second || s.Image.RerenderTimeout != 30*time.Second {
		t.Errorf("Unexpected image settings: %+v", s.Image)
	}
	if !s.Fetch.Concurrent {
		t.Error("Fetching should be concurrent by default")
	}
	if s.Server.Addr != "127.0.0.1:8501" {
		t.Errorf("Server.Addr = %q", s.Server.Addr)
	}
	if s.TextAPIKey() != "gemini-key" {
		t.Errorf("TextAPIKey() = %q, want gemini-key", s.TextAPIKey())
	}
	if s.ImageAPIKey() != "" {
		t.Errorf("Pollinations needs no key, got %q", s.ImageAPIKey())
	}
}

func TestLoadSettingsOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("OPENAI_API_KEY", "openai-key")
	viper.Set("text.provider", "openai")
	viper.Set("image.provider", "openai")
	viper.Set("text.timeout", "3s")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.Text.Timeout != 3*time.Second {
		t.Errorf("Text.Timeout = %v, want 3s", s.Text.Timeout)
	}
	if s.TextAPIKey() != "openai-key" || s.ImageAPIKey() != "openai-key" {
		t.Errorf("Expected OpenAI key for text and image, got %q and %q", s.TextAPIKey(), s.ImageAPIKey())
	}

	s.ApplyFlags(&Flags{Serial: true})
	if s.Fetch.Concurrent {
		t.Error("--serial should disable concurrent fetching")
	}
}

func TestLoadSettingsInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{"text.provider", "claude"},
		{"image.provider", "unsplash"},
		{"image.size", "big"},
		{"audio.provider", "festival"},
		{"log.level", "verbose"},
		{"log.format", "xml"},
		{"text.timeout", "0s"},
		{"server.addr", "not an address"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			resetViper(t)
			viper.Set(tt.key, tt.value)

			_, err := LoadSettings()
			if err == nil {
				t.Fatalf("Expected error for %s=%v", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Error should name the key %s: %v", tt.key, err)
			}
		})
	}
}
