package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// Settings is the validated runtime configuration
type Settings struct {
	Gemini ProviderSettings `mapstructure:"gemini"`
	OpenAI ProviderSettings `mapstructure:"openai"`
	Text   TextSettings     `mapstructure:"text"`
	Image  ImageSettings    `mapstructure:"image"`
	Fetch  FetchSettings    `mapstructure:"fetch"`
	Audio  AudioSettings    `mapstructure:"audio"`
	Server ServerSettings   `mapstructure:"server"`
	Anki   AnkiSettings     `mapstructure:"anki"`
	Log    LogSettings      `mapstructure:"log"`
	Words  string           `mapstructure:"words"`
}

// ProviderSettings holds the credential and endpoint of an API provider
type ProviderSettings struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// TextSettings configures quiz record generation
type TextSettings struct {
	Provider    string        `mapstructure:"provider" validate:"oneof=gemini openai"`
	Model       string        `mapstructure:"model"`
	Language    string        `mapstructure:"language" validate:"required"`
	Temperature float32       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// ImageSettings configures illustrations
type ImageSettings struct {
	Provider        string        `mapstructure:"provider" validate:"oneof=pollinations openai gemini none"`
	Model           string        `mapstructure:"model"`
	Size            string        `mapstructure:"size" validate:"omitempty,imagesize"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RerenderTimeout time.Duration `mapstructure:"rerender_timeout" validate:"gt=0"`
	Library         string        `mapstructure:"library"`
	Prefetch        bool          `mapstructure:"prefetch"`
}

// FetchSettings configures how a question is fetched
type FetchSettings struct {
	Concurrent bool `mapstructure:"concurrent"`
}

// AudioSettings configures pronunciation audio
type AudioSettings struct {
	Provider    string  `mapstructure:"provider" validate:"oneof=gtts openai espeak"`
	Language    string  `mapstructure:"language" validate:"required"`
	CacheDir    string  `mapstructure:"cache_dir"`
	Model       string  `mapstructure:"model"`
	Voice       string  `mapstructure:"voice"`
	Speed       float64 `mapstructure:"speed" validate:"gte=0.25,lte=4"`
	Instruction string  `mapstructure:"instruction"`
}

// ServerSettings configures the HTTP API
type ServerSettings struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

// AnkiSettings configures deck export
type AnkiSettings struct {
	DeckName string `mapstructure:"deck_name" validate:"required"`
}

// LogSettings configures logging
type LogSettings struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// SetDefaults registers the default value of every setting
func SetDefaults(v *viper.Viper) {
	cacheDir := filepath.Join(os.TempDir(), "vocabquiz", "audio")
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "vocabquiz", "audio")
	}

	defaults := map[string]any{
		"text.provider":          "gemini",
		"text.language":          "Simplified Chinese",
		"text.temperature":       0.7,
		"text.timeout":           10 * time.Second,
		"image.provider":         "pollinations",
		"image.size":             "512x512",
		"image.timeout":          4 * time.Second,
		"image.rerender_timeout": 30 * time.Second,
		"image.library":          "static_images.json",
		"image.prefetch":         false,
		"fetch.concurrent":       true,
		"audio.provider":         "gtts",
		"audio.language":         "en",
		"audio.cache_dir":        cacheDir,
		"audio.model":            "gpt-4o-mini-tts",
		"audio.voice":            "alloy",
		"audio.speed":            1.0,
		"server.addr":            "127.0.0.1:8501",
		"anki.deck_name":         "vocabquiz",
		"log.level":              "info",
		"log.format":             "text",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// LoadSettings reads the settings from the global viper instance, applies
// the API keys from the environment and validates the result
func LoadSettings() (*Settings, error) {
	v := viper.GetViper()
	SetDefaults(v)

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	s.Gemini.APIKey = GetGeminiKey()
	s.OpenAI.APIKey = GetOpenAIKey()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ApplyFlags applies flags that have no direct configuration key
func (s *Settings) ApplyFlags(f *Flags) {
	if f.Serial {
		s.Fetch.Concurrent = false
	}
}

// TextAPIKey returns the key of the configured text provider. It is the
// session credential.
func (s *Settings) TextAPIKey() string {
	if s.Text.Provider == "openai" {
		return s.OpenAI.APIKey
	}
	return s.Gemini.APIKey
}

// ImageAPIKey returns the key of the configured image provider
func (s *Settings) ImageAPIKey() string {
	switch s.Image.Provider {
	case "openai":
		return s.OpenAI.APIKey
	case "gemini":
		return s.Gemini.APIKey
	}
	return ""
}

var settingsValidator = newSettingsValidator()

func newSettingsValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report configuration keys instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		return name
	})
	v.RegisterValidation("imagesize", func(fl validator.FieldLevel) bool {
		w, h, ok := strings.Cut(fl.Field().String(), "x")
		return ok && isDigits(w) && isDigits(h)
	})
	return v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Validate checks the settings for unsupported values
func (s *Settings) Validate() error {
	err := settingsValidator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %q fails %s", settingKey(fe.Namespace()), fmt.Sprint(fe.Value()), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// settingKey strips the struct name from "Settings.text.provider"
func settingKey(ns string) string {
	_, rest, _ := strings.Cut(ns, ".")
	return rest
}
