package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile       string
	WordsFile     string
	TextProvider  string
	TextModel     string
	Language      string
	ImageProvider string
	AudioProvider string
	Serial        bool
	LogLevel      string
	LogFormat     string
	ListModels    bool

	// serve
	Addr string

	// play
	AnkiFile string
	DeckName string

	// library build
	LibraryOut   string
	LibraryDelay time.Duration
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		TextProvider:  "gemini",
		Language:      "Simplified Chinese",
		ImageProvider: "pollinations",
		AudioProvider: "gtts",
		LogLevel:      "info",
		LogFormat:     "text",
		Addr:          "127.0.0.1:8501",
		DeckName:      "vocabquiz",
		LibraryOut:    "static_images.json",
		LibraryDelay:  200 * time.Millisecond,
	}
}
