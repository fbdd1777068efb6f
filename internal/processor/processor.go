package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/snonux/vocabquiz/internal/anki"
	"codeberg.org/snonux/vocabquiz/internal/archive"
	"codeberg.org/snonux/vocabquiz/internal/audio"
	"codeberg.org/snonux/vocabquiz/internal/batch"
	"codeberg.org/snonux/vocabquiz/internal/cli"
	"codeberg.org/snonux/vocabquiz/internal/image"
	"codeberg.org/snonux/vocabquiz/internal/session"
	"codeberg.org/snonux/vocabquiz/internal/textgen"
)

// ErrNothingToExport is returned when no word has been quizzed yet
var ErrNothingToExport = errors.New("no quizzed words to export")

// Processor owns the components shared by all quiz sessions
type Processor struct {
	settings *cli.Settings
	log      *slog.Logger
	text     textgen.Producer
	images   image.Producer // nil when image.provider is "none"
	library  *image.Library
	audio    *audio.Cache // nil when no audio provider could be set up
	words    []string
	client   *http.Client
}

// NewProcessor builds the producers from settings. A failing audio setup
// only disables pronunciation; a missing image library is treated as empty.
func NewProcessor(settings *cli.Settings, log *slog.Logger) (*Processor, error) {
	if log == nil {
		log = slog.Default()
	}

	textCfg := textgen.DefaultConfig(settings.Text.Provider)
	if settings.Text.Model != "" {
		textCfg.Model = settings.Text.Model
	}
	textCfg.Language = settings.Text.Language
	textCfg.Temperature = settings.Text.Temperature
	textCfg.BaseURL = providerBaseURL(settings, settings.Text.Provider)

	text, err := textgen.New(settings.Text.Provider, textCfg)
	if err != nil {
		return nil, err
	}

	images, err := newImageProducer(settings, log)
	if err != nil {
		return nil, err
	}

	library, err := image.LoadLibrary(settings.Image.Library)
	if err != nil {
		return nil, fmt.Errorf("failed to load image library: %w", err)
	}
	if library.Len() > 0 {
		log.Info("static image library loaded", "path", settings.Image.Library, "words", library.Len())
	}

	var words []string
	if settings.Words != "" {
		if words, err = batch.ReadWordFile(settings.Words); err != nil {
			return nil, err
		}
	}

	return &Processor{
		settings: settings,
		log:      log,
		text:     textgen.WithBreaker(text, log),
		images:   images,
		library:  library,
		audio:    newAudioCache(settings, log),
		words:    words,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func newImageProducer(settings *cli.Settings, log *slog.Logger) (image.Producer, error) {
	cfg := image.DefaultConfig(settings.Image.Provider)
	if settings.Image.Model != "" {
		cfg.Model = settings.Image.Model
	}
	if settings.Image.Size != "" {
		cfg.Size = settings.Image.Size
	}
	cfg.BaseURL = providerBaseURL(settings, settings.Image.Provider)
	cfg.Prefetch = settings.Image.Prefetch

	p, err := image.New(settings.Image.Provider, cfg)
	if err != nil || p == nil {
		return nil, err
	}
	// the image service may use another provider than the text service
	if settings.Image.Provider != settings.Text.Provider {
		p = image.WithAPIKey(p, settings.ImageAPIKey())
	}
	return image.WithBreaker(p, log), nil
}

func providerBaseURL(settings *cli.Settings, provider string) string {
	switch provider {
	case "gemini":
		return settings.Gemini.BaseURL
	case "openai":
		return settings.OpenAI.BaseURL
	}
	return ""
}

func newAudioCache(settings *cli.Settings, log *slog.Logger) *audio.Cache {
	cfg := audio.DefaultProviderConfig()
	cfg.Provider = settings.Audio.Provider
	cfg.Language = settings.Audio.Language
	cfg.CacheDir = settings.Audio.CacheDir
	cfg.OpenAIKey = settings.OpenAI.APIKey
	cfg.OpenAIBaseURL = settings.OpenAI.BaseURL
	if settings.Audio.Model != "" {
		cfg.OpenAIModel = settings.Audio.Model
	}
	if settings.Audio.Voice != "" {
		cfg.OpenAIVoice = settings.Audio.Voice
	}
	if settings.Audio.Speed > 0 {
		cfg.OpenAISpeed = settings.Audio.Speed
	}
	if settings.Audio.Instruction != "" {
		cfg.OpenAIInstruction = settings.Audio.Instruction
	}

	provider, err := audio.NewProvider(cfg, log)
	if err != nil {
		log.Warn("pronunciation audio disabled", "provider", cfg.Provider, "error", err)
		return nil
	}
	cache, err := audio.NewCache(provider, cfg.CacheDir)
	if err != nil {
		log.Warn("audio cache disabled, keeping audio in memory only", "dir", cfg.CacheDir, "error", err)
		cache, _ = audio.NewCache(provider, "")
	}
	return cache
}

// NewSession starts a quiz session with the configured credential and the
// preloaded word list
func (p *Processor) NewSession() *session.Session {
	sess := session.New(p.text, p.images, session.Config{
		TextTimeout:     p.settings.Text.Timeout,
		ImageTimeout:    p.settings.Image.Timeout,
		RerenderTimeout: p.settings.Image.RerenderTimeout,
		Concurrent:      p.settings.Fetch.Concurrent,
		Library:         p.library,
		Logger:          p.log,
	})
	sess.SetCredential(p.settings.TextAPIKey())
	if len(p.words) > 0 {
		sess.AddWordList(p.words)
	}
	return sess
}

// Audio returns the pronunciation cache, nil when audio is disabled
func (p *Processor) Audio() *audio.Cache {
	return p.audio
}

// Images returns the image producer, nil when images are disabled
func (p *Processor) Images() image.Producer {
	return p.images
}

// DeckName returns the configured Anki deck name
func (p *Processor) DeckName() string {
	return p.settings.Anki.DeckName
}

// ExportDeck writes every record quizzed in sess to an Anki package at
// outputPath and returns the number of cards. Missing media is skipped.
func (p *Processor) ExportDeck(ctx context.Context, sess *session.Session, outputPath string) (int, error) {
	records := sess.Records()
	if len(records) == 0 {
		return 0, ErrNothingToExport
	}

	gen := anki.NewAPKGGenerator(p.settings.Anki.DeckName)
	withImages, withAudio := 0, 0

	for _, rec := range records {
		card := anki.CardFromRecord(rec)

		if img, ok := sess.Image(rec.Word); ok {
			data, mime, err := image.Bytes(ctx, p.client, img)
			if err != nil {
				p.log.Warn("skipping image in export", "word", rec.Word, "error", err)
			} else {
				card.Image = &anki.Media{Data: data, Ext: image.Extension(mime)}
				withImages++
			}
		}

		if p.audio != nil {
			data, err := p.audio.Get(ctx, rec.Word)
			if err != nil {
				p.log.Warn("skipping audio in export", "word", rec.Word, "error", err)
			} else {
				card.Audio = &anki.Media{Data: data, Ext: audio.Extension(data)}
				withAudio++
			}
		}

		gen.AddCard(card)
	}

	previous, err := archive.Existing(outputPath)
	if err != nil {
		return 0, err
	}
	if previous != "" {
		p.log.Info("previous anki package archived", "path", previous)
	}

	if err := gen.GenerateAPKG(outputPath); err != nil {
		return 0, fmt.Errorf("failed to generate APKG: %w", err)
	}

	p.log.Info("anki package created",
		"path", outputPath,
		"cards", gen.Len(),
		"with_images", withImages,
		"with_audio", withAudio)
	return gen.Len(), nil
}
