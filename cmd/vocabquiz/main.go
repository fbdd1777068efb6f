package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/vocabquiz/internal/batch"
	"codeberg.org/snonux/vocabquiz/internal/cli"
	"codeberg.org/snonux/vocabquiz/internal/image"
	"codeberg.org/snonux/vocabquiz/internal/logger"
	"codeberg.org/snonux/vocabquiz/internal/models"
	"codeberg.org/snonux/vocabquiz/internal/processor"
	"codeberg.org/snonux/vocabquiz/internal/server"
	"codeberg.org/snonux/vocabquiz/internal/textgen"
	"codeberg.org/snonux/vocabquiz/internal/tui"
)

func main() {
	flags := cli.NewFlags()
	app := &app{flags: flags}

	rootCmd := cli.CreateRootCommand(flags, cli.Handlers{
		Serve:        app.serve,
		Play:         app.play,
		Ping:         app.ping,
		ListModels:   app.listModels,
		BuildLibrary: app.buildLibrary,
	})

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type app struct {
	flags *cli.Flags
}

// load reads and validates the settings and sets up logging to w
func (a *app) load(w io.Writer) (*cli.Settings, *slog.Logger, error) {
	settings, err := cli.LoadSettings()
	if err != nil {
		return nil, nil, err
	}
	settings.ApplyFlags(a.flags)
	log := logger.Setup(settings.Log.Level, settings.Log.Format, w)
	return settings, log, nil
}

func (a *app) serve(cmd *cobra.Command, _ []string) error {
	settings, log, err := a.load(nil)
	if err != nil {
		return err
	}

	proc, err := processor.NewProcessor(settings, log)
	if err != nil {
		return err
	}
	if settings.TextAPIKey() == "" {
		log.Warn("no API key configured, sessions must post one to /api/credential",
			"provider", settings.Text.Provider)
	}

	srv := server.New(proc, server.DefaultConfig(), log)
	return srv.ListenAndServe(cmd.Context(), settings.Server.Addr)
}

func (a *app) play(cmd *cobra.Command, _ []string) error {
	// the terminal belongs to the quiz, so logs go to a file
	logFile, err := os.OpenFile(filepath.Join(os.TempDir(), "vocabquiz.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	settings, log, err := a.load(logFile)
	if err != nil {
		return err
	}

	proc, err := processor.NewProcessor(settings, log)
	if err != nil {
		return err
	}
	sess := proc.NewSession()

	deps := tui.Deps{
		Session: sess,
		Audio:   proc.Audio(),
		Player:  tui.NewExecPlayer(),
	}
	if a.flags.AnkiFile != "" {
		deps.ExportPath = a.flags.AnkiFile
		deps.Export = func(ctx context.Context, path string) (int, error) {
			return proc.ExportDeck(ctx, sess, path)
		}
	}

	if err := tui.Run(cmd.Context(), deps); err != nil {
		return err
	}

	if deps.Export == nil {
		return nil
	}
	n, err := deps.Export(context.Background(), deps.ExportPath)
	if errors.Is(err, processor.ErrNothingToExport) {
		fmt.Println("No words were quizzed, skipping the Anki export")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write Anki package: %w", err)
	}
	fmt.Printf("Anki package with %d cards written to %s\n", n, deps.ExportPath)
	return nil
}

func (a *app) lister(settings *cli.Settings) *models.Lister {
	return models.NewLister(models.Config{
		OpenAIKey:     settings.OpenAI.APIKey,
		OpenAIBaseURL: settings.OpenAI.BaseURL,
		GeminiKey:     settings.Gemini.APIKey,
		GeminiBaseURL: settings.Gemini.BaseURL,
	})
}

func (a *app) ping(cmd *cobra.Command, _ []string) error {
	settings, _, err := a.load(nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	lister := a.lister(settings)
	provider := settings.Text.Provider

	var listed []models.Model
	if provider == "openai" {
		listed, err = lister.OpenAI(ctx)
	} else {
		listed, err = lister.Gemini(ctx)
	}
	if err != nil {
		return err
	}

	var text []models.Model
	for _, m := range listed {
		if m.Category == models.CategoryText {
			text = append(text, m)
		}
	}
	models.Print(os.Stdout, text)

	model := settings.Text.Model
	if model == "" {
		model = textgen.DefaultConfig(provider).Model
	}
	fmt.Printf("\nSending a test prompt to %s...\n", model)
	reply, err := lister.Ping(ctx, provider, model)
	if err != nil {
		return err
	}
	fmt.Printf("Reply: %s\n", reply)
	return nil
}

func (a *app) listModels(cmd *cobra.Command, _ []string) error {
	settings, _, err := a.load(nil)
	if err != nil {
		return err
	}
	listed, err := a.lister(settings).All(cmd.Context())
	models.Print(os.Stdout, listed)
	return err
}

func (a *app) buildLibrary(cmd *cobra.Command, _ []string) error {
	settings, _, err := a.load(nil)
	if err != nil {
		return err
	}
	if settings.Words == "" {
		return fmt.Errorf("no word list given, use --words")
	}

	words, err := batch.ReadWordFile(settings.Words)
	if err != nil {
		return err
	}

	done := 0
	lib, err := image.BuildLibrary(cmd.Context(), words, image.BuildOptions{
		Delay: a.flags.LibraryDelay,
		Progress: func(word string) {
			done++
			fmt.Printf("[%d/%d] %s\n", done, len(words), word)
		},
	})
	if err != nil {
		return err
	}

	if err := lib.Save(a.flags.LibraryOut); err != nil {
		return err
	}
	fmt.Printf("Library with %d words written to %s\n", lib.Len(), a.flags.LibraryOut)
	return nil
}
