package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/vocabquiz/internal"
)

// RunFunc runs one command
type RunFunc func(cmd *cobra.Command, args []string) error

// Handlers are the command implementations, wired in by main
type Handlers struct {
	Serve        RunFunc
	Play         RunFunc
	Ping         RunFunc
	ListModels   RunFunc
	BuildLibrary RunFunc
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, h Handlers) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vocabquiz",
		Short: "Vocabulary flashcard quiz with generated meanings and pictures",
		Long: `vocabquiz quizzes you on a list of words. For every word it generates a
multiple-choice question about the meaning, a phonetic spelling, a memory
cue and an illustration.

Examples:
  vocabquiz                          # Start the HTTP quiz server (default)
  vocabquiz play --words words.txt   # Quiz in the terminal
  vocabquiz ping                     # Test the API key and model
  vocabquiz --list-models            # List models available to your keys
  vocabquiz library build --words words.txt`,
		Args:         cobra.NoArgs,
		Version:      internal.Version,
		SilenceUsage: true,
	}
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if flags.ListModels {
			return run(h.ListModels, cmd, args)
		}
		return run(h.Serve, cmd, args)
	}

	setupFlags(rootCmd, flags)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the quiz as a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return run(h.Serve, cmd, args) },
	}
	serveCmd.Flags().StringVar(&flags.Addr, "addr", flags.Addr, "Listen address")
	bindFlag("server.addr", serveCmd, "addr")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in the terminal",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return run(h.Play, cmd, args) },
	}
	playCmd.Flags().StringVar(&flags.AnkiFile, "anki", "", "Write an Anki package of the quizzed words on exit")
	playCmd.Flags().StringVar(&flags.DeckName, "deck-name", flags.DeckName, "Deck name for the Anki package")
	bindFlag("anki.deck_name", playCmd, "deck-name")

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "List content generation models and send one test prompt",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return run(h.Ping, cmd, args) },
	}

	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the static image library",
	}
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the static image library from a word list",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return run(h.BuildLibrary, cmd, args) },
	}
	buildCmd.Flags().StringVarP(&flags.LibraryOut, "out", "o", flags.LibraryOut, "Output JSON file")
	buildCmd.Flags().DurationVar(&flags.LibraryDelay, "delay", flags.LibraryDelay, "Pause between image requests")
	libraryCmd.AddCommand(buildCmd)

	rootCmd.AddCommand(serveCmd, playCmd, pingCmd, libraryCmd)
	return rootCmd
}

func run(fn RunFunc, cmd *cobra.Command, args []string) error {
	if fn == nil {
		return fmt.Errorf("command %q is not available", cmd.Name())
	}
	return fn(cmd, args)
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.vocabquiz.yaml)")
	pf.StringVarP(&flags.WordsFile, "words", "w", "", "Word list file preloaded into the quiz (one word per line)")
	pf.StringVar(&flags.TextProvider, "text-provider", flags.TextProvider, "Quiz text provider: gemini or openai")
	pf.StringVar(&flags.TextModel, "text-model", "", "Text model (default depends on the provider)")
	pf.StringVar(&flags.Language, "language", flags.Language, "Language the meanings are written in")
	pf.StringVar(&flags.ImageProvider, "image-provider", flags.ImageProvider, "Image provider: pollinations, openai, gemini or none")
	pf.StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "Pronunciation provider: gtts, openai or espeak")
	pf.BoolVar(&flags.Serial, "serial", false, "Generate text before the image instead of both at once")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn or error")
	pf.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json")

	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available Gemini and OpenAI models for the configured keys")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	bindFlagSet(cmd.PersistentFlags(), map[string]string{
		"words":          "words",
		"text.provider":  "text-provider",
		"text.model":     "text-model",
		"text.language":  "language",
		"image.provider": "image-provider",
		"audio.provider": "audio-provider",
		"log.level":      "log-level",
		"log.format":     "log-format",
	})
}

// bindFlagSet binds config keys to the named flags of fs
func bindFlagSet(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		viper.BindPFlag(key, fs.Lookup(name))
	}
}

func bindFlag(key string, cmd *cobra.Command, name string) {
	bindFlagSet(cmd.Flags(), map[string]string{key: name})
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	SetDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".vocabquiz" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".vocabquiz")
	}

	viper.SetEnvPrefix("VOCABQUIZ")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return viper.GetString("gemini.api_key")
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("openai.api_key")
}
