package processor

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/vocabquiz/internal/archive"
	"codeberg.org/snonux/vocabquiz/internal/audio"
	"codeberg.org/snonux/vocabquiz/internal/cli"
	"codeberg.org/snonux/vocabquiz/internal/image"
	"codeberg.org/snonux/vocabquiz/internal/logger"
	"codeberg.org/snonux/vocabquiz/internal/testutil"
)

func testSettings(t *testing.T) *cli.Settings {
	t.Helper()
	dir := t.TempDir()
	return &cli.Settings{
		Gemini: cli.ProviderSettings{APIKey: "gemini-key"},
		Text: cli.TextSettings{
			Provider: "gemini",
			Language: "Simplified Chinese",
			Timeout:  time.Second,
		},
		Image: cli.ImageSettings{
			Provider:        "pollinations",
			Size:            "512x512",
			Timeout:         time.Second,
			RerenderTimeout: time.Second,
			Library:         filepath.Join(dir, "missing.json"),
		},
		Fetch: cli.FetchSettings{Concurrent: true},
		Audio: cli.AudioSettings{Provider: "gtts", Language: "en", CacheDir: filepath.Join(dir, "audio"), Speed: 1},
		Anki:  cli.AnkiSettings{DeckName: "Test Deck"},
	}
}

func TestNewProcessor(t *testing.T) {
	settings := testSettings(t)
	settings.Words = testutil.CreateWordFile(t, t.TempDir(), "apple", "# comment", "banana")

	p, err := NewProcessor(settings, logger.Discard())
	require.NoError(t, err)

	assert.NotNil(t, p.Images(), "pollinations producer")
	assert.NotNil(t, p.Audio(), "gtts needs no key, audio should be available")
	assert.Equal(t, "Test Deck", p.DeckName())

	sess := p.NewSession()
	assert.True(t, sess.HasCredential())
	assert.Equal(t, []string{"apple", "banana"}, sess.Words())
}

func TestNewProcessorWithoutImages(t *testing.T) {
	settings := testSettings(t)
	settings.Image.Provider = "none"

	p, err := NewProcessor(settings, logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, p.Images())
}

func TestNewProcessorErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*cli.Settings)
	}{
		{"unknown text provider", func(s *cli.Settings) { s.Text.Provider = "bogus" }},
		{"unknown image provider", func(s *cli.Settings) { s.Image.Provider = "bogus" }},
		{"missing word file", func(s *cli.Settings) { s.Words = filepath.Join(t.TempDir(), "nope.txt") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings(t)
			tt.modify(settings)
			_, err := NewProcessor(settings, logger.Discard())
			assert.Error(t, err)
		})
	}
}

func TestNewProcessorAudioDisabled(t *testing.T) {
	settings := testSettings(t)
	settings.Audio.Provider = "openai" // no OpenAI key configured

	p, err := NewProcessor(settings, logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, p.Audio())
}

func fakeProcessor(t *testing.T, images image.Producer) *Processor {
	t.Helper()
	cache, err := audio.NewCache(&testutil.AudioProvider{}, t.TempDir())
	require.NoError(t, err)

	return &Processor{
		settings: testSettings(t),
		log:      logger.Discard(),
		text:     &testutil.TextProducer{},
		images:   images,
		library:  image.NewLibrary(nil),
		audio:    cache,
		client:   http.DefaultClient,
	}
}

func TestExportDeck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	t.Cleanup(srv.Close)

	p := fakeProcessor(t, &testutil.ImageProducer{BaseURL: srv.URL + "/"})
	sess := p.NewSession()
	sess.AddWords("apple")

	_, err := sess.Advance(context.Background())
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "deck.apkg")
	n, err := p.ExportDeck(context.Background(), sess, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()

	names := make(map[string]bool)
	for _, f := range r.File {
		names[f.Name] = true
	}
	assert.True(t, names["collection.anki2"])
	assert.True(t, names["0"], "image media")
	assert.True(t, names["1"], "audio media")
}

func TestExportDeckSkipsBrokenImages(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	p := fakeProcessor(t, &testutil.ImageProducer{BaseURL: srv.URL + "/"})
	sess := p.NewSession()
	sess.AddWords("apple")
	_, err := sess.Advance(context.Background())
	require.NoError(t, err)

	n, err := p.ExportDeck(context.Background(), sess, filepath.Join(t.TempDir(), "deck.apkg"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExportDeckEmpty(t *testing.T) {
	p := fakeProcessor(t, nil)
	_, err := p.ExportDeck(context.Background(), p.NewSession(), filepath.Join(t.TempDir(), "deck.apkg"))
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestExportDeckArchivesPrevious(t *testing.T) {
	p := fakeProcessor(t, nil)
	sess := p.NewSession()
	sess.AddWords("apple")
	_, err := sess.Advance(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	out := filepath.Join(dir, "deck.apkg")
	require.NoError(t, os.WriteFile(out, []byte("previous export"), 0644))

	_, err = p.ExportDeck(context.Background(), sess, out)
	require.NoError(t, err)

	archived, err := filepath.Glob(filepath.Join(dir, archive.Dir, "deck-*.apkg"))
	require.NoError(t, err)
	require.Len(t, archived, 1)
	testutil.AssertFileContains(t, archived[0], "previous export")
	testutil.AssertFileExists(t, out)
}
