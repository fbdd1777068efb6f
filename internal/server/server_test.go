package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/vocabquiz/internal/audio"
	"codeberg.org/snonux/vocabquiz/internal/image"
	"codeberg.org/snonux/vocabquiz/internal/logger"
	"codeberg.org/snonux/vocabquiz/internal/processor"
	"codeberg.org/snonux/vocabquiz/internal/session"
	"codeberg.org/snonux/vocabquiz/internal/testutil"
	"codeberg.org/snonux/vocabquiz/internal/textgen"
)

type fakeBackend struct {
	text   *testutil.TextProducer
	images image.Producer
	audio  *audio.Cache
	apiKey string

	mu       sync.Mutex
	exported int
}

func (b *fakeBackend) NewSession() *session.Session {
	sess := session.New(b.text, b.images, session.Config{
		TextTimeout:  time.Second,
		ImageTimeout: time.Second,
		Concurrent:   true,
		Logger:       logger.Discard(),
	})
	sess.SetCredential(b.apiKey)
	return sess
}

func (b *fakeBackend) Audio() *audio.Cache { return b.audio }

func (b *fakeBackend) DeckName() string { return "Test Deck" }

func (b *fakeBackend) ExportDeck(_ context.Context, sess *session.Session, path string) (int, error) {
	records := sess.Records()
	if len(records) == 0 {
		return 0, processor.ErrNothingToExport
	}
	b.mu.Lock()
	b.exported++
	b.mu.Unlock()
	return len(records), os.WriteFile(path, []byte("apkg"), 0644)
}

type testClient struct {
	t   *testing.T
	srv *httptest.Server
	c   *http.Client
}

func newTestServer(t *testing.T, backend *fakeBackend) *testClient {
	t.Helper()
	s := New(backend, DefaultConfig(), logger.Discard())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:   t,
		srv: srv,
		c: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func newBackend(t *testing.T) *fakeBackend {
	t.Helper()
	cache, err := audio.NewCache(&testutil.AudioProvider{Data: "mp3"}, t.TempDir())
	require.NoError(t, err)
	return &fakeBackend{
		text:   &testutil.TextProducer{CorrectLabel: "C"},
		images: &testutil.ImageProducer{},
		audio:  cache,
		apiKey: "test-key",
	}
}

func (c *testClient) do(method, path, body string) *http.Response {
	c.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, r)
	require.NoError(c.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.c.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestQuizFlow(t *testing.T) {
	c := newTestServer(t, newBackend(t))

	resp := c.do(http.MethodPost, "/api/words", `{"text":"apple\n\n banana "}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	words := decode[wordsResponse](t, resp)
	assert.Equal(t, 2, words.Added)
	assert.Equal(t, 2, words.State.PoolSize)
	assert.Equal(t, session.PhaseIdle, words.State.Phase)

	resp = c.do(http.MethodPost, "/api/advance", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[outcomeView](t, resp)
	require.NotNil(t, out.State.Question)
	assert.Equal(t, session.PhaseQuiz, out.State.Phase)
	assert.True(t, out.NewRound)
	assert.Empty(t, out.State.Question.MemoryCue, "cue stays hidden until answered")
	assert.Len(t, out.State.Question.Options, 4)
	require.NotNil(t, out.State.Question.Image)
	word := out.State.Question.Word
	assert.Equal(t, "https://images.test/"+word, out.State.Question.Image.URL)

	resp = c.do(http.MethodPost, "/api/answer", `{"label":"c"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ans := decode[answerResponse](t, resp)
	assert.True(t, ans.Verdict.Correct)
	assert.Equal(t, "C", ans.Verdict.Selected)
	assert.Equal(t, session.PhaseResult, ans.State.Phase)
	assert.Equal(t, "cue for "+word, ans.State.Question.MemoryCue)
	assert.Equal(t, 1, ans.State.Score.Correct)

	resp = c.do(http.MethodPost, "/api/next", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = decode[outcomeView](t, resp)
	assert.Equal(t, session.PhaseQuiz, out.State.Phase)
	assert.NotEqual(t, word, out.State.Question.Word, "second word of the round differs")

	resp = c.do(http.MethodGet, "/api/state", "")
	st := decode[stateView](t, resp)
	assert.Equal(t, 0, st.Remaining)
	assert.Equal(t, 1, st.Score.Answered)
}

func TestPreconditionErrors(t *testing.T) {
	backend := newBackend(t)
	backend.apiKey = ""
	c := newTestServer(t, backend)

	resp := c.do(http.MethodPost, "/api/advance", "")
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	assert.Equal(t, "no_credential", decode[errorResponse](t, resp).Code)

	resp = c.do(http.MethodPost, "/api/credential", `{"api_key":"k"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[stateView](t, resp).HasCredential)

	resp = c.do(http.MethodPost, "/api/advance", "")
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	assert.Equal(t, "empty_pool", decode[errorResponse](t, resp).Code)

	resp = c.do(http.MethodPost, "/api/answer", `{"label":"A"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "wrong_phase", decode[errorResponse](t, resp).Code)

	resp = c.do(http.MethodPost, "/api/next", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = c.do(http.MethodPost, "/api/export", "")
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	assert.Equal(t, "nothing_to_export", decode[errorResponse](t, resp).Code)
}

func TestProducerFailure(t *testing.T) {
	backend := newBackend(t)
	backend.text.Err = textgen.ErrInvalidResponse
	c := newTestServer(t, backend)

	c.do(http.MethodPost, "/api/words", `{"words":["apple"]}`)
	resp := c.do(http.MethodPost, "/api/advance", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.Equal(t, "producer_failed", body.Code)
	assert.True(t, body.Retryable)

	st := decode[stateView](t, c.do(http.MethodGet, "/api/state", ""))
	assert.Equal(t, session.PhaseIdle, st.Phase)
}

func TestBadRequestBody(t *testing.T) {
	c := newTestServer(t, newBackend(t))

	for _, path := range []string{"/api/words", "/api/answer", "/api/credential"} {
		resp := c.do(http.MethodPost, path, `{"unexpected":true}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	backend := newBackend(t)
	s := New(backend, DefaultConfig(), logger.Discard())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	post := func(client *http.Client, path, body string) {
		resp, err := client.Post(srv.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
	}
	state := func(client *http.Client) stateView {
		resp, err := client.Get(srv.URL + "/api/state")
		require.NoError(t, err)
		defer resp.Body.Close()
		return decode[stateView](t, resp)
	}

	jar1, _ := cookiejar.New(nil)
	jar2, _ := cookiejar.New(nil)
	alice := &http.Client{Jar: jar1}
	bob := &http.Client{Jar: jar2}

	post(alice, "/api/words", `{"words":["apple","pear"]}`)
	post(bob, "/api/words", `{"words":["cat"]}`)

	assert.Equal(t, 2, state(alice).PoolSize)
	assert.Equal(t, 1, state(bob).PoolSize)
	assert.Equal(t, 2, s.registry.Len())
}

func TestImageEndpoint(t *testing.T) {
	backend := newBackend(t)
	backend.images = &bytesProducer{}
	c := newTestServer(t, backend)

	resp := c.do(http.MethodGet, "/api/image", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	c.do(http.MethodPost, "/api/words", `{"words":["apple"]}`)
	out := decode[outcomeView](t, c.do(http.MethodPost, "/api/advance", ""))
	require.NotNil(t, out.State.Question.Image)
	assert.True(t, strings.HasPrefix(out.State.Question.Image.URL, "/api/image?word=apple&v="))

	resp = c.do(http.MethodGet, "/api/image", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "png:apple", string(data))
}

func TestImageRedirect(t *testing.T) {
	c := newTestServer(t, newBackend(t))
	c.do(http.MethodPost, "/api/words", `{"words":["apple"]}`)
	c.do(http.MethodPost, "/api/advance", "")

	resp := c.do(http.MethodGet, "/api/image?word=apple", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://images.test/apple", resp.Header.Get("Location"))
}

func TestRerender(t *testing.T) {
	backend := newBackend(t)
	c := newTestServer(t, backend)

	resp := c.do(http.MethodPost, "/api/image/rerender", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	c.do(http.MethodPost, "/api/words", `{"words":["apple"]}`)
	c.do(http.MethodPost, "/api/advance", "")

	resp = c.do(http.MethodPost, "/api/image/rerender", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[rerenderResponse](t, resp)
	require.NotNil(t, body.Image)
	assert.Equal(t, 2, backend.images.(*testutil.ImageProducer).CallCount("apple"))
}

func TestRerenderWithoutImages(t *testing.T) {
	backend := newBackend(t)
	backend.images = nil
	c := newTestServer(t, backend)

	c.do(http.MethodPost, "/api/words", `{"words":["apple"]}`)
	c.do(http.MethodPost, "/api/advance", "")

	resp := c.do(http.MethodPost, "/api/image/rerender", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "images_disabled", decode[errorResponse](t, resp).Code)
}

func TestAudio(t *testing.T) {
	c := newTestServer(t, newBackend(t))

	resp := c.do(http.MethodGet, "/api/audio", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// words outside the pool are never sent to the speech provider
	resp = c.do(http.MethodGet, "/api/audio?word=apple", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	c.do(http.MethodPost, "/api/words", `{"words":["apple"]}`)
	resp = c.do(http.MethodGet, "/api/audio?word=apple", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "mp3:apple", string(data))

	resp = c.do(http.MethodGet, "/api/audio?word=anything+else", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAudioUnavailable(t *testing.T) {
	backend := newBackend(t)
	backend.audio = nil
	c := newTestServer(t, backend)
	c.do(http.MethodPost, "/api/words", `{"words":["apple"]}`)

	resp := c.do(http.MethodGet, "/api/audio?word=apple", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	failing, err := audio.NewCache(&testutil.AudioProvider{Err: errors.New("tts down")}, "")
	require.NoError(t, err)
	backend.audio = failing
	resp = c.do(http.MethodGet, "/api/audio?word=apple", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestExport(t *testing.T) {
	backend := newBackend(t)
	c := newTestServer(t, backend)

	c.do(http.MethodPost, "/api/words", `{"words":["apple"]}`)
	c.do(http.MethodPost, "/api/advance", "")

	resp := c.do(http.MethodPost, "/api/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="Test_Deck.apkg"`)
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "apkg", string(data))
}

func TestHealth(t *testing.T) {
	c := newTestServer(t, newBackend(t))
	resp := c.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err       error
		status    int
		code      string
		retryable bool
	}{
		{session.ErrNoCredential, http.StatusPreconditionFailed, "no_credential", false},
		{session.ErrEmptyPool, http.StatusPreconditionFailed, "empty_pool", false},
		{session.ErrWrongPhase, http.StatusConflict, "wrong_phase", false},
		{session.ErrBusy, http.StatusConflict, "busy", true},
		{&session.ProducerError{Word: "x", Err: textgen.ErrNoAPIKey}, http.StatusBadGateway, "producer_failed", false},
		{&session.ProducerError{Word: "x", Err: context.DeadlineExceeded}, http.StatusBadGateway, "producer_failed", true},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout", true},
		{errors.New("boom"), http.StatusInternalServerError, "internal", false},
	}
	for _, tt := range tests {
		status, code, retryable := mapError(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.retryable, retryable, tt.err.Error())
	}
}

// bytesProducer returns in-memory PNG data
type bytesProducer struct{}

func (bytesProducer) Name() string { return "bytes" }

func (bytesProducer) Generate(_ context.Context, req image.Request) (*image.Image, error) {
	return &image.Image{Data: []byte("png:" + req.Word), MIMEType: "image/png", Source: "bytes"}, nil
}
