package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/vocabquiz/internal"
	"codeberg.org/snonux/vocabquiz/internal/audio"
	"codeberg.org/snonux/vocabquiz/internal/session"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStateView(sessionFrom(r).Snapshot()))
}

func (s *Server) handleCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	sess := sessionFrom(r)
	sess.SetCredential(req.APIKey)
	writeJSON(w, http.StatusOK, newStateView(sess.Snapshot()))
}

func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	var req wordsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	sess := sessionFrom(r)
	added := sess.AddWords(req.Text) + sess.AddWordList(req.Words)
	writeJSON(w, http.StatusOK, wordsResponse{Added: added, State: newStateView(sess.Snapshot())})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	out, err := sess.Advance(r.Context())
	s.respondOutcome(w, r, sess, out, err)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	out, err := sess.Next(r.Context())
	s.respondOutcome(w, r, sess, out, err)
}

func (s *Server) respondOutcome(w http.ResponseWriter, r *http.Request, sess *session.Session, out *session.Outcome, err error) {
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}

	view := outcomeView{
		State:       newStateView(sess.Snapshot()),
		NewRound:    out.NewRound,
		TextCached:  out.TextCached,
		ImageCached: out.ImageCached,
	}
	if out.ImageErr != nil {
		view.ImageError = out.ImageErr.Error()
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	sess := sessionFrom(r)
	verdict, err := sess.Submit(req.Label)
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Verdict: verdict, State: newStateView(sess.Snapshot())})
}

func (s *Server) handleRerender(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	img, err := sess.RerenderImage(r.Context())
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}

	st := sess.Snapshot()
	word := ""
	if st.Current != nil {
		word = st.Current.Word()
	}
	writeJSON(w, http.StatusOK, rerenderResponse{Image: newImageView(word, img), State: newStateView(st)})
}

// requestedWord returns the ?word= parameter or the current word
func requestedWord(r *http.Request, sess *session.Session) string {
	if word := strings.TrimSpace(r.URL.Query().Get("word")); word != "" {
		return word
	}
	return sess.Snapshot().Current.Word()
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	word := requestedWord(r, sess)
	if word == "" {
		writeError(w, http.StatusNotFound, "not_found", "no current question")
		return
	}

	img, ok := sess.Image(word)
	if !ok || img == nil {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("no image for %q", word))
		return
	}
	if !img.HasData() {
		http.Redirect(w, r, img.URL, http.StatusFound)
		return
	}

	mime := img.MIMEType
	if mime == "" {
		mime = http.DetectContentType(img.Data)
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(img.Data)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	cache := s.backend.Audio()
	if cache == nil {
		writeError(w, http.StatusServiceUnavailable, "audio_disabled", "pronunciation audio is not configured")
		return
	}

	sess := sessionFrom(r)
	word := requestedWord(r, sess)
	if word == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "no word given and no current question")
		return
	}
	// only the session's own words are synthesized, each costs provider quota
	if !sess.HasWord(word) {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("%q is not in the word pool", word))
		return
	}

	data, err := cache.Get(r.Context(), word)
	if err != nil {
		// audio is cosmetic, the quiz continues without it
		s.log.Warn("audio synthesis failed", "word", word, "provider", cache.Provider().Name(), "error", err)
		writeError(w, http.StatusBadGateway, "audio_failed", "could not synthesize audio")
		return
	}

	w.Header().Set("Content-Type", audio.MIMEType(data))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	_, _ = w.Write(data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	dir, err := os.MkdirTemp("", "vocabquiz_download_*")
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}
	defer os.RemoveAll(dir)

	name := internal.SanitizeFilename(s.backend.DeckName()) + ".apkg"
	path := filepath.Join(dir, name)

	n, err := s.backend.ExportDeck(r.Context(), sessionFrom(r), path)
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}
	if n == 0 {
		respondError(w, r, s.log, errors.New("export produced no cards"))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}
