package server

import (
	"hash/crc32"
	"net/url"
	"strconv"

	"codeberg.org/snonux/vocabquiz/internal/image"
	"codeberg.org/snonux/vocabquiz/internal/quiz"
	"codeberg.org/snonux/vocabquiz/internal/session"
)

type questionView struct {
	Word      string        `json:"word"`
	Phonetic  string        `json:"phonetic"`
	MemoryCue string        `json:"memory_cue,omitempty"` // revealed with the verdict
	Options   []quiz.Option `json:"options"`
	Image     *imageView    `json:"image,omitempty"`
	AudioURL  string        `json:"audio_url"`
	Epoch     uint64        `json:"epoch"`
}

type imageView struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

type stateView struct {
	Phase         session.Phase `json:"phase"`
	Question      *questionView `json:"question,omitempty"`
	Selection     string        `json:"selection,omitempty"`
	Verdict       *quiz.Verdict `json:"verdict,omitempty"`
	Score         session.Score `json:"score"`
	PoolSize      int           `json:"pool_size"`
	Remaining     int           `json:"remaining"`
	HasCredential bool          `json:"has_credential"`
	Busy          bool          `json:"busy"`
}

type outcomeView struct {
	State       stateView `json:"state"`
	NewRound    bool      `json:"new_round"`
	TextCached  bool      `json:"text_cached"`
	ImageCached bool      `json:"image_cached"`
	ImageError  string    `json:"image_error,omitempty"`
}

// newStateView hides the correct answer until the question is answered
func newStateView(st session.State) stateView {
	v := stateView{
		Phase:         st.Phase,
		Selection:     st.Selection,
		Verdict:       st.Verdict,
		Score:         st.Score,
		PoolSize:      st.PoolSize,
		Remaining:     st.Remaining,
		HasCredential: st.HasCredential,
		Busy:          st.Busy,
	}
	if q := st.Current; q != nil && q.Record != nil {
		qv := &questionView{
			Word:     q.Record.Word,
			Phonetic: q.Record.Phonetic,
			Options:  q.Record.Options,
			Image:    newImageView(q.Record.Word, q.Image),
			AudioURL: "/api/audio?word=" + url.QueryEscape(q.Record.Word),
			Epoch:    q.Epoch,
		}
		if st.Phase == session.PhaseResult {
			qv.MemoryCue = q.Record.MemoryCue
		}
		v.Question = qv
	}
	return v
}

// newImageView points the client at the producer URL, or at /api/image
// when the bytes are held in memory
func newImageView(word string, img *image.Image) *imageView {
	if img == nil {
		return nil
	}
	u := img.URL
	if img.HasData() || u == "" {
		// the checksum changes the URL after a re-render
		u = "/api/image?word=" + url.QueryEscape(word) + "&v=" + strconv.FormatUint(uint64(crc32.ChecksumIEEE(img.Data)), 16)
	}
	return &imageView{URL: u, Source: img.Source}
}

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

type wordsRequest struct {
	Text  string   `json:"text"`
	Words []string `json:"words"`
}

type wordsResponse struct {
	Added int       `json:"added"`
	State stateView `json:"state"`
}

type answerRequest struct {
	Label string `json:"label"`
}

type answerResponse struct {
	Verdict quiz.Verdict `json:"verdict"`
	State   stateView    `json:"state"`
}

type rerenderResponse struct {
	Image *imageView `json:"image"`
	State stateView  `json:"state"`
}
