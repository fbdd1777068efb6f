package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/snonux/vocabquiz/internal/audio"
	"codeberg.org/snonux/vocabquiz/internal/image"
	"codeberg.org/snonux/vocabquiz/internal/session"
)

// Deps are the services the terminal quiz drives
type Deps struct {
	Session *session.Session
	Audio   *audio.Cache // nil disables pronunciation
	Player  Player
	// Export writes the quizzed words to an Anki package, nil disables it
	Export     func(ctx context.Context, path string) (int, error)
	ExportPath string
}

type mode int

const (
	modeQuiz mode = iota
	modeWords
	modeCredential
)

// messages produced by the commands
type (
	outcomeMsg struct {
		out *session.Outcome
		err error
	}
	rerenderMsg struct {
		img *image.Image
		err error
	}
	audioMsg struct {
		err error
	}
	exportMsg struct {
		path  string
		cards int
		err   error
	}
)

// Model is the bubbletea model of the quiz
type Model struct {
	deps    Deps
	ctx     context.Context
	state   session.State
	mode    mode
	input   textinput.Model
	spinner spinner.Model
	busy    string // what is running, empty when idle
	status  string
	err     error
	width   int
}

// New creates the model. Without a credential the user is asked for one
// first, without words for a word list.
func New(ctx context.Context, deps Deps) Model {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		deps:    deps,
		ctx:     ctx,
		state:   deps.Session.Snapshot(),
		input:   ti,
		spinner: sp,
	}
	switch {
	case !m.state.HasCredential:
		m.setMode(modeCredential)
	case m.state.PoolSize == 0:
		m.setMode(modeWords)
	case m.state.Phase == session.PhaseIdle:
		m.busy = preparing
	}
	return m
}

const preparing = "Preparing the next question"

// Init starts the first question when the session is ready for it
func (m Model) Init() tea.Cmd {
	switch {
	case m.mode != modeQuiz:
		return textinput.Blink
	case m.busy != "":
		return tea.Batch(m.advanceCmd(), m.spinner.Tick)
	}
	return nil
}

func (m *Model) setMode(md mode) {
	m.mode = md
	m.input.SetValue("")
	switch md {
	case modeWords:
		m.input.Placeholder = "apple, banana, cherry"
		m.input.Prompt = "Words> "
		m.input.EchoMode = textinput.EchoNormal
		m.input.Focus()
	case modeCredential:
		m.input.Placeholder = "API key"
		m.input.Prompt = "Key> "
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '•'
		m.input.Focus()
	default:
		m.input.Blur()
	}
}

// Update handles a message
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case outcomeMsg:
		return m.handleOutcome(msg), nil

	case rerenderMsg:
		m.busy = ""
		m.refresh()
		if msg.err != nil {
			m.err = fmt.Errorf("new image failed: %w", msg.err)
		} else {
			m.status = "New image rendered"
		}
		return m, nil

	case audioMsg:
		m.busy = ""
		if msg.err != nil {
			m.err = fmt.Errorf("pronunciation failed: %w", msg.err)
		}
		return m, nil

	case exportMsg:
		m.busy = ""
		if msg.err != nil {
			m.err = fmt.Errorf("export failed: %w", msg.err)
		} else {
			m.status = fmt.Sprintf("Exported %d cards to %s", msg.cards, msg.path)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode != modeQuiz {
			return m.updateInput(msg)
		}
		return m.updateQuiz(msg)
	}

	if m.mode != modeQuiz {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleOutcome(msg outcomeMsg) Model {
	m.busy = ""
	m.refresh()

	if msg.err != nil {
		m.err = msg.err
		switch {
		case errors.Is(msg.err, session.ErrNoCredential):
			m.setMode(modeCredential)
		case errors.Is(msg.err, session.ErrEmptyPool):
			m.setMode(modeWords)
		}
		return m
	}

	m.err = nil
	m.status = ""
	if msg.out.NewRound && m.state.Score.Round > 1 {
		m.status = fmt.Sprintf("Round %d: every word was quizzed, starting over", m.state.Score.Round)
	}
	if msg.out.ImageErr != nil {
		m.status = strings.TrimSpace(m.status + " (no image: " + msg.out.ImageErr.Error() + ")")
	}
	return m
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.state.HasCredential && m.state.PoolSize > 0 {
			m.setMode(modeQuiz)
		}
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			return m, nil
		}

		if m.mode == modeCredential {
			m.deps.Session.SetCredential(value)
			m.status = "API key set"
		} else {
			n := m.deps.Session.AddWords(strings.ReplaceAll(value, ",", "\n"))
			m.status = fmt.Sprintf("Added %d words", n)
		}
		m.err = nil
		m.refresh()

		switch {
		case !m.state.HasCredential:
			m.setMode(modeCredential)
			return m, nil
		case m.state.PoolSize == 0:
			m.setMode(modeWords)
			return m, nil
		}
		m.setMode(modeQuiz)
		if m.state.Phase != session.PhaseIdle {
			return m, nil
		}
		cmd := m.start(preparing, m.advanceCmd())
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateQuiz(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := strings.ToLower(msg.String())
	if key == "q" || msg.Type == tea.KeyEsc {
		return m, tea.Quit
	}
	if m.busy != "" {
		return m, nil
	}

	switch key {
	case "a", "b", "c", "d":
		if m.state.Phase != session.PhaseQuiz {
			return m, nil
		}
		if _, err := m.deps.Session.Submit(key); err != nil {
			m.err = err
		}
		m.refresh()
		return m, nil

	case "n", "enter", " ":
		var cmd tea.Cmd
		switch m.state.Phase {
		case session.PhaseResult:
			cmd = m.start(preparing, m.nextCmd())
		case session.PhaseIdle:
			cmd = m.start(preparing, m.advanceCmd())
		}
		return m, cmd

	case "r":
		if m.state.Current == nil {
			return m, nil
		}
		cmd := m.start("Rendering a new image", m.rerenderCmd())
		return m, cmd

	case "p":
		if m.deps.Audio == nil || m.deps.Player == nil || m.state.Current == nil {
			m.status = "Pronunciation is not available"
			return m, nil
		}
		cmd := m.start("Pronouncing", m.audioCmd(m.state.Current.Word()))
		return m, cmd

	case "e":
		if m.deps.Export == nil {
			m.status = "Export is not configured, use --anki"
			return m, nil
		}
		cmd := m.start("Exporting", m.exportCmd())
		return m, cmd

	case "w":
		m.setMode(modeWords)
		return m, textinput.Blink

	case "k":
		m.setMode(modeCredential)
		return m, textinput.Blink
	}
	return m, nil
}

// refresh copies the session state into the model
func (m *Model) refresh() {
	m.state = m.deps.Session.Snapshot()
}

func (m *Model) start(what string, cmd tea.Cmd) tea.Cmd {
	m.busy = what
	m.err = nil
	m.status = ""
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) advanceCmd() tea.Cmd {
	sess, ctx := m.deps.Session, m.ctx
	return func() tea.Msg {
		out, err := sess.Advance(ctx)
		return outcomeMsg{out: out, err: err}
	}
}

func (m Model) nextCmd() tea.Cmd {
	sess, ctx := m.deps.Session, m.ctx
	return func() tea.Msg {
		out, err := sess.Next(ctx)
		return outcomeMsg{out: out, err: err}
	}
}

func (m Model) rerenderCmd() tea.Cmd {
	sess, ctx := m.deps.Session, m.ctx
	return func() tea.Msg {
		img, err := sess.RerenderImage(ctx)
		return rerenderMsg{img: img, err: err}
	}
}

func (m Model) audioCmd(word string) tea.Cmd {
	cache, player, ctx := m.deps.Audio, m.deps.Player, m.ctx
	return func() tea.Msg {
		data, err := cache.Get(ctx, word)
		if err != nil {
			return audioMsg{err: err}
		}
		return audioMsg{err: player.Play(ctx, data, audio.Extension(data))}
	}
}

func (m Model) exportCmd() tea.Cmd {
	export, path, ctx := m.deps.Export, m.deps.ExportPath, m.ctx
	return func() tea.Msg {
		n, err := export(ctx, path)
		return exportMsg{path: path, cards: n, err: err}
	}
}
