// Package tui renders the interactive chat shell: a transcript viewport, an
// input line, and slash commands for document loading, sampling parameters,
// and memory management.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdfchat/internal/domain"
	"pdfchat/internal/service"
	"pdfchat/internal/session"
)

// Model is the Bubble Tea model for the chat application.
type Model struct {
	sess     *session.Session
	input    textinput.Model
	viewport viewport.Model
	messages []line
	status   string
	ready    bool
}

type line struct {
	role domain.Role
	text string
	meta bool
}

// New creates the chat model, hydrating the transcript from the session.
func New(sess *session.Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about the document, or /help"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	m := Model{
		sess:     sess,
		input:    ti,
		viewport: vp,
		status:   "Ready. Load a document with /load <path.pdf>.",
	}
	for _, msg := range sess.Transcript() {
		m.messages = append(m.messages, line{role: msg.Role, text: msg.Content})
	}
	if len(m.messages) > 0 {
		m.status = fmt.Sprintf("Restored %d messages from memory.", len(m.messages))
	}
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.refreshTranscript()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			m.sess.Close()
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			if strings.HasPrefix(text, "/") {
				return m.handleCommand(text), nil
			}
			return m.handleQuestion(text), nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		case "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleQuestion runs one synchronous ask cycle. Every failure becomes a
// status message; the session always stays usable.
func (m Model) handleQuestion(question string) Model {
	m.messages = append(m.messages, line{role: domain.RoleUser, text: question})
	m.status = "Thinking..."
	m.refreshTranscript()

	answer, err := m.sess.RAG.Ask(context.Background(), question)
	var notSaved *service.TurnNotSavedError
	switch {
	case errors.Is(err, domain.ErrNotIndexed):
		m.status = "No document loaded yet. Use /load <path.pdf> first."
		// Leave the question visible but nothing was persisted.
	case errors.As(err, &notSaved):
		m.messages = append(m.messages, line{role: domain.RoleAssistant, text: answer})
		m.status = "Warning: answer shown but not saved to memory."
	case err != nil:
		m.status = "Error generating answer: " + err.Error()
	default:
		m.messages = append(m.messages, line{role: domain.RoleAssistant, text: answer})
		m.status = statusWithSampling("Answered.", m.sess.RAG.Sampling())
	}
	m.refreshTranscript()
	return m
}

func (m Model) handleCommand(text string) Model {
	fields := strings.Fields(text)
	cmd := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}
	switch cmd {
	case "/help":
		m.messages = append(m.messages, line{meta: true, text: helpText})
	case "/load":
		if arg == "" {
			m.status = "Usage: /load <path.pdf>"
			break
		}
		n, err := m.sess.RAG.ProcessDocument(context.Background(), arg)
		if err != nil {
			m.status = "Error processing document: " + err.Error()
			break
		}
		m.status = fmt.Sprintf("Document loaded and split into %d fragments.", n)
		if s := m.sess.RAG.Summary(); s != "" {
			m.messages = append(m.messages, line{meta: true, text: "Summary: " + s})
		}
	case "/clear":
		if err := m.sess.RAG.ClearMemory(); err != nil {
			m.status = "Error clearing memory: " + err.Error()
			break
		}
		m.messages = nil
		m.status = "Memory cleared."
	case "/temp":
		m = m.setSampling(arg, 0, 1, func(s *domain.Sampling, v float64) { s.Temperature = v })
	case "/topp":
		m = m.setSampling(arg, 0.1, 1, func(s *domain.Sampling, v float64) { s.TopP = v })
	case "/topk":
		v, err := strconv.Atoi(arg)
		if err != nil || v < 1 || v > 100 {
			m.status = "top-k must be an integer in [1,100]"
			break
		}
		s := m.sess.RAG.Sampling()
		s.TopK = v
		m.sess.RAG.SetSampling(s)
		m.status = statusWithSampling("Sampling updated.", s)
	case "/k":
		v, err := strconv.Atoi(arg)
		if err != nil || v < 1 {
			m.status = "retrieval k must be a positive integer"
			break
		}
		m.sess.RAG.SetRetrievalK(v)
		m.status = fmt.Sprintf("Retrieving top %d fragments per question.", v)
	default:
		m.status = "Unknown command. Try /help."
	}
	m.refreshTranscript()
	return m
}

func (m Model) setSampling(arg string, lo, hi float64, apply func(*domain.Sampling, float64)) Model {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil || v < lo || v > hi {
		m.status = fmt.Sprintf("value must be a number in [%g,%g]", lo, hi)
		return m
	}
	s := m.sess.RAG.Sampling()
	apply(&s, v)
	m.sess.RAG.SetSampling(s)
	m.status = statusWithSampling("Sampling updated.", s)
	return m
}

// View renders the TUI layout and current transcript.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("PDF Chat")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.messages) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for i, l := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch {
		case l.meta:
			b.WriteString(metaStyle.Render(l.text))
		case l.role == domain.RoleUser:
			b.WriteString(userStyle.Render("You: ") + l.text)
		default:
			b.WriteString(assistantStyle.Render("Assistant: ") + l.text)
		}
	}
	return b.String()
}

func statusWithSampling(prefix string, s domain.Sampling) string {
	return fmt.Sprintf("%s  temp=%.2f top-p=%.2f top-k=%d", prefix, s.Temperature, s.TopP, s.TopK)
}

const helpText = `Commands:
  /load <path.pdf>  load and index a document
  /clear            wipe conversation memory
  /temp <0..1>      set temperature
  /topp <0.1..1>    set top-p
  /topk <1..100>    set top-k
  /k <n>            set retrieved fragments per question`

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	metaStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
