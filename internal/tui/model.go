package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ifcrag/internal/domain"
	"ifcrag/internal/service"
)

// ChatPort is the TUI-facing subset of the session.
type ChatPort interface {
	Query(ctx context.Context, text string, threshold float64) service.Answer
	History() []domain.Message
}

const thresholdStep = 0.05

type answerMsg struct {
	query   string
	answer  service.Answer
	history []domain.Message
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx       context.Context
	session   ChatPort
	input     textinput.Model
	viewport  viewport.Model
	threshold float64
	summary   string
	status    string
	pending   bool
	results   []domain.Match
	cursor    int
	ready     bool
	lastQuery string
	// history is the last snapshot taken from the session. The session is
	// only read inside the query command while a query is pending.
	history      []domain.Message
	pendingQuery string
}

// New creates a chat model over session. summary is shown below the header.
func New(ctx context.Context, session ChatPort, summary string, threshold float64) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the building elements..."
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:       ctx,
		session:   session,
		input:     ti,
		viewport:  vp,
		threshold: threshold,
		summary:   summary,
		status:    "Loaded. Ask a question.",
		history:   session.History(),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(q string) tea.Cmd {
	threshold := m.threshold
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		ans := session.Query(ctx, q, threshold)
		history := append([]domain.Message(nil), session.History()...)
		return answerMsg{query: q, answer: ans, history: history}
	}
}

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // header + summary
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.refresh()
		return m, nil
	case answerMsg:
		m.pending = false
		m.pendingQuery = ""
		m.history = msg.history
		m.lastQuery = msg.query
		m.results = msg.answer.Candidates
		m.cursor = 0
		if msg.answer.Err != nil {
			m.status = "Error: " + msg.answer.Err.Error()
		} else {
			m.status = fmt.Sprintf("Found %d relevant elements", len(m.results))
		}
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.pending {
				return m, nil
			}
			m.input.SetValue("")
			m.pending = true
			m.pendingQuery = q
			m.status = "Thinking..."
			m.refresh()
			return m, m.ask(q)
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.refresh()
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.refresh()
				return m, nil
			}
		case "ctrl+k":
			m.threshold = min(1, m.threshold+thresholdStep)
			m.status = fmt.Sprintf("Threshold %.2f", m.threshold)
			return m, nil
		case "ctrl+j":
			m.threshold = max(0, m.threshold-thresholdStep)
			m.status = fmt.Sprintf("Threshold %.2f", m.threshold)
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderConversation())
}

// View renders the header, conversation, input and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("IFC Building Chat")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).
		Render(fmt.Sprintf("%s  threshold=%.2f", m.summary, m.threshold))
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderConversation() string {
	history := m.history
	if q := m.pendingQuery; q != "" {
		history = append(history[:len(history):len(history)], domain.Message{Role: domain.RoleUser, Content: q})
	}
	if len(history) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for i, msg := range history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch {
		case msg.IsError:
			b.WriteString(errorStyle.Render(msg.Content))
		case msg.Role == domain.RoleUser:
			b.WriteString(userStyle.Render("You: ") + msg.Content)
		default:
			b.WriteString(assistantStyle.Render("Assistant: ") + msg.Content)
		}
	}
	if len(m.results) > 0 {
		r := m.results[m.cursor]
		b.WriteString("\n\n")
		b.WriteString(detailStyle.Render(fmt.Sprintf("Element %d/%d  score=%.3f", m.cursor+1, len(m.results), r.SimilarityScore)))
		b.WriteString("\n")
		b.WriteString(highlightBestSegment(r.Text, m.lastQuery))
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	detailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	unicodeWordRe  = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// highlightBestSegment renders a chunk one segment per line and highlights
// the segment sharing most words with the query.
func highlightBestSegment(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	segments := strings.Split(text, " | ")
	qTokens := toTokenSet(query)
	bestIdx, bestScore := -1, 0
	for i, s := range segments {
		if score := tokenOverlapScore(qTokens, s); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range segments {
		if i == bestIdx {
			segments[i] = highlightStyle.Render(segments[i])
		}
	}
	return strings.Join(segments, "\n")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, segment string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(segment), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
