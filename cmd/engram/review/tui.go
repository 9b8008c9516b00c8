package reviewcmder

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/quietmindco/engram/pkg/cliui"
	"github.com/quietmindco/engram/pkg/learning"
	"github.com/quietmindco/engram/pkg/storage"
)

func init() {
	// Force TrueColor profile to fix lipgloss color detection issue
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)
}

type reviewPhase int

const (
	phaseFront reviewPhase = iota
	phaseBack
	phaseConfidence
	phaseSaving
	phaseDone
)

type reviewModel struct {
	svc     *learning.Service
	items   []*storage.LearningItem
	index   int
	phase   reviewPhase
	gotIt   bool
	done    int
	correct int
	skipped int
	lastErr error
	width   int
	height  int
	keys    reviewKeyMap
	help    help.Model
}

var (
	reviewTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	reviewMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	reviewAccentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
	reviewSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	reviewDividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	reviewOKStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	reviewFailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type reviewKeyMap struct {
	Reveal     key.Binding
	Correct    key.Binding
	Wrong      key.Binding
	Confidence key.Binding
	Skip       key.Binding
	Quit       key.Binding
}

func (k reviewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reveal, k.Correct, k.Wrong, k.Confidence, k.Skip, k.Quit}
}

func (k reviewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Reveal, k.Correct, k.Wrong}, {k.Confidence, k.Skip, k.Quit}}
}

func defaultKeyMap() reviewKeyMap {
	return reviewKeyMap{
		Reveal:     key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "reveal")),
		Correct:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "correct")),
		Wrong:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "wrong")),
		Confidence: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "confidence")),
		Skip:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type reviewRecordedMsg struct {
	item       *storage.LearningItem
	wasCorrect bool
	err        error
}

func runReviewTUI(ctx context.Context, svc *learning.Service, items []*storage.LearningItem) error {
	model := newReviewModel(svc, items)

	program := bubbletea.NewProgram(model,
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	final, err := program.Run()
	if err != nil {
		return err
	}

	if m, ok := final.(reviewModel); ok {
		if m.lastErr != nil {
			return m.lastErr
		}
		if m.done > 0 {
			fmt.Printf("\n  %s Reviewed %d %s\n\n",
				cliui.SuccessMark,
				m.done,
				cliui.DimStyle.Render(fmt.Sprintf("(%d correct, %d skipped)", m.correct, m.skipped)),
			)
		}
	}

	return nil
}

func newReviewModel(svc *learning.Service, items []*storage.LearningItem) reviewModel {
	return reviewModel{
		svc:   svc,
		items: items,
		phase: phaseFront,
		keys:  defaultKeyMap(),
		help:  help.New(),
	}
}

func (m reviewModel) Init() bubbletea.Cmd {
	return nil
}

func (m reviewModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case reviewRecordedMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			return m, bubbletea.Quit
		}
		m.done++
		if msg.wasCorrect {
			m.correct++
		}
		return m.advance(), nil
	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m reviewModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, bubbletea.Quit
	}

	switch m.phase {
	case phaseFront:
		switch {
		case key.Matches(msg, m.keys.Reveal):
			m.phase = phaseBack
		case key.Matches(msg, m.keys.Skip):
			m.skipped++
			return m.advance(), nil
		}
	case phaseBack:
		switch {
		case key.Matches(msg, m.keys.Correct):
			m.gotIt = true
			m.phase = phaseConfidence
		case key.Matches(msg, m.keys.Wrong):
			// Confidence does not move the interval for a miss.
			m.gotIt = false
			m.phase = phaseSaving
			return m, recordReviewCmd(m.svc, m.current().ID, false, 1)
		case key.Matches(msg, m.keys.Skip):
			m.skipped++
			return m.advance(), nil
		}
	case phaseConfidence:
		if key.Matches(msg, m.keys.Confidence) {
			confidence, err := strconv.Atoi(msg.String())
			if err != nil {
				return m, nil
			}
			m.phase = phaseSaving
			return m, recordReviewCmd(m.svc, m.current().ID, true, confidence)
		}
	case phaseDone:
		if key.Matches(msg, m.keys.Reveal) {
			return m, bubbletea.Quit
		}
	}

	return m, nil
}

func (m reviewModel) advance() reviewModel {
	m.index++
	if m.index >= len(m.items) {
		m.phase = phaseDone
		m.index = clamp(m.index, len(m.items)-1)
		return m
	}
	m.phase = phaseFront
	return m
}

func (m reviewModel) current() *storage.LearningItem {
	return m.items[clamp(m.index, len(m.items)-1)]
}

func (m reviewModel) View() string {
	var b strings.Builder

	width := m.width
	if width <= 0 {
		width = 80
	}
	contentWidth := clamp(width-6, 74)
	if contentWidth < 20 {
		contentWidth = 20
	}

	b.WriteString("\n  ")
	b.WriteString(reviewTitleStyle.Render("engram review"))
	if m.phase != phaseDone {
		b.WriteString(reviewMutedStyle.Render(fmt.Sprintf("  %d of %d", m.index+1, len(m.items))))
	}
	b.WriteString("\n  ")
	b.WriteString(reviewDividerStyle.Render(strings.Repeat("─", contentWidth)))
	b.WriteString("\n\n")

	if m.phase == phaseDone {
		b.WriteString(m.renderSummary())
	} else {
		b.WriteString(m.renderCard(contentWidth))
	}

	b.WriteString("\n  ")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")

	return b.String()
}

func (m reviewModel) renderCard(width int) string {
	item := m.current()

	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(reviewSectionStyle.Render(fmt.Sprintf("#%d", item.ID)))
	b.WriteString(reviewMutedStyle.Render(fmt.Sprintf("  %s", item.Type)))
	if len(item.Tags) > 0 {
		b.WriteString(reviewMutedStyle.Render("  " + strings.Join(item.Tags, ", ")))
	}
	b.WriteString("\n\n")

	for _, line := range wrapText(item.Prompt, width) {
		b.WriteString("  " + line + "\n")
	}

	switch m.phase {
	case phaseFront:
		b.WriteString("\n  ")
		b.WriteString(reviewMutedStyle.Render("space to reveal"))
		b.WriteString("\n")
	case phaseBack, phaseConfidence, phaseSaving:
		b.WriteString("\n  ")
		b.WriteString(reviewDividerStyle.Render(strings.Repeat("·", width)))
		b.WriteString("\n\n")
		for _, line := range wrapText(item.Answer, width) {
			b.WriteString("  " + reviewAccentStyle.Render(line) + "\n")
		}
		b.WriteString("\n  ")
		switch m.phase {
		case phaseBack:
			b.WriteString(reviewMutedStyle.Render("did you have it? ") +
				reviewOKStyle.Render("y") + reviewMutedStyle.Render(" / ") + reviewFailStyle.Render("n"))
		case phaseConfidence:
			b.WriteString(reviewMutedStyle.Render("confidence? 1 shaky … 5 instant"))
		case phaseSaving:
			b.WriteString(reviewMutedStyle.Render("saving…"))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m reviewModel) renderSummary() string {
	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(reviewSectionStyle.Render("Session complete"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  %s %d reviewed\n", reviewOKStyle.Render("✓"), m.done))
	if m.correct > 0 {
		b.WriteString(fmt.Sprintf("  %s %d correct\n", reviewOKStyle.Render("✓"), m.correct))
	}
	if m.done-m.correct > 0 {
		b.WriteString(fmt.Sprintf("  %s %d wrong (back in 4h)\n", reviewFailStyle.Render("✗"), m.done-m.correct))
	}
	if m.skipped > 0 {
		b.WriteString(fmt.Sprintf("  %s %d skipped\n", reviewMutedStyle.Render("●"), m.skipped))
	}
	b.WriteString("\n  ")
	b.WriteString(reviewMutedStyle.Render("enter to exit"))
	b.WriteString("\n")

	return b.String()
}

func recordReviewCmd(svc *learning.Service, itemID int64, wasCorrect bool, confidence int) bubbletea.Cmd {
	return func() bubbletea.Msg {
		item, err := svc.RecordReview(context.Background(), itemID, wasCorrect, confidence)
		return reviewRecordedMsg{item: item, wasCorrect: wasCorrect, err: err}
	}
}

func clamp(value, upper int) int {
	if value < 0 {
		return 0
	}
	if value > upper {
		return upper
	}
	return value
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	lines := []string{}
	current := ""
	for _, word := range words {
		if current == "" {
			current = word
			continue
		}
		if lipgloss.Width(current)+1+lipgloss.Width(word) <= width {
			current = current + " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
