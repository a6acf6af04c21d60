// Package ui renders driver progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ferrule/internal/driver"
)

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	crates  []crateItem
	index   map[string]int
	width   int
	done    bool
}

type crateItem struct {
	name   string
	status string
	stage  driver.Stage
	ms     float64
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows one line per crate
// and an overall bar. It quits when events is closed.
func NewProgressModel(title string, crates []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]crateItem, 0, len(crates))
	index := make(map[string]int, len(crates))
	for i, name := range crates {
		items = append(items, crateItem{name: name, status: "queued"})
		index[name] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		crates:  items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.crates) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s %s", m.spinner.View(), m.title)
	if m.done {
		header = "done: " + m.title
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	const statusWidth = 10
	nameWidth := max(20, m.width-statusWidth-16)
	for _, c := range m.crates {
		status := styleStatus(c.status).Render(fmt.Sprintf("%*s", statusWidth, c.status))
		b.WriteString("  " + status + " " + truncate(c.name, nameWidth))
		if c.ms > 0 {
			fmt.Fprintf(&b, "  %.1f ms", c.ms)
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	idx, ok := m.index[ev.Crate]
	if !ok {
		return nil
	}
	c := &m.crates[idx]
	if label := statusLabel(ev.Stage, ev.Status); label != "" {
		c.status = label
	}
	if ev.Stage != "" {
		c.stage = ev.Stage
	}
	if ev.Stage == driver.StageLower && ev.Elapsed > 0 {
		c.ms = float64(ev.Elapsed.Microseconds()) / 1000
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.crates) == 0 {
		return 1
	}
	total := 0.0
	for _, c := range m.crates {
		if c.status == "done" || c.status == "error" {
			total++
			continue
		}
		total += progressFromStage(c.stage)
	}
	return total / float64(len(m.crates))
}

func progressFromStage(stage driver.Stage) float64 {
	switch stage {
	case driver.StageLoad:
		return 0.2
	case driver.StageLower:
		return 0.6
	case driver.StageValidate:
		return 0.8
	case driver.StageCache:
		return 0.9
	default:
		return 0.0
	}
}

// statusLabel is the word shown in the status column; a failing stage only
// marks the crate once its final event arrives.
func statusLabel(stage driver.Stage, status driver.Status) string {
	switch status {
	case driver.StatusQueued:
		return "queued"
	case driver.StatusWorking:
		return stageLabel(stage)
	case driver.StatusDone, driver.StatusError:
		if stage == "" {
			return string(status)
		}
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage driver.Stage) string {
	switch stage {
	case driver.StageLoad:
		return "parsing"
	case driver.StageLower:
		return "lowering"
	case driver.StageValidate:
		return "checking"
	case driver.StageCache:
		return "caching"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "parsing", "lowering", "checking", "caching":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
