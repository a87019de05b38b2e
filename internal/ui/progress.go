// Package ui renders live plan progress on a terminal.
package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"abigen/internal/pipeline"
)

// track is one target's row: a cell per stage plus how it ended.
type track struct {
	target  string
	cells   []pipeline.Status
	elapsed time.Duration
	err     error
}

func (t *track) finished() bool {
	if t.err != nil {
		return true
	}
	for _, c := range t.cells {
		if c != pipeline.StatusDone {
			return false
		}
	}
	return true
}

type progressModel struct {
	title   string
	events  <-chan pipeline.Event
	stages  []pipeline.Stage
	tracks  []*track
	byName  map[string]*track
	phase   pipeline.Stage // shared stage before targets fan out
	spinner spinner.Model
	bar     progress.Model
	width   int
	done    bool
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model with one row per target. Each
// row walks through stages in order; the model quits once events is closed.
func NewProgressModel(title string, targets []string, stages []pipeline.Stage, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	m := &progressModel{
		title:   title,
		events:  events,
		stages:  stages,
		byName:  make(map[string]*track, len(targets)),
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		width:   80,
	}
	m.bar.Width = 60
	for _, name := range targets {
		tr := &track{target: name, cells: make([]pipeline.Status, len(stages))}
		for i := range tr.cells {
			tr.cells[i] = pipeline.StatusQueued
		}
		m.tracks = append(m.tracks, tr)
		m.byName[name] = tr
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(pipeline.Event(msg)), m.next())
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
			m.bar.Width = min(msg.Width-4, 60)
		}
		return m, nil
	case progress.FrameMsg:
		bm, cmd := m.bar.Update(msg)
		m.bar = bm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// next waits for one event from the planner.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// apply moves a track forward. Stages run in order, so reaching stage i
// means every earlier cell is done.
func (m *progressModel) apply(ev pipeline.Event) tea.Cmd {
	if ev.Target == "" {
		m.phase = ev.Stage
		return nil
	}
	tr, ok := m.byName[ev.Target]
	if !ok {
		return nil
	}
	at := slices.Index(m.stages, ev.Stage)
	if at < 0 {
		return nil
	}
	for i := range at {
		tr.cells[i] = pipeline.StatusDone
	}
	switch ev.Status {
	case pipeline.StatusDone:
		tr.cells[at] = pipeline.StatusDone
		tr.elapsed = ev.Elapsed
	case pipeline.StatusError:
		tr.cells[at] = pipeline.StatusError
		tr.err = ev.Err
		if tr.err == nil {
			tr.err = fmt.Errorf("%s failed", ev.Stage)
		}
	default:
		tr.cells[at] = ev.Status
	}
	return m.bar.SetPercent(m.fraction())
}

// fraction counts finished cells; a failed track counts as finished.
func (m *progressModel) fraction() float64 {
	total, finished := 0, 0
	for _, tr := range m.tracks {
		total += len(tr.cells)
		if tr.err != nil {
			finished += len(tr.cells)
			continue
		}
		for _, c := range tr.cells {
			if c == pipeline.StatusDone {
				finished++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(finished) / float64(total)
}

func (m *progressModel) View() string {
	if len(m.tracks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.header()))
	b.WriteString("\n\n")

	nameWidth := 0
	for _, tr := range m.tracks {
		nameWidth = max(nameWidth, runewidth.StringWidth(tr.target))
	}
	nameWidth = min(nameWidth, 24)
	for _, tr := range m.tracks {
		b.WriteString(m.row(tr, nameWidth))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (m *progressModel) header() string {
	finished := 0
	for _, tr := range m.tracks {
		if tr.finished() {
			finished++
		}
	}
	if m.done {
		return fmt.Sprintf("done: %s [%d/%d targets]", m.title, finished, len(m.tracks))
	}
	h := m.spinner.View() + " " + m.title
	if m.phase != "" && finished == 0 && !m.fannedOut() {
		h += " (" + phaseLabel(m.phase) + ")"
	}
	return fmt.Sprintf("%s [%d/%d targets]", h, finished, len(m.tracks))
}

// fannedOut reports whether any target has left the queue.
func (m *progressModel) fannedOut() bool {
	for _, tr := range m.tracks {
		for _, c := range tr.cells {
			if c != pipeline.StatusQueued {
				return true
			}
		}
	}
	return false
}

func (m *progressModel) row(tr *track, nameWidth int) string {
	name := truncate(tr.target, nameWidth)
	name += strings.Repeat(" ", max(nameWidth-runewidth.StringWidth(name), 0))

	cells := make([]string, len(tr.cells))
	for i, c := range tr.cells {
		cells[i] = m.cell(c) + " " + string(m.stages[i])
	}
	line := "  " + name + "  " + strings.Join(cells, "  ")

	switch {
	case tr.err != nil:
		room := max(m.width-runewidth.StringWidth(line)-2, 10)
		line += "  " + failStyle.Render(truncate(tr.err.Error(), room))
	case tr.finished() && tr.elapsed > 0:
		line += "  " + idleStyle.Render(tr.elapsed.Round(time.Millisecond).String())
	}
	return line
}

var (
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	idleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m *progressModel) cell(s pipeline.Status) string {
	switch s {
	case pipeline.StatusDone:
		return doneStyle.Render("✓")
	case pipeline.StatusError:
		return failStyle.Render("✗")
	case pipeline.StatusWorking:
		return m.spinner.View()
	default:
		return idleStyle.Render("·")
	}
}

func phaseLabel(s pipeline.Stage) string {
	switch s {
	case pipeline.StageLoad:
		return "loading"
	case pipeline.StageCheck:
		return "checking"
	}
	return string(s)
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
