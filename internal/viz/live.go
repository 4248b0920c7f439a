package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const (
	graphWidth      = 60
	graphHeight     = 10
	historyCapacity = 600
)

type frameMsg time.Time

// Model is the live bubbletea view of the running node.
type Model struct {
	monitor *Monitor
	fps     int
	paused  bool
	last    frame
}

func NewModel(monitor *Monitor, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{monitor: monitor, fps: fps}
}

func (m Model) frameTick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.frameTick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}
	case frameMsg:
		if !m.paused {
			m.last = m.monitor.snapshot()
		}
		return m, m.frameTick()
	}
	return m, nil
}

func (m Model) View() string {
	f := m.last

	var b strings.Builder
	b.WriteString(headerStyle.Render("attractor live force monitor"))
	b.WriteString("\n")

	stats := []string{
		row("position", f.state.Position[:]),
		row("velocity", f.state.Velocity[:]),
		row("force", f.force[:]),
		fmt.Sprintf("%s %s", labelStyle.Render("|force|"),
			valueStyle.Render(fmt.Sprintf("%10.3f N", f.force.Norm()))),
		fmt.Sprintf("%s %s", labelStyle.Render("ticks"),
			valueStyle.Render(fmt.Sprintf("%d (%d published)", f.ticks, f.published))),
	}
	if f.ticks > 0 && f.published == 0 {
		stats = append(stats, alertStyle.Render("publication disabled"))
	}
	b.WriteString(panelStyle.Render(strings.Join(stats, "\n")))
	b.WriteString("\n")

	if len(f.history) > 1 {
		graph := asciigraph.Plot(f.history,
			asciigraph.Width(graphWidth),
			asciigraph.Height(graphHeight),
			asciigraph.Caption("|force| (N)"))
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	} else {
		b.WriteString(mutedStyle.Render("waiting for samples..."))
		b.WriteString("\n")
	}

	status := "running"
	if m.paused {
		status = "paused"
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("[%s] space pause · q quit", status)))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func row(label string, v []float64) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(label),
		valueStyle.Render(fmt.Sprintf("%10.3f %10.3f %10.3f", v[0], v[1], v[2])))
}
