package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/sweep"
)

const (
	historyCapacity = 60
	frameInterval   = time.Second / 20
)

type (
	temperatureMsg float64
	pointMsg       sweep.Point
	doneMsg        struct{}
)

type cycleMsg struct {
	stats   ising.CycleStats
	lattice string
}

// Model is a bubbletea model that follows a running temperature sweep.
type Model struct {
	title   string
	total   int
	field   bool
	theme   Theme
	styles  styles
	events  <-chan tea.Msg
	cancel  context.CancelFunc
	started time.Time

	points   []sweep.Point
	current  float64
	cycle    ising.CycleStats
	lattice  string
	history  []float64
	done     bool
	quitting bool
}

// NewModel starts s in the background and returns a model that renders its
// progress. The sweep is copied; s itself is left untouched.
func NewModel(ctx context.Context, s *sweep.Sweep, title string) (Model, error) {
	temps, err := s.Range.Temperatures()
	if err != nil {
		return Model{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	events := make(chan tea.Msg, 64)

	send := func(msg tea.Msg) bool {
		select {
		case events <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	}

	run := *s
	run.NewSimulator = func(t float64) *ising.Simulator {
		send(temperatureMsg(t))
		sim := ising.New()
		var last time.Time
		sim.AddObserver(ising.ObserverFunc(func(st ising.CycleStats) {
			if time.Since(last) < frameInterval {
				return
			}
			last = time.Now()
			msg := cycleMsg{stats: st, lattice: SpinCanvas(st.Lattice).String()}
			msg.stats.Lattice = nil
			// drop frames rather than slow the simulation
			select {
			case events <- msg:
			default:
			}
		}))
		return sim
	}

	go func() {
		defer close(events)
		for p := range run.Points(ctx) {
			if !send(pointMsg(p)) {
				return
			}
		}
		send(doneMsg{})
	}()

	th := ThemeCyberpunk
	return Model{
		title:   title,
		total:   len(temps),
		field:   s.Params.TracksMagnetization(),
		theme:   th,
		styles:  newStyles(th),
		events:  events,
		cancel:  cancel,
		started: time.Now(),
		history: make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) waitForEvent() tea.Msg {
	msg, ok := <-m.events
	if !ok {
		return doneMsg{}
	}
	return msg
}

func (m Model) Init() tea.Cmd {
	return m.waitForEvent
}

// Update folds sweep events into the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
		}
		return m, nil
	case temperatureMsg:
		m.current = float64(msg)
		m.history = m.history[:0]
		m.lattice = ""
	case cycleMsg:
		m.cycle = msg.stats
		m.lattice = msg.lattice
		m.history = append(m.history, msg.stats.Cumulative)
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
	case pointMsg:
		m.points = append(m.points, sweep.Point(msg))
	case doneMsg:
		m.done = true
		m.cancel()
		return m, tea.Quit
	}
	return m, m.waitForEvent
}

// Points returns the summaries received so far.
func (m Model) Points() []sweep.Point { return m.points }

// Interrupted reports whether the user quit before the sweep finished.
func (m Model) Interrupted() bool { return m.quitting && !m.done }

func (m Model) View() string {
	st := m.styles
	var s strings.Builder

	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")

	status := st.ok.Render("RUNNING")
	switch {
	case m.done:
		status = st.ok.Render("DONE")
	case m.quitting:
		status = st.warn.Render("STOPPED")
	}
	s.WriteString(fmt.Sprintf("%s  %s %d/%d  %s\n\n", status, ProgressBar(len(m.points), m.total, 30),
		len(m.points), m.total, time.Since(m.started).Round(time.Second)))

	s.WriteString(st.label.Render("Temperature") + st.value.Render(fmt.Sprintf("%.2f", m.current)) + "\n")
	s.WriteString(st.label.Render("Cycle") + st.value.Render(fmt.Sprintf("%d", m.cycle.Cycle+1)) + "\n")
	s.WriteString(st.label.Render("<E>") + st.value.Render(fmt.Sprintf("%.4f", m.cycle.Cumulative)) + "\n")
	if m.field {
		s.WriteString(st.label.Render("M/H") + st.value.Render(fmt.Sprintf("%.3f", m.cycle.Magnetization)) + "\n")
	}
	s.WriteString(st.label.Render("Trend") + st.value.Render(Sparkline(m.history, 30)) + "\n")

	failed := 0
	for _, p := range m.points {
		if p.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		s.WriteString(st.label.Render("Failed") + st.fail.Render(fmt.Sprintf("%d", failed)) + "\n")
	}

	temps, energies, mags := sweep.Curve(m.points)
	if len(energies) > 1 {
		chart := asciigraph.Plot(energies, asciigraph.Height(8), asciigraph.Width(50),
			asciigraph.Caption(fmt.Sprintf("<E> vs T (%.2f..%.2f)", temps[0], temps[len(temps)-1])))
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	if m.field && len(mags) > 1 {
		chart := asciigraph.Plot(mags, asciigraph.Height(6), asciigraph.Width(50), asciigraph.Caption("M/H vs T"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString(st.help.Render("q: stop  t: theme (" + m.theme.Name + ")"))

	stats := st.panel.Render(s.String())
	if m.lattice == "" {
		return stats
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, st.panel.Render(m.lattice), stats)
}
