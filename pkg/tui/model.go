package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/navgraph/pkg/errors"
	"github.com/matzehuels/navgraph/pkg/host"
	"github.com/matzehuels/navgraph/pkg/navigator"
	"github.com/matzehuels/navgraph/pkg/screen"
	"github.com/matzehuels/navgraph/pkg/script"
)

// refreshInterval is how often the view is redrawn while idle.
const refreshInterval = 100 * time.Millisecond

// activityLines is the number of host calls shown.
const activityLines = 8

// DemoSlot is the region demo screens embed children into.
const DemoSlot = 1

type tickMsg time.Time

// scriptDoneMsg reports the end of a script driven by [RunScript].
type scriptDoneMsg struct {
	results []script.Result
	err     error
}

// Model is the bubbletea model of the demo.
type Model struct {
	ctx  context.Context
	nav  *navigator.Navigator
	host *Host
	disp *Dispatcher

	next   int
	status string
	err    error
}

// NewModel creates a model. disp may be nil when nav runs on another
// dispatcher.
func NewModel(ctx context.Context, nav *navigator.Navigator, h *Host, disp *Dispatcher) Model {
	return Model{ctx: ctx, nav: nav, host: h, disp: disp, status: "ready"}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case wakeMsg:
		if m.disp != nil {
			m.disp.run()
		}
		return m, nil
	case tickMsg:
		return m, tick()
	case scriptDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("script finished (%d steps)", len(msg.results))
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "s":
			m = m.push(screen.Stack())
		case "m":
			m = m.push(screen.Modal(true))
		case "e":
			m = m.push(screen.Containment(DemoSlot))
		case "p", "backspace":
			m = m.pop()
		case "r":
			m = m.report(m.nav.Rewind(m.ctx, m.nav.Root()), "rewound to "+string(m.nav.Root()))
		}
	}
	return m, nil
}

// top returns the last screen on the visible path.
func (m Model) top() screen.ID {
	path := m.nav.Path()
	if len(path) == 0 {
		return m.nav.Root()
	}
	return path[len(path)-1]
}

func (m Model) push(t screen.Transition) Model {
	origin := m.top()
	m.next++
	id := screen.ID(fmt.Sprintf("%s-%d", t.Kind, m.next))

	sim := m.host.Simulator()
	h := sim.Track(&host.Screen{Name: string(id), Regions: []int{DemoSlot}})
	err := m.nav.Push(m.ctx, origin, h, id, t)
	if err != nil {
		sim.Untrack(h)
	}
	return m.report(err, fmt.Sprintf("pushed %s from %s (%s)", id, origin, t))
}

func (m Model) pop() Model {
	top := m.top()
	if top == m.nav.Root() {
		m.status = "nothing to pop"
		m.err = nil
		return m
	}
	return m.report(m.nav.Pop(m.ctx, top), "popped "+string(top))
}

func (m Model) report(err error, ok string) Model {
	if err != nil && !errors.IsNoChange(err) {
		m.err = err
		return m
	}
	m.err = nil
	m.status = ok
	if err != nil {
		m.status = "no change"
	}
	return m
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("navgraph demo"))
	b.WriteString("\n\n")

	sim := m.host.Simulator()
	b.WriteString(styleHierarchy.Render(strings.TrimRight(sim.Describe(), "\n")))
	b.WriteString("\n")

	visible := sim.Visible()
	for i, name := range visible {
		if i == len(visible)-1 {
			visible[i] = styleTop.Render(name)
		}
	}
	b.WriteString(styleLabel.Render("visible") + " " + strings.Join(visible, styleDim.Render(" › ")) + "\n")

	stats := m.nav.Stats()
	line := fmt.Sprintf("%d screens · %d/%d jobs done", m.nav.Snapshot().Len(), stats.Completed, stats.Submitted)
	if stats.Failed > 0 {
		line += fmt.Sprintf(" · %d failed", stats.Failed)
	}
	if m.host.Animating() {
		line += " · " + styleWarning.Render("animating")
	}
	b.WriteString(styleLabel.Render("graph") + " " + styleValue.Render(line) + "\n\n")

	for _, a := range m.host.Activity(activityLines) {
		b.WriteString(styleDim.Render("  "+a) + "\n")
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styleError.Render("✗ "+errors.UserMessage(m.err)) + "\n")
	} else {
		b.WriteString(styleSuccess.Render("✓ "+m.status) + "\n")
	}
	b.WriteString(styleDim.Render("s stack  m modal  e embed  p pop  r rewind  q quit"))
	b.WriteString("\n")
	return b.String()
}

// RunScript runs s against nav and reports the outcome to p.
func RunScript(ctx context.Context, p *tea.Program, nav *navigator.Navigator, h *Host, s *script.Script) error {
	results, err := script.Run(ctx, nav, h.Simulator(), s)
	p.Send(scriptDoneMsg{results: results, err: err})
	return err
}
