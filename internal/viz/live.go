package viz

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/verletsim/internal/sim"
	"github.com/san-kum/verletsim/internal/solver"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	paramWindow     = 9
	maxSubsteps     = 64
)

type TickMsg time.Time

// Model is the interactive view of a running solver. Every tick advances
// the solver by one paced frame.
type Model struct {
	sol    *solver.Solver
	run    sim.Config
	rng    *rand.Rand
	canvas *Canvas
	theme  Theme
	ramp   *HeatRamp

	width, height int
	running       bool
	showHelp      bool

	tick     int
	simTime  float64
	last     sim.Frame
	lastTick time.Time
	elapsed  float64
	sfps     float64

	popHistory  []float64
	tempHistory []float64

	paramKeys []string
	selected  int

	observer sim.Observer
	err      error
}

type Option func(*Model)

// WithObserver forwards every live frame to o, e.g. a storage recorder.
// The first error detaches it.
func WithObserver(o sim.Observer) Option {
	return func(m *Model) { m.observer = o }
}

func WithTheme(name string) Option {
	return func(m *Model) { m.theme = GetTheme(name) }
}

// WithSize sets the canvas size in terminal cells.
func WithSize(w, h int) Option {
	return func(m *Model) {
		if w > 0 && h > 0 {
			m.width, m.height = w, h
		}
	}
}

func NewModel(sol *solver.Solver, run sim.Config, opts ...Option) Model {
	m := Model{
		sol:         sol,
		run:         run,
		rng:         rand.New(rand.NewSource(sol.Config.Seed)),
		theme:       ThemeEmber,
		width:       width,
		height:      height,
		running:     true,
		paramKeys:   sol.Config.ParamNames(),
		popHistory:  make([]float64, 0, historyCapacity),
		tempHistory: make([]float64, 0, historyCapacity),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.run.Substeps < 1 {
		m.run.Substeps = 1
	}
	m.canvas = NewCanvas(m.width, m.height)
	m.ramp = NewHeatRamp(m.theme.Cold, m.theme.Hot)
	return m
}

func (m Model) Solver() *solver.Solver { return m.sol }
func (m Model) Ticks() int             { return m.tick }
func (m Model) SimTime() float64       { return m.simTime }
func (m Model) Running() bool          { return m.running }
func (m Model) Substeps() int          { return m.run.Substeps }
func (m Model) AutoShake() bool        { return m.run.Shake.AutoRandom }
func (m Model) Err() error             { return m.err }

// SelectedParam is the name of the parameter the arrow keys adjust.
func (m Model) SelectedParam() string {
	if len(m.paramKeys) == 0 {
		return ""
	}
	return m.paramKeys[m.selected]
}

func (m Model) Init() tea.Cmd {
	return m.next()
}

// next schedules the following tick at the target SFPS, or as soon as
// possible when pacing is off.
func (m Model) next() tea.Cmd {
	d := m.run.Pacing.Interval()
	if d <= 0 {
		d = time.Millisecond
	}
	return tea.Tick(d, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "?":
			m.showHelp = !m.showHelp
		case "s":
			m.sol.SpawnBatch(m.batch())
		case "x":
			m.sol.RemoveBatch(m.batch())
		case "c":
			m.sol.Clear()
		case "b":
			m.sol.Stabilize()
		case "k":
			m.run.Shake.Apply(m.sol)
		case "a":
			m.run.Shake.AutoRandom = !m.run.Shake.AutoRandom
		case "+", "=":
			m.run.Substeps = min(m.run.Substeps*2, maxSubsteps)
		case "-", "_":
			m.run.Substeps = max(m.run.Substeps/2, 1)
		case "t":
			m.theme = nextTheme(m.theme)
			m.ramp = NewHeatRamp(m.theme.Cold, m.theme.Hot)
		case "tab":
			m.cycleParam(1)
		case "shift+tab":
			m.cycleParam(-1)
		case "up", "l":
			m.adjustParam(1)
		case "down", "h":
			m.adjustParam(-1)
		case "enter":
			m.toggleParam()
		case ".":
			if !m.running {
				m.step(m.run.Dt)
			}
		}
	case tea.WindowSizeMsg:
		w := msg.Width - 54
		h := msg.Height - 4
		if w > 10 && h > 5 {
			m.width, m.height = w, h
			m.canvas = NewCanvas(w, h)
		}
	case TickMsg:
		m.measure(time.Time(msg))
		if m.running {
			m.step(m.frameDelta())
		}
		return m, m.next()
	}
	return m, nil
}

func (m *Model) batch() int {
	if m.run.SpawnCount > 0 {
		return m.run.SpawnCount
	}
	return sim.DefaultSpawnCount
}

// measure tracks the achieved SFPS as a moving average.
func (m *Model) measure(now time.Time) {
	m.elapsed = 0
	if !m.lastTick.IsZero() {
		if d := now.Sub(m.lastTick).Seconds(); d > 0 {
			m.elapsed = d
			inst := 1 / d
			if m.sfps == 0 {
				m.sfps = inst
			} else {
				m.sfps += (inst - m.sfps) * 0.1
			}
		}
	}
	m.lastTick = now
}

// frameDelta is the wall-clock time since the last tick when an SFPS bound
// is enforced, and the fixed run delta otherwise.
func (m *Model) frameDelta() float64 {
	p := m.run.Pacing
	if (p.EnforceMin || p.EnforceMax) && m.elapsed > 0 {
		return m.elapsed
	}
	return m.run.Dt
}

func (m *Model) step(delta float64) {
	f := sim.StepDelta(m.sol, m.run, m.rng, delta)
	m.simTime += f.Dt
	f.Tick = m.tick
	f.Time = m.simTime
	m.tick++
	m.last = f

	m.popHistory = push(m.popHistory, float64(f.Particles))
	m.tempHistory = push(m.tempHistory, f.MeanTemp)

	if m.observer != nil {
		if err := m.observer.OnFrame(f); err != nil {
			m.err = &sim.SimError{Tick: f.Tick, Time: f.Time, Wrapped: err}
			m.observer = nil
		}
	}
}

func push(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) cycleParam(dir int) {
	n := len(m.paramKeys)
	if n == 0 {
		return
	}
	m.selected = ((m.selected+dir)%n + n) % n
}

// adjustParam scales the selected parameter by 5%. Zero moves to +-1 and
// an integer that rounds back to itself moves by one.
func (m *Model) adjustParam(dir int) {
	key := m.SelectedParam()
	if key == "" {
		return
	}
	cur := m.sol.Config.Params()[key]
	next := cur * 1.05
	if dir < 0 {
		next = cur / 1.05
	}
	if cur == 0 {
		next = float64(dir)
	}
	m.setParam(key, next)
	if m.sol.Config.Params()[key] == cur && cur != 0 {
		m.setParam(key, cur+float64(dir))
	}
}

// toggleParam flips a zero parameter to one and anything else to zero.
func (m *Model) toggleParam() {
	key := m.SelectedParam()
	if key == "" {
		return
	}
	v := 0.0
	if m.sol.Config.Params()[key] == 0 {
		v = 1
	}
	m.setParam(key, v)
}

func (m *Model) setParam(key string, v float64) {
	if err := m.sol.Config.SetParam(key, v); err != nil {
		m.err = err
		return
	}
	m.err = nil
}

// draw renders the particles onto the canvas and returns the coloured view.
func (m *Model) draw() string {
	c := &m.sol.Config
	m.canvas.Clear()
	v := Fit(m.canvas, c.Width, c.Height)
	m.canvas.DrawBounds(v, c.Width, c.Height,
		c.Sides.Left.Constrain, c.Sides.Right.Constrain,
		c.Sides.Top.Constrain, c.Sides.Bottom.Constrain)
	ps := m.sol.Particles()
	m.canvas.PlotParticles(v, ps)

	peak := float32(1)
	for i := range ps {
		if t := ps[i].Temperature; t > peak && !math.IsInf(float64(t), 0) {
			peak = t
		}
	}
	return m.ramp.Render(m.canvas, peak)
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.draw())

	var s strings.Builder
	s.WriteString(headerStyle.Render("VERLETSIM") + "\n")
	switch {
	case !m.running:
		s.WriteString(StatusPaused.Render("PAUSED"))
	default:
		s.WriteString(StatusRunning.Render(AnimatedSpinner(m.tick) + " RUNNING"))
	}
	if m.observer != nil {
		s.WriteString("  " + StatusRecording.Render("● REC"))
	}
	s.WriteString("\n\n")

	if len(m.popHistory) > 1 {
		chart := asciigraph.Plot(m.popHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Particles"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("Mean temp") + SparklineChart(m.tempHistory, 30) + "\n\n")

	g := m.sol.Grid()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("SFPS", fmt.Sprintf("%.1f / %.0f", m.sfps, m.run.Pacing.Target))
	row("Step", fmt.Sprintf("%.2fms", m.last.StepMillis))
	row("Time", fmt.Sprintf("%.2fs", m.simTime))
	row("Objects", fmt.Sprintf("%d", m.sol.Len()))
	if c := m.sol.Config; c.EnforceMax && c.MaxParticles > 0 {
		s.WriteString(labelStyle.Render("Capacity") + ProgressBar(float64(m.sol.Len())/float64(c.MaxParticles), 20) + "\n")
	}
	row("Cell size", fmt.Sprintf("%.1f", g.CellSize))
	row("Grid", fmt.Sprintf("%dx%d", g.Cols, g.Rows))
	row("Collisions", fmt.Sprintf("%d", m.last.Collisions))
	row("Out of view", fmt.Sprintf("%d", m.sol.OutOfView()))
	row("Substeps", fmt.Sprintf("%d", m.run.Substeps))
	row("Max temp", fmt.Sprintf("%.2f", m.last.MaxTemp))
	auto := "off"
	if m.run.Shake.AutoRandom {
		auto = "on"
	}
	row("Auto shake", auto)

	s.WriteString("\nPARAMETERS\n")
	s.WriteString(m.paramList())
	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render(Separator(30, m.theme.Muted) + "\nSP:Pause S:Spawn X:Remove C:Clear\nK:Shake A:Auto B:Stabilize Q:Quit\nTab:Param ↑↓:Tune ⏎:Toggle ?:Help"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

// paramList shows a window of parameters around the selection.
func (m Model) paramList() string {
	if len(m.paramKeys) == 0 {
		return labelStyle.Render("  (none)") + "\n"
	}
	params := m.sol.Config.Params()
	lo := max(0, m.selected-paramWindow/2)
	hi := min(len(m.paramKeys), lo+paramWindow)
	lo = max(0, hi-paramWindow)

	var s strings.Builder
	for i := lo; i < hi; i++ {
		k := m.paramKeys[i]
		line := fmt.Sprintf("%-24s %10.3f", k, params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + valueStyle.Render(line) + "\n")
		}
	}
	return s.String()
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  .        - Single step while paused ║
║  S / X    - Spawn / remove a batch   ║
║  C        - Clear all particles      ║
║  B        - Stabilize (zero motion)  ║
║  K        - Shake once               ║
║  A        - Toggle auto-random shake ║
║  + / -    - Double / halve substeps  ║
║  Tab      - Cycle parameters         ║
║  Up/L     - Increase parameter (+5%) ║
║  Down/H   - Decrease parameter (-5%) ║
║  Enter    - Toggle parameter 0/1     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
