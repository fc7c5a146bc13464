// Package bubbletea provides a terminal preview host for glowrays using the
// Bubble Tea framework.
package bubbletea

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/glowrays"
	glowlipgloss "github.com/fwojciec/glowrays/lipgloss"
	"github.com/fwojciec/glowrays/memory"
)

// Compile-time interface verification.
var _ glowrays.Viewer = (*Viewer)(nil)

// activatedMsg reports the outcome of starting the scheduler.
type activatedMsg struct {
	err error
}

// redrawMsg signals that the decoration table changed.
type redrawMsg struct{}

// documentChangedMsg carries a document whose text changed on disk.
type documentChangedMsg struct {
	doc glowrays.Document
}

// Model previews open documents with live glow decorations. Each document is
// shown in its own editor; exactly one editor is active at a time.
type Model struct {
	ctx     context.Context
	docs    []glowrays.Document
	editors []glowrays.Editor
	active  int

	scheduler *glowrays.Scheduler
	decorator *memory.Decorator
	settings  glowrays.Settings
	redraw    chan struct{}

	tokenizer glowrays.Tokenizer
	glow      *glowlipgloss.Glow
	palette   glowrays.Palette
	renderer  *lipgloss.Renderer

	viewport  viewport.Model
	help      help.Model
	keymap    KeyMap
	width     int
	height    int
	ready     bool
	status    string
	ranges    int
	animation glowrays.AnimationState
	animating bool
}

// ModelOption configures a Model.
type ModelOption func(*modelConfig)

type modelConfig struct {
	ctx           context.Context
	renderer      *lipgloss.Renderer
	theme         glowrays.Theme
	tokenizer     glowrays.Tokenizer
	schedulerOpts []glowrays.SchedulerOption
	programOpts   []tea.ProgramOption
}

// WithContext sets the context the scheduler runs under.
func WithContext(ctx context.Context) ModelOption {
	return func(cfg *modelConfig) {
		cfg.ctx = ctx
	}
}

// WithRenderer sets a custom lipgloss renderer for the model.
func WithRenderer(r *lipgloss.Renderer) ModelOption {
	return func(cfg *modelConfig) {
		cfg.renderer = r
	}
}

// WithTheme sets the theme for the model.
func WithTheme(t glowrays.Theme) ModelOption {
	return func(cfg *modelConfig) {
		cfg.theme = t
	}
}

// WithTokenizer sets the tokenizer for theme colours. Without one, text is
// drawn in the palette foreground.
func WithTokenizer(t glowrays.Tokenizer) ModelOption {
	return func(cfg *modelConfig) {
		cfg.tokenizer = t
	}
}

// WithSchedulerOptions passes options through to the decoration scheduler.
func WithSchedulerOptions(opts ...glowrays.SchedulerOption) ModelOption {
	return func(cfg *modelConfig) {
		cfg.schedulerOpts = append(cfg.schedulerOpts, opts...)
	}
}

// WithProgramOptions passes options through to the Bubble Tea program
// started by Viewer.View.
func WithProgramOptions(opts ...tea.ProgramOption) ModelOption {
	return func(cfg *modelConfig) {
		cfg.programOpts = append(cfg.programOpts, opts...)
	}
}

// NewModel creates a Model for docs. The first document starts active.
func NewModel(docs []glowrays.Document, detector glowrays.Detector, settings glowrays.Settings, opts ...ModelOption) Model {
	cfg := &modelConfig{ctx: context.Background()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.renderer == nil {
		cfg.renderer = lipgloss.DefaultRenderer()
	}
	if cfg.theme == nil {
		cfg.theme = glowlipgloss.DefaultTheme()
	}

	redraw := make(chan struct{}, 1)
	decorator := memory.NewDecorator(memory.WithNotify(func() {
		select {
		case redraw <- struct{}{}:
		default:
		}
	}))

	editors := make([]glowrays.Editor, len(docs))
	for i, doc := range docs {
		editors[i] = memory.NewEditor(doc)
	}

	h := help.New()
	h.Styles.ShortKey = cfg.renderer.NewStyle().Foreground(lipgloss.Color(cfg.theme.Palette().UIAccent))
	h.Styles.ShortDesc = cfg.renderer.NewStyle().Foreground(lipgloss.Color(cfg.theme.Palette().UIForeground))

	return Model{
		ctx:       cfg.ctx,
		docs:      docs,
		editors:   editors,
		scheduler: glowrays.NewScheduler(detector, decorator, settings, cfg.schedulerOpts...),
		decorator: decorator,
		settings:  settings,
		redraw:    redraw,
		tokenizer: cfg.tokenizer,
		glow:      glowlipgloss.NewGlow(cfg.theme, cfg.renderer),
		palette:   cfg.theme.Palette(),
		renderer:  cfg.renderer,
		help:      h,
		keymap:    DefaultKeyMap(),
	}
}

// Scheduler returns the scheduler driving the model's decorations.
func (m Model) Scheduler() *glowrays.Scheduler {
	return m.scheduler
}

// Close stops the scheduler and disposes every decoration.
func (m Model) Close() {
	m.scheduler.Deactivate()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.activate(), m.waitForRedraw())
}

func (m Model) activate() tea.Cmd {
	ctx, scheduler, editors := m.ctx, m.scheduler, m.editors
	return func() tea.Msg {
		if err := scheduler.Activate(ctx); err != nil {
			return activatedMsg{err: err}
		}
		if len(editors) > 0 {
			scheduler.SetActiveEditor(editors[0])
		}
		return activatedMsg{}
	}
}

func (m Model) waitForRedraw() tea.Cmd {
	ctx, redraw := m.ctx, m.redraw
	return func() tea.Msg {
		select {
		case <-redraw:
			return redrawMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activatedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = "GlowRays is active"
		}
		m.refresh()
		return m, nil

	case redrawMsg:
		m.refresh()
		return m, m.waitForRedraw()

	case documentChangedMsg:
		m.scheduler.DocumentChanged(msg.doc)
		if len(m.docs) > 0 && m.docs[m.active].URI() == msg.doc.URI() {
			m.refresh()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.viewportHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = m.viewportHeight()
		}
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keymap.NextEditor):
		m.switchEditor(1)
	case key.Matches(msg, m.keymap.PrevEditor):
		m.switchEditor(-1)
	case key.Matches(msg, m.keymap.Toggle):
		enabled, err := glowrays.Toggle(m.settings)
		if err != nil {
			m.status = fmt.Sprintf("settings not saved: %v", err)
		} else if enabled {
			m.status = "GlowRays: Enabled"
		} else {
			m.status = "GlowRays: Disabled"
		}
	case key.Matches(msg, m.keymap.IntensityUp):
		m.stepIntensity(1)
	case key.Matches(msg, m.keymap.IntensityDown):
		m.stepIntensity(-1)
	case key.Matches(msg, m.keymap.Dynamic):
		cfg := glowrays.ReadEffectConfiguration(m.settings)
		cfg.Dynamic.Enabled = !cfg.Dynamic.Enabled
		m.updateSetting(glowrays.KeyDynamicConfig, cfg.Dynamic.String())
	case key.Matches(msg, m.keymap.Definitions):
		cfg := glowrays.ReadEffectConfiguration(m.settings)
		m.updateSetting(glowrays.KeyGlowOnDefinitionNames, !cfg.DefinitionsOnly)
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.viewport.Height = m.viewportHeight()
	case key.Matches(msg, m.keymap.GotoTop):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keymap.GotoBottom):
		m.viewport.GotoBottom()
	case key.Matches(msg, m.keymap.HalfPageUp):
		m.viewport.HalfPageUp()
	case key.Matches(msg, m.keymap.HalfPageDown):
		m.viewport.HalfPageDown()
	case key.Matches(msg, m.keymap.Up):
		m.viewport.ScrollUp(1)
	case key.Matches(msg, m.keymap.Down):
		m.viewport.ScrollDown(1)
	default:
		return nil, false
	}
	m.refresh()
	return nil, true
}

func (m *Model) switchEditor(delta int) {
	if len(m.editors) == 0 {
		return
	}
	m.active = (m.active + delta + len(m.editors)) % len(m.editors)
	m.scheduler.SetActiveEditor(m.editors[m.active])
	m.viewport.GotoTop()
}

func (m *Model) stepIntensity(delta float64) {
	cfg := glowrays.ReadEffectConfiguration(m.settings)
	m.updateSetting(glowrays.KeyIntensity, glowrays.StepIntensity(cfg, delta))
}

// updateSetting persists a value. Failures are reported on the status line
// and never interrupt the preview.
func (m *Model) updateSetting(key string, value any) {
	if err := m.settings.Update(key, value); err != nil {
		m.status = fmt.Sprintf("settings not saved: %v", err)
		return
	}
	m.status = fmt.Sprintf("%s = %v", key, value)
}

// refresh re-renders the active document with the current decorations.
func (m *Model) refresh() {
	if state, running, err := m.scheduler.Animation(); err == nil {
		m.animation, m.animating = state, running
	}
	if !m.ready || len(m.docs) == 0 {
		return
	}

	doc := m.docs[m.active]
	decorations := m.decorator.Snapshot(doc.URI())
	m.ranges = rangeCount(decorations)
	m.viewport.SetContent(renderDocument(renderConfig{
		doc:         doc,
		decorations: decorations,
		tokenizer:   m.tokenizer,
		glow:        m.glow,
		palette:     m.palette,
		renderer:    m.renderer,
	}))
}

func (m Model) viewportHeight() int {
	// Status bar plus help.
	chrome := 1 + lipgloss.Height(m.help.View(m.keymap))
	return max(m.height-chrome, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.help.View(m.keymap)
}

func (m Model) renderStatusBar() string {
	style := m.renderer.NewStyle().
		Foreground(lipgloss.Color(m.palette.UIForeground)).
		Background(lipgloss.Color(m.palette.UIBackground))

	if len(m.docs) == 0 {
		return style.Width(m.width).Render("No documents")
	}

	cfg := glowrays.ReadEffectConfiguration(m.settings)
	doc := m.docs[m.active]
	file := fmt.Sprintf("[%d/%d] %s (%s)", m.active+1, len(m.docs), filepath.Base(doc.URI()), doc.LanguageID())

	glow := "glow off"
	if cfg.Enabled {
		glow = fmt.Sprintf("glow %.1f", cfg.Intensity)
		if m.animating {
			glow = fmt.Sprintf("glow %.1f %s (%g-%g)", m.animation.Intensity, arrow(m.animation.Direction),
				m.animation.Min, m.animation.Max)
		}
	}

	mode := "all tokens"
	if cfg.DefinitionsOnly {
		kinds := make([]string, 0, len(cfg.DefinitionKinds))
		for _, k := range cfg.DefinitionKinds {
			kinds = append(kinds, string(k))
		}
		mode = "definitions: " + strings.Join(kinds, ",")
	}

	parts := []string{file, glow, mode, fmt.Sprintf("%d ranges", m.ranges)}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return style.Width(m.width).Render(strings.Join(parts, " │ "))
}

func arrow(d glowrays.Direction) string {
	if d == glowrays.Down {
		return "↓"
	}
	return "↑"
}

// Viewer implements glowrays.Viewer using a Bubble Tea TUI.
type Viewer struct {
	detector glowrays.Detector
	settings glowrays.Settings
	opts     []ModelOption

	mu      sync.Mutex
	program *tea.Program
}

// NewViewer creates a Viewer decorating with detector under settings.
func NewViewer(detector glowrays.Detector, settings glowrays.Settings, opts ...ModelOption) *Viewer {
	return &Viewer{detector: detector, settings: settings, opts: opts}
}

// View displays docs and blocks until the user exits or ctx is done.
func (v *Viewer) View(ctx context.Context, docs []glowrays.Document) error {
	opts := append(slices.Clone(v.opts), WithContext(ctx))
	m := NewModel(docs, v.detector, v.settings, opts...)
	defer m.Close()

	cfg := &modelConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	programOpts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, cfg.programOpts...)

	p := tea.NewProgram(m, programOpts...)
	v.mu.Lock()
	v.program = p
	v.mu.Unlock()
	defer func() {
		v.mu.Lock()
		v.program = nil
		v.mu.Unlock()
	}()

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		// Cancelled from outside; not a failure of the preview.
		return nil
	}
	return err
}

// DocumentChanged forwards a text change to the running preview. It is a
// no-op when no preview is running.
func (v *Viewer) DocumentChanged(doc glowrays.Document) {
	v.mu.Lock()
	p := v.program
	v.mu.Unlock()
	if p != nil {
		p.Send(documentChangedMsg{doc: doc})
	}
}
