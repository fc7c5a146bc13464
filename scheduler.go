package glowrays

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultDebounce is the quiet period before a scheduled update runs.
const DefaultDebounce = 300 * time.Millisecond

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger used for pass diagnostics.
func WithLogger(l zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithDebounce overrides the quiet period of ScheduleUpdate.
func WithDebounce(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.debounce = d
	}
}

// WithClock overrides the time source used for typing detection.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

// Scheduler owns the decoration state of every editor. It coalesces update
// requests, runs detection passes and drives the dynamic glow animation.
//
// Fields marked loop-owned belong to the event-loop goroutine started by
// Activate. Public methods post work to that loop, so they are
// safe to call from any goroutine.
type Scheduler struct {
	detector  Detector
	decorator Decorator
	settings  Settings
	logger    zerolog.Logger
	debounce  time.Duration
	now       func() time.Time

	mu        sync.Mutex
	work      chan func()
	stop      chan struct{}
	done      chan struct{}
	subscribe sync.Once

	// loop-owned
	decorations   map[string]map[ColorTag]Decoration
	active        Editor
	lastEdit      time.Time
	debounceTimer *time.Timer
	debounceGen   uint64
	animation     *AnimationState
	animConfig    DynamicConfig
	animStop      chan struct{}
	animGen       uint64
}

// NewScheduler creates an inactive Scheduler.
func NewScheduler(detector Detector, decorator Decorator, settings Settings, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		detector:    detector,
		decorator:   decorator,
		settings:    settings,
		logger:      zerolog.Nop(),
		debounce:    DefaultDebounce,
		now:         time.Now,
		decorations: make(map[string]map[ColorTag]Decoration),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate starts the event loop, subscribes to settings changes, starts the
// animation if configured and schedules the first update. The loop stops
// when ctx is cancelled or Deactivate is called.
func (s *Scheduler) Activate(ctx context.Context) error {
	s.mu.Lock()
	if s.done != nil {
		select {
		case <-s.done:
		default:
			s.mu.Unlock()
			return ErrAlreadyActive
		}
	}
	s.work = make(chan func())
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(ctx, s.work, s.stop, s.done)
	s.mu.Unlock()

	s.subscribe.Do(func() {
		s.settings.OnChange(s.ConfigChanged)
	})

	s.logger.Info().Msg("glowrays active")
	s.post(func() {
		s.syncAnimation()
		s.scheduleUpdate()
	})
	return nil
}

// Deactivate cancels the debounce and animation timers, disposes every
// tracked decoration and stops the event loop. It blocks until teardown
// completes.
func (s *Scheduler) Deactivate() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	if stop != nil {
		select {
		case <-stop:
		default:
			close(stop)
		}
	}
	s.mu.Unlock()

	if done != nil {
		<-done
	}
	s.logger.Info().Msg("glowrays deactivated")
}

// ScheduleUpdate requests a refresh of the active editor. Bursts of calls
// coalesce into one pass that runs after the quiet period following the
// last call.
func (s *Scheduler) ScheduleUpdate() {
	s.post(s.scheduleUpdate)
}

// SetActiveEditor makes editor the target of updates and animation, and
// refreshes it immediately. A nil editor means no editor is focused.
func (s *Scheduler) SetActiveEditor(editor Editor) {
	s.post(func() {
		s.active = editor
		s.cancelDebounce()
		if editor != nil {
			s.logger.Debug().
				Str("uri", editor.Document().URI()).
				Str("language", editor.Document().LanguageID()).
				Msg("active editor changed")
		}
		s.update()
	})
}

// DocumentChanged records a text edit. Edits to the active editor's
// document schedule an update.
func (s *Scheduler) DocumentChanged(doc Document) {
	s.post(func() {
		s.lastEdit = s.now()
		if s.animation != nil {
			s.animation.Edited(s.lastEdit)
		}
		if s.active != nil && s.active.Document().URI() == doc.URI() {
			s.scheduleUpdate()
		}
	})
}

// ConfigChanged re-reads the settings, starts or stops the animation to
// match them and refreshes the active editor immediately.
func (s *Scheduler) ConfigChanged() {
	s.post(func() {
		s.syncAnimation()
		s.update()
	})
}

// ApplyNow runs one full detection and decoration pass for editor at the
// given intensity and returns once it has completed.
func (s *Scheduler) ApplyNow(editor Editor, intensity float64) error {
	return s.do(func() {
		s.applyNow(editor, intensity)
	})
}

// ClearAll disposes every decoration in every editor.
func (s *Scheduler) ClearAll() error {
	return s.do(s.clearAll)
}

// ClearEditor disposes the decorations of a single editor.
func (s *Scheduler) ClearEditor(editor Editor) error {
	return s.do(func() {
		s.clearEditor(editor.Document().URI())
	})
}

// Decorations returns a copy of the live decorations of the editor showing
// uri, keyed by tag.
func (s *Scheduler) Decorations(uri string) (map[ColorTag]Decoration, error) {
	var out map[ColorTag]Decoration
	err := s.do(func() {
		out = make(map[ColorTag]Decoration, len(s.decorations[uri]))
		for tag, d := range s.decorations[uri] {
			out[tag] = d
		}
	})
	return out, err
}

// LiveDecorations returns the number of decorations tracked across all
// editors.
func (s *Scheduler) LiveDecorations() (int, error) {
	var n int
	err := s.do(func() {
		for _, m := range s.decorations {
			n += len(m)
		}
	})
	return n, err
}

// Animation returns a snapshot of the animation state and whether the
// animation is running.
func (s *Scheduler) Animation() (AnimationState, bool, error) {
	var (
		state   AnimationState
		running bool
	)
	err := s.do(func() {
		if s.animation != nil {
			state, running = *s.animation, true
		}
	})
	return state, running, err
}

func (s *Scheduler) loop(ctx context.Context, work <-chan func(), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case fn := <-work:
			fn()
		case <-stop:
			s.teardown()
			return
		case <-ctx.Done():
			s.teardown()
			return
		}
	}
}

// post queues fn on the event loop. It reports false if the loop is not
// running.
func (s *Scheduler) post(fn func()) bool {
	s.mu.Lock()
	work, done := s.work, s.done
	s.mu.Unlock()
	if work == nil {
		return false
	}

	select {
	case work <- fn:
		return true
	case <-done:
		return false
	}
}

// do runs fn on the event loop and waits for it to finish.
func (s *Scheduler) do(fn func()) error {
	ran := make(chan struct{})
	if !s.post(func() {
		defer close(ran)
		fn()
	}) {
		return ErrNotActive
	}

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	select {
	case <-ran:
		return nil
	case <-done:
		select {
		case <-ran:
			return nil
		default:
			return ErrNotActive
		}
	}
}

func (s *Scheduler) teardown() {
	s.cancelDebounce()
	s.stopAnimation()
	s.clearAll()
	s.active = nil
}

func (s *Scheduler) scheduleUpdate() {
	s.cancelDebounce()
	gen := s.debounceGen
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.post(func() {
			if gen != s.debounceGen {
				return
			}
			s.debounceTimer = nil
			s.update()
		})
	})
}

func (s *Scheduler) cancelDebounce() {
	s.debounceGen++
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
}

// update refreshes the active editor at the current intensity: the animated
// one while dynamic glow runs, the configured one otherwise. A disabled
// effect clears every editor even when none is active.
func (s *Scheduler) update() {
	cfg := ReadEffectConfiguration(s.settings)
	if !cfg.Enabled {
		s.clearAll()
		return
	}
	if s.active == nil {
		s.logger.Debug().Msg("no active editor")
		return
	}

	intensity := cfg.Intensity
	if s.animation != nil {
		intensity = s.animation.Intensity
	}
	s.applyNow(s.active, intensity)
}

func (s *Scheduler) applyNow(editor Editor, intensity float64) {
	cfg := ReadEffectConfiguration(s.settings)
	if !cfg.Enabled {
		s.clearAll()
		return
	}

	doc := editor.Document()
	uri := doc.URI()
	if !cfg.LanguageAllowed(doc.LanguageID()) {
		s.logger.Debug().Str("uri", uri).Str("language", doc.LanguageID()).Msg("language excluded")
		s.clearEditor(uri)
		return
	}

	matches, err := s.detect(doc, cfg.DetectOptions())
	if err != nil {
		// Prior decorations stay in place.
		s.logger.Error().Err(err).Str("uri", uri).Msg("detection failed")
		return
	}

	groups := GroupByTag(doc, matches)
	style := NewGlowStyle(intensity)
	next := make(map[ColorTag]Decoration, len(groups))
	s.batch(func(dec Decorator) {
		for _, g := range groups {
			d := dec.CreateDecoration(style)
			dec.ApplyDecoration(d, editor, g.Ranges)
			next[g.Tag] = d
		}
		for _, d := range s.decorations[uri] {
			dec.Dispose(d)
		}
	})
	if len(next) == 0 {
		delete(s.decorations, uri)
	} else {
		s.decorations[uri] = next
	}

	s.logger.Debug().
		Str("uri", uri).
		Int("matches", len(matches)).
		Int("groups", len(groups)).
		Float64("intensity", intensity).
		Msg("applied decorations")
}

// detect runs the detector and converts a panic into an error so a failing
// pass never takes down the event loop.
func (s *Scheduler) detect(doc Document, opts DetectOptions) (matches []TokenMatch, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("detector panic: %v", r)
		}
	}()
	return s.detector.Detect(doc.Text(), doc.LanguageID(), opts)
}

func (s *Scheduler) clearAll() {
	if len(s.decorations) > 0 {
		s.logger.Debug().Int("editors", len(s.decorations)).Msg("clearing all decorations")
	}
	s.batch(func(dec Decorator) {
		for _, m := range s.decorations {
			for _, d := range m {
				dec.Dispose(d)
			}
		}
	})
	s.decorations = make(map[string]map[ColorTag]Decoration)
}

func (s *Scheduler) clearEditor(uri string) {
	s.batch(func(dec Decorator) {
		for _, d := range s.decorations[uri] {
			dec.Dispose(d)
		}
	})
	delete(s.decorations, uri)
}

// batch runs fn so that its decoration changes reach the host in one step
// when the decorator supports it.
func (s *Scheduler) batch(fn func(Decorator)) {
	if b, ok := s.decorator.(BatchDecorator); ok {
		b.Batch(fn)
		return
	}
	fn(s.decorator)
}

// syncAnimation starts, restarts or stops the animation so that it matches
// the current settings.
func (s *Scheduler) syncAnimation() {
	cfg := ReadEffectConfiguration(s.settings)
	if !cfg.Enabled || !cfg.Dynamic.Enabled {
		s.stopAnimation()
		return
	}
	if s.animation != nil && s.animConfig == cfg.Dynamic && s.animation.PauseWhileTyping == cfg.PauseWhileTyping {
		return
	}
	s.stopAnimation()
	s.startAnimation(cfg)
}

func (s *Scheduler) startAnimation(cfg EffectConfiguration) {
	s.animation = NewAnimationState(cfg.Dynamic, cfg.PauseWhileTyping)
	s.animation.Edited(s.lastEdit)
	s.animConfig = cfg.Dynamic
	s.animGen++
	gen := s.animGen

	interval := AnimationInterval(cfg.Dynamic.Speed)
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})
	s.animStop = stop

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.post(func() {
					if gen == s.animGen {
						s.tick()
					}
				})
			case <-stop:
				return
			}
		}
	}()

	s.logger.Debug().
		Float64("min", cfg.Dynamic.Min).
		Float64("max", cfg.Dynamic.Max).
		Dur("interval", interval).
		Msg("animation started")
}

// stopAnimation cancels the animation timer. The caller's next update runs
// at the static intensity again.
func (s *Scheduler) stopAnimation() {
	if s.animation == nil {
		return
	}
	s.animGen++
	close(s.animStop)
	s.animStop = nil
	s.animation = nil
	s.logger.Debug().Msg("animation stopped")
}

func (s *Scheduler) tick() {
	if s.animation == nil {
		return
	}
	intensity, moved := s.animation.Tick(s.now())
	if !moved {
		return
	}
	if s.active == nil {
		return
	}
	s.applyNow(s.active, intensity)
}
