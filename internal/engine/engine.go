package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/novella/internal/clock"
	"github.com/roach88/novella/internal/markup"
	"github.com/roach88/novella/internal/present"
	"github.com/roach88/novella/internal/save"
	"github.com/roach88/novella/internal/story"
	"github.com/roach88/novella/internal/typewriter"
	"github.com/roach88/novella/internal/vars"
)

// SessionGenerator generates the session token attached to log lines.
// UUIDv7Generator is the default; tests use testutil.FixedSessionGenerator.
type SessionGenerator interface {
	Generate() string
}

const (
	// DefaultMaxSteps bounds one synchronous dispatch chain.
	DefaultMaxSteps = 10000

	// DefaultAutoInterval is the auto-mode period.
	DefaultAutoInterval = 2 * time.Second

	// DefaultChoiceSpeaker is the history speaker for selected options.
	DefaultChoiceSpeaker = "Choice"
)

// Engine plays a Story.
//
// The engine owns the cursor, the variable store, the playback modes and
// the dialogue history. Presentation, audio and persistence are
// collaborators supplied through options.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - every other method: only from the Run goroutine (for example inside an
//     InputFunc), or from a single goroutine when Run is not used
//
// Timers follow the same rule. Without WithScheduler, timer callbacks are
// delivered through the Run loop, so Run must be running for typing and auto
// mode to make progress.
type Engine struct {
	story     *story.Story
	styles    markup.Styles
	vars      *vars.Store
	tw        *typewriter.Typewriter
	presenter present.Presenter
	audio     present.Audio
	slot      *save.Slot
	sched     clock.Scheduler
	clock     *clock.Clock
	logger    *slog.Logger
	session   string
	queue     *inputQueue
	quota     *QuotaEnforcer

	sessionGen    SessionGenerator
	maxSteps      int
	autoInterval  time.Duration
	choiceSpeaker string

	// Cursor
	sceneID string
	index   int

	phase           Phase
	dialogueVisible bool
	auto            bool
	autoTimer       clock.Timer
	autoGen         uint64
	skip            bool
	offered         []present.ChoiceView
	history         []HistoryEntry
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithPresenter sets the presentation surface. Default: present.Nop.
func WithPresenter(p present.Presenter) EngineOption {
	return func(e *Engine) {
		e.presenter = p
	}
}

// WithAudio sets the sound-effect player. Default: present.Nop.
func WithAudio(a present.Audio) EngineOption {
	return func(e *Engine) {
		e.audio = a
	}
}

// WithSlot sets the save slot. Default: an in-memory slot.
func WithSlot(s *save.Slot) EngineOption {
	return func(e *Engine) {
		e.slot = s
	}
}

// WithScheduler sets the timer scheduler. Default: timers delivered
// through the Run loop.
func WithScheduler(s clock.Scheduler) EngineOption {
	return func(e *Engine) {
		e.sched = s
	}
}

// WithPresets sets the style-preset table. Default: story.DefaultPresets().
func WithPresets(s markup.Styles) EngineOption {
	return func(e *Engine) {
		e.styles = s
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMaxSteps sets the maximum steps in one dispatch chain.
//
// Default: 10000 steps (DefaultMaxSteps)
// Use WithMaxSteps(10) for testing quota enforcement.
func WithMaxSteps(maxSteps int) EngineOption {
	return func(e *Engine) {
		e.maxSteps = maxSteps
	}
}

// WithSessionGenerator sets the session token source.
// Default: UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) EngineOption {
	return func(e *Engine) {
		e.sessionGen = g
	}
}

// WithAutoInterval sets the auto-mode period. Default: 2s.
func WithAutoInterval(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.autoInterval = d
	}
}

// WithChoiceSpeaker sets the history speaker recorded for selected options.
func WithChoiceSpeaker(name string) EngineOption {
	return func(e *Engine) {
		e.choiceSpeaker = name
	}
}

// WithVariables seeds the variable store. Empty names and nil values are
// dropped.
func WithVariables(m vars.Map) EngineOption {
	return func(e *Engine) {
		e.vars.Replace(m)
	}
}

// New creates an Engine positioned at the story's entry scene.
// Nothing is presented until Start.
func New(st *story.Story, opts ...EngineOption) *Engine {
	e := &Engine{
		story:         st,
		styles:        story.DefaultPresets(),
		vars:          vars.NewStore(),
		presenter:     present.Nop{},
		audio:         present.Nop{},
		clock:         clock.NewClock(),
		logger:        slog.Default(),
		queue:         newInputQueue(),
		sessionGen:    UUIDv7Generator{},
		maxSteps:      DefaultMaxSteps,
		autoInterval:  DefaultAutoInterval,
		choiceSpeaker: DefaultChoiceSpeaker,
		sceneID:       st.Entry(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.sched == nil {
		e.sched = loopScheduler{q: e.queue}
	}
	if e.slot == nil {
		e.slot = save.NewSlot(save.NewMemoryKV(), save.WithLogger(e.logger))
	}
	e.session = e.sessionGen.Generate()
	e.logger = e.logger.With("session", e.session)
	e.quota = NewQuotaEnforcer(e.maxSteps)
	e.tw = typewriter.New(e.presenter, e.sched, time.Duration(st.BaseSpeed())*time.Millisecond)

	return e
}

// Session returns the engine's session token.
func (e *Engine) Session() string {
	return e.session
}

// Story returns the story being played.
func (e *Engine) Story() *story.Story {
	return e.story
}

// Enqueue submits an input for the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(in Input) bool {
	return e.queue.Enqueue(in)
}

// Run starts the single-writer input loop.
// Blocks until context is cancelled or Stop() is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// Input failures are logged (and reported through Input.Done) and the loop
// continues; no playback error stops the loop.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting", "story", e.story.Title)

	for {
		in, ok := e.queue.TryDequeue()
		if ok {
			e.handle(ctx, in)
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.shutdown()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel is closed once the queue is closed.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				e.shutdown()
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine.
// Closes the input queue, which will cause Run() to return. Timers that
// fire afterwards are dropped.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) shutdown() {
	e.queue.Close()
	e.stopAuto()
	e.tw.Clear()
}

// handle applies one input. Called only from Run.
func (e *Engine) handle(ctx context.Context, in Input) {
	var err error
	switch in.Kind {
	case InputStart:
		e.Start()
	case InputInteract:
		e.Interact()
	case InputAdvance:
		e.AdvanceDialogue()
	case InputToggleAuto:
		e.ToggleAutoMode()
	case InputToggleSkip:
		e.ToggleSkipMode()
	case InputChoose:
		err = e.Choose(in.Choice)
	case InputSave:
		err = e.Save(ctx)
	case InputLoad:
		var ok bool
		ok, err = e.Load(ctx)
		if err == nil && !ok {
			err = ErrNoSaveData
		}
	case InputFunc:
		if in.Fn != nil {
			err = in.Fn(e)
		}
	case inputTimer:
		if in.fire != nil {
			in.fire()
		}
	default:
		e.logger.Warn("unknown input", "kind", in.Kind)
	}

	if err != nil {
		e.logger.Warn("input failed", "input", in.Kind.String(), "error", err)
	}
	if in.Done != nil {
		in.Done(err)
	}
}
