package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/novella/internal/engine"
	"github.com/roach88/novella/internal/save"
	"github.com/roach88/novella/internal/store"
	"github.com/roach88/novella/internal/story"
	"github.com/roach88/novella/internal/testutil"
)

// settleLimit bounds the settle input so a looping auto mode cannot hang
// a scenario.
const settleLimit = 10000

// Harness drives one engine through a scenario.
type Harness struct {
	engine   *engine.Engine
	recorder *testutil.Recorder
	sched    *testutil.ManualScheduler
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the story (and presets, if any)
// 2. Build an engine on a manual scheduler and a recording presenter
// 3. Execute flow steps, capturing each step's presenter calls
// 4. Evaluate assertions against the final state
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context for save and load.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := story.Load(scenario.Story)
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}

	presets := story.DefaultPresets()
	if scenario.Presets != "" {
		presets, err = story.LoadPresets(scenario.Presets)
		if err != nil {
			return nil, fmt.Errorf("failed to load presets: %w", err)
		}
	}

	db, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	rec := testutil.NewRecorder()
	sched := testutil.NewManualScheduler()

	eng := engine.New(st,
		engine.WithPresenter(rec),
		engine.WithAudio(rec),
		engine.WithScheduler(sched),
		engine.WithPresets(presets),
		engine.WithSlot(save.NewSlot(db, save.WithLogger(logger))),
		engine.WithLogger(logger),
		engine.WithVariables(scenario.Variables),
		engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
	)

	h := &Harness{
		engine:   eng,
		recorder: rec,
		sched:    sched,
		logger:   logger,
	}

	result := NewResult()
	h.executeFlow(ctx, scenario.Flow, result)

	result.State = eng.State()
	result.Variables = eng.Variables()
	result.Characters = rec.PortraitNames()

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeFlow feeds every step to the engine and checks expect clauses.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) {
	for i, step := range flow {
		h.recorder.Reset()
		err := h.apply(ctx, step)

		entry := TranscriptEntry{
			Step:  i,
			Input: step.Label(),
			Calls: h.recorder.Calls(),
		}
		if entry.Calls == nil {
			entry.Calls = []string{}
		}
		if err != nil {
			entry.Error = errorCode(err)
		}
		result.AddStep(entry)

		want := ""
		if step.Expect != nil {
			want = step.Expect.Error
		}
		if entry.Error != want {
			switch {
			case want == "":
				result.AddError(fmt.Sprintf("flow[%d] %s: unexpected error: %v", i, step.Label(), err))
			case err == nil:
				result.AddError(fmt.Sprintf("flow[%d] %s: expected error %s, got success", i, step.Label(), want))
			default:
				result.AddError(fmt.Sprintf("flow[%d] %s: expected error %s, got %s", i, step.Label(), want, entry.Error))
			}
		}

		h.logger.Info("flow step completed",
			"step", i,
			"input", step.Label(),
			"calls", len(entry.Calls),
			"error", entry.Error,
		)
	}
}

// apply performs one input on the engine. Calls are made directly rather
// than through Run, so the scenario stays on one goroutine.
func (h *Harness) apply(ctx context.Context, step FlowStep) error {
	e := h.engine
	switch step.Input {
	case InputStart:
		e.Start()
	case InputAdvance:
		e.AdvanceDialogue()
	case InputInteract:
		e.Interact()
	case InputAuto:
		e.ToggleAutoMode()
	case InputSkip:
		e.ToggleSkipMode()
	case InputChoose:
		return e.Choose(*step.Choice)
	case InputSave:
		return e.Save(ctx)
	case InputLoad:
		ok, err := e.Load(ctx)
		if err == nil && !ok {
			return engine.ErrNoSaveData
		}
		return err
	case InputWait:
		h.sched.Advance(time.Duration(step.Ms) * time.Millisecond)
	case InputSettle:
		h.sched.RunAll(settleLimit)
	default:
		return fmt.Errorf("unknown input %q", step.Input)
	}
	return nil
}

// errorCode maps an engine error to the code used in expect clauses.
func errorCode(err error) string {
	if errors.Is(err, engine.ErrNoSaveData) {
		return "NO_SAVE_DATA"
	}
	if code := engine.ErrorCode(err); code != "" {
		return string(code)
	}
	return err.Error()
}
