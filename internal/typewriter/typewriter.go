// Package typewriter reveals dialogue text progressively.
//
// A Typewriter is a two-state machine. Start moves it to Typing and reveals
// the first token synchronously; each scheduled step reveals one more token
// and re-arms the timer with the active delay. Reaching the last token,
// Complete, and Clear all return it to Idle.
//
// Speed markers are steps too: <speed:N> pushes the active delay and makes
// N the new one, </speed> pops it (or falls back to the base delay when the
// stack is empty). Markers never appear in rendered output.
//
// Typewriter is not safe for concurrent use. All calls, including timer
// callbacks, must happen on one goroutine (see clock.Scheduler).
package typewriter

import (
	"strings"
	"time"

	"github.com/roach88/novella/internal/clock"
	"github.com/roach88/novella/internal/markup"
)

// Surface receives rendered output.
type Surface interface {
	SetSpeaker(name string)
	RenderText(text string)
}

// Typewriter renders one line of dialogue at a time.
type Typewriter struct {
	surface Surface
	sched   clock.Scheduler
	base    time.Duration

	tokens []markup.Token
	pos    int
	buf    strings.Builder
	stack  []time.Duration
	active time.Duration

	typing bool
	timer  clock.Timer
	// gen invalidates callbacks from a previous Start whose timer could not
	// be stopped in time.
	gen uint64
}

// New creates an idle Typewriter. base is the per-token delay used outside
// any speed marker.
func New(surface Surface, sched clock.Scheduler, base time.Duration) *Typewriter {
	return &Typewriter{
		surface: surface,
		sched:   sched,
		base:    base,
		active:  base,
	}
}

// Show sets the speaker and starts typing text.
func (tw *Typewriter) Show(speaker, text string) {
	tw.surface.SetSpeaker(speaker)
	tw.Start(text)
}

// Start cancels any line in progress and begins revealing text.
func (tw *Typewriter) Start(text string) {
	tw.cancel()
	tw.tokens = markup.Tokenize(text)
	tw.pos = 0
	tw.buf.Reset()
	tw.stack = tw.stack[:0]
	tw.active = tw.base
	if len(tw.tokens) == 0 {
		tw.typing = false
		tw.surface.RenderText("")
		return
	}
	tw.typing = true
	tw.step(tw.gen)
}

func (tw *Typewriter) step(gen uint64) {
	if gen != tw.gen || !tw.typing {
		return
	}
	tw.timer = nil

	if tw.pos >= len(tw.tokens) {
		tw.typing = false
		return
	}

	tok := tw.tokens[tw.pos]
	tw.pos++

	switch tok.Kind {
	case markup.TokenSpeedStart:
		tw.stack = append(tw.stack, tw.active)
		tw.active = time.Duration(tok.Delay) * time.Millisecond
	case markup.TokenSpeedEnd:
		if n := len(tw.stack); n > 0 {
			tw.active = tw.stack[n-1]
			tw.stack = tw.stack[:n-1]
		} else {
			tw.active = tw.base
		}
	default:
		tw.buf.WriteString(tok.Text)
	}

	tw.surface.RenderText(tw.buf.String())

	if tw.pos >= len(tw.tokens) {
		tw.typing = false
		return
	}
	tw.timer = tw.sched.AfterFunc(tw.active, func() { tw.step(gen) })
}

// Complete stops typing and renders the whole line at once.
// It is a no-op on an idle Typewriter other than re-rendering.
func (tw *Typewriter) Complete() {
	tw.cancel()
	tw.typing = false
	tw.surface.RenderText(markup.Render(tw.tokens))
}

// Clear stops typing and blanks both the text and the speaker.
func (tw *Typewriter) Clear() {
	tw.cancel()
	tw.typing = false
	tw.tokens = nil
	tw.buf.Reset()
	tw.surface.RenderText("")
	tw.surface.SetSpeaker("")
}

// Display shows a line immediately without typing.
func (tw *Typewriter) Display(speaker, text string) {
	tw.cancel()
	tw.typing = false
	tw.tokens = markup.Tokenize(text)
	tw.surface.SetSpeaker(speaker)
	tw.surface.RenderText(markup.Render(tw.tokens))
}

// Typing reports whether a line is still being revealed.
func (tw *Typewriter) Typing() bool {
	return tw.typing
}

// ActiveDelay returns the delay that will precede the next step.
func (tw *Typewriter) ActiveDelay() time.Duration {
	return tw.active
}

// Text returns the full rendered form of the current line.
func (tw *Typewriter) Text() string {
	return markup.Render(tw.tokens)
}

func (tw *Typewriter) cancel() {
	clock.Stop(tw.timer)
	tw.timer = nil
	tw.gen++
}
