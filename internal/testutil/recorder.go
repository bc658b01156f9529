package testutil

import (
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/novella/internal/present"
	"github.com/roach88/novella/internal/story"
)

// Portrait is a character image currently on screen.
type Portrait struct {
	Image    string
	Position story.Position
}

// Recorder is a present.Presenter and present.Audio that records every
// call and tracks the resulting screen state.
//
// Calls are recorded as short lines ("speaker Alice", "text Hel") so tests
// can assert on exact sequences, and the tracked state answers "what is on
// screen now" without replaying them.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Recorder struct {
	mu sync.Mutex

	calls []string

	dialogueVisible bool
	speaker         string
	text            string
	renders         []string
	portraits       map[string]Portrait
	choices         []present.ChoiceView
	background      string
	sounds          []string
	log             []string

	// SEErr, if set, is returned from PlaySE.
	SEErr error
}

var (
	_ present.Presenter = (*Recorder)(nil)
	_ present.Audio     = (*Recorder)(nil)
)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{portraits: make(map[string]Portrait)}
}

func (r *Recorder) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) ShowDialogueBox() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialogueVisible = true
	r.record("show_dialogue")
}

func (r *Recorder) HideDialogueBox() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialogueVisible = false
	r.record("hide_dialogue")
}

func (r *Recorder) SetSpeaker(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speaker = name
	r.record("speaker %s", name)
}

func (r *Recorder) RenderText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text = text
	r.renders = append(r.renders, text)
	r.record("text %s", text)
}

func (r *Recorder) ShowCharacter(name, image string, pos story.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.portraits[name] = Portrait{Image: image, Position: pos}
	r.record("show_character %s %s %s", name, image, pos)
}

func (r *Recorder) HideCharacter(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.portraits, name)
	r.record("hide_character %s", name)
}

func (r *Recorder) ClearCharacters() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.portraits = make(map[string]Portrait)
	r.record("clear_characters")
}

func (r *Recorder) ShowChoices(choices []present.ChoiceView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.choices = append([]present.ChoiceView(nil), choices...)
	r.record("show_choices %d", len(choices))
}

func (r *Recorder) HideChoices() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.choices = nil
	r.record("hide_choices")
}

func (r *Recorder) AppendLog(speaker, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, speaker+": "+text)
	r.record("log %s: %s", speaker, text)
}

func (r *Recorder) SetBackground(ref string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.background = ref
	r.record("background %s", ref)
}

func (r *Recorder) PlaySE(ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sounds = append(r.sounds, ref)
	r.record("se %s", ref)
	return r.SEErr
}

// Calls returns every recorded call in order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Reset forgets recorded calls and renders but keeps screen state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.renders = nil
}

// DialogueVisible reports whether the dialogue box is shown.
func (r *Recorder) DialogueVisible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dialogueVisible
}

// Speaker returns the current speaker name.
func (r *Recorder) Speaker() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speaker
}

// Text returns the most recently rendered text.
func (r *Recorder) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text
}

// Renders returns every RenderText argument since the last Reset.
func (r *Recorder) Renders() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.renders...)
}

// Portraits returns the characters on screen.
func (r *Recorder) Portraits() map[string]Portrait {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Portrait, len(r.portraits))
	for k, v := range r.portraits {
		out[k] = v
	}
	return out
}

// PortraitNames returns the names of on-screen characters, sorted.
func (r *Recorder) PortraitNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.portraits))
	for k := range r.portraits {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Choices returns the options currently offered.
func (r *Recorder) Choices() []present.ChoiceView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]present.ChoiceView(nil), r.choices...)
}

// Background returns the current background reference.
func (r *Recorder) Background() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.background
}

// Sounds returns every sound cue played.
func (r *Recorder) Sounds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sounds...)
}

// Log returns backlog lines as "speaker: text".
func (r *Recorder) Log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}
