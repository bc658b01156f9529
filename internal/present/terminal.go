package present

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/novella/internal/markup"
	"github.com/roach88/novella/internal/story"
)

// Terminal renders playback as plain text on a writer.
//
// Tags are stripped and entities unescaped before printing. Progressive
// renders that extend the previous one print only the new suffix, so a line
// being typed appears character by character.
type Terminal struct {
	w       io.Writer
	speaker string
	shown   string
	open    bool
}

var (
	_ Presenter = (*Terminal)(nil)
	_ Audio     = (*Terminal)(nil)
)

// NewTerminal creates a Terminal writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) ShowDialogueBox() {}

func (t *Terminal) HideDialogueBox() {
	t.endLine()
}

func (t *Terminal) SetSpeaker(name string) {
	t.speaker = strings.TrimSpace(name)
}

func (t *Terminal) RenderText(text string) {
	plain := markup.Plain(markup.Tokenize(text))
	if t.open && strings.HasPrefix(plain, t.shown) {
		fmt.Fprint(t.w, plain[len(t.shown):])
		t.shown = plain
		return
	}
	t.endLine()
	if plain == "" {
		return
	}
	if t.speaker != "" {
		fmt.Fprintf(t.w, "%s: ", t.speaker)
	}
	fmt.Fprint(t.w, plain)
	t.shown = plain
	t.open = true
}

func (t *Terminal) ShowCharacter(name, image string, pos story.Position) {
	t.endLine()
	fmt.Fprintf(t.w, "[%s appears %s: %s]\n", displayName(name), pos, image)
}

func (t *Terminal) HideCharacter(name string) {
	t.endLine()
	fmt.Fprintf(t.w, "[%s leaves]\n", displayName(name))
}

func (t *Terminal) ClearCharacters() {}

func (t *Terminal) ShowChoices(choices []ChoiceView) {
	t.endLine()
	for i, c := range choices {
		fmt.Fprintf(t.w, "  %d) %s\n", i+1, c.Text)
	}
}

func (t *Terminal) HideChoices() {}

func (t *Terminal) AppendLog(string, string) {}

func (t *Terminal) SetBackground(ref string) {
	t.endLine()
	fmt.Fprintf(t.w, "[background: %s]\n", ref)
}

// PlaySE prints the cue instead of playing it.
func (t *Terminal) PlaySE(ref string) error {
	t.endLine()
	fmt.Fprintf(t.w, "[se: %s]\n", ref)
	return nil
}

// Notice prints an out-of-band message such as a save confirmation.
func (t *Terminal) Notice(msg string) {
	t.endLine()
	fmt.Fprintf(t.w, "-- %s --\n", msg)
}

// Print writes a whole line of its own, ending any line in progress.
func (t *Terminal) Print(line string) {
	t.endLine()
	fmt.Fprintln(t.w, line)
}

func (t *Terminal) endLine() {
	if t.open {
		fmt.Fprintln(t.w)
	}
	t.open = false
	t.shown = ""
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "someone"
	}
	return name
}
