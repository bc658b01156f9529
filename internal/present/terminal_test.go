package present

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/novella/internal/story"
)

func TestTerminal_ProgressiveRenderPrintsSuffix(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.SetSpeaker("Alice")
	term.RenderText("H")
	term.RenderText("He")
	term.RenderText("He<b>l</b>")
	term.HideDialogueBox()

	assert.Equal(t, "Alice: Hel\n", buf.String())
}

func TestTerminal_NonPrefixRenderStartsNewLine(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.RenderText("first")
	term.SetSpeaker("Bob")
	term.RenderText("second")
	term.HideDialogueBox()

	assert.Equal(t, "first\nBob: second\n", buf.String())
}

func TestTerminal_EntitiesAndBlankSpeaker(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.SetSpeaker(" ")
	term.RenderText("a &amp; b")
	term.HideDialogueBox()

	assert.Equal(t, "a & b\n", buf.String())
}

func TestTerminal_ChoicesAndCues(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.SetBackground("forest.png")
	term.ShowCharacter("Alice", "alice.png", story.PositionLeft)
	assert.NoError(t, term.PlaySE("bell.mp3"))
	term.ShowChoices([]ChoiceView{{Index: 0, Text: "Go"}, {Index: 2, Text: "Stay"}})

	assert.Equal(t,
		"[background: forest.png]\n"+
			"[Alice appears left: alice.png]\n"+
			"[se: bell.mp3]\n"+
			"  1) Go\n"+
			"  2) Stay\n",
		buf.String())
}
