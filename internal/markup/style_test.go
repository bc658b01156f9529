package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/novella/internal/story"
)

func TestExpandStyles(t *testing.T) {
	presets := story.DefaultPresets()

	got := ExpandStyles("Look <style:red_bold>out</style>!", presets)
	assert.Equal(t, `Look <span style="color: red;font-weight: bold;">out</span>!`, got)
}

func TestExpandStyles_UnknownPreset(t *testing.T) {
	got := ExpandStyles("<style:sparkle>shiny</style> thing", story.DefaultPresets())
	assert.Equal(t, "shiny thing", got)
}

func TestExpandStyles_MultipleSpans(t *testing.T) {
	got := ExpandStyles("<style:default>a</style>-<style:blue_italic>b</style>", story.DefaultPresets())
	assert.Equal(t, `<span style="">a</span>-<span style="color: blue;font-style: italic;">b</span>`, got)
}

func TestExpandStyles_NilStyles(t *testing.T) {
	assert.Equal(t, "x", ExpandStyles("<style:red_bold>x</style>", nil))
	assert.Equal(t, "no markup", ExpandStyles("no markup", nil))
}

func TestExpandStyles_ThenTokenize(t *testing.T) {
	expanded := ExpandStyles("<style:red_bold>hi</style>", story.DefaultPresets())
	tokens := Tokenize(expanded)

	// open tag, two characters, close tag
	assert.Len(t, tokens, 4)
	assert.Equal(t, TokenTag, tokens[0].Kind)
	assert.Equal(t, TokenTag, tokens[3].Kind)
	assert.Equal(t, "hi", Plain(tokens))
}
