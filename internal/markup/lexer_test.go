package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_PlainText(t *testing.T) {
	tokens := Tokenize("Hi!")

	assert.Equal(t, []Token{
		{Kind: TokenChar, Text: "H"},
		{Kind: TokenChar, Text: "i"},
		{Kind: TokenChar, Text: "!"},
	}, tokens)
}

func TestTokenize_NestedSpeed(t *testing.T) {
	tokens := Tokenize("<speed:10>a<speed:20>b</speed>c</speed>d")

	assert.Equal(t, []Token{
		{Kind: TokenSpeedStart, Delay: 10},
		{Kind: TokenChar, Text: "a"},
		{Kind: TokenSpeedStart, Delay: 20},
		{Kind: TokenChar, Text: "b"},
		{Kind: TokenSpeedEnd},
		{Kind: TokenChar, Text: "c"},
		{Kind: TokenSpeedEnd},
		{Kind: TokenChar, Text: "d"},
	}, tokens)
}

func TestTokenize_AtomicTags(t *testing.T) {
	tokens := Tokenize(`a<br>b<span style="color: red;">c</span>`)

	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []TokenKind{
		TokenChar, TokenTag, TokenChar, TokenTag, TokenChar, TokenTag,
	}, kinds)
	assert.Equal(t, "<br>", tokens[1].Text)
	assert.Equal(t, `<span style="color: red;">`, tokens[3].Text)
	assert.Equal(t, "</span>", tokens[5].Text)
}

func TestTokenize_Entities(t *testing.T) {
	tokens := Tokenize("a&amp;b&#39;c&nope")

	assert.Equal(t, Token{Kind: TokenEntity, Text: "&amp;"}, tokens[1])
	assert.Equal(t, Token{Kind: TokenEntity, Text: "&#39;"}, tokens[3])
	// "&nope" without ';' is plain text
	assert.Equal(t, Token{Kind: TokenChar, Text: "&"}, tokens[5])
	assert.Equal(t, "a&b'c&nope", Plain(tokens))
}

func TestTokenize_UnclosedAngle(t *testing.T) {
	tokens := Tokenize("1 < 2")
	assert.Len(t, tokens, 5)
	assert.Equal(t, Token{Kind: TokenChar, Text: "<"}, tokens[2])

	tokens = Tokenize("<>")
	assert.Equal(t, []Token{{Kind: TokenChar, Text: "<"}, {Kind: TokenChar, Text: ">"}}, tokens)
}

func TestTokenize_MultibyteAndNFC(t *testing.T) {
	// "e" + COMBINING ACUTE ACCENT composes to a single rune.
	tokens := Tokenize("cafe\u0301")
	assert.Len(t, tokens, 4)
	assert.Equal(t, "\u00e9", tokens[3].Text)

	tokens = Tokenize("こんにちは")
	assert.Len(t, tokens, 5)
}

func TestTokenize_MalformedSpeedIsTag(t *testing.T) {
	tokens := Tokenize("<speed:fast>x")
	assert.Equal(t, Token{Kind: TokenTag, Text: "<speed:fast>"}, tokens[0])
}

func TestTokenize_SpeedDelayCapped(t *testing.T) {
	tokens := Tokenize("<speed:9223372036854775>a</speed>")
	assert.Equal(t, Token{Kind: TokenSpeedStart, Delay: MaxSpeedDelay}, tokens[0])

	tokens = Tokenize("<speed:60000>a</speed>")
	assert.Equal(t, 60000, tokens[0].Delay)
}

func TestTokenize_SpeedOutOfIntRangeIsTag(t *testing.T) {
	tag := "<speed:99999999999999999999999>"
	tokens := Tokenize(tag + "a")
	assert.Equal(t, Token{Kind: TokenTag, Text: tag}, tokens[0])
}

func TestRender_SkipsMarkers(t *testing.T) {
	tokens := Tokenize("<speed:10>He<b>l</b>lo</speed>")
	assert.Equal(t, "He<b>l</b>lo", Render(tokens))
	assert.Equal(t, "Hello", Plain(tokens))
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "bold & brave", StripTags("<b>bold</b> &amp; <speed:5>brave</speed>"))
}
