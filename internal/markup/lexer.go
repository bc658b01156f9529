package markup

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// TokenKind distinguishes token variants.
type TokenKind int

const (
	// TokenChar is one visible character.
	TokenChar TokenKind = iota + 1
	// TokenTag is an atomic tag such as <br> or <span ...>.
	TokenTag
	// TokenEntity is an atomic HTML entity such as &amp;.
	TokenEntity
	// TokenSpeedStart pushes a reveal delay (Token.Delay, in ms).
	TokenSpeedStart
	// TokenSpeedEnd pops the reveal delay.
	TokenSpeedEnd
)

func (k TokenKind) String() string {
	switch k {
	case TokenChar:
		return "char"
	case TokenTag:
		return "tag"
	case TokenEntity:
		return "entity"
	case TokenSpeedStart:
		return "speed_start"
	case TokenSpeedEnd:
		return "speed_end"
	}
	return "unknown"
}

// Token is one lexed unit.
type Token struct {
	Kind TokenKind

	// Text is the source text of the token. Empty for speed markers.
	Text string

	// Delay is the requested per-character delay in ms (TokenSpeedStart only).
	Delay int
}

// IsMarker reports whether the token only controls timing and is never
// rendered.
func (t Token) IsMarker() bool {
	return t.Kind == TokenSpeedStart || t.Kind == TokenSpeedEnd
}

// MaxSpeedDelay caps a <speed:N> delay, in milliseconds.
const MaxSpeedDelay = 60000

var (
	speedOpen = regexp.MustCompile(`^speed:(\d+)$`)
	entity    = regexp.MustCompile(`^&(#\d{1,7}|#[xX][0-9a-fA-F]{1,6}|[A-Za-z][A-Za-z0-9]{0,31});`)
)

// Tokenize lexes markup into a flat token stream.
//
// The input is NFC normalised first so that a base character and its
// combining marks reveal as one unit. A '<' with no closing '>' (or an empty
// "<>") is an ordinary character.
func Tokenize(text string) []Token {
	text = norm.NFC.String(text)
	tokens := make([]Token, 0, len(text))

	for i := 0; i < len(text); {
		switch text[i] {
		case '<':
			if tok, n, ok := lexTag(text[i:]); ok {
				tokens = append(tokens, tok)
				i += n
				continue
			}
		case '&':
			if loc := entity.FindStringIndex(text[i:]); loc != nil {
				tokens = append(tokens, Token{Kind: TokenEntity, Text: text[i : i+loc[1]]})
				i += loc[1]
				continue
			}
		}

		_, size := utf8.DecodeRuneInString(text[i:])
		tokens = append(tokens, Token{Kind: TokenChar, Text: text[i : i+size]})
		i += size
	}

	return tokens
}

// lexTag lexes a tag at the start of s, which begins with '<'.
func lexTag(s string) (Token, int, bool) {
	end := strings.IndexByte(s, '>')
	if end < 2 {
		return Token{}, 0, false
	}
	body := s[1:end]
	n := end + 1

	if body == "/speed" {
		return Token{Kind: TokenSpeedEnd}, n, true
	}
	if m := speedOpen.FindStringSubmatch(body); m != nil {
		if delay, err := strconv.Atoi(m[1]); err == nil {
			return Token{Kind: TokenSpeedStart, Delay: min(delay, MaxSpeedDelay)}, n, true
		}
	}
	return Token{Kind: TokenTag, Text: s[:n]}, n, true
}

// Render concatenates every token except speed markers.
func Render(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		if !t.IsMarker() {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// Plain renders only visible characters, dropping tags and markers and
// decoding entities. Used for logs and plain-text surfaces.
func Plain(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		switch t.Kind {
		case TokenChar:
			b.WriteString(t.Text)
		case TokenEntity:
			b.WriteString(html.UnescapeString(t.Text))
		}
	}
	return b.String()
}

// StripTags is Plain(Tokenize(text)).
func StripTags(text string) string {
	return Plain(Tokenize(text))
}
