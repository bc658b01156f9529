package markup

import (
	"html"
	"regexp"
	"strings"
)

// Styles resolves a preset name to inline CSS.
// story.Presets implements it.
type Styles interface {
	CSS(name string) (css string, ok bool)
}

var styleSpan = regexp.MustCompile(`<style:([^>]+)>(.*?)</style>`)

// ExpandStyles replaces each <style:name>content</style> span with
// <span style="css">content</span>. Spans naming an unknown preset are
// replaced by their content alone. Spans do not nest.
func ExpandStyles(text string, styles Styles) string {
	matches := styleSpan.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		name, content := text[m[2]:m[3]], text[m[4]:m[5]]

		css, ok := "", false
		if styles != nil {
			css, ok = styles.CSS(name)
		}
		if ok {
			b.WriteString(`<span style="`)
			b.WriteString(html.EscapeString(css))
			b.WriteString(`">`)
			b.WriteString(content)
			b.WriteString(`</span>`)
		} else {
			b.WriteString(content)
		}
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
