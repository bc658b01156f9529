// Package markup lexes dialogue markup into a flat token stream for the
// typewriter renderer.
//
// Grammar, scanned once left to right with no overlap:
//
//	<speed:N>   start of a span revealed at N ms per character
//	</speed>    end of the innermost speed span
//	<...>       any other tag; passed through as one atomic unit
//	&name;      an HTML entity; passed through as one atomic unit
//	x           any other character (one rune after NFC normalisation)
//
// Speed spans nest by position only: the lexer emits start and end markers
// and leaves balancing to the renderer's delay stack.
//
// <style:name>...</style> spans are not part of the token grammar. They are
// expanded to inline-styled <span> elements by ExpandStyles before lexing.
package markup
