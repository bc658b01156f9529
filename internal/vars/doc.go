// Package vars provides the variable store and condition evaluator for
// narrative playback.
//
// This package is the foundational layer: story, save and engine import vars;
// vars imports nothing internal.
//
// Values are either strings (Str) or numbers (Num). Comparisons are numeric
// when both sides parse as finite decimal literals and string-based
// otherwise, so "5" and "5.0" compare equal under ==.
//
// Assignments of the form "+=N" and "-=N" perform in-place arithmetic
// against the stored value; an absent variable counts as 0.
package vars
