// Package textutil provides small text helpers shared by caption parsing,
// summarization, and report output: rune-safe truncation, whitespace
// collapsing, and filename sanitizing.
package textutil
