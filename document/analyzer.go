package document

import (
	"strings"
	"unicode"
)

// Analyzer turns raw field text into index terms.
//
// Full text analysis is out of scope for this library; Simple covers
// tests and simple corpora, anything serious should tokenize upstream
// and use AddTerm directly.
type Analyzer interface {
	Analyze(text string) []string
}

// Simple lowercases and splits on any non-letter, non-digit rune.
type Simple struct{}

// Analyze implements Analyzer.
func (Simple) Analyze(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Whitespace splits on whitespace only, preserving case.
type Whitespace struct{}

// Analyze implements Analyzer.
func (Whitespace) Analyze(text string) []string {
	return strings.Fields(text)
}
