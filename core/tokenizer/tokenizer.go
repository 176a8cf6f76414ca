// Package tokenizer splits transcribed text into word, whitespace and punctuation tokens.
//
// The tokenizer is a small state machine over the runes of its input. Contiguous
// whitespace and contiguous word characters are coalesced; every punctuation
// character becomes a token of its own. Each token records its byte range in the
// source and the 1-based lines it touches, so concatenating the text of all tokens
// always reproduces the input.
package tokenizer

import (
	"strings"
	"unicode"
)

// TokenType represents the class of a token.
type TokenType string

// Token type constants.
const (
	TokenWord        TokenType = "word"
	TokenWhitespace  TokenType = "whitespace"
	TokenPunctuation TokenType = "punctuation"
)

// DefaultPunctuation is the fixed punctuation set shared by all languages.
// Arabic comma, semicolon and question mark and the Hebrew sof pasuq are included
// so that Arabic and Hebrew witnesses tokenize without extra configuration.
const DefaultPunctuation = ".,;:()[]¶⊙!?" + "،؛؟" + "׃"

// CharRange is a byte range in the source string.
type CharRange struct {
	From   int `json:"from"`
	Length int `json:"length"`
}

// End returns the exclusive end offset.
func (r CharRange) End() int {
	return r.From + r.Length
}

// LineRange is the first and last 1-based line a token touches.
type LineRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// StringToken is a classified token with its source position.
type StringToken struct {
	Type      TokenType `json:"type"`
	Text      string    `json:"text"`
	CharRange CharRange `json:"charRange"`
	LineRange LineRange `json:"lineRange"`
}

type state int

const (
	stateInitial state = iota
	stateWhitespace
	statePunctuation
	stateWord
)

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithPunctuation adds language-specific punctuation characters.
func WithPunctuation(chars string) Option {
	return func(t *Tokenizer) {
		for _, r := range chars {
			if !unicode.IsSpace(r) {
				t.punctuation[r] = true
			}
		}
	}
}

// Tokenizer holds the punctuation set used for classification.
type Tokenizer struct {
	punctuation map[rune]bool
}

// New creates a tokenizer with the default punctuation set plus any options.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{punctuation: make(map[rune]bool)}
	for _, r := range DefaultPunctuation {
		t.punctuation[r] = true
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var defaultTokenizer = New()

// Tokenize tokenizes text with the default punctuation set.
func Tokenize(text string) []StringToken {
	return defaultTokenizer.Tokenize(text)
}

// IsPunctuation reports whether s is non-empty and made only of default punctuation.
func IsPunctuation(s string) bool {
	return defaultTokenizer.IsPunctuation(s)
}

// noGlue lists punctuation that attaches to the preceding word in running text.
var noGlue = map[string]bool{
	".": true, ",": true, ":": true, ";": true, "?": true, "!": true,
	"،": true, "؟": true,
}

// IsNoGluePunctuation reports whether s is closing punctuation that is typeset
// without a space before it.
func IsNoGluePunctuation(s string) bool {
	return noGlue[s]
}

// IsPunctuation reports whether s is non-empty and made only of punctuation characters.
func (t *Tokenizer) IsPunctuation(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !t.punctuation[r] {
			return false
		}
	}
	return true
}

func (t *Tokenizer) stateFor(r rune) state {
	switch {
	case unicode.IsSpace(r):
		return stateWhitespace
	case t.punctuation[r]:
		return statePunctuation
	default:
		return stateWord
	}
}

func typeFor(s state) TokenType {
	switch s {
	case stateWhitespace:
		return TokenWhitespace
	case statePunctuation:
		return TokenPunctuation
	default:
		return TokenWord
	}
}

// Tokenize converts text into an ordered sequence of tokens. It never fails;
// invalid UTF-8 bytes are treated as word characters and preserved verbatim.
func (t *Tokenizer) Tokenize(text string) []StringToken {
	if text == "" {
		return []StringToken{}
	}

	tokens := make([]StringToken, 0, strings.Count(text, " ")+1)
	current := stateInitial
	start, startLine, lastLine := 0, 1, 1
	line := 1

	emit := func(end int) {
		tokens = append(tokens, StringToken{
			Type:      typeFor(current),
			Text:      text[start:end],
			CharRange: CharRange{From: start, Length: end - start},
			LineRange: LineRange{From: startLine, To: lastLine},
		})
	}

	for i, r := range text {
		next := t.stateFor(r)
		switch current {
		case stateInitial:
			start, startLine = i, line
		case stateWhitespace, stateWord:
			if next != current {
				emit(i)
				start, startLine = i, line
			}
		case statePunctuation:
			emit(i)
			start, startLine = i, line
		}
		current = next
		lastLine = line
		if r == '\n' {
			line++
		}
	}
	emit(len(text))
	return tokens
}
