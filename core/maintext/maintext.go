// Package maintext generates the typeset main text from a base witness row.
package maintext

import (
	"strings"

	"github.com/FocuswithJustin/JuniperEdition/core/tokenizer"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
)

// TokenType distinguishes text from inter-word glue.
type TokenType string

// Main text token types.
const (
	TypeText TokenType = "text"
	TypeGlue TokenType = "glue"
)

// Token is one main-text element. CollationTableIndex is the originating
// column of a text token and -1 for glue.
type Token struct {
	Type                TokenType `json:"type"`
	Text                string    `json:"text,omitempty"`
	CollationTableIndex int       `json:"collationTableIndex"`
}

// Generate walks a base witness row and returns the main text together with
// a per-column map into it. Main-text indices count text tokens only; glue has
// no index. Empty and whitespace cells map to -1.
func Generate(tokens []witness.Token) ([]Token, []int) {
	main := []Token{}
	colMap := make([]int, len(tokens))
	first := true
	n := 0
	for c, t := range tokens {
		colMap[c] = -1
		if t.TokenType != witness.TokenWord && t.TokenType != witness.TokenPunctuation {
			continue
		}
		if !first && !(t.TokenType == witness.TokenPunctuation && tokenizer.IsNoGluePunctuation(t.Text)) {
			main = append(main, Token{Type: TypeGlue, CollationTableIndex: -1})
		}
		first = false
		colMap[c] = n
		n++
		main = append(main, Token{Type: TypeText, Text: t.Text, CollationTableIndex: c})
	}
	return main, colMap
}

// PlainText renders main text with glue as single spaces.
func PlainText(main []Token) string {
	var sb strings.Builder
	for _, t := range main {
		if t.Type == TypeGlue {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// position returns the slice position of the i-th text token, or -1.
func position(main []Token, i int) int {
	if i < 0 {
		return -1
	}
	for p, t := range main {
		if t.Type != TypeText {
			continue
		}
		if i == 0 {
			return p
		}
		i--
	}
	return -1
}

// TextAt returns the text of the main-text token with index i, or "".
func TextAt(main []Token, i int) string {
	if p := position(main, i); p >= 0 {
		return main[p].Text
	}
	return ""
}

// Slice returns the main text from index from through index to, including
// the glue between them.
func Slice(main []Token, from, to int) []Token {
	start := position(main, from)
	if start < 0 || to < from {
		return nil
	}
	end := position(main, to)
	if end < 0 {
		end = len(main) - 1
	}
	return main[start : end+1]
}

// IsPunctuation reports whether the main-text token with index i came from a
// punctuation cell of tokens.
func IsPunctuation(main []Token, i int, tokens []witness.Token) bool {
	p := position(main, i)
	if p < 0 {
		return false
	}
	c := main[p].CollationTableIndex
	return c >= 0 && c < len(tokens) && tokens[c].TokenType == witness.TokenPunctuation
}
