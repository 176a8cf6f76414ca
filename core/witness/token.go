// Package witness provides the normalized token model of a textual witness.
package witness

import (
	"strings"
	"unicode"

	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
	"github.com/FocuswithJustin/JuniperEdition/core/tokenizer"
)

// TokenType represents the type of a witness token.
type TokenType string

// Token type constants.
const (
	TokenWord        TokenType = "word"
	TokenWhitespace  TokenType = "whitespace"
	TokenPunctuation TokenType = "punctuation"
	TokenEmpty       TokenType = "empty"
)

// NormalizationSource records where a token's normalized text came from.
type NormalizationSource string

// Normalization sources.
const (
	NormalizationNone            NormalizationSource = ""
	NormalizationTranscription   NormalizationSource = "transcription"
	NormalizationParser          NormalizationSource = "parser"
	NormalizationCollationAuto   NormalizationSource = "collationAuto"
	NormalizationCollationManual NormalizationSource = "collationManual"
)

// WitnessType distinguishes transcribed witnesses from the edition witness.
type WitnessType string

// Witness types.
const (
	WitnessFullTx    WitnessType = "fullTx"
	WitnessPartialTx WitnessType = "partialTx"
	WitnessEdition   WitnessType = "edition"
)

// SourceRef points back to the transcription item a token came from.
type SourceRef struct {
	ItemIndex int                 `json:"itemIndex"`
	CharRange tokenizer.CharRange `json:"charRange"`
}

// Token is a single witness token.
type Token struct {
	TokenType           TokenType           `json:"tokenType"`
	Text                string              `json:"text"`
	NormalizedText      string              `json:"normalizedText,omitempty"`
	NormalizationSource NormalizationSource `json:"normalizationSource,omitempty"`
	SourceItems         []SourceRef         `json:"sourceItems,omitempty"`
	LineRange           tokenizer.LineRange `json:"lineRange,omitzero"`
}

// EmptyToken returns the placeholder used for empty collation cells.
func EmptyToken() Token {
	return Token{TokenType: TokenEmpty}
}

// IsEmpty reports whether the token is the empty placeholder.
func (t Token) IsEmpty() bool {
	return t.TokenType == TokenEmpty
}

// Normalized returns the normalized text, falling back to the plain text.
func (t Token) Normalized() string {
	if t.NormalizedText != "" {
		return t.NormalizedText
	}
	return t.Text
}

// Witness is one attested version of a text.
type Witness struct {
	Siglum      string      `json:"siglum"`
	Title       string      `json:"title,omitempty"`
	WitnessType WitnessType `json:"witnessType"`
	Lang        string      `json:"lang,omitempty"`
	Tokens      []Token     `json:"tokens"`
}

// Clone returns a deep copy of the witness.
func (w Witness) Clone() Witness {
	cp := w
	cp.Tokens = make([]Token, len(w.Tokens))
	for i, t := range w.Tokens {
		cp.Tokens[i] = t
		if t.SourceItems != nil {
			cp.Tokens[i].SourceItems = append([]SourceRef(nil), t.SourceItems...)
		}
	}
	return cp
}

// WordIndices returns the indices of the witness's word tokens in source order.
func (w Witness) WordIndices() []int {
	var out []int
	for i, t := range w.Tokens {
		if t.TokenType == TokenWord {
			out = append(out, i)
		}
	}
	return out
}

// FromString tokenizes plain text into witness tokens.
func FromString(text string) []Token {
	st := tokenizer.Tokenize(text)
	out := make([]Token, len(st))
	for i, s := range st {
		out[i] = Token{
			TokenType:   TokenType(s.Type),
			Text:        s.Text,
			SourceItems: []SourceRef{{ItemIndex: 0, CharRange: s.CharRange}},
			LineRange:   s.LineRange,
		}
	}
	return out
}

// Validate checks token invariants: known types, word text without whitespace,
// and no text on empty tokens.
func Validate(tokens []Token) error {
	for i, t := range tokens {
		switch t.TokenType {
		case TokenWord:
			if t.Text == "" {
				return apperrors.NewValidationf("tokens", "word token %d has no text", i)
			}
			if strings.IndexFunc(t.Text, unicode.IsSpace) >= 0 {
				return apperrors.NewValidationf("tokens", "word token %d contains whitespace: %q", i, t.Text)
			}
		case TokenPunctuation, TokenWhitespace:
			if t.Text == "" {
				return apperrors.NewValidationf("tokens", "%s token %d has no text", t.TokenType, i)
			}
		case TokenEmpty:
			if t.Text != "" {
				return apperrors.NewValidationf("tokens", "empty token %d carries text %q", i, t.Text)
			}
		default:
			return &apperrors.ValidationError{Field: "tokenType", Value: string(t.TokenType), Message: "unknown token type"}
		}
	}
	return nil
}
