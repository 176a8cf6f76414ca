package witness

import (
	"fmt"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
)

// Normalizer maps a word to the form used when comparing readings.
type Normalizer interface {
	Name() string
	Normalize(s string) string
}

type funcNormalizer struct {
	name string
	fn   func(string) string
}

func (f funcNormalizer) Name() string             { return f.name }
func (f funcNormalizer) Normalize(s string) string { return f.fn(s) }

// NFC composes characters into Unicode normalization form C.
func NFC() Normalizer {
	return funcNormalizer{name: "nfc", fn: norm.NFC.String}
}

// CaseFold folds case so that "Dominus" and "dominus" compare equal.
func CaseFold() Normalizer {
	return funcNormalizer{name: "casefold", fn: func(s string) string {
		return cases.Fold().String(s)
	}}
}

// StripMarks removes combining marks (accents, vowel points, harakat).
func StripMarks() Normalizer {
	return funcNormalizer{name: "strip-marks", fn: func(s string) string {
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		out, _, err := transform.String(t, s)
		if err != nil {
			return s
		}
		return out
	}}
}

// NormalizerByName resolves a configured normalizer name.
func NormalizerByName(name string) (Normalizer, error) {
	switch name {
	case "nfc":
		return NFC(), nil
	case "casefold":
		return CaseFold(), nil
	case "strip-marks":
		return StripMarks(), nil
	}
	return nil, apperrors.NewUnsupported("normalizer", fmt.Sprintf("%q", name))
}

// Normalize returns a copy of tokens with word tokens passed through the
// normalizers in order. Tokens whose text changes get NormalizedText set and,
// unless already normalized by the transcription, the parser as source.
func Normalize(tokens []Token, normalizers ...Normalizer) []Token {
	out := make([]Token, len(tokens))
	copy(out, tokens)
	if len(normalizers) == 0 {
		return out
	}
	for i := range out {
		if out[i].TokenType != TokenWord {
			continue
		}
		s := out[i].Normalized()
		for _, n := range normalizers {
			s = n.Normalize(s)
		}
		if s == out[i].Normalized() {
			continue
		}
		out[i].NormalizedText = s
		if out[i].NormalizationSource == NormalizationNone {
			out[i].NormalizationSource = NormalizationParser
		}
	}
	return out
}
