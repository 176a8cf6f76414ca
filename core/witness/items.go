package witness

import (
	"strings"
	"unicode"

	"github.com/FocuswithJustin/JuniperEdition/core/tokenizer"
	"github.com/FocuswithJustin/JuniperEdition/core/transcription"
)

type readingKind int

const (
	readingSkip readingKind = iota
	readingText
	readingBreak
	readingNoWordBreak
)

// reading is the collatable text an item contributes.
type reading struct {
	kind       readingKind
	raw        string
	normalized string
	source     NormalizationSource
}

func readingOf(it transcription.Item) reading {
	plain := func(s string) reading {
		return reading{kind: readingText, raw: s, normalized: s}
	}
	corrected := func(raw, alt string) reading {
		if alt == "" || alt == raw {
			return plain(raw)
		}
		return reading{kind: readingText, raw: raw, normalized: alt, source: NormalizationTranscription}
	}

	switch v := it.(type) {
	case *transcription.Text:
		return plain(v.Text)
	case *transcription.Rubric:
		return plain(v.Text)
	case *transcription.Initial:
		return plain(v.Text)
	case *transcription.Addition:
		return plain(v.Text)
	case *transcription.Unclear:
		return plain(v.Text)
	case *transcription.Sic:
		return corrected(v.Text, v.Correction)
	case *transcription.Abbreviation:
		return corrected(v.Text, v.Expansion)
	case *transcription.ChunkMark, *transcription.ParagraphMark:
		return reading{kind: readingBreak}
	case *transcription.NoWordBreak:
		return reading{kind: readingNoWordBreak}
	case *transcription.Deletion, *transcription.Mark, *transcription.Illegible, *transcription.CharacterGap:
		return reading{kind: readingSkip}
	}
	return reading{kind: readingSkip}
}

// FromItems builds witness tokens from a transcription item array.
//
// Each item's normalized text is tokenized. When an item yields a single token,
// the token keeps the item's own un-normalized text and records the normalized
// form separately. A NoWordBreak item joins the next item's leading word to the
// preceding word token, which then references several source items.
func FromItems(items []transcription.Item, tk *tokenizer.Tokenizer) []Token {
	if tk == nil {
		tk = tokenizer.New()
	}
	tokens := make([]Token, 0, len(items))
	joinNext := false

	for i, it := range items {
		r := readingOf(it)
		switch r.kind {
		case readingSkip:
			continue
		case readingBreak:
			joinNext = false
			continue
		case readingNoWordBreak:
			joinNext = true
			continue
		}

		lineBase := it.Common().Address.Line
		pieces := tk.Tokenize(r.normalized)
		for j, st := range pieces {
			tok := Token{
				TokenType:   TokenType(st.Type),
				Text:        st.Text,
				SourceItems: []SourceRef{{ItemIndex: i, CharRange: st.CharRange}},
				LineRange:   st.LineRange,
			}
			if lineBase > 0 {
				tok.LineRange.From += lineBase - 1
				tok.LineRange.To += lineBase - 1
			}
			if len(pieces) == 1 && r.raw != r.normalized {
				tok.Text = collapseSpace(r.raw)
				tok.NormalizedText = r.normalized
				tok.NormalizationSource = r.source
				tok.SourceItems[0].CharRange = tokenizer.CharRange{From: 0, Length: len(r.raw)}
			}

			if j == 0 && joinNext && tok.TokenType == TokenWord &&
				len(tokens) > 0 && tokens[len(tokens)-1].TokenType == TokenWord {
				mergeInto(&tokens[len(tokens)-1], tok)
				continue
			}
			tokens = append(tokens, tok)
		}
		joinNext = false
	}
	return tokens
}

func mergeInto(prev *Token, next Token) {
	if prev.NormalizedText != "" || next.NormalizedText != "" {
		prev.NormalizedText = prev.Normalized() + next.Normalized()
		if prev.NormalizationSource == NormalizationNone {
			prev.NormalizationSource = next.NormalizationSource
		}
	}
	prev.Text += next.Text
	prev.SourceItems = append(prev.SourceItems, next.SourceItems...)
	if next.LineRange.To > prev.LineRange.To {
		prev.LineRange.To = next.LineRange.To
	}
}

// collapseSpace removes whitespace so a single-token reading stays a valid word.
func collapseSpace(s string) string {
	if strings.IndexFunc(s, unicode.IsSpace) < 0 {
		return s
	}
	return strings.Join(strings.Fields(s), "")
}
