// Package apparatus derives the critical apparatus by comparing every witness
// against the base witness column by column.
package apparatus

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/FocuswithJustin/JuniperEdition/core/ctdata"
	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
	"github.com/FocuswithJustin/JuniperEdition/core/maintext"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
)

// SubEntryType classifies an apparatus sub-entry.
type SubEntryType string

// Sub-entry types. FullCustom, Disable and Auto only come from editor overrides.
const (
	TypeVariant    SubEntryType = "variant"
	TypeOmission   SubEntryType = "omission"
	TypeAddition   SubEntryType = "addition"
	TypeFullCustom SubEntryType = ctdata.SubEntryFullCustom
	TypeDisable    SubEntryType = ctdata.SubEntryDisable
	TypeAuto       SubEntryType = ctdata.SubEntryAuto
)

// Source says where a sub-entry came from.
type Source string

// Sub-entry sources.
const (
	SourceAuto   Source = "auto"
	SourceCustom Source = "custom"
)

// SubEntry is one reading recorded against a lemma.
type SubEntry struct {
	Type           SubEntryType          `json:"type"`
	Source         Source                `json:"source"`
	WitnessIndices []int                 `json:"witnessIndices"`
	Sigla          string                `json:"sigla"`
	Text           string                `json:"text,omitempty"`
	FmtText        []ctdata.FmtTextToken `json:"fmtText,omitempty"`
	Enabled        bool                  `json:"enabled"`
	Hash           int32                 `json:"hash"`
}

// Entry groups the sub-entries anchored to main-text positions From..To.
type Entry struct {
	From       int        `json:"from"`
	To         int        `json:"to"`
	PreLemma   string     `json:"preLemma,omitempty"`
	Lemma      string     `json:"lemma"`
	PostLemma  string     `json:"postLemma,omitempty"`
	Separator  string     `json:"separator,omitempty"`
	SubEntries []SubEntry `json:"subEntries"`
}

// Apparatus is a typed list of entries.
type Apparatus struct {
	Type    string  `json:"type"`
	Entries []Entry `json:"entries"`
}

// Rank gives the tie-break order of an entry at equal (From, To).
func (e Entry) Rank() int {
	best := rankCustom
	for _, se := range e.SubEntries {
		best = min(best, typeRank(se.Type))
	}
	return best
}

const (
	rankOmission = iota
	rankAddition
	rankVariant
	rankCustom
)

func typeRank(t SubEntryType) int {
	switch t {
	case TypeOmission:
		return rankOmission
	case TypeAddition:
		return rankAddition
	case TypeVariant:
		return rankVariant
	default:
		return rankCustom
	}
}

// Hash returns the content fingerprint of a sub-entry: a 32-bit string hash
// (h = 31*h + c over UTF-16 code units) of "type|text|w1,w2,...". The value
// is persisted in custom overrides, so it must stay stable.
func Hash(t SubEntryType, text string, witnesses []int) int32 {
	var sb strings.Builder
	sb.WriteString(string(t))
	sb.WriteByte('|')
	sb.WriteString(text)
	sb.WriteByte('|')
	for i, w := range witnesses {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(w))
	}
	var h int32
	for _, u := range utf16.Encode([]rune(sb.String())) {
		h = 31*h + int32(u)
	}
	return h
}

// reading is a group of witnesses sharing one text at a column.
type reading struct {
	text      string
	witnesses []int
}

func addReading(groups []reading, text string, w int) []reading {
	for i := range groups {
		if groups[i].text == text {
			groups[i].witnesses = append(groups[i].witnesses, w)
			return groups
		}
	}
	return append(groups, reading{text: text, witnesses: []int{w}})
}

func hasReading(t witness.Token) bool {
	return t.TokenType == witness.TokenWord || t.TokenType == witness.TokenPunctuation
}

// Generate builds the automatic apparatus for the base witness. colMap and
// main are the main-text generator's output for the base witness row.
// Witnesses are visited in the table's witness order; the edition witness is
// compared only when it is the base.
func Generate(ct *ctdata.CtData, base int, colMap []int, main []maintext.Token) ([]Entry, error) {
	baseTokens, err := ctdata.WitnessTokens(ct, base)
	if err != nil {
		return nil, apperrors.Wrap(err, "base witness")
	}
	if len(colMap) != len(baseTokens) {
		return nil, apperrors.NewValidationf("colMap", "%d entries for %d columns", len(colMap), len(baseTokens))
	}

	sigla := ct.Sigla()
	rows := make(map[int][]witness.Token)
	var others []int
	for _, w := range ct.WitnessOrder {
		if w == base || ct.IsEditionWitness(w) {
			continue
		}
		toks, err := ctdata.WitnessTokens(ct, w)
		if err != nil {
			return nil, err
		}
		rows[w] = toks
		others = append(others, w)
	}

	var entries []Entry
	lemmaEntry := make(map[int]int)
	additionEntry := make(map[int]int)

	for c := range baseTokens {
		if colMap[c] == -1 {
			var groups []reading
			for _, w := range others {
				if t := rows[w][c]; hasReading(t) {
					groups = addReading(groups, t.Normalized(), w)
				}
			}
			if len(groups) == 0 {
				continue
			}
			anchor := anchorBefore(c, colMap, baseTokens)
			i, ok := additionEntry[anchor]
			if !ok {
				i = len(entries)
				additionEntry[anchor] = i
				entries = append(entries, Entry{From: anchor, To: anchor, Lemma: maintext.TextAt(main, anchor)})
			}
			for _, g := range groups {
				entries[i].SubEntries = append(entries[i].SubEntries, autoSubEntry(TypeAddition, g.text, g.text, g.witnesses, sigla))
			}
			continue
		}

		b := baseTokens[c]
		if b.TokenType == witness.TokenPunctuation {
			continue
		}
		var omitted []int
		var variants []reading
		for _, w := range others {
			t := rows[w][c]
			switch {
			case !hasReading(t):
				omitted = append(omitted, w)
			case t.Normalized() != b.Normalized():
				variants = addReading(variants, t.Normalized(), w)
			}
		}
		if len(omitted) == 0 && len(variants) == 0 {
			continue
		}
		mi := colMap[c]
		i, ok := lemmaEntry[mi]
		if !ok {
			i = len(entries)
			lemmaEntry[mi] = i
			entries = append(entries, Entry{From: mi, To: mi, Lemma: maintext.TextAt(main, mi)})
		}
		if len(omitted) > 0 {
			entries[i].SubEntries = append(entries[i].SubEntries, autoSubEntry(TypeOmission, "", b.Normalized(), omitted, sigla))
		}
		for _, g := range variants {
			entries[i].SubEntries = append(entries[i].SubEntries, autoSubEntry(TypeVariant, g.text, g.text, g.witnesses, sigla))
		}
	}
	Sort(entries)
	return entries, nil
}

// anchorBefore finds the main-text index of the nearest column left of c that
// is on the main text and not punctuation, or -1.
func anchorBefore(c int, colMap []int, baseTokens []witness.Token) int {
	for p := c - 1; p >= 0; p-- {
		if colMap[p] != -1 && baseTokens[p].TokenType != witness.TokenPunctuation {
			return colMap[p]
		}
	}
	return -1
}

func autoSubEntry(t SubEntryType, text, hashText string, witnesses []int, sigla []string) SubEntry {
	return SubEntry{
		Type:           t,
		Source:         SourceAuto,
		WitnessIndices: witnesses,
		Sigla:          siglaString(witnesses, sigla),
		Text:           text,
		FmtText:        ctdata.PlainFmtText(text),
		Enabled:        true,
		Hash:           Hash(t, hashText, witnesses),
	}
}

func siglaString(witnesses []int, sigla []string) string {
	var sb strings.Builder
	for _, w := range witnesses {
		if w >= 0 && w < len(sigla) {
			sb.WriteString(sigla[w])
		}
	}
	return sb.String()
}

// Sort orders entries by (From, To) with ties broken by Rank.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if a.From != b.From {
			return a.From - b.From
		}
		if a.To != b.To {
			return a.To - b.To
		}
		return a.Rank() - b.Rank()
	})
}
