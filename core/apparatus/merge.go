package apparatus

import (
	"github.com/FocuswithJustin/JuniperEdition/core/ctdata"
	"github.com/FocuswithJustin/JuniperEdition/core/maintext"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
)

// MainTextRange translates a collation column range to main-text indices.
// Columns off the main text are skipped. A range with no main-text column
// anchors the way additions do: to the nearest non-punctuation main-text
// index before it, or -1.
func MainTextRange(colMap []int, baseTokens []witness.Token, from, to int) (int, int) {
	first, last := -1, -1
	for c := max(from, 0); c <= to && c < len(colMap); c++ {
		if colMap[c] == -1 {
			continue
		}
		if first == -1 {
			first = colMap[c]
		}
		last = colMap[c]
	}
	if first != -1 {
		return first, last
	}
	a := anchorBefore(min(max(from, 0), len(colMap)), colMap, baseTokens)
	return a, a
}

// Merge applies an editor's custom apparatus to generated entries. Custom
// entries are keyed by collation columns and translated with colMap. Auto and
// Disable sub-entries set the visibility of every generated sub-entry with the
// same hash, wherever it is anchored. FullCustom sub-entries and lemma
// overrides go to the first entry at the translated range, or to a new entry
// when there is none.
func Merge(entries []Entry, custom *ctdata.CustomApparatus, colMap []int, baseTokens []witness.Token, main []maintext.Token, sigla []string) []Entry {
	out := cloneEntries(entries)
	if custom == nil {
		return out
	}
	for _, ce := range custom.Entries {
		for _, cse := range ce.SubEntries {
			if cse.Type != ctdata.SubEntryAuto && cse.Type != ctdata.SubEntryDisable {
				continue
			}
			enabled := cse.Enabled && cse.Type == ctdata.SubEntryAuto
			for i := range out {
				for j := range out[i].SubEntries {
					if se := &out[i].SubEntries[j]; se.Source == SourceAuto && se.Hash == cse.Hash {
						se.Enabled = enabled
					}
				}
			}
		}

		var added []SubEntry
		for _, cse := range ce.SubEntries {
			if cse.Type != ctdata.SubEntryFullCustom {
				continue
			}
			witnesses := append([]int{}, cse.WitnessIndices...)
			added = append(added, SubEntry{
				Type:           TypeFullCustom,
				Source:         SourceCustom,
				WitnessIndices: witnesses,
				Sigla:          siglaString(witnesses, sigla),
				Text:           ctdata.FmtTextString(cse.FmtText),
				FmtText:        append([]ctdata.FmtTextToken{}, cse.FmtText...),
				Enabled:        cse.Enabled,
			})
		}
		lemmaOverride := ce.PreLemma != "" || ce.Lemma != "" || ce.PostLemma != "" || ce.Separator != ""
		if len(added) == 0 && !lemmaOverride {
			continue
		}
		from, to := MainTextRange(colMap, baseTokens, ce.From, ce.To)

		target := -1
		for i := range out {
			if out[i].From == from && out[i].To == to {
				target = i
				break
			}
		}
		if target == -1 {
			target = len(out)
			out = append(out, Entry{From: from, To: to, Lemma: lemmaText(main, from, to)})
		}
		e := &out[target]
		e.SubEntries = append(e.SubEntries, added...)
		if ce.PreLemma != "" {
			e.PreLemma = ce.PreLemma
		}
		if ce.Lemma != "" {
			e.Lemma = ce.Lemma
		}
		if ce.PostLemma != "" {
			e.PostLemma = ce.PostLemma
		}
		if ce.Separator != "" {
			e.Separator = ce.Separator
		}
	}
	Sort(out)
	return out
}

func lemmaText(main []maintext.Token, from, to int) string {
	return maintext.PlainText(maintext.Slice(main, from, to))
}

// Filter drops disabled sub-entries and entries left without sub-entries.
func Filter(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		kept := make([]SubEntry, 0, len(e.SubEntries))
		for _, se := range e.SubEntries {
			if se.Enabled {
				kept = append(kept, se)
			}
		}
		if len(kept) == 0 {
			continue
		}
		e.SubEntries = kept
		out = append(out, e)
	}
	return out
}

// Build runs generation, merges the table's critical-apparatus overrides and
// filters the result.
func Build(ct *ctdata.CtData, base int, colMap []int, main []maintext.Token) (*Apparatus, error) {
	entries, err := Generate(ct, base, colMap, main)
	if err != nil {
		return nil, err
	}
	baseTokens, err := ctdata.WitnessTokens(ct, base)
	if err != nil {
		return nil, err
	}
	merged := Merge(entries, ct.CustomApparatus(ctdata.ApparatusCritical), colMap, baseTokens, main, ct.Sigla())
	return &Apparatus{Type: ctdata.ApparatusCritical, Entries: Filter(merged)}, nil
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		out[i].SubEntries = append([]SubEntry(nil), e.SubEntries...)
	}
	return out
}
