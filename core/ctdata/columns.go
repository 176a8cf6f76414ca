package ctdata

import (
	"fmt"

	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
)

// InsertColumnsAfter returns a copy of ct with n EMPTY columns inserted after
// column col. The edition witness, if present, gets n empty tokens and keeps
// its identity row. Grouped columns and custom apparatus bounds that lie past
// the insertion point shift right by n. An out-of-range col or n <= 0 leaves
// the table unchanged.
func InsertColumnsAfter(ct *CtData, col, n int) *CtData {
	out := ct.Clone()
	m := ct.NumColumns()
	if col < 0 || col >= m || n <= 0 {
		return out
	}

	blank := make([]int, n)
	for i := range blank {
		blank[i] = Empty
	}
	for w, row := range out.CollationMatrix {
		nr := make([]int, 0, len(row)+n)
		nr = append(nr, row[:col+1]...)
		nr = append(nr, blank...)
		nr = append(nr, row[col+1:]...)
		out.CollationMatrix[w] = nr
	}

	if e, ok := out.EditionIndex(); ok && e >= 0 && e < len(out.Witnesses) {
		tokens := out.Witnesses[e].Tokens
		nt := make([]witness.Token, 0, len(tokens)+n)
		if col+1 <= len(tokens) {
			nt = append(nt, tokens[:col+1]...)
			for range n {
				nt = append(nt, witness.EmptyToken())
			}
			nt = append(nt, tokens[col+1:]...)
		} else {
			nt = append(nt, tokens...)
		}
		out.Witnesses[e].Tokens = nt
		row := out.CollationMatrix[e]
		for c := range row {
			row[c] = c
		}
	}

	for _, g := range out.GroupedColumns {
		for i, c := range g {
			if c > col {
				g[i] = c + n
			}
		}
	}

	for i := range out.CustomApparatuses {
		entries := out.CustomApparatuses[i].Entries
		for j := range entries {
			if entries[j].From > col {
				entries[j].From += n
			}
			if entries[j].To > col {
				entries[j].To += n
			}
		}
	}
	return out
}

// AddEditionWitness returns a copy of ct with an edition witness appended.
// Its tokens start as a copy of the base witness, one token per column, with
// empty tokens where the base has no reading.
func AddEditionWitness(ct *CtData, base int, siglum string) (*CtData, error) {
	if _, ok := ct.EditionIndex(); ok {
		return nil, apperrors.NewValidation("editionWitnessIndex", "table already has an edition witness")
	}
	baseTokens, err := WitnessTokens(ct, base)
	if err != nil {
		return nil, apperrors.Wrap(err, "base witness")
	}

	out := ct.Clone()
	m := ct.NumColumns()
	tokens := make([]witness.Token, m)
	row := make([]int, m)
	for c, t := range baseTokens {
		t.SourceItems = nil
		tokens[c] = t
		row[c] = c
	}
	if siglum == "" {
		siglum = fmt.Sprintf("Ed. (%s)", ct.Witnesses[base].Siglum)
	}

	e := len(out.Witnesses)
	out.Witnesses = append(out.Witnesses, witness.Witness{
		Siglum:      siglum,
		Title:       "Edition",
		WitnessType: witness.WitnessEdition,
		Lang:        ct.Lang,
		Tokens:      tokens,
	})
	out.CollationMatrix = append(out.CollationMatrix, row)
	out.WitnessOrder = append(out.WitnessOrder, e)
	out.EditionWitnessIndex = &e
	out.Type = TypeEdition
	return out, nil
}
