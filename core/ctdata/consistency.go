package ctdata

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/FocuswithJustin/JuniperEdition/core/witness"
	"github.com/FocuswithJustin/JuniperEdition/internal/logging"
)

// ErrTableNeedsRepair is returned when a table has word tokens the checker
// cannot place without adding columns.
var ErrTableNeedsRepair = errors.New("collation table needs repair")

// RepairKind classifies a change made by the checker.
type RepairKind string

// Repair kinds.
const (
	RepairOutOfRange RepairKind = "outOfRange"
	RepairDuplicate  RepairKind = "duplicate"
	RepairReordered  RepairKind = "reordered"
	RepairPlaced     RepairKind = "placed"
)

// Repair records one cell rewritten by the checker. Token is the token index
// involved; Column is the cell that changed.
type Repair struct {
	Kind    RepairKind
	Witness int
	Column  int
	Token   int
}

// Unplaced is a word token that had no free cell to go into. AfterColumn is
// where an empty column would let the checker place it.
type Unplaced struct {
	Witness     int
	Token       int
	AfterColumn int
}

// Report is the outcome of a consistency pass.
type Report struct {
	Repairs         []Repair
	Unrepairable    []Unplaced
	InsertedColumns []int
}

// Changed reports whether the pass rewrote any cell.
func (r *Report) Changed() bool {
	return len(r.Repairs) > 0 || len(r.InsertedColumns) > 0
}

// Err returns an *UnrepairableError when tokens remain unplaced.
func (r *Report) Err() error {
	if len(r.Unrepairable) == 0 {
		return nil
	}
	return &UnrepairableError{Items: slices.Clone(r.Unrepairable)}
}

// UnrepairableError lists word tokens missing from the matrix that could not
// be placed in an existing column.
type UnrepairableError struct {
	Items []Unplaced
}

func (e *UnrepairableError) Error() string {
	parts := make([]string, len(e.Items))
	for i, u := range e.Items {
		parts[i] = fmt.Sprintf("witness %d token %d (insert after column %d)", u.Witness, u.Token, u.AfterColumn)
	}
	return fmt.Sprintf("%v: %s", ErrTableNeedsRepair, strings.Join(parts, "; "))
}

func (e *UnrepairableError) Unwrap() error {
	return ErrTableNeedsRepair
}

// Check runs the consistency pass without keeping the repaired table. It
// reports the repairs that CheckAndRepair would make and logs nothing.
func Check(ct *CtData) *Report {
	_, r := checkRows(ct)
	return r
}

// CheckAndRepair verifies every non-edition row and returns a repaired copy.
//
// Per row, in order: references outside the witness's token list are
// cleared, repeated references keep only their first occurrence, non-empty
// cells are re-sorted into ascending order, and word tokens that appear in
// no cell are placed. A missing token goes after the last column holding a
// smaller token index, into the next EMPTY cell to its right; the cells in
// between shift one place right. Tokens with no EMPTY cell to their right
// are reported as unrepairable. Running the pass on its own output changes
// nothing.
func CheckAndRepair(ct *CtData) (*CtData, *Report) {
	out, report := checkRows(ct)
	for _, r := range report.Repairs {
		logging.Repair(string(r.Kind), r.Witness, r.Column, r.Token)
	}
	for _, u := range report.Unrepairable {
		logging.Unrepairable(u.Witness, u.Token, u.AfterColumn)
	}
	return out, report
}

func checkRows(ct *CtData) (*CtData, *Report) {
	out := ct.Clone()
	report := &Report{}
	for w := range out.CollationMatrix {
		if w >= len(out.Witnesses) || out.IsEditionWitness(w) {
			continue
		}
		repairRow(w, out.CollationMatrix[w], out.Witnesses[w].Tokens, report)
	}
	return out, report
}

func repairRow(w int, row []int, tokens []witness.Token, report *Report) {
	for c, v := range row {
		if v != Empty && (v < 0 || v >= len(tokens)) {
			row[c] = Empty
			report.Repairs = append(report.Repairs, Repair{Kind: RepairOutOfRange, Witness: w, Column: c, Token: v})
		}
	}

	seen := make(map[int]bool)
	for c, v := range row {
		if v == Empty {
			continue
		}
		if seen[v] {
			row[c] = Empty
			report.Repairs = append(report.Repairs, Repair{Kind: RepairDuplicate, Witness: w, Column: c, Token: v})
			continue
		}
		seen[v] = true
	}

	var cols, vals []int
	for c, v := range row {
		if v != Empty {
			cols = append(cols, c)
			vals = append(vals, v)
		}
	}
	if !slices.IsSorted(vals) {
		slices.Sort(vals)
		for i, c := range cols {
			if row[c] != vals[i] {
				row[c] = vals[i]
				report.Repairs = append(report.Repairs, Repair{Kind: RepairReordered, Witness: w, Column: c, Token: vals[i]})
			}
		}
	}

	for t, tok := range tokens {
		if tok.TokenType != witness.TokenWord || seen[t] {
			continue
		}
		after := -1
		for c, v := range row {
			if v != Empty && v < t {
				after = c
			}
		}
		slot := -1
		for c := after + 1; c < len(row); c++ {
			if row[c] == Empty {
				slot = c
				break
			}
		}
		if slot < 0 {
			report.Unrepairable = append(report.Unrepairable, Unplaced{Witness: w, Token: t, AfterColumn: max(after, 0)})
			continue
		}
		copy(row[after+2:slot+1], row[after+1:slot])
		row[after+1] = t
		seen[t] = true
		report.Repairs = append(report.Repairs, Repair{Kind: RepairPlaced, Witness: w, Column: after + 1, Token: t})
	}
}

// RepairWithColumnInsertion repeats the consistency pass, inserting one empty
// column for the first unplaced token each round, until the table is
// consistent or maxRounds insertions have been made.
func RepairWithColumnInsertion(ct *CtData, maxRounds int) (*CtData, *Report) {
	total := &Report{}
	cur := ct
	for round := 0; ; round++ {
		out, r := CheckAndRepair(cur)
		total.Repairs = append(total.Repairs, r.Repairs...)
		if len(r.Unrepairable) == 0 || round >= maxRounds || out.NumColumns() == 0 {
			total.Unrepairable = r.Unrepairable
			return out, total
		}
		col := r.Unrepairable[0].AfterColumn
		total.InsertedColumns = append(total.InsertedColumns, col)
		cur = InsertColumnsAfter(out, col, 1)
	}
}
