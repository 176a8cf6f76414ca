// Package ctdata holds the collation table: witnesses aligned into shared columns.
//
// The JSON form of CtData is a stable storage contract. Field names such as
// collationMatrix, witnessOrder and customApparatuses must not change, since
// stored tables are decoded and re-encoded by this package.
package ctdata

import (
	"encoding/json"

	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
)

// Empty marks a collation matrix cell that references no token.
const Empty = -1

// TableType says whether a table is a plain collation or an edition.
type TableType string

// Table types.
const (
	TypeCollation TableType = "collation"
	TypeEdition   TableType = "edition"
)

// CtData is the collation table aggregate.
type CtData struct {
	TableID             string            `json:"tableId,omitempty"`
	ChunkID             string            `json:"chunkId,omitempty"`
	Title               string            `json:"title,omitempty"`
	Type                TableType         `json:"type"`
	Lang                string            `json:"lang"`
	Witnesses           []witness.Witness `json:"witnesses"`
	CollationMatrix     [][]int           `json:"collationMatrix"`
	GroupedColumns      [][]int           `json:"groupedColumns"`
	EditionWitnessIndex *int              `json:"editionWitnessIndex,omitempty"`
	WitnessOrder        []int             `json:"witnessOrder"`
	CustomApparatuses   []CustomApparatus `json:"customApparatuses"`
	Archived            bool              `json:"archived,omitempty"`
}

// New creates a table with one empty row per witness and identity witness order.
func New(lang string, witnesses []witness.Witness) *CtData {
	ct := &CtData{
		Type:              TypeCollation,
		Lang:              lang,
		Witnesses:         make([]witness.Witness, len(witnesses)),
		CollationMatrix:   make([][]int, len(witnesses)),
		GroupedColumns:    [][]int{},
		WitnessOrder:      make([]int, len(witnesses)),
		CustomApparatuses: []CustomApparatus{},
	}
	for i, w := range witnesses {
		ct.Witnesses[i] = w.Clone()
		ct.CollationMatrix[i] = []int{}
		ct.WitnessOrder[i] = i
	}
	return ct
}

// Decode parses a stored table. Structural problems are not checked here;
// call Validate and the consistency checker before using the result.
func Decode(data []byte) (*CtData, error) {
	var ct CtData
	if err := json.Unmarshal(data, &ct); err != nil {
		return nil, &apperrors.ParseError{Format: "collation table JSON", Message: err.Error(), Err: err}
	}
	return &ct, nil
}

// Encode serializes the table.
func (ct *CtData) Encode() ([]byte, error) {
	return json.Marshal(ct)
}

// NumColumns returns the column count of the matrix.
func (ct *CtData) NumColumns() int {
	if len(ct.CollationMatrix) == 0 {
		return 0
	}
	return len(ct.CollationMatrix[0])
}

// EditionIndex returns the edition witness index, if the table has one.
func (ct *CtData) EditionIndex() (int, bool) {
	if ct.EditionWitnessIndex == nil {
		return 0, false
	}
	return *ct.EditionWitnessIndex, true
}

// IsEditionWitness reports whether w is the designated edition witness.
func (ct *CtData) IsEditionWitness(w int) bool {
	e, ok := ct.EditionIndex()
	return ok && e == w
}

// Sigla returns the sigla of all witnesses by witness index.
func (ct *CtData) Sigla() []string {
	out := make([]string, len(ct.Witnesses))
	for i, w := range ct.Witnesses {
		out[i] = w.Siglum
	}
	return out
}

// Clone returns a deep copy.
func (ct *CtData) Clone() *CtData {
	cp := *ct
	cp.Witnesses = make([]witness.Witness, len(ct.Witnesses))
	for i, w := range ct.Witnesses {
		cp.Witnesses[i] = w.Clone()
	}
	cp.CollationMatrix = cloneRows(ct.CollationMatrix)
	cp.GroupedColumns = cloneRows(ct.GroupedColumns)
	if ct.EditionWitnessIndex != nil {
		e := *ct.EditionWitnessIndex
		cp.EditionWitnessIndex = &e
	}
	cp.WitnessOrder = append([]int(nil), ct.WitnessOrder...)
	cp.CustomApparatuses = make([]CustomApparatus, len(ct.CustomApparatuses))
	for i, ca := range ct.CustomApparatuses {
		cp.CustomApparatuses[i] = ca.clone()
	}
	if ct.CustomApparatuses == nil {
		cp.CustomApparatuses = nil
	}
	return &cp
}

func cloneRows(rows [][]int) [][]int {
	if rows == nil {
		return nil
	}
	out := make([][]int, len(rows))
	for i, r := range rows {
		out[i] = append([]int{}, r...)
	}
	return out
}

// Validate checks the structural invariants of the table: one equal-length row
// per witness, witness order a permutation, and in-range edition witness,
// grouped columns and custom apparatus bounds. Cell contents are the
// consistency checker's concern.
func (ct *CtData) Validate() error {
	n := len(ct.Witnesses)
	if len(ct.CollationMatrix) != n {
		return apperrors.NewValidationf("collationMatrix", "%d rows for %d witnesses", len(ct.CollationMatrix), n)
	}
	m := ct.NumColumns()
	for i, row := range ct.CollationMatrix {
		if len(row) != m {
			return apperrors.NewValidationf("collationMatrix", "row %d has %d columns, want %d", i, len(row), m)
		}
	}

	if len(ct.WitnessOrder) != n {
		return apperrors.NewValidationf("witnessOrder", "%d entries for %d witnesses", len(ct.WitnessOrder), n)
	}
	seen := make([]bool, n)
	for _, w := range ct.WitnessOrder {
		if w < 0 || w >= n {
			return apperrors.Wrap(apperrors.NewRange("witness", w, n), "witnessOrder")
		}
		if seen[w] {
			return apperrors.NewValidationf("witnessOrder", "witness %d listed twice", w)
		}
		seen[w] = true
	}

	if e, ok := ct.EditionIndex(); ok {
		if e < 0 || e >= n {
			return apperrors.Wrap(apperrors.NewRange("witness", e, n), "editionWitnessIndex")
		}
		if len(ct.Witnesses[e].Tokens) != m {
			return apperrors.NewValidationf("editionWitnessIndex", "edition witness has %d tokens for %d columns", len(ct.Witnesses[e].Tokens), m)
		}
		for c, v := range ct.CollationMatrix[e] {
			if v != c {
				return apperrors.NewValidationf("editionWitnessIndex", "edition witness column %d references token %d", c, v)
			}
		}
	}

	for _, g := range ct.GroupedColumns {
		for _, c := range g {
			if c < 0 || c >= m {
				return apperrors.Wrap(apperrors.NewRange("column", c, m), "groupedColumns")
			}
		}
	}

	for _, ca := range ct.CustomApparatuses {
		for _, e := range ca.Entries {
			if e.From < 0 || e.To >= m || e.From > e.To {
				return apperrors.NewValidationf("customApparatuses", "entry range [%d, %d] outside %d columns", e.From, e.To, m)
			}
		}
	}
	return nil
}

// WitnessTokens returns one token per column for witness w: the referenced
// token, or the empty placeholder for EMPTY cells and dangling references.
func WitnessTokens(ct *CtData, w int) ([]witness.Token, error) {
	if w < 0 || w >= len(ct.Witnesses) || w >= len(ct.CollationMatrix) {
		return nil, apperrors.NewRange("witness", w, len(ct.Witnesses))
	}
	row := ct.CollationMatrix[w]
	tokens := ct.Witnesses[w].Tokens
	out := make([]witness.Token, len(row))
	for c, ref := range row {
		if ref == Empty || ref < 0 || ref >= len(tokens) {
			out[c] = witness.EmptyToken()
			continue
		}
		out[c] = tokens[ref]
	}
	return out, nil
}
