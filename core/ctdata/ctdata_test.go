package ctdata

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
	"github.com/FocuswithJustin/JuniperEdition/internal/logging"
)

func words(ws ...string) []witness.Token {
	out := make([]witness.Token, len(ws))
	for i, w := range ws {
		out[i] = witness.Token{TokenType: witness.TokenWord, Text: w}
	}
	return out
}

func table(rows [][]int, tokens ...[]witness.Token) *CtData {
	ws := make([]witness.Witness, len(tokens))
	for i, t := range tokens {
		ws[i] = witness.Witness{Siglum: string(rune('A' + i)), WitnessType: witness.WitnessFullTx, Tokens: t}
	}
	ct := New("la", ws)
	ct.CollationMatrix = rows
	return ct
}

func TestNew(t *testing.T) {
	ct := New("la", []witness.Witness{{Siglum: "A"}, {Siglum: "B"}})
	if diff := cmp.Diff([]int{0, 1}, ct.WitnessOrder); diff != "" {
		t.Errorf("WitnessOrder mismatch (-want +got):\n%s", diff)
	}
	if ct.NumColumns() != 0 {
		t.Errorf("NumColumns() = %d, want 0", ct.NumColumns())
	}
	if err := ct.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	one := 1
	three := 3
	tests := []struct {
		name   string
		mutate func(ct *CtData)
		field  string
	}{
		{"row count", func(ct *CtData) { ct.CollationMatrix = ct.CollationMatrix[:1] }, "collationMatrix"},
		{"ragged rows", func(ct *CtData) { ct.CollationMatrix[1] = []int{0} }, "collationMatrix"},
		{"order length", func(ct *CtData) { ct.WitnessOrder = []int{0} }, "witnessOrder"},
		{"order duplicate", func(ct *CtData) { ct.WitnessOrder = []int{0, 0} }, "witnessOrder"},
		{"edition tokens", func(ct *CtData) { ct.EditionWitnessIndex = &one }, "editionWitnessIndex"},
		{"custom range", func(ct *CtData) {
			ct.CustomApparatuses = []CustomApparatus{{Type: ApparatusCritical, Entries: []CustomApparatusEntry{{From: 1, To: 0}}}}
		}, "customApparatuses"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := table([][]int{{0, 1}, {0, Empty}}, words("a", "b"), words("a"))
			tt.mutate(ct)
			err := ct.Validate()
			var ve *apperrors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
		})
	}

	t.Run("edition out of range", func(t *testing.T) {
		ct := table([][]int{{0}}, words("a"))
		ct.EditionWitnessIndex = &three
		if err := ct.Validate(); !errors.Is(err, apperrors.ErrOutOfRange) {
			t.Errorf("Validate() error = %v, want ErrOutOfRange", err)
		}
	})
}

func TestWitnessTokens(t *testing.T) {
	ct := table([][]int{{0, Empty, 1, 9}}, words("a", "b"))
	got, err := WitnessTokens(ct, 0)
	if err != nil {
		t.Fatalf("WitnessTokens() error = %v", err)
	}
	want := []witness.Token{words("a")[0], witness.EmptyToken(), words("b")[0], witness.EmptyToken()}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WitnessTokens() mismatch (-want +got):\n%s", diff)
	}
	if _, err := WitnessTokens(ct, 1); !errors.Is(err, apperrors.ErrOutOfRange) {
		t.Errorf("WitnessTokens(1) error = %v, want ErrOutOfRange", err)
	}
}

func TestDecodeEncode(t *testing.T) {
	ct := table([][]int{{0, 1}, {Empty, 0}}, words("a", "b"), words("b"))
	data, err := ct.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	for _, key := range []string{`"collationMatrix"`, `"witnessOrder"`, `"customApparatuses"`, `"groupedColumns"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("encoded table missing %s", key)
		}
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(ct, back); diff != "" {
		t.Errorf("Decode(Encode()) mismatch (-want +got):\n%s", diff)
	}

	_, err = Decode([]byte("{"))
	var pe *apperrors.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("Decode() error = %v, want ParseError", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	ct := table([][]int{{0}}, words("a"))
	ct.GroupedColumns = [][]int{{0}}
	cp := ct.Clone()
	cp.CollationMatrix[0][0] = Empty
	cp.Witnesses[0].Tokens[0].Text = "z"
	cp.GroupedColumns[0][0] = 5
	if ct.CollationMatrix[0][0] != 0 || ct.Witnesses[0].Tokens[0].Text != "a" || ct.GroupedColumns[0][0] != 0 {
		t.Error("Clone() shares state with the original")
	}
}

func TestInsertColumnsAfter(t *testing.T) {
	ct := table([][]int{{0, 1, 2}, {0, Empty, 1}}, words("a", "b", "c"), words("a", "c"))
	ct, err := AddEditionWitness(ct, 0, "")
	if err != nil {
		t.Fatalf("AddEditionWitness() error = %v", err)
	}
	ct.GroupedColumns = [][]int{{0, 1}, {2}}
	ct.CustomApparatuses = []CustomApparatus{{
		Type:    ApparatusCritical,
		Entries: []CustomApparatusEntry{{From: 0, To: 2}, {From: 2, To: 2}},
	}}

	got := InsertColumnsAfter(ct, 1, 2)

	wantRows := [][]int{
		{0, 1, Empty, Empty, 2},
		{0, Empty, Empty, Empty, 1},
		{0, 1, 2, 3, 4},
	}
	if diff := cmp.Diff(wantRows, got.CollationMatrix); diff != "" {
		t.Errorf("CollationMatrix mismatch (-want +got):\n%s", diff)
	}
	ed := got.Witnesses[2].Tokens
	if len(ed) != 5 || !ed[2].IsEmpty() || !ed[3].IsEmpty() || ed[4].Text != "c" {
		t.Errorf("edition tokens = %+v", ed)
	}
	if diff := cmp.Diff([][]int{{0, 1}, {4}}, got.GroupedColumns); diff != "" {
		t.Errorf("GroupedColumns mismatch (-want +got):\n%s", diff)
	}
	entries := got.CustomApparatuses[0].Entries
	if entries[0].From != 0 || entries[0].To != 4 || entries[1].From != 4 || entries[1].To != 4 {
		t.Errorf("custom entries = %+v", entries)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate() after insert error = %v", err)
	}
	if ct.NumColumns() != 3 {
		t.Errorf("input table modified: %d columns", ct.NumColumns())
	}

	for _, tc := range []struct{ col, n int }{{-1, 1}, {3, 1}, {0, 0}} {
		same := InsertColumnsAfter(ct, tc.col, tc.n)
		if diff := cmp.Diff(ct, same); diff != "" {
			t.Errorf("InsertColumnsAfter(%d, %d) changed the table:\n%s", tc.col, tc.n, diff)
		}
	}
}

func TestInsertColumnsAfterKeepsRowSequences(t *testing.T) {
	ct := table([][]int{{0, Empty, 1, 2}, {Empty, 0, Empty, 1}}, words("a", "b", "c"), words("x", "y"))
	for col := 0; col < 4; col++ {
		got := InsertColumnsAfter(ct, col, 3)
		for w := range ct.CollationMatrix {
			if diff := cmp.Diff(nonEmpty(ct.CollationMatrix[w]), nonEmpty(got.CollationMatrix[w])); diff != "" {
				t.Errorf("col %d witness %d sequence mismatch:\n%s", col, w, diff)
			}
		}
		if got.NumColumns() != 7 {
			t.Errorf("col %d: NumColumns() = %d, want 7", col, got.NumColumns())
		}
	}
}

func nonEmpty(row []int) []int {
	var out []int
	for _, v := range row {
		if v != Empty {
			out = append(out, v)
		}
	}
	return out
}

func TestAddEditionWitness(t *testing.T) {
	ct := table([][]int{{0, Empty, 1}, {0, 1, 2}}, words("a", "c"), words("a", "b", "c"))
	ed, err := AddEditionWitness(ct, 0, "Ed")
	if err != nil {
		t.Fatalf("AddEditionWitness() error = %v", err)
	}
	e, ok := ed.EditionIndex()
	if !ok || e != 2 {
		t.Fatalf("EditionIndex() = %d, %v", e, ok)
	}
	if ed.Type != TypeEdition {
		t.Errorf("Type = %q, want %q", ed.Type, TypeEdition)
	}
	toks := ed.Witnesses[2].Tokens
	if toks[0].Text != "a" || !toks[1].IsEmpty() || toks[2].Text != "c" {
		t.Errorf("edition tokens = %+v", toks)
	}
	if err := ed.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if _, err := AddEditionWitness(ed, 0, ""); err == nil {
		t.Error("second AddEditionWitness() succeeded, want error")
	}
	if _, err := AddEditionWitness(ct, 7, ""); !errors.Is(err, apperrors.ErrOutOfRange) {
		t.Errorf("AddEditionWitness(7) error = %v, want ErrOutOfRange", err)
	}
}

func TestCheckAndRepair(t *testing.T) {
	four := words("a", "b", "c", "d")
	tests := []struct {
		name  string
		row   []int
		want  []int
		kinds []RepairKind
	}{
		{"consistent", []int{0, 1, 2, 3}, []int{0, 1, 2, 3}, nil},
		{"place into gap", []int{0, 1, Empty, 3}, []int{0, 1, 2, 3}, []RepairKind{RepairPlaced}},
		{"place with shift", []int{0, 2, 3, Empty}, []int{0, 1, 2, 3}, []RepairKind{RepairPlaced}},
		{"place first", []int{1, Empty, 2, 3}, []int{0, 1, 2, 3}, []RepairKind{RepairPlaced}},
		{"reorder", []int{2, 0, 3, 1}, []int{0, 1, 2, 3}, []RepairKind{RepairReordered, RepairReordered, RepairReordered, RepairReordered}},
		{"duplicate", []int{0, 1, 1, 2, 3}, []int{0, 1, Empty, 2, 3}, []RepairKind{RepairDuplicate}},
		{"out of range", []int{0, 1, 9, 2, 3}, []int{0, 1, Empty, 2, 3}, []RepairKind{RepairOutOfRange}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := make([]int, len(tt.row))
			for i := range other {
				other[i] = Empty
			}
			ct := table([][]int{tt.row, other}, four, nil)
			in := ct.Clone()

			got, report := CheckAndRepair(ct)
			if diff := cmp.Diff(tt.want, got.CollationMatrix[0]); diff != "" {
				t.Errorf("row mismatch (-want +got):\n%s", diff)
			}
			var kinds []RepairKind
			for _, r := range report.Repairs {
				kinds = append(kinds, r.Kind)
			}
			if diff := cmp.Diff(tt.kinds, kinds); diff != "" {
				t.Errorf("repair kinds mismatch (-want +got):\n%s", diff)
			}
			if report.Err() != nil {
				t.Errorf("Err() = %v, want nil", report.Err())
			}
			if diff := cmp.Diff(in, ct); diff != "" {
				t.Errorf("input table modified:\n%s", diff)
			}
			if diff := cmp.Diff(other, got.CollationMatrix[1]); diff != "" {
				t.Errorf("other row changed:\n%s", diff)
			}
		})
	}
}

func TestCheckLogsOnlyWhenRepairing(t *testing.T) {
	var buf bytes.Buffer
	logging.InitLoggerTo(&buf, logging.LevelDebug, logging.FormatJSON)
	defer logging.InitLogger(logging.LevelInfo, logging.FormatJSON)

	ct := table([][]int{{0, Empty, 2}, {Empty, Empty, Empty}}, words("a", "b", "c"), nil)

	report := Check(ct)
	if len(report.Repairs) != 1 || report.Repairs[0].Kind != RepairPlaced {
		t.Fatalf("Check() repairs = %+v, want one placement", report.Repairs)
	}
	if buf.Len() != 0 {
		t.Errorf("Check() logged %q, want nothing", buf.String())
	}

	CheckAndRepair(ct)
	if !strings.Contains(buf.String(), "ct_repair") {
		t.Errorf("CheckAndRepair() log = %q, want a ct_repair record", buf.String())
	}
}

func TestCheckAndRepairIgnoresNonWordTokens(t *testing.T) {
	tokens := []witness.Token{
		{TokenType: witness.TokenWord, Text: "a"},
		{TokenType: witness.TokenWhitespace, Text: " "},
		{TokenType: witness.TokenWord, Text: "b"},
	}
	ct := table([][]int{{0, 2}}, tokens)
	_, report := CheckAndRepair(ct)
	if report.Changed() {
		t.Errorf("Repairs = %+v, want none", report.Repairs)
	}
}

func TestCheckAndRepairSkipsEditionWitness(t *testing.T) {
	ct := table([][]int{{0, 1}}, words("a", "b"))
	ct, err := AddEditionWitness(ct, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	ct.Witnesses[1].Tokens = append(ct.Witnesses[1].Tokens, words("extra")...)
	_, report := CheckAndRepair(ct)
	if report.Changed() || report.Err() != nil {
		t.Errorf("edition witness was checked: %+v", report)
	}
}

func TestCheckAndRepairUnrepairable(t *testing.T) {
	ct := table([][]int{{0, 1, 2}, {0, 1, Empty}}, words("a", "b", "c", "d"), words("a", "b"))
	got, report := CheckAndRepair(ct)

	want := []Unplaced{{Witness: 0, Token: 3, AfterColumn: 2}}
	if diff := cmp.Diff(want, report.Unrepairable); diff != "" {
		t.Errorf("Unrepairable mismatch (-want +got):\n%s", diff)
	}
	err := report.Err()
	var ue *UnrepairableError
	if !errors.As(err, &ue) {
		t.Fatalf("Err() = %v, want *UnrepairableError", err)
	}
	if !errors.Is(err, ErrTableNeedsRepair) {
		t.Errorf("Err() does not wrap ErrTableNeedsRepair")
	}
	if got.NumColumns() != 3 {
		t.Errorf("NumColumns() = %d, checker must not add columns", got.NumColumns())
	}

	fixed, total := RepairWithColumnInsertion(ct, 3)
	if total.Err() != nil {
		t.Fatalf("RepairWithColumnInsertion() Err() = %v", total.Err())
	}
	wantRows := [][]int{{0, 1, 2, 3}, {0, 1, Empty, Empty}}
	if diff := cmp.Diff(wantRows, fixed.CollationMatrix); diff != "" {
		t.Errorf("repaired rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, total.InsertedColumns); diff != "" {
		t.Errorf("InsertedColumns mismatch (-want +got):\n%s", diff)
	}

	_, none := RepairWithColumnInsertion(ct, 0)
	if none.Err() == nil {
		t.Error("RepairWithColumnInsertion(0) fixed the table without inserting")
	}
}

func TestRepairWithColumnInsertionAtFront(t *testing.T) {
	ct := table([][]int{{1, 2}}, words("a", "b", "c"))
	fixed, report := RepairWithColumnInsertion(ct, 2)
	if report.Err() != nil {
		t.Fatalf("Err() = %v", report.Err())
	}
	if diff := cmp.Diff([]int{0, 1, 2}, fixed.CollationMatrix[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckAndRepairIdempotent(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 300; i++ {
		ntok := 1 + r.IntN(6)
		ncol := 1 + r.IntN(9)
		row := make([]int, ncol)
		for c := range row {
			if r.IntN(3) == 0 {
				row[c] = Empty
			} else {
				row[c] = r.IntN(ntok + 2)
			}
		}
		toks := make([]string, ntok)
		for j := range toks {
			toks[j] = "w"
		}
		ct := table([][]int{row}, words(toks...))

		once, r1 := CheckAndRepair(ct)
		twice, r2 := CheckAndRepair(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("row %v not stable:\n%s", row, diff)
		}
		if r2.Changed() {
			t.Fatalf("row %v: second pass repaired %+v", row, r2.Repairs)
		}
		if len(r1.Unrepairable) != len(r2.Unrepairable) {
			t.Fatalf("row %v: unrepairable %v then %v", row, r1.Unrepairable, r2.Unrepairable)
		}

		fixed := once.CollationMatrix[0]
		vals := nonEmpty(fixed)
		for j := 1; j < len(vals); j++ {
			if vals[j] <= vals[j-1] {
				t.Fatalf("row %v repaired to %v: not ascending", row, fixed)
			}
		}
		if len(r1.Unrepairable) == 0 && len(vals) != ntok {
			t.Fatalf("row %v repaired to %v: %d of %d tokens", row, fixed, len(vals), ntok)
		}
	}
}
