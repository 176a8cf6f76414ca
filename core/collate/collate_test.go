package collate

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/JuniperEdition/core/ctdata"
	"github.com/FocuswithJustin/JuniperEdition/core/diff"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
)

const E = ctdata.Empty

func wit(siglum, text string) witness.Witness {
	return witness.Witness{Siglum: siglum, WitnessType: witness.WitnessFullTx, Tokens: witness.FromString(text)}
}

func TestCollate(t *testing.T) {
	tests := []struct {
		name      string
		witnesses []witness.Witness
		want      [][]int
	}{
		{
			name:      "single witness",
			witnesses: []witness.Witness{wit("A", "the cat")},
			want:      [][]int{{0, 2}},
		},
		{
			name: "variant omission addition",
			witnesses: []witness.Witness{
				wit("A", "the cat sat"),
				wit("B", "the dog sat"),
				wit("C", "the cat sat down"),
				wit("D", "cat sat"),
			},
			want: [][]int{
				{0, 2, 4, E},
				{0, 2, 4, E},
				{0, 2, 4, 6},
				{E, 0, 2, E},
			},
		},
		{
			name: "shared gap columns",
			witnesses: []witness.Witness{
				wit("A", "the cat"),
				wit("B", "the big black cat"),
				wit("C", "the fat cat"),
			},
			want: [][]int{
				{0, E, E, 2},
				{0, 2, 4, 6},
				{0, 2, E, 4},
			},
		},
		{
			name: "punctuation aligned",
			witnesses: []witness.Witness{
				wit("A", "cat, dog."),
				wit("B", "cat dog."),
			},
			want: [][]int{
				{0, 1, 3, 4},
				{0, E, 2, 3},
			},
		},
		{
			name: "empty base",
			witnesses: []witness.Witness{
				wit("A", ""),
				wit("B", "one two"),
			},
			want: [][]int{
				{E, E},
				{0, 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := Collate(tt.witnesses, Options{Lang: "en"})
			if err != nil {
				t.Fatalf("Collate() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, ct.CollationMatrix); diff != "" {
				t.Errorf("Collate() matrix mismatch (-want +got):\n%s", diff)
			}
			if err := ct.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if _, report := ctdata.CheckAndRepair(ct); report.Changed() || report.Err() != nil {
				t.Errorf("CheckAndRepair() = %+v, want no repairs", report)
			}
		})
	}
}

func TestCollateUsesNormalizedText(t *testing.T) {
	b := wit("B", "Cat sat")
	b.Tokens = witness.Normalize(b.Tokens, witness.CaseFold())
	ct, err := Collate([]witness.Witness{wit("A", "cat sat"), b}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]int{{0, 2}, {0, 2}}, ct.CollationMatrix); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
}

func TestCollateErrors(t *testing.T) {
	if _, err := Collate(nil, Options{}); err == nil {
		t.Error("Collate(nil) succeeded")
	}
	_, err := Collate([]witness.Witness{wit("A", "a b c d"), wit("B", "w x y z")}, Options{MaxEditCost: 2})
	if !errors.Is(err, diff.ErrEditDistanceExceeded) {
		t.Errorf("Collate() error = %v, want ErrEditDistanceExceeded", err)
	}
}

func TestCollateRandomTablesAreConsistent(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	vocab := []string{"a", "b", "c", "d", "."}
	text := func() string {
		n := r.IntN(8)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = vocab[r.IntN(len(vocab))]
		}
		return strings.Join(parts, " ")
	}
	for i := 0; i < 200; i++ {
		ws := []witness.Witness{wit("A", text()), wit("B", text()), wit("C", text())}
		ct, err := Collate(ws, Options{})
		if err != nil {
			t.Fatalf("Collate() error = %v", err)
		}
		if err := ct.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if _, report := ctdata.CheckAndRepair(ct); report.Changed() || report.Err() != nil {
			t.Fatalf("case %d: repairs %+v", i, report)
		}
		for w := range ws {
			var placed int
			for _, v := range ct.CollationMatrix[w] {
				if v != E {
					placed++
				}
			}
			var want int
			for _, tok := range ws[w].Tokens {
				if tok.TokenType != witness.TokenWhitespace {
					want++
				}
			}
			if placed != want {
				t.Fatalf("witness %d: %d tokens placed, want %d", w, placed, want)
			}
		}
	}
}
