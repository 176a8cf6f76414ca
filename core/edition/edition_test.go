package edition

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/JuniperEdition/core/cache"
	"github.com/FocuswithJustin/JuniperEdition/core/collate"
	"github.com/FocuswithJustin/JuniperEdition/core/ctdata"
	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
)

func wit(siglum, text string) witness.Witness {
	return witness.Witness{Siglum: siglum, WitnessType: witness.WitnessFullTx, Tokens: witness.FromString(text)}
}

func collated(t *testing.T) *ctdata.CtData {
	t.Helper()
	ct, err := collate.Collate([]witness.Witness{
		wit("A", "the cat sat"),
		wit("B", "the dog sat"),
		wit("C", "the sat"),
	}, collate.Options{Lang: "en"})
	if err != nil {
		t.Fatalf("Collate() error: %v", err)
	}
	return ct
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name      string
		base      int
		wantText  string
		wantLines []string
	}{
		{"base A", 0, "the cat sat", []string{"cat] om. C; dog B"}},
		{"base B", 1, "the dog sat", []string{"dog] om. C; cat A"}},
		{"base C", 2, "the sat", []string{"the] add. cat A; add. dog B"}},
	}

	g := NewGenerator(cache.DefaultConfig())
	ct := collated(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed, err := g.Generate(ct, tt.base)
			if err != nil {
				t.Fatalf("Generate() error: %v", err)
			}
			if got := ed.Text(); got != tt.wantText {
				t.Errorf("Text() = %q, want %q", got, tt.wantText)
			}
			if diff := cmp.Diff(tt.wantLines, ed.Lines()); diff != "" {
				t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
			}
			if ed.Siglum != ct.Witnesses[tt.base].Siglum {
				t.Errorf("Siglum = %q", ed.Siglum)
			}
			if len(ed.ColMap) != ct.NumColumns() {
				t.Errorf("ColMap has %d entries for %d columns", len(ed.ColMap), ct.NumColumns())
			}
		})
	}
}

func TestGenerateMemoizes(t *testing.T) {
	g := NewGenerator(cache.DefaultConfig())
	ct := collated(t)

	first, err := g.Generate(ct, 0)
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Generate(ct.Clone(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("identical table did not hit the cache")
	}
	if s := g.Stats(); s.Hits != 1 || s.Misses != 1 {
		t.Errorf("Stats() = %+v, want 1 hit and 1 miss", s)
	}

	changed := ct.Clone()
	changed.Title = "renamed"
	third, err := g.Generate(changed, 0)
	if err != nil {
		t.Fatal(err)
	}
	if third == first {
		t.Error("changed table was served from the cache")
	}
	if _, err := g.Generate(ct, 1); err != nil {
		t.Fatal(err)
	}
	if s := g.Stats(); s.Misses != 3 {
		t.Errorf("Stats().Misses = %d, want 3", s.Misses)
	}
}

func TestGenerateRepairsTable(t *testing.T) {
	ct := ctdata.New("en", []witness.Witness{wit("A", "a b"), wit("B", "x y")})
	// B's token 2 is missing; column 1 is free to take it.
	ct.CollationMatrix = [][]int{{0, 2}, {0, ctdata.Empty}}

	ed, err := NewGenerator(cache.DefaultConfig()).Generate(ct, 0)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !ed.Report.Changed() {
		t.Error("Report.Changed() = false, want repairs")
	}
	if diff := cmp.Diff([]int{0, 2}, ed.Table.CollationMatrix[1]); diff != "" {
		t.Errorf("repaired row mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, ctdata.Empty}, ct.CollationMatrix[1]); diff != "" {
		t.Errorf("input table modified (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a] x B", "b] y B"}, ed.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateErrors(t *testing.T) {
	g := NewGenerator(cache.DefaultConfig())

	unrepairable := ctdata.New("en", []witness.Witness{wit("A", "a b"), wit("B", "x y")})
	unrepairable.CollationMatrix = [][]int{{0, 2}, {ctdata.Empty, 0}}
	_, err := g.Generate(unrepairable, 0)
	if !errors.Is(err, ctdata.ErrTableNeedsRepair) {
		t.Fatalf("Generate(unrepairable) error = %v, want ErrTableNeedsRepair", err)
	}
	var ue *ctdata.UnrepairableError
	if !errors.As(err, &ue) || len(ue.Items) != 1 || ue.Items[0].Token != 2 {
		t.Errorf("UnrepairableError = %+v", ue)
	}
	if g.Stats().Size != 0 {
		t.Error("failed generation was cached")
	}

	if _, err := g.Generate(collated(t), 3); !errors.Is(err, apperrors.ErrOutOfRange) {
		t.Errorf("Generate(base 3) error = %v, want out of range", err)
	}

	bad := collated(t)
	bad.CollationMatrix[1] = bad.CollationMatrix[1][:1]
	if _, err := g.Generate(bad, 0); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Generate(ragged) error = %v, want invalid input", err)
	}
}
