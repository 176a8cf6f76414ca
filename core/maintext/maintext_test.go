package maintext

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/JuniperEdition/core/witness"
)

func word(s string) witness.Token  { return witness.Token{TokenType: witness.TokenWord, Text: s} }
func punct(s string) witness.Token { return witness.Token{TokenType: witness.TokenPunctuation, Text: s} }

var glue = Token{Type: TypeGlue, CollationTableIndex: -1}

func text(s string, col int) Token { return Token{Type: TypeText, Text: s, CollationTableIndex: col} }

func TestGenerate(t *testing.T) {
	tests := []struct {
		name    string
		input   []witness.Token
		want    []Token
		wantMap []int
	}{
		{
			name:    "empty",
			input:   nil,
			want:    []Token{},
			wantMap: []int{},
		},
		{
			name:    "words get glue",
			input:   []witness.Token{word("a"), word("b")},
			want:    []Token{text("a", 0), glue, text("b", 1)},
			wantMap: []int{0, 1},
		},
		{
			name:    "closing punctuation attaches",
			input:   []witness.Token{word("a"), punct(".")},
			want:    []Token{text("a", 0), text(".", 1)},
			wantMap: []int{0, 1},
		},
		{
			name:    "other punctuation is glued",
			input:   []witness.Token{word("a"), punct("("), word("b"), punct(")")},
			want:    []Token{text("a", 0), glue, text("(", 1), glue, text("b", 2), glue, text(")", 3)},
			wantMap: []int{0, 1, 2, 3},
		},
		{
			name:    "arabic comma attaches",
			input:   []witness.Token{word("قال"), punct("،"), word("ثم")},
			want:    []Token{text("قال", 0), text("،", 1), glue, text("ثم", 2)},
			wantMap: []int{0, 1, 2},
		},
		{
			name: "empty and whitespace skipped",
			input: []witness.Token{
				witness.EmptyToken(), word("a"), {TokenType: witness.TokenWhitespace, Text: " "},
				witness.EmptyToken(), word("b"),
			},
			want:    []Token{text("a", 1), glue, text("b", 4)},
			wantMap: []int{-1, 0, -1, -1, 1},
		},
		{
			name:    "leading punctuation has no glue",
			input:   []witness.Token{punct("¶"), word("a")},
			want:    []Token{text("¶", 0), glue, text("a", 1)},
			wantMap: []int{0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gotMap := Generate(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Generate() main text mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantMap, gotMap); diff != "" {
				t.Errorf("Generate() column map mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	main, _ := Generate([]witness.Token{word("in"), word("principio"), punct(","), word("erat"), punct(".")})
	if got, want := PlainText(main), "in principio, erat."; got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}
}

func TestSlice(t *testing.T) {
	main, _ := Generate([]witness.Token{word("a"), word("b"), punct("."), word("c")})
	if got, want := PlainText(Slice(main, 1, 2)), "b."; got != want {
		t.Errorf("Slice(1, 2) = %q, want %q", got, want)
	}
	if got, want := PlainText(Slice(main, 0, 3)), "a b. c"; got != want {
		t.Errorf("Slice(0, 3) = %q, want %q", got, want)
	}
	if got := Slice(main, 2, 1); got != nil {
		t.Errorf("Slice(2, 1) = %v, want nil", got)
	}
	if got := Slice(main, -1, 0); got != nil {
		t.Errorf("Slice(-1, 0) = %v, want nil", got)
	}
}

func TestTextAtAndIsPunctuation(t *testing.T) {
	input := []witness.Token{word("a"), punct(".")}
	main, _ := Generate(input)
	if got := TextAt(main, 1); got != "." {
		t.Errorf("TextAt(1) = %q, want %q", got, ".")
	}
	if got := TextAt(main, 5); got != "" {
		t.Errorf("TextAt(5) = %q, want empty", got)
	}
	if IsPunctuation(main, 0, input) {
		t.Error("IsPunctuation(0) = true, want false")
	}
	if !IsPunctuation(main, 1, input) {
		t.Error("IsPunctuation(1) = false, want true")
	}
}
