// Package collate builds an initial collation table by aligning every witness
// against the first one.
package collate

import (
	"github.com/FocuswithJustin/JuniperEdition/core/ctdata"
	"github.com/FocuswithJustin/JuniperEdition/core/diff"
	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
)

// Options controls alignment.
type Options struct {
	Lang string
	// MaxEditCost bounds the diff between the first witness and any other.
	// Zero or negative means no bound.
	MaxEditCost int
}

// Collate aligns witnesses into a new table. Word and punctuation tokens are
// aligned on normalized text; whitespace is left out of the matrix. Tokens a
// witness has in place of a base token share its column; remaining insertions
// open gap columns shared by all witnesses.
func Collate(witnesses []witness.Witness, opts Options) (*ctdata.CtData, error) {
	if len(witnesses) == 0 {
		return nil, apperrors.NewValidation("witnesses", "nothing to collate")
	}
	maxCost := opts.MaxEditCost
	if maxCost <= 0 {
		maxCost = -1
	}

	idx := make([][]int, len(witnesses))
	seqs := make([][]witness.Token, len(witnesses))
	for w, wit := range witnesses {
		for i, t := range wit.Tokens {
			if t.TokenType == witness.TokenWord || t.TokenType == witness.TokenPunctuation {
				idx[w] = append(idx[w], i)
				seqs[w] = append(seqs[w], t)
			}
		}
	}

	n := len(seqs[0])
	aligned := make([][]int, len(witnesses))
	gaps := make([][][]int, len(witnesses))
	for w := range witnesses {
		aligned[w] = make([]int, n)
		gaps[w] = make([][]int, n+1)
		if w == 0 {
			for i := range aligned[w] {
				aligned[w][i] = i
			}
			continue
		}
		script, err := diff.ScriptBounded(seqs[0], seqs[w], sameReading, maxCost)
		if err != nil {
			return nil, apperrors.Wrapf(err, "aligning witness %q", witnesses[w].Siglum)
		}
		align(script, aligned[w], gaps[w])
	}

	width := make([]int, n+1)
	for k := range width {
		for w := range witnesses {
			width[k] = max(width[k], len(gaps[w][k]))
		}
	}

	ct := ctdata.New(opts.Lang, witnesses)
	for w := range witnesses {
		var row []int
		ref := func(j int) int {
			if j < 0 {
				return ctdata.Empty
			}
			return idx[w][j]
		}
		for k := 0; k <= n; k++ {
			for g := 0; g < width[k]; g++ {
				if g < len(gaps[w][k]) {
					row = append(row, ref(gaps[w][k][g]))
				} else {
					row = append(row, ctdata.Empty)
				}
			}
			if k < n {
				row = append(row, ref(aligned[w][k]))
			}
		}
		if row == nil {
			row = []int{}
		}
		ct.CollationMatrix[w] = row
	}
	return ct, nil
}

func sameReading(a, b witness.Token) bool {
	return a.Normalized() == b.Normalized()
}

// align turns an edit script into per-base-position alignments. Within a run
// of edits between two kept tokens, deleted base tokens are paired in order
// with inserted tokens; leftover insertions go to the gap after the run.
// aligned[i] is the target position aligned to base position i or -1;
// gaps[k] lists target positions placed before base position k.
func align(script diff.EditScript, aligned []int, gaps [][]int) {
	for i := range aligned {
		aligned[i] = -1
	}
	var dels, ins []int
	flush := func(next int) {
		p := min(len(dels), len(ins))
		for i := 0; i < p; i++ {
			aligned[dels[i]] = ins[i]
		}
		gaps[next] = append(gaps[next], ins[p:]...)
		dels, ins = dels[:0], ins[:0]
	}
	for _, op := range script {
		switch op.Command {
		case diff.Delete:
			dels = append(dels, op.Index)
		case diff.Insert:
			ins = append(ins, op.Index)
		case diff.Keep:
			flush(op.Index)
			aligned[op.Index] = op.Seq
		}
	}
	flush(len(aligned))
}
