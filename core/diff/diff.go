// Package diff computes shortest edit scripts between two sequences using
// Myers' O(ND) algorithm with a caller-supplied equality predicate.
package diff

import (
	"errors"
	"fmt"
)

// Command is the operation of a single edit script entry.
type Command int

// Edit script commands.
const (
	Delete Command = -1
	Keep   Command = 0
	Insert Command = 1
)

func (c Command) String() string {
	switch c {
	case Delete:
		return "delete"
	case Keep:
		return "keep"
	case Insert:
		return "insert"
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Op is one entry of an edit script.
//
// For Keep and Delete, Index is a position in the source sequence; for Insert it is
// a position in the target sequence. Seq is the position of the element in the
// target sequence, or -1 for deletions.
type Op struct {
	Index   int     `json:"index"`
	Command Command `json:"command"`
	Seq     int     `json:"seq"`
}

// EditScript is an ordered list of edit operations.
type EditScript []Op

// ErrEditDistanceExceeded is returned by ScriptBounded when the sequences differ
// by more than the allowed number of edits.
var ErrEditDistanceExceeded = errors.New("edit distance exceeds limit")

// Script returns a shortest edit script that transforms a into b.
func Script[T any](a, b []T, equal func(T, T) bool) EditScript {
	script, _ := script(a, b, equal, -1)
	return script
}

// ScriptBounded is like Script but gives up once more than maxCost edits are needed.
// A negative maxCost means no limit.
func ScriptBounded[T any](a, b []T, equal func(T, T) bool, maxCost int) (EditScript, error) {
	return script(a, b, equal, maxCost)
}

func script[T any](a, b []T, equal func(T, T) bool, maxCost int) (EditScript, error) {
	n, m := len(a), len(b)
	max := n + m
	if max == 0 {
		return EditScript{}, nil
	}
	limit := max
	if maxCost >= 0 && maxCost < limit {
		limit = maxCost
	}

	offset := max + 1
	v := make([]int, 2*max+3)
	var trace [][]int

	found := false
	for d := 0; d <= limit; d++ {
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && equal(a[x], b[y]) {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				found = true
				break
			}
		}
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)
		if found {
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: more than %d edits between %d and %d elements",
			ErrEditDistanceExceeded, limit, n, m)
	}

	return backtrack(trace, offset, n, m), nil
}

// backtrack walks the saved V arrays from (n, m) back to the origin.
func backtrack(trace [][]int, offset, n, m int) EditScript {
	ops := make([]Op, 0, n+m)
	x, y := n, m
	for d := len(trace) - 1; d >= 0; d-- {
		k := x - y
		if d == 0 {
			for x > 0 && y > 0 {
				x--
				y--
				ops = append(ops, Op{Index: x, Command: Keep, Seq: y})
			}
			break
		}
		prev := trace[d-1]
		var prevK int
		if k == -d || (k != d && prev[offset+k-1] < prev[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := prev[offset+prevK]
		prevY := prevX - prevK
		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, Op{Index: x, Command: Keep, Seq: y})
		}
		if prevK == k+1 {
			ops = append(ops, Op{Index: prevY, Command: Insert, Seq: prevY})
		} else {
			ops = append(ops, Op{Index: prevX, Command: Delete, Seq: -1})
		}
		x, y = prevX, prevY
	}

	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return ops
}

// Stats counts the operations of a script.
type Stats struct {
	Keep   int
	Delete int
	Insert int
}

// Cost is the number of deletions plus insertions.
func (s Stats) Cost() int {
	return s.Delete + s.Insert
}

// Count returns the operation counts of the script.
func (s EditScript) Count() Stats {
	var st Stats
	for _, op := range s {
		switch op.Command {
		case Keep:
			st.Keep++
		case Delete:
			st.Delete++
		case Insert:
			st.Insert++
		}
	}
	return st
}

// Apply replays the script on a, taking inserted elements from b.
func Apply[T any](a, b []T, s EditScript) ([]T, error) {
	out := make([]T, 0, len(b))
	for i, op := range s {
		switch op.Command {
		case Keep, Delete:
			if op.Index < 0 || op.Index >= len(a) {
				return nil, fmt.Errorf("op %d: source index %d out of range", i, op.Index)
			}
			if op.Command == Keep {
				out = append(out, a[op.Index])
			}
		case Insert:
			if op.Index < 0 || op.Index >= len(b) {
				return nil, fmt.Errorf("op %d: target index %d out of range", i, op.Index)
			}
			out = append(out, b[op.Index])
		default:
			return nil, fmt.Errorf("op %d: unknown command %d", i, op.Command)
		}
	}
	return out, nil
}
