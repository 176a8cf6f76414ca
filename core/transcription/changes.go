package transcription

import "github.com/FocuswithJustin/JuniperEdition/core/diff"

// Change is one difference between two versions of an item array.
type Change struct {
	Command  diff.Command
	OldIndex int // -1 for insertions
	NewIndex int // -1 for deletions
	Item     Item
}

// Diff lists the items kept, deleted and inserted between two versions of a
// transcription, comparing items by content.
func Diff(oldItems, newItems []Item) []Change {
	script := diff.Script(oldItems, newItems, Equal)
	changes := make([]Change, 0, len(script))
	for _, op := range script {
		switch op.Command {
		case diff.Keep:
			changes = append(changes, Change{Command: op.Command, OldIndex: op.Index, NewIndex: op.Seq, Item: newItems[op.Seq]})
		case diff.Delete:
			changes = append(changes, Change{Command: op.Command, OldIndex: op.Index, NewIndex: -1, Item: oldItems[op.Index]})
		case diff.Insert:
			changes = append(changes, Change{Command: op.Command, OldIndex: -1, NewIndex: op.Index, Item: newItems[op.Index]})
		}
	}
	return changes
}

// Edits filters out the Keep entries of a change list.
func Edits(changes []Change) []Change {
	var out []Change
	for _, c := range changes {
		if c.Command != diff.Keep {
			out = append(out, c)
		}
	}
	return out
}
