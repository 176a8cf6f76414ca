package transcription

import "sort"

// Insert returns a new item array with it placed after every item whose Seq is
// less than or equal to its own. The input slice is not modified.
func Insert(items []Item, it Item) []Item {
	seq := it.Common().Seq
	pos := sort.Search(len(items), func(i int) bool {
		return items[i].Common().Seq > seq
	})
	out := make([]Item, 0, len(items)+1)
	out = append(out, items[:pos]...)
	out = append(out, it)
	out = append(out, items[pos:]...)
	return out
}

// SortBySeq returns a copy of items stably sorted by sequence number.
func SortBySeq(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Common().Seq < out[j].Common().Seq
	})
	return out
}

// IsSorted reports whether items are in non-decreasing Seq order.
func IsSorted(items []Item) bool {
	for i := 1; i < len(items); i++ {
		if items[i].Common().Seq < items[i-1].Common().Seq {
			return false
		}
	}
	return true
}

// Renumber returns a copy of items whose Seq values are 0..n-1 in array order.
// Items are copied so the caller's values keep their sequence numbers.
func Renumber(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		cp, _ := fromWire(toWire(it))
		cp.Common().Seq = i
		out[i] = cp
	}
	return out
}
