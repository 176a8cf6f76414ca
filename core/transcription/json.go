package transcription

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
)

// wireItem is the flat JSON form shared by all item variants.
type wireItem struct {
	Type      Kind    `json:"type"`
	Seq       int     `json:"seq"`
	Hand      int     `json:"hand,omitempty"`
	Lang      string  `json:"lang,omitempty"`
	Address   Address `json:"address"`
	Text      string  `json:"text,omitempty"`
	AltText   string  `json:"altText,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	Place     string  `json:"place,omitempty"`
	Technique string  `json:"technique,omitempty"`
	MarkType  string  `json:"markType,omitempty"`
	Work      string  `json:"work,omitempty"`
	Chunk     int     `json:"chunk,omitempty"`
	Segment   int     `json:"segment,omitempty"`
	Boundary  string  `json:"boundary,omitempty"`
	Length    int     `json:"length,omitempty"`
}

func toWire(it Item) wireItem {
	b := it.Common()
	w := wireItem{Type: it.Kind(), Seq: b.Seq, Hand: b.Hand, Lang: b.Lang, Address: b.Address}
	switch v := it.(type) {
	case *Text:
		w.Text = v.Text
	case *Rubric:
		w.Text = v.Text
	case *Initial:
		w.Text = v.Text
	case *Sic:
		w.Text, w.AltText = v.Text, v.Correction
	case *Abbreviation:
		w.Text, w.AltText = v.Text, v.Expansion
	case *Unclear:
		w.Text, w.AltText, w.Reason = v.Text, v.AltText, v.Reason
	case *Illegible:
		w.Length, w.Reason = v.Length, v.Reason
	case *Addition:
		w.Text, w.Place = v.Text, string(v.Place)
	case *Deletion:
		w.Text, w.Technique = v.Text, string(v.Technique)
	case *Mark:
		w.MarkType, w.Text = string(v.MarkType), v.Text
	case *ChunkMark:
		w.Work, w.Chunk, w.Segment, w.Boundary = v.Work, v.Chunk, v.Segment, string(v.Boundary)
	case *CharacterGap:
		w.Length = v.Length
	case *ParagraphMark, *NoWordBreak:
	}
	return w
}

func fromWire(w wireItem) (Item, error) {
	base := Base{Seq: w.Seq, Hand: w.Hand, Lang: w.Lang, Address: w.Address}
	switch w.Type {
	case KindText:
		return &Text{Base: base, Text: w.Text}, nil
	case KindRubric:
		return &Rubric{Base: base, Text: w.Text}, nil
	case KindInitial:
		return &Initial{Base: base, Text: w.Text}, nil
	case KindSic:
		return &Sic{Base: base, Text: w.Text, Correction: w.AltText}, nil
	case KindAbbreviation:
		return &Abbreviation{Base: base, Text: w.Text, Expansion: w.AltText}, nil
	case KindUnclear:
		return &Unclear{Base: base, Text: w.Text, AltText: w.AltText, Reason: w.Reason}, nil
	case KindIllegible:
		return &Illegible{Base: base, Length: w.Length, Reason: w.Reason}, nil
	case KindAddition:
		return &Addition{Base: base, Text: w.Text, Place: Placement(w.Place)}, nil
	case KindDeletion:
		return &Deletion{Base: base, Text: w.Text, Technique: Technique(w.Technique)}, nil
	case KindMark:
		return &Mark{Base: base, MarkType: MarkType(w.MarkType), Text: w.Text}, nil
	case KindChunkMark:
		return &ChunkMark{Base: base, Work: w.Work, Chunk: w.Chunk, Segment: w.Segment, Boundary: Boundary(w.Boundary)}, nil
	case KindCharacterGap:
		return &CharacterGap{Base: base, Length: w.Length}, nil
	case KindParagraphMark:
		return &ParagraphMark{Base: base}, nil
	case KindNoWordBreak:
		return &NoWordBreak{Base: base}, nil
	}
	return nil, apperrors.NewUnsupported("item type", string(w.Type))
}

// MarshalItems encodes an item array as a JSON array.
func MarshalItems(items []Item) ([]byte, error) {
	wire := make([]wireItem, len(items))
	for i, it := range items {
		wire[i] = toWire(it)
	}
	return json.Marshal(wire)
}

// UnmarshalItems decodes and validates a JSON item array.
func UnmarshalItems(data []byte) ([]Item, error) {
	var wire []wireItem
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &apperrors.ParseError{Format: "JSON", Message: "item array", Err: err}
	}
	items := make([]Item, 0, len(wire))
	for i, w := range wire {
		it, err := fromWire(w)
		if err != nil {
			return nil, apperrors.Wrapf(err, "item %d", i)
		}
		if err := Validate(it); err != nil {
			return nil, apperrors.Wrapf(err, "item %d", i)
		}
		items = append(items, it)
	}
	return items, nil
}

// Equal reports whether two items have the same content, ignoring sequence
// numbers and source addresses.
func Equal(a, b Item) bool {
	wa, wb := toWire(a), toWire(b)
	wa.Seq, wb.Seq = 0, 0
	wa.Address, wb.Address = Address{}, Address{}
	return wa == wb
}

// Describe returns a short human-readable rendering of an item.
func Describe(it Item) string {
	w := toWire(it)
	switch {
	case w.Text != "" && w.AltText != "":
		return fmt.Sprintf("%s(%q|%q)", w.Type, w.Text, w.AltText)
	case w.Text != "":
		return fmt.Sprintf("%s(%q)", w.Type, w.Text)
	case w.Length > 0:
		return fmt.Sprintf("%s(%d)", w.Type, w.Length)
	case w.Work != "":
		return fmt.Sprintf("%s(%s %s %d)", w.Type, w.Boundary, w.Work, w.Chunk)
	}
	return string(w.Type)
}
