// Package transcription models the item stream of a diplomatic transcription.
//
// A transcription is an ordered sequence of typed items (plain text, rubrics,
// scribal corrections, additions, deletions, marks, gaps...). Item is a closed
// sum type: every variant lives in this package and callers dispatch with a type
// switch over the concrete types.
package transcription

import (
	"fmt"

	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
)

// Kind identifies the variant of an item in its serialized form.
type Kind string

// Item kinds.
const (
	KindText          Kind = "text"
	KindRubric        Kind = "rubric"
	KindInitial       Kind = "initial"
	KindSic           Kind = "sic"
	KindAbbreviation  Kind = "abbreviation"
	KindUnclear       Kind = "unclear"
	KindIllegible     Kind = "illegible"
	KindAddition      Kind = "addition"
	KindDeletion      Kind = "deletion"
	KindMark          Kind = "mark"
	KindChunkMark     Kind = "chunkMark"
	KindCharacterGap  Kind = "characterGap"
	KindParagraphMark Kind = "paragraphMark"
	KindNoWordBreak   Kind = "noWordBreak"
)

// Address locates an item in the source document.
type Address struct {
	DocID   int `json:"docId,omitempty"`
	PageSeq int `json:"pageSeq,omitempty"`
	Column  int `json:"column,omitempty"`
	Line    int `json:"line,omitempty"`
}

// Base holds the fields shared by all items.
type Base struct {
	Seq     int     `json:"seq"`
	Hand    int     `json:"hand,omitempty"`
	Lang    string  `json:"lang,omitempty"`
	Address Address `json:"address"`
}

// Item is one element of a transcription. The set of implementations is closed.
type Item interface {
	Kind() Kind
	Common() *Base
	sealed()
}

// Text is plain transcribed text.
type Text struct {
	Base
	Text string
}

// Rubric is text written in a distinctive (usually red) ink.
type Rubric struct {
	Base
	Text string
}

// Initial is a decorated initial letter or word.
type Initial struct {
	Base
	Text string
}

// Sic is an erroneous reading together with its correction.
type Sic struct {
	Base
	Text       string
	Correction string
}

// Abbreviation is an abbreviated form together with its expansion.
type Abbreviation struct {
	Base
	Text      string
	Expansion string
}

// Unclear is text that is hard to read, optionally with an alternate reading.
type Unclear struct {
	Base
	Text    string
	AltText string
	Reason  string
}

// Illegible marks a run of characters that cannot be read.
type Illegible struct {
	Base
	Length int
	Reason string
}

// Placement says where an addition was written.
type Placement string

// Addition placements.
const (
	PlaceAbove       Placement = "above"
	PlaceBelow       Placement = "below"
	PlaceInline      Placement = "inline"
	PlaceMarginLeft  Placement = "margin-left"
	PlaceMarginRight Placement = "margin-right"
	PlaceOverflow    Placement = "overflow"
)

// Addition is text added by a scribe or a later hand.
type Addition struct {
	Base
	Text  string
	Place Placement
}

// Technique says how a deletion was made.
type Technique string

// Deletion techniques.
const (
	TechniqueStrikeout Technique = "strikeout"
	TechniqueDotAbove  Technique = "dot-above"
	TechniqueLineAbove Technique = "line-above"
	TechniqueErasure   Technique = "erasure"
)

// Deletion is text struck out in the witness. It is not part of the reading.
type Deletion struct {
	Base
	Text      string
	Technique Technique
}

// MarkType classifies a Mark.
type MarkType string

// Mark types.
const (
	MarkNote      MarkType = "note"
	MarkReference MarkType = "reference"
)

// Mark is an editorial note or reference anchor.
type Mark struct {
	Base
	MarkType MarkType
	Text     string
}

// Boundary says whether a chunk mark opens or closes a chunk.
type Boundary string

// Chunk boundaries.
const (
	BoundaryStart Boundary = "start"
	BoundaryEnd   Boundary = "end"
)

// ChunkMark delimits a chunk of a textual work inside a transcription.
type ChunkMark struct {
	Base
	Work     string
	Chunk    int
	Segment  int
	Boundary Boundary
}

// CharacterGap is a deliberate blank space of Length characters.
type CharacterGap struct {
	Base
	Length int
}

// ParagraphMark ends a paragraph.
type ParagraphMark struct {
	Base
}

// NoWordBreak says that the word before it continues in the next item.
type NoWordBreak struct {
	Base
}

func (i *Text) Kind() Kind          { return KindText }
func (i *Rubric) Kind() Kind        { return KindRubric }
func (i *Initial) Kind() Kind       { return KindInitial }
func (i *Sic) Kind() Kind           { return KindSic }
func (i *Abbreviation) Kind() Kind  { return KindAbbreviation }
func (i *Unclear) Kind() Kind       { return KindUnclear }
func (i *Illegible) Kind() Kind     { return KindIllegible }
func (i *Addition) Kind() Kind      { return KindAddition }
func (i *Deletion) Kind() Kind      { return KindDeletion }
func (i *Mark) Kind() Kind          { return KindMark }
func (i *ChunkMark) Kind() Kind     { return KindChunkMark }
func (i *CharacterGap) Kind() Kind  { return KindCharacterGap }
func (i *ParagraphMark) Kind() Kind { return KindParagraphMark }
func (i *NoWordBreak) Kind() Kind   { return KindNoWordBreak }

func (b *Base) Common() *Base { return b }
func (b *Base) sealed()       {}

var validPlacements = map[Placement]bool{
	PlaceAbove: true, PlaceBelow: true, PlaceInline: true,
	PlaceMarginLeft: true, PlaceMarginRight: true, PlaceOverflow: true,
}

var validTechniques = map[Technique]bool{
	TechniqueStrikeout: true, TechniqueDotAbove: true, TechniqueLineAbove: true, TechniqueErasure: true,
}

var validMarkTypes = map[MarkType]bool{MarkNote: true, MarkReference: true}

// Validate checks the fields a variant requires.
func Validate(it Item) error {
	required := func(field, v string) error {
		if v == "" {
			return apperrors.NewValidationf(field, "%s item requires text", it.Kind())
		}
		return nil
	}
	positive := func(field string, n int) error {
		if n <= 0 {
			return apperrors.NewValidationf(field, "%s item requires a positive length, got %d", it.Kind(), n)
		}
		return nil
	}

	switch v := it.(type) {
	case *Text:
		return required("text", v.Text)
	case *Rubric:
		return required("text", v.Text)
	case *Initial:
		return required("text", v.Text)
	case *Sic:
		return required("text", v.Text)
	case *Abbreviation:
		return required("text", v.Text)
	case *Unclear:
		return required("text", v.Text)
	case *Illegible:
		return positive("length", v.Length)
	case *Addition:
		if err := required("text", v.Text); err != nil {
			return err
		}
		if !validPlacements[v.Place] {
			return &apperrors.ValidationError{Field: "place", Value: string(v.Place), Message: "invalid placement"}
		}
	case *Deletion:
		if err := required("text", v.Text); err != nil {
			return err
		}
		if !validTechniques[v.Technique] {
			return &apperrors.ValidationError{Field: "technique", Value: string(v.Technique), Message: "invalid deletion technique"}
		}
	case *Mark:
		if !validMarkTypes[v.MarkType] {
			return &apperrors.ValidationError{Field: "markType", Value: string(v.MarkType), Message: "invalid mark type"}
		}
	case *ChunkMark:
		if v.Work == "" {
			return apperrors.NewValidation("work", "chunk mark requires a work id")
		}
		if v.Boundary != BoundaryStart && v.Boundary != BoundaryEnd {
			return &apperrors.ValidationError{Field: "boundary", Value: string(v.Boundary), Message: "invalid chunk boundary"}
		}
	case *CharacterGap:
		return positive("length", v.Length)
	case *ParagraphMark, *NoWordBreak:
	default:
		return apperrors.NewUnsupported("item", fmt.Sprintf("%T", it))
	}
	return nil
}
