package transcription

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
)

// The compact transcription markup is plain text with inline tags:
//
//	{sic:kat|cat}          erroneous reading with correction
//	{abbr:dns|dominus}     abbreviation with expansion
//	{unclear:cat|cut}      unclear reading with optional alternate
//	{rubric:Incipit}       rubric; {initial:I} decorated initial
//	{add@margin-left:very} addition; place defaults to above
//	{del@erasure:old}      deletion; technique defaults to strikeout
//	{gap:3} {illegible:4}  blank space / illegible characters
//	{note:see f. 3r}       editorial note mark
//	{chunk@start:AW47|2}   chunk boundary (work, chunk number)
//	{para}                 paragraph end
//	{nwb}                  no word break (word continues in the next item)

type markupDoc struct {
	Segments []*markupSegment `@@*`
}

type markupSegment struct {
	Pos  lexer.Position
	Tag  *markupTag `  @@`
	Text *string    `| @Text`
}

type markupTag struct {
	Open string   `@TagOpen`
	Args []string `( @Arg ( "|" @Arg )* )? "}"`
}

var markupLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "TagOpen", Pattern: `\{[a-zA-Z]+(?:@[a-zA-Z-]+)?:?`, Action: lexer.Push("Tag")},
		{Name: "Text", Pattern: `[^{}]+`},
	},
	"Tag": {
		{Name: "Close", Pattern: `\}`, Action: lexer.Pop()},
		{Name: "Pipe", Pattern: `\|`},
		{Name: "Arg", Pattern: `[^|}]+`},
	},
})

var markupParser = participle.MustBuild[markupDoc](
	participle.Lexer(markupLexer),
)

// Parse reads compact markup into a validated item array with sequence numbers 0..n-1.
func Parse(src string) ([]Item, error) {
	doc, err := markupParser.ParseString("", src)
	if err != nil {
		return nil, &apperrors.ParseError{Format: "markup", Message: err.Error(), Err: err}
	}

	items := make([]Item, 0, len(doc.Segments))
	for _, seg := range doc.Segments {
		var it Item
		if seg.Text != nil {
			it = &Text{Text: *seg.Text}
		} else {
			it, err = tagItem(seg.Tag)
			if err != nil {
				return nil, &apperrors.ParseError{Format: "markup", Message: seg.Pos.String() + ": " + err.Error(), Err: err}
			}
		}
		it.Common().Seq = len(items)
		it.Common().Address.Line = seg.Pos.Line
		if err := Validate(it); err != nil {
			return nil, &apperrors.ParseError{Format: "markup", Message: seg.Pos.String() + ": " + err.Error(), Err: err}
		}
		items = append(items, it)
	}
	return items, nil
}

func tagItem(tag *markupTag) (Item, error) {
	head := strings.TrimSuffix(strings.TrimPrefix(tag.Open, "{"), ":")
	name, qualifier, _ := strings.Cut(head, "@")
	arg := func(i int) string {
		if i < len(tag.Args) {
			return tag.Args[i]
		}
		return ""
	}
	number := func(i int) (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(arg(i)))
		if err != nil {
			return 0, apperrors.NewValidationf(name, "expected a number, got %q", arg(i))
		}
		return n, nil
	}

	switch name {
	case "rubric":
		return &Rubric{Text: arg(0)}, nil
	case "initial":
		return &Initial{Text: arg(0)}, nil
	case "sic":
		return &Sic{Text: arg(0), Correction: arg(1)}, nil
	case "abbr":
		return &Abbreviation{Text: arg(0), Expansion: arg(1)}, nil
	case "unclear":
		return &Unclear{Text: arg(0), AltText: arg(1), Reason: qualifier}, nil
	case "add":
		place := Placement(qualifier)
		if place == "" {
			place = PlaceAbove
		}
		return &Addition{Text: arg(0), Place: place}, nil
	case "del":
		technique := Technique(qualifier)
		if technique == "" {
			technique = TechniqueStrikeout
		}
		return &Deletion{Text: arg(0), Technique: technique}, nil
	case "gap":
		n, err := number(0)
		return &CharacterGap{Length: n}, err
	case "illegible":
		n, err := number(0)
		return &Illegible{Length: n, Reason: qualifier}, err
	case "note":
		return &Mark{MarkType: MarkNote, Text: arg(0)}, nil
	case "chunk":
		n, err := number(1)
		return &ChunkMark{Work: arg(0), Chunk: n, Segment: 1, Boundary: Boundary(qualifier)}, err
	case "para":
		return &ParagraphMark{}, nil
	case "nwb":
		return &NoWordBreak{}, nil
	}
	return nil, apperrors.NewUnsupported("markup tag", name)
}
