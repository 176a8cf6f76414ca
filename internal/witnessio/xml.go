package witnessio

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
	"github.com/FocuswithJustin/JuniperEdition/core/transcription"
)

// witnessXPath selects the witness elements of a bundle.
const witnessXPath = "//witness"

// document is a parsed XML witness bundle.
type document struct {
	root *xmlquery.Node
}

func parseXML(data []byte) (*document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &apperrors.ParseError{Format: "xml", Message: err.Error(), Err: err}
	}
	return &document{root: root}, nil
}

// query runs a compiled XPath expression against the whole document.
func (d *document) query(expr string) ([]*xmlquery.Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	return xmlquery.QuerySelectorAll(d.root, compiled), nil
}

// xmlWitness is a witness element before tokenization.
type xmlWitness struct {
	Siglum string
	Title  string
	Lang   string
	Items  []transcription.Item
}

func (d *document) witnesses() ([]xmlWitness, error) {
	nodes, err := d.query(witnessXPath)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, &apperrors.ParseError{Format: "xml", Message: "no <witness> elements"}
	}

	out := make([]xmlWitness, 0, len(nodes))
	for i, n := range nodes {
		siglum := strings.TrimSpace(n.SelectAttr("siglum"))
		if siglum == "" {
			return nil, apperrors.NewValidationf("siglum", "witness element %d has no siglum", i)
		}
		w := &itemWalker{line: 1}
		w.walk(n)
		if w.err != nil {
			return nil, &apperrors.ParseError{Format: "xml", Message: fmt.Sprintf("witness %s: %v", siglum, w.err), Err: w.err}
		}
		out = append(out, xmlWitness{
			Siglum: siglum,
			Title:  n.SelectAttr("title"),
			Lang:   n.SelectAttr("lang"),
			Items:  w.items,
		})
	}
	return out, nil
}

// itemWalker turns the inline content of a witness element into items.
type itemWalker struct {
	items []transcription.Item
	line  int
	err   error
}

func (w *itemWalker) add(it transcription.Item) {
	if w.err != nil {
		return
	}
	it.Common().Seq = len(w.items)
	it.Common().Address.Line = w.line
	if err := transcription.Validate(it); err != nil {
		w.err = err
		return
	}
	w.items = append(w.items, it)
}

func (w *itemWalker) walk(parent *xmlquery.Node) {
	for n := parent.FirstChild; n != nil && w.err == nil; n = n.NextSibling {
		switch n.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if n.Data == "" {
				continue
			}
			w.add(&transcription.Text{Text: n.Data})
			w.line += strings.Count(n.Data, "\n")
		case xmlquery.ElementNode:
			w.element(n)
		}
	}
}

func (w *itemWalker) element(n *xmlquery.Node) {
	text := n.InnerText()
	switch n.Data {
	case "sic":
		w.add(&transcription.Sic{Text: text, Correction: n.SelectAttr("corr")})
	case "abbr":
		w.add(&transcription.Abbreviation{Text: text, Expansion: n.SelectAttr("expan")})
	case "add":
		place := transcription.Placement(n.SelectAttr("place"))
		if place == "" {
			place = transcription.PlaceInline
		}
		w.add(&transcription.Addition{Text: text, Place: place})
	case "del":
		tech := transcription.Technique(n.SelectAttr("rend"))
		if tech == "" {
			tech = transcription.TechniqueStrikeout
		}
		w.add(&transcription.Deletion{Text: text, Technique: tech})
	case "unclear":
		w.add(&transcription.Unclear{Text: text, AltText: n.SelectAttr("alt"), Reason: n.SelectAttr("reason")})
	case "gap":
		length, err := quantity(n)
		if err != nil {
			w.err = err
			return
		}
		if reason := n.SelectAttr("reason"); reason == "illegible" {
			w.add(&transcription.Illegible{Length: length, Reason: reason})
		} else {
			w.add(&transcription.CharacterGap{Length: length})
		}
	case "hi":
		switch n.SelectAttr("rend") {
		case "rubric":
			w.add(&transcription.Rubric{Text: text})
		case "initial":
			w.add(&transcription.Initial{Text: text})
		default:
			w.walk(n)
		}
	case "note":
		w.add(&transcription.Mark{MarkType: transcription.MarkNote, Text: text})
	case "lb":
		if n.SelectAttr("break") == "no" {
			w.add(&transcription.NoWordBreak{})
			w.line++
			return
		}
		w.add(&transcription.Text{Text: "\n"})
		w.line++
	case "p":
		w.walk(n)
		w.add(&transcription.ParagraphMark{})
	case "pb", "cb":
	default:
		w.walk(n)
	}
}

func quantity(n *xmlquery.Node) (int, error) {
	q := n.SelectAttr("quantity")
	if q == "" {
		return 1, nil
	}
	v, err := strconv.Atoi(q)
	if err != nil {
		return 0, apperrors.NewValidationf("quantity", "gap quantity %q is not a number", q)
	}
	return v, nil
}
