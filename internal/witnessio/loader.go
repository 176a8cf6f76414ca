// Package witnessio loads witnesses from files for collation.
//
// Four sources are understood, chosen by file extension:
//
//	.json  a transcription item array, or {"siglum", "title", "lang", "items"}
//	.txt   plain text
//	.tx    compact transcription markup
//	.xml   a bundle of <witness siglum="..."> elements with inline markup
//
// Every source except .xml yields one witness whose siglum defaults to the
// file's base name.
package witnessio

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"

	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
	"github.com/FocuswithJustin/JuniperEdition/core/tokenizer"
	"github.com/FocuswithJustin/JuniperEdition/core/transcription"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
	"github.com/FocuswithJustin/JuniperEdition/internal/logging"
	"github.com/FocuswithJustin/JuniperEdition/internal/validation"
)

// Options controls tokenization and normalization of loaded witnesses.
type Options struct {
	Tokenizer   *tokenizer.Tokenizer
	Normalizers []witness.Normalizer
	// Lang is used when a source does not name its own language.
	Lang string
}

// LoadFiles loads every path in order and rejects duplicate sigla.
func LoadFiles(paths []string, opts Options) ([]witness.Witness, error) {
	var out []witness.Witness
	seen := make(map[string]string)
	for _, p := range paths {
		ws, err := LoadFile(p, opts)
		if err != nil {
			return nil, err
		}
		for _, w := range ws {
			if prev, dup := seen[w.Siglum]; dup {
				return nil, apperrors.NewValidationf("siglum", "siglum %q used by both %s and %s", w.Siglum, prev, p)
			}
			seen[w.Siglum] = p
			out = append(out, w)
		}
	}
	return out, nil
}

// LoadFile reads one witness source.
func LoadFile(path string, opts Options) ([]witness.Witness, error) {
	data, ft, err := validation.ReadInput(path)
	if err != nil {
		return nil, apperrors.NewIO("read", path, err)
	}
	siglum := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var ws []witness.Witness
	switch ft {
	case validation.FileTypeXML:
		ws, err = ParseXML(data, opts)
	case validation.FileTypeJSON:
		var w witness.Witness
		w, err = ParseJSON(data, siglum, opts)
		ws = []witness.Witness{w}
	case validation.FileTypeMarkup:
		var w witness.Witness
		w, err = ParseMarkup(string(data), siglum, opts)
		ws = []witness.Witness{w}
	case validation.FileTypeText:
		ws = []witness.Witness{FromText(string(data), siglum, opts)}
	default:
		return nil, apperrors.NewUnsupported("witness source", "unknown extension "+filepath.Ext(path))
	}
	if err != nil {
		var pe *apperrors.ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = path
		}
		return nil, err
	}

	for _, w := range ws {
		if len(w.WordIndices()) == 0 {
			logging.Warn("witness has no words", "path", path, "siglum", w.Siglum)
		}
		logging.Debug("witness loaded", "path", path, "siglum", w.Siglum, "tokens", len(w.Tokens))
	}
	return ws, nil
}

// FromText tokenizes plain text into a witness.
func FromText(text, siglum string, opts Options) witness.Witness {
	return fromItems([]transcription.Item{&transcription.Text{Text: text}}, siglum, "", "", opts)
}

// ParseMarkup parses compact transcription markup into a witness.
func ParseMarkup(src, siglum string, opts Options) (witness.Witness, error) {
	items, err := transcription.Parse(src)
	if err != nil {
		return witness.Witness{}, err
	}
	return fromItems(items, siglum, "", "", opts), nil
}

// jsonWitness is the object form of a JSON witness source.
type jsonWitness struct {
	Siglum string          `json:"siglum"`
	Title  string          `json:"title"`
	Lang   string          `json:"lang"`
	Items  json.RawMessage `json:"items"`
}

// ParseJSON reads a JSON item array or witness object. Items are sorted by
// sequence number before tokenization.
func ParseJSON(data []byte, siglum string, opts Options) (witness.Witness, error) {
	trimmed := bytes.TrimSpace(data)
	var obj jsonWitness
	raw := trimmed
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return witness.Witness{}, &apperrors.ParseError{Format: "JSON", Message: "witness object", Err: err}
		}
		raw = obj.Items
		if obj.Siglum != "" {
			siglum = obj.Siglum
		}
	}
	items, err := transcription.UnmarshalItems(raw)
	if err != nil {
		return witness.Witness{}, err
	}
	if !transcription.IsSorted(items) {
		items = transcription.SortBySeq(items)
	}
	return fromItems(items, siglum, obj.Title, obj.Lang, opts), nil
}

// ParseXML reads an XML witness bundle.
func ParseXML(data []byte, opts Options) ([]witness.Witness, error) {
	doc, err := parseXML(data)
	if err != nil {
		return nil, err
	}
	xws, err := doc.witnesses()
	if err != nil {
		return nil, err
	}
	out := make([]witness.Witness, len(xws))
	for i, xw := range xws {
		out[i] = fromItems(xw.Items, xw.Siglum, xw.Title, xw.Lang, opts)
	}
	return out, nil
}

func fromItems(items []transcription.Item, siglum, title, lang string, opts Options) witness.Witness {
	if lang == "" {
		lang = opts.Lang
	}
	tokens := witness.FromItems(items, opts.Tokenizer)
	return witness.Witness{
		Siglum:      siglum,
		Title:       title,
		WitnessType: witness.WitnessFullTx,
		Lang:        lang,
		Tokens:      witness.Normalize(tokens, opts.Normalizers...),
	}
}
