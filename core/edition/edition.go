// Package edition runs the edition pipeline over a collation table: repair,
// main text and critical apparatus.
//
// Results are memoized per (table content, base witness). A table is keyed by
// its JSON encoding, so any change to witnesses, matrix or custom apparatus
// yields a fresh computation.
package edition

import (
	"strconv"

	"github.com/FocuswithJustin/JuniperEdition/core/apparatus"
	"github.com/FocuswithJustin/JuniperEdition/core/cache"
	"github.com/FocuswithJustin/JuniperEdition/core/ctdata"
	apperrors "github.com/FocuswithJustin/JuniperEdition/core/errors"
	"github.com/FocuswithJustin/JuniperEdition/core/maintext"
	"github.com/FocuswithJustin/JuniperEdition/internal/logging"
)

// Edition is the generated main text and apparatus of one base witness.
// Values returned by a Generator are shared with its cache and must not be
// modified.
type Edition struct {
	Base      int                  `json:"baseWitnessIndex"`
	Siglum    string               `json:"siglum"`
	MainText  []maintext.Token     `json:"mainText"`
	ColMap    []int                `json:"collationTableToMainText"`
	Apparatus *apparatus.Apparatus `json:"apparatus"`
	// Report lists the repairs applied to the table before generation.
	Report *ctdata.Report `json:"-"`
	// Table is the repaired table the edition was generated from.
	Table *ctdata.CtData `json:"-"`
}

// Text renders the main text as plain text.
func (e *Edition) Text() string {
	return maintext.PlainText(e.MainText)
}

// Lines renders each apparatus entry on its own line.
func (e *Edition) Lines() []string {
	out := make([]string, len(e.Apparatus.Entries))
	for i, entry := range e.Apparatus.Entries {
		out[i] = apparatus.FormatEntry(entry)
	}
	return out
}

// Generator produces editions and memoizes them.
type Generator struct {
	cache cache.Cache[cache.Key, *Edition]
}

// NewGenerator creates a generator whose memo cache uses cfg.
func NewGenerator(cfg cache.Config) *Generator {
	return &Generator{cache: cache.NewLRUCache[cache.Key, *Edition](cfg)}
}

// Stats reports memo cache statistics.
func (g *Generator) Stats() cache.Stats {
	return g.cache.Stats()
}

// Generate builds the edition of ct with witness base as the main text.
//
// The table is first passed through the consistency checker. If a row cannot
// be repaired the returned error wraps ctdata.ErrTableNeedsRepair and carries
// the unplaced tokens; ct itself is never modified.
func (g *Generator) Generate(ct *ctdata.CtData, base int) (*Edition, error) {
	if err := ct.Validate(); err != nil {
		return nil, err
	}
	if base < 0 || base >= len(ct.Witnesses) {
		return nil, apperrors.NewRange("base witness", base, len(ct.Witnesses))
	}
	data, err := ct.Encode()
	if err != nil {
		return nil, apperrors.Wrap(err, "encode table")
	}
	key := cache.KeyOf(data, []byte(strconv.Itoa(base)))

	return cache.GetOrCompute(g.cache, key, func() (*Edition, error) {
		logging.Debug("generating edition", "table", ct.TableID, "base", base, "key", key.String())
		return generate(ct, base)
	})
}

func generate(ct *ctdata.CtData, base int) (*Edition, error) {
	repaired, report := ctdata.CheckAndRepair(ct)
	if err := report.Err(); err != nil {
		return nil, apperrors.Wrap(err, "generate edition")
	}

	tokens, err := ctdata.WitnessTokens(repaired, base)
	if err != nil {
		return nil, err
	}
	main, colMap := maintext.Generate(tokens)
	app, err := apparatus.Build(repaired, base, colMap, main)
	if err != nil {
		return nil, err
	}
	return &Edition{
		Base:      base,
		Siglum:    repaired.Witnesses[base].Siglum,
		MainText:  main,
		ColMap:    colMap,
		Apparatus: app,
		Report:    report,
		Table:     repaired,
	}, nil
}
