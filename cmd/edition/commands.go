package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/FocuswithJustin/JuniperEdition/core/cache"
	"github.com/FocuswithJustin/JuniperEdition/core/collate"
	"github.com/FocuswithJustin/JuniperEdition/core/ctdata"
	"github.com/FocuswithJustin/JuniperEdition/core/edition"
	"github.com/FocuswithJustin/JuniperEdition/core/witness"
	"github.com/FocuswithJustin/JuniperEdition/internal/logging"
	"github.com/FocuswithJustin/JuniperEdition/internal/validation"
	"github.com/FocuswithJustin/JuniperEdition/internal/witnessio"
)

// TokenizeCmd prints the tokens of each witness.
type TokenizeCmd struct {
	Files []string `arg:"" help:"Witness files (.txt, .tx, .json, .xml)" type:"existingfile"`
	JSON  bool     `help:"Print witnesses as JSON"`
}

func (c *TokenizeCmd) Run(e *env) error {
	ws, err := loadWitnesses(e, c.Files)
	if err != nil {
		return err
	}
	if c.JSON {
		return e.writeJSON(ws)
	}
	for _, w := range ws {
		rows := make([][]string, 0, len(w.Tokens))
		for i, t := range w.Tokens {
			if t.TokenType == witness.TokenWhitespace {
				continue
			}
			norm := ""
			if t.NormalizedText != "" && t.NormalizedText != t.Text {
				norm = t.NormalizedText
			}
			rows = append(rows, []string{strconv.Itoa(i), string(t.TokenType), t.Text, norm})
		}
		e.printf("%s (%d tokens)\n", w.Siglum, len(w.Tokens))
		e.printf("%s\n", renderTable([]string{"#", "Type", "Text", "Normalized"}, rows, []columnAlignment{alignRight}))
	}
	return nil
}

// CollateCmd aligns witnesses into a new collation table.
type CollateCmd struct {
	Files       []string `arg:"" help:"Witness files (.txt, .tx, .json, .xml)" type:"existingfile"`
	Out         string   `short:"o" help:"Output table path (default: stdout)" type:"path"`
	Title       string   `help:"Table title"`
	EditionBase int      `name:"edition-base" help:"Add an edition witness copied from this witness" default:"-1"`
}

func (c *CollateCmd) Run(e *env) error {
	ws, err := loadWitnesses(e, c.Files)
	if err != nil {
		return err
	}
	ct, err := collate.Collate(ws, collate.Options{
		Lang:        e.cfg.Collation.Lang,
		MaxEditCost: e.cfg.Collation.MaxEditCost,
	})
	if err != nil {
		return err
	}
	ct.Title = c.Title
	if c.EditionBase >= 0 {
		if ct, err = ctdata.AddEditionWitness(ct, c.EditionBase, ""); err != nil {
			return err
		}
	}
	logging.Info("collated", "witnesses", len(ws), "columns", ct.NumColumns())
	return e.writeTable(ct, c.Out)
}

// CheckCmd runs the consistency checker on a stored table file.
type CheckCmd struct {
	Table         string `arg:"" help:"Collation table JSON file" type:"existingfile"`
	Repair        bool   `help:"Write the repaired table"`
	InsertColumns bool   `name:"insert-columns" help:"Insert empty columns for tokens that cannot be placed"`
	Out           string `short:"o" help:"Output path for the repaired table (default: stdout)" type:"path"`
}

func (c *CheckCmd) Run(e *env) error {
	ct, err := readTable(c.Table)
	if err != nil {
		return err
	}

	var (
		out    *ctdata.CtData
		report *ctdata.Report
	)
	switch {
	case c.InsertColumns:
		out, report = ctdata.RepairWithColumnInsertion(ct, e.cfg.Collation.InsertColumnRounds)
	case c.Repair:
		out, report = ctdata.CheckAndRepair(ct)
	default:
		report = ctdata.Check(ct)
	}

	if len(report.Repairs) > 0 {
		rows := make([][]string, len(report.Repairs))
		for i, r := range report.Repairs {
			rows[i] = []string{ct.Witnesses[r.Witness].Siglum, string(r.Kind), strconv.Itoa(r.Column), strconv.Itoa(r.Token)}
		}
		fmt.Fprintln(e.errOut, renderTable([]string{"Witness", "Repair", "Column", "Token"}, rows, nil))
	}
	if len(report.InsertedColumns) > 0 {
		fmt.Fprintf(e.errOut, "inserted columns after: %v\n", report.InsertedColumns)
	}
	if err := report.Err(); err != nil {
		return err
	}
	if out == nil {
		if !report.Changed() {
			e.printf("table is consistent\n")
		} else {
			e.printf("%d repairs needed; rerun with --repair\n", len(report.Repairs))
		}
		return nil
	}
	return e.writeTable(out, c.Out)
}

// TableCmd prints the collation matrix.
type TableCmd struct {
	Table string `arg:"" help:"Collation table JSON file" type:"existingfile"`
}

func (c *TableCmd) Run(e *env) error {
	ct, err := readTable(c.Table)
	if err != nil {
		return err
	}
	e.printf("%s\n", renderMatrix(ct))
	return nil
}

// EditionCmd generates the main text and apparatus for a base witness.
type EditionCmd struct {
	Table string `arg:"" help:"Collation table JSON file" type:"existingfile"`
	Base  int    `help:"Base witness index" default:"0"`
	JSON  bool   `help:"Print the edition as JSON"`
}

func (c *EditionCmd) Run(e *env) error {
	ct, err := readTable(c.Table)
	if err != nil {
		return err
	}
	gen := edition.NewGenerator(cache.Config{
		MaxSize: e.cfg.Cache.MaxEntries,
		TTL:     time.Duration(e.cfg.Cache.TTLSeconds) * time.Second,
	})
	ed, err := gen.Generate(ct, c.Base)
	if err != nil {
		return err
	}
	if c.JSON {
		return e.writeJSON(ed)
	}
	e.printf("%s\n\n", ed.Text())
	for _, line := range ed.Lines() {
		e.printf("%s\n", line)
	}
	return nil
}

func loadWitnesses(e *env, paths []string) ([]witness.Witness, error) {
	opts, err := e.witnessOptions()
	if err != nil {
		return nil, err
	}
	return witnessio.LoadFiles(paths, opts)
}

func readTable(path string) (*ctdata.CtData, error) {
	data, _, err := validation.ReadInput(path)
	if err != nil {
		return nil, err
	}
	ct, err := ctdata.Decode(data)
	if err != nil {
		return nil, err
	}
	if err := ct.Validate(); err != nil {
		return nil, err
	}
	return ct, nil
}

func (e *env) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	e.printf("%s\n", data)
	return nil
}

// writeTable writes ct to path, or to the command output when path is empty.
func (e *env) writeTable(ct *ctdata.CtData, path string) error {
	data, err := ct.Encode()
	if err != nil {
		return err
	}
	if path == "" {
		e.printf("%s\n", data)
		return nil
	}
	if err := validation.ValidatePath(path); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	logging.Info("table written", "path", path, "witnesses", len(ct.Witnesses), "columns", ct.NumColumns())
	return nil
}
