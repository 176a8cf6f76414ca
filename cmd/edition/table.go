package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/FocuswithJustin/JuniperEdition/core/ctdata"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderMatrix lays out one row per witness in display order and one column
// per collation column. Empty cells print as "-".
func renderMatrix(ct *ctdata.CtData) string {
	m := ct.NumColumns()
	headers := make([]string, m+1)
	headers[0] = "Siglum"
	for c := 0; c < m; c++ {
		headers[c+1] = strconv.Itoa(c)
	}

	sigla := ct.Sigla()
	rows := make([][]string, 0, len(ct.WitnessOrder))
	for _, w := range ct.WitnessOrder {
		tokens, err := ctdata.WitnessTokens(ct, w)
		if err != nil {
			continue
		}
		row := make([]string, m+1)
		row[0] = sigla[w]
		for c, t := range tokens {
			if t.IsEmpty() {
				row[c+1] = "-"
				continue
			}
			row[c+1] = t.Text
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, nil)
}
