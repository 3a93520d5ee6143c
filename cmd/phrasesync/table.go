package main

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"phrasesync/internal/api"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// phraseTextWidth wraps long phrase text in timeline tables.
const phraseTextWidth = 60

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, footer ...string) string {
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
			}
		}
		tw.AppendRow(r)
	}
	if len(footer) > 0 {
		f := make(table.Row, columns)
		for i := 0; i < columns && i < len(footer); i++ {
			f[i] = footer[i]
		}
		tw.AppendFooter(f)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		cc := table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
		if headers[i] == "Text" {
			cc.WidthMax = phraseTextWidth
		}
		columnConfigs = append(columnConfigs, cc)
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func renderTimelineTable(tl api.TimelineResponse) string {
	rows := make([][]string, 0, len(tl.Phrases))
	for _, p := range tl.Phrases {
		rows = append(rows, []string{
			strconv.Itoa(p.Index),
			p.Start,
			p.Speaker,
			p.Text,
		})
	}
	return renderTable(
		[]string{"#", "Start", "Speaker", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
		"", tl.Total, strings.Join(tl.Speakers, ", "), strconv.Itoa(len(tl.Phrases))+" phrases",
	)
}

func renderScriptTable(scripts []api.Script) string {
	rows := make([][]string, 0, len(scripts))
	for _, s := range scripts {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			s.Title,
			s.Format,
			strings.Join(s.Speakers, ", "),
			strconv.Itoa(s.PhraseCount),
			s.Total,
		})
	}
	return renderTable(
		[]string{"ID", "Name", "Title", "Format", "Speakers", "Phrases", "Total"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}
