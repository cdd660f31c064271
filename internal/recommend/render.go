// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pdiddy/paper-rec/pkg/types"
)

// TableHeader names the columns of the recommendations table.
var TableHeader = []string{"Paper ID", "Title", "Abstract", "Year", "Citation Count", "URL"}

// RenderBlocks formats one text block per paper in order.
func RenderBlocks(papers types.Papers, order []string) []string {
	blocks := make([]string, 0, len(order))
	for _, id := range order {
		p := papers[id]
		blocks = append(blocks, fmt.Sprintf(
			"Paper ID: %s\nTitle: %s\nAbstract: %s\nYear: %s\nCitations: %s\nURL: %s\n",
			id, p.Title, p.Abstract, p.Year, p.CitationCount, p.URL))
	}
	return blocks
}

// RenderTable draws papers as an ASCII grid with one row per paper. An
// empty set renders the header only.
func RenderTable(papers types.Papers, order []string) (string, error) {
	var buf bytes.Buffer
	table := tablewriter.NewTable(&buf,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.Off,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.On, Right: tw.On, Top: tw.On, Bottom: tw.On},
			Symbols: tw.NewSymbols(tw.StyleASCII),
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader:     tw.On,
					BetweenRows:    tw.On,
					BetweenColumns: tw.On,
				},
			},
		}),
	)

	rows := make([][]string, 0, len(order))
	for _, id := range order {
		p := papers[id]
		rows = append(rows, []string{id, p.Title, p.Abstract, p.Year, p.CitationCount, p.URL})
	}

	table.Header(TableHeader)
	if err := table.Bulk(rows); err != nil {
		return "", err
	}
	if err := table.Render(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
