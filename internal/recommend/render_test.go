// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-rec/pkg/types"
)

func samplePapers() (types.Papers, []string) {
	papers := types.Papers{
		"abc": {Title: "Graph Networks", Abstract: types.NotAvailable, Year: "2019", CitationCount: "12", URL: "https://example.org/abc"},
		"def": {Title: "Protein Folding", Abstract: "We fold.", Year: types.NotAvailable, CitationCount: "3", URL: types.NotAvailable},
	}
	return papers, []string{"def", "abc"}
}

func TestRenderBlocksOrder(t *testing.T) {
	papers, order := samplePapers()
	blocks := RenderBlocks(papers, order)

	require.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(blocks[0], "Paper ID: def\nTitle: Protein Folding\n"))
	assert.True(t, strings.HasPrefix(blocks[1], "Paper ID: abc\nTitle: Graph Networks\n"))
	assert.Contains(t, blocks[1], "Abstract: N/A\n")
	assert.Contains(t, blocks[1], "Citations: 12\n")
}

func TestRenderBlocksEmpty(t *testing.T) {
	assert.Empty(t, RenderBlocks(types.Papers{}, nil))
}

func TestRenderTableRows(t *testing.T) {
	papers, order := samplePapers()
	table, err := RenderTable(papers, order)
	require.NoError(t, err)

	for _, h := range TableHeader {
		assert.Contains(t, table, h)
	}
	for id, p := range papers {
		assert.Equal(t, 1, strings.Count(table, "| "+id+" "), "paper %s should appear in exactly one row", id)
		assert.Contains(t, table, p.Title)
	}
	assert.Contains(t, table, "+")
	assert.Less(t, strings.Index(table, "Protein Folding"), strings.Index(table, "Graph Networks"))
}

func TestRenderTableEmpty(t *testing.T) {
	table, err := RenderTable(types.Papers{}, nil)
	require.NoError(t, err)

	assert.Contains(t, table, "Paper ID")
	assert.NotContains(t, table, "N/A")
	assert.NotContains(t, table, "http")
}
