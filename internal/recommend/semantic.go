// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/pdiddy/paper-rec/pkg/types"
)

// Semantic Scholar recommendations JSON structures. Optional attributes are
// pointers so a missing or null value can be told apart from a zero one.
type recommendResponse struct {
	RecommendedPapers []recommendedPaper `json:"recommendedPapers"`
}

type recommendedPaper struct {
	PaperID       string           `json:"paperId"`
	Title         *string          `json:"title"`
	Abstract      *string          `json:"abstract"`
	Year          *int             `json:"year"`
	Authors       []semanticAuthor `json:"authors"`
	CitationCount *int             `json:"citationCount"`
	URL           *string          `json:"url"`
}

type semanticAuthor struct {
	AuthorID *string `json:"authorId"`
	Name     string  `json:"name"`
}

// decodeRecommendations parses the response body. A body without a
// recommendedPapers field decodes to an empty slice.
func decodeRecommendations(r io.Reader) ([]recommendedPaper, error) {
	var rr recommendResponse
	if err := json.NewDecoder(r).Decode(&rr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return rr.RecommendedPapers, nil
}

// eligible reports whether p has a non-empty title and at least one author.
func (p recommendedPaper) eligible() bool {
	return p.Title != nil && *p.Title != "" && len(p.Authors) > 0
}

// normalize converts p into a Recommendation, substituting NotAvailable
// for every attribute the service left out.
func (p recommendedPaper) normalize() types.Recommendation {
	rec := types.Recommendation{
		Title:         types.NotAvailable,
		Abstract:      types.NotAvailable,
		Year:          types.NotAvailable,
		CitationCount: types.NotAvailable,
		URL:           types.NotAvailable,
	}
	if p.Title != nil {
		rec.Title = *p.Title
	}
	if p.Abstract != nil {
		rec.Abstract = *p.Abstract
	}
	if p.Year != nil {
		rec.Year = strconv.Itoa(*p.Year)
	}
	if p.CitationCount != nil {
		rec.CitationCount = strconv.Itoa(*p.CitationCount)
	}
	if p.URL != nil {
		rec.URL = *p.URL
	}
	return rec
}

// filterPapers keeps eligible papers keyed by paper ID. A paper ID seen
// twice keeps its first position and the later record.
func filterPapers(recs []recommendedPaper, log *slog.Logger) (types.Papers, []string) {
	papers := make(types.Papers)
	var order []string
	for _, p := range recs {
		if !p.eligible() {
			continue
		}
		if p.PaperID == "" {
			log.Debug("skipping recommendation without paperId", "title", *p.Title)
			continue
		}
		if _, seen := papers[p.PaperID]; !seen {
			order = append(order, p.PaperID)
		}
		papers[p.PaperID] = p.normalize()
	}
	return papers, order
}
