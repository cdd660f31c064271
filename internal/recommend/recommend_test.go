// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-rec/internal/httputil"
	"github.com/pdiddy/paper-rec/pkg/types"
)

const testPaperID = "649def34f8be52c8b66281af98ae884c09aef38"

// --- test helpers ---

// fakeService starts an httptest server that answers every request with
// body and records the last request. It swaps recommendAPIBase for the
// duration of the test.
func fakeService(t *testing.T, status int, body string) (*Fetcher, *http.Request, *int32) {
	t.Helper()
	captured := &http.Request{}
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		*captured = *r
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)

	old := recommendAPIBase
	recommendAPIBase = ts.URL
	t.Cleanup(func() { recommendAPIBase = old })

	return &Fetcher{Client: ts.Client()}, captured, &calls
}

func paperJSON(id, title string, authors int) string {
	as := "["
	for i := 0; i < authors; i++ {
		if i > 0 {
			as += ","
		}
		as += fmt.Sprintf(`{"authorId":"a%d","name":"Author %d"}`, i, i)
	}
	as += "]"
	return fmt.Sprintf(`{"paperId":%q,"title":%q,"abstract":"About %s","year":2021,"authors":%s,"citationCount":7,"url":"https://www.semanticscholar.org/paper/%s"}`,
		id, title, title, as, id)
}

// --- Request construction ---

func TestRecommendRequestParams(t *testing.T) {
	f, captured, _ := fakeService(t, http.StatusOK, `{"recommendedPapers":[]}`)

	_, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, forPaperPath+testPaperID, captured.URL.Path)
	q := captured.URL.Query()
	assert.Equal(t, "2", q.Get("limit"))
	assert.Equal(t, "paperId,title,abstract,year,authors,citationCount,url", q.Get("fields"))
	assert.Equal(t, "all-cs", q.Get("from"))
	_, hasYear := q["year"]
	assert.False(t, hasYear, "year must be omitted when not supplied")
}

func TestRecommendLimitClamp(t *testing.T) {
	tests := []struct {
		limit int
		want  string
	}{
		{1, "1"},
		{2, "2"},
		{499, "499"},
		{500, "500"},
		{501, "500"},
		{1000, "500"},
		{0, "2"},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.limit), func(t *testing.T) {
			f, captured, _ := fakeService(t, http.StatusOK, `{"recommendedPapers":[]}`)

			_, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.want, captured.URL.Query().Get("limit"))
		})
	}
}

func TestRecommendYearPassthrough(t *testing.T) {
	for _, year := range []string{"2020:2023", "2024", "2024-", "-2024", "not-a-year"} {
		t.Run(year, func(t *testing.T) {
			f, captured, _ := fakeService(t, http.StatusOK, `{"recommendedPapers":[]}`)

			_, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 2, Year: year})
			require.NoError(t, err)
			assert.Equal(t, year, captured.URL.Query().Get("year"))
		})
	}
}

func TestRecommendBaseURLOverride(t *testing.T) {
	var path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, `{"recommendedPapers":[]}`)
	}))
	defer ts.Close()

	f := &Fetcher{Client: ts.Client(), BaseURL: ts.URL + "/", UserAgent: "paper-rec-test"}
	_, err := f.Recommend(context.Background(), Request{PaperID: testPaperID})
	require.NoError(t, err)
	assert.Equal(t, forPaperPath+testPaperID, path)
}

func TestRecommendSingleRequest(t *testing.T) {
	f, _, calls := fakeService(t, http.StatusOK, `{"recommendedPapers":[]}`)

	_, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

// --- Filtering and normalization ---

func TestRecommendScenarioOneMissingAuthors(t *testing.T) {
	body := fmt.Sprintf(`{"recommendedPapers":[%s,%s,%s]}`,
		paperJSON("p1", "First", 2),
		paperJSON("p2", "Second", 0),
		paperJSON("p3", "Third", 1))
	f, _, _ := fakeService(t, http.StatusOK, body)

	res, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 2, CallID: "call-1"})
	require.NoError(t, err)

	assert.Len(t, res.Papers, 2)
	assert.Contains(t, res.Papers, "p1")
	assert.Contains(t, res.Papers, "p3")
	assert.NotContains(t, res.Papers, "p2")
	assert.Equal(t, []string{"p1", "p3"}, res.Order)
	assert.Len(t, res.Blocks, 2)
	assert.Equal(t, "call-1", res.CallID)
}

func TestRecommendExclusion(t *testing.T) {
	tests := []struct {
		name  string
		paper string
	}{
		{"title missing", `{"paperId":"x","authors":[{"name":"A"}]}`},
		{"title null", `{"paperId":"x","title":null,"authors":[{"name":"A"}]}`},
		{"title empty", `{"paperId":"x","title":"","authors":[{"name":"A"}]}`},
		{"authors missing", `{"paperId":"x","title":"T"}`},
		{"authors null", `{"paperId":"x","title":"T","authors":null}`},
		{"authors empty", `{"paperId":"x","title":"T","authors":[]}`},
		{"both missing", `{"paperId":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, _ := fakeService(t, http.StatusOK, `{"recommendedPapers":[`+tt.paper+`]}`)

			res, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 2})
			require.NoError(t, err)
			assert.Empty(t, res.Papers)
			assert.Empty(t, res.Blocks)
		})
	}
}

func TestRecommendSentinelForMissingFields(t *testing.T) {
	body := `{"recommendedPapers":[{"paperId":"p1","title":"Only Title","authors":[{"name":"A"}]},
		{"paperId":"p2","title":"Nulls","authors":[{"name":"B"}],"abstract":null,"year":null,"citationCount":null,"url":null}]}`
	f, _, _ := fakeService(t, http.StatusOK, body)

	res, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, res.Papers, 2)

	for _, id := range []string{"p1", "p2"} {
		p := res.Papers[id]
		assert.Equal(t, types.NotAvailable, p.Abstract, id)
		assert.Equal(t, types.NotAvailable, p.Year, id)
		assert.Equal(t, types.NotAvailable, p.CitationCount, id)
		assert.Equal(t, types.NotAvailable, p.URL, id)
	}
}

func TestRecommendNormalizedRecord(t *testing.T) {
	f, _, _ := fakeService(t, http.StatusOK, `{"recommendedPapers":[`+paperJSON("p1", "Attention", 3)+`]}`)

	res, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, types.Recommendation{
		Title:         "Attention",
		Abstract:      "About Attention",
		Year:          "2021",
		CitationCount: "7",
		URL:           "https://www.semanticscholar.org/paper/p1",
	}, res.Papers["p1"])
	assert.Equal(t,
		"Paper ID: p1\nTitle: Attention\nAbstract: About Attention\nYear: 2021\nCitations: 7\nURL: https://www.semanticscholar.org/paper/p1\n",
		res.Blocks[0])
}

func TestRecommendZeroCitationsKept(t *testing.T) {
	body := `{"recommendedPapers":[{"paperId":"p1","title":"T","authors":[{"name":"A"}],"year":0,"citationCount":0}]}`
	f, _, _ := fakeService(t, http.StatusOK, body)

	res, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, "0", res.Papers["p1"].CitationCount)
	assert.Equal(t, "0", res.Papers["p1"].Year)
}

func TestRecommendDuplicatePaperID(t *testing.T) {
	body := fmt.Sprintf(`{"recommendedPapers":[%s,%s,%s]}`,
		paperJSON("p1", "Old", 1),
		paperJSON("p2", "Other", 1),
		paperJSON("p1", "New", 1))
	f, _, _ := fakeService(t, http.StatusOK, body)

	res, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, res.Order)
	assert.Equal(t, "New", res.Papers["p1"].Title)
}

func TestRecommendEmptyList(t *testing.T) {
	for name, body := range map[string]string{
		"empty list":    `{"recommendedPapers":[]}`,
		"field missing": `{"data":[{"paperId":"p1","title":"T","authors":[{"name":"A"}]}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			f, _, _ := fakeService(t, http.StatusOK, body)

			res, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 2})
			require.NoError(t, err)
			assert.Empty(t, res.Papers)
			assert.Empty(t, res.Blocks)
			assert.Contains(t, res.Table, "Paper ID")
			assert.NotContains(t, res.Table, "p1")
		})
	}
}

func TestRecommendIdempotent(t *testing.T) {
	body := fmt.Sprintf(`{"recommendedPapers":[%s,%s]}`, paperJSON("p1", "A", 1), paperJSON("p2", "B", 2))
	f, _, _ := fakeService(t, http.StatusOK, body)

	req := Request{PaperID: testPaperID, Limit: 2, Year: "2020-"}
	first, err := f.Recommend(context.Background(), req)
	require.NoError(t, err)
	second, err := f.Recommend(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Papers, second.Papers)
	assert.Equal(t, first.Table, second.Table)
}

// --- Error cases ---

func TestRecommendHTTPErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    string
	}{
		{"404 unknown paper", http.StatusNotFound, "HTTP 404"},
		{"429 rate limit", http.StatusTooManyRequests, "HTTP 429"},
		{"500 server error", http.StatusInternalServerError, "HTTP 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, calls := fakeService(t, tt.statusCode, `{"error":"nope"}`)

			_, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 2})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var se *httputil.StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.statusCode, se.StatusCode)
			assert.Equal(t, int32(1), atomic.LoadInt32(calls))
		})
	}
}

func TestRecommendMalformedJSON(t *testing.T) {
	f, _, _ := fakeService(t, http.StatusOK, `{invalid json`)

	_, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestRecommendEmptyPaperID(t *testing.T) {
	f := &Fetcher{Client: http.DefaultClient}
	_, err := f.Recommend(context.Background(), Request{PaperID: "  "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestRecommendTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"recommendedPapers":[]}`)
	}))
	defer ts.Close()

	f := &Fetcher{Client: ts.Client(), BaseURL: ts.URL, Timeout: 20 * time.Millisecond}
	_, err := f.Recommend(context.Background(), Request{PaperID: testPaperID, Limit: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// --- Validation ---

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
		limit   int
	}{
		{"defaults limit", Request{PaperID: testPaperID}, false, DefaultLimit},
		{"min limit", Request{PaperID: testPaperID, Limit: 1}, false, 1},
		{"max limit", Request{PaperID: testPaperID, Limit: 500}, false, 500},
		{"limit too large", Request{PaperID: testPaperID, Limit: 501}, true, 501},
		{"negative limit", Request{PaperID: testPaperID, Limit: -1}, true, -1},
		{"missing paper id", Request{Limit: 2}, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRequest))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.limit, req.Limit)
		})
	}
}

func TestNewFetcherDefaults(t *testing.T) {
	f := NewFetcher(types.RecommendConfig{}, nil)
	assert.Equal(t, DefaultTimeout, f.Timeout)
	assert.Equal(t, DefaultTimeout, f.Client.Timeout)
	assert.Equal(t, recommendAPIBase, f.base())
}
