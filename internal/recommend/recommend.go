// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend fetches single-paper recommendations from the Semantic
// Scholar recommendations API, keeps the papers that carry a title and at
// least one author, and renders them for the conversation.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/paper-rec/internal/httputil"
	"github.com/pdiddy/paper-rec/pkg/types"
)

// recommendAPIBase is the Semantic Scholar API root. Declared as a var so
// tests can substitute an httptest server.
var recommendAPIBase = "https://api.semanticscholar.org"

const (
	forPaperPath = "/recommendations/v1/papers/forpaper/"

	// recommendFields selects the paper attributes the service returns.
	recommendFields = "paperId,title,abstract,year,authors,citationCount,url"

	// recommendPool is the candidate pool the service draws from.
	recommendPool = "all-cs"

	// MaxLimit is the largest limit the service accepts.
	MaxLimit = 500

	// DefaultLimit is used when a request leaves Limit unset.
	DefaultLimit = 2

	// DefaultTimeout bounds a single recommendations request.
	DefaultTimeout = 10 * time.Second
)

// ErrInvalidRequest wraps every request validation failure.
var ErrInvalidRequest = errors.New("invalid recommendation request")

var validate = validator.New()

// Request holds the parameters of one recommendation lookup.
type Request struct {
	// PaperID is the Semantic Scholar paper ID to get recommendations for.
	PaperID string `json:"paper_id" validate:"required"`

	// Limit is the maximum number of recommendations to return (1-500).
	Limit int `json:"limit" validate:"min=1,max=500"`

	// Year restricts publication years: "2024", "2024-", "-2024" or
	// "2020:2024". It is forwarded to the service verbatim.
	Year string `json:"year,omitempty"`

	// CallID correlates the result with the tool call that asked for it.
	CallID string `json:"tool_call_id,omitempty"`
}

// Validate applies defaults and checks the request against its schema.
func (r *Request) Validate() error {
	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Result is the outcome of one lookup.
type Result struct {
	// CallID is copied from the Request.
	CallID string

	// Papers holds the normalized records keyed by paper ID.
	Papers types.Papers

	// Order lists the keys of Papers in the order the service returned them.
	Order []string

	// Blocks holds one formatted text block per paper, in Order.
	Blocks []string

	// Table is the grid-formatted table of Papers.
	Table string
}

// Fetcher queries the recommendations endpoint.
type Fetcher struct {
	Client *http.Client

	// BaseURL overrides the API root when set.
	BaseURL string

	// UserAgent is sent with each request when set.
	UserAgent string

	// Timeout bounds each request; zero means DefaultTimeout.
	Timeout time.Duration

	Logger *slog.Logger
}

// NewFetcher builds a Fetcher from configuration.
func NewFetcher(cfg types.RecommendConfig, logger *slog.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   timeout,
		Logger:    logger,
	}
}

// Recommend issues one request for papers similar to req.PaperID and
// returns the filtered, rendered result. A transport failure or non-2xx
// response is returned as an error; a response without a
// recommendedPapers field yields an empty result.
func (f *Fetcher) Recommend(ctx context.Context, req Request) (Result, error) {
	log := f.logger()
	if strings.TrimSpace(req.PaperID) == "" {
		return Result{}, fmt.Errorf("%w: paper_id is required", ErrInvalidRequest)
	}
	log.Info("starting single paper recommendations search", "paper_id", req.PaperID)

	params := buildParams(req)
	endpoint := f.base() + forPaperPath + url.PathEscape(req.PaperID) + "?" + params.Encode()

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("creating request: %w", err)
	}
	if f.UserAgent != "" {
		httpReq.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := httputil.Do(ctx, f.Client, httpReq)
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) {
			log.Info("recommendations response status", "paper_id", req.PaperID, "status", se.StatusCode)
		}
		return Result{}, fmt.Errorf("Semantic Scholar recommendations request for %s: %w", req.PaperID, err)
	}
	defer resp.Body.Close()

	log.Info("recommendations response status", "paper_id", req.PaperID, "status", resp.StatusCode)
	log.Info("request params", "params", params.Encode())

	recs, err := decodeRecommendations(resp.Body)
	if err != nil {
		return Result{}, err
	}

	papers, order := filterPapers(recs, log)
	table, err := RenderTable(papers, order)
	if err != nil {
		return Result{}, fmt.Errorf("rendering table: %w", err)
	}

	out := Result{
		CallID: req.CallID,
		Papers: papers,
		Order:  order,
		Blocks: RenderBlocks(papers, order),
		Table:  table,
	}
	log.Info("search results", "count", len(out.Papers), "papers", out.Blocks)
	return out, nil
}

func (f *Fetcher) base() string {
	if f.BaseURL != "" {
		return strings.TrimRight(f.BaseURL, "/")
	}
	return recommendAPIBase
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ClampLimit returns the limit actually sent to the service.
func ClampLimit(limit int) int {
	if limit == 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// buildParams returns the query string for req. Year is only set when the
// caller supplied one.
func buildParams(req Request) url.Values {
	params := url.Values{
		"limit":  {strconv.Itoa(ClampLimit(req.Limit))},
		"fields": {recommendFields},
		"from":   {recommendPool},
	}
	if req.Year != "" {
		params.Set("year", req.Year)
	}
	return params
}
