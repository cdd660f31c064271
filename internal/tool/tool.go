// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tool exposes the recommendation fetcher to an agent orchestrator.
// The orchestrator supplies a tool call ID and JSON-decoded arguments; the
// tool validates them, fetches recommendations, and emits the state update
// tagged with the call ID.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/pdiddy/paper-rec/internal/recommend"
	"github.com/pdiddy/paper-rec/internal/state"
	"github.com/pdiddy/paper-rec/pkg/types"
)

// Name is the identifier the orchestrator uses to route calls to this tool.
const Name = "get_single_paper_recommendations"

// Recommender fetches recommendations for one paper.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (recommend.Result, error)
}

// ToolResult is returned to the orchestrator for every call.
type ToolResult struct {
	// CallID echoes the tool call this result answers.
	CallID string

	// ForLLM is the message content handed back to the model.
	ForLLM string

	// Papers is the value written to the "papers" state slot.
	Papers types.Papers

	IsError bool
	Err     error
}

// ErrorResult wraps err as a failed call.
func ErrorResult(callID string, err error) *ToolResult {
	return &ToolResult{CallID: callID, ForLLM: err.Error(), IsError: true, Err: err}
}

// RecommendTool is the single-paper recommendation tool.
type RecommendTool struct {
	rec  Recommender
	emit state.Emitter
	log  *slog.Logger
}

// NewRecommendTool wires rec and emit into a tool. A nil logger discards output.
func NewRecommendTool(rec Recommender, emit state.Emitter, logger *slog.Logger) *RecommendTool {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RecommendTool{rec: rec, emit: emit, log: logger}
}

func (t *RecommendTool) Name() string { return Name }

func (t *RecommendTool) Description() string {
	return "Get paper recommendations based on a single paper. Returns a table of " +
		"recommended papers with title, abstract, year, citation count and URL, " +
		"and stores them in the conversation's papers state."
}

// Parameters returns the JSON schema of the tool arguments.
func (t *RecommendTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"paper_id": map[string]any{
				"type":        "string",
				"description": "Semantic Scholar Paper ID to get recommendations for (40-character string)",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of recommendations to return",
				"minimum":     1,
				"maximum":     recommend.MaxLimit,
				"default":     recommend.DefaultLimit,
			},
			"year": map[string]any{
				"type": "string",
				"description": "Year range in format: YYYY for specific year, " +
					"YYYY- for papers after year, -YYYY for papers before year, or YYYY:YYYY for range",
			},
		},
		"required": []string{"paper_id"},
	}
}

// Execute decodes args, runs the lookup and emits the update. A missing
// callID is replaced with a generated one so the update stays addressable.
func (t *RecommendTool) Execute(ctx context.Context, callID string, args map[string]any) *ToolResult {
	if callID == "" {
		callID = uuid.NewString()
	}

	req, err := decodeArgs(args)
	if err != nil {
		return ErrorResult(callID, err)
	}
	req.CallID = callID

	res, err := t.Run(ctx, req)
	if err != nil {
		return ErrorResult(callID, err)
	}
	return &ToolResult{CallID: callID, ForLLM: res.Table, Papers: res.Papers}
}

// Run validates req, fetches recommendations and emits the state update.
// Nothing is emitted when validation or the fetch fails.
func (t *RecommendTool) Run(ctx context.Context, req recommend.Request) (recommend.Result, error) {
	if err := req.Validate(); err != nil {
		return recommend.Result{}, err
	}

	res, err := t.rec.Recommend(ctx, req)
	if err != nil {
		t.log.Error("recommendation lookup failed", "paper_id", req.PaperID, "tool_call_id", req.CallID, "error", err)
		return recommend.Result{}, err
	}

	if t.emit != nil {
		update := state.NewUpdate(req.CallID, res.Papers, res.Order, res.Table)
		if err := t.emit.Emit(ctx, update); err != nil {
			return res, fmt.Errorf("emitting state update: %w", err)
		}
	}
	return res, nil
}

// decodeArgs converts JSON-decoded tool arguments into a Request.
func decodeArgs(args map[string]any) (recommend.Request, error) {
	var req recommend.Request

	switch v := args["paper_id"].(type) {
	case string:
		req.PaperID = v
	case nil:
	default:
		return req, fmt.Errorf("%w: paper_id must be a string", recommend.ErrInvalidRequest)
	}

	if raw, ok := args["limit"]; ok && raw != nil {
		limit, err := toInt(raw)
		if err != nil {
			return req, fmt.Errorf("%w: limit: %v", recommend.ErrInvalidRequest, err)
		}
		req.Limit = limit
	}

	switch v := args["year"].(type) {
	case string:
		req.Year = v
	case nil:
	default:
		return req, fmt.Errorf("%w: year must be a string", recommend.ErrInvalidRequest)
	}

	return req, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, err
		}
		return int(i), nil
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
