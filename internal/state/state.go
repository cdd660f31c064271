// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package state delivers recommendation results to the hosting agent. An
// Emitter receives one Update per tool call; implementations print it,
// persist it as conversation state, or both.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/paper-rec/pkg/types"
)

// PapersSlot is the conversation state key that holds the latest Papers.
const PapersSlot = "papers"

// Update is the state change produced by one tool call: the "papers" slot
// contents and a message tagged with the originating call ID.
type Update struct {
	CallID string
	Papers types.Papers

	// Order lists the keys of Papers in display order. It may be nil.
	Order   []string
	Message types.Message
}

// NewUpdate builds the Update for a tool call whose rendered response is content.
func NewUpdate(callID string, papers types.Papers, order []string, content string) Update {
	return Update{
		CallID:  callID,
		Papers:  papers,
		Order:   order,
		Message: types.Message{CallID: callID, Content: content},
	}
}

// orderedIDs returns the keys of u.Papers, following u.Order when it
// names every paper and sorting them otherwise.
func (u Update) orderedIDs() []string {
	if len(u.Order) == len(u.Papers) {
		complete := true
		for _, id := range u.Order {
			if _, ok := u.Papers[id]; !ok {
				complete = false
				break
			}
		}
		if complete {
			return u.Order
		}
	}
	ids := make([]string, 0, len(u.Papers))
	for id := range u.Papers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Emitter is the output port for tool results.
type Emitter interface {
	Emit(ctx context.Context, update Update) error
}

// WriterEmitter writes the tagged message of each Update to W.
type WriterEmitter struct {
	W    io.Writer
	JSON bool
}

// Emit writes the message. In JSON mode the whole update is encoded as a
// single object with "papers" and "messages" keys.
func (e *WriterEmitter) Emit(_ context.Context, u Update) error {
	if e.JSON {
		enc := json.NewEncoder(e.W)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			PapersSlot: u.Papers,
			"messages": []types.Message{u.Message},
		})
	}
	_, err := fmt.Fprint(e.W, u.Message.Content)
	return err
}

// MultiEmitter delivers each Update to every emitter in order and reports
// all failures.
type MultiEmitter []Emitter

// Emit calls every emitter even when an earlier one fails.
func (m MultiEmitter) Emit(ctx context.Context, u Update) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
