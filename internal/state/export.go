// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-rec/pkg/types"
)

// Snapshot is the exported form of one conversation's state.
type Snapshot struct {
	Conversation string          `json:"conversation" yaml:"conversation"`
	Papers       types.Papers    `json:"papers" yaml:"papers"`
	Messages     []types.Message `json:"messages" yaml:"messages"`
}

// Snapshot reads the papers slot and messages of the conversation.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	papers, _, err := s.Papers(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	msgs, err := s.Messages(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if msgs == nil {
		msgs = []types.Message{}
	}
	return Snapshot{Conversation: s.conversation, Papers: papers, Messages: msgs}, nil
}

// Export writes the conversation snapshot to w as "yaml" or "json".
func (s *Store) Export(ctx context.Context, format string, w io.Writer) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("reading state for export: %w", err)
	}

	switch format {
	case "yaml", "":
		data, err := yaml.Marshal(&snap)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "json":
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unsupported export format %q (want yaml or json)", format)
	}
}
