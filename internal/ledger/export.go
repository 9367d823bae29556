// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/flash/pkg/types"
)

// ExportYAML writes every event matching f to w as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, f Filter) error {
	events, err := s.exportEvents(ctx, f)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes every event matching f to w as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, f Filter) error {
	events, err := s.exportEvents(ctx, f)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func (s *Store) exportEvents(ctx context.Context, f Filter) ([]types.Event, error) {
	f.Limit = -1
	events, err := s.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if events == nil {
		events = []types.Event{}
	}
	return events, nil
}
