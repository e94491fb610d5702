package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lox/coven/internal/game"
)

// newJSONLSink opens an append-only JSONL event log. Encoding errors are
// swallowed after the first report; the sink must never disturb the game.
func newJSONLSink(path string) (game.EventSink, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening event log: %w", err)
	}
	enc := json.NewEncoder(f)
	warned := false
	sink := game.SinkFunc(func(ev game.Event) {
		if err := enc.Encode(ev); err != nil && !warned {
			warned = true
			fmt.Fprintf(os.Stderr, "event log write failed: %v\n", err)
		}
	})
	return sink, f.Close, nil
}
