// Package feed defines the seam between the lift engine and an upstream
// detection source. It does not implement the WebSocket specialist
// scaffolding spec.md treats as an external collaborator (connection
// lifecycle, reconnection, echo filtering) — only the interface such a
// specialist would sit behind, plus a file/stdin-backed implementation
// for offline batch use.
package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// FrameSource yields per-frame detection records one at a time. Next
// returns ok=false with a nil error once the source is exhausted.
type FrameSource interface {
	Next(ctx context.Context) (frame map[string]interface{}, ok bool, err error)
}

// BackoffPolicy shapes how a network-backed FrameSource would retry after a
// connection failure. JSONLFeed does not use it directly — it exists here
// so a future socket-backed FrameSource can share this config shape
// without changing the interface.
type BackoffPolicy struct {
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// DefaultBackoffPolicy returns a conservative policy: five retries, a 200ms
// base delay and a 5s delay cap.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		MaxRetries:  5,
		BackoffBase: 200 * time.Millisecond,
		BackoffMax:  5 * time.Second,
	}
}

// JSONLFeed reads newline-delimited JSON frame records from r. Each line
// must decode to a JSON object; blank lines are skipped.
type JSONLFeed struct {
	scanner *bufio.Scanner
	line    int
}

// NewJSONLFeed wraps r for line-by-line frame decoding.
func NewJSONLFeed(r io.Reader) *JSONLFeed {
	return &JSONLFeed{scanner: bufio.NewScanner(r)}
}

func (f *JSONLFeed) Next(ctx context.Context) (map[string]interface{}, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	for f.scanner.Scan() {
		f.line++
		text := strings.TrimSpace(f.scanner.Text())
		if text == "" {
			continue
		}
		var frame map[string]interface{}
		if err := json.Unmarshal([]byte(text), &frame); err != nil {
			return nil, false, fmt.Errorf("feed: line %d: %w", f.line, err)
		}
		return frame, true, nil
	}
	if err := f.scanner.Err(); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}
