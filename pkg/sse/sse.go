// Package sse writes Server-Sent Events. Transaction threads use it as a
// fallback for clients that cannot open a WebSocket.
//
//	stream := sse.New(c.W, c.R)
//	if stream == nil {
//	    return
//	}
//	stream.Pipe(c.Context(), "message", ch, 25*time.Second)
package sse

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Stream is one open SSE response.
type Stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	closed  bool
}

// New sets the event-stream headers. It returns nil, after writing a 500,
// when w cannot flush.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, flusher: flusher}
}

// Send writes a named event with a JSON payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	return s.SendRaw(event, payload)
}

// SendRaw writes a named event whose data is already encoded.
func (s *Stream) SendRaw(event string, data []byte) error {
	if s == nil || s.closed {
		return nil
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		s.closed = true
		return err
	}
	s.flusher.Flush()
	return nil
}

// Comment writes a keepalive comment line.
func (s *Stream) Comment(msg string) {
	if s == nil || s.closed {
		return
	}
	fmt.Fprintf(s.w, ": %s\n\n", msg)
	s.flusher.Flush()
}

// Pipe forwards every payload from ch as event until ctx ends or ch closes,
// sending a heartbeat comment every keepalive.
func (s *Stream) Pipe(ctx context.Context, event string, ch <-chan []byte, keepalive time.Duration) {
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-ch:
			if !ok {
				return
			}
			if err := s.SendRaw(event, data); err != nil {
				return
			}
		case <-ticker.C:
			s.Comment("keepalive")
		}
	}
}
