// Package service contains the service layer for the SSQ API
package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Subscriber subscribes to a pub/sub channel
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan string, func() error, error)
}

// Flusher is a writer that can push buffered output to the client
type Flusher interface {
	io.Writer
	Flush()
}

// StreamService streams history change events to clients as server-sent events
type StreamService struct {
	subscriber Subscriber
	keepAlive  time.Duration
}

func NewStreamService(subscriber Subscriber) *StreamService {
	return &StreamService{
		subscriber: subscriber,
		keepAlive:  30 * time.Second,
	}
}

// Subscribe opens the history channel. The returned close func must be called.
func (s *StreamService) Subscribe(ctx context.Context) (<-chan string, func() error, error) {
	events, closeFn, err := s.subscriber.Subscribe(ctx, RedisHistoryChannel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %v", RedisHistoryChannel, err)
	}
	return events, closeFn, nil
}

// Stream writes events to w until ctx is done or the channel closes
func (s *StreamService) Stream(ctx context.Context, w Flusher, events <-chan string) error {
	// Send an initial message to establish the connection
	if _, err := io.WriteString(w, "data: connected\n\n"); err != nil {
		return err
	}
	w.Flush()

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := io.WriteString(w, formatEvent("history", payload)); err != nil {
				return err
			}
			w.Flush()
		case <-ticker.C:
			// Send a keep-alive comment
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return err
			}
			w.Flush()
		}
	}
}

func formatEvent(name, payload string) string {
	var sb strings.Builder
	sb.WriteString("event: " + name + "\n")
	for _, line := range strings.Split(payload, "\n") {
		sb.WriteString("data: " + line + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}
