// Package service contains the service layer for the SSQ API
package service

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/nsvirk/ssqapi/internal/repository"
	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
)

// RedisHistoryChannel receives a message whenever draws are added
var RedisHistoryChannel = "CH:SSQ:HISTORY"

// Publisher publishes a payload on a channel
type Publisher interface {
	Publish(ctx context.Context, channel, payload string) error
}

// PublishService relays Postgres history notifications to Redis subscribers
type PublishService struct {
	publisher Publisher
	pgConnStr string
}

func NewPublishService(publisher Publisher, pgConnStr string) *PublishService {
	return &PublishService{
		publisher: publisher,
		pgConnStr: pgConnStr,
	}
}

// RelayHistoryEvents blocks until ctx is done
func (s *PublishService) RelayHistoryEvents(ctx context.Context) {
	listener := pq.NewListener(s.pgConnStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			zaplogger.Warn("Postgres listener event", zaplogger.Fields{"event": ev, "error": err.Error()})
		}
	})
	defer listener.Close()

	if err := listener.Listen(repository.HistoryChannel); err != nil {
		zaplogger.Error("Failed to listen on history channel", zaplogger.Fields{"error": err.Error()})
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-listener.Notify:
			if n == nil {
				// connection was re-established; notifications may have been lost
				continue
			}
			if err := s.publisher.Publish(ctx, RedisHistoryChannel, n.Extra); err != nil {
				zaplogger.Error("Failed to publish to Redis", zaplogger.Fields{"error": err.Error()})
			}
		case <-time.After(90 * time.Second):
			go func() {
				if err := listener.Ping(); err != nil {
					zaplogger.Error("Error pinging PostgreSQL", zaplogger.Fields{"error": err.Error()})
				}
			}()
		}
	}
}
