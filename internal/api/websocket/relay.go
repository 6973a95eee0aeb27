package websocket

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamReader reads new entries from a Redis stream
type StreamReader interface {
	XRead(ctx context.Context, a *redis.XReadArgs) *redis.XStreamSliceCmd
}

// Relay forwards stream entries to a hub
type Relay struct {
	reader StreamReader
	stream string
	hub    *Hub
	block  time.Duration
}

// NewRelay creates a relay for stream
func NewRelay(reader StreamReader, stream string, hub *Hub) *Relay {
	return &Relay{reader: reader, stream: stream, hub: hub, block: 5 * time.Second}
}

// Run forwards entries added after it starts until ctx is done
func (r *Relay) Run(ctx context.Context) error {
	lastID := "$"
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		streams, err := r.reader.XRead(ctx, &redis.XReadArgs{
			Streams: []string{r.stream, lastID},
			Count:   100,
			Block:   r.block,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[ws] relay read %s: %v", r.stream, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				lastID = msg.ID
				if data, ok := msg.Values["data"].(string); ok {
					r.hub.Broadcast([]byte(data))
				}
			}
		}
	}
}
