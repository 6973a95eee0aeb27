package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stream names
const (
	StreamGameUpdates = "nba.games.updates"
	StreamIngest      = "nba.ingest.events"
)

// streamMaxLen caps each stream so old events are trimmed
const streamMaxLen = 10000

// IngestEvent summarizes one finished ingestion or fixture load
type IngestEvent struct {
	Source  string    `json:"source"`
	Season  string    `json:"season,omitempty"`
	Teams   int       `json:"teams"`
	Players int       `json:"players"`
	Games   int       `json:"games"`
	Objects int       `json:"objects,omitempty"`
	At      time.Time `json:"at"`
}

// GameUpdate is broadcast when a game row is created or its score changes
type GameUpdate struct {
	NBAID     string `json:"nba_id"`
	Season    string `json:"season"`
	GameDate  string `json:"game_date"`
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeScore *int   `json:"home_score,omitempty"`
	AwayScore *int   `json:"away_score,omitempty"`
	Status    string `json:"status"`
}

// RedisPublisher publishes events to Redis streams
type RedisPublisher struct {
	client *redis.Client
	owned  bool
}

// NewRedisPublisher creates a new Redis stream publisher
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisPublisher{client: client, owned: true}, nil
}

// NewRedisStreamPublisher creates a publisher on an existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Close closes the Redis connection if the publisher opened it
func (rp *RedisPublisher) Close() error {
	if !rp.owned {
		return nil
	}
	return rp.client.Close()
}

// Client returns the underlying Redis client
func (rp *RedisPublisher) Client() *redis.Client {
	return rp.client
}

// PublishGameUpdate publishes a game update to the game stream
func (rp *RedisPublisher) PublishGameUpdate(ctx context.Context, update GameUpdate) error {
	return rp.publish(ctx, StreamGameUpdates, update)
}

// PublishIngestEvent publishes an ingestion summary
func (rp *RedisPublisher) PublishIngestEvent(ctx context.Context, event IngestEvent) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	return rp.publish(ctx, StreamIngest, event)
}

func (rp *RedisPublisher) publish(ctx context.Context, stream string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
