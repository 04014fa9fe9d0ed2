package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/timejump/internal/domain"
)

// DefaultLastDecisionTTL is how long the last decision snapshot is kept (48 hours)
const DefaultLastDecisionTTL = 48 * time.Hour

// ErrDisabled is returned when no Redis client was configured
var ErrDisabled = errors.New("stats store disabled")

// LastDecision is a snapshot of the most recent redirect decision.
type LastDecision struct {
	URL   string    `json:"url,omitempty"`
	Kind  string    `json:"kind"`
	Range string    `json:"range,omitempty"`
	At    time.Time `json:"at"`
}

// Stats aggregates redirect counters.
type Stats struct {
	Kinds map[string]int64 `json:"kinds"`
	URLs  map[string]int64 `json:"urls"`
	Last  *LastDecision    `json:"last,omitempty"`
}

// Store records redirect statistics in Redis.
// It is write-only from the redirect path: rules are never read back from it.
// A nil *Store is valid and behaves as a disabled store.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis stats store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Enabled reports whether a Redis client is attached
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	return s.client.Ping(ctx).Err()
}

// RecordDecision increments the counters for d and stores it as the last decision
func (s *Store) RecordDecision(ctx context.Context, d domain.Decision, matchedRange string) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(LastDecision{
		URL:   d.SelectedURL,
		Kind:  d.Matched.String(),
		Range: matchedRange,
		At:    d.Now.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, KindCountersKey(), d.Matched.String(), 1)
	if d.HasURL() {
		pipe.HIncrBy(ctx, URLCountersKey(), d.SelectedURL, 1)
	}
	pipe.Set(ctx, LastDecisionKey(), data, DefaultLastDecisionTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}
	return nil
}

// GetStats retrieves all counters and the last decision
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	kinds, err := s.counters(ctx, KindCountersKey())
	if err != nil {
		return nil, err
	}
	urls, err := s.counters(ctx, URLCountersKey())
	if err != nil {
		return nil, err
	}

	stats := &Stats{Kinds: kinds, URLs: urls}

	data, err := s.client.Get(ctx, LastDecisionKey()).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		// no decision recorded yet
	case err != nil:
		return nil, fmt.Errorf("failed to get last decision: %w", err)
	default:
		var last LastDecision
		if err := json.Unmarshal(data, &last); err != nil {
			return nil, fmt.Errorf("failed to unmarshal last decision: %w", err)
		}
		stats.Last = &last
	}

	return stats, nil
}

func (s *Store) counters(ctx context.Context, key string) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	out := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			// Skip values that were not written by HINCRBY
			continue
		}
		out[field] = n
	}
	return out, nil
}
