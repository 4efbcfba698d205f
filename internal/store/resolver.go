package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// playerIDsKey is the Redis hash mapping lowercased player aliases to
// canonical ids.
const playerIDsKey = "player_ids"

// AliasResolver maps player names and aliases to canonical player ids via a
// Redis hash maintained by the ingest side.
type AliasResolver struct {
	redis *redis.Client
}

func NewAliasResolver(rdb *redis.Client) *AliasResolver {
	return &AliasResolver{redis: rdb}
}

// Resolve returns the canonical id for the given player name or alias. A
// miss is not an error: the input is assumed to already be a canonical id.
func (r *AliasResolver) Resolve(ctx context.Context, player string) (string, error) {
	alias := strings.ToLower(strings.TrimSpace(player))
	if alias == "" {
		return "", fmt.Errorf("empty player name")
	}
	id, err := r.redis.HGet(ctx, playerIDsKey, alias).Result()
	if err == redis.Nil {
		return player, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolving player alias: %w", err)
	}
	return id, nil
}

// Register stores an alias for a canonical id. Used by tooling that seeds
// the hash; the serving path only reads.
func (r *AliasResolver) Register(ctx context.Context, alias, playerID string) error {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if err := r.redis.HSet(ctx, playerIDsKey, alias, playerID).Err(); err != nil {
		return fmt.Errorf("registering player alias: %w", err)
	}
	return nil
}
