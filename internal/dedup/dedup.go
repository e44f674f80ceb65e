// Package dedup suppresses repeated deliveries of the same alert within a
// time window. It is off unless a window is configured.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "alert_dedup:"

// Guard claims a key for an alert. Claim returns true the first time a key is
// seen inside the window and false for repeats.
type Guard interface {
	// Enabled is false for the guard that admits everything; callers skip
	// computing keys for it.
	Enabled() bool
	Claim(ctx context.Context, key string) (bool, error)
	// Release drops a claim so a retry after a failed ticket creation is not
	// reported as a duplicate.
	Release(ctx context.Context, key string) error
}

type redisGuard struct {
	client *redis.Client
	window time.Duration
}

func NewRedisGuard(client *redis.Client, window time.Duration) Guard {
	return &redisGuard{client: client, window: window}
}

func (g *redisGuard) Enabled() bool { return true }

func (g *redisGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, keyPrefix+key, time.Now().Unix(), g.window).Result()
	if err != nil {
		return false, fmt.Errorf("claim dedup key: %w", err)
	}
	return ok, nil
}

func (g *redisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release dedup key: %w", err)
	}
	return nil
}

type disabledGuard struct{}

// Disabled admits every alert.
func Disabled() Guard {
	return disabledGuard{}
}

func (disabledGuard) Enabled() bool { return false }

func (disabledGuard) Claim(context.Context, string) (bool, error) { return true, nil }

func (disabledGuard) Release(context.Context, string) error { return nil }

// Key hashes the integration id with the canonical JSON form of payload.
// encoding/json sorts object keys, so field order in the request body does
// not change the key.
func Key(integrationID int64, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal dedup payload: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(integrationID, 10)))
	h.Write([]byte{0})
	h.Write(data)
	return strconv.FormatInt(integrationID, 10) + ":" + hex.EncodeToString(h.Sum(nil)), nil
}
