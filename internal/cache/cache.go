// Package cache keeps derived vote results in Redis so repeated reads skip
// the store. Entries are always rebuildable from the stored tally.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emilythestrangee/vote-tally/backend/internal/config"
	"github.com/emilythestrangee/vote-tally/backend/internal/tally"
)

type ResultCache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, postID int) (res tally.VoteResult, ok bool, err error)
	// Set stores res unless the cached entry has a higher version. The
	// version is the number of votes cast, which only grows.
	Set(ctx context.Context, postID int, version int, res tally.VoteResult) error
	Delete(ctx context.Context, postID int) error
}

type entry struct {
	Version int              `json:"version"`
	Result  tally.VoteResult `json:"result"`
}

// setIfNewer writes ARGV[1] unless the stored entry's version exceeds
// ARGV[2]. ARGV[3] is the TTL in milliseconds, 0 for none.
var setIfNewer = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if cur then
	local ok, old = pcall(cjson.decode, cur)
	if ok and type(old) == "table" and tonumber(old.version) and tonumber(old.version) > tonumber(ARGV[2]) then
		return 0
	end
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and checks the connection.
func NewRedis(cfg config.RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: rdb, ttl: cfg.TTL}, nil
}

func postKey(postID int) string {
	return fmt.Sprintf("tally:post:%d", postID)
}

func (r *Redis) Get(ctx context.Context, postID int) (tally.VoteResult, bool, error) {
	raw, err := r.client.Get(ctx, postKey(postID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return tally.VoteResult{}, false, nil
	}
	if err != nil {
		return tally.VoteResult{}, false, err
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return tally.VoteResult{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	return e.Result, true, nil
}

func (r *Redis) Set(ctx context.Context, postID int, version int, res tally.VoteResult) error {
	raw, err := json.Marshal(entry{Version: version, Result: res})
	if err != nil {
		return err
	}
	return setIfNewer.Run(ctx, r.client, []string{postKey(postID)}, raw, version, r.ttl.Milliseconds()).Err()
}

func (r *Redis) Delete(ctx context.Context, postID int) error {
	return r.client.Del(ctx, postKey(postID)).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, int) (tally.VoteResult, bool, error) {
	return tally.VoteResult{}, false, nil
}

func (Noop) Set(context.Context, int, int, tally.VoteResult) error { return nil }

func (Noop) Delete(context.Context, int) error { return nil }
