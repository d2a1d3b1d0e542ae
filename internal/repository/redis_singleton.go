package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/social-auth/internal/model"
)

// RedisSingletonStore keeps a singleton resource per user in a Redis hash.
// Create and upsert run as Lua scripts so the existence check and the write
// are atomic.
type RedisSingletonStore struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisSingletonStore returns a store whose keys are "<kind>:<userID>".
func NewRedisSingletonStore(rdb *redis.Client, kind model.ResourceKind) *RedisSingletonStore {
	return &RedisSingletonStore{rdb: rdb, prefix: string(kind) + ":", now: time.Now}
}

// KEYS[1] = resource key
// ARGV = id, user_id, values json, now (RFC3339Nano)
var createScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 1 then
		return 0
	end
	redis.call('HSET', KEYS[1], 'id', ARGV[1], 'user_id', ARGV[2], 'values', ARGV[3],
		'created_at', ARGV[4], 'updated_at', ARGV[4])
	return 1
`)

// Same arguments as createScript. Returns {created, HGETALL}.
var upsertScript = redis.NewScript(`
	local created = redis.call('HSETNX', KEYS[1], 'id', ARGV[1])
	if created == 1 then
		redis.call('HSET', KEYS[1], 'user_id', ARGV[2], 'created_at', ARGV[4])
	end
	redis.call('HSET', KEYS[1], 'values', ARGV[3], 'updated_at', ARGV[4])
	return {created, redis.call('HGETALL', KEYS[1])}
`)

func (s *RedisSingletonStore) key(userID string) string { return s.prefix + userID }

func (s *RedisSingletonStore) Get(ctx context.Context, userID string) (model.Resource, error) {
	m, err := s.rdb.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return model.Resource{}, err
	}
	if len(m) == 0 {
		return model.Resource{}, ErrNotFound
	}
	return resourceFromHash(m)
}

func (s *RedisSingletonStore) Upsert(ctx context.Context, userID string, values []string) (model.Resource, bool, error) {
	enc, err := encodeList(values)
	if err != nil {
		return model.Resource{}, false, err
	}
	now := s.now().UTC().Format(time.RFC3339Nano)
	out, err := upsertScript.Run(ctx, s.rdb, []string{s.key(userID)}, uuid.NewString(), userID, enc, now).Slice()
	if err != nil {
		return model.Resource{}, false, err
	}
	if len(out) != 2 {
		return model.Resource{}, false, fmt.Errorf("upsert script: unexpected reply %v", out)
	}
	created, _ := out[0].(int64)
	flat, _ := out[1].([]any)
	m := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		k, _ := flat[i].(string)
		v, _ := flat[i+1].(string)
		m[k] = v
	}
	res, err := resourceFromHash(m)
	if err != nil {
		return model.Resource{}, false, err
	}
	return res, created == 1, nil
}

func (s *RedisSingletonStore) CreateIfAbsent(ctx context.Context, userID string, values []string) (model.Resource, error) {
	enc, err := encodeList(values)
	if err != nil {
		return model.Resource{}, err
	}
	now := s.now().UTC()
	res := model.Resource{ID: uuid.NewString(), UserID: userID, Values: values, CreatedAt: now, UpdatedAt: now}
	ok, err := createScript.Run(ctx, s.rdb, []string{s.key(userID)},
		res.ID, userID, enc, now.Format(time.RFC3339Nano)).Int()
	if err != nil {
		return model.Resource{}, err
	}
	if ok == 0 {
		return model.Resource{}, ErrAlreadyExists
	}
	return res, nil
}

func (s *RedisSingletonStore) Delete(ctx context.Context, userID string) error {
	n, err := s.rdb.Del(ctx, s.key(userID)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func resourceFromHash(m map[string]string) (model.Resource, error) {
	res := model.Resource{ID: m["id"], UserID: m["user_id"]}
	vals, err := decodeList([]byte(m["values"]))
	if err != nil {
		return model.Resource{}, fmt.Errorf("decode values: %w", err)
	}
	res.Values = vals
	if res.CreatedAt, err = time.Parse(time.RFC3339Nano, m["created_at"]); err != nil {
		return model.Resource{}, fmt.Errorf("parse created_at: %w", err)
	}
	if res.UpdatedAt, err = time.Parse(time.RFC3339Nano, m["updated_at"]); err != nil {
		return model.Resource{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return res, nil
}
