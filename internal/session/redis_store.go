package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	fieldAccountID = "_account_id"
	fieldCreatedAt = "_created_at"
	slotPrefix     = "slot:"
)

// RedisStore keeps each session in a hash at session:<id> with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store from an existing Redis client
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(sid string) string {
	return s.prefix + sid
}

func (s *RedisStore) Create(ctx context.Context, accountID uint) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		CreatedAt: time.Now().UTC(),
	}
	key := s.key(sess.ID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			fieldAccountID, strconv.FormatUint(uint64(accountID), 10),
			fieldCreatedAt, sess.CreatedAt.Format(time.RFC3339Nano),
		)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, sid string) (*Session, error) {
	key := s.key(sid)
	vals, err := s.client.HMGet(ctx, key, fieldAccountID, fieldCreatedAt).Result()
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, ErrNotFound
	}
	accountID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", sid, err)
	}
	sess := &Session{ID: sid, AccountID: uint(accountID)}
	if created, ok := vals[1].(string); ok {
		sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	}
	if err := s.touch(ctx, key); err != nil {
		return nil, err
	}
	return sess, nil
}

// touch extends the TTL; a false result from EXPIRE means the key vanished.
func (s *RedisStore) touch(ctx context.Context, key string) error {
	ok, err := s.client.Expire(ctx, key, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Set(ctx context.Context, sid, slot, value string) error {
	key := s.key(sid)
	if err := s.touch(ctx, key); err != nil {
		return err
	}
	if err := s.client.HSet(ctx, key, slotPrefix+slot, value).Err(); err != nil {
		return fmt.Errorf("set session slot: %w", err)
	}
	return nil
}

func (s *RedisStore) Value(ctx context.Context, sid, slot string) (string, bool, error) {
	key := s.key(sid)
	if err := s.touch(ctx, key); err != nil {
		return "", false, err
	}
	v, err := s.client.HGet(ctx, key, slotPrefix+slot).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read session slot: %w", err)
	}
	return v, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, sid, slot string) error {
	key := s.key(sid)
	if err := s.touch(ctx, key); err != nil {
		return err
	}
	if err := s.client.HDel(ctx, key, slotPrefix+slot).Err(); err != nil {
		return fmt.Errorf("clear session slot: %w", err)
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, s.key(sid)).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
