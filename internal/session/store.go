package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geocoder89/todohub/internal/cache"
)

var ErrNotFound = errors.New("session not found")

// Record is what survives a process restart for one browser session.
type Record struct {
	// Sealed is the backend session secret, encrypted.
	Sealed        string    `json:"sealed,omitempty"`
	Secret        string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	HideCompleted bool      `json:"hideCompleted"`

	savedAt time.Time
}

func (r Record) same(o Record) bool {
	return r.Secret == o.Secret && r.HideCompleted == o.HideCompleted
}

type Store interface {
	Save(ctx context.Context, id string, rec Record, ttl time.Duration) error
	Load(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RedisStore struct {
	redisdb *redis.Client
	prefix  string
}

func NewRedisStore(cfg RedisConfig) *RedisStore {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &RedisStore{redisdb: redisdb, prefix: "todohub:session:"}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Save(ctx context.Context, id string, rec Record, ttl time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.redisdb.Set(ctx, s.key(id), b, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (Record, error) {
	b, err := s.redisdb.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("load session: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, fmt.Errorf("decode session: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.redisdb.Del(ctx, s.key(id)).Err()
}

// Ping checks redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redisdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.redisdb.Close()
}

// MemoryStore keeps records in process. Used when no redis is configured
// and in tests.
type MemoryStore struct {
	c *cache.Cache[Record]
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{c: cache.New[Record](ttl)}
}

func (s *MemoryStore) Save(_ context.Context, id string, rec Record, ttl time.Duration) error {
	s.c.SetWithTTL(id, rec, ttl)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (Record, error) {
	rec, ok := s.c.Get(id)
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.c.Delete(id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// RunJanitor drops expired records until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	s.c.RunJanitor(ctx, interval)
}
