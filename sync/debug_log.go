package sync

import (
	"context"
	"fmt"
	"io"
	gosync "sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// DefaultMaxLogEntries is the number of debug log lines retained, oldest are evicted first.
	DefaultMaxLogEntries = 100
	// LogTimestampFormat prefixes every stored line.
	LogTimestampFormat = "2006-01-02 15:04:05"
)

// LogStore is the bounded, process wide debug log.
// Append must be safe for concurrent use.
type LogStore interface {
	Append(ctx context.Context, line string) error
	Read(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

func stampLine(t time.Time, line string) string {
	return fmt.Sprintf("[%s] %s", t.UTC().Format(LogTimestampFormat), line)
}

// MemoryLogStore keeps the debug log in process memory.
type MemoryLogStore struct {
	mu         gosync.Mutex
	maxEntries int
	entries    []string
	now        func() time.Time
}

func NewMemoryLogStore(maxEntries int) *MemoryLogStore {
	if maxEntries < 1 {
		maxEntries = DefaultMaxLogEntries
	}
	return &MemoryLogStore{maxEntries: maxEntries, now: time.Now}
}

func (s *MemoryLogStore) Append(_ context.Context, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, stampLine(s.now(), line))
	if over := len(s.entries) - s.maxEntries; over > 0 {
		s.entries = append([]string(nil), s.entries[over:]...)
	}
	return nil
}

func (s *MemoryLogStore) Read(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries...), nil
}

func (s *MemoryLogStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

// RedisLogStore keeps the debug log in a Redis list so it survives restarts
// and is shared between instances.
type RedisLogStore struct {
	client     *redis.Client
	key        string
	maxEntries int64
	now        func() time.Time
}

// NewRedisLogStore connects to the Redis server at redisURL.
func NewRedisLogStore(redisURL, key string, maxEntries int) (*RedisLogStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL %w", err)
	}
	return NewRedisLogStoreWithClient(redis.NewClient(opt), key, maxEntries), nil
}

func NewRedisLogStoreWithClient(client *redis.Client, key string, maxEntries int) *RedisLogStore {
	if maxEntries < 1 {
		maxEntries = DefaultMaxLogEntries
	}
	return &RedisLogStore{client: client, key: key, maxEntries: int64(maxEntries), now: time.Now}
}

// Append pushes the line and trims the list in one MULTI/EXEC transaction.
func (s *RedisLogStore) Append(ctx context.Context, line string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.key, stampLine(s.now(), line))
		pipe.LTrim(ctx, s.key, -s.maxEntries, -1)
		return nil
	})
	return err
}

func (s *RedisLogStore) Read(ctx context.Context) ([]string, error) {
	return s.client.LRange(ctx, s.key, 0, -1).Result()
}

func (s *RedisLogStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *RedisLogStore) Close() error {
	return s.client.Close()
}

// CloseLogStore releases the store's connections, if it holds any.
func CloseLogStore(store LogStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// NewLogStore returns the store selected by log.store.
func NewLogStore(settings LogSettings) (LogStore, error) {
	switch settings.Store {
	case LogStoreRedis:
		return NewRedisLogStore(settings.RedisURL, settings.Key, settings.MaxEntries)
	case LogStoreMemory, "":
		return NewMemoryLogStore(settings.MaxEntries), nil
	}
	return nil, fmt.Errorf("unsupported log store %q", settings.Store)
}
