package srtm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
)

// TileStore persists downloaded tile archives between runs.
type TileStore interface {
	// Get returns the stored archive for a tile name and false when absent.
	Get(ctx context.Context, name string) ([]byte, bool, error)
	Put(ctx context.Context, name string, data []byte) error
}

// FileStore keeps archives as files in a directory, named like the public
// mirrors (N50E010.hgt.zip, or N50E010.hgt for raw samples).
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create tile cache dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string { return s.dir }

// Get implements TileStore.
func (s *FileStore) Get(_ context.Context, name string) ([]byte, bool, error) {
	for _, ext := range []string{".hgt.zip", ".hgt"} {
		data, err := os.ReadFile(filepath.Join(s.dir, name+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("read cached tile %s: %w", name, err)
		}
		return data, true, nil
	}
	return nil, false, nil
}

// Put implements TileStore. The file is written to a temporary name first so
// an interrupted run never leaves a truncated archive behind.
func (s *FileStore) Put(_ context.Context, name string, data []byte) error {
	ext := ".hgt"
	if isZip(data) {
		ext = ".hgt.zip"
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp tile file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write tile %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close tile %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name+ext)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store tile %s: %w", name, err)
	}
	return nil
}

const redisKeyPrefix = "srtm:tile:"

// RedisStore shares downloaded archives between machines through Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the Redis server at url (redis://host:port/db)
// and verifies the connection. A zero ttl keeps entries forever.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Get implements TileStore.
func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get tile %s: %w", name, err)
	}
	return data, true, nil
}

// Put implements TileStore.
func (s *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.client.Set(ctx, redisKeyPrefix+name, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set tile %s: %w", name, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// LayeredStore reads from the first store that has a tile and writes to all
// of them, so a shared Redis store warms the local file cache.
type LayeredStore struct {
	stores []TileStore
}

// NewLayeredStore orders stores from fastest to slowest.
func NewLayeredStore(stores ...TileStore) *LayeredStore {
	return &LayeredStore{stores: stores}
}

// Get implements TileStore. A hit in a later store is copied into the earlier ones.
func (s *LayeredStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	for i, st := range s.stores {
		data, ok, err := st.Get(ctx, name)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		for _, earlier := range s.stores[:i] {
			if err := earlier.Put(ctx, name, data); err != nil {
				return nil, false, err
			}
		}
		return data, true, nil
	}
	return nil, false, nil
}

// Put implements TileStore.
func (s *LayeredStore) Put(ctx context.Context, name string, data []byte) error {
	for _, st := range s.stores {
		if err := st.Put(ctx, name, data); err != nil {
			return err
		}
	}
	return nil
}
