package kvstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// ErrNotFound is returned by Get when no record has the requested key.
var ErrNotFound = errors.New("record not found")

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("store is closed")

// Store is a pebble-backed record store and record resolver.
type Store struct {
	db    *pebble.DB
	clock *Clock

	// writeMu serializes writers: Put looks up the key index before writing.
	writeMu sync.Mutex

	mu     sync.RWMutex
	closed bool
}

type config struct {
	fs        vfs.FS
	cacheSize int64
	logger    *slog.Logger
}

// Option configures Open.
type Option func(*config)

// WithFS opens the store on the given filesystem, e.g. vfs.NewMem() in tests.
func WithFS(fs vfs.FS) Option {
	return func(c *config) { c.fs = fs }
}

// WithCacheSize sets the pebble block cache size in bytes.
func WithCacheSize(n int64) Option {
	return func(c *config) { c.cacheSize = n }
}

// WithLogger routes pebble's log output to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Open creates or opens a pebble database in the directory at path.
// The seq clock resumes from the persisted high-water mark.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := config{
		cacheSize: 8 << 20,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	cache := pebble.NewCache(cfg.cacheSize)
	defer cache.Unref()

	pebbleOpts := &pebble.Options{
		Cache:  cache,
		Logger: pebbleLogger{logger: cfg.logger},
	}
	if cfg.fs != nil {
		pebbleOpts.FS = cfg.fs
	}

	db, err := pebble.Open(path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("open pebble: %w", err)
	}

	start, err := loadSeq(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, clock: NewClockAt(start)}, nil
}

func loadSeq(db *pebble.DB) (int64, error) {
	value, closer, err := db.Get(seqKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read seq: %w", err)
	}
	defer closer.Close()

	seq, err := decodeSeq(value)
	if err != nil {
		return 0, fmt.Errorf("read seq: %w", err)
	}
	return seq, nil
}

// Close flushes and closes the database. Calling Close twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.db == nil {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// checkOpen must be called with s.mu held.
func (s *Store) checkOpen() error {
	if s.closed || s.db == nil {
		return ErrClosed
	}
	return nil
}

// get copies the value stored at key.
// Must be called with s.mu held.
func (s *Store) get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}
