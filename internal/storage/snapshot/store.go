package snapshot

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"
)

// Observer receives the outcome of every Update. Implementations must be
// safe for concurrent use.
type Observer interface {
	ObserveUpdate(store string, rotated bool, d time.Duration, err error)
}

// Config configures a Store.
type Config struct {
	// Name labels the store in logs and metrics (e.g. "location").
	Name string

	// Dir is the directory holding the snapshot files. It is created if missing.
	Dir string

	// Window is the maximum age of the newest file for it to still receive
	// writes. Older files are left as history and a new file is started.
	Window time.Duration

	// WriteMode selects how files are replaced. Defaults to WriteAtomic.
	WriteMode WriteMode

	Observer Observer
	Logger   *slog.Logger
}

// Store records the full state of every tracked entity in a directory of
// time-bucketed snapshot files. All state lives on disk; a Store only holds
// its configuration and a write lock.
//
// Updates on one Store are serialized, so concurrent callers in the same
// process cannot lose each other's changes. Separate processes writing the
// same directory are not coordinated.
type Store[P any] struct {
	cfg    Config
	logger *slog.Logger

	mu sync.Mutex
}

// New creates a Store.
func New[P any](cfg Config) (*Store[P], error) {
	if cfg.Dir == "" {
		return nil, errInvalidConfig("dir is required")
	}
	if cfg.Window <= 0 {
		return nil, errInvalidConfig("window must be positive, got %s", cfg.Window)
	}
	switch cfg.WriteMode {
	case "":
		cfg.WriteMode = WriteAtomic
	case WriteAtomic, WriteTruncate:
	default:
		return nil, errInvalidConfig("unknown write mode %q", cfg.WriteMode)
	}
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name != "" {
		logger = logger.With("store", cfg.Name)
	}

	return &Store[P]{cfg: cfg, logger: logger}, nil
}

// Dir returns the store directory.
func (s *Store[P]) Dir() string {
	return s.cfg.Dir
}

// Window returns the reuse window.
func (s *Store[P]) Window() time.Duration {
	return s.cfg.Window
}

// Update records payload as the new state of entityID at instant now.
//
// The latest known entity view is loaded from the newest file, the entity's
// payload is replaced as a whole, and the result is appended as a new batch
// keyed by now to the current write target. Exactly one file is written.
//
// If now is behind the latest batch of the target, the latest batch key is
// reused so the update stays the current state.
func (s *Store[P]) Update(entityID string, payload P, now time.Time) error {
	start := time.Now()

	s.mu.Lock()
	rotated, err := s.update(entityID, payload, now)
	s.mu.Unlock()

	if s.cfg.Observer != nil {
		s.cfg.Observer.ObserveUpdate(s.cfg.Name, rotated, time.Since(start), err)
	}
	if err != nil {
		s.logger.Error("snapshot update failed", "entity_id", entityID, "error", err)
	}
	return err
}

func (s *Store[P]) update(entityID string, payload P, now time.Time) (bool, error) {
	nowMillis := now.UnixMilli()
	if nowMillis < 0 {
		return false, newError(KindNumericKey, "update", "", fmt.Errorf("timestamp %d before unix epoch", nowMillis))
	}
	ts := uint64(nowMillis)

	base, ok, err := LatestEntityMap[P](s.cfg.Dir)
	if err != nil {
		return false, err
	}
	if !ok || base == nil {
		base = EntityMap[P]{}
	}
	base[entityID] = payload

	target, log, rotated, err := ResolveCurrent[P](s.cfg.Dir, s.cfg.Window, ts)
	if err != nil {
		return false, err
	}
	key, err := batchKey(log, ts)
	if err != nil {
		return false, newError(KindNumericKey, "update", FilePath(s.cfg.Dir, target), err)
	}
	if key != ts {
		s.logger.Warn("clock behind newest batch, reusing its key", "now", ts, "batch", key)
	}
	log[strconv.FormatUint(key, 10)] = base

	path := FilePath(s.cfg.Dir, target)
	if err := WriteFile(path, log, s.cfg.WriteMode); err != nil {
		return false, err
	}

	if rotated {
		s.logger.Info("snapshot file rotated", "file", path, "entities", len(base))
	} else {
		s.logger.Debug("snapshot batch written", "file", path, "batches", len(log), "entities", len(base))
	}
	return rotated, nil
}

// batchKey returns the key for a new batch written at now: now itself, or
// the latest existing key when the clock is behind it.
func batchKey[P any](log BatchLog[P], now uint64) (uint64, error) {
	latest, ok, err := LatestBatchKey(log)
	if err != nil || !ok {
		return now, err
	}
	ts, err := strconv.ParseUint(latest, 10, 64)
	if err != nil {
		return 0, err
	}
	return max(now, ts), nil
}

// ReadLatest returns the most recent merged view of all entities, or false
// if nothing has been recorded yet.
func (s *Store[P]) ReadLatest() (EntityMap[P], bool, error) {
	return LatestEntityMap[P](s.cfg.Dir)
}

// Files lists the snapshot files of the store, oldest first.
func (s *Store[P]) Files() ([]FileRef, error) {
	return ListFiles(s.cfg.Dir)
}
