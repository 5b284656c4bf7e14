package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrSnapshotNotFound is returned by Get when no value was ever stored under a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshots is a flat key -> blob store. Put replaces the previous value wholesale.
type Snapshots interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// LoadJSON decodes the snapshot stored under key into v.
func LoadJSON(ctx context.Context, snaps Snapshots, key string, v any) error {
	data, err := snaps.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode snapshot %q: %w", key, err)
	}
	return nil
}

// PersistTimeout bounds a single snapshot write.
const PersistTimeout = 5 * time.Second

// SaveJSON encodes v and overwrites the snapshot stored under key. The write ignores
// cancellation of ctx, since callers have already applied the change in memory, and
// is bounded by PersistTimeout instead.
func SaveJSON(ctx context.Context, snaps Snapshots, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %q: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PersistTimeout)
	defer cancel()
	return snaps.Put(ctx, key, data)
}
