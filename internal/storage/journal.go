package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dream_weaver/internal/apperr"
	"dream_weaver/internal/models"
)

const JournalKey = "dreamWeaverEntries"

// JournalStorage keeps the user's entries in memory and writes the whole collection
// to a single snapshot key after every change.
type JournalStorage struct {
	snapshots   Snapshots
	logger      *zap.Logger
	onWriteFail func(key string)
	now         func() time.Time
	mu          sync.RWMutex
	entries     []models.JournalEntry
}

type JournalOption func(*JournalStorage)

// WithWriteFailureHook registers a callback invoked whenever persisting the collection fails.
func WithWriteFailureHook(fn func(key string)) JournalOption {
	return func(js *JournalStorage) {
		js.onWriteFail = fn
	}
}

func WithClock(now func() time.Time) JournalOption {
	return func(js *JournalStorage) {
		js.now = now
	}
}

func NewJournalStorage(snapshots Snapshots, logger *zap.Logger, opts ...JournalOption) *JournalStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	js := &JournalStorage{
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
		entries:   []models.JournalEntry{},
	}
	for _, opt := range opts {
		opt(js)
	}
	return js
}

// Load replaces the in-memory collection with the persisted snapshot. A missing or
// unreadable snapshot yields an empty journal and is never reported to the caller.
func (js *JournalStorage) Load(ctx context.Context) {
	op := "storage.JournalStorage.Load"

	var entries []models.JournalEntry
	err := LoadJSON(ctx, js.snapshots, JournalKey, &entries)

	js.mu.Lock()
	defer js.mu.Unlock()

	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		js.entries = []models.JournalEntry{}
	case err != nil:
		js.logger.Warn("journal snapshot unreadable, starting empty", zap.String("op", op), zap.Error(err))
		js.entries = []models.JournalEntry{}
	default:
		if entries == nil {
			entries = []models.JournalEntry{}
		}
		js.entries = entries
		js.logger.Debug("journal loaded", zap.String("op", op), zap.Int("entries", len(entries)))
	}
}

// List returns every entry, newest first.
func (js *JournalStorage) List() []models.JournalEntry {
	js.mu.RLock()
	defer js.mu.RUnlock()

	out := make([]models.JournalEntry, len(js.entries))
	for i, e := range js.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

func (js *JournalStorage) Get(id string) (models.JournalEntry, error) {
	js.mu.RLock()
	defer js.mu.RUnlock()

	idx := js.indexOf(id)
	if idx < 0 {
		return models.JournalEntry{}, apperr.NotFound(fmt.Sprintf("entry %q not found", id))
	}
	return cloneEntry(js.entries[idx]), nil
}

func (js *JournalStorage) Create(ctx context.Context, in models.EntryInput) (models.JournalEntry, error) {
	op := "storage.JournalStorage.Create"

	entry := models.JournalEntry{
		ID:        uuid.NewString(),
		CreatedAt: js.now().UTC(),
	}
	applyInput(&entry, in)

	if err := validateStruct(entry); err != nil {
		return models.JournalEntry{}, fmt.Errorf("%s: %w", op, err)
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	js.entries = append([]models.JournalEntry{entry}, js.entries...)
	js.persistLocked(ctx, op)

	return cloneEntry(entry), nil
}

// Update replaces the editable fields of an entry. The identifier and CreatedAt never change.
func (js *JournalStorage) Update(ctx context.Context, id string, in models.EntryInput) (models.JournalEntry, error) {
	op := "storage.JournalStorage.Update"

	js.mu.Lock()
	defer js.mu.Unlock()

	idx := js.indexOf(id)
	if idx < 0 {
		return models.JournalEntry{}, fmt.Errorf("%s: %w", op, apperr.NotFound(fmt.Sprintf("entry %q not found", id)))
	}

	updated := js.entries[idx]
	applyInput(&updated, in)

	if err := validateStruct(updated); err != nil {
		return models.JournalEntry{}, fmt.Errorf("%s: %w", op, err)
	}

	js.entries[idx] = updated
	js.persistLocked(ctx, op)

	return cloneEntry(updated), nil
}

func (js *JournalStorage) Delete(ctx context.Context, id string) error {
	op := "storage.JournalStorage.Delete"

	js.mu.Lock()
	defer js.mu.Unlock()

	idx := js.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%s: %w", op, apperr.NotFound(fmt.Sprintf("entry %q not found", id)))
	}

	js.entries = append(js.entries[:idx:idx], js.entries[idx+1:]...)
	js.persistLocked(ctx, op)

	return nil
}

// persistLocked writes the full collection. Failures are logged and the in-memory
// state is kept as is.
func (js *JournalStorage) persistLocked(ctx context.Context, op string) {
	if err := SaveJSON(ctx, js.snapshots, JournalKey, js.entries); err != nil {
		js.logger.Error("failed to persist journal", zap.String("op", op), zap.Error(err))
		if js.onWriteFail != nil {
			js.onWriteFail(JournalKey)
		}
	}
}

func (js *JournalStorage) indexOf(id string) int {
	for i, e := range js.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func applyInput(entry *models.JournalEntry, in models.EntryInput) {
	entry.Title = strings.TrimSpace(in.Title)
	entry.Body = strings.TrimSpace(in.Body)
	entry.Mood = in.Mood
	entry.Image = strings.TrimSpace(in.Image)

	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	entry.Tags = tags
}

func cloneEntry(e models.JournalEntry) models.JournalEntry {
	tags := make([]string, len(e.Tags))
	copy(tags, e.Tags)
	e.Tags = tags
	return e
}
