// Package follow owns the set of directory users the current user follows and its snapshot.
package follow

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"dream_weaver/internal/models"
	"dream_weaver/internal/storage"
)

const SnapshotKey = "dreamWeaverFollowedUsers"

// Store is safe for concurrent use. Every Toggle rewrites the whole snapshot while
// holding the store lock, so writes never interleave.
type Store struct {
	snapshots   storage.Snapshots
	logger      *zap.Logger
	onWriteFail func(key string)
	mu          sync.Mutex
	order       []string
	followed    map[string]struct{}
}

type Option func(*Store)

func WithWriteFailureHook(fn func(key string)) Option {
	return func(s *Store) {
		s.onWriteFail = fn
	}
}

func NewStore(snapshots storage.Snapshots, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		snapshots: snapshots,
		logger:    logger,
		followed:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load populates the set from the snapshot. An absent or corrupt snapshot leaves the set empty.
func (s *Store) Load(ctx context.Context) {
	op := "follow.Store.Load"

	var relations []models.FollowRelation
	err := storage.LoadJSON(ctx, s.snapshots, SnapshotKey, &relations)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.followed = make(map[string]struct{})

	if err != nil {
		if !errors.Is(err, storage.ErrSnapshotNotFound) {
			s.logger.Warn("follow snapshot unreadable, starting empty", zap.String("op", op), zap.Error(err))
		}
		return
	}

	for _, r := range relations {
		if r.UserID == "" {
			continue
		}
		if _, dup := s.followed[r.UserID]; dup {
			continue
		}
		s.followed[r.UserID] = struct{}{}
		s.order = append(s.order, r.UserID)
	}
	s.logger.Debug("follow state loaded", zap.String("op", op), zap.Int("followed", len(s.order)))
}

func (s *Store) IsFollowing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.followed[id]
	return ok
}

// Toggle follows id if it is not followed and unfollows it otherwise, then persists the
// set. It returns the new state. A failed write is logged; the in-memory state stands.
func (s *Store) Toggle(ctx context.Context, id string) bool {
	op := "follow.Store.Toggle"

	s.mu.Lock()
	defer s.mu.Unlock()

	following := false
	if _, ok := s.followed[id]; ok {
		delete(s.followed, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	} else {
		s.followed[id] = struct{}{}
		s.order = append(s.order, id)
		following = true
	}

	relations := make([]models.FollowRelation, len(s.order))
	for i, userID := range s.order {
		relations[i] = models.FollowRelation{UserID: userID}
	}
	if err := storage.SaveJSON(ctx, s.snapshots, SnapshotKey, relations); err != nil {
		s.logger.Error("failed to persist follow state", zap.String("op", op), zap.String("user_id", id), zap.Error(err))
		if s.onWriteFail != nil {
			s.onWriteFail(SnapshotKey)
		}
	}

	s.logger.Info("follow toggled", zap.String("op", op), zap.String("user_id", id), zap.Bool("following", following))
	return following
}

// Followed returns followed identifiers in the order they were followed.
func (s *Store) Followed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string{}, s.order...)
}
