package discovery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dream_weaver/internal/apperr"
	"dream_weaver/internal/location"
	"dream_weaver/internal/models"
)

type State string

const (
	StateIdle              State = "idle"
	StateLocationRequested State = "location_requested"
	StateLocationResolved  State = "location_resolved"
	StateLocationFailed    State = "location_failed"
)

var (
	ErrRequestPending  = apperr.Conflict("a location request is already pending")
	ErrAlreadyOpen     = apperr.Conflict("discovery session is already open")
	ErrRetryNotAllowed = apperr.Conflict("retry is only available after a failed location request")
	ErrNoLocation      = apperr.Conflict("location has not been resolved")
)

type Status struct {
	State    State            `json:"state"`
	Location *models.Location `json:"location,omitempty"`
	Failure  location.Kind    `json:"failure,omitempty"`
}

// Session walks Idle -> LocationRequested -> LocationResolved | LocationFailed.
// Only one location request is ever outstanding. A result that lands after Close
// (or after a reopen) belongs to an older generation and is dropped.
type Session struct {
	ID string

	provider location.Provider
	request  location.Request
	logger   *zap.Logger
	observe  func(outcome string)

	mu         sync.Mutex
	state      State
	generation uint64
	location   *models.Location
	failure    location.Kind
}

func newSession(id string, provider location.Provider, logger *zap.Logger, observe func(string)) *Session {
	return &Session{
		ID:       id,
		provider: provider,
		request:  location.DefaultRequest,
		logger:   logger,
		observe:  observe,
		state:    StateIdle,
	}
}

// Open issues the first location request. Only allowed from Idle.
func (s *Session) Open(ctx context.Context) (Status, error) {
	s.mu.Lock()
	switch s.state {
	case StateIdle:
	case StateLocationRequested:
		s.mu.Unlock()
		return s.Status(), ErrRequestPending
	default:
		s.mu.Unlock()
		return s.Status(), ErrAlreadyOpen
	}
	gen := s.beginLocked()
	s.mu.Unlock()

	s.resolve(ctx, gen)
	return s.Status(), nil
}

// Retry re-issues the same request. Only allowed from LocationFailed.
func (s *Session) Retry(ctx context.Context) (Status, error) {
	s.mu.Lock()
	switch s.state {
	case StateLocationFailed:
	case StateLocationRequested:
		s.mu.Unlock()
		return s.Status(), ErrRequestPending
	default:
		s.mu.Unlock()
		return s.Status(), ErrRetryNotAllowed
	}
	gen := s.beginLocked()
	s.mu.Unlock()

	s.resolve(ctx, gen)
	return s.Status(), nil
}

// Close discards the resolved location and returns to Idle. Any outstanding request
// result will be ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = StateIdle
	s.location = nil
	s.failure = ""
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{State: s.state, Failure: s.failure}
	if s.location != nil {
		loc := *s.location
		st.Location = &loc
	}
	return st
}

// Location returns the resolved location, or ErrNoLocation outside LocationResolved.
func (s *Session) Location() (models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLocationResolved || s.location == nil {
		return models.Location{}, ErrNoLocation
	}
	return *s.location, nil
}

// Candidates runs the discovery pipeline against the resolved location.
func (s *Session) Candidates(d *Discoverer, query string, current KeywordSet) ([]Candidate, error) {
	loc, err := s.Location()
	if err != nil {
		return nil, err
	}
	return d.Candidates(&loc, query, current), nil
}

func (s *Session) beginLocked() uint64 {
	s.generation++
	s.state = StateLocationRequested
	s.location = nil
	s.failure = ""
	return s.generation
}

func (s *Session) resolve(ctx context.Context, gen uint64) {
	op := "discovery.Session.resolve"

	loc, err := s.locate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		s.logger.Debug("dropping stale location result", zap.String("op", op), zap.String("session", s.ID))
		return
	}

	if err != nil {
		kind := location.KindOf(err)
		s.state = StateLocationFailed
		s.failure = kind
		s.logger.Warn("location request failed", zap.String("op", op), zap.String("session", s.ID),
			zap.String("kind", string(kind)), zap.Error(err))
		s.report(string(kind))
		return
	}

	s.state = StateLocationResolved
	s.location = &loc
	s.logger.Info("location resolved", zap.String("op", op), zap.String("session", s.ID))
	s.report("resolved")
}

func (s *Session) locate(ctx context.Context) (loc models.Location, err error) {
	if s.provider == nil {
		return models.Location{}, &location.Error{Kind: location.KindUnsupported, Err: errors.New("no location provider")}
	}
	defer func() {
		if r := recover(); r != nil {
			err = &location.Error{Kind: location.KindUnknown, Err: errors.New("location provider panicked")}
		}
	}()
	return s.provider.Locate(ctx, s.request)
}

func (s *Session) report(outcome string) {
	if s.observe != nil {
		s.observe(outcome)
	}
}

const (
	DefaultSessionIdleTTL = 30 * time.Minute
	DefaultMaxSessions    = 1024
)

type trackedSession struct {
	session *Session
	touched time.Time
}

// SessionManager tracks open discovery sessions by identifier. A session that goes
// untouched for the idle TTL is evicted, and when the table is full the least recently
// touched session makes room. Eviction closes the session like Close does.
type SessionManager struct {
	logger      *zap.Logger
	observe     func(outcome string)
	idleTTL     time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*trackedSession
}

type ManagerOption func(*SessionManager)

// WithLocationObserver is called with "resolved" or a failure kind for every finished request.
func WithLocationObserver(fn func(outcome string)) ManagerOption {
	return func(m *SessionManager) {
		m.observe = fn
	}
}

func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *SessionManager) {
		m.idleTTL = ttl
	}
}

func WithMaxSessions(n int) ManagerOption {
	return func(m *SessionManager) {
		m.maxSessions = n
	}
}

func withClock(now func() time.Time) ManagerOption {
	return func(m *SessionManager) {
		m.now = now
	}
}

func NewSessionManager(logger *zap.Logger, opts ...ManagerOption) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &SessionManager{
		logger:      logger,
		idleTTL:     DefaultSessionIdleTTL,
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
		sessions:    make(map[string]*trackedSession),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open creates a session bound to provider and runs its first location request.
func (m *SessionManager) Open(ctx context.Context, provider location.Provider) (*Session, Status) {
	s := newSession(uuid.NewString(), provider, m.logger, m.observe)

	m.mu.Lock()
	evicted := m.sweepLocked()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		evicted = append(evicted, m.evictOldestLocked())
	}
	m.sessions[s.ID] = &trackedSession{session: s, touched: m.now()}
	m.mu.Unlock()

	m.closeEvicted(evicted)

	status, _ := s.Open(ctx)
	return s, status
}

// Get returns the session and marks it as used.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	evicted := m.sweepLocked()
	t, ok := m.sessions[id]
	if ok {
		t.touched = m.now()
	}
	m.mu.Unlock()

	m.closeEvicted(evicted)

	if !ok {
		return nil, apperr.NotFound("discovery session not found")
	}
	return t.session, nil
}

// Close discards the session. Closing an unknown session is a no-op.
func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	t, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		t.session.Close()
	}
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) sweepLocked() []*Session {
	if m.idleTTL <= 0 {
		return nil
	}
	cutoff := m.now().Add(-m.idleTTL)
	var evicted []*Session
	for id, t := range m.sessions {
		if t.touched.Before(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, t.session)
		}
	}
	return evicted
}

func (m *SessionManager) evictOldestLocked() *Session {
	var oldestID string
	var oldest *trackedSession
	for id, t := range m.sessions {
		if oldest == nil || t.touched.Before(oldest.touched) {
			oldestID, oldest = id, t
		}
	}
	delete(m.sessions, oldestID)
	return oldest.session
}

func (m *SessionManager) closeEvicted(evicted []*Session) {
	op := "discovery.SessionManager.evict"
	for _, s := range evicted {
		s.Close()
		m.logger.Debug("discovery session evicted", zap.String("op", op), zap.String("session", s.ID))
	}
}
