package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/fkoehler/stepscout/internal/domain"
	"github.com/fkoehler/stepscout/pkg/logging"
)

// DefaultTTL is the fixed session lifetime.
const DefaultTTL = time.Hour

// Session is a time-boxed, server-held result set from one search. Sessions
// are immutable once stored, so readers may share them without copying.
type Session struct {
	ID        string
	Terms     []string
	Results   map[string][]domain.JobListing
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Flatten returns the session's listings in term-major order: all listings
// of the first term, then the second, and so on.
func (s *Session) Flatten() []domain.JobListing {
	var flat []domain.JobListing
	for _, term := range s.Terms {
		flat = append(flat, s.Results[term]...)
	}
	return flat
}

// Selector identifies one stored listing. SessionID empty means "most
// recent active session". Index is 1-based into the flattened sequence and
// takes precedence over Query when both are set.
type Selector struct {
	SessionID string
	Index     int
	Query     string
}

// Info is a lightweight view of an active session.
type Info struct {
	ID           string    `json:"session_id"`
	Terms        []string  `json:"terms"`
	ListingCount int       `json:"listing_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Option configures the Store.
type Option func(*Store)

// WithClock sets a custom clock.
func WithClock(clock func() time.Time) Option {
	return func(st *Store) {
		if clock != nil {
			st.clock = clock
		}
	}
}

// Store owns every session. Expiry is enforced both lazily on lookup and by
// a periodic cron sweep, so abandoned sessions do not accumulate.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl    time.Duration
	clock  func() time.Time
	logger *logging.Logger
	cron   *cron.Cron
}

// NewStore creates an empty session store with the given TTL.
func NewStore(ttl time.Duration, logger *logging.Logger, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.Nop()
	}

	st := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		clock:    time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Create allocates a new session holding the given per-term listings and
// returns its id. Concurrent creates each receive a distinct id.
func (st *Store) Create(terms []string, byTerm map[string][]domain.JobListing) string {
	id := uuid.NewString()
	now := st.clock()

	results := make(map[string][]domain.JobListing, len(byTerm))
	for term, listings := range byTerm {
		results[term] = append([]domain.JobListing(nil), listings...)
	}

	sess := &Session{
		ID:        id,
		Terms:     append([]string(nil), terms...),
		Results:   results,
		CreatedAt: now,
		ExpiresAt: now.Add(st.ttl),
	}

	st.mu.Lock()
	st.sessions[id] = sess
	st.mu.Unlock()

	st.logger.Debug("session created", "session_id", id, "terms", len(terms))
	return id
}

// Get returns the session with the given id, dropping it lazily when it is
// already past its TTL.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %q", domain.ErrNotFound, id)
	}
	if st.expired(sess) {
		delete(st.sessions, id)
		return nil, fmt.Errorf("%w: id %q", domain.ErrSessionExpired, id)
	}
	return sess, nil
}

// Latest returns the most recent non-expired session.
func (st *Store) Latest() (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var latest *Session
	for _, sess := range st.sessions {
		if st.expired(sess) {
			continue
		}
		if latest == nil || sess.CreatedAt.After(latest.CreatedAt) {
			latest = sess
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

// Resolve maps a selector to exactly one stored listing. Resolution is
// deterministic: the same selector against an unmodified session always
// yields the same listing.
func (st *Store) Resolve(sel Selector) (domain.JobListing, error) {
	var (
		sess *Session
		err  error
	)
	if sel.SessionID == "" {
		sess, err = st.Latest()
	} else {
		sess, err = st.Get(sel.SessionID)
	}
	if err != nil {
		return domain.JobListing{}, err
	}

	flat := sess.Flatten()

	switch {
	case sel.Index != 0:
		if sel.Index < 1 || sel.Index > len(flat) {
			return domain.JobListing{}, fmt.Errorf("%w: index %d, session %s has %d listing(s)",
				domain.ErrIndexOutOfRange, sel.Index, sess.ID, len(flat))
		}
		return flat[sel.Index-1], nil

	case strings.TrimSpace(sel.Query) != "":
		return matchListing(flat, sel.Query)

	default:
		return domain.JobListing{}, domain.ErrMissingSelector
	}
}

// Active lists the non-expired sessions, newest first.
func (st *Store) Active() []Info {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var infos []Info
	for _, sess := range st.sessions {
		if st.expired(sess) {
			continue
		}
		count := 0
		for _, listings := range sess.Results {
			count += len(listings)
		}
		infos = append(infos, Info{
			ID:           sess.ID,
			Terms:        sess.Terms,
			ListingCount: count,
			CreatedAt:    sess.CreatedAt,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.After(infos[j].CreatedAt) })
	return infos
}

// Sweep drops every expired session and reports how many were removed.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if st.expired(sess) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper schedules Sweep on a cron interval such as "@every 10m".
func (st *Store) StartSweeper(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if n := st.Sweep(); n > 0 {
			st.logger.Info("expired sessions removed", "count", n)
		}
	}); err != nil {
		return fmt.Errorf("session: schedule sweep: %w", err)
	}

	c.Start()
	st.cron = c
	st.logger.Info("session sweeper started", "spec", spec)
	return nil
}

// Shutdown stops the sweeper. It satisfies the process shutdown contract.
func (st *Store) Shutdown(ctx context.Context) error {
	_ = ctx
	if st.cron != nil {
		st.cron.Stop()
	}
	return nil
}

func (st *Store) expired(sess *Session) bool {
	return !st.clock().Before(sess.ExpiresAt)
}
