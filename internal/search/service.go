package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fkoehler/stepscout/internal/domain"
	"github.com/fkoehler/stepscout/pkg/logging"
)

// Provider represents a job portal the engine can search against.
type Provider interface {
	Name() string
	Search(ctx context.Context, term string, loc *domain.Location) ([]domain.JobListing, error)
}

const (
	defaultWorkers = 4
	defaultTimeout = 45 * time.Second
)

// Option configures the Service.
type Option func(*Service)

// WithWorkers bounds the number of concurrent per-term fetches.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTimeout bounds the whole search call, not just each individual fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithClock sets a custom clock.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Service orchestrates the per-term search pipeline across one provider.
type Service struct {
	provider Provider
	workers  int
	timeout  time.Duration
	logger   *logging.Logger
	clock    func() time.Time
}

// NewService builds a search engine from a provider and options.
func NewService(provider Provider, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("search.Service: provider is required")
	}

	s := &Service{
		provider: provider,
		workers:  defaultWorkers,
		timeout:  defaultTimeout,
		logger:   logging.Nop(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Search runs the per-term pipeline concurrently with bounded parallelism
// and merges the outcome. One term's failure after retries does not abort
// the others: its entry stays empty with the failure reason attached.
// Validation happens before any network activity.
func (s *Service) Search(ctx context.Context, terms []string, loc *domain.Location) (domain.SearchResult, error) {
	normalized, err := NormalizeTerms(terms)
	if err != nil {
		return domain.SearchResult{}, err
	}
	if loc != nil {
		if err := loc.Validate(); err != nil {
			return domain.SearchResult{}, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make([]domain.TermResult, len(normalized))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, term := range normalized {
		g.Go(func() error {
			listings, err := s.provider.Search(gctx, term, loc)
			if err != nil {
				s.logger.Warn("term search failed", "provider", s.provider.Name(), "term", term, "err", err)
				results[i] = domain.TermResult{Term: term, Listings: []domain.JobListing{}, Failure: err.Error()}
				return nil
			}
			results[i] = domain.TermResult{Term: term, Listings: listings}
			return nil
		})
	}
	// Workers never return errors; failures are recorded per term.
	_ = g.Wait()

	deduped, total := dedupe(results)

	return domain.SearchResult{
		Results:    deduped,
		TotalCount: total,
		FetchedAt:  s.clock(),
	}, nil
}

// NormalizeTerms trims terms and drops case-insensitive duplicates while
// preserving submission order.
func NormalizeTerms(terms []string) ([]string, error) {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))

	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}

	if len(out) == 0 {
		return nil, domain.ErrNoSearchTerms
	}
	return out, nil
}

// dedupe removes cross-term duplicates by source link, keeping a listing
// under the first term that produced it (submission order wins). Within the
// same batch, reposts of the same (title, company) under distinct links are
// collapsed as well.
func dedupe(results []domain.TermResult) ([]domain.TermResult, int) {
	seenLink := make(map[string]struct{})
	seenPost := make(map[[2]string]struct{})
	total := 0

	out := make([]domain.TermResult, 0, len(results))
	for _, tr := range results {
		kept := make([]domain.JobListing, 0, len(tr.Listings))
		for _, l := range tr.Listings {
			if _, dup := seenLink[l.Link]; dup {
				continue
			}
			if l.Title != "" && l.Company != "" {
				key := [2]string{strings.ToLower(l.Title), strings.ToLower(l.Company)}
				if _, dup := seenPost[key]; dup {
					continue
				}
				seenPost[key] = struct{}{}
			}
			seenLink[l.Link] = struct{}{}
			kept = append(kept, l)
		}
		tr.Listings = kept
		total += len(kept)
		out = append(out, tr)
	}

	return out, total
}
