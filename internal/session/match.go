package session

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/fkoehler/stepscout/internal/domain"
)

// Scoring weights. A title substring outranks a company substring, which
// outranks mere word overlap in the title.
const (
	scoreTitleSubstring   = 100
	scoreTitlePrefixBonus = 20
	scoreCompanySubstring = 50
)

// matchListing scores every listing against the query and returns the best
// hit. Ties resolve to the earliest listing in flattened order, so the same
// query against an unmodified session always yields the same listing.
func matchListing(listings []domain.JobListing, query string) (domain.JobListing, error) {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))

	best := -1
	bestScore := 0
	for i, l := range listings {
		if score := scoreListing(fold, l, q); score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		return domain.JobListing{}, fmt.Errorf("%w: %q", domain.ErrNoMatch, query)
	}
	return listings[best], nil
}

func scoreListing(fold cases.Caser, l domain.JobListing, foldedQuery string) int {
	title := fold.String(l.Title)
	company := fold.String(l.Company)

	score := 0
	if strings.Contains(title, foldedQuery) {
		score += scoreTitleSubstring
		if strings.HasPrefix(title, foldedQuery) {
			score += scoreTitlePrefixBonus
		}
	}
	if company != "" && strings.Contains(company, foldedQuery) {
		score += scoreCompanySubstring
	}

	if score == 0 {
		// Partial match: count query words appearing in the title.
		titleWords := make(map[string]struct{})
		for _, w := range strings.Fields(title) {
			titleWords[w] = struct{}{}
		}
		for _, w := range strings.Fields(foldedQuery) {
			if _, ok := titleWords[w]; ok {
				score++
			}
		}
	}

	return score
}
