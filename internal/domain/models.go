package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// JobListing is the normalized summary record for one posting found during
// a search. Link is the listing's identity: duplicates by link are removed
// within a session's result set.
type JobListing struct {
	Title    string `json:"title"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet,omitempty"`
}

// JobDetail is the enriched record fetched on demand from a listing's own
// page. Optional fields stay empty when the page does not expose them.
type JobDetail struct {
	Title            string   `json:"title"`
	Company          string   `json:"company,omitempty"`
	Location         string   `json:"location,omitempty"`
	Link             string   `json:"link"`
	Salary           string   `json:"salary,omitempty"`
	EmploymentType   string   `json:"employment_type,omitempty"`
	ExperienceLevel  string   `json:"experience_level,omitempty"`
	PostedDate       string   `json:"posted_date,omitempty"`
	Description      string   `json:"description"`
	Requirements     []string `json:"requirements,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Benefits         []string `json:"benefits,omitempty"`
}

// Location narrows a search to a postal code and a radius in kilometers.
type Location struct {
	ZipCode string
	Radius  int
}

// Radius bounds documented by the portal.
const (
	MinRadius = 1
	MaxRadius = 100
)

// Validate rejects malformed locations before any network activity.
func (l Location) Validate() error {
	if l.Radius < MinRadius || l.Radius > MaxRadius {
		return fmt.Errorf("%w: radius %d outside [%d, %d]", ErrInvalidLocation, l.Radius, MinRadius, MaxRadius)
	}

	code := strings.TrimSpace(l.ZipCode)
	if code == "" {
		return fmt.Errorf("%w: postal code is empty", ErrInvalidLocation)
	}
	if len(code) != 5 {
		return fmt.Errorf("%w: postal code %q must have 5 digits", ErrInvalidLocation, l.ZipCode)
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("%w: postal code %q is not numeric", ErrInvalidLocation, l.ZipCode)
		}
	}

	return nil
}

// TermResult holds one search term's outcome. A term whose fetch failed
// after retries carries an empty listing slice and the failure reason.
type TermResult struct {
	Term     string       `json:"term"`
	Listings []JobListing `json:"listings"`
	Failure  string       `json:"failure,omitempty"`
}

// SearchResult wraps the merged, deduplicated output of one search call.
type SearchResult struct {
	Results    []TermResult `json:"results"`
	TotalCount int          `json:"total_count"`
	FetchedAt  time.Time    `json:"fetched_at"`
}
