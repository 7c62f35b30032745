package stepstone

import (
	"strings"
	"testing"

	"github.com/fkoehler/stepscout/internal/domain"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestSearchURL(t *testing.T) {
	c := testClient(t)

	tests := []struct {
		name     string
		term     string
		loc      *domain.Location
		contains []string
		excludes []string
	}{
		{
			name: "with location",
			term: "fraud specialist",
			loc:  &domain.Location{ZipCode: "40210", Radius: 5},
			contains: []string{
				"/jobs/fraud%20specialist/in-40210?",
				"radius=5",
				"searchOrigin=Homepage_top-search",
				"q=%22fraud+specialist%22",
			},
		},
		{
			name:     "without location falls back to nationwide",
			term:     "compliance",
			loc:      nil,
			contains: []string{"/jobs/compliance?"},
			excludes: []string{"radius=", "/in-"},
		},
		{
			name:     "radius clamped to upper bound",
			term:     "betrug",
			loc:      &domain.Location{ZipCode: "40210", Radius: 500},
			contains: []string{"radius=100"},
		},
		{
			name:     "radius clamped to lower bound",
			term:     "betrug",
			loc:      &domain.Location{ZipCode: "40210", Radius: -3},
			contains: []string{"radius=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.SearchURL(tt.term, tt.loc)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("SearchURL(%q) = %q, missing %q", tt.term, got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("SearchURL(%q) = %q, unexpectedly contains %q", tt.term, got, bad)
				}
			}
		})
	}
}

func TestSearchURLDeterministic(t *testing.T) {
	c := testClient(t)
	loc := &domain.Location{ZipCode: "10115", Radius: 30}

	first := c.SearchURL("data analyst", loc)
	for i := 0; i < 10; i++ {
		if got := c.SearchURL("data analyst", loc); got != first {
			t.Fatalf("SearchURL not deterministic: %q vs %q", got, first)
		}
	}
}
