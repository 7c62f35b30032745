package stepstone

import (
	"net/url"
	"strconv"

	"github.com/fkoehler/stepscout/internal/domain"
)

const searchOrigin = "Homepage_top-search"

// SearchURL builds the results-page URL for one term. Pure and
// deterministic: identical inputs always yield the same URL. When loc is
// nil the location path segment and radius parameter are omitted entirely,
// so the portal falls back to nationwide results.
func (c *Client) SearchURL(term string, loc *domain.Location) string {
	base := c.baseURL + "/jobs/" + url.PathEscape(term)

	values := url.Values{}
	values.Set("searchOrigin", searchOrigin)
	values.Set("q", `"`+term+`"`)

	if loc != nil {
		base += "/in-" + url.PathEscape(loc.ZipCode)
		values.Set("radius", strconv.Itoa(clampRadius(loc.Radius)))
	}

	return base + "?" + values.Encode()
}

func clampRadius(r int) int {
	if r < domain.MinRadius {
		return domain.MinRadius
	}
	if r > domain.MaxRadius {
		return domain.MaxRadius
	}
	return r
}
