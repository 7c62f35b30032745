package stepstone

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fkoehler/stepscout/internal/domain"
)

const snippetLimit = 200

// parseListings extracts normalized listings from a search-results page.
// Result blocks are located by structural anchors rather than exact text,
// and a malformed block is skipped without aborting the rest of the page.
func (c *Client) parseListings(body []byte) []domain.JobListing {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("result page is not parseable HTML", "err", err)
		return nil
	}

	root := doc.Find("#app-unifiedResultlist")
	if root.Length() == 0 {
		// Markup variant without the result-list container.
		root = doc.Selection
	}

	seen := make(map[string]struct{})
	var listings []domain.JobListing

	root.Find(`article[data-testid="job-item"]`).Each(func(_ int, article *goquery.Selection) {
		anchor := article.Find("a[href]").First()
		href := strings.TrimSpace(anchor.AttrOr("href", ""))
		if href == "" {
			// A listing without a resolvable link has no identity.
			c.logger.Debug("skipping result block without link")
			return
		}
		link := c.absoluteLink(href)

		title := strings.TrimSpace(article.Find("h2").First().Text())
		if title == "" {
			title = strings.TrimSpace(anchor.Text())
		}
		if title == "" {
			c.logger.Debug("skipping result block without title", "link", link)
			return
		}

		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}

		listings = append(listings, domain.JobListing{
			Title:    title,
			Company:  firstText(article, `[data-testid="company-name"]`, `span[class*="company"]`, `a[href*="/cmp/"]`),
			Location: firstText(article, `[data-testid="job-item-location"]`, `span[class*="location"]`),
			Link:     link,
			Snippet:  truncate(firstText(article, `[data-testid="job-item-snippet"]`, `p[class*="snippet"]`, `p[class*="description"]`, `div[class*="description"]`), snippetLimit),
		})
	})

	return listings
}

// absoluteLink resolves portal-relative hrefs against the client's base URL.
func (c *Client) absoluteLink(href string) string {
	switch {
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return c.baseURL + href
	default:
		return c.baseURL + "/" + href
	}
}

// firstText returns the first non-empty trimmed text among the selectors.
func firstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if t := strings.TrimSpace(s.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
