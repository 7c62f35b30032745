package stepstone

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fkoehler/stepscout/internal/domain"
)

const descriptionLimit = 2000

var (
	salaryPattern = regexp.MustCompile(`(?i)\d{1,3}(?:\.\d{3})*(?:,\d{2})?\s*€(?:\s*(?:pro\s*(?:Monat|Jahr)|p\.?\s*a\.?|p\.?\s*m\.?))?`)

	postedDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)vor\s+\d+\s+(?:Tagen|Tag|Stunden|Stunde|Minuten|Minute)`),
		regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{4}`),
		regexp.MustCompile(`\d{2}/\d{2}/\d{4}`),
	}

	employmentKeywords = []string{"vollzeit", "teilzeit", "befristet", "unbefristet", "freelance", "praktikum", "werkstudent"}
	experienceKeywords = []string{"einsteiger", "berufserfahren", "senior", "leitung", "fachkraft"}
)

// parseDetail extracts the enriched record from a job posting page. Missing
// optional fields are left empty; ErrDetailParse is reserved for pages that
// cannot be interpreted as a job posting at all.
func parseDetail(body []byte, link string) (domain.JobDetail, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.JobDetail{}, fmt.Errorf("%w: %s", domain.ErrDetailParse, err)
	}

	pageText := doc.Text()

	detail := domain.JobDetail{
		Title:            firstText(doc.Selection, `h1[data-testid="job-title"]`, `h1`),
		Company:          firstText(doc.Selection, `[data-testid="company-name"]`, `a[href*="/cmp/"]`, `h2[class*="company"]`),
		Location:         firstText(doc.Selection, `[data-testid="job-location"]`, `span[class*="location"]`),
		Link:             link,
		Salary:           extractSalary(doc, pageText),
		EmploymentType:   extractKeywordField(doc, pageText, `[data-testid="employment-type"]`, employmentKeywords),
		ExperienceLevel:  extractKeywordField(doc, pageText, `[data-testid="experience-level"]`, experienceKeywords),
		PostedDate:       extractPostedDate(doc, pageText),
		Description:      extractDescription(doc),
		Requirements:     extractSection(doc, `[data-testid="requirements"]`, "anforderungen", "requirements", "profil"),
		Responsibilities: extractSection(doc, `[data-testid="responsibilities"]`, "aufgaben", "responsibilities"),
		Benefits:         extractSection(doc, `[data-testid="benefits"]`, "benefits", "leistungen", "wir bieten"),
	}

	if detail.Title == "" && detail.Description == "" {
		return domain.JobDetail{}, fmt.Errorf("%w: %s", domain.ErrDetailParse, link)
	}

	return detail, nil
}

func extractSalary(doc *goquery.Document, pageText string) string {
	if t := firstText(doc.Selection, `[data-testid="salary"]`, `span[class*="salary"]`, `div[class*="salary"]`); t != "" {
		if strings.Contains(t, "€") || strings.Contains(strings.ToLower(t), "gehalt") {
			return t
		}
	}
	return strings.TrimSpace(salaryPattern.FindString(pageText))
}

// extractKeywordField tries the structured selector first, then falls back
// to scanning the page text for known German keywords.
func extractKeywordField(doc *goquery.Document, pageText, selector string, keywords []string) string {
	if t := firstText(doc.Selection, selector); t != "" {
		return t
	}

	lower := strings.ToLower(pageText)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return strings.ToUpper(kw[:1]) + kw[1:]
		}
	}
	return ""
}

func extractPostedDate(doc *goquery.Document, pageText string) string {
	if t := firstText(doc.Selection, `[data-testid="posted-date"]`, `span[class*="date-posted"]`); t != "" {
		return t
	}
	for _, p := range postedDatePatterns {
		if m := p.FindString(pageText); m != "" {
			return m
		}
	}
	return ""
}

func extractDescription(doc *goquery.Document) string {
	desc := firstText(doc.Selection, `[data-testid="job-description"]`, `section[class*="description"]`, `div[class*="description"]`)
	if desc == "" {
		// Fall back to the main content area, truncated.
		desc = firstText(doc.Selection, "main", "article")
	}
	return truncate(desc, descriptionLimit)
}

// extractSection collects the bullet list for a posting section, located
// either by a structured testid or by a heading whose text contains one of
// the given keywords.
func extractSection(doc *goquery.Document, selector string, headingKeywords ...string) []string {
	if items := listItems(doc.Find(selector).First()); len(items) > 0 {
		return items
	}

	var items []string
	doc.Find("h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		heading := strings.ToLower(strings.TrimSpace(h.Text()))
		for _, kw := range headingKeywords {
			if !strings.Contains(heading, kw) {
				continue
			}
			items = listItems(h.NextAllFiltered("ul, ol").First())
			if len(items) == 0 {
				// The list may be nested in a wrapper next to the heading.
				items = listItems(h.Parent())
			}
			if len(items) > 0 {
				return false
			}
		}
		return true
	})
	return items
}

func listItems(s *goquery.Selection) []string {
	var items []string
	s.Find("li").Each(func(_ int, li *goquery.Selection) {
		if t := strings.TrimSpace(li.Text()); t != "" {
			items = append(items, t)
		}
	})
	return items
}
