package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fkoehler/stepscout/internal/domain"
	"github.com/fkoehler/stepscout/internal/session"
	"github.com/fkoehler/stepscout/pkg/logging"
)

const defaultRadius = 5

// SearchJobsParams defines the arguments for the search_jobs tool.
type SearchJobsParams struct {
	SearchTerms []string `json:"search_terms" jsonschema:"List of job search terms to look for"`
	ZipCode     string   `json:"zip_code,omitempty" jsonschema:"German postal code for location-based search; omit for nationwide results"`
	Radius      int      `json:"radius,omitempty" jsonschema:"Search radius in kilometers (1-100, default 5)"`
}

// SearchJobsResult is the structured payload returned by search_jobs.
type SearchJobsResult struct {
	SessionID  string              `json:"session_id"`
	Results    []domain.TermResult `json:"results"`
	TotalCount int                 `json:"total_count"`
}

// GetJobDetailsParams defines the arguments for the get_job_details tool.
type GetJobDetailsParams struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session id from a prior search; omit for the most recent session"`
	JobIndex  int    `json:"job_index,omitempty" jsonschema:"1-based position of the listing in the search results"`
	Query     string `json:"query,omitempty" jsonschema:"Free-text match against listing title or company; job_index takes precedence when both are given"`
}

type toolset struct {
	res    *Resources
	logger *logging.Logger
}

// registerTools wires both tools into the MCP server.
func registerTools(s *sdkmcp.Server, res *Resources, logger *logging.Logger) {
	ts := &toolset{res: res, logger: logger}

	sdkmcp.AddTool(s, &sdkmcp.Tool{
		Name:        "search_jobs",
		Description: "Search for job listings on Stepstone.de using multiple search terms",
	}, ts.searchJobs)

	sdkmcp.AddTool(s, &sdkmcp.Tool{
		Name:        "get_job_details",
		Description: "Fetch the full details of a job from a prior search, selected by index or by a title/company query. job_index takes precedence over query.",
	}, ts.getJobDetails)
}

func (t *toolset) searchJobs(ctx context.Context, req *sdkmcp.CallToolRequest, params *SearchJobsParams) (*sdkmcp.CallToolResult, any, error) {
	_ = req

	loc, err := locationFrom(params)
	if err != nil {
		return errorResult(err), nil, nil
	}

	result, err := t.res.SearchSvc.Search(ctx, params.SearchTerms, loc)
	if err != nil {
		// Validation failures only; partial fetch failures are recorded
		// per term inside the result.
		return errorResult(err), nil, nil
	}

	terms := make([]string, 0, len(result.Results))
	byTerm := make(map[string][]domain.JobListing, len(result.Results))
	for _, tr := range result.Results {
		terms = append(terms, tr.Term)
		byTerm[tr.Term] = tr.Listings
	}
	sessionID := t.res.Sessions.Create(terms, byTerm)

	t.logger.Info("search completed", "session_id", sessionID, "terms", len(terms), "total", result.TotalCount)

	payload := SearchJobsResult{
		SessionID:  sessionID,
		Results:    result.Results,
		TotalCount: result.TotalCount,
	}
	return textResult(formatSearchSummary(sessionID, loc, result)), payload, nil
}

func (t *toolset) getJobDetails(ctx context.Context, req *sdkmcp.CallToolRequest, params *GetJobDetailsParams) (*sdkmcp.CallToolResult, any, error) {
	_ = req

	if params.JobIndex < 0 {
		return errorResult(fmt.Errorf("%w: index %d", domain.ErrIndexOutOfRange, params.JobIndex)), nil, nil
	}

	listing, err := t.res.Sessions.Resolve(session.Selector{
		SessionID: params.SessionID,
		Index:     params.JobIndex,
		Query:     params.Query,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) && params.SessionID != "" {
			// Help the caller self-correct with what is still resolvable.
			if active := t.res.Sessions.Active(); len(active) > 0 {
				ids := make([]string, 0, len(active))
				for _, info := range active {
					ids = append(ids, info.ID)
				}
				err = fmt.Errorf("%w (active sessions: %s)", err, strings.Join(ids, ", "))
			}
		}
		return errorResult(err), nil, nil
	}

	detail, err := t.res.Detailer.Detail(ctx, listing.Link)
	if err != nil {
		t.logger.Warn("detail fetch failed", "link", listing.Link, "err", err)
		return errorResult(err), nil, nil
	}

	return textResult(formatDetail(detail)), detail, nil
}

// locationFrom derives the optional location filter. A radius without a
// postal code is rejected rather than silently ignored.
func locationFrom(params *SearchJobsParams) (*domain.Location, error) {
	if params.ZipCode == "" {
		if params.Radius != 0 {
			return nil, fmt.Errorf("%w: radius given without zip_code", domain.ErrInvalidLocation)
		}
		return nil, nil
	}

	radius := params.Radius
	if radius == 0 {
		radius = defaultRadius
	}
	return &domain.Location{ZipCode: params.ZipCode, Radius: radius}, nil
}

func formatSearchSummary(sessionID string, loc *domain.Location, result domain.SearchResult) string {
	var b strings.Builder

	b.WriteString("Job Search Summary\n")
	fmt.Fprintf(&b, "Session ID: %s\n", sessionID)
	if loc != nil {
		fmt.Fprintf(&b, "Location: %s (within %d km)\n", loc.ZipCode, loc.Radius)
	} else {
		b.WriteString("Location: nationwide\n")
	}
	fmt.Fprintf(&b, "Total Jobs Found: %d\n", result.TotalCount)

	index := 0
	for _, tr := range result.Results {
		fmt.Fprintf(&b, "\n--- Results for %q ---\n", tr.Term)
		if tr.Failure != "" {
			fmt.Fprintf(&b, "Search failed: %s\n", tr.Failure)
			continue
		}
		if len(tr.Listings) == 0 {
			b.WriteString("No jobs found for this search term.\n")
			continue
		}
		for _, l := range tr.Listings {
			index++
			fmt.Fprintf(&b, "\n%d. %s\n", index, l.Title)
			if l.Company != "" {
				fmt.Fprintf(&b, "   Company: %s\n", l.Company)
			}
			if l.Location != "" {
				fmt.Fprintf(&b, "   Location: %s\n", l.Location)
			}
			if l.Snippet != "" {
				fmt.Fprintf(&b, "   Description: %s\n", l.Snippet)
			}
			fmt.Fprintf(&b, "   Link: %s\n", l.Link)
		}
	}

	return b.String()
}

func formatDetail(d domain.JobDetail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", d.Title)
	if d.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", d.Company)
	}
	if d.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", d.Location)
	}
	if d.Salary != "" {
		fmt.Fprintf(&b, "Salary: %s\n", d.Salary)
	}
	if d.EmploymentType != "" {
		fmt.Fprintf(&b, "Employment Type: %s\n", d.EmploymentType)
	}
	if d.ExperienceLevel != "" {
		fmt.Fprintf(&b, "Experience Level: %s\n", d.ExperienceLevel)
	}
	if d.PostedDate != "" {
		fmt.Fprintf(&b, "Posted: %s\n", d.PostedDate)
	}

	if d.Description != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", d.Description)
	}
	writeList(&b, "Requirements", d.Requirements)
	writeList(&b, "Responsibilities", d.Responsibilities)
	writeList(&b, "Benefits", d.Benefits)

	fmt.Fprintf(&b, "\nLink: %s\n", d.Link)
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

// textResult returns a text-only ToolResult.
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

// errorResult reports a failure to the client without tearing down the call.
func errorResult(err error) *sdkmcp.CallToolResult {
	var res sdkmcp.CallToolResult
	res.SetError(err)
	return &res
}
