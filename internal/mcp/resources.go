package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const searchHelpURI = "stepstone://search-help"

const searchHelpText = `Stepstone Job Search MCP Server

This server searches for jobs on Stepstone.de.

Available tools:
- search_jobs: search for jobs using multiple search terms
- get_job_details: fetch the full posting for one result of a prior search

search_jobs parameters:
- search_terms: list of job search terms (e.g. ["fraud", "betrug", "data analyst"])
- zip_code: German postal code for location-based search; omit for nationwide results
- radius: search radius in kilometers (1-100, default 5)

get_job_details parameters:
- session_id: session from a prior search; omit for the most recent one
- job_index: 1-based position of the listing in the search results
- query: free-text match against listing title or company

Search results are kept for one hour. Pass the returned session_id to
get_job_details to drill into a specific listing.
`

// registerResources publishes the static usage help resource.
func registerResources(s *sdkmcp.Server) {
	s.AddResource(&sdkmcp.Resource{
		URI:         searchHelpURI,
		Name:        "Stepstone Job Search Help",
		Description: "How to use the Stepstone job search tools",
		MIMEType:    "text/plain",
	}, func(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		_ = ctx
		return &sdkmcp.ReadResourceResult{
			Contents: []*sdkmcp.ResourceContents{
				{URI: searchHelpURI, MIMEType: "text/plain", Text: searchHelpText},
			},
		}, nil
	})
}
