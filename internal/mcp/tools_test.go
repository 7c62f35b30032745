package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fkoehler/stepscout/internal/domain"
	"github.com/fkoehler/stepscout/internal/search"
	"github.com/fkoehler/stepscout/internal/session"
	"github.com/fkoehler/stepscout/pkg/logging"
)

var testImpl = &sdkmcp.Implementation{Name: "stepscout-test", Version: "0.0.1"}

type stubProvider struct {
	byTerm map[string][]domain.JobListing
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Search(_ context.Context, term string, _ *domain.Location) ([]domain.JobListing, error) {
	listings, ok := p.byTerm[term]
	if !ok {
		return nil, fmt.Errorf("no fixture for term %q", term)
	}
	return listings, nil
}

type stubDetailer struct {
	details map[string]domain.JobDetail
}

func (d *stubDetailer) Detail(_ context.Context, link string) (domain.JobDetail, error) {
	detail, ok := d.details[link]
	if !ok {
		return domain.JobDetail{}, fmt.Errorf("%w: %s", domain.ErrDetailParse, link)
	}
	return detail, nil
}

func testSession(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	provider := &stubProvider{byTerm: map[string][]domain.JobListing{
		"fraud": {
			{Title: "Fraud Specialist", Company: "ACME Bank", Location: "Düsseldorf", Link: "https://example.com/1"},
			{Title: "Fraud Analyst", Company: "Beta GmbH", Link: "https://example.com/2"},
		},
		"compliance": {
			{Title: "Compliance Officer", Company: "Gamma AG", Link: "https://example.com/3"},
		},
	}}
	detailer := &stubDetailer{details: map[string]domain.JobDetail{
		"https://example.com/1": {
			Title:       "Fraud Specialist",
			Company:     "ACME Bank",
			Salary:      "55.000 € pro Jahr",
			Description: "Investigate suspicious transactions.",
			Link:        "https://example.com/1",
		},
		"https://example.com/3": {
			Title:       "Compliance Officer",
			Company:     "Gamma AG",
			Description: "Own the compliance program.",
			Link:        "https://example.com/3",
		},
	}}

	svc, err := search.NewService(provider)
	if err != nil {
		t.Fatal(err)
	}
	res := &Resources{
		SearchSvc: svc,
		Sessions:  session.NewStore(time.Hour, nil),
		Detailer:  detailer,
	}

	srv := sdkmcp.NewServer(testImpl, nil)
	registerTools(srv, res, logging.Nop())
	registerResources(srv)

	serverT, clientT := sdkmcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := sdkmcp.NewClient(testImpl, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func callTool(t *testing.T, cs *sdkmcp.ClientSession, name string, args any) *sdkmcp.CallToolResult {
	t.Helper()
	result, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return result
}

func toolText(t *testing.T, result *sdkmcp.CallToolResult) string {
	t.Helper()
	tc, ok := result.Content[0].(*sdkmcp.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", tc.Text)
	}
	return tc.Text
}

// toolError returns the error text of a failed tool call, or "" on success.
// SetError is only visible server-side; clients see IsError plus the error
// text in Content.
func toolError(t *testing.T, result *sdkmcp.CallToolResult) string {
	t.Helper()
	if !result.IsError {
		return ""
	}
	tc, ok := result.Content[0].(*sdkmcp.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}
	return tc.Text
}

func searchSessionID(t *testing.T, result *sdkmcp.CallToolResult) string {
	t.Helper()
	raw, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatal(err)
	}
	var payload SearchJobsResult
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.SessionID == "" {
		t.Fatal("search result carries no session id")
	}
	return payload.SessionID
}

func TestSearchJobsTool(t *testing.T) {
	cs := testSession(t)

	result := callTool(t, cs, "search_jobs", SearchJobsParams{
		SearchTerms: []string{"fraud", "compliance"},
	})
	text := toolText(t, result)

	for _, want := range []string{
		"Total Jobs Found: 3",
		"Location: nationwide",
		"1. Fraud Specialist",
		"3. Compliance Officer",
		"Company: ACME Bank",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
	_ = searchSessionID(t, result)
}

func TestSearchJobsToolRejectsRadiusWithoutZip(t *testing.T) {
	cs := testSession(t)

	result := callTool(t, cs, "search_jobs", SearchJobsParams{
		SearchTerms: []string{"fraud"},
		Radius:      30,
	})
	if toolError(t, result) == "" {
		t.Fatal("expected a tool error for radius without zip_code")
	}
}

func TestGetJobDetailsByIndex(t *testing.T) {
	cs := testSession(t)

	searchRes := callTool(t, cs, "search_jobs", SearchJobsParams{
		SearchTerms: []string{"fraud", "compliance"},
	})
	id := searchSessionID(t, searchRes)

	// Index 3 is the compliance listing, counted across terms.
	result := callTool(t, cs, "get_job_details", GetJobDetailsParams{
		SessionID: id,
		JobIndex:  3,
	})
	text := toolText(t, result)
	if !strings.Contains(text, "Compliance Officer") || !strings.Contains(text, "Own the compliance program.") {
		t.Errorf("detail text = %q", text)
	}
}

func TestGetJobDetailsByQueryOnLatestSession(t *testing.T) {
	cs := testSession(t)

	callTool(t, cs, "search_jobs", SearchJobsParams{SearchTerms: []string{"fraud"}})

	// No session id: the most recent session is used.
	result := callTool(t, cs, "get_job_details", GetJobDetailsParams{
		Query: "fraud specialist",
	})
	text := toolText(t, result)
	if !strings.Contains(text, "Salary: 55.000 € pro Jahr") {
		t.Errorf("detail text = %q", text)
	}
}

func TestGetJobDetailsErrors(t *testing.T) {
	cs := testSession(t)

	searchRes := callTool(t, cs, "search_jobs", SearchJobsParams{SearchTerms: []string{"fraud"}})
	id := searchSessionID(t, searchRes)

	tests := []struct {
		name   string
		params GetJobDetailsParams
		want   string
	}{
		{"index out of range", GetJobDetailsParams{SessionID: id, JobIndex: 99}, "out of range"},
		{"negative index", GetJobDetailsParams{SessionID: id, JobIndex: -1}, "out of range"},
		{"unknown session lists active ids", GetJobDetailsParams{SessionID: "nope", JobIndex: 1}, id},
		{"no selector", GetJobDetailsParams{SessionID: id}, "job_index"},
		{"no match", GetJobDetailsParams{SessionID: id, Query: "astronaut"}, "astronaut"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callTool(t, cs, "get_job_details", tt.params)
			errText := toolError(t, result)
			if errText == "" {
				t.Fatal("expected a tool error")
			}
			if !strings.Contains(errText, tt.want) {
				t.Errorf("error %q does not mention %q", errText, tt.want)
			}
		})
	}
}

func TestSearchHelpResource(t *testing.T) {
	cs := testSession(t)

	res, err := cs.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: searchHelpURI})
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	if len(res.Contents) == 0 || !strings.Contains(res.Contents[0].Text, "search_jobs") {
		t.Fatalf("unexpected resource contents: %+v", res.Contents)
	}
}
