package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/metrics"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find documents"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default from search.limit)"`
}

// SearchOutput is the output schema for the search tool: the result count
// and the ranked results, each with id, score, heading and content.
type SearchOutput = domain.SearchResponse

// AddInput is the input schema for the add tool.
type AddInput struct {
	ID      string `json:"id,omitempty" jsonschema:"record id; derived from the content when omitted"`
	Content string `json:"content" jsonschema:"text to index"`
	Source  string `json:"source,omitempty" jsonschema:"where the text came from"`
	Heading string `json:"heading,omitempty" jsonschema:"heading the text sits under"`
	Flush   bool   `json:"flush,omitempty" jsonschema:"flush immediately so the record is searchable"`
}

// AddOutput is the output schema for the add tool.
type AddOutput struct {
	ID      string `json:"id"`
	Pending bool   `json:"pending"`
	Error   string `json:"error,omitempty"`
}

// RemoveInput is the input schema for the remove tool.
type RemoveInput struct {
	IDs []string `json:"ids" jsonschema:"ids of the records to remove"`
}

// RemoveOutput is the output schema for the remove tool.
type RemoveOutput struct {
	Removed int `json:"removed"`
}

// FlushInput is the (empty) input schema for the flush tool.
type FlushInput struct{}

// FlushOutput is the output schema for the flush tool.
type FlushOutput struct {
	Indexed int          `json:"indexed"`
	Failed  []FailedItem `json:"failed,omitempty"`
}

// FailedItem is one record a flush dropped.
type FailedItem struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

const errEmptyContent = "content is empty; nothing was queued"

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search across all indexed documents",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add",
		Description: "Add a text record to the index; it is searchable after the next flush",
	}, s.handleAdd)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remove",
		Description: "Remove records from the index by id",
	}, s.handleRemove)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "flush",
		Description: "Commit pending records so they become searchable",
	}, s.handleFlush)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	metrics.SearchRequests.WithLabelValues("mcp").Inc()

	results, err := s.ports.Search.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, domain.NewSearchResponse(results), nil
}

// handleAdd handles the add tool invocation.
func (s *Server) handleAdd(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddInput,
) (*mcp.CallToolResult, AddOutput, error) {
	if s.ports.Index == nil {
		return nil, AddOutput{}, ErrReadOnly
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, AddOutput{ID: input.ID, Error: errEmptyContent}, nil
	}

	meta := map[string]string{}
	if input.Source != "" {
		meta[domain.MetaSource] = input.Source
	}
	if input.Heading != "" {
		meta[domain.MetaHeading] = input.Heading
	}

	id, err := s.ports.Index.Add(ctx, input.ID, input.Content, meta)
	if err != nil {
		return nil, AddOutput{}, err
	}
	if !input.Flush {
		return nil, AddOutput{ID: id, Pending: true}, nil
	}

	result, err := s.ports.Index.Flush(ctx)
	if err != nil {
		return nil, AddOutput{}, err
	}
	out := AddOutput{ID: id}
	for _, item := range result.Failed() {
		if item.ID == id {
			out.Error = item.Err.Error()
		}
	}
	return nil, out, nil
}

// handleRemove handles the remove tool invocation.
func (s *Server) handleRemove(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RemoveInput,
) (*mcp.CallToolResult, RemoveOutput, error) {
	if s.ports.Index == nil {
		return nil, RemoveOutput{}, ErrReadOnly
	}

	for _, id := range input.IDs {
		if err := s.ports.Index.Remove(ctx, id); err != nil {
			return nil, RemoveOutput{}, err
		}
	}
	return nil, RemoveOutput{Removed: len(input.IDs)}, nil
}

// handleFlush handles the flush tool invocation.
func (s *Server) handleFlush(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ FlushInput,
) (*mcp.CallToolResult, FlushOutput, error) {
	if s.ports.Index == nil {
		return nil, FlushOutput{}, ErrReadOnly
	}

	result, err := s.ports.Index.Flush(ctx)
	if err != nil {
		return nil, FlushOutput{}, err
	}

	out := FlushOutput{Indexed: result.Indexed()}
	for _, item := range result.Failed() {
		out.Failed = append(out.Failed, FailedItem{ID: item.ID, Reason: item.Err.Error()})
	}
	return nil, out, nil
}
