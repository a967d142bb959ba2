package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/m-mizutani/mnemo/pkg/service/recall"
	"github.com/m-mizutani/mnemo/pkg/usecase/memory"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server exposes the memory engine to agents over MCP: saving candidate
// facts, loading the rendered context block, and recalling full tool
// results from the recall store.
type Server struct {
	svc    *memory.Service
	recall *recall.Store
}

// New creates a new MCP server facade
func New(svc *memory.Service, recallStore *recall.Store) *Server {
	return &Server{
		svc:    svc,
		recall: recallStore,
	}
}

type saveMemoryParams struct {
	UserID             string            `json:"user_id"`
	Facts              []model.FactInput `json:"facts"`
	LanguagePreference string            `json:"language_preference,omitempty"`
}

type memoryContextParams struct {
	UserID string `json:"user_id" jsonschema:"ID of the user whose memory to render"`
}

type recallResultParams struct {
	ID string `json:"id" jsonschema:"Opaque ID returned when the tool result was stored"`
}

// Run serves MCP over stdio until the context is canceled
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "mnemo",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_memory",
		Description: "Store candidate facts about a user. Duplicates and malformed facts are dropped silently.",
		InputSchema: saveMemorySchema(),
	}, s.saveMemory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "memory_context",
		Description: "Render everything remembered about a user as a prompt-ready context block.",
	}, s.memoryContext)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recall_result",
		Description: "Fetch the full stored result of a previously compressed tool invocation.",
	}, s.recallResult)

	return server.Run(ctx, &mcp.StdioTransport{})
}

// saveMemorySchema spells out the enum constraints so agents see the
// valid categories and tiers up front instead of tripping validation.
func saveMemorySchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"user_id", "facts"},
		Properties: map[string]*jsonschema.Schema{
			"user_id": {
				Type:        "string",
				Description: "ID of the user the facts belong to",
			},
			"facts": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"content", "category", "tier", "confidence"},
					Properties: map[string]*jsonschema.Schema{
						"content": {
							Type:        "string",
							Description: "One self-contained statement about the user",
						},
						"category": {
							Type: "string",
							Enum: []any{"profile", "preference", "technical", "project"},
						},
						"tier": {
							Type: "string",
							Enum: []any{"core", "important", "context"},
						},
						"confidence": {
							Type:        "number",
							Description: "Belief in correctness, 0 to 1",
						},
					},
				},
			},
			"language_preference": {
				Type: "string",
				Enum: []any{"english", "chinese", "hybrid"},
			},
		},
	}
}

func (s *Server) saveMemory(ctx context.Context, req *mcp.CallToolRequest, params *saveMemoryParams) (*mcp.CallToolResult, any, error) {
	if params.UserID == "" {
		return nil, nil, fmt.Errorf("user_id is required")
	}

	var lang *model.LanguagePreference
	if params.LanguagePreference != "" {
		l := model.LanguagePreference(params.LanguagePreference)
		if err := l.Validate(); err != nil {
			return nil, nil, err
		}
		lang = &l
	}

	if err := s.svc.AddFacts(ctx, params.UserID, params.Facts, lang); err != nil {
		return nil, nil, err
	}

	return textResult(fmt.Sprintf("Stored up to %d facts for user %s", len(params.Facts), params.UserID)), nil, nil
}

func (s *Server) memoryContext(ctx context.Context, req *mcp.CallToolRequest, params *memoryContextParams) (*mcp.CallToolResult, any, error) {
	if params.UserID == "" {
		return nil, nil, fmt.Errorf("user_id is required")
	}

	block, err := s.svc.LoadForContext(ctx, params.UserID)
	if err != nil {
		return nil, nil, err
	}
	if block == "" {
		block = "(no memory stored for this user)"
	}

	return textResult(block), nil, nil
}

func (s *Server) recallResult(ctx context.Context, req *mcp.CallToolRequest, params *recallResultParams) (*mcp.CallToolResult, any, error) {
	if params.ID == "" {
		return nil, nil, fmt.Errorf("id is required")
	}

	result, ok := s.recall.Get(params.ID)
	if !ok {
		return textResult(fmt.Sprintf("Result %q not found. It may have expired.", params.ID)), nil, nil
	}

	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, nil, err
	}

	return textResult(string(raw)), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
