// Package mcpserver exposes a built element index over the Model Context
// Protocol, so editors and agents can query the API reference the generator
// works from.
package mcpserver

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mdekker/adocgen/internal/adoc"
	"github.com/mdekker/adocgen/internal/model"
	"github.com/mdekker/adocgen/internal/reference"
)

//go:embed instructions.md
var instructions string

type Server struct {
	mcpServer *server.MCPServer
	resolver  *reference.Resolver
}

func NewServer(resolver *reference.Resolver) *Server {
	s := &Server{resolver: resolver}

	mcpServer := server.NewMCPServer(
		"adocgen",
		"0.1.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("find_element",
			mcp.WithDescription("Look up one API element by name. Uses the same resolution rules as the generator: namespace prefix walk, overload selection via a parenthesized parameter list, optional kind and language filters."),
			mcp.WithString("name",
				mcp.Description("Qualified or partial element name, e.g. \"geo::Coordinate\" or \"Update(int)\""),
				mcp.Required(),
			),
			mcp.WithString("namespace",
				mcp.Description("Namespace to start the search from"),
			),
			mcp.WithString("kind",
				mcp.Description("Restrict to an element kind (class, function, enum, ...)"),
			),
			mcp.WithString("lang",
				mcp.Description("Restrict to a programming language"),
			),
		),
		s.handleFindElement,
	)

	mcpServer.AddTool(
		mcp.NewTool("list_elements",
			mcp.WithDescription("List indexed API elements, optionally filtered by name prefix, kind and language."),
			mcp.WithString("prefix",
				mcp.Description("Only list elements whose full name starts with this prefix"),
			),
			mcp.WithString("kind",
				mcp.Description("Only list elements of this kind"),
			),
			mcp.WithString("lang",
				mcp.Description("Only list elements of this language"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default 50)"),
			),
		),
		s.handleListElements,
	)
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"apidoc://{id}",
			"API element documentation",
			mcp.WithTemplateDescription("Read the rendered documentation of one API element by its index ID."),
			mcp.WithTemplateMIMEType("text/asciidoc"),
		),
		s.handleReadResource,
	)
}

// elementSummary is the JSON shape tools return per element.
type elementSummary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Kind     string `json:"kind"`
	Language string `json:"language"`
	Brief    string `json:"brief,omitempty"`
	Source   string `json:"source,omitempty"`
}

func summarize(e *model.Element) elementSummary {
	s := elementSummary{
		ID:       e.ID,
		FullName: e.FullName,
		Kind:     string(e.Kind),
		Language: e.Language,
		Brief:    e.Brief,
	}
	if e.Source.File != "" {
		s.Source = e.Source.String()
	}
	return s
}

func (s *Server) handleFindElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	kind, _ := args["kind"].(string)
	lang, _ := args["lang"].(string)
	namespace, _ := args["namespace"].(string)

	elem, err := s.resolver.Resolve(name, reference.Options{
		Kind:           model.Kind(kind),
		Lang:           lang,
		Namespace:      namespace,
		AllowOverloads: true,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resultJSON, _ := json.MarshalIndent(summarize(elem), "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleListElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	prefix, _ := args["prefix"].(string)
	kind, _ := args["kind"].(string)
	lang, _ := args["lang"].(string)

	limit := 50
	if n, ok := args["limit"].(float64); ok && n > 0 {
		limit = int(n)
	}

	var out []elementSummary
	for _, e := range s.resolver.Reference().Elements() {
		if prefix != "" && !strings.HasPrefix(e.FullName, prefix) {
			continue
		}
		if kind != "" && string(e.Kind) != kind {
			continue
		}
		if lang != "" && e.Language != lang {
			continue
		}
		out = append(out, summarize(e))
		if len(out) >= limit {
			break
		}
	}

	resultJSON, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := strings.TrimPrefix(uri, "apidoc://")
	if id == "" || id == uri {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}

	elem := s.resolver.FindByID(id)
	if elem == nil {
		return nil, fmt.Errorf("no element with id %q", id)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/asciidoc",
			Text:     adoc.RenderElement(elem, nil, 0, nil),
		},
	}, nil
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) Shutdown(_ context.Context) error {
	return nil
}
