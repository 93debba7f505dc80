// Package mcpserver exposes the proof catalog as read-only MCP (Model Context
// Protocol) tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/kholles/internal/apperr"
	"github.com/starford/kholles/internal/catalog"
	"github.com/starford/kholles/internal/models"
)

// ContentFormatURI is the resource documenting the on-disk content format.
const ContentFormatURI = "kholles://content-format"

// Server wraps the MCP server with the catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *catalog.Service
}

// New creates an MCP server with every tool registered.
func New(svc *catalog.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Kholles",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_proofs",
		mcp.WithDescription("List proofs, newest first, without their bodies. "+
			"Optionally keep only proofs carrying a tag or written by an author."),
		mcp.WithString("tag", mcp.Description("Only proofs with this tag")),
		mcp.WithString("author", mcp.Description("Only proofs by this author")),
	), s.listProofs)

	s.mcp.AddTool(mcp.NewTool("read_proof",
		mcp.WithDescription("Read a proof: its metadata and raw Markdown body."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Proof id (the pid front-matter field)")),
	), s.readProof)

	s.mcp.AddTool(mcp.NewTool("list_weeks",
		mcp.WithDescription("List weeks in ascending number order with their proof ids."),
	), s.listWeeks)

	s.mcp.AddTool(mcp.NewTool("read_week",
		mcp.WithDescription("Read a week with its proofs resolved. Unknown proof ids "+
			"appear as null. Omit number for the newest week."),
		mcp.WithNumber("number", mcp.Description("Week number, 1 to 255")),
	), s.readWeek)

	s.mcp.AddTool(mcp.NewTool("get_content_contract",
		mcp.WithDescription("Returns the on-disk format of proof and week files."),
	), s.getContentContract)

	s.mcp.AddResource(
		mcp.NewResource(ContentFormatURI, "Content Format",
			mcp.WithResourceDescription("On-disk format of proof documents and week descriptors."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError turns a catalog error into a tool-level error result. Content
// errors keep their message so the file path reaches the caller.
func toolError(err error, what string) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found: " + what)
	}
	return mcp.NewToolResultError(err.Error())
}

type proofSummary struct {
	ID      models.ProofID `json:"pid"`
	Title   string         `json:"title"`
	Date    models.Date    `json:"date"`
	Authors []string       `json:"authors"`
	Tags    []string       `json:"tags"`
}

func (s *Server) listProofs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := req.GetString("tag", "")
	author := req.GetString("author", "")

	proofs, err := s.svc.ListProofs(ctx)
	if err != nil {
		return toolError(err, "proofs"), nil
	}
	out := make([]proofSummary, 0, len(proofs))
	for _, p := range proofs {
		if tag != "" && !slices.Contains(p.Tags, tag) {
			continue
		}
		if author != "" && !slices.Contains(p.Authors, author) {
			continue
		}
		out = append(out, proofSummary{ID: p.ID, Title: p.Title, Date: p.Date, Authors: p.Authors, Tags: p.Tags})
	}
	return jsonResult(out)
}

func (s *Server) readProof(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if id < 0 {
		return mcp.NewToolResultError("id must not be negative"), nil
	}
	p, err := s.svc.GetProof(ctx, models.ProofID(id))
	if err != nil {
		return toolError(err, fmt.Sprintf("proof %d", id)), nil
	}
	return jsonResult(p)
}

func (s *Server) listWeeks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weeks, err := s.svc.ListWeeks(ctx)
	if err != nil {
		return toolError(err, "weeks"), nil
	}
	return jsonResult(weeks)
}

func (s *Server) readWeek(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := req.GetInt("number", 0)
	if n == 0 {
		view, err := s.svc.NewestWeek(ctx)
		if err != nil {
			return toolError(err, "newest week"), nil
		}
		return jsonResult(view)
	}
	if n < 1 || n > 255 {
		return mcp.NewToolResultError("number must be between 1 and 255"), nil
	}
	view, err := s.svc.GetWeek(ctx, models.WeekNumber(n))
	if err != nil {
		return toolError(err, fmt.Sprintf("week %d", n)), nil
	}
	return jsonResult(view)
}

func (s *Server) getContentContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ContentFormatContract), nil
}

func (s *Server) readContentFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContentFormatURI,
			MIMEType: "text/markdown",
			Text:     ContentFormatContract,
		},
	}, nil
}
