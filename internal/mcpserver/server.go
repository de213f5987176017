// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the tag tree to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tagtree/internal/apperr"
	"github.com/starford/tagtree/internal/treeservice"
)

const contractURI = "tagtree://document-format"

// Server wraps the MCP server with the tree tools.
type Server struct {
	mcp *server.MCPServer
	svc *treeservice.Service
}

// New creates a new MCP server with all tree tools registered.
func New(svc *treeservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"tagtree",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_tree",
		mcp.WithDescription("Snapshot of the visible tree: node ids, labels, kinds and expansion state."),
	), s.listTree)

	s.mcp.AddTool(mcp.NewTool("expand_node",
		mcp.WithDescription("Expand a node so its children become visible in list_tree."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Node id from list_tree")),
	), s.expandNode)

	s.mcp.AddTool(mcp.NewTool("select_nodes",
		mcp.WithDescription("Replace the selection. The first id becomes the primary node."),
		mcp.WithString("ids", mcp.Required(), mcp.Description("Comma separated node ids")),
	), s.selectNodes)

	s.mcp.AddTool(mcp.NewTool("search_tree",
		mcp.WithDescription("Search below the primary selected node for tags whose name and value "+
			"contain the given text. The search stops on each match and selects it; "+
			"set next to continue to the following match."),
		mcp.WithString("name", mcp.Description("Text the tag name must contain")),
		mcp.WithString("value", mcp.Description("Text the tag value must contain")),
		mcp.WithBoolean("next", mcp.Description("Continue the running search instead of starting one")),
	), s.searchTree)

	s.mcp.AddTool(mcp.NewTool("read_node",
		mcp.WithDescription("Describe one node: its name, value, backing file and children."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Node id from list_tree")),
	), s.readNode)

	s.mcp.AddTool(mcp.NewTool("save_all",
		mcp.WithDescription("Write every modified document back to its file."),
	), s.saveAll)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the tag document format contract. "+
			"Call this before interpreting node values."),
	), s.getDocumentContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Tag Document Format",
			mcp.WithResourceDescription("YAML format of the tag documents shown in the tree."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
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

func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("node not found")
	}
	return mcp.NewToolResultError(err.Error())
}

// appliedResult reports a refused intent as a tool error.
func appliedResult(what string, applied bool, err error) *mcp.CallToolResult {
	if err != nil {
		return errorResult(err)
	}
	if !applied {
		return errorResult(fmt.Errorf("%s: %w", what, apperr.ErrNotApplied))
	}
	return mcp.NewToolResultText(what + ": ok")
}

func requireID(req mcp.CallToolRequest) (uint64, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid node id %d", id)
	}
	return uint64(id), nil
}

func parseIDs(s string) ([]uint64, error) {
	var ids []uint64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid node id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Server) listTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tv, err := s.svc.Tree(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(tv)
}

func (s *Server) expandNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	applied, err := s.svc.Expand(ctx, id)
	return appliedResult("expand", applied, err), nil
}

func (s *Server) selectNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := parseIDs(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sel, err := s.svc.Select(ctx, ids)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(sel)
}

func (s *Server) searchTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req.GetBool("next", false) {
		ok, err := s.svc.ContinueSearch(ctx)
		return appliedResult("continue search", ok, err), nil
	}
	started, err := s.svc.Search(ctx, req.GetString("name", ""), req.GetString("value", ""))
	if errors.Is(err, apperr.ErrInvalid) {
		return mcp.NewToolResultError("name or value is required"), nil
	}
	return appliedResult("search", started, err), nil
}

func (s *Server) readNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nd, err := s.svc.Node(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(nd)
}

func (s *Server) saveAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.svc.Save(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("saved"), nil
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
