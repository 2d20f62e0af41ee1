// Package mcp exposes metadata generation over the Model Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/blendmeta/pkg/mcplog"
	"github.com/gnana997/blendmeta/pkg/pipeline"
)

const serverVersion = "0.1.0-dev"

// Server serves component metadata tools backed by a pipeline Generator.
type Server struct {
	mcpServer *server.MCPServer
	gen       *pipeline.Generator
	logger    *mcplog.Logger // nil disables tool-call logging
}

// NewServer creates an MCP server over gen. logger may be nil.
func NewServer(gen *pipeline.Generator, logger *mcplog.Logger) *Server {
	s := &Server{gen: gen, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("blendmeta", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listComponentsTool(), Handler: s.handleListComponents},
		server.ServerTool{Tool: getComponentMetadataTool(), Handler: s.handleGetComponentMetadata},
		server.ServerTool{Tool: generateMetadataTool(), Handler: s.handleGenerateMetadata},
		server.ServerTool{Tool: classifyPropTool(), Handler: s.handleClassifyProp},
	)

	return s
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
