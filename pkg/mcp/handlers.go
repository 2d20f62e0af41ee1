package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/blendmeta/pkg/meta"
	"github.com/gnana997/blendmeta/pkg/pipeline"
)

type componentEntry struct {
	Name       string `json:"name"`
	OutputFile string `json:"outputFile"`
}

type metadataResponse struct {
	Document *meta.Document `json:"document"`
	Warning  string         `json:"warning,omitempty"`
}

type classification struct {
	Name     string        `json:"name"`
	Category meta.Category `json:"category"`
}

func (s *Server) handleListComponents(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	candidates, err := s.gen.Candidates()
	if err != nil {
		return toolError(err)
	}

	entries := make([]componentEntry, 0, len(candidates))
	for _, c := range candidates {
		entries = append(entries, componentEntry{Name: c.Name, OutputFile: c.OutputFile()})
	}
	return jsonResult(entries)
}

func (s *Server) handleGetComponentMetadata(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return toolError(fmt.Errorf("name is required"))
	}

	doc, err := s.gen.Document(name)
	if errors.Is(err, pipeline.ErrExcluded) || errors.Is(err, pipeline.ErrUnknownComponent) {
		return toolError(err)
	}

	resp := metadataResponse{Document: doc}
	if err != nil {
		resp.Warning = err.Error()
	}
	return jsonResult(resp)
}

func (s *Server) handleGenerateMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		summary, err := s.gen.Run(ctx)
		if summary == nil {
			return toolError(err)
		}
		return jsonResult(summary)
	}

	outcome := s.gen.ProcessComponent(name)
	if outcome.Status == pipeline.StatusFailed {
		return toolError(outcome.Err)
	}
	return jsonResult(outcome)
}

func (s *Server) handleClassifyProp(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return toolError(fmt.Errorf("name is required"))
	}
	return jsonResult(classification{Name: name, Category: meta.Classify(name)})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Errorf("encode result: %w", err))
	}
	return mcp.NewToolResultText(string(data)), nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
