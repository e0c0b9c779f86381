// Package mcp exposes the study-material pipeline as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/auralex/pkg/library"
	"github.com/Nephrolytics-ai/auralex/pkg/logging"
	"github.com/Nephrolytics-ai/auralex/pkg/model"
	"github.com/Nephrolytics-ai/auralex/pkg/utils"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "auralex"
	ServerVersion = "1.0.0"

	ToolGenerateStudyMaterial = "generate_study_material"
	ToolListLibrary           = "list_library"
)

type Processor interface {
	Process(ctx context.Context, payload model.AudioPayload, options model.ProcessingOptions) (model.GeneratedContent, error)
}

type Library interface {
	Save(ctx context.Context, content model.GeneratedContent, source string) (library.Entry, error)
	List(ctx context.Context) ([]library.Entry, error)
}

// AudioLoader reads the file at path. An empty mimeType means "infer it".
type AudioLoader func(ctx context.Context, path string, mimeType string) (model.AudioPayload, error)

type Server struct {
	processor Processor
	library   Library
	loadAudio AudioLoader
	mcpServer *server.MCPServer
}

// NewServer registers the tools. lib may be nil, in which case saving and
// listing report an error to the caller.
func NewServer(processor Processor, lib Library, loadAudio AudioLoader) (*Server, error) {
	if processor == nil {
		return nil, utils.WrapIfNotNil(errors.New("processor is required"))
	}
	if loadAudio == nil {
		return nil, utils.WrapIfNotNil(errors.New("audio loader is required"))
	}

	s := &Server{
		processor: processor,
		library:   lib,
		loadAudio: loadAudio,
		mcpServer: server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
	}
	s.mcpServer.AddTool(generateTool(), s.handleGenerate)
	s.mcpServer.AddTool(listLibraryTool(), s.handleListLibrary)
	return s, nil
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	return utils.WrapIfNotNil(server.ServeStdio(s.mcpServer))
}

func generateTool() mcp.Tool {
	return mcp.NewTool(ToolGenerateStudyMaterial,
		mcp.WithDescription("Analyze an audio recording and return study material as JSON: title, confidence score, accuracy note, key takeaways, core arguments, examples, deep dive notes and a quiz."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the audio file")),
		mcp.WithString("media_type", mcp.Description("Audio media type; inferred from the file extension when omitted")),
		mcp.WithBoolean("key_takeaways", mcp.Description("Include key takeaways (default true)")),
		mcp.WithBoolean("core_arguments", mcp.Description("Include core arguments (default true)")),
		mcp.WithBoolean("examples", mcp.Description("Include real-world examples (default true)")),
		mcp.WithBoolean("deep_dive_notes", mcp.Description("Include deep dive notes (default true)")),
		mcp.WithBoolean("quiz", mcp.Description("Include a quiz (default true)")),
		mcp.WithBoolean("save", mcp.Description("Save the result to the library (default false)")),
	)
}

func listLibraryTool() mcp.Tool {
	return mcp.NewTool(ToolListLibrary,
		mcp.WithDescription("List saved study material, newest first."),
	)
}

func (s *Server) handleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := logging.NewLogger(ctx)

	path, err := req.RequireString("path")
	if err != nil || strings.TrimSpace(path) == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	options := model.ProcessingOptions{
		KeyTakeaways:  req.GetBool("key_takeaways", true),
		CoreArguments: req.GetBool("core_arguments", true),
		Examples:      req.GetBool("examples", true),
		DeepDiveNotes: req.GetBool("deep_dive_notes", true),
		Quiz:          req.GetBool("quiz", true),
	}
	save := req.GetBool("save", false)
	if save && s.library == nil {
		return mcp.NewToolResultError("library is not configured"), nil
	}

	payload, err := s.loadAudio(ctx, path, req.GetString("media_type", ""))
	if err != nil {
		log.Errorf("error: %v", err)
		return mcp.NewToolResultError("could not read audio file " + path), nil
	}

	content, err := s.processor.Process(ctx, payload, options)
	if err != nil {
		// Process already logged the detail; the message is safe to show.
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !save {
		return jsonResult(content)
	}
	entry, err := s.library.Save(ctx, content, payload.Name)
	if err != nil {
		log.Errorf("error: %v", err)
		return mcp.NewToolResultError("generated content could not be saved"), nil
	}
	return jsonResult(entry)
}

type librarySummary struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Date            time.Time `json:"date"`
	Source          string    `json:"source,omitempty"`
	ConfidenceScore float64   `json:"confidenceScore"`
}

func (s *Server) handleListLibrary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.library == nil {
		return mcp.NewToolResultError("library is not configured"), nil
	}
	entries, err := s.library.List(ctx)
	if err != nil {
		logging.NewLogger(ctx).Errorf("error: %v", err)
		return mcp.NewToolResultError("library could not be read"), nil
	}

	summaries := make([]librarySummary, 0, len(entries))
	for _, entry := range entries {
		summaries = append(summaries, librarySummary{
			ID:              entry.ID,
			Title:           entry.Title,
			Date:            entry.Date,
			Source:          entry.Source,
			ConfidenceScore: entry.ConfidenceScore,
		})
	}
	return jsonResult(summaries)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
