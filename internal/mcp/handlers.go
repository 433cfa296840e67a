package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/facade"
	"github.com/hpungsan/folio/internal/genai"
	"github.com/hpungsan/folio/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	src     facade.Source
	ops     *ops.Service
	baseDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(opts Options) *Handlers {
	return &Handlers{src: opts.Source, ops: opts.Ops, baseDir: opts.BaseDir}
}

// Request types for each tool

// ListRequest represents the arguments for content_list.
type ListRequest struct {
	Kind   string `json:"kind"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// GetRequest represents the arguments for content_get.
type GetRequest struct {
	Kind string `json:"kind"`
}

// ProjectGetRequest represents the arguments for project_get.
type ProjectGetRequest struct {
	Slug string `json:"slug"`
}

// EntryRequest represents the arguments for the entry and section tools.
type EntryRequest struct {
	Kind   string         `json:"kind"`
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// ExportRequest represents the arguments for content_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for content_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// SummarizeRequest represents the arguments for assist_summarize.
type SummarizeRequest struct {
	Body string `json:"body"`
}

// JournalEntryRequest represents the arguments for assist_journal_entry.
type JournalEntryRequest struct {
	Title string `json:"title"`
}

// ProjectDetailsRequest represents the arguments for assist_project_details.
type ProjectDetailsRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Section     string `json:"section"`
}

// HandleList handles the content_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	kind, err := parseKind(input.Kind)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(ctx, h.src, ops.ListInput{Kind: kind, Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGet handles the content_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	kind, err := parseKind(input.Kind)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Get(ctx, h.src, kind)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleProjectGet handles the project_get tool call.
func (h *Handlers) HandleProjectGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	p, err := ops.ProjectBySlug(ctx, h.src, input.Slug)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(p)
}

// HandleCreate handles the entry_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, kind, err := decodeEntry(req)
	if err != nil {
		return errorResult(err), nil
	}
	return actionResult(h.ops.CreateEntry(ctx, kind, input.Fields))
}

// HandleUpdate handles the entry_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, kind, err := decodeEntry(req)
	if err != nil {
		return errorResult(err), nil
	}
	return actionResult(h.ops.UpdateEntry(ctx, kind, input.ID, input.Fields))
}

// HandleDelete handles the entry_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, kind, err := decodeEntry(req)
	if err != nil {
		return errorResult(err), nil
	}
	return actionResult(h.ops.DeleteEntry(ctx, kind, input.ID))
}

// HandleSectionUpdate handles the section_update tool call.
func (h *Handlers) HandleSectionUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, kind, err := decodeEntry(req)
	if err != nil {
		return errorResult(err), nil
	}
	return actionResult(h.ops.UpdateSection(ctx, kind, input.ID, input.Fields))
}

// HandleExport handles the content_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.src, ops.ExportInput{Path: input.Path, BaseDir: h.baseDir})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the content_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.ops.Import(ctx, ops.ImportInput{Path: input.Path, Mode: ops.ImportMode(input.Mode)})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSummarize handles the assist_summarize tool call.
func (h *Handlers) HandleSummarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SummarizeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return actionResult(h.ops.SummarizePost(ctx, input.Body))
}

// HandleJournalEntry handles the assist_journal_entry tool call.
func (h *Handlers) HandleJournalEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[JournalEntryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return actionResult(h.ops.GenerateJournalEntry(ctx, input.Title))
}

// HandleProjectDetails handles the assist_project_details tool call.
func (h *Handlers) HandleProjectDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectDetailsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return actionResult(h.ops.GenerateProjectDetails(ctx, genai.ProjectDetailsInput{
		Title:       input.Title,
		Description: input.Description,
		Section:     genai.Section(input.Section),
	}))
}

func decodeEntry(req mcp.CallToolRequest) (EntryRequest, ops.Kind, error) {
	input, err := decode[EntryRequest](req)
	if err != nil {
		return input, "", errors.NewInvalidRequest(err.Error())
	}
	kind, err := parseKind(input.Kind)
	return input, kind, err
}

func parseKind(s string) (ops.Kind, error) {
	if s == "" {
		return "", errors.NewInvalidRequest("kind is required")
	}
	kind, ok := ops.ParseKind(s)
	if !ok {
		return "", errors.NewNotFound("section", s)
	}
	return kind, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if fErr, ok := errors.Find(err); ok {
		errorObj := map[string]any{
			"code":    fErr.Code,
			"message": fErr.Message,
			"status":  fErr.Status,
		}
		if fErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if fErr.Details != nil {
			errorObj["details"] = fErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// actionResult reports an action. Failed actions become error results with
// the action's message and field errors.
func actionResult(res ops.Result) (*mcp.CallToolResult, error) {
	if res.Success {
		return successResult(res)
	}

	errorObj := map[string]any{
		"code":    res.Code,
		"message": res.Message,
		"status":  errors.StatusFor(res.Code),
	}
	if len(res.FieldErrors) > 0 {
		errorObj["details"] = map[string]any{"fields": res.FieldErrors}
	}
	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}, nil
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
