package mcp

import (
	"context"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/facade"
	"github.com/hpungsan/folio/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"content_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"content_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"content_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"content_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"project_get": {
		def:     projectGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectGet },
	},
	"entry_create": {
		def:     createToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate },
	},
	"entry_update": {
		def:     updateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdate },
	},
	"entry_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"section_update": {
		def:     sectionUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionUpdate },
	},
	"assist_summarize": {
		def:     summarizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSummarize },
	},
	"assist_journal_entry": {
		def:     journalEntryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleJournalEntry },
	},
	"assist_project_details": {
		def:     projectDetailsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectDetails },
	},
}

// AllToolNames returns every valid tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// Options wires the MCP server.
type Options struct {
	Source  facade.Source
	Ops     *ops.Service
	Config  *config.Config
	BaseDir string // export snapshots go under <BaseDir>/exports
	Version string
}

// NewServer creates a new MCP server with the content tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(opts Options) *server.MCPServer {
	s := server.NewMCPServer(
		"folio",
		opts.Version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(opts)

	disabled := make(map[string]bool)
	for _, name := range opts.Config.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(opts Options) error {
	return server.ServeStdio(NewServer(opts))
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
