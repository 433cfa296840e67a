package mcp

import "github.com/mark3labs/mcp-go/mcp"

const kindsHelp = "projects, journal, skills, experience or education"

var listToolDef = mcp.NewTool("content_list",
	mcp.WithDescription("List one page of a content section ("+kindsHelp+"), normalized the way the site renders it."),
	mcp.WithString("kind", mcp.Required(), mcp.Description("Section to list: "+kindsHelp)),
	mcp.WithNumber("limit", mcp.Description("Page size, default 20, max 100")),
	mcp.WithNumber("offset", mcp.Description("Items to skip, default 0")),
)

var getToolDef = mcp.NewTool("content_get",
	mcp.WithDescription("Read a single-object section: settings, about or contact."),
	mcp.WithString("kind", mcp.Required(), mcp.Description("settings, about or contact")),
)

var projectGetToolDef = mcp.NewTool("project_get",
	mcp.WithDescription("Read one project by slug."),
	mcp.WithString("slug", mcp.Required(), mcp.Description("Project slug as used in /work/{slug}")),
)

var createToolDef = mcp.NewTool("entry_create",
	mcp.WithDescription("Create a project, journal post, skill or CV entry. Fields are validated before anything is written."),
	mcp.WithString("kind", mcp.Required(), mcp.Description("Section: "+kindsHelp)),
	mcp.WithObject("fields", mcp.Required(), mcp.Description("Store columns, e.g. slug, title, category, technologies")),
)

var updateToolDef = mcp.NewTool("entry_update",
	mcp.WithDescription("Patch an entry with the fields given. Omitted fields keep their value."),
	mcp.WithString("kind", mcp.Required(), mcp.Description("Section: "+kindsHelp)),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
	mcp.WithObject("fields", mcp.Required(), mcp.Description("Store columns to change")),
)

var deleteToolDef = mcp.NewTool("entry_delete",
	mcp.WithDescription("Delete an entry."),
	mcp.WithString("kind", mcp.Required(), mcp.Description("Section: "+kindsHelp)),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
)

var sectionUpdateToolDef = mcp.NewTool("section_update",
	mcp.WithDescription("Update the site settings, about or contact section. Blank fields are ignored."),
	mcp.WithString("kind", mcp.Required(), mcp.Description("settings, about or contact")),
	mcp.WithString("id", mcp.Description("Row id; omit to update the existing row or create one")),
	mcp.WithObject("fields", mcp.Required(), mcp.Description("Store columns to change")),
)

var exportToolDef = mcp.NewTool("content_export",
	mcp.WithDescription("Write every section to a YAML content file."),
	mcp.WithString("path", mcp.Description("Target .yaml path inside the exports directory; default is generated")),
)

var importToolDef = mcp.NewTool("content_import",
	mcp.WithDescription("Load a YAML content file into the store. Each entry is validated; failures are reported per entry."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to a .yaml content file")),
	mcp.WithString("mode", mcp.Description("append (default) or replace"), mcp.Enum("append", "replace")),
)

var summarizeToolDef = mcp.NewTool("assist_summarize",
	mcp.WithDescription("Generate a description and category for a journal post body."),
	mcp.WithString("body", mcp.Required(), mcp.Description("Post text")),
)

var journalEntryToolDef = mcp.NewTool("assist_journal_entry",
	mcp.WithDescription("Draft a journal post body from a title."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Post title")),
)

var projectDetailsToolDef = mcp.NewTool("assist_project_details",
	mcp.WithDescription("Draft one long-form project section."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Project title")),
	mcp.WithString("description", mcp.Description("Short project description")),
	mcp.WithString("section", mcp.Required(), mcp.Description("overview, process or outcomes"), mcp.Enum("overview", "process", "outcomes")),
)
