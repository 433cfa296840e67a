// Package genai is the client for the content-generation service that backs
// the site chat and the admin drafting helpers.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/httpx"
	"github.com/hpungsan/folio/internal/logging"
)

// Role is the speaker of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Summary is the generated summary of a post.
type Summary struct {
	Description string                  `json:"description"`
	Category    content.JournalCategory `json:"category"`
}

// Section names a long-form project section.
type Section string

const (
	SectionOverview Section = "overview"
	SectionProcess  Section = "process"
	SectionOutcomes Section = "outcomes"
)

// ParseSection accepts overview, process or outcomes.
func ParseSection(s string) (Section, bool) {
	switch Section(strings.ToLower(strings.TrimSpace(s))) {
	case SectionOverview:
		return SectionOverview, true
	case SectionProcess:
		return SectionProcess, true
	case SectionOutcomes:
		return SectionOutcomes, true
	default:
		return "", false
	}
}

// ProjectDetailsInput asks for one section of a project case study.
type ProjectDetailsInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Section     Section `json:"section"`
}

// Options configures a Client.
type Options struct {
	BaseURL string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
	Logger  logrus.FieldLogger
}

// Client calls the generation service over JSON.
type Client struct {
	baseURL string
	http    *http.Client
	retry   httpx.RetryConfig
	log     *logrus.Entry
}

// New returns a client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.NewInvalidRequest("ai_service_url is required")
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = httpx.DefaultRetryConfig()
	}
	return &Client{
		baseURL: base,
		http:    opts.HTTP,
		retry:   opts.Retry,
		log:     logging.Component(opts.Logger, "genai"),
	}, nil
}

// Chat answers the last user message. portfolio is the site summary the
// assistant may draw on.
func (c *Client) Chat(ctx context.Context, portfolio string, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.NewInvalidRequest("messages are required")
	}
	return c.text(ctx, "/chat", map[string]any{"messages": messages, "context": portfolio})
}

// Summarize returns a one or two sentence description and a journal category.
func (c *Client) Summarize(ctx context.Context, body string) (Summary, error) {
	if strings.TrimSpace(body) == "" {
		return Summary{}, errors.NewInvalidRequest("content is required")
	}
	raw, err := c.post(ctx, "/summarize", map[string]string{"content": body})
	if err != nil {
		return Summary{}, err
	}

	var out struct {
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Summary{}, errors.NewUpstream("genai", fmt.Errorf("decode summary: %w", err))
	}
	cat, ok := content.ParseJournalCategory(out.Category)
	if !ok {
		return Summary{}, errors.NewUpstream("genai", fmt.Errorf("unknown category %q", out.Category))
	}
	return Summary{Description: strings.TrimSpace(out.Description), Category: cat}, nil
}

// GenerateJournalEntry drafts a post body for title.
func (c *Client) GenerateJournalEntry(ctx context.Context, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", errors.NewInvalidRequest("title is required")
	}
	return c.text(ctx, "/journal-entry", map[string]string{"title": title})
}

// GenerateProjectDetails drafts one section of a project case study.
func (c *Client) GenerateProjectDetails(ctx context.Context, in ProjectDetailsInput) (string, error) {
	if strings.TrimSpace(in.Title) == "" {
		return "", errors.NewInvalidRequest("title is required")
	}
	if _, ok := ParseSection(string(in.Section)); !ok {
		return "", errors.NewInvalidRequest("section must be one of: overview, process, outcomes")
	}
	return c.text(ctx, "/project-details", in)
}

func (c *Client) text(ctx context.Context, path string, payload any) (string, error) {
	raw, err := c.post(ctx, path, payload)
	if err != nil {
		return "", err
	}
	s, err := decodeText(raw)
	if err != nil {
		return "", errors.NewUpstream("genai", err)
	}
	return s, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	build, err := httpx.JSONRequest(http.MethodPost, c.baseURL+path, payload, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	_, body, err := httpx.DoWithRetry(ctx, c.http, build, c.retry)
	if err != nil {
		c.log.WithFields(logrus.Fields{"path": path, "error": err}).Error("generation request failed")
		return nil, errors.NewUpstream("genai", err)
	}
	return body, nil
}

// decodeText accepts a JSON string, an object with a "text" or "output"
// member, or a bare text body.
func decodeText(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("empty response")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf("decode text: %w", err)
		}
		return strings.TrimSpace(s), nil
	case '{':
		var obj struct {
			Text   *string `json:"text"`
			Output *string `json:"output"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return "", fmt.Errorf("decode text: %w", err)
		}
		switch {
		case obj.Text != nil:
			return strings.TrimSpace(*obj.Text), nil
		case obj.Output != nil:
			return strings.TrimSpace(*obj.Output), nil
		default:
			return "", fmt.Errorf("response has no text")
		}
	default:
		return string(trimmed), nil
	}
}
