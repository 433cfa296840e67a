package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/facade"
	"github.com/hpungsan/folio/internal/genai"
)

var errNoGenerator = errors.NewUpstream("genai", fmt.Errorf("ai_service_url is not configured"))

var errNoUploader = errors.NewUpstream("upload", fmt.Errorf("upload_url is not configured"))

// ContactMessage is a visitor message from the contact form or the chat.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// SubmitContactForm validates and records a visitor message. Delivery is a
// log entry; there is no mail transport.
func (s *Service) SubmitContactForm(_ context.Context, m ContactMessage) Result {
	fields := map[string]any{
		"name":    strings.TrimSpace(m.Name),
		"email":   strings.TrimSpace(m.Email),
		"message": strings.TrimSpace(m.Message),
	}
	if err := Validate(SchemaMessage, ModeCreate, fields); err != nil {
		return s.fail(err, "Failed to send message.")
	}

	s.log.WithFields(logrus.Fields{
		"name":  fields["name"],
		"email": fields["email"],
	}).Info("contact form submitted: " + fields["message"].(string))
	return Result{Success: true, Message: "Message sent successfully!"}
}

// SummarizePost asks the generator for a description and category for a
// journal post body. Data holds a genai.Summary.
func (s *Service) SummarizePost(ctx context.Context, body string) Result {
	if s.gen == nil {
		return s.fail(errNoGenerator, "Summary generation failed.")
	}
	sum, err := s.gen.Summarize(ctx, body)
	if err != nil {
		return s.fail(err, "Summary generation failed.")
	}
	return Result{Success: true, Message: "Summary generated.", Data: sum}
}

// GenerateJournalEntry drafts a post body for title. Data holds the text.
func (s *Service) GenerateJournalEntry(ctx context.Context, title string) Result {
	if s.gen == nil {
		return s.fail(errNoGenerator, "Journal entry generation failed.")
	}
	text, err := s.gen.GenerateJournalEntry(ctx, title)
	if err != nil {
		return s.fail(err, "Journal entry generation failed.")
	}
	return Result{Success: true, Message: "Journal entry generated.", Data: text}
}

// GenerateProjectDetails drafts one case-study section. Data holds the text.
func (s *Service) GenerateProjectDetails(ctx context.Context, in genai.ProjectDetailsInput) Result {
	if s.gen == nil {
		return s.fail(errNoGenerator, "Project details generation failed.")
	}
	text, err := s.gen.GenerateProjectDetails(ctx, in)
	if err != nil {
		return s.fail(err, "Project details generation failed.")
	}
	return Result{Success: true, Message: "Project details generated.", Data: text}
}

// Chat answers a site visitor using the current portfolio as context.
// Data holds the reply.
func (s *Service) Chat(ctx context.Context, messages []genai.Message) Result {
	if s.gen == nil {
		return s.fail(errNoGenerator, "Chat is unavailable right now.")
	}
	portfolio := ""
	if s.source != nil {
		portfolio = PortfolioContext(ctx, s.source)
	}
	reply, err := s.gen.Chat(ctx, portfolio, messages)
	if err != nil {
		return s.fail(err, "Chat is unavailable right now.")
	}
	return Result{Success: true, Message: "ok", Data: reply}
}

// UploadImage sends a base64 image to the hosting service. Data holds the URL.
func (s *Service) UploadImage(ctx context.Context, payload string) Result {
	if s.up == nil {
		return s.fail(errNoUploader, "Image upload failed.")
	}
	url, err := s.up.Upload(ctx, payload)
	if err != nil {
		return s.fail(err, "Image upload failed.")
	}
	return Result{Success: true, Message: "Image uploaded.", Data: url}
}

// PortfolioContext summarizes the site content for the chat assistant.
func PortfolioContext(ctx context.Context, src facade.Source) string {
	var b strings.Builder

	b.WriteString("PROJECTS:\n")
	for _, p := range src.Projects(ctx) {
		fmt.Fprintf(&b, "- %s (%s): %s. Key details: %s\n", p.Title, p.Category, p.Description, p.Overview)
	}

	b.WriteString("\nJOURNAL POSTS:\n")
	for _, p := range src.JournalPosts(ctx) {
		fmt.Fprintf(&b, "- %s: %s\n", p.Title, p.Description)
	}

	b.WriteString("\nSKILLS:\n")
	for _, g := range src.GroupedSkills(ctx) {
		fmt.Fprintf(&b, "- %s: %s\n", g.Category, strings.Join(g.Items, ", "))
	}

	b.WriteString("\nCV / EXPERIENCE:\n")
	for _, c := range src.CVExperience(ctx) {
		fmt.Fprintf(&b, "- %s at %s (%s): %s\n", c.Title, c.Subtitle, c.Date, c.Description)
	}

	b.WriteString("\nEDUCATION:\n")
	for _, c := range src.CVEducation(ctx) {
		fmt.Fprintf(&b, "- %s at %s (%s).\n", c.Title, c.Subtitle, c.Date)
	}
	return b.String()
}
