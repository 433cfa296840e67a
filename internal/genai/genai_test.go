package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/folio/internal/content"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/httpx"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/", HTTP: srv.Client(), Retry: httpx.NoRetry()})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Options{})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		var body struct {
			Messages []Message `json:"messages"`
			Context  string    `json:"context"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Messages, 2)
		assert.Equal(t, RoleModel, body.Messages[1].Role)
		assert.Equal(t, "PROJECTS: Ledger", body.Context)
		_, _ = w.Write([]byte(`{"text":" Hello there. "}`))
	})

	got, err := c.Chat(context.Background(), "PROJECTS: Ledger", []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleModel, Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", got)
}

func TestChat_RequiresMessages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.Chat(context.Background(), "", nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestSummarize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summarize", r.URL.Path)
		_, _ = w.Write([]byte(`{"description":"A note on grids.","category":"design notes"}`))
	})

	got, err := c.Summarize(context.Background(), "long post")
	require.NoError(t, err)
	assert.Equal(t, Summary{Description: "A note on grids.", Category: content.JournalDesignNotes}, got)
}

func TestSummarize_RejectsUnknownCategory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"description":"x","category":"Recipes"}`))
	})

	_, err := c.Summarize(context.Background(), "long post")
	assert.True(t, errors.Is(err, errors.ErrUpstream))
}

func TestGenerateJournalEntry_PlainString(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/journal-entry", r.URL.Path)
		_, _ = w.Write([]byte(`"Draft body"`))
	})

	got, err := c.GenerateJournalEntry(context.Background(), "On drawing")
	require.NoError(t, err)
	assert.Equal(t, "Draft body", got)
}

func TestGenerateProjectDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in ProjectDetailsInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, SectionProcess, in.Section)
		_, _ = w.Write([]byte(`{"output":"We iterated."}`))
	})

	got, err := c.GenerateProjectDetails(context.Background(), ProjectDetailsInput{Title: "Ledger", Section: SectionProcess})
	require.NoError(t, err)
	assert.Equal(t, "We iterated.", got)

	_, err = c.GenerateProjectDetails(context.Background(), ProjectDetailsInput{Title: "Ledger", Section: "epilogue"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestServiceFailureIsUpstream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusInternalServerError)
	})

	_, err := c.GenerateJournalEntry(context.Background(), "t")
	assert.True(t, errors.Is(err, errors.ErrUpstream))
}

func TestDecodeText(t *testing.T) {
	s, err := decodeText([]byte("  plain words \n"))
	require.NoError(t, err)
	assert.Equal(t, "plain words", s)

	_, err = decodeText([]byte(`{"other":1}`))
	assert.Error(t, err)

	_, err = decodeText(nil)
	assert.Error(t, err)
}

func TestParseSection(t *testing.T) {
	s, ok := ParseSection(" Outcomes")
	assert.True(t, ok)
	assert.Equal(t, SectionOutcomes, s)
	_, ok = ParseSection("")
	assert.False(t, ok)
}
