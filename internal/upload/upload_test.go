package upload

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/folio/internal/errors"
)

var pngB64 = base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, pngB64, body["image"])
		_, _ = w.Write([]byte(`{"url":"https://img.example/a.png"}`))
	}))
	defer srv.Close()

	c, err := New(Options{URL: srv.URL, APIKey: "k", HTTP: srv.Client()})
	require.NoError(t, err)

	url, err := c.Upload(context.Background(), "data:image/png;base64,"+pngB64)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/a.png", url)
}

func TestUpload_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unsupported format"}`))
	}))
	defer srv.Close()

	c, err := New(Options{URL: srv.URL, HTTP: srv.Client()})
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), pngB64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUpstream))
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestUpload_ErrorInOKBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer srv.Close()

	c, err := New(Options{URL: srv.URL, HTTP: srv.Client()})
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), pngB64)
	assert.True(t, errors.Is(err, errors.ErrUpstream))
}

func TestDecode(t *testing.T) {
	_, err := Decode("")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Decode("data:image/png;base64")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Decode("not base64!")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	b, err := Decode(pngB64)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG fake"), b)
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Options{})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
