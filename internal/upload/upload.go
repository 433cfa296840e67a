// Package upload sends admin images to the image hosting service.
package upload

import (
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/httpx"
	"github.com/hpungsan/folio/internal/logging"
)

// MaxPayloadBytes bounds the encoded image accepted for upload.
const MaxPayloadBytes = 10 << 20

// Options configures a Client.
type Options struct {
	URL    string
	APIKey string
	HTTP   *http.Client
	Retry  httpx.RetryConfig
	Logger logrus.FieldLogger
}

// Client posts base64 images and returns the hosted URL.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
	retry  httpx.RetryConfig
	log    *logrus.Entry
}

// New returns a client for opts.URL.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, errors.NewInvalidRequest("upload_url is required")
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = httpx.NoRetry()
	}
	return &Client{
		url:    strings.TrimSpace(opts.URL),
		apiKey: opts.APIKey,
		http:   opts.HTTP,
		retry:  opts.Retry,
		log:    logging.Component(opts.Logger, "upload"),
	}, nil
}

type response struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Upload sends payload, a base64 image optionally wrapped in a data URL.
func (c *Client) Upload(ctx context.Context, payload string) (string, error) {
	data, err := Decode(payload)
	if err != nil {
		return "", err
	}

	header := http.Header{}
	if c.apiKey != "" {
		header.Set("Authorization", "Bearer "+c.apiKey)
	}
	build, err := httpx.JSONRequest(http.MethodPost, c.url,
		map[string]string{"image": base64.StdEncoding.EncodeToString(data)}, header)
	if err != nil {
		return "", errors.NewInternal(err)
	}

	var out response
	err = httpx.DoJSON(ctx, c.http, build, &out, c.retry)
	if err != nil {
		var herr *httpx.HTTPError
		if stderrors.As(err, &herr) {
			if msg := errorMessage(herr.Body); msg != "" {
				err = stderrors.New(msg)
			}
		}
		c.log.WithField("error", err).Error("image upload failed")
		return "", errors.NewUpstream("upload", err)
	}
	if out.Error != "" {
		return "", errors.NewUpstream("upload", stderrors.New(out.Error))
	}
	if out.URL == "" {
		return "", errors.NewUpstream("upload", fmt.Errorf("response has no url"))
	}
	return out.URL, nil
}

// Decode strips an optional data URL prefix and decodes the base64 body.
func Decode(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		i := strings.Index(payload, ",")
		if i < 0 {
			return nil, errors.NewInvalidRequest("malformed data URL")
		}
		payload = payload[i+1:]
	}
	if payload == "" {
		return nil, errors.NewInvalidRequest("image is required")
	}
	if len(payload) > MaxPayloadBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("image exceeds %d bytes", MaxPayloadBytes))
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.NewInvalidRequest("image must be base64 encoded")
	}
	return data, nil
}

func errorMessage(body []byte) string {
	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return ""
	}
	return out.Error
}
