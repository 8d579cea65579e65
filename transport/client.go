package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TransportError is a non-success HTTP status or network-level failure.
// It is surfaced per language and never aborts sibling languages.
type TransportError struct {
	Endpoint string
	Status   int
	Body     string
	Err      error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport failure calling %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("service returned status %d from %s: %s", e.Status, e.Endpoint, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError marks a response body that is not JSON or misses
// required fields. Treated as "no translation for this language".
type MalformedResponseError struct {
	Endpoint string
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Endpoint, e.Reason)
}

// Client talks to the translation service.
type Client struct {
	hc      *http.Client
	baseURL string
	token   string
	log     *zap.Logger

	batchSize  int
	splitAbove int
}

// NewClient builds a service client. An empty token disables the
// Authorization header.
func NewClient(baseURL, token string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		hc:         &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		log:        log.Named("transport"),
		batchSize:  batchSize,
		splitAbove: maxPayloadBytes,
	}
}

// WithChunking overrides the batch size and the serialized payload size
// above which exports are split. Non-positive values keep the defaults.
func (c *Client) WithChunking(batch, splitAbove int) *Client {
	if batch > 0 {
		c.batchSize = batch
	}
	if splitAbove > 0 {
		c.splitAbove = splitAbove
	}
	return c
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("unable to encode request for %s: %w", path, err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Debug("Calling service", zap.String("endpoint", path), zap.Int("bytes", len(data)))
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Endpoint: path, Status: resp.StatusCode, Body: truncate(string(out), 512)}
	}
	return out, nil
}

// Translate sends one export payload and decodes the translation result.
func (c *Client) Translate(ctx context.Context, payload *ExportPayload) (*TranslationResult, error) {
	body, err := c.post(ctx, "/translate", payload)
	if err != nil {
		return nil, err
	}

	result := &TranslationResult{}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, &MalformedResponseError{Endpoint: "/translate", Reason: err.Error()}
	}
	if result.Lang == "" {
		result.Lang = payload.Lang
	}
	if result.FrameID == "" {
		return nil, &MalformedResponseError{Endpoint: "/translate", Reason: "missing frameId"}
	}
	c.log.Debug("Received translation", zap.String("lang", result.Lang),
		zap.String("frame", result.FrameID), zap.Int("texts", len(result.Texts)))
	return result, nil
}

// Upload sends reviewed translations for one language.
func (c *Client) Upload(ctx context.Context, req *UploadRequest) error {
	_, err := c.post(ctx, "/upload", req)
	if err != nil {
		return err
	}
	c.log.Info("Uploaded translations", zap.String("lang", req.Body.Lang),
		zap.String("frame", req.Frame.ID), zap.Int("texts", len(req.Body.Texts)))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
