// Package postman is a small client for the Postman collections API.
package postman

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/raml2postman/internal/logging"
)

// DefaultBaseURL is the public Postman API endpoint.
const DefaultBaseURL = "https://api.getpostman.com"

const apiKeyHeader = "X-Api-Key"

var (
	ErrMissingAPIKey      = errors.New("postman: API key is required")
	ErrRemoteAPI          = errors.New("postman: remote API error")
	ErrCollectionNotFound = errors.New("postman: no collection found")
)

// RemoteAPIError reports a non-2xx answer. Body holds the raw response.
type RemoteAPIError struct {
	Method string
	URL    string
	Status int
	Body   []byte
}

func (e *RemoteAPIError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	if body == "" {
		return fmt.Sprintf("postman: %s %s: HTTP %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("postman: %s %s: HTTP %d: %s", e.Method, e.URL, e.Status, body)
}

func (e *RemoteAPIError) Is(target error) bool { return target == ErrRemoteAPI }

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Debug writes request and response lines to Out.
	Debug  bool
	Out    io.Writer
	Logger *slog.Logger
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

type Client struct {
	http    *http.Client
	apiKey  string
	baseURL string
	opts    Options
	log     *slog.Logger
}

func NewClient(apiKey string, opts Options) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{http: hc, apiKey: apiKey, baseURL: base, opts: opts, log: logger}, nil
}

// do sends one request and returns the body of a 2xx answer. There are no
// retries: any other status becomes a *RemoteAPIError.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody []byte
	if payload != nil {
		var err error
		switch p := payload.(type) {
		case json.RawMessage:
			reqBody = p
		default:
			reqBody, err = json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("postman: encode %s %s: %w", method, path, err)
			}
		}
	}

	url := c.baseURL + path
	var body io.Reader
	if reqBody != nil {
		body = bytes.NewReader(reqBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	if c.opts.Debug {
		c.logRequest(req)
	}
	c.log.Debug("postman request", "method", method, "url", url)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("postman: %s %s: %w", method, url, err)
	}
	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("postman: read %s %s: %w", method, url, readErr)
	}

	if c.opts.Debug {
		c.logResponse(resp, respBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("postman request failed", "method", method, "url", url, "status", resp.StatusCode)
		return nil, &RemoteAPIError{Method: method, URL: url, Status: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}

func (c *Client) logRequest(req *http.Request) {
	fmt.Fprintf(c.opts.Out, "> %s %s\n", req.Method, req.URL.String())
	for k, vv := range req.Header {
		v := strings.Join(vv, ", ")
		if strings.EqualFold(k, apiKeyHeader) || strings.EqualFold(k, "Authorization") {
			v = "<redacted>"
		}
		fmt.Fprintf(c.opts.Out, "> %s: %s\n", k, v)
	}
}

func (c *Client) logResponse(resp *http.Response, body []byte) {
	fmt.Fprintf(c.opts.Out, "< %s\n", resp.Status)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		fmt.Fprintf(c.opts.Out, "< Content-Type: %s\n", ct)
	}
	fmt.Fprintf(c.opts.Out, "< Content-Length: %d\n", len(body))
}

func decodeField(body []byte, field string, out any) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("postman: decode response: %w", err)
	}
	raw, ok := envelope[field]
	if !ok {
		return fmt.Errorf("postman: response has no %q field", field)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("postman: decode %s: %w", field, err)
	}
	return nil
}
