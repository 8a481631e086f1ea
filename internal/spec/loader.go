package spec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NotFoundError   ErrorCode = "NotFoundError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ConversionError ErrorCode = "ConversionError"
)

// Sentinels matched by SpecError through errors.Is.
var (
	ErrNotFound = errors.New("spec: document not found")
	ErrParse    = errors.New("spec: malformed document")
)

// SpecError is a structured error carrying the input location.
type SpecError struct {
	Code     ErrorCode
	Message  string
	Location string // file path or URL
	Cause    error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

func (e *SpecError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == NotFoundError
	case ErrParse:
		return e.Code == ParseError
	}
	return false
}

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// NestedResources flattens resources declared inside other resources
	// ("/users": {"/{id}": ...}) into top-level paths.
	NestedResources bool
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithNestedResources(on bool) Option     { return func(s *Settings) { s.NestedResources = on } }

// Load reads and decodes a RAML-like document. input may be a filesystem
// path or an http/https URL. OpenAPI 3 and Swagger 2 documents are accepted
// too and mapped onto the same model.
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, fetchErr := fetchWithRetry(ctx, input, settings)
		if fetchErr != nil {
			if errors.Is(fetchErr, errRemoteNotFound) {
				return nil, &SpecError{Code: NotFoundError, Message: fmt.Sprintf("fetch %s: %v", input, fetchErr), Location: input, Cause: fetchErr}
			}
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, fetchErr), Location: input, Cause: fetchErr}
		}
		return parse(ctx, raw, input, settings)
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, rerr := os.ReadFile(abs)
	if rerr != nil {
		if errors.Is(rerr, fs.ErrNotExist) {
			return nil, &SpecError{Code: NotFoundError, Message: fmt.Sprintf("spec: file %s does not exist", abs), Location: abs, Cause: rerr}
		}
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, rerr), Location: abs, Cause: rerr}
	}
	return parse(ctx, raw, abs, settings)
}

// Parse decodes an in-memory document. location is only used in errors.
func Parse(ctx context.Context, data []byte, location string, opts ...Option) (*Document, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	return parse(ctx, data, location, settings)
}

func parse(ctx context.Context, data []byte, location string, settings Settings) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", displayLocation(location), err), Location: location, Cause: err}
	}
	root := NewValue(&node)
	if root.IsZero() {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: document is empty", displayLocation(location)), Location: location}
	}
	if !root.isMapping() {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: top level must be a mapping of paths", displayLocation(location)), Location: location}
	}
	// Decoding into plain values applies yaml.v3's mapping rules: repeated
	// keys and malformed merges are rejected here.
	var plain any
	if err := node.Decode(&plain); err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", displayLocation(location), err), Location: location, Cause: err}
	}

	switch detectSpecVersion(root) {
	case 3, 2:
		doc, err := fromOpenAPI(ctx, root)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert %s: %v", displayLocation(location), err), Location: location, Cause: err}
		}
		return doc, nil
	}
	return decodeDocument(root, settings), nil
}

func displayLocation(location string) string {
	if location == "" {
		return "document"
	}
	return location
}

// detectSpecVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else 0 (RAML).
func detectSpecVersion(root Value) int {
	if s := strings.TrimSpace(root.Get("openapi").String()); strings.HasPrefix(s, "3.") {
		return 3
	}
	if s := strings.TrimSpace(root.Get("swagger").String()); strings.HasPrefix(s, "2.") {
		return 2
	}
	return 0
}

var errRemoteNotFound = errors.New("not found")

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, rerr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			switch {
			case rerr != nil:
				lastErr = rerr
			case resp.StatusCode < 300:
				return body, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("http %d: %w", resp.StatusCode, errRemoteNotFound)
			case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
				lastErr = fmt.Errorf("transient http error %d", resp.StatusCode)
			default:
				if len(body) > 1024 {
					body = body[:1024]
				}
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(bytes.TrimSpace(body)))
			}
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}
