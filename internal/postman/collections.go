package postman

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/raml2postman/internal/collection"
)

// Syncer uploads a built collection tree and returns the new collection UID.
type Syncer interface {
	CreateCollection(ctx context.Context, name string, items []*collection.Item) (string, error)
}

var _ Syncer = (*Client)(nil)

type CollectionSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UID       string `json:"uid"`
	Owner     string `json:"owner,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (c *Client) ListCollections(ctx context.Context) ([]CollectionSummary, error) {
	body, err := c.do(ctx, "GET", "/collections", nil)
	if err != nil {
		return nil, err
	}
	var out []CollectionSummary
	if err := decodeField(body, "collections", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCollection returns the full response document for one collection.
func (c *Client) GetCollection(ctx context.Context, uid string) (json.RawMessage, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("postman: collection uid is required")
	}
	body, err := c.do(ctx, "GET", "/collections/"+url.PathEscape(uid), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// CreateCollection posts a new collection wrapping items and returns its UID.
func (c *Client) CreateCollection(ctx context.Context, name string, items []*collection.Item) (string, error) {
	payload := struct {
		Collection *collection.Collection `json:"collection"`
	}{collection.New(name, items)}

	body, err := c.do(ctx, "POST", "/collections", payload)
	if err != nil {
		return "", err
	}
	var created CollectionSummary
	if err := decodeField(body, "collection", &created); err != nil {
		return "", err
	}
	c.log.Info("collection created", "name", name, "uid", created.UID)
	return created.UID, nil
}

// UpdateCollection replaces a collection with doc. doc may be a bare
// collection or already wrapped as {"collection": ...}.
func (c *Client) UpdateCollection(ctx context.Context, uid string, doc json.RawMessage) (json.RawMessage, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("postman: collection uid is required")
	}
	payload, err := wrapCollection(doc)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, "PUT", "/collections/"+url.PathEscape(uid), payload)
	if err != nil {
		return nil, err
	}
	c.log.Info("collection updated", "uid", uid)
	return json.RawMessage(body), nil
}

func (c *Client) UpdateCollectionFromFile(ctx context.Context, uid, path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("postman: read %s: %w", path, err)
	}
	return c.UpdateCollection(ctx, uid, data)
}

func wrapCollection(doc json.RawMessage) (json.RawMessage, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(doc, &probe); err != nil {
		return nil, fmt.Errorf("postman: collection document is not a JSON object: %w", err)
	}
	if _, ok := probe["collection"]; ok {
		return doc, nil
	}
	wrapped, err := json.Marshal(map[string]json.RawMessage{"collection": doc})
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}

// RunCollection asks the API to run a collection, optionally against an
// environment.
func (c *Client) RunCollection(ctx context.Context, uid, envUID string) (json.RawMessage, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("postman: collection uid is required")
	}
	payload := struct {
		Collection  string `json:"collection"`
		Environment string `json:"environment,omitempty"`
	}{uid, envUID}
	body, err := c.do(ctx, "POST", "/collections/"+url.PathEscape(uid)+"/run", payload)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// FindCollectionByName returns the first collection whose name contains
// name, ignoring case.
func (c *Client) FindCollectionByName(ctx context.Context, name string) (*CollectionSummary, error) {
	all, err := c.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	for i := range all {
		if strings.Contains(strings.ToLower(all[i].Name), needle) {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w matching %q", ErrCollectionNotFound, name)
}

// DownloadCollection writes the collection to dir/<name>.json with 4-space
// indentation and returns the file path.
func (c *Client) DownloadCollection(ctx context.Context, uid, dir string) (string, error) {
	raw, err := c.GetCollection(ctx, uid)
	if err != nil {
		return "", err
	}
	var doc struct {
		Collection json.RawMessage `json:"collection"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil || len(doc.Collection) == 0 {
		return "", fmt.Errorf("postman: response for %s has no collection", uid)
	}
	var meta struct {
		Info struct {
			Name string `json:"name"`
		} `json:"info"`
	}
	_ = json.Unmarshal(doc.Collection, &meta)
	name := sanitizeFileName(meta.Info.Name)
	if name == "" {
		name = sanitizeFileName(uid)
	}

	var v any
	if err := json.Unmarshal(doc.Collection, &v); err != nil {
		return "", fmt.Errorf("postman: decode collection: %w", err)
	}
	pretty, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("postman: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, append(pretty, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("postman: write %s: %w", path, err)
	}
	c.log.Info("collection downloaded", "uid", uid, "path", path)
	return path, nil
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
