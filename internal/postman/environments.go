package postman

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

type EnvironmentSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	UID   string `json:"uid"`
	Owner string `json:"owner,omitempty"`
}

func (c *Client) ListEnvironments(ctx context.Context) ([]EnvironmentSummary, error) {
	body, err := c.do(ctx, "GET", "/environments", nil)
	if err != nil {
		return nil, err
	}
	var out []EnvironmentSummary
	if err := decodeField(body, "environments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetEnvironment(ctx context.Context, uid string) (json.RawMessage, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("postman: environment uid is required")
	}
	body, err := c.do(ctx, "GET", "/environments/"+url.PathEscape(uid), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
