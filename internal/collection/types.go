// Package collection builds Postman v2.1 collection trees from a loaded
// API description.
package collection

import (
	"bytes"
	"encoding/json"

	"github.com/mark3labs/raml2postman/internal/spec"
)

const (
	// SchemaURL identifies the collection format.
	SchemaURL = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"
	// DefaultBaseURL refers to the collection-level baseUrl variable.
	DefaultBaseURL = "{{baseUrl}}"
)

// Item is either a folder (Items set, Request nil) or a request item.
type Item struct {
	Name                    string
	Items                   []*Item
	Request                 *Request
	Response                []Response
	ProtocolProfileBehavior *ProtocolProfileBehavior
}

// IsFolder reports whether the node groups other nodes.
func (it *Item) IsFolder() bool { return it.Request == nil }

func (it *Item) MarshalJSON() ([]byte, error) {
	if it.IsFolder() {
		items := it.Items
		if items == nil {
			items = []*Item{}
		}
		return marshalJSON(struct {
			Name string  `json:"name"`
			Item []*Item `json:"item"`
		}{it.Name, items})
	}
	responses := it.Response
	if responses == nil {
		responses = []Response{}
	}
	return marshalJSON(struct {
		Name                    string                   `json:"name"`
		Request                 *Request                 `json:"request"`
		Response                []Response               `json:"response"`
		ProtocolProfileBehavior *ProtocolProfileBehavior `json:"protocolProfileBehavior,omitempty"`
	}{it.Name, it.Request, responses, it.ProtocolProfileBehavior})
}

// marshalJSON is json.Marshal without HTML escaping, so descriptions and
// examples keep their literal text.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

type Request struct {
	Method      string   `json:"method"`
	Header      []Header `json:"header"`
	Body        *Body    `json:"body"`
	URL         URL      `json:"url"`
	Description string   `json:"description"`
}

type Header struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
	Disabled    *bool  `json:"disabled,omitempty"`
}

type URL struct {
	Raw      string       `json:"raw"`
	Host     []string     `json:"host"`
	Path     []string     `json:"path"`
	Variable []Variable   `json:"variable,omitempty"`
	Query    []QueryParam `json:"query,omitempty"`
}

// Variable describes a {name} path segment.
type Variable struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

type QueryParam struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
	Disabled    bool   `json:"disabled"`
}

type Body struct {
	Mode    string       `json:"mode"`
	Raw     spec.Value   `json:"raw"`
	Options *BodyOptions `json:"options,omitempty"`
}

type BodyOptions struct {
	Raw RawOptions `json:"raw"`
}

type RawOptions struct {
	Language string `json:"language"`
}

// Response is a saved example response attached to a request item.
type Response struct {
	Name            string          `json:"name"`
	OriginalRequest OriginalRequest `json:"originalRequest"`
	Status          string          `json:"status"`
	Code            int             `json:"code"`
	Body            string          `json:"body"`
	Header          []Header        `json:"header"`
}

// OriginalRequest is a copy of the request taken when the response was built.
type OriginalRequest struct {
	Method string   `json:"method"`
	Header []Header `json:"header"`
	URL    URL      `json:"url"`
}

type ProtocolProfileBehavior struct {
	DisableBodyPruning bool `json:"disableBodyPruning"`
}

func boolPtr(b bool) *bool { return &b }

func cloneHeaders(in []Header) []Header {
	if in == nil {
		return nil
	}
	out := make([]Header, len(in))
	for i, h := range in {
		out[i] = h
		if h.Disabled != nil {
			out[i].Disabled = boolPtr(*h.Disabled)
		}
	}
	return out
}

func (u URL) clone() URL {
	c := u
	c.Host = append([]string(nil), u.Host...)
	c.Path = append([]string(nil), u.Path...)
	if u.Variable != nil {
		c.Variable = append([]Variable(nil), u.Variable...)
	}
	if u.Query != nil {
		c.Query = append([]QueryParam(nil), u.Query...)
	}
	return c
}
