package collection

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mark3labs/raml2postman/internal/spec"
)

// authHeaders are prepended to every request.
var authHeaders = []Header{
	{Key: "client_id", Value: "<string>", Description: "Authentication Client ID"},
	{Key: "client_secret", Value: "<string>", Description: "Authentication Client Secret"},
}

// BuildRequestItem renders one method of one resource as a request item.
// The item is named after the raw path.
func BuildRequestItem(method, path string, m spec.Method, baseURL string, uriParams []spec.Parameter) *Item {
	headers := cloneHeaders(authHeaders)
	for _, h := range m.Headers {
		headers = append(headers, Header{
			Key:         h.Name,
			Value:       placeholderValue,
			Description: h.Description,
			Disabled:    boolPtr(!h.Required),
		})
	}

	url := BuildURL(baseURL, path, m.QueryParameters, uriParams)
	verb := strings.ToUpper(method)

	responses := make([]Response, 0, len(m.Responses))
	for _, r := range m.Responses {
		responses = append(responses, buildResponse(verb, headers, url, r))
	}

	return &Item{
		Name: path,
		Request: &Request{
			Method:      verb,
			Header:      headers,
			Body:        buildBody(m.Body),
			URL:         url,
			Description: m.Description,
		},
		Response:                responses,
		ProtocolProfileBehavior: &ProtocolProfileBehavior{DisableBodyPruning: true},
	}
}

// buildBody uses the first declared MIME type only.
func buildBody(media []spec.MediaType) *Body {
	if len(media) == 0 {
		return nil
	}
	mt := media[0]
	raw := mt.Example
	if !raw.Truthy() {
		raw = mt.Schema
	}
	if !raw.Truthy() {
		return nil
	}
	lang := "text"
	if strings.Contains(mt.Mime, "json") {
		lang = "json"
	}
	return &Body{
		Mode:    "raw",
		Raw:     raw,
		Options: &BodyOptions{Raw: RawOptions{Language: lang}},
	}
}

func buildResponse(verb string, headers []Header, url URL, r spec.Response) Response {
	resp := Response{
		Name: "Response " + r.Code,
		OriginalRequest: OriginalRequest{
			Method: verb,
			Header: cloneHeaders(headers),
			URL:    url.clone(),
		},
		Status: r.Description,
		Code:   statusCode(r.Code),
		Header: []Header{},
	}
	if len(r.Body) > 0 {
		mt := r.Body[0]
		if v, ok := mt.Example.Field("value"); ok {
			resp.Body = prettyJSON(v)
		}
		resp.Header = append(resp.Header, Header{Key: "Content-Type", Value: mt.Mime})
	}
	return resp
}

// statusCode parses an all-digit status key; anything else maps to 0.
func statusCode(code string) int {
	if code == "" {
		return 0
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0
	}
	return n
}

func prettyJSON(v spec.Value) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
