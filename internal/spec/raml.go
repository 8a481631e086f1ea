package spec

import (
	"strings"
)

// decodeDocument maps the parsed tree onto the typed model. Unexpected
// shapes are skipped, never reported.
func decodeDocument(root Value, settings Settings) *Document {
	doc := &Document{
		Title:   root.Get("title").String(),
		Version: root.Get("version").String(),
		BaseURI: root.Get("baseUri").String(),
	}
	root.pairs(func(key string, entry Value) {
		if !strings.HasPrefix(key, "/") {
			return
		}
		doc.Resources = appendResource(doc.Resources, key, entry, nil, settings.NestedResources)
	})
	return doc
}

func appendResource(out []Resource, path string, entry Value, inherited []Parameter, nested bool) []Resource {
	res := Resource{Path: path}
	if nested {
		res.URIParameters = append(res.URIParameters, inherited...)
	}
	res.URIParameters = append(res.URIParameters, decodeParameters(entry.Get("uriParameters"))...)

	var children []struct {
		key   string
		entry Value
	}
	entry.pairs(func(key string, val Value) {
		switch {
		case IsHTTPMethod(key):
			res.Methods = append(res.Methods, decodeMethod(key, val))
		case nested && strings.HasPrefix(key, "/"):
			children = append(children, struct {
				key   string
				entry Value
			}{key, val})
		}
	})
	out = append(out, res)
	for _, c := range children {
		out = appendResource(out, joinResourcePath(path, c.key), c.entry, res.URIParameters, nested)
	}
	return out
}

func joinResourcePath(parent, child string) string {
	return strings.TrimRight(parent, "/") + child
}

func decodeMethod(name string, v Value) Method {
	return Method{
		Name:            name,
		Description:     v.Get("description").String(),
		Headers:         decodeParameters(v.Get("headers")),
		QueryParameters: decodeParameters(v.Get("queryParameters")),
		Body:            decodeBody(v.Get("body")),
		Responses:       decodeResponses(v.Get("responses")),
	}
}

func decodeParameters(v Value) []Parameter {
	var out []Parameter
	v.pairs(func(name string, d Value) {
		out = append(out, Parameter{
			Name:        name,
			Description: d.Get("description").String(),
			Required:    d.Get("required").Truthy(),
			Example:     d.Get("example"),
		})
	})
	return out
}

func decodeBody(v Value) []MediaType {
	var out []MediaType
	v.pairs(func(mime string, d Value) {
		out = append(out, MediaType{
			Mime:    mime,
			Example: d.Get("example"),
			Schema:  d.Get("schema"),
		})
	})
	return out
}

func decodeResponses(v Value) []Response {
	var out []Response
	v.pairs(func(code string, d Value) {
		out = append(out, Response{
			Code:        code,
			Description: d.Get("description").String(),
			Body:        decodeBody(d.Get("body")),
		})
	})
	return out
}
