package spec

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
)

// fromOpenAPI loads an OpenAPI 3 or Swagger 2 tree with kin-openapi and
// maps it onto the RAML-shaped model so the same builder can consume it.
func fromOpenAPI(ctx context.Context, root Value) (*Document, error) {
	_ = ctx
	raw, err := root.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var doc *openapi3.T
	if detectSpecVersion(root) == 2 {
		var v2 openapi2.T
		if err := json.Unmarshal(raw, &v2); err != nil {
			return nil, fmt.Errorf("decode swagger 2.0: %w", err)
		}
		doc, err = openapi2conv.ToV3(&v2)
		if err != nil {
			return nil, fmt.Errorf("convert v2→v3: %w", err)
		}
	} else {
		loader := openapi3.NewLoader()
		doc, err = loader.LoadFromData(raw)
		if err != nil {
			return nil, err
		}
	}
	return documentFromOpenAPI(doc), nil
}

func documentFromOpenAPI(doc *openapi3.T) *Document {
	out := &Document{}
	if doc.Info != nil {
		out.Title = doc.Info.Title
		out.Version = doc.Info.Version
	}
	if len(doc.Servers) > 0 && doc.Servers[0] != nil {
		out.BaseURI = doc.Servers[0].URL
	}

	// Paths is a map in this kin-openapi version; sort for determinism.
	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		res := Resource{Path: p}
		base := collectParameters(nil, item.Parameters)

		ops := []struct {
			m HttpMethod
			o *openapi3.Operation
		}{
			{GET, item.Get},
			{POST, item.Post},
			{PUT, item.Put},
			{DELETE, item.Delete},
			{PATCH, item.Patch},
			{OPTIONS, item.Options},
			{HEAD, item.Head},
		}
		for _, pair := range ops {
			if pair.o == nil {
				continue
			}
			params := collectParameters(base, pair.o.Parameters)
			m := Method{
				Name:        string(pair.m),
				Description: pair.o.Description,
			}
			if m.Description == "" {
				m.Description = pair.o.Summary
			}
			for _, ip := range params {
				switch ip.in {
				case openapi3.ParameterInHeader:
					m.Headers = append(m.Headers, ip.Parameter)
				case openapi3.ParameterInQuery:
					m.QueryParameters = append(m.QueryParameters, ip.Parameter)
				case openapi3.ParameterInPath:
					if !hasParameter(res.URIParameters, ip.Name) {
						res.URIParameters = append(res.URIParameters, ip.Parameter)
					}
				}
			}
			if pair.o.RequestBody != nil && pair.o.RequestBody.Value != nil {
				m.Body = mediaTypesFromContent(pair.o.RequestBody.Value.Content, false)
			}
			m.Responses = responsesFromOpenAPI(pair.o.Responses)
			res.Methods = append(res.Methods, m)
		}
		out.Resources = append(out.Resources, res)
	}
	return out
}

type inParameter struct {
	Parameter
	in string
}

// collectParameters merges operation-level parameters over path-level ones.
func collectParameters(base []inParameter, refs openapi3.Parameters) []inParameter {
	out := append([]inParameter(nil), base...)
	for _, ref := range refs {
		if ref == nil || ref.Value == nil {
			continue
		}
		p := ref.Value
		ip := inParameter{
			Parameter: Parameter{
				Name:        p.Name,
				Description: p.Description,
				Required:    p.Required,
				Example:     wrapExample(parameterExample(p)),
			},
			in: p.In,
		}
		replaced := false
		for i := range out {
			if out[i].in == ip.in && out[i].Name == ip.Name {
				out[i] = ip
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, ip)
		}
	}
	return out
}

func hasParameter(params []Parameter, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

func parameterExample(p *openapi3.Parameter) any {
	if p.Example != nil {
		return p.Example
	}
	if ex := firstExample(p.Examples); ex != nil {
		return ex
	}
	if p.Schema != nil && p.Schema.Value != nil {
		return p.Schema.Value.Example
	}
	return nil
}

// wrapExample puts v under a "value" key, the shape RAML 1.0 uses for
// named examples and the one the builder reads.
func wrapExample(v any) Value {
	if v == nil {
		return Value{}
	}
	return ValueOf(map[string]any{"value": v})
}

func firstExample(examples openapi3.Examples) any {
	if len(examples) == 0 {
		return nil
	}
	names := make([]string, 0, len(examples))
	for name := range examples {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ref := examples[name]
		if ref != nil && ref.Value != nil && ref.Value.Value != nil {
			return ref.Value.Value
		}
	}
	return nil
}

func mediaTypesFromContent(content openapi3.Content, wrap bool) []MediaType {
	mimes := make([]string, 0, len(content))
	for mime := range content {
		mimes = append(mimes, mime)
	}
	sort.SliceStable(mimes, func(i, j int) bool {
		// JSON media types first so they become the canonical body.
		ji, jj := strings.Contains(mimes[i], "json"), strings.Contains(mimes[j], "json")
		if ji != jj {
			return ji
		}
		return mimes[i] < mimes[j]
	})

	out := make([]MediaType, 0, len(mimes))
	for _, mime := range mimes {
		mt := content[mime]
		entry := MediaType{Mime: mime}
		if mt != nil {
			ex := mt.Example
			if ex == nil {
				ex = firstExample(mt.Examples)
			}
			if ex == nil && mt.Schema != nil && mt.Schema.Value != nil {
				ex = mt.Schema.Value.Example
			}
			if wrap {
				entry.Example = wrapExample(ex)
			} else {
				entry.Example = ValueOf(ex)
			}
			if mt.Schema != nil && mt.Schema.Value != nil {
				entry.Schema = schemaValue(mt.Schema.Value)
			}
		}
		out = append(out, entry)
	}
	return out
}

func schemaValue(s *openapi3.Schema) Value {
	b, err := json.Marshal(s)
	if err != nil {
		return Value{}
	}
	var plain any
	if err := json.Unmarshal(b, &plain); err != nil {
		return Value{}
	}
	return ValueOf(plain)
}

func responsesFromOpenAPI(responses openapi3.Responses) []Response {
	// In kin-openapi v0.116, Responses is a map[string]*ResponseRef
	codes := make([]string, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]Response, 0, len(codes))
	for _, code := range codes {
		ref := responses[code]
		if ref == nil || ref.Value == nil {
			continue
		}
		r := Response{Code: code}
		if ref.Value.Description != nil {
			r.Description = *ref.Value.Description
		}
		r.Body = mediaTypesFromContent(ref.Value.Content, true)
		out = append(out, r)
	}
	return out
}
