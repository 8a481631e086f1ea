package spec

import "strings"

// Typed view of a RAML-like document used by the collection builder.
// Every field is optional; absent fields keep their zero value.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	OPTIONS HttpMethod = "options"
	HEAD    HttpMethod = "head"
)

// Methods is the fixed set of keys recognised as HTTP methods inside a resource.
var Methods = []HttpMethod{GET, POST, PUT, DELETE, PATCH, OPTIONS, HEAD}

// IsHTTPMethod matches key case-insensitively against Methods.
func IsHTTPMethod(key string) bool {
	k := HttpMethod(strings.ToLower(strings.TrimSpace(key)))
	for _, m := range Methods {
		if m == k {
			return true
		}
	}
	return false
}

type Document struct {
	Title     string
	Version   string
	BaseURI   string
	Resources []Resource
}

// Resource is one path entry, e.g. "/users/{id}".
type Resource struct {
	Path          string
	URIParameters []Parameter
	Methods       []Method
}

type Method struct {
	// Name is the key as written in the document ("get", "POST", ...).
	Name            string
	Description     string
	Headers         []Parameter
	QueryParameters []Parameter
	Body            []MediaType
	Responses       []Response
}

type Parameter struct {
	Name        string
	Description string
	Required    bool
	Example     Value
}

// MediaType is one entry of a body mapping keyed by MIME type.
type MediaType struct {
	Mime    string
	Example Value
	Schema  Value
}

type Response struct {
	Code        string
	Description string
	Body        []MediaType
}
