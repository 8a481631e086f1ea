package collection

import (
	"strings"

	"github.com/mark3labs/raml2postman/internal/spec"
)

const placeholderValue = "<value>"

// BuildURL assembles the url object for path. Path variables come only from
// {name} segments, one per distinct name. pathParams (the resource's
// uriParameters) are not rendered.
func BuildURL(baseURL, path string, query []spec.Parameter, pathParams []spec.Parameter) URL {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	var variables []Variable
	seen := make(map[string]bool)
	for _, seg := range segments {
		if name, ok := pathVariable(seg); ok && !seen[name] {
			seen[name] = true
			variables = append(variables, Variable{
				Key:         name,
				Value:       placeholderValue,
				Description: "Path parameter " + name,
			})
		}
	}

	u := URL{
		Raw:      baseURL + path,
		Host:     []string{baseURL},
		Path:     segments,
		Variable: variables,
	}

	if len(query) > 0 {
		u.Query = make([]QueryParam, 0, len(query))
		for _, p := range query {
			u.Query = append(u.Query, QueryParam{
				Key:         p.Name,
				Value:       exampleText(p.Example),
				Description: p.Description,
				Disabled:    !p.Required,
			})
		}
	}
	return u
}

func pathVariable(seg string) (string, bool) {
	if len(seg) < 2 || !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
		return "", false
	}
	return seg[1 : len(seg)-1], true
}

// exampleText returns example.value as text, or "" when the example is not
// a mapping carrying a value.
func exampleText(example spec.Value) string {
	if !example.Truthy() {
		return ""
	}
	v, ok := example.Field("value")
	if !ok {
		return ""
	}
	return v.String()
}
