package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_PrettyAndCompact(t *testing.T) {
	var out, errw bytes.Buffer
	p := NewPrinter(&out, &errw, PrinterOptions{ForcePretty: true})
	require.NoError(t, p.PrintBody([]byte(`{"a":1}`)))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", out.String())

	out.Reset()
	p = NewPrinter(&out, &errw, PrinterOptions{})
	assert.False(t, p.Pretty(), "non-terminal writers default to compact output")
	require.NoError(t, p.PrintJSON(map[string]int{"a": 1}))
	assert.Equal(t, "{\"a\":1}\n", out.String())
}

func TestPrinter_PrintHTTPError(t *testing.T) {
	var out, errw bytes.Buffer
	p := NewPrinter(&out, &errw, PrinterOptions{ForceCompact: true})
	require.NoError(t, p.PrintHTTPError(401, []byte(`{"error":"unauthorized"}`)))
	assert.Equal(t, "HTTP 401 Unauthorized\n{\"error\":\"unauthorized\"}\n", errw.String())
	assert.Empty(t, out.String())

	errw.Reset()
	require.NoError(t, p.PrintHTTPError(599, nil))
	assert.Equal(t, "HTTP 599\n", errw.String())
}
