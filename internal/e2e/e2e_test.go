package e2e

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cli "github.com/mark3labs/raml2postman/internal/cli"
)

const sampleRAML = `title: E2E Sample
version: v1
baseUri: https://api.example.com
/users:
  get:
    description: List users
    queryParameters:
      page:
        description: Page number
        required: true
        example:
          value: 2
  post:
    headers:
      X-Trace:
        description: Trace id
    body:
      application/json:
        example: {"name": "ann"}
    responses:
      201:
        description: Created
        body:
          application/json:
            example:
              value: {"id": 7, "name": "ann"}
/users/{userId}:
  uriParameters:
    userId:
      description: User id
  delete:
    responses:
      204:
        description: Deleted
`

const sampleOpenAPI = `openapi: 3.0.0
info:
  title: E2E OpenAPI
  version: '1.0.0'
paths:
  /pets/{petId}:
    get:
      parameters:
        - name: petId
          in: path
          required: true
          schema: {type: string}
      responses:
        '200':
          description: ok
          content:
            application/json:
              example: {"id": "p1"}
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	root := cli.NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), "cli execute %v", args)
}

func digestFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func TestE2E_Convert_Deterministic(t *testing.T) {
	t.Parallel()
	spec := writeTemp(t, "api.raml", sampleRAML)
	out1 := filepath.Join(t.TempDir(), "a.json")
	out2 := filepath.Join(t.TempDir(), "b.json")

	runCLI(t, "convert", spec, "--no-upload", "--out", out1)
	runCLI(t, "convert", spec, "--no-upload", "--out", out2)

	assert.Equal(t, digestFile(t, out1), digestFile(t, out2), "outputs differ between runs")
}

func TestE2E_Convert_CollectionShape(t *testing.T) {
	t.Parallel()
	spec := writeTemp(t, "api.raml", sampleRAML)
	out := filepath.Join(t.TempDir(), "api.json")
	runCLI(t, "convert", spec, "--no-upload", "--out", out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var col map[string]any
	require.NoError(t, json.Unmarshal(data, &col))
	info := col["info"].(map[string]any)
	assert.Equal(t, "E2E Sample", info["name"])

	// /users and /users/{userId} both land in the "users" folder.
	items := col["item"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, "/users", items[0].(map[string]any)["name"])
	assert.Equal(t, "/users", items[1].(map[string]any)["name"])
	folder := items[2].(map[string]any)
	assert.Equal(t, "users", folder["name"])
	require.Len(t, folder["item"].([]any), 1)

	post := items[1].(map[string]any)
	req := post["request"].(map[string]any)
	assert.Equal(t, "POST", req["method"])
	headers := req["header"].([]any)
	require.Len(t, headers, 3)
	assert.Equal(t, "client_id", headers[0].(map[string]any)["key"])
	assert.Equal(t, "X-Trace", headers[2].(map[string]any)["key"])

	resp := post["response"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(201), resp["code"])
	assert.Equal(t, "Created", resp["status"])
	assert.True(t, strings.Contains(resp["body"].(string), "\n  \"id\": 7"), "expected pretty body, got %q", resp["body"])
}

func TestE2E_Convert_OpenAPIInput(t *testing.T) {
	t.Parallel()
	spec := writeTemp(t, "openapi.yaml", sampleOpenAPI)
	out := filepath.Join(t.TempDir(), "api.json")
	runCLI(t, "convert", spec, "--no-upload", "--out", out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"name": "E2E OpenAPI"`)
	assert.Contains(t, s, `"key": "petId"`)
	assert.Contains(t, s, `"raw": "{{baseUrl}}/pets/{petId}"`)
}

func TestE2E_Convert_Upload(t *testing.T) {
	t.Parallel()
	var (
		mu      sync.Mutex
		gotKey  string
		payload map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/collections" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		gotKey = r.Header.Get("X-Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = io.WriteString(w, `{"collection":{"id":"1","name":"Renamed","uid":"u-1"}}`)
	}))
	defer srv.Close()

	spec := writeTemp(t, "api.raml", sampleRAML)
	runCLI(t, "--postman-url", srv.URL, "convert", spec, "--key", "pmak-test", "-n", "Renamed")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "pmak-test", gotKey)
	require.NotNil(t, payload)
	col := payload["collection"].(map[string]any)
	assert.Equal(t, "Renamed", col["info"].(map[string]any)["name"])
	assert.Len(t, col["item"].([]any), 3)
	assert.Equal(t, []any{}, col["events"])
}

func TestE2E_Online_ListCollections(t *testing.T) {
	key := os.Getenv("RAML2POSTMAN_E2E_API_KEY")
	if os.Getenv("RAML2POSTMAN_E2E_ONLINE") != "1" || key == "" {
		t.Skip("set RAML2POSTMAN_E2E_ONLINE=1 and RAML2POSTMAN_E2E_API_KEY to run against the Postman API")
	}
	runCLI(t, "--key", key, "collections", "list")
}
