package cli

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/raml2postman/internal/postman"
)

func fakePostman(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/collections", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"collections":[{"id":"1","name":"Pet Store","uid":"c-1"}]}`)
	})
	mux.HandleFunc("/collections/c-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"collection":{"info":{"name":"Pet Store"},"item":[]}}`)
	})
	mux.HandleFunc("/environments/e-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"environment":{"name":"Dev","values":[]}}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"name":"instanceNotFoundError"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runRemote(t *testing.T, srv *httptest.Server, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--postman-url", srv.URL, "--key", "k", "--no-pretty"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCollectionsList(t *testing.T) {
	srv := fakePostman(t)
	out, _, err := runRemote(t, srv, "collections", "list")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, `"uid":"c-1"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestCollectionsFind(t *testing.T) {
	srv := fakePostman(t)
	out, _, err := runRemote(t, srv, "collections", "find", "pet")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, `"name":"Pet Store"`) {
		t.Fatalf("unexpected output: %s", out)
	}

	_, _, err = runRemote(t, srv, "collections", "find", "billing")
	if !errors.Is(err, postman.ErrCollectionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCollectionsDownload(t *testing.T) {
	srv := fakePostman(t)
	dir := t.TempDir()
	out, _, err := runRemote(t, srv, "collections", "download", "c-1", "--dir", dir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	path := filepath.Join(dir, "Pet Store.json")
	if !strings.Contains(out, path) {
		t.Fatalf("expected saved path in output, got %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected downloaded file: %v", err)
	}
}

func TestEnvironmentsGet(t *testing.T) {
	srv := fakePostman(t)
	out, _, err := runRemote(t, srv, "environments", "get", "e-1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, `"name":"Dev"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestRemoteErrorPrintsStatus(t *testing.T) {
	srv := fakePostman(t)
	_, stderr, err := runRemote(t, srv, "collections", "get", "missing")
	if !errors.Is(err, postman.ErrRemoteAPI) {
		t.Fatalf("expected remote API error, got %v", err)
	}
	if !strings.Contains(stderr, "HTTP 404 Not Found") || !strings.Contains(stderr, "instanceNotFoundError") {
		t.Fatalf("unexpected stderr: %q", stderr)
	}
}

func TestRemoteRequiresKey(t *testing.T) {
	t.Setenv(apiKeyEnv, "")
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"collections", "list"})

	if err := root.Execute(); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}
