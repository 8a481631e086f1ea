package postmanemitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/raml2postman/internal/collection"
)

// Options controls how the collection file is written.
type Options struct {
	OutPath string // required; target file
	Force   bool   // overwrite an existing file
	DryRun  bool   // don't write, only plan
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	Path string
	Size int
	Mode os.FileMode
}

// Result returns the planned file and the collection name it holds.
type Result struct {
	Name    string
	Planned []PlannedFile
}

// Emit renders col as indented JSON and writes it to opts.OutPath.
func Emit(ctx context.Context, col *collection.Collection, opts Options) (*Result, error) {
	_ = ctx
	if col == nil {
		return nil, fmt.Errorf("postmanemitter: nil collection")
	}
	if strings.TrimSpace(opts.OutPath) == "" {
		return nil, fmt.Errorf("postmanemitter: OutPath is required")
	}
	abs, err := filepath.Abs(opts.OutPath)
	if err != nil {
		return nil, fmt.Errorf("resolve out path: %w", err)
	}

	content, err := Render(col)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Name:    col.Info.Name,
		Planned: []PlannedFile{{Path: abs, Size: len(content), Mode: 0o644}},
	}
	if opts.DryRun {
		return res, nil
	}
	if err := writeFile(abs, content, opts.Force); err != nil {
		return nil, err
	}
	return res, nil
}

// Render marshals col the way Emit writes it.
func Render(col *collection.Collection) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(col); err != nil {
		return nil, fmt.Errorf("marshal collection: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFile(abs string, content []byte, force bool) error {
	if st, err := os.Stat(abs); err == nil {
		if st.IsDir() {
			return fmt.Errorf("postmanemitter: output path %q is a directory", abs)
		}
		if !force {
			return fmt.Errorf("postmanemitter: output file %q already exists (use --force to overwrite)", abs)
		}
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// atomic write via temp file + rename
	tmp := abs + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(abs), err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(abs), err)
	}
	return nil
}
