// Package output prints API payloads and failures to the console.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/term"
)

type PrinterOptions struct {
	ForcePretty  bool
	ForceCompact bool
}

type Printer struct {
	out io.Writer
	err io.Writer

	pretty bool
}

// NewPrinter indents JSON when out is a terminal unless forced either way.
func NewPrinter(out io.Writer, errw io.Writer, opts PrinterOptions) *Printer {
	pretty := false
	if opts.ForcePretty {
		pretty = true
	} else if opts.ForceCompact {
		pretty = false
	} else if f, ok := out.(*os.File); ok {
		pretty = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{out: out, err: errw, pretty: pretty}
}

func (p *Printer) Out() io.Writer { return p.out }
func (p *Printer) Err() io.Writer { return p.err }
func (p *Printer) Pretty() bool   { return p.pretty }

// PrintBody writes a raw JSON (or text) payload to stdout.
func (p *Printer) PrintBody(body []byte) error {
	return p.printBodyTo(p.out, body)
}

// PrintJSON marshals v and prints it like PrintBody.
func (p *Printer) PrintJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.printBodyTo(p.out, b)
}

// PrintHTTPError writes the status line and body of a failed call to stderr.
func (p *Printer) PrintHTTPError(status int, body []byte) error {
	if text := http.StatusText(status); text != "" {
		if _, err := fmt.Fprintf(p.err, "HTTP %d %s\n", status, text); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintf(p.err, "HTTP %d\n", status); err != nil {
		return err
	}
	return p.printBodyTo(p.err, body)
}

func (p *Printer) printBodyTo(w io.Writer, body []byte) error {
	if len(body) == 0 {
		return nil
	}

	out := body
	if p.pretty && json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			out = buf.Bytes()
		}
	}

	if _, err := w.Write(out); err != nil {
		return err
	}
	if out[len(out)-1] != '\n' {
		_, _ = w.Write([]byte("\n"))
	}
	return nil
}
