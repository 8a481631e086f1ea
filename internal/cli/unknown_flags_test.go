package cli

import (
	"io"
	"strings"
	"testing"
)

func TestUnknownFlag_ShowsHelpAndUsageError(t *testing.T) {
	t.Parallel()
	for _, args := range [][]string{
		{"convert", "--unknown-flag"},
		{"collections", "list", "--unknown-flag"},
	} {
		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs(args)

		err := root.Execute()
		if err == nil {
			t.Fatalf("%v: expected error for unknown flag", args)
		}
		if _, ok := err.(usageError); !ok {
			t.Fatalf("%v: expected usage error, got %T: %v", args, err, err)
		}
		if !strings.Contains(err.Error(), "unknown flag") || !strings.Contains(err.Error(), "Usage:") {
			t.Fatalf("%v: unexpected error text: %v", args, err)
		}
	}
}

func TestConflictingPrettyFlags(t *testing.T) {
	t.Parallel()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--pretty", "--no-pretty", "convert", "x.raml", "--no-upload"})

	err := root.Execute()
	if _, ok := err.(usageError); !ok {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
}
