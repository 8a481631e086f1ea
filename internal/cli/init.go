package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/raml2postman/internal/spec"
)

const defaultConfigFile = "raml2postman.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	// Input, when set, is loaded once so the config can name the collection
	// after the document title.
	Input string
	// APIKey is written as an active apiKey entry when non-empty.
	APIKey string
	Stdout io.Writer
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a raml2postman configuration file",
		Long: "Scaffold a commented raml2postman configuration file. With --input the document is " +
			"loaded and its path and title are filled in; the API key is taken from " + apiKeyEnv + " when set.",
		Example: strings.TrimSpace(`  raml2postman init
  raml2postman init --input api.raml --out ci/raml2postman.yaml`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			input, err := cmd.Flags().GetString("input")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{
				OutputPath: out,
				Force:      force,
				Input:      strings.TrimSpace(input),
				APIKey:     strings.TrimSpace(os.Getenv(apiKeyEnv)),
				Stdout:     cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().String("out", defaultConfigFile, "Where to write the config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")
	cmd.Flags().String("input", "", "RAML document (file or URL) to record as the config input")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}
	if st, err := os.Stat(absPath); err == nil && !cfg.Force && st.Mode().IsRegular() {
		return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
	}

	var title string
	if cfg.Input != "" {
		doc, err := spec.Load(ctx, cfg.Input)
		if err != nil {
			return newUsageError(fmt.Sprintf("init: %v", err))
		}
		title = strings.TrimSpace(doc.Title)
	}

	content := sampleConfig(cfg.Input, title, cfg.APIKey)
	if err := writeConfigFile(absPath, content); err != nil {
		return err
	}

	w := cfg.Stdout
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "Wrote config to %s\n", absPath)
	if cfg.APIKey != "" {
		fmt.Fprintf(w, "apiKey was filled in from %s; keep the file out of version control.\n", apiKeyEnv)
	}
	return nil
}

// writeConfigFile places content at path through a temp file and a rename.
// The file holds an API key, so it is created 0600.
func writeConfigFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", path, err))
	}
	return nil
}

// sampleConfig renders the config file. Known values become active entries,
// everything else stays commented out at its default.
func sampleConfig(input, name, apiKey string) string {
	var b strings.Builder
	b.WriteString("# raml2postman configuration (YAML)\n")
	b.WriteString("# Command-line flags override these values.\n\n")

	entry := func(help, key, value, example string) {
		b.WriteString("# " + help + "\n")
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n\n", key, strconv.Quote(value))
			return
		}
		fmt.Fprintf(&b, "# %s: %s\n\n", key, example)
	}

	entry("Path or URL of the RAML document. OpenAPI 3 and Swagger 2 are accepted too.",
		"input", input, "./api.raml")
	entry("Postman API key. "+apiKeyEnv+" is used when neither this nor --key is set.",
		"apiKey", apiKey, "PMAK-...")
	entry(`Collection name. Defaults to the document title, else "`+defaultCollectionName+`".`,
		"name", name, "My API")
	b.WriteString(sampleConfigDefaults)
	return b.String()
}

const sampleConfigDefaults = `# Base URL prefixed to every request. Defaults to {{baseUrl}}.
# baseUrl: "{{baseUrl}}"

# Write the collection JSON to this file.
# out: ./api.postman_collection.json

# Upload the collection to Postman.
# upload: true

# Flatten nested RAML resources (/users: {/{id}: ...}) into full paths.
# nested: false

# Postman API endpoint.
# postmanUrl: https://api.getpostman.com

# HTTP timeout, as a duration ("30s") or seconds.
# timeout: 30s

# Print planned writes and uploads without performing them.
# dryRun: false

# Overwrite an existing output file.
# force: false

# Enable verbose logging (text|json via logFormat).
# verbose: false
# logFormat: text
`
