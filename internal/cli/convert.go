package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mark3labs/raml2postman/internal/collection"
	"github.com/mark3labs/raml2postman/internal/emitter/postmanemitter"
	"github.com/mark3labs/raml2postman/internal/logging"
	"github.com/mark3labs/raml2postman/internal/output"
	"github.com/mark3labs/raml2postman/internal/postman"
	"github.com/mark3labs/raml2postman/internal/spec"
	"github.com/mark3labs/raml2postman/internal/version"
	"github.com/spf13/cobra"
)

const defaultCollectionName = "Untitled API"

var convertRunner = runConvert

// newSyncer builds the uploader used by convert; tests swap it out.
var newSyncer = func(cfg *Config, logger *slog.Logger, debugOut io.Writer) (postman.Syncer, error) {
	return newPostmanClient(cfg, logger, debugOut)
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a RAML document into a Postman collection",
		Long: "Convert a RAML document into a Postman v2.1 collection. The collection is written " +
			"to --out when set and uploaded to Postman unless --no-upload is given. " +
			"With neither --out nor an upload the collection is printed to stdout. " +
			"--dry-run prints the planned writes and upload instead of performing them.",
		Example: strings.TrimSpace(`  raml2postman convert api.raml --key $POSTMAN_API_KEY
  raml2postman convert api.raml --no-upload --out api.postman.json
  raml2postman --config raml2postman.yaml convert --dry-run`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConvertConfig(cmd, args)
			if err != nil {
				return err
			}
			return convertRunner(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringP("name", "n", "", "Collection name (defaults to the document title)")
	flags.String("base-url", "", "Base URL used in request URLs (default "+collection.DefaultBaseURL+")")
	flags.String("out", "", "Write the collection JSON to this file")
	flags.Bool("no-upload", false, "Do not upload the collection to Postman")
	flags.Bool("nested", false, "Flatten nested RAML resources into full paths")
	flags.Bool("dry-run", false, "Preview planned outputs without writing or uploading")
	flags.Bool("force", false, "Overwrite an existing --out file")

	return cmd
}

func resolveConvertConfig(cmd *cobra.Command, args []string) (*Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Input = strings.TrimSpace(args[0])
	}
	if cfg.Input == "" {
		return nil, newUsageError("convert: an input file is required (positional argument or config \"input\")")
	}
	if cfg.Upload && !cfg.DryRun && cfg.APIKey == "" {
		return nil, newUsageError(fmt.Sprintf("convert: a Postman API key is required to upload; pass --key, set %s, or use --no-upload", apiKeyEnv))
	}
	return cfg, nil
}

func runConvert(ctx context.Context, cfg *Config, stdout, stderr io.Writer) error {
	logger := logging.Setup(stderr, cfg.LogFormat, cfg.logLevel())
	printer := output.NewPrinter(stdout, stderr, output.PrinterOptions{
		ForcePretty:  cfg.Pretty,
		ForceCompact: cfg.NoPretty,
	})

	// 1) Load the document (file or http/https URL)
	doc, err := spec.Load(ctx, cfg.Input,
		spec.WithHTTPTimeout(cfg.Timeout),
		spec.WithNestedResources(cfg.Nested),
	)
	if err != nil {
		var se *spec.SpecError
		if errors.As(err, &se) {
			msg := se.Message
			if !strings.HasPrefix(msg, "spec:") {
				msg = "spec: " + msg
			}
			if se.Location != "" && !strings.Contains(se.Message, se.Location) {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			return newUsageError(msg)
		}
		return err
	}
	logger.Info("document loaded",
		"input", cfg.Input,
		"title", doc.Title,
		"version", doc.Version,
		"baseUri", doc.BaseURI,
		"resources", len(doc.Resources),
	)

	// 2) Build the item tree
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = collection.DefaultBaseURL
	}
	items := collection.Build(doc, baseURL)
	name := collectionName(cfg.Name, doc.Title)
	col := collection.New(name, items)

	// 3) Write the file
	if cfg.Out != "" {
		res, err := postmanemitter.Emit(ctx, col, postmanemitter.Options{
			OutPath: cfg.Out,
			Force:   cfg.Force,
			DryRun:  cfg.DryRun,
		})
		if err != nil {
			return wrapOutputError(err, cfg.Out)
		}
		if cfg.DryRun {
			printPlan(stdout, res)
		} else {
			logger.Info("collection written", "name", name, "path", res.Planned[0].Path)
		}
	}

	if !cfg.Upload {
		if cfg.Out == "" {
			body, err := postmanemitter.Render(col)
			if err != nil {
				return err
			}
			return printer.PrintBody(body)
		}
		return nil
	}
	if cfg.DryRun {
		printUploadPlan(stdout, cfg, name, items)
		return nil
	}

	// 4) Upload
	syncer, err := newSyncer(cfg, logger, stderr)
	if err != nil {
		return err
	}
	uid, err := syncer.CreateCollection(ctx, name, items)
	if err != nil {
		return reportRemoteError(printer, err)
	}
	fmt.Fprintf(stdout, "Created collection %q (uid %s)\n", name, uid)
	return nil
}

func collectionName(flagName, title string) string {
	if n := strings.TrimSpace(flagName); n != "" {
		return n
	}
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return defaultCollectionName
}

func newPostmanClient(cfg *Config, logger *slog.Logger, debugOut io.Writer) (*postman.Client, error) {
	client, err := postman.NewClient(cfg.APIKey, postman.Options{
		BaseURL:   cfg.PostmanURL,
		Timeout:   cfg.Timeout,
		UserAgent: version.UserAgent(),
		Debug:     cfg.Verbose,
		Out:       debugOut,
		Logger:    logger,
	})
	if errors.Is(err, postman.ErrMissingAPIKey) {
		return nil, newUsageError(fmt.Sprintf("a Postman API key is required; pass --key or set %s", apiKeyEnv))
	}
	return client, err
}

// reportRemoteError prints the status and body of a failed API call.
func reportRemoteError(p *output.Printer, err error) error {
	var apiErr *postman.RemoteAPIError
	if errors.As(err, &apiErr) {
		_ = p.PrintHTTPError(apiErr.Status, apiErr.Body)
		return fmt.Errorf("%s %s failed with HTTP %d: %w", apiErr.Method, apiErr.URL, apiErr.Status, postman.ErrRemoteAPI)
	}
	return err
}

func printPlan(w io.Writer, res *postmanemitter.Result) {
	fmt.Fprintf(w, "Planned writes for collection %q (%d files):\n", res.Name, len(res.Planned))
	for _, p := range res.Planned {
		fmt.Fprintf(w, "- %s (%d bytes)\n", p.Path, p.Size)
	}
}

func printUploadPlan(w io.Writer, cfg *Config, name string, items []*collection.Item) {
	target := cfg.PostmanURL
	if target == "" {
		target = postman.DefaultBaseURL
	}
	fmt.Fprintf(w, "Planned upload of collection %q (%d requests) to %s\n", name, collection.CountRequests(items), target)
}

func wrapOutputError(err error, out string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") ||
		strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") ||
		strings.Contains(lower, "exists") || strings.Contains(lower, "directory") {
		abs := out
		if ap, aerr := filepath.Abs(out); aerr == nil {
			abs = ap
		}
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", abs, msg))
	}
	return err
}
