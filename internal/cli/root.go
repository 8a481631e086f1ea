package cli

import (
	"fmt"
	"time"

	"github.com/mark3labs/raml2postman/internal/postman"
	"github.com/mark3labs/raml2postman/internal/version"
	"github.com/spf13/cobra"
)

// Execute runs the raml2postman CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raml2postman",
		Short: "Convert RAML API descriptions into Postman collections",
		Long: "raml2postman turns a RAML (or OpenAPI/Swagger) document into a Postman v2.1 collection, " +
			"writes it to a file and uploads it through the Postman API.",
		Version:       version.Version(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "", "Config file path (YAML or JSON)")
	pf.BoolP("verbose", "v", false, "Enable verbose logging output")
	pf.String("log-format", "", "Log format: text or json")
	pf.String("key", "", "Postman API key (or set "+apiKeyEnv+")")
	pf.String("postman-url", "", "Postman API base URL (default "+postman.DefaultBaseURL+")")
	pf.Duration("timeout", 30*time.Second, "HTTP client timeout")
	pf.Bool("pretty", false, "Force pretty-printed JSON output")
	pf.Bool("no-pretty", false, "Force compact (non-pretty) output")

	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newCollectionsCmd())
	cmd.AddCommand(newEnvironmentsCmd())
	cmd.AddCommand(newVersionCmd())

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	setFlagErrors(cmd)

	return cmd
}

func setFlagErrors(cmd *cobra.Command) {
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	})
	for _, sub := range cmd.Commands() {
		setFlagErrors(sub)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version())
		},
	}
}
