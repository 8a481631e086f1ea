package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/raml2postman/internal/logging"
	"github.com/mark3labs/raml2postman/internal/output"
	"github.com/mark3labs/raml2postman/internal/postman"
	"github.com/spf13/cobra"
)

// remote bundles what the collections and environments commands share.
type remote struct {
	client  *postman.Client
	printer *output.Printer
}

func newRemote(cmd *cobra.Command) (*remote, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cmd.ErrOrStderr(), cfg.LogFormat, cfg.logLevel())
	client, err := newPostmanClient(cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	printer := output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.PrinterOptions{
		ForcePretty:  cfg.Pretty,
		ForceCompact: cfg.NoPretty,
	})
	return &remote{client: client, printer: printer}, nil
}

// remoteRunE adapts fn into a cobra RunE with a configured client.
func remoteRunE(fn func(ctx context.Context, r *remote, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		r, err := newRemote(cmd)
		if err != nil {
			return err
		}
		if err := fn(cmd.Context(), r, args); err != nil {
			return reportRemoteError(r.printer, err)
		}
		return nil
	}
}

func (r *remote) printRaw(body json.RawMessage) error {
	return r.printer.PrintBody(body)
}

func newCollectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "Manage collections in a Postman workspace",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: remoteRunE(func(ctx context.Context, r *remote, _ []string) error {
			list, err := r.client.ListCollections(ctx)
			if err != nil {
				return err
			}
			return r.printer.PrintJSON(list)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get UID",
		Short: "Print one collection",
		Args:  cobra.ExactArgs(1),
		RunE: remoteRunE(func(ctx context.Context, r *remote, args []string) error {
			body, err := r.client.GetCollection(ctx, args[0])
			if err != nil {
				return err
			}
			return r.printRaw(body)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "update UID FILE",
		Short: "Replace a collection with the contents of a JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: remoteRunE(func(ctx context.Context, r *remote, args []string) error {
			body, err := r.client.UpdateCollectionFromFile(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return r.printRaw(body)
		}),
	})

	run := &cobra.Command{
		Use:   "run UID",
		Short: "Run a collection, optionally against an environment",
		Args:  cobra.ExactArgs(1),
	}
	run.Flags().StringP("environment", "e", "", "Environment UID")
	run.RunE = remoteRunE(func(ctx context.Context, r *remote, args []string) error {
		env, err := run.Flags().GetString("environment")
		if err != nil {
			return err
		}
		body, err := r.client.RunCollection(ctx, args[0], strings.TrimSpace(env))
		if err != nil {
			return err
		}
		return r.printRaw(body)
	})
	cmd.AddCommand(run)

	download := &cobra.Command{
		Use:   "download UID",
		Short: "Save a collection as <name>.json",
		Args:  cobra.ExactArgs(1),
	}
	download.Flags().String("dir", ".", "Directory to write into")
	download.RunE = remoteRunE(func(ctx context.Context, r *remote, args []string) error {
		dir, err := download.Flags().GetString("dir")
		if err != nil {
			return err
		}
		path, err := r.client.DownloadCollection(ctx, args[0], dir)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(r.printer.Out(), "Saved collection to %s\n", path)
		return err
	})
	cmd.AddCommand(download)

	cmd.AddCommand(&cobra.Command{
		Use:   "find NAME",
		Short: "Find the first collection whose name contains NAME",
		Args:  cobra.ExactArgs(1),
		RunE: remoteRunE(func(ctx context.Context, r *remote, args []string) error {
			found, err := r.client.FindCollectionByName(ctx, args[0])
			if err != nil {
				return err
			}
			return r.printer.PrintJSON(found)
		}),
	})

	return cmd
}

func newEnvironmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "environments",
		Short: "Inspect Postman environments",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List environments",
		Args:  cobra.NoArgs,
		RunE: remoteRunE(func(ctx context.Context, r *remote, _ []string) error {
			list, err := r.client.ListEnvironments(ctx)
			if err != nil {
				return err
			}
			return r.printer.PrintJSON(list)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get UID",
		Short: "Print one environment",
		Args:  cobra.ExactArgs(1),
		RunE: remoteRunE(func(ctx context.Context, r *remote, args []string) error {
			body, err := r.client.GetEnvironment(ctx, args[0])
			if err != nil {
				return err
			}
			return r.printRaw(body)
		}),
	})

	return cmd
}
