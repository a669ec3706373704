package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/bootstrap"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
)

type globalFlags struct {
	profile   string
	configDir string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Manage the quotekeeper collection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.profile, "profile", envOr("APP_ENVIRONMENT", "local"), "config profile")
	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "configs", "directory holding base.yaml and profile files")

	root.AddCommand(
		newListCmd(flags),
		newAddCmd(flags),
		newCategoriesCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
		newSyncCmd(flags),
	)

	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

// withComponents loads config, wires the application and runs fn.
func withComponents(cmd *cobra.Command, flags *globalFlags, fn func(context.Context, *bootstrap.Components) error) (err error) {
	cfg, err := config.LoadFrom(flags.configDir, flags.profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  "pretty",
		Service: "quotectl",
		Version: cfg.App.Version,
	}, cmd.ErrOrStderr())

	ctx := cmd.Context()

	components, err := bootstrap.Build(ctx, cfg, logger, bootstrap.Options{UserAgent: "quotectl"})
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, components.Close())
	}()

	return fn(ctx, components)
}

func newListCmd(flags *globalFlags) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print quotes, optionally limited to one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withComponents(cmd, flags, func(_ context.Context, c *bootstrap.Components) error {
				return printQuotes(cmd.OutOrStdout(), c.Service.List(category))
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", `category to show; "all" for every quote (default: saved filter)`)

	return cmd
}

func printQuotes(w io.Writer, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		_, err := fmt.Fprintln(w, "no quotes")
		return err
	}

	for _, q := range quotes {
		if _, err := fmt.Fprintf(w, "[%s] %s\n", q.Category, q.Text); err != nil {
			return err
		}
	}

	return nil
}

func newAddCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add TEXT CATEGORY",
		Short: "Add a quote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd, flags, func(ctx context.Context, c *bootstrap.Components) error {
				q, err := c.Service.AddQuote(ctx, args[0], args[1])
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "added [%s] %s\n", q.Category, q.Text)
				return err
			})
		},
	}
}

func newCategoriesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Print distinct categories in first-seen order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withComponents(cmd, flags, func(_ context.Context, c *bootstrap.Components) error {
				for _, category := range c.Service.Categories() {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), category); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection as indented JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withComponents(cmd, flags, func(_ context.Context, c *bootstrap.Components) error {
				if out == "-" {
					return c.Service.Export(cmd.OutOrStdout())
				}

				path := out
				if path == "" {
					path = app.ExportFilename(time.Now())
				}

				return exportToFile(c.Service, path, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout (default: quotes-YYYY-MM-DD.json)`)

	return cmd
}

func exportToFile(service *app.QuoteService, path string, status io.Writer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := service.Export(f); err != nil {
		return err
	}

	_, err = fmt.Fprintf(status, "exported to %s\n", path)

	return err
}

func newImportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the collection with the valid records in FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer f.Close()

			return withComponents(cmd, flags, func(ctx context.Context, c *bootstrap.Components) error {
				result, err := c.Service.Import(ctx, f)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d, rejected %d\n", result.Imported, result.Rejected)
				return err
			})
		},
	}
}

func newSyncCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one reconcile cycle against the remote feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withComponents(cmd, flags, func(ctx context.Context, c *bootstrap.Components) error {
				result, err := c.Reconciler.Reconcile(ctx)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %d, total %d, remote %d\n", result.Added, result.Total, result.Remote)
				if err == nil && result.PushFailed {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "push to remote failed")
				}

				return err
			})
		},
	}
}
