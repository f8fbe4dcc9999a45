package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/hdmquan/logos-living-capital/internal/app"
	"github.com/hdmquan/logos-living-capital/internal/config"
	"github.com/hdmquan/logos-living-capital/internal/infrastructure"
	"github.com/hdmquan/logos-living-capital/internal/registry"
	"github.com/hdmquan/logos-living-capital/internal/validation"
)

type rootOptions struct {
	configPath string
	uploadsDir string
	logLevel   string

	stdout io.Writer
	stderr io.Writer
	files  *validation.FileValidator
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:          "processor",
		Short:        "Process retirement home financial statement workbooks",
		Version:      config.AppVersion,
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config.yaml (default: search standard locations)")
	root.PersistentFlags().StringVar(&opts.uploadsDir, "uploads", "", "Override the uploads directory")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")

	root.AddCommand(
		newExtractCmd(opts),
		newAnalyzeCmd(opts),
		newReportCmd(opts),
		newLayoutsCmd(opts),
	)
	return root
}

// container loads configuration and builds the services a command needs.
// Logs go to stderr so stdout stays machine readable.
func (o *rootOptions) container(ctx context.Context) (*app.ServiceContainer, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.uploadsDir != "" {
		cfg.Storage.UploadsDir = o.uploadsDir
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	logger := infrastructure.NewLogger(o.stderr, cfg.Logging.Level)
	o.files = validation.NewFileValidator(logger)
	if err := o.files.ValidateOutputDirectory(paths.UploadsDir); err != nil {
		return nil, err
	}
	return app.NewServiceContainer(ctx, cfg, paths, logger, app.Dependencies{})
}

func (o *rootOptions) printJSON(v interface{}) error {
	enc := json.NewEncoder(o.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newExtractCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <workbook.xlsx>",
		Short: "Create a run from a workbook and extract every configured sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.container(ctx)
			if err != nil {
				return err
			}

			if err := opts.files.ValidateWorkbook(args[0]); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open workbook: %w", err)
			}
			defer f.Close()

			report, err := c.Runs.Process(ctx, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			return opts.printJSON(report)
		},
	}
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var withFlow bool

	cmd := &cobra.Command{
		Use:   "analyze <run-id>",
		Short: "Print the analyses of a processed run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.container(ctx)
			if err != nil {
				return err
			}

			results, err := c.Analyses.Analyze(ctx, args[0])
			if err != nil {
				return err
			}
			if !withFlow {
				return opts.printJSON(results)
			}

			flow, err := c.Analyses.Flow(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.printJSON(map[string]interface{}{
				"analyses": results,
				"flow":     flow,
			})
		},
	}
	cmd.Flags().BoolVar(&withFlow, "flow", false, "Include the revenue and expense flow")
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var withPDF bool

	cmd := &cobra.Command{
		Use:   "report <run-id>",
		Short: "Compose the narrative and render the HTML report of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.container(ctx)
			if err != nil {
				return err
			}

			generated, err := c.Reports.Generate(ctx, args[0], withPDF)
			if err != nil {
				return err
			}
			return opts.printJSON(generated.Output)
		},
	}
	cmd.Flags().BoolVar(&withPDF, "pdf", false, "Also render the report to PDF with headless Chrome")
	return cmd
}

func newLayoutsCmd(opts *rootOptions) *cobra.Command {
	var (
		format   string
		embedded bool
	)

	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "Print the sheet layout registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if embedded {
				_, err := opts.stdout.Write(registry.DefaultYAML())
				return err
			}

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			reg, err := app.LoadRegistry(cfg.Layout)
			if err != nil {
				return err
			}

			switch format {
			case "yaml":
				out, err := yaml.Marshal(reg.Document())
				if err != nil {
					return err
				}
				_, err = opts.stdout.Write(out)
				return err
			case "json":
				return opts.printJSON(reg.Document())
			default:
				return fmt.Errorf("invalid format: %s (must be yaml or json)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	cmd.Flags().BoolVar(&embedded, "embedded", false, "Print the built-in layout document verbatim, ignoring --config")
	return cmd
}
