package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/laneflow/laneflow/pkg/pipeline"
)

// renderCommand creates the render command for generating swimlane diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output      string
		formatsStr  string
		procsStr    string
		configPath  string
		interactive bool
		noCache     bool
		refresh     bool
	)

	cmd := &cobra.Command{
		Use:   "render [triples.txt]",
		Short: "Render a triple file as a swimlane diagram",
		Long: `Render a triple file as a swimlane diagram.

The input is a text file of "subject -- predicate --> object" triples
describing procedures, their sequenced items, stakeholders, and ordering.
Use "-" to read from stdin.

The default output is a draw.io XML document. Other formats: json (layout
geometry), dot (Graphviz source), svg, png.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{
				Formats:    parseFormats(formatsStr),
				Procedures: parseProcedures(procsStr),
				Refresh:    refresh,
				Logger:     c.Logger,
			}
			if configPath != "" {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				opts.Layout = cfg
			}
			return c.runRender(cmd.Context(), args[0], opts, output, interactive, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): drawio (default), json, dot, svg, png (comma-separated)")
	cmd.Flags().StringVarP(&procsStr, "procedures", "p", "", "render only these procedures (comma-separated)")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file with [layout] geometry overrides")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick procedures interactively")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reparse even if the graph is cached")

	return cmd
}

// runRender reads the input, runs the pipeline, and writes each artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, interactive, noCache bool) error {
	raw, err := readInput(input)
	if err != nil {
		return err
	}
	opts.Input = raw

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if interactive {
		g, err := runner.Parse(ctx, opts)
		if err != nil {
			return fmt.Errorf("parse triples: %w", err)
		}
		selected, err := selectProcedures(g)
		if err != nil {
			if err == errAborted {
				printInfo("Aborted")
				return nil
			}
			return err
		}
		opts.Procedures = selected
	}

	spinner := newSpinnerWithContext(ctx, "Building diagram...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, output, input)
	if err != nil {
		return err
	}

	printSuccess("Diagram complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.ProcedureCount, result.Stats.ItemCount, result.Stats.EdgeCount,
		result.CacheInfo.ParseHit && result.CacheInfo.RenderHit)

	if len(opts.Formats) == 1 && opts.Formats[0] == pipeline.FormatDrawio && len(paths) == 1 {
		printNewline()
		printNextStep("Open", "https://app.diagrams.net → File → Open → "+paths[0])
	}

	return nil
}

// readInput reads the triple text from a file, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// writeArtifacts writes each rendered format to disk and returns the paths.
// For a single format the output flag names the file directly; for multiple
// formats it is treated as a base path with per-format extensions.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		path := artifactPath(output, input, format, len(formats) > 1)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactPath derives the output path for one format.
func artifactPath(output, input, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}
	base := output
	if base == "" {
		base = basePath(input)
	}
	return base + "." + format
}

// basePath strips the extension from the input path, mapping stdin to a
// generic name.
func basePath(input string) string {
	if input == "-" {
		return "diagram"
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}
