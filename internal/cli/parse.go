package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/laneflow/laneflow/pkg/pipeline"
	"github.com/laneflow/laneflow/pkg/process"
)

// parseCommand creates the parse command for inspecting the process graph.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "parse [triples.txt]",
		Short: "Reconstruct the process graph and dump it as JSON",
		Long: `Reconstruct the process graph from a triple file and dump it as JSON.

The output lists each procedure with its items in first-seen order,
including stakeholders, ordering edges, and assigned levels. Use "-" to
read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), args[0], output, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reparse even if the graph is cached")

	return cmd
}

func (c *CLI) runParse(ctx context.Context, input, output string, noCache, refresh bool) error {
	raw, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, cacheHit, err := runner.ParseWithCacheInfo(ctx, pipeline.Options{
		Input:   raw,
		Refresh: refresh,
		Logger:  c.Logger,
	})
	if err != nil {
		return fmt.Errorf("parse triples: %w", err)
	}

	// Assign levels so the dump carries the same ranks the layout would use.
	for _, p := range g.Procedures() {
		process.AssignLevels(p)
	}

	if output == "" {
		return process.WriteGraph(g, os.Stdout)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := process.WriteGraph(g, f); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}

	printSuccess("Graph written")
	printFile(output)
	printStats(len(g.Procedures()), g.ItemCount(), g.EdgeCount(), cacheHit)
	printNewline()
	printNextStep("Render", "laneflow render "+input)

	return nil
}
