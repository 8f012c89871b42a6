package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/navgraph/pkg/errors"
	"github.com/matzehuels/navgraph/pkg/graph"
	"github.com/matzehuels/navgraph/pkg/screen"
	"github.com/matzehuels/navgraph/pkg/script"
)

// runCommand creates the run command for executing a navigation script.
func (c *CLI) runCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "run <script.toml>",
		Short: "Execute a navigation script against the recording host",
		Long: `Execute a navigation script against the recording host.

Every step is flushed before the next one starts. The command prints the
outcome of each step, the host calls in execution order, and the final view
hierarchy. A step answered with NO_CHANGE never stops the script.`,
		Example: `  navgraph run examples/settings.toml
  navgraph run examples/settings.toml -o graph.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScript(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the final graph as JSON ('-' for stdout)")

	return cmd
}

func (c *CLI) runScript(ctx context.Context, path, output string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	s, err := script.Load(path)
	if err != nil {
		return err
	}

	sess, err := c.newSession(ctx, cfg, rootScreen(s), sessionOptions{})
	if err != nil {
		return err
	}
	defer sess.close()

	prog := newProgress(c.Logger)
	results, runErr := script.Run(ctx, sess.nav, sess.names, s)
	prog.done("script finished", "ran", len(results), "steps", len(s.Steps), "session", sess.nav.Session())

	printResults(results)
	printNewline()

	printInfo("Host calls")
	for _, call := range sess.rec.Calls() {
		printDetail("%s", sess.describeCall(call))
	}
	printNewline()

	printInfo("View hierarchy")
	for _, line := range strings.Split(strings.TrimRight(sess.sim.Describe(), "\n"), "\n") {
		printDetail("%s", line)
	}
	snap := sess.nav.Snapshot()
	g := graph.FromStore(snap)
	printStats(len(g.Nodes), len(g.Edges), int(sess.nav.Stats().Failed))

	if err := writeGraph(snap, output); err != nil {
		return err
	}
	return runErr
}

// printResults prints one line per executed step.
func printResults(results []script.Result) {
	for _, r := range results {
		label := fmt.Sprintf("%s %s", StyleNumber.Render(fmt.Sprintf("%2d", r.Index)), r.Step)
		switch {
		case r.OK():
			printSuccess("%s", label)
		case errors.IsNoChange(r.Err):
			printWarning("%s: no change", label)
		case r.Err != nil:
			printError("%s: %s", label, errors.UserMessage(r.Err))
		default:
			printError("%s: %s", label, r.HostErr)
		}
	}
}

// writeGraph writes the graph JSON to output, or stdout for "-".
func writeGraph(snap *screen.Store, output string) error {
	switch output {
	case "":
		return nil
	case "-":
		return graph.WriteGraph(snap, os.Stdout)
	}
	if err := graph.WriteGraphFile(snap, output); err != nil {
		return err
	}
	printFile(output)
	return nil
}
