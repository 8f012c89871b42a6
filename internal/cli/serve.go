package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/navgraph/pkg/inspect"
	"github.com/matzehuels/navgraph/pkg/journal"
	"github.com/matzehuels/navgraph/pkg/script"
)

// serveCommand creates the serve command, which runs a script and then
// exposes the resulting navigator over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <script.toml>",
		Short: "Run a navigation script and serve the inspector",
		Long: `Run a navigation script against the recording host, then serve the
navigator over HTTP until interrupted:

  GET /healthz            liveness probe
  GET /graph              graph as JSON
  GET /graph/nodes/{id}   one screen with its outgoing edges
  GET /graph.dot          Graphviz DOT
  GET /graph.svg          rendered SVG
  GET /journal            executed transitions (?all=1 for every session)
  GET /stats              executor and navigation counters`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context(), args[0], addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")

	return cmd
}

func (c *CLI) serve(ctx context.Context, path, addr string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Inspect.Addr
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

	results, err := script.Run(ctx, sess.nav, sess.names, s)
	if err != nil {
		loggerFromContext(ctx).Warn("script stopped early", "err", err)
	}
	printResults(results)
	printNewline()

	srv := inspect.New(sess.nav,
		inspect.WithJournal(sess.journal),
		inspect.WithCounters(sess.counters),
		inspect.WithLogger(c.Logger),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		c.Logger.Info("shutting down", "session", sess.nav.Session())
		return nil
	})

	printSuccess("Serving session %s", StyleHighlight.Render(sess.nav.Session()))
	printKeyValue("address", addr)
	printKeyValue("journal", journal.Describe(cfg.Journal))
	printNextStep("Inspect the graph", "curl "+StyleLink.Render("http://"+addr+"/graph"))
	return g.Wait()
}
