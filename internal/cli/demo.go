package cli

import (
	"context"
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/navgraph/pkg/host"
	"github.com/matzehuels/navgraph/pkg/script"
	"github.com/matzehuels/navgraph/pkg/tui"
)

// demoRoot is the root screen of a demo started without a script.
const demoRoot = "home"

// demoCommand creates the demo command, an interactive terminal host.
func (c *CLI) demoCommand() *cobra.Command {
	var animation time.Duration

	cmd := &cobra.Command{
		Use:   "demo [script.toml]",
		Short: "Drive the navigator from an interactive terminal host",
		Long: `Start an interactive terminal host. Keys push stack, modal and embedded
screens from the top of the visible path, pop it, or rewind to the root.

With a script, its steps are replayed first (honouring step_delay) and the
session stays interactive afterwards. Animated transitions complete after
--animation, so queued jobs can be watched as they run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return c.demo(cmd.Context(), path, animation)
		},
	}

	cmd.Flags().DurationVar(&animation, "animation", tui.DefaultAnimation, "duration of animated transitions")

	return cmd
}

func (c *CLI) demo(ctx context.Context, path string, animation time.Duration) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	var s *script.Script
	root := &host.Screen{Name: demoRoot, Regions: []int{tui.DemoSlot}}
	if path != "" {
		if s, err = script.Load(path); err != nil {
			return err
		}
		root = rootScreen(s)
	}

	// Log lines would tear the alternate screen apart.
	quiet := newLogger(io.Discard, c.Logger.GetLevel())

	disp := tui.NewDispatcher()
	var th *tui.Host
	sess, err := c.newSession(ctx, cfg, root, sessionOptions{
		wrap: func(sim *host.Simulator) host.Host {
			th = tui.NewHost(sim, animation)
			return th
		},
		dispatcher: disp,
		logger:     quiet,
	})
	if err != nil {
		return err
	}
	defer sess.close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.NewModel(runCtx, sess.nav, th, disp), tea.WithAltScreen(), tea.WithContext(runCtx))
	disp.Attach(p)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer disp.Stop()
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	})
	if s != nil {
		g.Go(func() error {
			// Failures are shown in the terminal, not returned.
			_ = tui.RunScript(gctx, p, sess.nav, th, s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats := sess.nav.Stats()
	printSuccess("Demo finished: %d transitions, %d failed", stats.Completed, stats.Failed)
	return nil
}
