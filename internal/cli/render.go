package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/navgraph/pkg/errors"
	"github.com/matzehuels/navgraph/pkg/render"
	"github.com/matzehuels/navgraph/pkg/script"
)

// renderOptions holds the flags of the render command.
type renderOptions struct {
	formats  string
	output   string
	detailed bool
}

// renderCommand creates the render command for drawing the final graph of a
// navigation script.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <script.toml>",
		Short: "Render the navigation graph a script leaves behind",
		Long: `Run a navigation script against the recording host and render the final
navigation graph. The visible path is highlighted.

Formats: dot, svg, pdf, png. PDF and PNG need rsvg-convert (librsvg).`,
		Example: `  navgraph render examples/settings.toml
  navgraph render examples/settings.toml -f dot,svg -o out/settings
  navgraph render examples/settings.toml -f dot -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.renderScript(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "comma-separated output formats (default svg)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path without extension ('-' writes a single format to stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show screen handles and depths")

	return cmd
}

func (c *CLI) renderScript(ctx context.Context, path string, opts renderOptions) error {
	formats, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}
	if opts.output == "-" && len(formats) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "stdout output takes exactly one format")
	}

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

	if _, err := script.Run(ctx, sess.nav, sess.names, s); err != nil {
		loggerFromContext(ctx).Warn("script stopped early, rendering the graph it reached", "err", err)
	}

	snap := sess.nav.Snapshot()
	ropts := render.Options{Detailed: opts.detailed, Highlight: sess.nav.Path()}

	if opts.output == "-" {
		data, err := render.Render(ctx, snap, formats[0], ropts)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	spinner := newSpinnerWithContext(ctx, "Rendering "+strings.Join(formats, ", ")+"...")
	spinner.Start()
	var paths []string
	for _, format := range formats {
		spinner.SetMessage(fmt.Sprintf("Rendering %d screens as %s...", snap.Len(), format))
		data, err := render.Render(ctx, snap, format, ropts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		out := base + "." + format
		if err := os.WriteFile(out, data, 0o644); err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("write %s: %w", out, err)
		}
		paths = append(paths, out)
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %d screens", snap.Len()))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{render.FormatSVG}, nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if !slices.Contains(render.Formats, f) {
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q (want one of %s)", f, strings.Join(render.Formats, ", "))
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}
