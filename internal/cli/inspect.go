package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bramp/objectgraph/pkg/cache"
	"github.com/bramp/objectgraph/pkg/errors"
	"github.com/bramp/objectgraph/pkg/objectgraph"
	"github.com/bramp/objectgraph/pkg/report"
	"github.com/bramp/objectgraph/pkg/source"
)

// Output formats for inspect.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatDOT   = "dot"
	formatSVG   = "svg"
)

var outputFormats = []string{formatTable, formatJSON, formatDOT, formatSVG}

// inspectOpts holds the flags of the inspect command.
type inspectOpts struct {
	format    string
	output    string
	maxNodes  int
	exclude   []string
	static    bool
	transient bool
	detailed  bool
	noCache   bool
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Traverse a JSON or TOML document",
		Long: `Traverse everything reachable from the root of a JSON or TOML document.

Each distinct object is visited once, in breadth-first order. The result
is printed as a table, or written as a JSON report, a Graphviz DOT graph
or an SVG rendering of that graph.`,
		Example: `  objectgraph inspect data.json
  objectgraph inspect config.toml --exclude string,number
  objectgraph inspect data.json --format svg -o graph.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfig(cmd, &opts)
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "output format: "+strings.Join(outputFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", 0, "stop after this many nodes (0 for no limit)")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "skip values of these types: "+strings.Join(source.TypeNames(), ", "))
	cmd.Flags().BoolVar(&opts.static, "static", false, "include static fields")
	cmd.Flags().BoolVar(&opts.transient, "transient", false, "include transient fields")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show declared type, kind and depth in DOT output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// applyConfig fills flags the user did not set from the config file.
func (c *CLI) applyConfig(cmd *cobra.Command, opts *inspectOpts) {
	flags := cmd.Flags()
	if !flags.Changed("max-nodes") {
		opts.maxNodes = c.config.MaxNodes
	}
	if !flags.Changed("exclude") {
		opts.exclude = c.config.Exclude
	}
	if !flags.Changed("static") {
		opts.static = c.config.IncludeStatic
	}
	if !flags.Changed("transient") {
		opts.transient = c.config.IncludeTransient
	}
}

func (c *CLI) runInspect(ctx context.Context, out io.Writer, path string, opts inspectOpts) error {
	if !slices.Contains(outputFormats, opts.format) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want one of %s)", opts.format, strings.Join(outputFormats, ", "))
	}
	excluded, err := source.Types(opts.exclude)
	if err != nil {
		return err
	}

	doc, raw, err := source.Load(path)
	if err != nil {
		return err
	}

	store, err := newCache(opts.noCache)
	if err != nil {
		c.Logger.Warn("cache unavailable", "err", err)
		store = cache.NewNullCache()
	}
	defer store.Close()

	key := cache.ReportKey(cache.Hash(raw), cache.KeyOpts{
		MaxNodes:         opts.maxNodes,
		Exclude:          opts.exclude,
		IncludeStatic:    opts.static,
		IncludeTransient: opts.transient,
	})

	rep, cached := c.cachedReport(ctx, store, key)
	if rep == nil {
		prog := newProgress(c.Logger)
		rep, err = report.Build(doc, objectgraph.Options{
			IncludeStatic:    opts.static,
			IncludeTransient: opts.transient,
			ExcludedTypes:    excluded,
			Logger:           c.Logger,
		}, opts.maxNodes)
		if err != nil {
			return err
		}
		prog.done(fmt.Sprintf("traversed %d nodes", len(rep.Nodes)))

		if data, err := report.Marshal(rep); err == nil {
			if err := store.Set(ctx, key, data, c.config.CacheTTL); err != nil {
				c.Logger.Warn("cache write failed", "err", err)
			}
		}
	}

	return c.writeReport(ctx, out, rep, cached, opts)
}

// cachedReport returns the cached report for key, or nil on a miss.
func (c *CLI) cachedReport(ctx context.Context, store cache.Cache, key string) (*report.Report, bool) {
	data, hit, err := store.Get(ctx, key)
	if err != nil {
		c.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	rep, err := report.Unmarshal(data)
	if err != nil {
		c.Logger.Debug("discarding cached report", "err", err)
		return nil, false
	}
	return rep, true
}

func (c *CLI) writeReport(ctx context.Context, out io.Writer, rep *report.Report, cached bool, opts inspectOpts) error {
	var data []byte
	switch opts.format {
	case formatTable:
		if opts.output == "" {
			printReport(out, rep, cached)
			return nil
		}
		var sb strings.Builder
		printReport(&sb, rep, cached)
		data = []byte(sb.String())
	case formatJSON:
		var err error
		if data, err = report.Marshal(rep); err != nil {
			return err
		}
	case formatDOT:
		data = []byte(report.ToDOT(rep, report.DOTOptions{Detailed: opts.detailed}))
	case formatSVG:
		var err error
		if data, err = report.RenderSVG(ctx, report.ToDOT(rep, report.DOTOptions{Detailed: opts.detailed})); err != nil {
			return err
		}
	}

	if opts.output == "" {
		_, err := out.Write(data)
		return err
	}
	if err := errors.ValidatePath(opts.output); err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", opts.output)
	}
	printSuccess(out, "Wrote %s report", opts.format)
	printFile(out, opts.output)
	return nil
}
