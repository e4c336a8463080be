package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timeslice/pkg/config"
	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/pipeline"
	"github.com/matzehuels/timeslice/pkg/stats"
)

// chartCommand creates the chart command for rendering a period.
func (c *CLI) chartCommand() *cobra.Command {
	var (
		mode       string
		date       string
		formatsStr string
		output     string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render a donut chart of a period",
		Long: `Render a donut chart of the time recorded in a day, week, month or year.

Weeks run Monday to Sunday. Files are named after the period unless --output
is given; with several formats, --output is used as the base path.

Rendered charts are cached; writes through timeslice invalidate them.`,
		Example: `  timeslice chart
  timeslice chart -m month -d 2024.03.01 -f svg,png -o march`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := stats.ParseMode(mode)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidMode, "%s", err.Error())
			}
			day, err := c.parseDay(date)
			if err != nil {
				return err
			}
			opts.Mode = m
			opts.Date = day
			opts.Formats = parseFormats(formatsStr)
			if err := errors.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.withRunner(cmd.Context(), func(cfg *config.Loaded, r *pipeline.Runner) error {
				chartDefaults(&opts, cfg.Chart)
				return c.runChart(cmd.Context(), r, opts, output)
			})
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(pipeline.DefaultMode), "period: day, week, month, year")
	cmd.Flags().StringVarP(&date, "date", "d", "today", "any day inside the period")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&opts.Title, "title", "", `chart title (default "<period> time allocation")`)
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG pixel density (default from config)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runChart(ctx context.Context, r *pipeline.Runner, opts pipeline.Options, output string) error {
	spinner := newSpinnerWithContext(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	spinner.Start()
	result, err := r.Chart(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	label := result.Period.Label()
	if result.Empty {
		printWarning("No data for %s, writing an empty chart", label)
	} else {
		printSuccess("Charted %s", label)
		printSummary(result.Record.Len(), result.Record.Total(), result.CacheInfo.StatsHit && result.CacheInfo.RenderHit)
	}

	paths := outputPaths(output, defaultChartBase(result.Period), opts.Formats)
	for _, format := range opts.Formats {
		path := paths[format]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	c.Logger.Debug("chart written",
		"aggregate", result.Stats.AggregateTime,
		"layout", result.Stats.LayoutTime,
		"render", result.Stats.RenderTime)
	return nil
}

// defaultChartBase names chart files after their period.
func defaultChartBase(p stats.Period) string {
	return fmt.Sprintf("%s-%s-%s", appName, p.Mode, stats.DateKey(p.Start))
}

// outputPaths maps each format to a file path. A single format writes to
// output verbatim; otherwise output (minus any known extension) is the base.
func outputPaths(output, fallback string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = fallback
	}
	if ext := strings.TrimPrefix(filepath.Ext(base), "."); slices.Contains(errors.ValidFormats, ext) {
		base = strings.TrimSuffix(base, "."+ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
