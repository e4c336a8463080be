package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/timeslice/pkg/config"
	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/pipeline"
	"github.com/matzehuels/timeslice/pkg/stats"
)

// statsCommand creates the command that prints period totals.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		mode        string
		date        string
		refresh     bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the time spent per category in a period",
		Example: `  timeslice stats
  timeslice stats -m year -d 2023.06.01
  timeslice stats -i`,
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
			p := stats.NewPeriod(m, day)
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				if interactive {
					return c.browse(cmd.Context(), r, p)
				}
				return c.runStats(cmd.Context(), r, p, refresh)
			})
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(pipeline.DefaultMode), "period: day, week, month, year")
	cmd.Flags().StringVarP(&date, "date", "d", "today", "any day inside the period")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached totals")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse periods interactively")

	return cmd
}

func (c *CLI) runStats(ctx context.Context, r *pipeline.Runner, p stats.Period, refresh bool) error {
	rec, hit, err := r.AggregateWithCacheInfo(ctx, p, refresh)
	if err != nil {
		return err
	}
	printPlain(periodHeading(p))
	if rec.Len() == 0 {
		printInfo("No data for this period")
		return nil
	}
	printPlain(recordTable(rec))
	printSummary(rec.Len(), rec.Total(), hit)
	return nil
}

// browse runs the interactive period browser until the user quits.
func (c *CLI) browse(ctx context.Context, r *pipeline.Runner, p stats.Period) error {
	model := newPeriodModel(ctx, r, p, c.now)
	_, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	return err
}

func periodHeading(p stats.Period) string {
	return StyleTitle.Render(p.Label()) + " " + StyleDim.Render(string(p.Mode))
}
