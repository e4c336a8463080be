package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/timeslice/pkg/config"
	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/pipeline"
	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store"
)

// logCommand creates the command that records time for a day.
func (c *CLI) logCommand() *cobra.Command {
	var (
		date    string
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "log category=duration...",
		Short: "Record time spent per category",
		Long: `Record time spent per category for a day.

Durations accept hours and minutes ("1h30m", "45m", "2h") or a bare number
of hours ("1.5"). Entries are merged into the day's existing record unless
--replace is given; a zero duration removes the category.`,
		Example: `  timeslice log work=6h "side project=1h30m"
  timeslice log --date yesterday "night sleep=7.5"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := parseEntries(args)
			if err != nil {
				return err
			}
			day, err := c.parseDay(date)
			if err != nil {
				return err
			}
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				return c.runLog(cmd.Context(), r, stats.DateKey(day), entries, replace)
			})
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "today", "day to record (YYYY.MM.DD, today, yesterday)")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the whole day instead of merging")

	return cmd
}

func (c *CLI) runLog(ctx context.Context, r *pipeline.Runner, key string, entries stats.Record, replace bool) error {
	rec := stats.NewRecord()
	if !replace {
		existing, err := r.Store.Get(ctx, key)
		if err != nil && !store.IsNotFound(err) {
			return err
		}
		if err == nil {
			rec = existing
		}
	}
	entries.Each(func(category string, minutes int) {
		if minutes == 0 {
			rec.Delete(category)
			return
		}
		rec.Set(category, minutes)
	})

	if rec.Len() == 0 {
		if err := r.DeleteDay(ctx, key); err != nil {
			return err
		}
		printSuccess("Cleared %s", key)
		return nil
	}
	if err := r.PutDay(ctx, key, rec); err != nil {
		return err
	}
	c.Logger.Debug("day saved", "date", key, "categories", rec.Len(), "minutes", rec.Total())

	printSuccess("Saved %s %s", key, StyleDim.Render("("+formatMinutes(rec.Total())+")"))
	if known, err := r.Store.Categories(ctx); err == nil {
		for _, name := range entries.Categories() {
			if entries.Get(name) > 0 && !slices.Contains(known, name) {
				printWarning("%q is not in your category list", name)
				printNextStep("Add it with", appName+" categories add "+quoteArg(name))
			}
		}
	}
	return nil
}

// parseEntries parses "category=duration" arguments in order.
func parseEntries(args []string) (stats.Record, error) {
	rec := stats.NewRecord()
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !ok || name == "" {
			return stats.Record{}, errors.New(errors.ErrCodeInvalidInput, "invalid entry %q (want category=duration)", arg)
		}
		if err := errors.ValidateCategoryName(name); err != nil {
			return stats.Record{}, err
		}
		minutes := stats.ParseDuration(value)
		if minutes == 0 && !isZero(value) {
			return stats.Record{}, errors.New(errors.ErrCodeInvalidInput, "invalid duration %q for %s", value, name)
		}
		rec.Set(name, minutes)
	}
	return rec, nil
}

// isZero reports whether a duration string explicitly means zero.
func isZero(s string) bool {
	s = strings.NewReplacer("h", "", "m", "", "0", "", ".", "").Replace(strings.ToLower(s))
	return s == ""
}

func quoteArg(s string) string {
	if strings.ContainsAny(s, " \t'\"&") {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return s
}

// showCommand creates the command that prints one day.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [date]",
		Short: "Show the time recorded for a day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := c.parseDay(firstArg(args))
			if err != nil {
				return err
			}
			key := stats.DateKey(day)
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				rec, err := r.Store.Get(cmd.Context(), key)
				if store.IsNotFound(err) {
					printInfo("No data for %s", key)
					printNextStep("Record some with", appName+" log --date "+key+" work=2h")
					return nil
				}
				if err != nil {
					return err
				}
				printPlain(StyleTitle.Render(key) + " " + StyleDim.Render(day.Weekday().String()))
				printPlain(recordTable(rec))
				return nil
			})
		},
	}
}

// deleteCommand creates the command that removes a day.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete date",
		Aliases: []string{"rm"},
		Short:   "Delete the record of a day",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := c.parseDay(args[0])
			if err != nil {
				return err
			}
			key := stats.DateKey(day)
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				if err := r.DeleteDay(cmd.Context(), key); err != nil {
					return err
				}
				printSuccess("Deleted %s", key)
				return nil
			})
		},
	}
}

// headerRow is the row index lipgloss tables pass for the header.
const headerRow = -1

// recordTable renders a record as a table of category, duration, share and
// a proportional bar.
func recordTable(rec stats.Record) string {
	total := rec.Total()
	rows := make([][]string, 0, rec.Len()+1)
	rec.Each(func(name string, minutes int) {
		share := 0.0
		if total > 0 {
			share = float64(minutes) / float64(total)
		}
		rows = append(rows, []string{
			name,
			formatMinutes(minutes),
			formatPercent(share),
			bar(share, 20),
		})
	})
	rows = append(rows, []string{"Total", formatMinutes(total), "", ""})

	last := len(rows) - 1
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Category", "Time", "Share", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == headerRow:
				return base.Inherit(styleHeader)
			case row == last:
				return base.Bold(true)
			case col == 1 || col == 2:
				return base.Align(lipgloss.Right)
			}
			return base
		}).
		Render()
}

func formatPercent(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
