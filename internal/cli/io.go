package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timeslice/pkg/config"
	tsio "github.com/matzehuels/timeslice/pkg/io"
	"github.com/matzehuels/timeslice/pkg/pipeline"
)

// stdin is read by "import -". Tests swap it.
var stdin = os.Stdin

// exportCommand creates the command that writes a JSON backup.
func (c *CLI) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all days, categories and tasks to a JSON backup",
		Long: `Write all days, categories and tasks to a JSON backup.

Without a file, or with "-", the backup is written to standard output.`,
		Example: `  timeslice export backup.json
  timeslice export | gzip > backup.json.gz`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := firstArg(args)
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				prog := newProgress(c.Logger)
				if path == "" || path == "-" {
					b, err := tsio.Snapshot(cmd.Context(), r.Store)
					if err != nil {
						return err
					}
					return tsio.WriteJSON(b, stdout)
				}
				b, err := tsio.ExportJSON(cmd.Context(), r.Store, path)
				if err != nil {
					return err
				}
				prog.done(fmt.Sprintf("Exported %d days", len(b.Days)))
				printSuccess("Exported %d days, %d categories, %d tasks", len(b.Days), len(b.Categories), len(b.Tasks))
				printFile(path)
				return nil
			})
		},
	}
}

// importCommand creates the command that restores a JSON backup.
func (c *CLI) importCommand() *cobra.Command {
	var opts tsio.RestoreOptions

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Restore a JSON backup",
		Long: `Restore a JSON backup written by export, or a bare day file mapping
dates to {category: minutes} objects.

Days in the backup overwrite stored days with the same date. With --replace,
stored days missing from the backup are deleted. Tasks already present in
the same quadrant are not duplicated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := firstArg(args)
			var (
				b   *tsio.Backup
				err error
			)
			if path == "" || path == "-" {
				b, err = tsio.ReadJSON(stdin)
			} else {
				b, err = tsio.ImportJSON(path)
			}
			if err != nil {
				return err
			}
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				ctx := cmd.Context()
				prog := newProgress(c.Logger)

				// Restore writes to the store directly, so every day it may
				// touch needs its cached aggregates dropped afterwards.
				touched := make([]string, 0, len(b.Days))
				if opts.Replace {
					keys, err := r.Store.Keys(ctx)
					if err != nil {
						return err
					}
					touched = append(touched, keys...)
				}
				for k := range b.Days {
					touched = append(touched, k)
				}

				res, err := tsio.Restore(ctx, r.Store, b, opts)
				for _, k := range touched {
					r.Invalidate(ctx, k)
				}
				if err != nil {
					return err
				}
				prog.done(fmt.Sprintf("Imported %d days", res.Days))

				printSuccess("Imported %d days", res.Days)
				if res.Deleted > 0 {
					printDetail("%d days deleted", res.Deleted)
				}
				if res.Categories > 0 {
					printDetail("%d categories", res.Categories)
				}
				if res.Tasks > 0 {
					printDetail("%d tasks added", res.Tasks)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "delete stored days missing from the backup")
	cmd.Flags().BoolVar(&opts.SkipTasks, "skip-tasks", false, "do not import tasks")

	return cmd
}
