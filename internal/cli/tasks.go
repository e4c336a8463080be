package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timeslice/pkg/config"
	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/pipeline"
	"github.com/matzehuels/timeslice/pkg/store"
)

// shortIDLen is how many ID characters task listings show.
const shortIDLen = 8

// tasksCommand creates the Eisenhower-matrix task command.
func (c *CLI) tasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Manage tasks on the Eisenhower matrix",
		Long: `Manage tasks filed under the four Eisenhower quadrants:

  Q1  urgent and important
  Q2  important, not urgent
  Q3  urgent, not important
  Q4  neither

Tasks are referred to by any unique prefix of their ID.`,
	}

	cmd.AddCommand(c.tasksListCommand())
	cmd.AddCommand(c.tasksAddCommand())
	cmd.AddCommand(c.tasksToggleCommand())
	cmd.AddCommand(c.tasksMoveCommand())
	cmd.AddCommand(c.tasksDeleteCommand())

	return cmd
}

func (c *CLI) tasksListCommand() *cobra.Command {
	var quadrant string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks grouped by quadrant",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var q store.Quadrant
			if quadrant != "" {
				var err error
				if q, err = store.ParseQuadrant(quadrant); err != nil {
					return err
				}
			}
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				tasks, err := r.Store.Tasks(cmd.Context(), q)
				if err != nil {
					return err
				}
				if len(tasks) == 0 {
					printInfo("No tasks")
					printNextStep("Add one with", appName+` tasks add -q 2 "plan next week"`)
					return nil
				}
				printTasks(tasks)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&quadrant, "quadrant", "q", "", "only list one quadrant (1-4)")
	return cmd
}

func printTasks(tasks []store.Task) {
	first := true
	for _, q := range store.Quadrants {
		group := store.FilterTasks(tasks, q)
		if len(group) == 0 {
			continue
		}
		if !first {
			printNewline()
		}
		first = false
		printPlain(StyleTitle.Render(string(q)) + " " + StyleDim.Render(q.Name()))
		for _, t := range group {
			printPlain("  " + formatTask(t))
		}
	}
}

func formatTask(t store.Task) string {
	id := StyleDim.Render(shortID(t.ID))
	if t.Completed {
		return id + " " + styleIconSuccess.Render(iconSuccess) + " " + styleDone.Render(t.Text)
	}
	return id + " " + StyleDim.Render("·") + " " + StyleValue.Render(t.Text)
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func (c *CLI) tasksAddCommand() *cobra.Command {
	var quadrant string

	cmd := &cobra.Command{
		Use:   "add text...",
		Short: "Add a task",
		Example: `  timeslice tasks add -q 1 "file taxes"
  timeslice tasks add read chapter 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := store.ParseQuadrant(quadrant)
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				t, err := r.Store.AddTask(cmd.Context(), text, q)
				if err != nil {
					return err
				}
				printSuccess("Added to %s %s", t.Quadrant, StyleDim.Render(shortID(t.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&quadrant, "quadrant", "q", "2", "quadrant (1-4)")
	return cmd
}

func (c *CLI) tasksToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "toggle id",
		Aliases: []string{"done"},
		Short:   "Toggle whether a task is completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				id, err := resolveTask(cmd.Context(), r.Store, args[0])
				if err != nil {
					return err
				}
				t, err := r.Store.ToggleTask(cmd.Context(), id)
				if err != nil {
					return err
				}
				printPlain(formatTask(t))
				return nil
			})
		},
	}
}

func (c *CLI) tasksMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move id quadrant",
		Short: "Move a task to another quadrant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := store.ParseQuadrant(args[1])
			if err != nil {
				return err
			}
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				id, err := resolveTask(cmd.Context(), r.Store, args[0])
				if err != nil {
					return err
				}
				t, err := r.Store.MoveTask(cmd.Context(), id, q)
				if err != nil {
					return err
				}
				printSuccess("Moved to %s %s", t.Quadrant, StyleDim.Render(t.Quadrant.Name()))
				return nil
			})
		},
	}
}

func (c *CLI) tasksDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete id",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				id, err := resolveTask(cmd.Context(), r.Store, args[0])
				if err != nil {
					return err
				}
				if err := r.Store.DeleteTask(cmd.Context(), id); err != nil {
					return err
				}
				printSuccess("Deleted %s", shortID(id))
				return nil
			})
		},
	}
}

// resolveTask expands an ID prefix to the full ID of exactly one task.
func resolveTask(ctx context.Context, ts store.TaskStore, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "task id cannot be empty")
	}
	tasks, err := ts.Tasks(ctx, "")
	if err != nil {
		return "", err
	}
	var matches []string
	for _, t := range tasks {
		if t.ID == ref {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", store.TaskNotFound(ref)
	case 1:
		return matches[0], nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}
