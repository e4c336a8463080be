package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timeslice/pkg/config"
	"github.com/matzehuels/timeslice/pkg/pipeline"
	"github.com/matzehuels/timeslice/pkg/store"
)

// categoriesCommand creates the category management command.
func (c *CLI) categoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage the category list",
	}

	cmd.AddCommand(c.categoriesListCommand())
	cmd.AddCommand(c.categoriesAddCommand())
	cmd.AddCommand(c.categoriesRemoveCommand())
	cmd.AddCommand(c.categoriesResetCommand())

	return cmd
}

func (c *CLI) categoriesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				cats, err := r.Store.Categories(cmd.Context())
				if err != nil {
					return err
				}
				if len(cats) == 0 {
					printInfo("No categories")
					printNextStep("Add one with", appName+" categories add Work")
					return nil
				}
				for i, name := range cats {
					printPlain(StyleDim.Render(fmt.Sprintf("%3d ", i+1)) + StyleValue.Render(name))
				}
				return nil
			})
		},
	}
}

func (c *CLI) categoriesAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add name...",
		Short: "Append categories to the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				cats, err := r.Store.Categories(cmd.Context())
				if err != nil {
					return err
				}
				added := 0
				for _, name := range args {
					if slices.Contains(cats, name) {
						printWarning("%q already exists", name)
						continue
					}
					cats = append(cats, name)
					added++
				}
				if err := r.Store.SetCategories(cmd.Context(), cats); err != nil {
					return err
				}
				printSuccess("Added %d categories", added)
				return nil
			})
		},
	}
}

func (c *CLI) categoriesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove name...",
		Aliases: []string{"rm"},
		Short:   "Remove categories from the list",
		Long: `Remove categories from the list. Time already recorded under them is kept
and still shows up in charts.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				cats, err := r.Store.Categories(cmd.Context())
				if err != nil {
					return err
				}
				removed := 0
				for _, name := range args {
					i := slices.Index(cats, name)
					if i < 0 {
						printWarning("%q not found", name)
						continue
					}
					cats = slices.Delete(cats, i, i+1)
					removed++
				}
				if err := r.Store.SetCategories(cmd.Context(), cats); err != nil {
					return err
				}
				printSuccess("Removed %d categories", removed)
				return nil
			})
		},
	}
}

func (c *CLI) categoriesResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default category list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd.Context(), func(_ *config.Loaded, r *pipeline.Runner) error {
				if err := r.Store.SetCategories(cmd.Context(), slices.Clone(store.DefaultCategories)); err != nil {
					return err
				}
				printSuccess("Restored %d default categories", len(store.DefaultCategories))
				return nil
			})
		},
	}
}
