package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Novaotic/craft-compass/pkg/types"
)

func (a *app) newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags shared by items and projects",
	}
	cmd.AddCommand(
		a.newTagAddCmd(),
		a.newTagGetCmd(),
		a.newTagListCmd(),
		a.newTagUpdateCmd(),
		a.newTagDeleteCmd(),
		a.newTagItemsCmd(),
		a.newTagProjectsCmd(),
	)
	return cmd
}

func printTags(w io.Writer, tags []*types.Tag) {
	rows := make([][]string, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, []string{strconv.FormatInt(t.ID, 10), t.Name, orDash(t.Color)})
	}
	table(w, "ID\tNAME\tCOLOR", rows)
}

// lookupTag accepts a numeric ID or a tag name.
func lookupTag(store types.Store, arg string) (*types.Tag, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return store.Tags().Get(id)
	}
	return store.Tags().GetByName(arg)
}

func (a *app) newTagAddCmd() *cobra.Command {
	var t types.Tag
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a tag",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			id, err := inv.Tags().Create(&t)
			if err != nil {
				return err
			}
			t.ID = id
			return a.emit(cmd, &t, func(w io.Writer) {
				fmt.Fprintf(w, "Created tag %d: %s\n", id, t.Name)
			})
		}),
	}
	cmd.Flags().StringVar(&t.Name, "name", "", "tag name (required, unique)")
	cmd.Flags().StringVar(&t.Color, "color", "", "display color")
	return cmd
}

func (a *app) newTagGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id|name>",
		Short: "Show a tag",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			t, err := lookupTag(inv, args[0])
			if err != nil {
				return err
			}
			return a.emit(cmd, t, func(w io.Writer) { printTags(w, []*types.Tag{t}) })
		}),
	}
}

func (a *app) newTagListCmd() *cobra.Command {
	var filter types.TagFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			tags, err := inv.Tags().List(filter)
			if err != nil {
				return err
			}
			return a.emit(cmd, tags, func(w io.Writer) { printTags(w, tags) })
		}),
	}
	cmd.Flags().BoolVar(&filter.SortByName, "sort-name", false, "sort by name instead of insertion order")
	return cmd
}

func (a *app) newTagUpdateCmd() *cobra.Command {
	var t types.Tag
	cmd := &cobra.Command{
		Use:   "update <id|name>",
		Short: "Rename or recolor a tag",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			existing, err := lookupTag(inv, args[0])
			if err != nil {
				return err
			}
			err = inv.Tags().Update(existing.ID, types.TagUpdate{
				Name:  changed(cmd, "name", &t.Name),
				Color: changed(cmd, "color", &t.Color),
			})
			if err != nil {
				return err
			}
			updated, err := inv.Tags().Get(existing.ID)
			if err != nil {
				return err
			}
			return a.emit(cmd, updated, func(w io.Writer) {
				fmt.Fprintf(w, "Updated tag %d\n", updated.ID)
			})
		}),
	}
	cmd.Flags().StringVar(&t.Name, "name", "", "new name")
	cmd.Flags().StringVar(&t.Color, "color", "", "new color")
	return cmd
}

func (a *app) newTagDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a tag and detach it everywhere",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			t, err := lookupTag(inv, args[0])
			if err != nil {
				return err
			}
			if err := inv.Tags().Delete(t.ID); err != nil {
				return err
			}
			return a.emit(cmd, map[string]int64{"deleted": t.ID}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted tag %d: %s\n", t.ID, t.Name)
			})
		}),
	}
}

func (a *app) newTagItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "items <id|name>",
		Short: "List the items carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			t, err := lookupTag(inv, args[0])
			if err != nil {
				return err
			}
			items, err := inv.Tags().ItemsWithTag(t.ID)
			if err != nil {
				return err
			}
			return a.emit(cmd, items, func(w io.Writer) { printItems(w, items) })
		}),
	}
}

func (a *app) newTagProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects <id|name>",
		Short: "List the projects carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			t, err := lookupTag(inv, args[0])
			if err != nil {
				return err
			}
			projects, err := inv.Tags().ProjectsWithTag(t.ID)
			if err != nil {
				return err
			}
			return a.emit(cmd, projects, func(w io.Writer) { printProjects(w, projects) })
		}),
	}
}
