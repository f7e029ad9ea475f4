package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Novaotic/craft-compass/internal/search"
	"github.com/Novaotic/craft-compass/pkg/types"
)

// projectDetail is a project with its tags and materials.
type projectDetail struct {
	*types.Project
	Tags      []*types.Tag           `json:"tags"`
	Materials []*types.MaterialUsage `json:"materials"`
}

func (a *app) newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects and the materials they use",
	}
	cmd.AddCommand(
		a.newProjectAddCmd(),
		a.newProjectGetCmd(),
		a.newProjectListCmd(),
		a.newProjectUpdateCmd(),
		a.newProjectDeleteCmd(),
		a.newProjectTagCmd(),
		a.newProjectUntagCmd(),
		a.newMaterialCmd(),
	)
	return cmd
}

func printProjects(w io.Writer, projects []*types.Project) {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{strconv.FormatInt(p.ID, 10), p.Name, orDash(p.DateCreated), orDash(p.Description)})
	}
	table(w, "ID\tNAME\tCREATED\tDESCRIPTION", rows)
}

func printMaterials(w io.Writer, usage []*types.MaterialUsage) {
	rows := make([][]string, 0, len(usage))
	for _, u := range usage {
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10), strconv.FormatInt(u.ItemID, 10), u.ItemName,
			formatAmount(u.QuantityUsed), orDash(u.Unit),
		})
	}
	table(w, "ID\tITEM\tNAME\tUSED\tUNIT", rows)
}

func printProject(w io.Writer, d projectDetail) {
	fmt.Fprintf(w, "ID:          %d\n", d.ID)
	fmt.Fprintf(w, "Name:        %s\n", d.Name)
	fmt.Fprintf(w, "Description: %s\n", orDash(d.Description))
	fmt.Fprintf(w, "Created:     %s\n", orDash(d.DateCreated))
	fmt.Fprintf(w, "Tags:        %s\n", tagNames(d.Tags))
	if len(d.Materials) > 0 {
		fmt.Fprintln(w, "Materials:")
		printMaterials(w, d.Materials)
	}
}

func registerProjectFlags(cmd *cobra.Command, p *types.Project) {
	f := cmd.Flags()
	f.StringVar(&p.Name, "name", "", "project name")
	f.StringVar(&p.Description, "description", "", "description")
	f.StringVar(&p.DateCreated, "date", "", "creation date (YYYY-MM-DD, default today)")
}

func (a *app) newProjectAddCmd() *cobra.Command {
	var p types.Project
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a project",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			id, err := inv.Projects().Create(&p)
			if err != nil {
				return err
			}
			created, err := inv.Projects().Get(id)
			if err != nil {
				return err
			}
			return a.emit(cmd, created, func(w io.Writer) {
				fmt.Fprintf(w, "Created project %d: %s\n", id, created.Name)
			})
		}),
	}
	registerProjectFlags(cmd, &p)
	return cmd
}

func projectDetails(store types.Store, id int64) (projectDetail, error) {
	p, err := store.Projects().Get(id)
	if err != nil {
		return projectDetail{}, err
	}
	tags, err := store.Tags().ForProject(id)
	if err != nil {
		return projectDetail{}, err
	}
	usage, err := store.Materials().ForProject(id)
	if err != nil {
		return projectDetail{}, err
	}
	return projectDetail{Project: p, Tags: tags, Materials: usage}, nil
}

func (a *app) newProjectGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a project with its tags and materials",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			d, err := projectDetails(inv, id)
			if err != nil {
				return err
			}
			return a.emit(cmd, d, func(w io.Writer) { printProject(w, d) })
		}),
	}
}

func (a *app) newProjectListCmd() *cobra.Command {
	var q search.ProjectQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			projects, err := search.New(inv).Projects(q)
			if err != nil {
				return err
			}
			return a.emit(cmd, projects, func(w io.Writer) { printProjects(w, projects) })
		}),
	}
	f := cmd.Flags()
	f.StringVar(&q.Name, "text", "", "name or description contains")
	f.StringVar(&q.DateFrom, "from", "", "created on or after (YYYY-MM-DD)")
	f.StringVar(&q.DateTo, "to", "", "created on or before (YYYY-MM-DD)")
	f.IntVar(&q.MinMaterials, "min-materials", 0, "at least this many materials")
	f.StringVar(&q.Tag, "tag", "", "tag name")
	f.BoolVar(&q.SortByName, "sort-name", false, "sort by name instead of insertion order")
	return cmd
}

func (a *app) newProjectUpdateCmd() *cobra.Command {
	var p types.Project
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change project fields; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			err = inv.Projects().Update(id, types.ProjectUpdate{
				Name:        changed(cmd, "name", &p.Name),
				Description: changed(cmd, "description", &p.Description),
				DateCreated: changed(cmd, "date", &p.DateCreated),
			})
			if err != nil {
				return err
			}
			updated, err := inv.Projects().Get(id)
			if err != nil {
				return err
			}
			return a.emit(cmd, updated, func(w io.Writer) {
				fmt.Fprintf(w, "Updated project %d\n", id)
			})
		}),
	}
	registerProjectFlags(cmd, &p)
	return cmd
}

func (a *app) newProjectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project with its materials and tags",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			if err := inv.Projects().Delete(id); err != nil {
				return err
			}
			return a.emit(cmd, map[string]int64{"deleted": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted project %d\n", id)
			})
		}),
	}
}

func (a *app) newProjectTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <project-id> <tag>...",
		Short: "Attach tags to a project, creating unknown tags",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return a.retagProject(cmd, args, true)
		}),
	}
}

func (a *app) newProjectUntagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untag <project-id> <tag>...",
		Short: "Detach tags from a project",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return a.retagProject(cmd, args, false)
		}),
	}
}

// retagProject adds (or removes) the named tags on the project in args[0].
func (a *app) retagProject(cmd *cobra.Command, args []string, add bool) error {
	id, err := parseID("project", args[0])
	if err != nil {
		return err
	}
	inv, err := a.inventory()
	if err != nil {
		return err
	}
	var tags []*types.Tag
	err = inv.WithTx(func(tx types.Store) error {
		for _, name := range args[1:] {
			tagID, err := resolveTag(tx, name, add)
			if err != nil {
				return err
			}
			if add {
				err = tx.Tags().AddToProject(id, tagID)
			} else {
				err = tx.Tags().RemoveFromProject(id, tagID)
			}
			if err != nil {
				return err
			}
		}
		var err error
		tags, err = tx.Tags().ForProject(id)
		return err
	})
	if err != nil {
		return err
	}
	return a.emit(cmd, tags, func(w io.Writer) {
		fmt.Fprintf(w, "Project %d tags: %s\n", id, tagNames(tags))
	})
}

func (a *app) newMaterialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "material",
		Short: "Record the items a project consumes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <project-id> <item-id> <quantity>",
			Short: "Assign an item to a project",
			Long: "Assign an item to a project. The quantity used may not exceed the\n" +
				"item's quantity on hand; the stock itself is not reduced.",
			Args: cobra.ExactArgs(3),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				projectID, err := parseID("project", args[0])
				if err != nil {
					return err
				}
				itemID, err := parseID("item", args[1])
				if err != nil {
					return err
				}
				qty, err := parseAmount("quantity", args[2])
				if err != nil {
					return err
				}
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				m := &types.ProjectMaterial{ProjectID: projectID, ItemID: itemID, QuantityUsed: qty}
				id, err := inv.Materials().Create(m)
				if err != nil {
					return err
				}
				m.ID = id
				return a.emit(cmd, m, func(w io.Writer) {
					fmt.Fprintf(w, "Added material %d: item %d x %s to project %d\n", id, itemID, formatAmount(qty), projectID)
				})
			}),
		},
		&cobra.Command{
			Use:   "list <project-id>",
			Short: "List a project's materials",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				projectID, err := parseID("project", args[0])
				if err != nil {
					return err
				}
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				usage, err := inv.Materials().ForProject(projectID)
				if err != nil {
					return err
				}
				return a.emit(cmd, usage, func(w io.Writer) { printMaterials(w, usage) })
			}),
		},
		&cobra.Command{
			Use:   "update <material-id> <quantity>",
			Short: "Change the quantity a material row uses",
			Args:  cobra.ExactArgs(2),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				id, err := parseID("material", args[0])
				if err != nil {
					return err
				}
				qty, err := parseAmount("quantity", args[1])
				if err != nil {
					return err
				}
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				if err := inv.Materials().Update(id, types.MaterialUpdate{QuantityUsed: &qty}); err != nil {
					return err
				}
				m, err := inv.Materials().Get(id)
				if err != nil {
					return err
				}
				return a.emit(cmd, m, func(w io.Writer) {
					fmt.Fprintf(w, "Updated material %d\n", id)
				})
			}),
		},
		&cobra.Command{
			Use:   "remove <material-id>",
			Short: "Remove a material row from its project",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				id, err := parseID("material", args[0])
				if err != nil {
					return err
				}
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				if err := inv.Materials().Delete(id); err != nil {
					return err
				}
				return a.emit(cmd, map[string]int64{"deleted": id}, func(w io.Writer) {
					fmt.Fprintf(w, "Removed material %d\n", id)
				})
			}),
		},
	)
	return cmd
}
