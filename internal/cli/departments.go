package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"arkive/internal/domain/models"
)

func newDepartmentsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "departments",
		Aliases:           []string{"department", "depts"},
		Short:             "List and administer departments",
		PersistentPreRunE: requireSession(app),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List the department catalogue",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				err := app.Departments.FetchDepartments(cmd.Context())
				list := app.Departments.Departments()
				w := cmd.OutOrStdout()
				p := newPainter(w)

				table := newTable(p, "ID", "NAME")
				for _, d := range list.Items {
					table.AddRow(d.ID, d.Name)
				}
				printList(w, p, "departments", list, table)
				return err
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a department",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dept, err := app.Departments.AddDepartment(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added department %d %s\n", dept.ID, dept.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:     "delete <id|name>",
			Aliases: []string{"rm"},
			Short:   "Delete a department",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dept, err := resolveDepartment(cmd, app, args[0])
				if err != nil {
					return err
				}
				if err := app.Departments.DeleteDepartment(cmd.Context(), dept.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted department %d\n", dept.ID)
				return nil
			},
		},
	)
	return cmd
}

// resolveDepartment accepts a numeric id or a catalogue name
func resolveDepartment(cmd *cobra.Command, app *App, arg string) (models.Department, error) {
	if id, err := parseID(arg); err == nil {
		return models.Department{ID: id}, nil
	}
	if err := app.Departments.FetchDepartments(cmd.Context()); err != nil {
		app.Logger.Warn("department catalogue refresh failed", "error", err)
	}
	dept, ok := app.Departments.Lookup(arg)
	if !ok {
		return models.Department{}, fmt.Errorf("unknown department %q", arg)
	}
	return dept, nil
}
