package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"arkive/internal/domain/models"
	"arkive/internal/service"
)

func newUsersCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "users",
		Aliases:           []string{"user"},
		Short:             "Administer user accounts",
		PersistentPreRunE: requireSession(app),
	}
	cmd.AddCommand(
		newUsersListCommand(app),
		newUsersShowCommand(app),
		newUsersCreateCommand(app),
		newUsersEditCommand(app),
		newUsersDeleteCommand(app),
		newUsersDeleteManyCommand(app),
		newUsersImportCommand(app),
	)
	return cmd
}

func userTable(p painter, users []models.User) *uitable.Table {
	table := newTable(p, "ID", "NAME", "EMAIL", "ROLE", "DEPARTMENTS", "STATUS")
	for _, u := range users {
		table.AddRow(u.ID, u.Name, u.Email, string(u.Role), orDash(strings.Join(u.DepartmentNames(), ", ")), p.status(orDash(u.Status)))
	}
	return table
}

func newUsersListCommand(app *App) *cobra.Command {
	var page, perPage int
	var filter models.UserFilter

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List one page of users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Users.SetFilter(filter)
			if cmd.Flags().Changed("per-page") {
				app.Users.SetPageSize(perPage)
			}
			app.Users.SetPage(page - 1)

			err := app.Users.FetchUsers(cmd.Context())
			list := app.Users.Users()
			w := cmd.OutOrStdout()
			p := newPainter(w)
			printList(w, p, "users", list, userTable(p, list.Items))

			if list.Status == models.StatusReady {
				index, size := app.Users.Page()
				total := app.Users.TotalUsers()
				pages := max((total+size-1)/size, 1)
				fmt.Fprintln(w, p.dim(fmt.Sprintf("page %d of %d, %d users", index+1, pages, total)))
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&page, "page", 1, "page number")
	flags.IntVar(&perPage, "per-page", 0, "users per page")
	flags.StringVarP(&filter.SearchKey, "search", "s", "", "name or email contains")
	flags.StringVar(&filter.Role, "role", "", "only this role")
	flags.StringVar(&filter.Status, "status", "", "only this status")
	flags.StringVarP(&filter.Department, "department", "d", "", "only this department")
	return cmd
}

func newUsersShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, err := app.Users.GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			p := newPainter(w)
			table := newTable(p, "FIELD", "VALUE")
			table.AddRow("ID", user.ID)
			table.AddRow("Name", user.Name)
			table.AddRow("Email", user.Email)
			table.AddRow("Role", string(user.Role))
			table.AddRow("Departments", orDash(strings.Join(user.DepartmentNames(), ", ")))
			table.AddRow("Phone", orDash(user.Phone))
			table.AddRow("Position", orDash(user.Position))
			table.AddRow("Status", p.status(orDash(user.Status)))
			table.AddRow("Hire date", orDash(user.HireDate))
			fmt.Fprintln(w, table)
			return nil
		},
	}
}

// userForm binds the create and edit flags
type userForm struct {
	name, email, password, role string
	departments                 []string
	phone, position             string
	status, hireDate            string
}

func (f *userForm) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.name, "name", "n", "", "full name")
	flags.StringVarP(&f.email, "email", "e", "", "email address")
	flags.StringVarP(&f.password, "password", "p", "", "password")
	flags.StringVarP(&f.role, "role", "r", "", "Admin or User")
	flags.StringSliceVarP(&f.departments, "department", "d", nil, "department (repeatable; the first is primary)")
	flags.StringVar(&f.phone, "phone", "", "phone number")
	flags.StringVar(&f.position, "position", "", "job position")
	flags.StringVar(&f.status, "status", "", "Active or Inactive")
	flags.StringVar(&f.hireDate, "hire-date", "", "hire date (YYYY-MM-DD)")
}

// request builds a UserRequest from base, overlaying the flags the user set
func (f *userForm) request(cmd *cobra.Command, base models.UserRequest) *models.UserRequest {
	req := base
	changed := cmd.Flags().Changed
	set := func(flag string, dst *string, v string) {
		if changed(flag) {
			*dst = v
		}
	}
	set("name", &req.Name, f.name)
	set("email", &req.Email, f.email)
	set("password", &req.Password, f.password)
	set("phone", &req.Phone, f.phone)
	set("position", &req.Position, f.position)
	set("status", &req.Status, f.status)
	set("hire-date", &req.HireDate, f.hireDate)
	if changed("role") {
		req.Role = models.Role(f.role)
	}
	if changed("department") {
		req.Departments = f.departments
	}
	return &req
}

func newUsersCreateCommand(app *App) *cobra.Command {
	form := &userForm{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base := models.UserRequest{Password: os.Getenv(PasswordEnv)}
			user, err := app.Users.CreateUser(cmd.Context(), form.request(cmd, base))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d %s <%s>\n", user.ID, user.Name, user.Email)
			return nil
		},
	}
	form.bind(cmd)
	return cmd
}

func newUsersEditCommand(app *App) *cobra.Command {
	form := &userForm{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := app.Users.GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}

			base := models.UserRequest{
				Name:        current.Name,
				Email:       current.Email,
				Role:        current.Role,
				Departments: current.DepartmentNames(),
				Phone:       current.Phone,
				Position:    current.Position,
				Status:      current.Status,
				HireDate:    current.HireDate,
			}
			user, err := app.Users.UpdateUser(cmd.Context(), id, form.request(cmd, base))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated user %d %s <%s>\n", user.ID, user.Name, user.Email)
			return nil
		},
	}
	form.bind(cmd)
	return cmd
}

func newUsersDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a user",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Users.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d\n", id)
			return nil
		},
	}
}

func newUsersDeleteManyCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-many <id>...",
		Short: "Delete several users at once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Users.ClearSelection()
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				app.Users.Select(id)
			}

			result, err := app.Users.DeleteSelectedUsers(cmd.Context(), app.Users.Selected())
			w := cmd.OutOrStdout()
			printBatch(w, newPainter(w), "Deleted", result, "id")
			if result != nil && err != nil {
				return fmt.Errorf("%d of %d deletions failed", len(result.Failed), len(result.Failed)+len(result.Succeeded))
			}
			return err
		},
	}
}

func newUsersImportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Create users from a CSV file",
		Long: "Create users from a CSV file with a header row. Columns: " +
			strings.Join(service.ImportColumns, ", ") + ". Separate several departments with \";\".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := app.Users.ImportUsers(cmd.Context(), f)
			w := cmd.OutOrStdout()
			printBatch(w, newPainter(w), "Created", result, "line")
			if result != nil && err != nil {
				return fmt.Errorf("%d rows could not be imported", len(result.Failed))
			}
			return err
		},
	}
}
