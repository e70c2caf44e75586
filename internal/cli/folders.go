package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"arkive/internal/domain/models"
)

func newFoldersCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "folders",
		Aliases:           []string{"folder"},
		Short:             "Browse and manage department folders",
		PersistentPreRunE: requireSession(app),
	}
	cmd.AddCommand(
		newFoldersListCommand(app),
		newFoldersCreateCommand(app),
		newFoldersEditCommand(app),
		newFoldersDeleteCommand(app),
		newFoldersOpenCommand(app),
	)
	return cmd
}

func folderTable(p painter, folders []models.Folder) fmt.Stringer {
	table := newTable(p, "ID", "TITLE", "DEPARTMENTS", "UPDATED")
	for _, f := range folders {
		updated := f.UpdatedAt
		if updated.IsZero() {
			updated = f.CreatedAt
		}
		table.AddRow(f.ID, f.Title, strings.Join(f.Departments, ", "), ago(updated))
	}
	return table
}

func newFoldersListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the folders of your departments",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.Folders.FetchFolders(cmd.Context())
			list := app.Folders.Folders()
			w := cmd.OutOrStdout()
			p := newPainter(w)
			printList(w, p, "folders", list, folderTable(p, list.Items))
			return err
		},
	}
}

func newFoldersCreateCommand(app *App) *cobra.Command {
	var title string
	var departments []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(departments) == 0 {
				departments = app.Session.Scope()
				if len(departments) > 1 {
					departments = departments[:1]
				}
			}
			folder, err := app.Folders.CreateOrUpdateFolder(cmd.Context(), title, departments)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created folder %d %q (%s)\n", folder.ID, folder.Title, strings.Join(folder.Departments, ", "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "folder title")
	cmd.Flags().StringSliceVarP(&departments, "department", "d", nil, "department (repeatable; defaults to your primary department)")
	return cmd
}

func newFoldersEditCommand(app *App) *cobra.Command {
	var title string
	var departments []string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename a folder or change its departments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Folders.FetchFolders(cmd.Context()); err != nil {
				return err
			}
			if err := app.Folders.BeginEdit(id); err != nil {
				return err
			}
			defer app.Folders.CancelEdit()

			current, _ := app.Folders.Editing()
			if !cmd.Flags().Changed("title") {
				title = current.Title
			}
			if !cmd.Flags().Changed("department") {
				departments = current.Departments
			}

			folder, err := app.Folders.CreateOrUpdateFolder(cmd.Context(), title, departments)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated folder %d %q (%s)\n", folder.ID, folder.Title, strings.Join(folder.Departments, ", "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringSliceVarP(&departments, "department", "d", nil, "new departments (repeatable)")
	return cmd
}

func newFoldersDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a folder",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Folders.DeleteFolder(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted folder %d\n", id)
			return nil
		},
	}
}

func newFoldersOpenCommand(app *App) *cobra.Command {
	var search, department string

	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Show a folder and its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := app.Folders.FetchFolders(ctx); err != nil {
				return err
			}
			if err := app.Folders.NavigateToFolder(id); err != nil {
				return err
			}
			if err := applyDocumentFilters(app, search, department); err != nil {
				return err
			}

			folder, _ := app.Folders.CurrentFolder()
			fetchErr := app.Documents.FetchFolderDocuments(ctx, id)
			_, list, _ := app.Documents.FolderDocuments()

			w := cmd.OutOrStdout()
			p := newPainter(w)
			fmt.Fprintf(w, "%s %s\n\n", p.bold(folder.Title), p.dim("("+strings.Join(folder.Departments, ", ")+")"))
			printList(w, p, "documents in this folder", list, documentTable(p, list.Items))
			return fetchErr
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "title or owner contains")
	cmd.Flags().StringVarP(&department, "department", "d", "", "only this department")
	return cmd
}
