package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"arkive/internal/capabilities"
	"arkive/internal/config"
	"arkive/internal/domain"
	"arkive/internal/domain/models"
)

func newDocumentsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "documents",
		Aliases:           []string{"docs", "document"},
		Short:             "Browse and manage documents",
		PersistentPreRunE: requireSession(app),
	}
	cmd.AddCommand(
		newDocumentsListCommand(app),
		newDocumentsFolderCommand(app),
		newDocumentsDepartmentCommand(app),
		newDocumentsUploadCommand(app),
		newDocumentsEditCommand(app),
		newDocumentsDeleteCommand(app),
		newDocumentsDownloadCommand(app),
		newDocumentsPreviewCommand(app),
		newDocumentsTranslateCommand(app),
		newDocumentsFormatsCommand(app),
	)
	return cmd
}

func applyDocumentFilters(app *App, search, department string) error {
	app.Documents.SetSearchKey(search)
	return app.Documents.SetFilters(department)
}

func newDocumentsListCommand(app *App) *cobra.Command {
	var search, department string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the unfiled documents of your departments",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyDocumentFilters(app, search, department); err != nil {
				return err
			}
			err := app.Documents.FetchDocuments(cmd.Context())
			list := app.Documents.Documents()
			w := cmd.OutOrStdout()
			p := newPainter(w)
			printList(w, p, "documents", list, documentTable(p, list.Items))
			return err
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "title or owner contains")
	cmd.Flags().StringVarP(&department, "department", "d", "", "only this department")
	return cmd
}

func newDocumentsFolderCommand(app *App) *cobra.Command {
	var search, department string

	cmd := &cobra.Command{
		Use:   "folder <folder-id>",
		Short: "List the documents of one folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := applyDocumentFilters(app, search, department); err != nil {
				return err
			}
			fetchErr := app.Documents.FetchFolderDocuments(cmd.Context(), id)
			_, list, _ := app.Documents.FolderDocuments()
			w := cmd.OutOrStdout()
			p := newPainter(w)
			printList(w, p, "documents in this folder", list, documentTable(p, list.Items))
			return fetchErr
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "title or owner contains")
	cmd.Flags().StringVarP(&department, "department", "d", "", "only this department")
	return cmd
}

func newDocumentsDepartmentCommand(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "department <name>",
		Short: "List every document of one of your departments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Documents.SetSearchKey(search)
			docs, err := app.Documents.ListByDepartment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			p := newPainter(w)
			printList(w, p, "documents", models.List[models.Document]{Items: docs, Status: models.StatusReady}, documentTable(p, docs))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "title or owner contains")
	return cmd
}

func newDocumentsUploadCommand(app *App) *cobra.Command {
	var title, department, category string
	var folderID int64

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file as a new document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if info.IsDir() {
				return domain.NewValidationError("%s is a directory", path)
			}
			if info.Size() > config.MaxUploadSize {
				return domain.NewValidationError("%s is %s; the limit is %s",
					filepath.Base(path), humanize.IBytes(uint64(info.Size())), humanize.IBytes(config.MaxUploadSize))
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			if department == "" {
				if user, ok := app.Session.Current(); ok {
					department = user.PrimaryDepartment()
				}
			}
			req := &models.UploadDocumentRequest{
				FileName:   filepath.Base(path),
				File:       f,
				Title:      title,
				Department: department,
				Category:   category,
			}
			if folderID > 0 {
				req.FolderID = &folderID
			}

			doc, err := app.Documents.UploadDocument(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %q as document %d (%s)\n", doc.Title, doc.ID, humanize.IBytes(uint64(info.Size())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "document title (defaults to the file name)")
	cmd.Flags().StringVarP(&department, "department", "d", "", "owning department (defaults to your primary department)")
	cmd.Flags().StringVar(&category, "category", "", "document category")
	cmd.Flags().Int64VarP(&folderID, "folder", "f", 0, "file the document into this folder")
	return cmd
}

func newDocumentsEditCommand(app *App) *cobra.Command {
	var title, department, category string
	var folderID int64
	var unfile bool

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a document's title, department, category or folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			req := &models.UpdateDocumentRequest{}
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("department") {
				req.Department = &department
			}
			if flags.Changed("category") {
				req.Category = &category
			}
			switch {
			case unfile && flags.Changed("folder"):
				return domain.NewValidationError("--folder and --unfile are mutually exclusive")
			case unfile:
				req.FolderID = models.Unfile()
			case flags.Changed("folder"):
				req.FolderID = models.MoveToFolder(folderID)
			}
			if req.Title == nil && req.Department == nil && req.Category == nil && !req.FolderID.Present {
				return domain.NewValidationError("nothing to change")
			}

			doc, err := app.Documents.UpdateDocument(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated document %d %q (folder %s)\n", doc.ID, doc.Title, folderRef(doc.FolderID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&department, "department", "d", "", "new department")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().Int64VarP(&folderID, "folder", "f", 0, "move into this folder")
	cmd.Flags().BoolVar(&unfile, "unfile", false, "take the document out of its folder")
	return cmd
}

func newDocumentsDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Documents.DeleteDocument(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted document %d\n", id)
			return nil
		},
	}
}

func newDocumentsDownloadCommand(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Save a document's file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			doc, err := app.Documents.GetDocument(cmd.Context(), id)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := app.Preview.Download(cmd.Context(), doc, cmd.OutOrStdout())
				return err
			}
			if output == "" {
				output = doc.FileName()
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			n, err := app.Preview.Download(cmd.Context(), doc, f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				os.Remove(output)
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s (%s)\n", output, humanize.IBytes(uint64(n)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file, - for stdout (defaults to the stored file name)")
	return cmd
}

func newDocumentsPreviewCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <id>",
		Short: "Show a document's content in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			doc, err := app.Documents.GetDocument(cmd.Context(), id)
			if err != nil {
				return err
			}

			preview := app.Preview.Preview(cmd.Context(), doc)
			w := cmd.OutOrStdout()
			p := newPainter(w)
			fmt.Fprintf(w, "%s %s\n\n", p.bold(doc.Title), p.dim("["+preview.Viewer+"]"))

			switch {
			case preview.Err != nil:
				fmt.Fprintln(w, p.red("Preview unavailable: "+preview.Err.Error()))
				fmt.Fprintf(w, "Open directly: %s\n", preview.FallbackURL)
			case preview.Rows != nil:
				table := newTable(p)
				for _, row := range preview.Rows {
					cells := make([]any, len(row))
					for i, c := range row {
						cells[i] = c
					}
					table.AddRow(cells...)
				}
				fmt.Fprintln(w, table)
			case preview.External():
				fmt.Fprintf(w, "This %s file opens outside the terminal: %s\n", preview.Viewer, preview.FallbackURL)
			default:
				fmt.Fprintln(w, strings.TrimRight(preview.Text, "\n"))
			}
			return nil
		},
	}
}

func newDocumentsTranslateCommand(app *App) *cobra.Command {
	var language string
	var apply bool

	cmd := &cobra.Command{
		Use:   "translate <id>",
		Short: "Translate a document title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			doc, err := app.Documents.GetDocument(cmd.Context(), id)
			if err != nil {
				return err
			}

			tr, err := app.Translation.Translate(cmd.Context(), doc.Title, language)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%s) -> %s (%s)\n", doc.Title, orDash(tr.OriginalLanguage), tr.TranslatedTitle, tr.TargetLanguage)

			if apply {
				if _, err := app.Translation.ApplyTranslation(cmd.Context(), id, tr.TranslatedTitle); err != nil {
					return err
				}
				fmt.Fprintf(w, "Renamed document %d\n", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "to", "l", "English", "target language")
	cmd.Flags().BoolVar(&apply, "apply", false, "store the translation as the new title")
	return cmd
}

func newDocumentsFormatsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the file types preview understands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			p := newPainter(w)
			table := newTable(p, "EXTENSION", "VIEWER", "IN TERMINAL")
			for _, ext := range app.Capabilities.Extensions() {
				rule := app.Capabilities.ViewerFor(ext)
				inline := "no"
				if rule.Inline {
					inline = p.green("yes")
				}
				table.AddRow("."+ext, string(rule.Viewer), inline)
			}
			fmt.Fprintln(w, table)
			fmt.Fprintln(w, p.dim("other types are "+string(capabilities.ViewerUnsupported)))
			return nil
		},
	}
}
