// Package cli is the arkive command line front-end. Commands are thin
// consumers of the directory services: they set filters, trigger fetches and
// mutations, and render the resulting state.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"arkive/internal/capabilities"
	"arkive/internal/domain"
	"arkive/internal/domain/models"
	"arkive/internal/domain/services"
)

// Session is the part of the session store the commands use
type Session interface {
	Login(ctx context.Context, email, password string) bool
	LastError() string
	Logout(ctx context.Context) error
	Current() (*models.User, bool)
	Scope() []string
	TokenInfo() (*models.TokenInfo, error)
}

// App carries the services and streams every command runs against
type App struct {
	Session      Session
	Folders      services.FolderService
	Documents    services.DocumentService
	Users        services.UserService
	Departments  services.DepartmentService
	Translation  services.TranslationService
	Preview      services.PreviewService
	Capabilities *capabilities.Registry
	Logger       *slog.Logger

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// NewRootCommand builds the command tree
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "arkive",
		Short:         "Arkive document management client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(app.In)
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	root.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newFoldersCommand(app),
		newDocumentsCommand(app),
		newUsersCommand(app),
		newDepartmentsCommand(app),
	)
	return root
}

// requireSession is the PersistentPreRunE of every command that needs a
// logged-in user
func requireSession(app *App) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if _, ok := app.Session.Current(); !ok {
			return errNotLoggedIn
		}
		return nil
	}
}

var errNotLoggedIn = &notLoggedInError{}

type notLoggedInError struct{}

func (e *notLoggedInError) Error() string        { return "not logged in; run \"arkive login\" first" }
func (e *notLoggedInError) Is(target error) bool { return target == domain.ErrNoSession }

// ErrorMessage renders err for the terminal
func ErrorMessage(err error) string {
	if errors.Is(err, errNotLoggedIn) {
		return err.Error()
	}
	// A bare 401 on an authenticated call means the stored token was rejected
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Message == "" && errors.Is(err, domain.ErrUnauthorized) {
		return "session expired; run \"arkive login\" again"
	}
	return domain.UserMessage(err, err.Error())
}
