package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// PasswordEnv lets scripts log in without a prompt
const PasswordEnv = "ARKIVE_PASSWORD"

func newLoginCommand(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(PasswordEnv)
			}
			if email == "" || password == "" {
				var err error
				if email, password, err = promptCredentials(cmd, email, password); err != nil {
					return err
				}
			}

			if !app.Session.Login(cmd.Context(), email, password) {
				return errors.New(app.Session.LastError())
			}

			user, _ := app.Session.Current()
			p := newPainter(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", p.bold(user.Name), user.Role)
			if deps := user.DepartmentNames(); len(deps) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Departments: %s\n", strings.Join(deps, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (or set "+PasswordEnv+")")
	return cmd
}

// readPassword reads a password without echo when in is a terminal. ok is
// false when in is not a terminal and the caller should read a plain line.
var readPassword = func(in io.Reader) (password string, ok bool, err error) {
	f, isFile := in.(*os.File)
	if !isFile || !isatty.IsTerminal(f.Fd()) {
		return "", false, nil
	}
	b, err := term.ReadPassword(int(f.Fd()))
	return string(b), true, err
}

// promptCredentials reads whatever is missing from stdin: the email as a
// line, the password without echo on a terminal and as a line otherwise
func promptCredentials(cmd *cobra.Command, email, password string) (string, string, error) {
	stdin := cmd.InOrStdin()
	stderr := cmd.ErrOrStderr()
	in := bufio.NewReader(stdin)
	readLine := func() (string, error) {
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	var err error
	if email == "" {
		fmt.Fprint(stderr, "Email: ")
		if email, err = readLine(); err != nil {
			return "", "", fmt.Errorf("read email: %w", err)
		}
	}
	if password != "" {
		return email, password, nil
	}

	fmt.Fprint(stderr, "Password: ")
	password, hidden, err := readPassword(stdin)
	if hidden {
		fmt.Fprintln(stderr)
	} else {
		password, err = readLine()
	}
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}
	return email, password, nil
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := app.Session.Current(); !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			err := app.Session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			if err != nil {
				p := newPainter(cmd.ErrOrStderr())
				fmt.Fprintln(cmd.ErrOrStderr(), p.dim("warning: the server was not notified: "+ErrorMessage(err)))
			}
			return nil
		},
	}
}

func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "whoami",
		Short:             "Show the logged-in user",
		Args:              cobra.NoArgs,
		PersistentPreRunE: requireSession(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := app.Session.Current()
			w := cmd.OutOrStdout()
			p := newPainter(w)

			table := newTable(p, "FIELD", "VALUE")
			table.AddRow("Name", user.Name)
			table.AddRow("Email", user.Email)
			table.AddRow("Role", string(user.Role))
			table.AddRow("Departments", orDash(strings.Join(user.DepartmentNames(), ", ")))
			table.AddRow("Scope", orDash(strings.Join(app.Session.Scope(), ", ")))
			if user.Position != "" {
				table.AddRow("Position", user.Position)
			}
			if user.Status != "" {
				table.AddRow("Status", p.status(user.Status))
			}

			if info, err := app.Session.TokenInfo(); err == nil && info.ExpiresAt != nil {
				expiry := humanize.Time(*info.ExpiresAt)
				if info.Expired(time.Now()) {
					expiry = p.red("expired " + expiry)
				}
				table.AddRow("Session", expiry)
			}

			fmt.Fprintln(w, table)
			return nil
		},
	}
}
