package cli

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"

	"arkive/internal/domain/models"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiDim   = "\x1b[2m"
)

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// painter colours text only when writing to a terminal
type painter struct {
	color bool
}

func newPainter(w io.Writer) painter {
	return painter{color: isTerminal(w) && os.Getenv("NO_COLOR") == ""}
}

func (p painter) paint(code, s string) string {
	if !p.color || s == "" {
		return s
	}
	return code + s + ansiReset
}

func (p painter) bold(s string) string  { return p.paint(ansiBold, s) }
func (p painter) red(s string) string   { return p.paint(ansiRed, s) }
func (p painter) green(s string) string { return p.paint(ansiGreen, s) }
func (p painter) dim(s string) string   { return p.paint(ansiDim, s) }

func (p painter) status(s string) string {
	switch s {
	case models.StatusActive:
		return p.green(s)
	case models.StatusInactive:
		return p.red(s)
	}
	return s
}

func newTable(p painter, headers ...any) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 50
	table.Wrap = true
	if len(headers) == 0 {
		return table
	}
	for i := range headers {
		headers[i] = p.bold(fmt.Sprint(headers[i]))
	}
	table.AddRow(headers...)
	return table
}

// printList renders a list snapshot's status line, then the table when there
// are rows
func printList[T any](w io.Writer, p painter, noun string, list models.List[T], table fmt.Stringer) {
	if list.Status == models.StatusError {
		fmt.Fprintln(w, p.red("error: "+list.Error))
		if len(list.Items) > 0 {
			fmt.Fprintln(w, p.dim("showing the last loaded "+noun))
		}
	}
	if len(list.Items) == 0 {
		if list.Status != models.StatusError {
			fmt.Fprintf(w, "No %s.\n", noun)
		}
		return
	}
	fmt.Fprintln(w, table)
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func folderRef(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func documentTable(p painter, docs []models.Document) *uitable.Table {
	table := newTable(p, "ID", "TITLE", "OWNER", "DEPARTMENT", "FOLDER", "TYPE", "UPDATED")
	for _, d := range docs {
		updated := d.UpdatedAt
		if updated.IsZero() {
			updated = d.CreatedAt
		}
		table.AddRow(d.ID, d.Title, orDash(d.Owner), d.Department, folderRef(d.FolderID), orDash(d.Extension()), ago(updated))
	}
	return table
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printBatch(w io.Writer, p painter, verb string, result *models.BatchResult, keyName string) {
	if result == nil {
		return
	}
	if len(result.Succeeded) > 0 {
		ids := make([]string, 0, len(result.Succeeded))
		for _, id := range result.Succeeded {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		fmt.Fprintf(w, "%s %d: %s\n", verb, len(result.Succeeded), p.green(strings.Join(ids, ", ")))
	}
	if len(result.Failed) > 0 {
		table := newTable(p, strings.ToUpper(keyName), "ERROR")
		for _, key := range slices.Sorted(maps.Keys(result.Failed)) {
			table.AddRow(key, p.red(ErrorMessage(result.Failed[key])))
		}
		fmt.Fprintf(w, "Failed %d:\n%s\n", len(result.Failed), table)
	}
}
