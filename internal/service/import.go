package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"arkive/internal/domain"
	"arkive/internal/domain/models"
)

// importConcurrency bounds the creates in flight during an import
const importConcurrency = 4

// ImportColumns is the CSV header ImportUsers understands. Column order is
// free; name, email and password are required.
var ImportColumns = []string{"name", "email", "phone", "password", "role", "department", "position", "status", "hire_date"}

var requiredImportColumns = []string{"name", "email", "password"}

// importRow is one CSV record and the line it started on
type importRow struct {
	line int64
	req  models.UserRequest
}

// ImportUsers creates one user per CSV row. Invalid rows are rejected
// without a request; valid rows are created concurrently. Failed is keyed by
// CSV line number and Succeeded lists the created user ids.
func (s *userService) ImportUsers(ctx context.Context, r io.Reader) (*models.BatchResult, error) {
	if err := requireAdmin(s.session, "manage users"); err != nil {
		return nil, err
	}

	rows, err := parseUserCSV(r)
	if err != nil {
		return nil, err
	}

	result := &models.BatchResult{Failed: make(map[int64]error)}
	valid := make([]importRow, 0, len(rows))
	for _, row := range rows {
		req, err := s.prepare(ctx, &row.req, true)
		if err != nil {
			result.Failed[row.line] = err
			continue
		}
		valid = append(valid, importRow{line: row.line, req: *req})
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(importConcurrency)
	for _, v := range valid {
		g.Go(func() error {
			user, err := s.userRepo.Create(ctx, &v.req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[v.line] = err
				return nil
			}
			result.Succeeded = append(result.Succeeded, user.ID)
			return nil
		})
	}
	_ = g.Wait()

	slices.Sort(result.Succeeded)
	if len(result.Succeeded) > 0 {
		if err := s.FetchUsers(ctx); err != nil {
			s.logger.Warn("refresh after import failed", "error", err)
		}
	}

	s.logger.Info("user import finished", "rows", len(rows), "created", len(result.Succeeded), "failed", len(result.Failed))
	return result, batchError("import line", result)
}

// parseUserCSV reads the header and every non-blank record
func parseUserCSV(r io.Reader) ([]importRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.NewValidationError("the CSV file is empty")
	}
	if err != nil {
		return nil, domain.NewValidationError("invalid CSV header: %v", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for _, c := range requiredImportColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("CSV header is missing column(s): %s", strings.Join(missing, ", "))
	}

	var rows []importRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewValidationError("invalid CSV: %v", err)
		}
		line, _ := cr.FieldPos(0)

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if strings.TrimSpace(strings.Join(rec, "")) == "" {
			continue
		}

		rows = append(rows, importRow{
			line: int64(line),
			req: models.UserRequest{
				Name:        field("name"),
				Email:       field("email"),
				Phone:       field("phone"),
				Password:    field("password"),
				Role:        models.Role(field("role")),
				Departments: splitDepartments(field("department")),
				Position:    field("position"),
				Status:      field("status"),
				HireDate:    field("hire_date"),
			},
		})
	}
	if len(rows) == 0 {
		return nil, domain.NewValidationError("the CSV file has no user rows")
	}
	return rows, nil
}

// splitDepartments accepts "IT" or "IT;HR"
func splitDepartments(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}
