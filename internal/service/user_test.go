package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"arkive/internal/domain"
	"arkive/internal/domain/models"
)

type userFixture struct {
	svc     *userService
	repo    *fakeUserRepo
	deps    *fakeDepartmentRepo
	session *fakeSession
}

func newUserFixture(t *testing.T, role models.Role) *userFixture {
	t.Helper()
	repo := &fakeUserRepo{
		users: []models.User{
			{ID: 1, Name: "Ana", Role: models.RoleAdmin},
			{ID: 2, Name: "Bo", Role: models.RoleUser},
			{ID: 3, Name: "Cy", Role: models.RoleUser},
			{ID: 4, Name: "Di", Role: models.RoleUser},
		},
		failDelete: map[int64]bool{},
		failCreate: map[string]bool{},
	}
	deps := &fakeDepartmentRepo{deps: []models.Department{{ID: 11, Name: "IT"}, {ID: 14, Name: "Finance"}}}
	session := newFakeSession(role, "IT")
	departments := NewDepartmentService(deps, session, testLogger())
	svc := NewUserService(repo, departments, session, 2, testLogger()).(*userService)
	return &userFixture{svc: svc, repo: repo, deps: deps, session: session}
}

func userIDs(users []models.User) []int64 {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func TestUserService_RequiresAdmin(t *testing.T) {
	f := newUserFixture(t, models.RoleUser)
	ctx := context.Background()

	checks := map[string]error{
		"fetch":  f.svc.FetchUsers(ctx),
		"delete": f.svc.DeleteUser(ctx, 2),
	}
	_, checks["create"] = f.svc.CreateUser(ctx, &models.UserRequest{Name: "X", Email: "x@x.io", Password: "pw"})
	_, checks["batch"] = f.svc.DeleteSelectedUsers(ctx, []int64{2})
	_, checks["import"] = f.svc.ImportUsers(ctx, strings.NewReader("name,email,password\nX,x@x.io,pw\n"))

	for name, err := range checks {
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("%s: err = %v, want ErrForbidden", name, err)
		}
	}
	if n := f.repo.callCount(); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestUserService_Paging(t *testing.T) {
	f := newUserFixture(t, models.RoleAdmin)
	ctx := context.Background()

	if err := f.svc.FetchUsers(ctx); err != nil {
		t.Fatalf("FetchUsers failed: %v", err)
	}
	if got := userIDs(f.svc.Users().Items); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Errorf("page 0 = %v", got)
	}
	if f.svc.TotalUsers() != 4 {
		t.Errorf("TotalUsers = %d, want 4", f.svc.TotalUsers())
	}

	f.svc.SetPage(1)
	f.svc.FetchUsers(ctx)
	if got := userIDs(f.svc.Users().Items); !reflect.DeepEqual(got, []int64{3, 4}) {
		t.Errorf("page 1 = %v", got)
	}

	f.svc.SetPage(5)
	f.svc.FetchUsers(ctx)
	if idx, _ := f.svc.Page(); idx != 1 {
		t.Errorf("page past the end should clamp to 1, got %d", idx)
	}

	f.svc.SetFilter(models.UserFilter{SearchKey: " cy "})
	if idx, _ := f.svc.Page(); idx != 0 {
		t.Errorf("SetFilter should return to page 0, got %d", idx)
	}
	f.svc.FetchUsers(ctx)
	if f.repo.lastQuery.Filter.SearchKey != "cy" {
		t.Errorf("query = %+v", f.repo.lastQuery)
	}
	if got := userIDs(f.svc.Users().Items); !reflect.DeepEqual(got, []int64{3}) {
		t.Errorf("filtered = %v", got)
	}
}

func TestUserService_PagingKeepsError(t *testing.T) {
	tests := []struct {
		name   string
		change func(s *userService)
	}{
		{"page", func(s *userService) { s.SetPage(1) }},
		{"page size", func(s *userService) { s.SetPageSize(3) }},
		{"filter", func(s *userService) { s.SetFilter(models.UserFilter{SearchKey: "bo"}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUserFixture(t, models.RoleAdmin)
			ctx := context.Background()
			f.svc.FetchUsers(ctx)

			f.repo.listErr = &domain.APIError{Status: 500, Message: "database unavailable"}
			if err := f.svc.FetchUsers(ctx); err == nil {
				t.Fatal("FetchUsers should fail")
			}
			tt.change(f.svc)
			list := f.svc.Users()
			if list.Status != models.StatusError || list.Error == "" {
				t.Errorf("list = %+v, want the error kept", list)
			}

			f.repo.listErr = nil
			if err := f.svc.FetchUsers(ctx); err != nil {
				t.Fatalf("FetchUsers failed: %v", err)
			}
			if st := f.svc.Users().Status; st != models.StatusReady {
				t.Errorf("Status = %v", st)
			}
		})
	}
}

func TestUserService_DeleteUserRemovesRow(t *testing.T) {
	f := newUserFixture(t, models.RoleAdmin)
	ctx := context.Background()
	f.svc.FetchUsers(ctx)

	if err := f.svc.DeleteUser(ctx, 2); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if err := f.svc.FetchUsers(ctx); err != nil {
		t.Fatalf("FetchUsers failed: %v", err)
	}
	for _, u := range f.svc.Users().Items {
		if u.ID == 2 {
			t.Error("deleted user still listed")
		}
	}
}

func TestUserService_CannotDeleteSelf(t *testing.T) {
	f := newUserFixture(t, models.RoleAdmin)
	if err := f.svc.DeleteUser(context.Background(), 1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestUserService_DeleteSelectedUsers_PartialFailure(t *testing.T) {
	f := newUserFixture(t, models.RoleAdmin)
	f.repo.failDelete[3] = true
	ctx := context.Background()

	f.svc.FetchUsers(ctx)
	f.svc.Select(2)
	f.svc.Select(3)
	f.svc.Select(4)

	result, err := f.svc.DeleteSelectedUsers(ctx, f.svc.Selected())
	if err == nil {
		t.Fatal("expected joined error")
	}
	if !strings.Contains(err.Error(), "delete user 3") {
		t.Errorf("err = %v", err)
	}
	if !reflect.DeepEqual(result.Succeeded, []int64{2, 4}) {
		t.Errorf("Succeeded = %v, want [2 4]", result.Succeeded)
	}
	if _, failed := result.Failed[3]; !failed || len(result.Failed) != 1 {
		t.Errorf("Failed = %v", result.Failed)
	}
	if got := f.svc.Selected(); !reflect.DeepEqual(got, []int64{3}) {
		t.Errorf("Selected = %v, want [3]", got)
	}

	remaining := map[int64]bool{}
	for _, u := range f.repo.users {
		remaining[u.ID] = true
	}
	if remaining[2] || !remaining[3] || remaining[4] {
		t.Errorf("backend users = %v", remaining)
	}
}

func TestUserService_CreateDefaultsAndDepartments(t *testing.T) {
	f := newUserFixture(t, models.RoleAdmin)

	_, err := f.svc.CreateUser(context.Background(), &models.UserRequest{
		Name:        " Eve ",
		Email:       "eve@example.com",
		Password:    "pw",
		Departments: []string{"finance", "IT"},
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	sent := f.repo.created[0]
	if sent.Name != "Eve" || sent.Role != models.RoleUser || sent.Status != models.StatusActive {
		t.Errorf("sent = %+v", sent)
	}
	if !reflect.DeepEqual(sent.DepartmentIDs, []int64{14, 11}) || !reflect.DeepEqual(sent.Departments, []string{"Finance", "IT"}) {
		t.Errorf("departments = %v %v", sent.Departments, sent.DepartmentIDs)
	}
}

func TestUserService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  models.UserRequest
	}{
		{"missing name", models.UserRequest{Email: "a@x.io", Password: "pw"}},
		{"bad email", models.UserRequest{Name: "A", Email: "nope", Password: "pw"}},
		{"missing password", models.UserRequest{Name: "A", Email: "a@x.io"}},
		{"bad role", models.UserRequest{Name: "A", Email: "a@x.io", Password: "pw", Role: "Boss"}},
		{"bad status", models.UserRequest{Name: "A", Email: "a@x.io", Password: "pw", Status: "Away"}},
		{"bad hire date", models.UserRequest{Name: "A", Email: "a@x.io", Password: "pw", HireDate: "01/02/2024"}},
		{"unknown department", models.UserRequest{Name: "A", Email: "a@x.io", Password: "pw", Departments: []string{"Legal"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUserFixture(t, models.RoleAdmin)
			if _, err := f.svc.CreateUser(context.Background(), &tt.req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
			if n := f.repo.callCount(); n != 0 {
				t.Errorf("calls = %d, want 0", n)
			}
		})
	}
}

func TestUserService_UpdateSelfUpdatesSession(t *testing.T) {
	f := newUserFixture(t, models.RoleAdmin)

	_, err := f.svc.UpdateUser(context.Background(), 1, &models.UserRequest{Name: "Ana Maria", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if f.session.updated == nil || f.session.updated.Name != "Ana Maria" {
		t.Errorf("session user = %+v", f.session.updated)
	}
}

func TestUserService_ImportUsers(t *testing.T) {
	f := newUserFixture(t, models.RoleAdmin)
	f.repo.failCreate["dup@x.io"] = true

	csv := "Name,Email,Password,Role,Department\n" +
		"Fay,fay@x.io,pw,admin,IT\n" +
		"Gus,not-an-email,pw,,\n" +
		"Dup,dup@x.io,pw,,Finance\n" +
		"Hal,hal@x.io,pw,,IT;Finance\n"

	result, err := f.svc.ImportUsers(context.Background(), strings.NewReader(csv))
	if err == nil {
		t.Fatal("expected joined error for failed rows")
	}
	if len(result.Succeeded) != 2 {
		t.Errorf("Succeeded = %v, want 2 users", result.Succeeded)
	}
	if _, ok := result.Failed[3]; !ok {
		t.Errorf("line 3 (bad email) should fail: %v", result.Failed)
	}
	if !errors.Is(result.Failed[3], domain.ErrValidation) {
		t.Errorf("line 3 err = %v", result.Failed[3])
	}
	if !errors.Is(result.Failed[4], domain.ErrConflict) {
		t.Errorf("line 4 err = %v", result.Failed[4])
	}

	byEmail := map[string]models.UserRequest{}
	for _, req := range f.repo.created {
		byEmail[req.Email] = req
	}
	if byEmail["fay@x.io"].Role != models.RoleAdmin {
		t.Errorf("fay role = %q", byEmail["fay@x.io"].Role)
	}
	if !reflect.DeepEqual(byEmail["hal@x.io"].DepartmentIDs, []int64{11, 14}) {
		t.Errorf("hal departments = %v", byEmail["hal@x.io"].DepartmentIDs)
	}
}

func TestUserService_ImportRejectsBadHeader(t *testing.T) {
	f := newUserFixture(t, models.RoleAdmin)

	for name, csv := range map[string]string{
		"empty":           "",
		"missing columns": "name,email\nA,a@x.io\n",
		"header only":     "name,email,password\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := f.svc.ImportUsers(context.Background(), strings.NewReader(csv)); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestUserService_Selection(t *testing.T) {
	f := newUserFixture(t, models.RoleAdmin)
	f.svc.FetchUsers(context.Background())

	f.svc.Select(4)
	f.svc.SelectAllOnPage()
	if got := f.svc.Selected(); !reflect.DeepEqual(got, []int64{1, 2, 4}) {
		t.Errorf("Selected = %v", got)
	}
	f.svc.ClearSelection()
	if got := f.svc.Selected(); len(got) != 0 {
		t.Errorf("Selected after clear = %v", got)
	}
}

func TestDepartmentService_KeepsDefaultsOnFailure(t *testing.T) {
	repo := &fakeDepartmentRepo{listErr: &domain.APIError{Status: 503, Message: "unavailable"}}
	s := NewDepartmentService(repo, newFakeSession(models.RoleAdmin, "IT"), testLogger())

	if err := s.FetchDepartments(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	list := s.Departments()
	if list.Status != models.StatusError || len(list.Items) != len(DefaultDepartments) {
		t.Errorf("list = %+v", list)
	}
	if dep, ok := s.Lookup("marketing"); !ok || dep.Name != "Marketing" {
		t.Errorf("Lookup = %+v, %v", dep, ok)
	}
}

func TestDepartmentService_AddDepartment(t *testing.T) {
	tests := []struct {
		name    string
		role    models.Role
		input   string
		wantErr error
	}{
		{"admin adds", models.RoleAdmin, "  Legal ", nil},
		{"blank name", models.RoleAdmin, "  ", domain.ErrValidation},
		{"duplicate", models.RoleAdmin, "it", domain.ErrConflict},
		{"not admin", models.RoleUser, "Legal", domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeDepartmentRepo{deps: []models.Department{{ID: 1, Name: "IT"}}}
			s := NewDepartmentService(repo, newFakeSession(tt.role, "IT"), testLogger())
			s.FetchDepartments(context.Background())
			repo.calls = 0

			dep, err := s.AddDepartment(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				if repo.calls != 0 {
					t.Errorf("calls = %d, want 0", repo.calls)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddDepartment failed: %v", err)
			}
			if dep.Name != "Legal" {
				t.Errorf("Name = %q", dep.Name)
			}
			if _, ok := s.Lookup("Legal"); !ok {
				t.Error("catalogue not refreshed")
			}
		})
	}
}
