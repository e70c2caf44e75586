package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"arkive/internal/domain"
	"arkive/internal/domain/models"
	"arkive/internal/httputil"
)

func newTestConfig(t *testing.T, handler http.HandlerFunc) *RepositoryConfig {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := httputil.NewClient(srv.URL+"/api", 0, nil)
	return &RepositoryConfig{
		API:         client,
		Gateway:     httputil.NewClient(srv.URL, 0, nil),
		Translation: client,
	}
}

func TestFolderRepository_ListByDepartments(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/folders/departments" {
			t.Errorf("path = %s", r.URL.Path)
		}
		got := r.URL.Query()["departments"]
		if !reflect.DeepEqual(got, []string{"IT", "HR"}) {
			t.Errorf("departments = %v, want [IT HR]", got)
		}
		w.Write([]byte(`{"success":true,"message":"ok","data":[
			{"id":1,"title":"Policies","departments":["IT","HR"],"createdAt":"2024-03-01T10:15:30"},
			{"id":2,"title":"Legacy","department":"HR","createdAt":[2024,3,2,8,0,0,0]}
		]}`))
	})

	folders, err := NewFolderRepository(cfg).ListByDepartments(context.Background(), []string{"IT", "HR", " "})
	if err != nil {
		t.Fatalf("ListByDepartments failed: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("len = %d, want 2", len(folders))
	}
	if !reflect.DeepEqual(folders[1].Departments, []string{"HR"}) {
		t.Errorf("legacy department = %v, want [HR]", folders[1].Departments)
	}
	want := time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)
	if !folders[0].CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", folders[0].CreatedAt, want)
	}
	if folders[1].CreatedAt.Day() != 2 {
		t.Errorf("array timestamp not decoded: %v", folders[1].CreatedAt)
	}
}

func TestFolderRepository_CreateConflict(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"success":false,"message":"Folder Policies already exists"}`))
	})

	_, err := NewFolderRepository(cfg).Create(context.Background(), &models.FolderRequest{Title: "Policies", Departments: []string{"IT"}})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflict.ResourceType != "folder" || conflict.Message != "Folder Policies already exists" {
		t.Errorf("conflict = %+v", conflict)
	}
}

func TestDocumentRepository_ListUnfiled(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/documents/filter" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["noFolderId"] != true {
			t.Errorf("noFolderId = %v, want true", body["noFolderId"])
		}
		w.Write([]byte(`{"success":true,"data":[
			{"id":5,"title":"Q1 report","ownerName":"Ana","ownerId":3,"department":"Finance","url":"http://x/storage/q1.pdf","folderId":null},
			{"id":6,"title":"Q2","owner":"Bo","department":"Finance","folder_id":4}
		]}`))
	})

	docs, err := NewDocumentRepository(cfg).ListUnfiled(context.Background(), []string{"Finance"})
	if err != nil {
		t.Fatalf("ListUnfiled failed: %v", err)
	}
	if docs[0].Owner != "Ana" || docs[0].Filed() {
		t.Errorf("doc 5 = %+v", docs[0])
	}
	if docs[1].Owner != "Bo" || !docs[1].InFolder(4) {
		t.Errorf("doc 6 = %+v", docs[1])
	}
}

func TestDocumentRepository_UpdateSendsNullFolder(t *testing.T) {
	tests := []struct {
		name     string
		folderID *int64
		want     any
	}{
		{"unfile", nil, nil},
		{"move", func() *int64 { v := int64(7); return &v }(), float64(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				json.NewDecoder(r.Body).Decode(&body)
				got, present := body["folderId"]
				if !present {
					t.Error("folderId must always be sent")
				}
				if got != tt.want {
					t.Errorf("folderId = %v, want %v", got, tt.want)
				}
				if category, ok := body["category"]; !ok || category != nil {
					t.Errorf("category = %v (present %v), want null", category, ok)
				}
				w.Write([]byte(`{"success":true,"data":{"id":1,"title":"t","department":"IT"}}`))
			})

			doc := &models.Document{ID: 1, Title: "t", Department: "IT", FolderID: tt.folderID}
			if _, err := NewDocumentRepository(cfg).Update(context.Background(), doc); err != nil {
				t.Fatalf("Update failed: %v", err)
			}
		})
	}
}

func TestDocumentRepository_ListByDepartmentEscapesName(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/api/documents/department/Human%20Resources" {
			t.Errorf("path = %s", r.URL.EscapedPath())
		}
		w.Write([]byte(`[]`))
	})

	if _, err := NewDocumentRepository(cfg).ListByDepartment(context.Background(), "Human Resources"); err != nil {
		t.Fatalf("ListByDepartment failed: %v", err)
	}
}

func TestUserRepository_List(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "3" || q.Get("per_page") != "10" || q.Get("role") != "Admin" {
			t.Errorf("query = %v", q)
		}
		if _, ok := q["status"]; ok {
			t.Error("empty status should not be sent")
		}
		w.Write([]byte(`{"status":"success","total":21,"data":[
			{"id":1,"name":"Ana","email":"ana@x.io","role":"admin","department":"IT","status":"active","hire_date":"2022-01-01"},
			{"id":2,"name":"Bo","email":"bo@x.io","role":"User","department":null}
		]}`))
	})

	page, err := NewUserRepository(cfg).List(context.Background(), models.UserQuery{
		PageIndex:    2,
		CountPerPage: 10,
		Filter:       models.UserFilter{Role: "Admin"},
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 21 {
		t.Errorf("Total = %d, want 21", page.Total)
	}
	ana := page.Users[0]
	if !ana.IsAdmin() || ana.Status != models.StatusActive || ana.PrimaryDepartment() != "IT" {
		t.Errorf("ana = %+v", ana)
	}
	if len(page.Users[1].Departments) != 0 {
		t.Errorf("null department should map to none, got %v", page.Users[1].Departments)
	}
}

func TestUserRepository_CreateBody(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["department_id"] != float64(4) {
			t.Errorf("department_id = %v, want 4", body["department_id"])
		}
		if _, ok := body["hire_date"]; ok {
			t.Error("empty hire_date should be omitted")
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"success","data":{"id":9,"name":"Cy","email":"cy@x.io","role":"User","department":"Finance"}}`))
	})

	user, err := NewUserRepository(cfg).Create(context.Background(), &models.UserRequest{
		Name: "Cy", Email: "cy@x.io", Password: "pw", Role: models.RoleUser,
		Departments: []string{"Finance"}, DepartmentIDs: []int64{4},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.ID != 9 || user.Password != "" {
		t.Errorf("user = %+v", user)
	}
}

func TestAuthRepository(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantToken string
	}{
		{"access_token", `{"message":"ok","access_token":"a1","refresh_token":"r1","user":{"id":1,"name":"Ana","role":"Admin","department":"IT"}}`, "a1"},
		{"token", `{"message":"ok","token":"t1","user":{"id":1,"name":"Ana"}}`, "t1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logoutAuth string
			cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/api/auth/login":
					w.Write([]byte(tt.body))
				case "/api/auth/logout":
					logoutAuth = r.Header.Get("Authorization")
					w.Write([]byte(`{"message":"Logged out successfully"}`))
				}
			})
			repo := NewAuthRepository(cfg)

			res, err := repo.Login(context.Background(), models.Credentials{Email: "ana@x.io", Password: "pw"})
			if err != nil {
				t.Fatalf("Login failed: %v", err)
			}
			if res.Token != tt.wantToken {
				t.Errorf("Token = %q, want %q", res.Token, tt.wantToken)
			}

			if err := repo.Logout(context.Background(), res.Token); err != nil {
				t.Fatalf("Logout failed: %v", err)
			}
			if logoutAuth != "Bearer "+tt.wantToken {
				t.Errorf("logout Authorization = %q", logoutAuth)
			}
		})
	}
}

func TestAuthRepository_LoginRejected(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid email or password"}`))
	})

	_, err := NewAuthRepository(cfg).Login(context.Background(), models.Credentials{Email: "a@x.io", Password: "bad"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if got := domain.UserMessage(err, ""); got != "Invalid email or password" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestTranslationRepository(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/translation/translate/") {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req translateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.TargetLanguage != "French" {
			t.Errorf("target_language = %q", req.TargetLanguage)
		}
		w.Write([]byte(`{"original_language":"English","translated_title":" Rapport annuel "}`))
	})

	tr, err := NewTranslationRepository(cfg).Translate(context.Background(), "Annual report", "French")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if tr.TranslatedTitle != "Rapport annuel" || tr.OriginalLanguage != "English" {
		t.Errorf("translation = %+v", tr)
	}
}

func TestStorageRepository_URL(t *testing.T) {
	cfg := newTestConfig(t, func(w http.ResponseWriter, r *http.Request) {})
	got := NewStorageRepository(cfg).URL("annual report.pdf")
	if !strings.HasSuffix(got, "/storage/download/annual%20report.pdf") {
		t.Errorf("URL = %s", got)
	}
}
