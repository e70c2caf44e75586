package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"

	"arkive/internal/domain"
	"arkive/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUser() models.User {
	return models.User{
		ID:       7,
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret",
		Role:     models.RoleAdmin,
		Departments: []models.Department{
			{ID: 1, Name: "IT"},
			{ID: 2, Name: "HR"},
		},
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ana@example.com",
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Type: "access",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// fakeAuth records calls and returns canned results
type fakeAuth struct {
	loginCalls  int
	logoutCalls int
	loginErr    error
	logoutErr   error
	logoutBlock bool
	result      *models.LoginResult
}

func (f *fakeAuth) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.result, nil
}

func (f *fakeAuth) Logout(ctx context.Context, token string) error {
	f.logoutCalls++
	if f.logoutBlock {
		<-ctx.Done()
		return &domain.TransportError{Method: "POST", Path: "auth/logout", Err: ctx.Err()}
	}
	return f.logoutErr
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	store := NewFileStore(path)
	ctx := context.Background()

	sess, err := store.Load(ctx)
	if err != nil || sess != nil {
		t.Fatalf("Load on empty store = %v, %v; want nil, nil", sess, err)
	}

	want := &models.Session{Token: "tok", User: testUser(), SavedAt: time.Now().UTC().Truncate(time.Second)}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "secret") {
		t.Error("password must never be persisted")
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Token != "tok" || got.User.Name != "Ana" || len(got.User.Departments) != 2 {
		t.Errorf("loaded = %+v", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Errorf("second Clear should be a no-op, got %v", err)
	}
	if got, _ := store.Load(ctx); got != nil {
		t.Errorf("Load after Clear = %+v, want nil", got)
	}
}

func TestRedisStore(t *testing.T) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), "ana")
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if got, err := store.Load(ctx); err != nil || got != nil {
		t.Fatalf("Load on empty = %v, %v", got, err)
	}

	token := signedToken(t, time.Now().Add(2*time.Hour))
	if err := store.Save(ctx, &models.Session{Token: token, User: testUser()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !s.Exists("arkive:session:ana") {
		t.Fatal("expected key arkive:session:ana")
	}
	if ttl := s.TTL("arkive:session:ana"); ttl <= time.Hour || ttl > 2*time.Hour {
		t.Errorf("TTL = %v, want about 2h", ttl)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Token != token || got.User.Password != "" {
		t.Errorf("loaded = %+v", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if s.Exists("arkive:session:ana") {
		t.Error("key should be deleted")
	}
}

func newTestManager(t *testing.T, auth *fakeAuth, policy ScopePolicy) (*Manager, *FileStore) {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "session.yaml"))
	return NewManager(store, auth, policy, testLogger()), store
}

func TestManager_LoginValidatesBeforeNetwork(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "pw"},
		{"bad email", "not-an-email", "pw"},
		{"empty password", "ana@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{}
			m, _ := newTestManager(t, auth, ScopeAll)

			if m.Login(context.Background(), tt.email, tt.password) {
				t.Fatal("Login = true, want false")
			}
			if auth.loginCalls != 0 {
				t.Errorf("loginCalls = %d, want 0", auth.loginCalls)
			}
			if m.LastError() == "" {
				t.Error("LastError should explain the failure")
			}
		})
	}
}

func TestManager_LoginFailureKeepsPriorState(t *testing.T) {
	auth := &fakeAuth{result: &models.LoginResult{Token: "first", User: testUser()}}
	m, _ := newTestManager(t, auth, ScopeAll)
	ctx := context.Background()

	if !m.Login(ctx, "ana@example.com", "pw") {
		t.Fatalf("first Login failed: %s", m.LastError())
	}

	auth.loginErr = &domain.APIError{Status: 401, Message: "Invalid email or password"}
	if m.Login(ctx, "ana@example.com", "wrong") {
		t.Fatal("second Login = true, want false")
	}
	if m.Token() != "first" {
		t.Errorf("Token = %q, want first", m.Token())
	}
	if m.LastError() != "Invalid email or password" {
		t.Errorf("LastError = %q", m.LastError())
	}
}

func TestManager_LoginPersistsAndRestores(t *testing.T) {
	auth := &fakeAuth{result: &models.LoginResult{Token: "tok", User: testUser()}}
	m, store := newTestManager(t, auth, ScopeAll)
	ctx := context.Background()

	if !m.Login(ctx, " ana@example.com ", "pw") {
		t.Fatalf("Login failed: %s", m.LastError())
	}

	restored := NewManager(store, auth, ScopeAll, testLogger())
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	user, ok := restored.Current()
	if !ok || user.ID != 7 || !restored.IsAdmin() {
		t.Errorf("restored user = %+v, %v", user, ok)
	}
	if user.Password != "" {
		t.Error("password leaked into session")
	}
}

func TestManager_LogoutAlwaysClears(t *testing.T) {
	tests := []struct {
		name    string
		auth    *fakeAuth
		wantErr bool
	}{
		{"backend ok", &fakeAuth{}, false},
		{"backend error", &fakeAuth{logoutErr: &domain.APIError{Status: 500}}, true},
		{"backend timeout", &fakeAuth{logoutBlock: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.auth.result = &models.LoginResult{Token: "tok", User: testUser()}
			m, store := newTestManager(t, tt.auth, ScopeAll)

			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			if !m.Login(ctx, "ana@example.com", "pw") {
				t.Fatalf("Login failed: %s", m.LastError())
			}

			reset := false
			m.OnLogout(func() { reset = true })

			err := m.Logout(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("Logout err = %v, wantErr %v", err, tt.wantErr)
			}
			if m.Token() != "" {
				t.Error("token should be cleared")
			}
			if _, ok := m.Current(); ok {
				t.Error("user should be cleared")
			}
			if !reset {
				t.Error("logout hooks should run")
			}
			if sess, _ := store.Load(context.Background()); sess != nil {
				t.Error("persisted session should be cleared")
			}
			if tt.auth.logoutCalls != 1 {
				t.Errorf("logoutCalls = %d, want 1", tt.auth.logoutCalls)
			}
		})
	}
}

func TestManager_Scope(t *testing.T) {
	tests := []struct {
		policy ScopePolicy
		want   []string
	}{
		{ScopeAll, []string{"IT", "HR"}},
		{ScopePrimary, []string{"IT"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			auth := &fakeAuth{result: &models.LoginResult{Token: "tok", User: testUser()}}
			m, _ := newTestManager(t, auth, tt.policy)

			if got := m.Scope(); got != nil {
				t.Errorf("Scope before login = %v, want nil", got)
			}
			m.Login(context.Background(), "ana@example.com", "pw")
			if got := m.Scope(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Scope = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseScopePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ScopePolicy
		wantErr bool
	}{
		{"", ScopeAll, false},
		{"ALL", ScopeAll, false},
		{"primary", ScopePrimary, false},
		{"some", "", true},
	}
	for _, tt := range tests {
		got, err := ParseScopePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseScopePolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestManager_UpdateCurrentUser(t *testing.T) {
	auth := &fakeAuth{result: &models.LoginResult{Token: "tok", User: testUser()}}
	m, store := newTestManager(t, auth, ScopeAll)
	ctx := context.Background()

	if err := m.UpdateCurrentUser(ctx, testUser()); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}

	m.Login(ctx, "ana@example.com", "pw")
	user := testUser()
	user.Name = "Ana Maria"
	if err := m.UpdateCurrentUser(ctx, user); err != nil {
		t.Fatalf("UpdateCurrentUser failed: %v", err)
	}

	sess, _ := store.Load(ctx)
	if sess.User.Name != "Ana Maria" || sess.Token != "tok" {
		t.Errorf("persisted = %+v", sess)
	}
}

func TestManager_TokenInfo(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	auth := &fakeAuth{result: &models.LoginResult{Token: signedToken(t, exp), User: testUser()}}
	m, _ := newTestManager(t, auth, ScopeAll)

	if _, err := m.TokenInfo(); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}

	m.Login(context.Background(), "ana@example.com", "pw")
	info, err := m.TokenInfo()
	if err != nil {
		t.Fatalf("TokenInfo failed: %v", err)
	}
	if info.Subject != "ana@example.com" || info.Type != "access" {
		t.Errorf("info = %+v", info)
	}
	if info.ExpiresAt == nil || !info.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", info.ExpiresAt, exp)
	}
	if info.Expired(time.Now()) {
		t.Error("token should not be expired yet")
	}
}
