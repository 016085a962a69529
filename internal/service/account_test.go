package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sakif/account-service/internal/apperror"
	"github.com/sakif/account-service/internal/auth"
	"github.com/sakif/account-service/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory implementation of repository.UserRepository.
// Using a fake (not a mock framework) keeps tests dependency-free and easy
// to read — you can see exactly what the fake does.
type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
	// set to a non-nil error to simulate a database failure
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[int64]*model.User),
		nextID: 1,
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	// Enforce the same uniqueness contract as the real stores: the
	// constraint, not a pre-check, decides — email checked first.
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return apperror.Duplicate("email")
		}
		if existing.Username == user.Username {
			return apperror.Duplicate("username")
		}
	}
	user.ID = f.nextID
	f.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Email == identifier || u.Username == identifier {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	return u, nil
}

// newTestAccountService returns an AccountService wired with the fake repo
// and fast (cost 4) bcrypt.
func newTestAccountService(t *testing.T, repo *fakeUserRepo) *AccountService {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewAccountService(repo, auth.NewPasswordServiceForTest(), tokens, logger)
}

func registerTestUser(t *testing.T, svc *AccountService, username, email, password string) *model.PublicProfile {
	t.Helper()
	profile, err := svc.Register(context.Background(), username, email, password)
	if err != nil {
		t.Fatalf("Register(%q) error = %v", username, err)
	}
	return profile
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(t, repo)

	profile, err := svc.Register(context.Background(), "alice", "a@x.com", "longpass1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if profile.ID == 0 {
		t.Error("Register() returned profile without an ID")
	}
	if profile.Username != "alice" {
		t.Errorf("Username = %q, want %q", profile.Username, "alice")
	}
	if profile.Email != "a@x.com" {
		t.Errorf("Email = %q, want %q", profile.Email, "a@x.com")
	}
	if profile.CreatedAt.IsZero() {
		t.Error("Register() returned profile without CreatedAt")
	}
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(t, repo)

	profile := registerTestUser(t, svc, "alice", "a@x.com", "longpass1")

	stored := repo.users[profile.ID]
	if stored.PasswordHash == "" {
		t.Fatal("stored user has an empty password hash")
	}
	if stored.PasswordHash == "longpass1" {
		t.Fatal("stored user carries the plaintext password")
	}
}

func TestRegister_EmptyFields(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(t, repo)

	cases := []struct {
		name                      string
		username, email, password string
	}{
		{"empty username", "", "a@x.com", "longpass1"},
		{"empty email", "alice", "", "longpass1"},
		{"empty password", "alice", "a@x.com", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.username, tc.email, tc.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(t, repo)
	registerTestUser(t, svc, "alice", "a@x.com", "longpass1")

	_, err := svc.Register(context.Background(), "other", "a@x.com", "longpass1")
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Fatalf("Register() error = %v, want ErrDuplicate", err)
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Register() error is not an *AppError: %v", err)
	}
	if appErr.Field != "email" {
		t.Errorf("Field = %q, want %q", appErr.Field, "email")
	}
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLogin_ByEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(t, repo)
	registerTestUser(t, svc, "alice", "a@x.com", "longpass1")

	token, err := svc.Login(context.Background(), "a@x.com", "longpass1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Fatal("Login() returned empty token")
	}
}

func TestLogin_ByUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(t, repo)
	registerTestUser(t, svc, "alice", "a@x.com", "longpass1")

	token, err := svc.Login(context.Background(), "alice", "longpass1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Fatal("Login() returned empty token")
	}
}

func TestLogin_EmptyFields(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(t, repo)

	if _, err := svc.Login(context.Background(), "", "longpass1"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Login() error = %v, want ErrValidation", err)
	}
	if _, err := svc.Login(context.Background(), "alice", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Login() error = %v, want ErrValidation", err)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(t, repo)
	registerTestUser(t, svc, "alice", "a@x.com", "longpass1")

	// An unknown identifier and a wrong password must yield the same
	// error value — nothing may reveal whether the account exists.
	_, errNoUser := svc.Login(context.Background(), "nobody", "longpass1")
	_, errBadPass := svc.Login(context.Background(), "alice", "wrongpass")

	if !errors.Is(errNoUser, apperror.ErrUnauthorized) {
		t.Fatalf("unknown identifier error = %v, want ErrUnauthorized", errNoUser)
	}
	if !errors.Is(errBadPass, apperror.ErrUnauthorized) {
		t.Fatalf("wrong password error = %v, want ErrUnauthorized", errBadPass)
	}
	if errNoUser.Error() != errBadPass.Error() {
		t.Errorf("error messages differ: %q vs %q", errNoUser.Error(), errBadPass.Error())
	}
}

func TestLogin_TokenVerifiesToUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(t, repo)
	profile := registerTestUser(t, svc, "alice", "a@x.com", "longpass1")

	token, err := svc.Login(context.Background(), "alice", "longpass1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	tokens, _ := auth.NewTokenService("test-secret-at-least-16-chars!!")
	ident, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ident.UserID != profile.ID {
		t.Errorf("token subject = %d, want %d", ident.UserID, profile.ID)
	}
	if ident.Username != "alice" {
		t.Errorf("token username = %q, want %q", ident.Username, "alice")
	}
}

// =========================================================================
// PROFILE TESTS
// =========================================================================

func TestProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(t, repo)
	registered := registerTestUser(t, svc, "alice", "a@x.com", "longpass1")

	profile, err := svc.Profile(context.Background(), registered.ID)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if profile.Username != "alice" {
		t.Errorf("Username = %q, want %q", profile.Username, "alice")
	}
	if profile.Email != "a@x.com" {
		t.Errorf("Email = %q, want %q", profile.Email, "a@x.com")
	}
}

func TestProfile_NotFound(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(t, repo)

	_, err := svc.Profile(context.Background(), 404)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Profile() error = %v, want ErrNotFound", err)
	}
}

func TestProfile_StoreFailure(t *testing.T) {
	repo := newFakeUserRepo()
	repo.getErr = errors.New("connection refused")
	svc := newTestAccountService(t, repo)

	_, err := svc.Profile(context.Background(), 1)
	if err == nil {
		t.Fatal("Profile() should propagate store failures")
	}
	if errors.Is(err, apperror.ErrNotFound) {
		t.Error("a store failure must not be reported as not-found")
	}
}
