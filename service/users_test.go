package service

import (
	"context"
	"errors"
	models "storefront/model"
	"storefront/store"
	"strings"
	"testing"
	"time"
)

// ---- fakeUsers implementing store.UserStore ----
type fakeUsers struct {
	CreateFn      func(ctx context.Context, u models.User) error
	FindByLoginFn func(ctx context.Context, login string) (models.User, error)
	FindByIDFn    func(ctx context.Context, id string) (models.User, error)
	ExistsFn      func(ctx context.Context, username, email string) (bool, error)
}

func (f *fakeUsers) Create(ctx context.Context, u models.User) error { return f.CreateFn(ctx, u) }
func (f *fakeUsers) FindByLogin(ctx context.Context, login string) (models.User, error) {
	return f.FindByLoginFn(ctx, login)
}
func (f *fakeUsers) FindByID(ctx context.Context, id string) (models.User, error) {
	return f.FindByIDFn(ctx, id)
}
func (f *fakeUsers) Exists(ctx context.Context, username, email string) (bool, error) {
	return f.ExistsFn(ctx, username, email)
}

func TestRegisterValidation(t *testing.T) {
	svc := newMemoryService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"missing fields", RegisterInput{Username: "", Email: "a@b.c", Password: "secret1", Password2: "secret1"}, ErrInvalidInput},
		{"mismatch", RegisterInput{Username: "neo", Email: "neo@example.com", Password: "secret1", Password2: "secret2"}, ErrPasswordMismatch},
		{"too short", RegisterInput{Username: "neo", Email: "neo@example.com", Password: "abc", Password2: "abc"}, ErrPasswordTooShort},
		{"too long for bcrypt", RegisterInput{Username: "neo", Email: "neo@example.com", Password: strings.Repeat("x", 80), Password2: strings.Repeat("x", 80)}, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRegisterAcceptsPasswordAtBcryptLimit(t *testing.T) {
	pw := strings.Repeat("x", 72)
	u, err := newMemoryService().Register(context.Background(), RegisterInput{Username: "neo", Email: "neo@example.com", Password: pw, Password2: pw})
	if err != nil || u.ID == "" {
		t.Fatalf("expected 72 byte password to register, got %+v %v", u, err)
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newMemoryService()
	ctx := context.Background()

	in := RegisterInput{Username: "neo", Email: "neo@example.com", Password: "matrix", Password2: "matrix"}
	u, err := svc.Register(ctx, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == "" || u.PasswordHash == "" || u.PasswordHash == "matrix" {
		t.Fatalf("expected hashed password and id, got %+v", u)
	}

	// duplicate by username or email
	if _, err := svc.Register(ctx, RegisterInput{Username: "neo", Email: "x@example.com", Password: "matrix", Password2: "matrix"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	for _, login := range []string{"neo", "neo@example.com"} {
		got, err := svc.Authenticate(ctx, login, "matrix")
		if err != nil {
			t.Fatalf("Authenticate(%s): %v", login, err)
		}
		if got.ID != u.ID {
			t.Fatalf("expected user %s, got %s", u.ID, got.ID)
		}
	}

	if _, err := svc.Authenticate(ctx, "neo", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "trinity", "matrix"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterConflictFromStore(t *testing.T) {
	svc := NewService(
		store.NewMemoryCatalog(nil),
		store.NewMemorySessionStore(time.Hour),
		&fakeUsers{
			ExistsFn: func(ctx context.Context, username, email string) (bool, error) { return false, nil },
			CreateFn: func(ctx context.Context, u models.User) error { return store.ErrConflict },
		},
	)
	_, err := svc.Register(context.Background(), RegisterInput{Username: "a", Email: "a@a.a", Password: "123456", Password2: "123456"})
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLoginLogoutKeepsCart(t *testing.T) {
	svc := newMemoryService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Username: "neo", Email: "neo@example.com", Password: "matrix", Password2: "matrix"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = svc.AddToCart(ctx, "sid", "6")

	if cur, _ := svc.CurrentUser(ctx, "sid"); cur != nil {
		t.Fatalf("expected anonymous session, got %+v", cur)
	}
	newSID, err := svc.Login(ctx, "sid", u)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if newSID == "" || newSID == "sid" {
		t.Fatalf("expected a new session id, got %q", newSID)
	}
	cur, err := svc.CurrentUser(ctx, newSID)
	if err != nil || cur == nil || cur.ID != u.ID {
		t.Fatalf("expected logged in user, got %+v %v", cur, err)
	}
	if n, _ := svc.CartCount(ctx, newSID); n != 1 {
		t.Fatalf("expected cart to move to the new session, got %d", n)
	}
	// the pre-login id carries nothing
	if cur, _ := svc.CurrentUser(ctx, "sid"); cur != nil {
		t.Fatalf("old session id must not be logged in, got %+v", cur)
	}
	if n, _ := svc.CartCount(ctx, "sid"); n != 0 {
		t.Fatalf("expected old session to be dropped, got %d items", n)
	}

	if err := svc.Logout(ctx, newSID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if cur, _ := svc.CurrentUser(ctx, newSID); cur != nil {
		t.Fatalf("expected anonymous after logout, got %+v", cur)
	}
	if n, _ := svc.CartCount(ctx, newSID); n != 1 {
		t.Fatalf("expected cart to survive logout, got %d", n)
	}
}
