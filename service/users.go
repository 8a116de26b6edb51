package service

import (
	"context"
	models "storefront/model"
	"storefront/store"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 6
	// bcrypt refuses longer input
	maxPasswordLen = 72
)

var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrUserExists         = errors.New("user already exists with this email or username")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return models.User{}, errors.Wrap(ErrInvalidInput, "username, email and password are required")
	}
	if in.Password != in.Password2 {
		return models.User{}, ErrPasswordMismatch
	}
	if len(in.Password) < minPasswordLen {
		return models.User{}, ErrPasswordTooShort
	}
	if len(in.Password) > maxPasswordLen {
		return models.User{}, errors.Wrapf(ErrInvalidInput, "password must be at most %d bytes", maxPasswordLen)
	}

	exists, err := s.users.Exists(ctx, in.Username, in.Email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, errors.Wrap(err, "hash password")
	}
	u := models.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	// the unique index still catches a concurrent registration
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate checks a username-or-email and password pair. Unknown users and
// wrong passwords produce the same error.
func (s *Service) Authenticate(ctx context.Context, login, password string) (models.User, error) {
	if login == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}
	u, err := s.users.FindByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Login moves the session's cart to a newly issued session id bound to u and
// deletes the old session. It returns the new id; the old one no longer
// carries any state.
func (s *Service) Login(ctx context.Context, sessionID string, u models.User) (string, error) {
	if sessionID == "" {
		return "", errors.Wrap(ErrInvalidInput, "session id required")
	}
	unlock := s.lockForSession(sessionID)
	defer unlock()

	old, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	fresh := models.NewSession(uuid.New().String())
	fresh.Cart = old.Cart
	fresh.UserID = u.ID
	if err := s.sessions.Save(ctx, fresh); err != nil {
		return "", err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return "", errors.Wrapf(err, "delete session %s", sessionID)
	}
	return fresh.ID, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	_, err := s.updateSession(ctx, sessionID, func(sess *models.Session) error {
		sess.UserID = ""
		return nil
	})
	return err
}

// CurrentUser returns nil for anonymous sessions, or when the bound user no
// longer exists.
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, nil
	}
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID == "" {
		return nil, nil
	}
	u, err := s.users.FindByID(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
