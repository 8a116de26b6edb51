package store

import (
	"context"
	models "storefront/model"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a product or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique key (username, email) is already taken.
	ErrConflict = errors.New("already exists")
)

// Catalog is the product source the cart looks products up in.
type Catalog interface {
	Find(ctx context.Context, id string) (models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, p models.Product) (string, error)
}

// SessionStore keeps one Session per cookie id. Load never fails for an
// unknown or expired id: it hands back a fresh empty session instead.
type SessionStore interface {
	Load(ctx context.Context, id string) (models.Session, error)
	Save(ctx context.Context, s models.Session) error
	Delete(ctx context.Context, id string) error
}

type UserStore interface {
	Create(ctx context.Context, u models.User) error
	FindByLogin(ctx context.Context, login string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	Exists(ctx context.Context, username, email string) (bool, error)
}
