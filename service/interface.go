package service

import (
	"context"
	models "storefront/model"
)

type ServiceInterface interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (string, error)

	GetCart(ctx context.Context, sessionID string) (CartView, error)
	AddToCart(ctx context.Context, sessionID, productID string) (AddResult, error)
	RemoveFromCart(ctx context.Context, sessionID, productID string) (int, error)
	Checkout(ctx context.Context, sessionID string) error
	CartCount(ctx context.Context, sessionID string) (int, error)

	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Authenticate(ctx context.Context, login, password string) (models.User, error)
	Login(ctx context.Context, sessionID string, u models.User) (string, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, sessionID string) (*models.User, error)
}
