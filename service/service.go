package service

import (
	"context"
	models "storefront/model"
	"storefront/store"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// ErrInvalidInput marks requests rejected before touching any store.
var ErrInvalidInput = errors.New("invalid input")

// Service ties the catalog, session and user stores together.
type Service struct {
	catalog  store.Catalog
	sessions store.SessionStore
	users    store.UserStore

	// load-modify-save on one session id always takes the same stripe
	locks [sessionLockStripes]sync.Mutex
}

const sessionLockStripes = 64

func NewService(c store.Catalog, s store.SessionStore, u store.UserStore) *Service {
	return &Service{catalog: c, sessions: s, users: u}
}

// lockForSession takes the process-local lock for sessionID and returns its unlock.
func (s *Service) lockForSession(sessionID string) func() {
	m := &s.locks[sessionStripe(sessionID)]
	m.Lock()
	return m.Unlock
}

func sessionStripe(sessionID string) int {
	return int(xxhash.Sum64String(sessionID) % sessionLockStripes)
}

// updateSession runs fn on the session's current state and persists the result.
func (s *Service) updateSession(ctx context.Context, sessionID string, fn func(*models.Session) error) (models.Session, error) {
	if sessionID == "" {
		return models.Session{}, errors.Wrap(ErrInvalidInput, "session id required")
	}
	unlock := s.lockForSession(sessionID)
	defer unlock()

	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}
	if err := fn(&sess); err != nil {
		return sess, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return sess, err
	}
	return sess, nil
}

// --- products ---

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.catalog.List(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (models.Product, error) {
	p, err := s.catalog.Find(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Product{}, ErrNotFound
	}
	return p, err
}

func (s *Service) CreateProduct(ctx context.Context, p models.Product) (string, error) {
	if p.Name == "" {
		return "", errors.Wrap(ErrInvalidInput, "name required")
	}
	if p.Price.IsNegative() {
		return "", errors.Wrap(ErrInvalidInput, "price must be >= 0")
	}
	return s.catalog.Create(ctx, p)
}

// --- cart ---

func (s *Service) GetCart(ctx context.Context, sessionID string) (CartView, error) {
	if sessionID == "" {
		return CartView{}, errors.Wrap(ErrInvalidInput, "session id required")
	}
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return newCartView(&sess.Cart), nil
}

func (s *Service) AddToCart(ctx context.Context, sessionID, productID string) (AddResult, error) {
	if productID == "" {
		return AddResult{}, errors.Wrap(ErrInvalidInput, "product id required")
	}
	var res AddResult
	_, err := s.updateSession(ctx, sessionID, func(sess *models.Session) error {
		n, err := AddItem(ctx, &sess.Cart, productID, s.catalog)
		if err != nil {
			return err
		}
		i := sess.Cart.Find(productID)
		res = AddResult{Count: n, Item: sess.Cart.Items[i]}
		return nil
	})
	return res, err
}

func (s *Service) RemoveFromCart(ctx context.Context, sessionID, productID string) (int, error) {
	if productID == "" {
		return 0, errors.Wrap(ErrInvalidInput, "product id required")
	}
	sess, err := s.updateSession(ctx, sessionID, func(sess *models.Session) error {
		RemoveItem(&sess.Cart, productID)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sess.Cart.Len(), nil
}

func (s *Service) Checkout(ctx context.Context, sessionID string) error {
	_, err := s.updateSession(ctx, sessionID, func(sess *models.Session) error {
		Checkout(&sess.Cart)
		return nil
	})
	return err
}

// CartCount is the number of line items in the session's cart, for page headers.
func (s *Service) CartCount(ctx context.Context, sessionID string) (int, error) {
	v, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return v.Count, nil
}

// DTOs

type AddResult struct {
	Count int             `json:"cartCount"`
	Item  models.CartItem `json:"item"`
}

type CartView struct {
	Items []models.CartItem `json:"cart"`
	Total string            `json:"total"`
	Count int               `json:"cartCount"`
	State string            `json:"state"`
}

func newCartView(c *models.Cart) CartView {
	items := c.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return CartView{
		Items: items,
		Total: ComputeTotal(c).StringFixed(2),
		Count: c.Len(),
		State: State(c).String(),
	}
}
