package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	models "storefront/model"
	"storefront/service"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Handler is the HTTP layer that talks to service.Service
type Handler struct {
	svc         service.ServiceInterface
	log         *logrus.Logger
	requireAuth bool
	cookie      CookieOptions
}

type Option func(*Handler)

// WithCartAuth puts every /cart route behind a logged in session.
func WithCartAuth(on bool) Option { return func(h *Handler) { h.requireAuth = on } }

func WithCookie(c CookieOptions) Option { return func(h *Handler) { h.cookie = c } }

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface, log *logrus.Logger, opts ...Option) *Handler {
	h := &Handler{svc: s, log: log, cookie: DefaultCookie()}
	for _, o := range opts {
		o(h)
	}
	return h
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }).Methods("GET")

	app := r.NewRoute().Subrouter()
	app.Use(h.logRequests, h.ensureSession)

	app.HandleFunc("/", h.Home).Methods("GET")
	app.HandleFunc("/shop", h.Shop).Methods("GET")

	// Products
	app.HandleFunc("/products", h.CreateProduct).Methods("POST")
	app.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")

	// Cart
	cart := app.PathPrefix("/cart").Subrouter()
	if h.requireAuth {
		cart.Use(h.authenticated)
	}
	cart.HandleFunc("", h.ViewCart).Methods("GET")
	cart.HandleFunc("/add/{id}", h.AddToCart).Methods("POST")
	cart.HandleFunc("/remove/{id}", h.RemoveFromCart).Methods("POST")
	cart.HandleFunc("/checkout", h.Checkout).Methods("POST")

	// Users
	app.HandleFunc("/register", h.Register).Methods("POST")
	app.HandleFunc("/login", h.Login).Methods("POST")
	app.HandleFunc("/logout", h.Logout).Methods("GET")
}

// --- request / response shapes ---
type createProductReq struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Featured    bool            `json:"featured"`
}

type loginReq struct {
	Login    string `json:"username"`
	Password string `json:"password"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]interface{}{"success": false, "error": msg})
}

// statusFor maps service errors onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrPasswordTooShort):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and writes it out. Internal errors are not echoed to clients.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	log := logFrom(r)
	if code >= http.StatusInternalServerError {
		log.WithField("error", err).Error("request error")
		writeErr(w, code, http.StatusText(code))
		return
	}
	log.WithField("error", err).Debug("request rejected")
	writeErr(w, code, err.Error())
}

// header collects what every page shows: the user and the cart size.
func (h *Handler) header(r *http.Request) (map[string]interface{}, error) {
	sid := sessionID(r)
	user, err := h.svc.CurrentUser(r.Context(), sid)
	if err != nil {
		return nil, err
	}
	count, err := h.svc.CartCount(r.Context(), sid)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"user": user, "cartCount": count}, nil
}

// --- Handler ---

// Home handles GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	data, err := h.header(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// Shop handles GET /shop
func (h *Handler) Shop(w http.ResponseWriter, r *http.Request) {
	data, err := h.header(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ps, err := h.svc.ListProducts(r.Context())
	if err != nil {
		h.fail(w, r, errors.Wrap(err, "could not retrieve products"))
		return
	}
	data["products"] = ps
	writeJSON(w, http.StatusOK, data)
}

// GetProduct handles GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.svc.CreateProduct(r.Context(), models.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Image:       req.Image,
		Featured:    req.Featured,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	logFrom(r).WithField("product", id).Info("product created")
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// ViewCart handles GET /cart
func (h *Handler) ViewCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetCart(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, errors.Wrap(err, "could not retrieve cart"))
		return
	}
	user, err := h.svc.CurrentUser(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cart":      view.Items,
		"total":     view.Total,
		"cartCount": view.Count,
		"user":      user,
	})
}

// AddToCart handles POST /cart/add/{id}
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := h.svc.AddToCart(r.Context(), sessionID(r), id)
	if errors.Is(err, service.ErrNotFound) {
		logFrom(r).WithField("product", id).Debug("add to cart: unknown product")
		writeErr(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.fail(w, r, errors.Wrap(err, "error adding to cart"))
		return
	}
	logFrom(r).WithField("product", id).WithField("quantity", res.Item.Quantity).Debug("added to cart")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"cartCount": res.Count,
		"message":   fmt.Sprintf("%s added to cart!", res.Item.Name),
	})
}

// RemoveFromCart handles POST /cart/remove/{id}
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.RemoveFromCart(r.Context(), sessionID(r), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, errors.Wrap(err, "error removing from cart"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "cartCount": n})
}

// Checkout handles POST /cart/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Checkout(r.Context(), sessionID(r)); err != nil {
		h.fail(w, r, errors.Wrap(err, "checkout failed"))
		return
	}
	logFrom(r).Info("checkout complete")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "cartCount": 0})
}

// Register handles POST /register
// body: { "username": "...", "email": "...", "password": "...", "password2": "..." }
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	logFrom(r).WithField("user", u.ID).Info("user registered")
	writeJSON(w, http.StatusCreated, map[string]string{"id": u.ID})
}

// Login handles POST /login
// body: { "username": "<username or email>", "password": "..." }
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.svc.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sid, err := h.svc.Login(r.Context(), sessionID(r), u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.setSessionCookie(w, sid)
	logFrom(r).WithField("user", u.ID).Info("user logged in")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": u})
}

// Logout handles GET /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), sessionID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
