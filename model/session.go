package models

import "time"

// Session is the server side state behind a session cookie.
type Session struct {
	ID        string    `json:"id"`
	Cart      Cart      `json:"cart"`
	UserID    string    `json:"user_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession returns an anonymous session with an empty cart.
func NewSession(id string) Session {
	return Session{ID: id, Cart: Cart{Items: []CartItem{}}}
}
