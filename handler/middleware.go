package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const cookieSessionID = "shop.sid"

var errUnauthenticated = errors.New("login required")

type ctxKeyLog struct{}
type ctxKeyRequestID struct{}
type ctxKeySessionID struct{}

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

func DefaultCookie() CookieOptions {
	return CookieOptions{Name: cookieSessionID, MaxAge: 24 * time.Hour}
}

type responseRecorder struct {
	b      int
	status int
	w      http.ResponseWriter
}

func (r *responseRecorder) Header() http.Header { return r.w.Header() }

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.w.Write(p)
	r.b += n
	return n, err
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.w.WriteHeader(statusCode)
}

// logRequests attaches a request scoped logger and logs completion.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		start := time.Now()
		rr := &responseRecorder{w: w}
		log := h.log.WithFields(logrus.Fields{
			"http.req.path":   r.URL.Path,
			"http.req.method": r.Method,
			"http.req.id":     requestID,
		})
		log.Debug("request started")
		defer func() {
			log.WithFields(logrus.Fields{
				"http.resp.took_ms": int64(time.Since(start) / time.Millisecond),
				"http.resp.status":  rr.status,
				"http.resp.bytes":   rr.b,
			}).Debug("request complete")
		}()

		ctx := context.WithValue(r.Context(), ctxKeyRequestID{}, requestID)
		ctx = context.WithValue(ctx, ctxKeyLog{}, log)
		next.ServeHTTP(rr, r.WithContext(ctx))
	})
}

// ensureSession reads the session cookie or issues a new id.
func (h *Handler) ensureSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		c, err := r.Cookie(h.cookie.Name)
		if err == nil && c.Value != "" {
			sid = c.Value
		} else {
			sid = uuid.New().String()
		}
		// refresh on every request; stores extend the session TTL on Load to match
		h.setSessionCookie(w, sid)

		ctx := context.WithValue(r.Context(), ctxKeySessionID{}, sid)
		if log, ok := ctx.Value(ctxKeyLog{}).(logrus.FieldLogger); ok {
			ctx = context.WithValue(ctx, ctxKeyLog{}, log.WithField("session", sid))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// setSessionCookie replaces any session cookie already queued on w.
func (h *Handler) setSessionCookie(w http.ResponseWriter, sid string) {
	w.Header().Del("Set-Cookie")
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// authenticated rejects anonymous sessions with 401.
func (h *Handler) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := h.svc.CurrentUser(r.Context(), sessionID(r))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if u == nil {
			h.fail(w, r, errUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithCORS wraps the router. An origin of "*" allows any origin; credentials
// are only allowed for explicit origin lists.
func WithCORS(next http.Handler, origins []string) http.Handler {
	allowAll := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: !allowAll,
	}).Handler(next)
}

func sessionID(r *http.Request) string {
	if v, ok := r.Context().Value(ctxKeySessionID{}).(string); ok {
		return v
	}
	return ""
}

// logFrom returns the request logger, or the standard logger outside a request.
func logFrom(r *http.Request) logrus.FieldLogger {
	if log, ok := r.Context().Value(ctxKeyLog{}).(logrus.FieldLogger); ok {
		return log
	}
	return logrus.StandardLogger()
}
