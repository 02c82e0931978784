package guard

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/techhatch/jwt"
	"github.com/MrEthical07/techhatch/session"
)

// DefaultCookieName is the cookie consulted when the request has no bearer header.
const DefaultCookieName = "th_token"

type sessionContextKey struct{}

// SessionFromContext returns the session the middleware attached to ctx.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return s, ok && s != nil
}

// Options configures the HTTP adapters.
type Options struct {
	Table      *Table
	CookieName string
	Now        func() time.Time
	// PassUnknown lets paths outside the table through instead of answering 404.
	PassUnknown bool
}

func (o Options) normalize() Options {
	if o.Table == nil {
		o.Table = DefaultTable()
	}
	if o.CookieName == "" {
		o.CookieName = DefaultCookieName
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// SessionFromToken decodes a raw credential into a session, treating expired,
// malformed and role-less credentials as no session.
func SessionFromToken(token string, now time.Time) *session.Session {
	if token == "" || jwt.IsExpired(token, now) {
		return nil
	}
	s, err := session.FromToken(token)
	if err != nil || !s.Role.Valid() {
		return nil
	}
	return s
}

// Middleware guards page routes served over net/http.
func Middleware(opts Options) func(http.Handler) http.Handler {
	opts = opts.normalize()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				if c, err := r.Cookie(opts.CookieName); err == nil {
					token = c.Value
				}
			}
			sess := SessionFromToken(token, opts.Now())

			d := opts.Table.Resolve(r.URL.Path, sess, false)
			switch d.Outcome {
			case Redirect:
				http.Redirect(w, r, d.Location, http.StatusFound)
				return
			case NotFound:
				if !opts.PassUnknown {
					http.NotFound(w, r)
					return
				}
			}

			ctx := r.Context()
			if sess != nil {
				ctx = context.WithValue(ctx, sessionContextKey{}, sess)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
