package middleware

import (
	"net/http"

	"github.com/de-tools/traffic-atlas/pkg/handlers"
	"github.com/de-tools/traffic-atlas/pkg/services/session"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const (
	CookieName   = "traffic_atlas"
	sessionIDKey = "sid"
)

// Sessions resolves the caller's session.Session from a signed cookie,
// starting a new anonymous one when the cookie is missing, tampered with or
// points at an expired session.
func Sessions(store sessions.Store, manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger := zerolog.Ctx(req.Context())

			cookie, err := store.Get(req, CookieName)
			if err != nil {
				logger.Debug().Err(err).Msg("discarding unreadable session cookie")
			}

			id, _ := cookie.Values[sessionIDKey].(string)
			sess, ok := manager.Get(id)
			if !ok {
				sess = manager.Create()
				cookie.Values[sessionIDKey] = sess.ID
				if err := cookie.Save(req, w); err != nil {
					logger.Error().Err(err).Msg("failed to save session cookie")
					handlers.WriteMessage(w, req, http.StatusInternalServerError, "could not start session")
					return
				}
			}

			next.ServeHTTP(w, req.WithContext(session.WithSession(req.Context(), sess)))
		})
	}
}

// BindCookie returns a func that points the caller's cookie at sess. Handlers
// call it after the session ID changes, e.g. on login.
func BindCookie(store sessions.Store) func(http.ResponseWriter, *http.Request, *session.Session) error {
	return func(w http.ResponseWriter, req *http.Request, sess *session.Session) error {
		cookie, err := store.Get(req, CookieName)
		if err != nil {
			zerolog.Ctx(req.Context()).Debug().Err(err).Msg("replacing unreadable session cookie")
		}
		cookie.Values[sessionIDKey] = sess.ID
		return cookie.Save(req, w)
	}
}

// RequireAuth rejects requests whose session has not logged in.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		sess, ok := session.FromContext(req.Context())
		if !ok || !sess.Authenticated() {
			handlers.WriteMessage(w, req, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, req)
	})
}

// NewCookieStore returns the signed cookie store holding session IDs.
func NewCookieStore(secret []byte, maxAge int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
