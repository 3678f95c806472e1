package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/de-tools/traffic-atlas/pkg/handlers"
	"github.com/de-tools/traffic-atlas/pkg/models/api"
	"github.com/de-tools/traffic-atlas/pkg/services/session"
)

// CookieBinder writes the ID of sess into the caller's session cookie.
type CookieBinder func(w http.ResponseWriter, r *http.Request, sess *session.Session) error

type Handler struct {
	sessions *session.Manager
	bind     CookieBinder
}

func NewHandler(sessions *session.Manager, bind CookieBinder) *Handler {
	return &Handler{sessions: sessions, bind: bind}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := session.FromContext(ctx)
	if !ok {
		handlers.WriteMessage(w, r, http.StatusInternalServerError, "request has no session")
		return
	}

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteMessage(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	authed, err := h.sessions.Login(ctx, sess, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			handlers.WriteMessage(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		handlers.WriteError(w, r, err)
		return
	}

	if err := h.bind(w, r, authed); err != nil {
		handlers.WriteError(w, r, fmt.Errorf("save session cookie: %w", err))
		return
	}
	handlers.WriteJSON(w, r, http.StatusOK, toApi(authed))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := session.FromContext(ctx)
	if !ok {
		handlers.WriteMessage(w, r, http.StatusInternalServerError, "request has no session")
		return
	}

	h.sessions.Logout(ctx, sess)
	handlers.WriteJSON(w, r, http.StatusOK, toApi(sess))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		handlers.WriteJSON(w, r, http.StatusOK, api.Session{State: session.Anonymous.String()})
		return
	}
	handlers.WriteJSON(w, r, http.StatusOK, toApi(sess))
}

func toApi(s *session.Session) api.Session {
	return api.Session{State: s.State().String(), User: s.User()}
}
