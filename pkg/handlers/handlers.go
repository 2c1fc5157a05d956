package handlers

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"cmsadmin/pkg/api"
	"cmsadmin/pkg/auth"
	"cmsadmin/pkg/controller"
	"cmsadmin/pkg/errors"
	"cmsadmin/pkg/logging"
	"cmsadmin/pkg/middleware"
	"cmsadmin/pkg/models"
	"cmsadmin/pkg/render"
)

// requestTimeout bounds one admin page request, backend calls included
const requestTimeout = time.Minute

// Handlers serves the admin panel
type Handlers struct {
	auth      *auth.Manager
	login     *auth.Client
	api       *api.Client
	registry  *controller.Registry
	renderer  *render.Renderer
	logger    *zap.Logger
	validator *errors.Validator

	content *resource[models.Content, models.ContentFilter]
	notes   *resource[models.Note, models.NoteFilter]
}

// New creates the admin panel handlers
func New(authManager *auth.Manager, login *auth.Client, client *api.Client, registry *controller.Registry, renderer *render.Renderer, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{
		auth:      authManager,
		login:     login,
		api:       client,
		registry:  registry,
		renderer:  renderer,
		logger:    logger.Named("handlers"),
		validator: errors.NewValidator(),
	}
	h.content = newContentResource(h)
	h.notes = newNoteResource(h)
	return h
}

// Routes builds the router
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Middleware(h.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/", redirectTo("/admin/content"))
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.auth))
		r.Get("/", redirectTo("/admin/content"))
		r.Route("/content", h.content.routes)
		r.Route("/notes", h.notes.routes)
	})

	return r
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusSeeOther)
	}
}

// scope is what one authenticated request works with
type scope struct {
	session *models.Session
	tokens  *auth.RequestTokens
	caller  api.Caller
	pages   *controller.Pages
}

func (h *Handlers) scope(w http.ResponseWriter, r *http.Request) scope {
	session := middleware.SessionFrom(r.Context())
	tokens := h.auth.Tokens(w, r)
	return scope{
		session: session,
		tokens:  tokens,
		caller:  h.api.Bind(tokens),
		pages:   h.registry.For(session.ID),
	}
}

// sessionLost answers the request when err or the token source show the
// admin must sign in again. Page state of the session is dropped.
func (h *Handlers) sessionLost(w http.ResponseWriter, r *http.Request, sc scope, err error) bool {
	if !sc.tokens.Expired() && !errors.IsAuth(err) {
		return false
	}
	h.registry.Drop(sc.session.ID)
	if !sc.tokens.Expired() {
		_ = h.auth.Flash(w, r, errors.UserMessage(err))
	}
	if middleware.WantsJSON(r) {
		if err == nil {
			err = errors.ErrSessionExpired
		}
		writeError(w, http.StatusUnauthorized, err)
		return true
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

// logFailure records a failed backend call against a resource
func (h *Handlers) logFailure(resource, action string, err error) {
	if err == nil {
		return
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.Wrap(err, errors.ErrTypeApp, "UNEXPECTED", "unexpected failure")
	}
	appErr.WithContext("resource", resource).WithContext("action", action).Log(h.logger)
}

func (h *Handlers) render(w http.ResponseWriter, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page, data); err != nil {
		h.logger.Error("render failed", zap.String("page", page), zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": errors.ToFrontendError(err)})
}

// recordID reads and validates the {id} URL parameter
func (h *Handlers) recordID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		id = 0
	}
	if err := h.validator.ValidateID(id).Err(); err != nil {
		return 0, err
	}
	return id, nil
}
