package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"cmsadmin/pkg/errors"
	"cmsadmin/pkg/models"
	"cmsadmin/pkg/render"
)

// LoginPage serves the login form with any pending reason, shown once
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.auth.Current(r) != nil {
		http.Redirect(w, r, "/admin/content", http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, render.PageLogin, render.LoginView{
		Layout: render.Layout{Title: "Sign in"},
		Reason: h.auth.TakeFlash(w, r),
	})
}

// Login exchanges the posted credentials for a backend token
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	creds := models.Credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}

	resp, err := h.login.Login(r.Context(), creds)
	if err != nil {
		status := http.StatusUnauthorized
		switch errors.TypeOf(err) {
		case errors.ErrTypeValidation:
			status = http.StatusUnprocessableEntity
		case errors.ErrTypeNetwork, errors.ErrTypeHTTP:
			status = http.StatusBadGateway
		}
		h.logger.Info("login failed", zap.String("user", creds.Username), zap.Error(err))
		h.render(w, status, render.PageLogin, render.LoginView{
			Layout:   render.Layout{Title: "Sign in"},
			Username: creds.Username,
			Error:    errors.UserMessage(err),
		})
		return
	}

	if _, err := h.auth.SignIn(w, r, creds.Username, resp.AccessToken); err != nil {
		h.logger.Error("failed to store session", zap.Error(err))
		http.Error(w, "Could not start session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/content", http.StatusSeeOther)
}

// Logout clears the token and the page state of the session
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	id, err := h.auth.SignOut(w, r)
	if err != nil {
		h.logger.Warn("failed to clear session", zap.Error(err))
	}
	if id != "" {
		h.registry.Drop(id)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
