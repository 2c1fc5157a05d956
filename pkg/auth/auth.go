package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"cmsadmin/pkg/models"
)

const (
	// SessionName is the cookie holding the admin session
	SessionName = "cms-admin"
	// SessionMaxAge bounds the cookie lifetime; the backend decides token validity
	SessionMaxAge = 12 * time.Hour

	tokenKey   = "admin_token"
	idKey      = "session_id"
	userKey    = "username"
	loginAtKey = "login_at"
)

// Manager keeps the admin's bearer token in a signed cookie session
type Manager struct {
	store  sessions.Store
	logger *zap.Logger
}

// NewManager creates a manager signing cookies with key. secure marks the
// cookie HTTPS-only.
func NewManager(key []byte, secure bool, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, logger: logger.Named("auth")}
}

// session returns the request's session. A cookie that fails verification
// yields a fresh empty session.
func (m *Manager) session(r *http.Request) *sessions.Session {
	s, err := m.store.Get(r, SessionName)
	if err != nil {
		m.logger.Debug("discarding unreadable session cookie", zap.Error(err))
	}
	return s
}

// Current returns the signed-in admin, or nil when no token is stored
func (m *Manager) Current(r *http.Request) *models.Session {
	s := m.session(r)
	token, _ := s.Values[tokenKey].(string)
	if token == "" {
		return nil
	}
	id, _ := s.Values[idKey].(string)
	user, _ := s.Values[userKey].(string)
	loginAt, _ := s.Values[loginAtKey].(int64)
	return &models.Session{
		ID:       id,
		Username: user,
		Token:    token,
		LoginAt:  time.Unix(loginAt, 0),
	}
}

// SignIn stores token for username under a new session id
func (m *Manager) SignIn(w http.ResponseWriter, r *http.Request, username, token string) (*models.Session, error) {
	s := m.session(r)
	sess := &models.Session{
		ID:       uuid.NewString(),
		Username: username,
		Token:    token,
		LoginAt:  time.Now(),
	}
	s.Values[tokenKey] = token
	s.Values[idKey] = sess.ID
	s.Values[userKey] = username
	s.Values[loginAtKey] = sess.LoginAt.Unix()
	if err := s.Save(r, w); err != nil {
		return nil, err
	}
	m.logger.Info("admin signed in", zap.String("user", username), zap.String("session", sess.ID))
	return sess, nil
}

// SignOut removes the token and returns the id of the session that ended
func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request) (string, error) {
	s := m.session(r)
	id, _ := s.Values[idKey].(string)
	clearCredentials(s)
	if err := s.Save(r, w); err != nil {
		return id, err
	}
	m.logger.Info("admin signed out", zap.String("session", id))
	return id, nil
}

// Flash records a one-shot message for the login page
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, msg string) error {
	s := m.session(r)
	s.AddFlash(msg)
	return s.Save(r, w)
}

// TakeFlash returns and consumes the pending login message
func (m *Manager) TakeFlash(w http.ResponseWriter, r *http.Request) string {
	s := m.session(r)
	flashes := s.Flashes()
	if len(flashes) == 0 {
		return ""
	}
	if err := s.Save(r, w); err != nil {
		m.logger.Warn("failed to consume flash", zap.Error(err))
	}
	msg, _ := flashes[len(flashes)-1].(string)
	return msg
}

// Tokens returns the token source for one request. Expiring it clears the
// stored token and leaves the reason as a flash for the login page.
func (m *Manager) Tokens(w http.ResponseWriter, r *http.Request) *RequestTokens {
	// load once so later lookups hit the request's session registry
	m.session(r)
	return &RequestTokens{manager: m, w: w, r: r}
}

func clearCredentials(s *sessions.Session) {
	delete(s.Values, tokenKey)
	delete(s.Values, idKey)
	delete(s.Values, userKey)
	delete(s.Values, loginAtKey)
}

// RequestTokens is the api.TokenSource of a single browser request. It is
// safe for concurrent use by the calls one request fans out.
type RequestTokens struct {
	manager *Manager
	w       http.ResponseWriter
	r       *http.Request

	mu      sync.Mutex
	expired bool
	reason  string
}

// Token returns the stored bearer token, empty once expired
func (t *RequestTokens) Token() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.expired {
		return ""
	}
	token, _ := t.manager.session(t.r).Values[tokenKey].(string)
	return token
}

// Expire drops the token and stores reason as the login flash. Only the
// first call has an effect.
func (t *RequestTokens) Expire(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.expired {
		return
	}
	t.expired = true
	t.reason = reason

	s := t.manager.session(t.r)
	id, _ := s.Values[idKey].(string)
	clearCredentials(s)
	s.AddFlash(reason)
	if err := s.Save(t.r, t.w); err != nil {
		t.manager.logger.Warn("failed to clear expired session", zap.Error(err))
	}
	t.manager.logger.Info("admin session expired", zap.String("session", id), zap.String("reason", reason))
}

// Expired reports whether the backend rejected the token during this request
func (t *RequestTokens) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

// SessionID returns the id of the session behind the request
func (t *RequestTokens) SessionID() string {
	id, _ := t.manager.session(t.r).Values[idKey].(string)
	return id
}
