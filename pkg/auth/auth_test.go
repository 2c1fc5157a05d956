package auth

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmsadmin/pkg/api"
	"cmsadmin/pkg/errors"
	"cmsadmin/pkg/models"
)

func newManager() *Manager {
	return NewManager(securecookie.GenerateRandomKey(32), false, nil)
}

// nextRequest builds a request carrying the cookies set on rec
func nextRequest(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin/content", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSignInAndOut(t *testing.T) {
	m := newManager()

	assert.Nil(t, m.Current(httptest.NewRequest(http.MethodGet, "/", nil)))

	rec := httptest.NewRecorder()
	sess, err := m.SignIn(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "admin", "tok-1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)

	cookie := rec.Result().Cookies()[0]
	assert.Equal(t, SessionName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.NotContains(t, cookie.Value, "tok-1")

	current := m.Current(nextRequest(rec))
	require.NotNil(t, current)
	assert.Equal(t, "admin", current.Username)
	assert.Equal(t, "tok-1", current.Token)
	assert.Equal(t, sess.ID, current.ID)

	out := httptest.NewRecorder()
	id, err := m.SignOut(out, nextRequest(rec))
	require.NoError(t, err)
	assert.Equal(t, sess.ID, id)
	assert.Nil(t, m.Current(nextRequest(out)))
}

func TestTamperedCookieIsIgnored(t *testing.T) {
	rec := httptest.NewRecorder()
	_, err := newManager().SignIn(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "admin", "tok")
	require.NoError(t, err)

	assert.Nil(t, newManager().Current(nextRequest(rec)))
}

func TestFlashIsConsumedOnce(t *testing.T) {
	m := newManager()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Flash(rec, httptest.NewRequest(http.MethodGet, "/", nil), "No active session"))

	first := httptest.NewRecorder()
	assert.Equal(t, "No active session", m.TakeFlash(first, nextRequest(rec)))
	assert.Equal(t, "", m.TakeFlash(httptest.NewRecorder(), nextRequest(first)))
}

func TestRequestTokensExpireOnce(t *testing.T) {
	m := newManager()
	rec := httptest.NewRecorder()
	_, err := m.SignIn(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "admin", "tok")
	require.NoError(t, err)

	out := httptest.NewRecorder()
	tokens := m.Tokens(out, nextRequest(rec))
	assert.Equal(t, "tok", tokens.Token())
	assert.NotEmpty(t, tokens.SessionID())

	tokens.Expire(api.ExpiredReason)
	tokens.Expire("second reason")
	assert.True(t, tokens.Expired())
	assert.Empty(t, tokens.Token())

	next := nextRequest(out)
	assert.Nil(t, m.Current(next))
	assert.Equal(t, api.ExpiredReason, m.TakeFlash(httptest.NewRecorder(), next))
}

func loginBackend(t *testing.T, handler http.HandlerFunc) *api.Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.New(srv.URL, srv.Client(), nil)
}

func TestLoginFormMode(t *testing.T) {
	c := loginBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") == "admin" && r.PostForm.Get("password") == "secret" {
			w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	})
	client := NewClient(c, ModeForm)

	resp, err := client.Login(context.Background(), models.Credentials{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-123", resp.AccessToken)

	_, err = client.Login(context.Background(), models.Credentials{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidCredentials))
	assert.Equal(t, "Incorrect username or password", errors.UserMessage(err))
}

func TestLoginJSONMode(t *testing.T) {
	c := loginBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"access_token":"json-token"}`))
	})

	resp, err := NewClient(c, ModeJSON).Login(context.Background(), models.Credentials{Username: "a", Password: "b"})
	require.NoError(t, err)
	assert.Equal(t, "json-token", resp.AccessToken)
}

func TestLoginFailures(t *testing.T) {
	creds := models.Credentials{Username: "admin", Password: "secret"}

	_, err := NewClient(api.New("http://127.0.0.1:1", nil, nil), "").Login(context.Background(), models.Credentials{Username: "admin"})
	assert.Equal(t, errors.ErrTypeValidation, errors.TypeOf(err))

	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"no token", http.StatusOK, `{"token_type":"bearer"}`, func(t *testing.T, err error) {
			assert.True(t, stderrors.Is(err, errors.ErrMissingToken))
		}},
		{"not json", http.StatusOK, `not json`, func(t *testing.T, err error) {
			assert.True(t, stderrors.Is(err, errors.ErrMissingToken))
		}},
		{"forbidden without detail", http.StatusForbidden, ``, func(t *testing.T, err error) {
			assert.Equal(t, "Invalid credentials", errors.UserMessage(err))
		}},
		{"server error", http.StatusInternalServerError, `{"message":"db down"}`, func(t *testing.T, err error) {
			assert.Equal(t, errors.ErrTypeHTTP, errors.TypeOf(err))
			assert.Equal(t, "db down", errors.UserMessage(err))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loginBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := NewClient(c, "").Login(context.Background(), creds)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
