package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmsadmin/pkg/models"
)

type stubManager struct {
	session *models.Session
	flashes []string
}

func (m *stubManager) Current(r *http.Request) *models.Session { return m.session }

func (m *stubManager) Flash(w http.ResponseWriter, r *http.Request, msg string) error {
	m.flashes = append(m.flashes, msg)
	return nil
}

func protected(m AuthManager) http.Handler {
	return RequireAuth(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFrom(r.Context())
		if s == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("hello " + s.Username))
	}))
}

func TestRequireAuthRedirectsPages(t *testing.T) {
	m := &stubManager{}
	rec := httptest.NewRecorder()
	protected(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/notes", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, []string{"No active session"}, m.flashes)
}

func TestRequireAuthRejectsJSON(t *testing.T) {
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/admin/content/state", nil),
		func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/admin/content", nil)
			r.Header.Set("Accept", "application/json")
			return r
		}(),
	} {
		m := &stubManager{}
		rec := httptest.NewRecorder()
		protected(m).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, req.URL.Path)
		assert.Empty(t, m.flashes)
	}
}

func TestRequireAuthPassesSession(t *testing.T) {
	m := &stubManager{session: &models.Session{ID: "s1", Username: "admin", Token: "t"}}
	rec := httptest.NewRecorder()
	protected(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/content", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello admin", rec.Body.String())
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		header string
		value  string
		want   bool
	}{
		{"plain page", "/admin/content", "", "", false},
		{"browser accept", "/admin/content", "Accept", "text/html,application/xhtml+xml,*/*;q=0.8", false},
		{"exact accept", "/admin/content", "Accept", "application/json", true},
		{"accept list", "/admin/content", "Accept", "text/plain, application/json, */*", true},
		{"json body with charset", "/admin/content", "Content-Type", "application/json; charset=utf-8", true},
		{"state endpoint", "/admin/notes/state", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				r.Header.Set(tt.header, tt.value)
			}
			assert.Equal(t, tt.want, WantsJSON(r))
		})
	}
}
