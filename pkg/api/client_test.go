package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmsadmin/pkg/errors"
)

type countingTokens struct {
	token   string
	expired int
	reason  string
}

func (t *countingTokens) Token() string { return t.token }

func (t *countingTokens) Expire(reason string) {
	t.expired++
	t.reason = reason
	t.token = ""
}

func TestDoWithoutTokenSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	s := New(srv.URL, srv.Client(), nil).Bind(&countingTokens{})
	_, err := s.Get(context.Background(), "/content")

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNoSession))
	assert.Equal(t, int32(0), hits.Load())
}

func TestDoSendsBearerAndRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["title"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7}`))
	}))
	defer srv.Close()

	s := New(srv.URL+"/", srv.Client(), nil).Bind(&countingTokens{token: "abc"})
	resp, err := s.Post(context.Background(), "/content", map[string]string{"title": "hello"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)

	var out struct{ ID int }
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, 7, out.ID)
}

func TestDoExpiresSessionOnAuthFailure(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"detail":"Not authenticated"}`))
		}))

		tokens := &countingTokens{token: "abc"}
		_, err := New(srv.URL, srv.Client(), nil).Bind(tokens).Get(context.Background(), "/notes")
		srv.Close()

		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrSessionExpired), "status %d", status)
		assert.True(t, errors.IsAuth(err))
		assert.Equal(t, status, errors.StatusOf(err))
		assert.Equal(t, 1, tokens.expired)
		assert.Equal(t, ExpiredReason, tokens.reason)
	}
}

func TestDoMapsErrorBodies(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", 400, `{"detail":"Key already exists"}`, "Key already exists"},
		{"detail list", 422, `{"detail":[{"msg":"field required"},{"msg":"too long"}]}`, "field required, too long"},
		{"message", 500, `{"message":"boom"}`, "boom"},
		{"detail wins", 409, `{"detail":"dup","message":"other"}`, "dup"},
		{"no json", 502, `<html>bad gateway</html>`, "Error 502: Bad Gateway"},
		{"empty", 404, ``, "Error 404: Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tokens := &countingTokens{token: "abc"}
			_, err := New(srv.URL, srv.Client(), nil).Bind(tokens).Get(context.Background(), "/content/1")
			require.Error(t, err)
			assert.Equal(t, errors.ErrTypeHTTP, errors.TypeOf(err))
			assert.Equal(t, tt.want, errors.UserMessage(err))
			assert.Equal(t, tt.status, errors.StatusOf(err))
			assert.Zero(t, tokens.expired)
		})
	}
}

func TestDoNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := New(srv.URL, srv.Client(), nil).Bind(&countingTokens{token: "abc"}).Delete(context.Background(), "/notes/3")
	require.NoError(t, err)
	assert.True(t, resp.NoContent())

	var v any
	assert.True(t, stderrors.Is(resp.Decode(&v), errors.ErrInvalidResponse))
}

func TestDoNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, nil, nil).Bind(&countingTokens{token: "abc"}).Get(context.Background(), "/content")
	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeNetwork, errors.TypeOf(err))
	assert.Equal(t, "Connection error. Please try again", errors.UserMessage(err))
	assert.True(t, stderrors.Is(err, errors.ErrNetwork))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage([]byte(`[1,2]`)))
	assert.Equal(t, "", ErrorMessage([]byte(`{"detail":null}`)))
	assert.Equal(t, `{"code":1}`, ErrorMessage([]byte(`{"detail":{"code":1}}`)))
	assert.Equal(t, "", ErrorMessage([]byte(`{"message":""}`)))
}

func TestNewWithTimeoutGivesUp(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewWithTimeout(srv.URL, 50*time.Millisecond, nil)
	assert.Equal(t, 50*time.Millisecond, c.HTTPClient().Timeout)

	_, err := c.Bind(&countingTokens{token: "abc"}).Get(context.Background(), "/content")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNetwork))
}

func TestStaticToken(t *testing.T) {
	var got string
	tok := NewStaticToken("abc", func(reason string) { got = reason })
	assert.Equal(t, "abc", tok.Token())

	tok.Expire("gone")
	assert.Empty(t, tok.Token())
	assert.Equal(t, "gone", tok.Reason())
	assert.Equal(t, "gone", got)
}
