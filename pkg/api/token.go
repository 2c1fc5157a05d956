package api

import "sync"

// StaticToken is a TokenSource for non-browser callers such as the CLI
type StaticToken struct {
	mu       sync.Mutex
	token    string
	reason   string
	onExpire func(reason string)
}

// NewStaticToken wraps token; onExpire, if set, runs when the backend rejects it
func NewStaticToken(token string, onExpire func(reason string)) *StaticToken {
	return &StaticToken{token: token, onExpire: onExpire}
}

// Token returns the current token, empty once expired
func (t *StaticToken) Token() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

// Expire drops the token and records the reason
func (t *StaticToken) Expire(reason string) {
	t.mu.Lock()
	t.token = ""
	t.reason = reason
	fn := t.onExpire
	t.mu.Unlock()

	if fn != nil {
		fn(reason)
	}
}

// Reason returns why the token was expired, if it was
func (t *StaticToken) Reason() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}
