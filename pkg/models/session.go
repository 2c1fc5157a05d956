package models

import "time"

// Credentials are the admin's login form values
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the backend's answer to a successful login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Session describes an authenticated admin panel visitor
type Session struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Token    string    `json:"-"` // never serialized
	LoginAt  time.Time `json:"login_at"`
}
