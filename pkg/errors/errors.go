package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// Missing or rejected credentials
	ErrTypeAuth ErrorType = "authentication"
	// Non-2xx answers from the backend
	ErrTypeHTTP ErrorType = "http"
	// Transport failures (DNS, refused connection, timeout)
	ErrTypeNetwork ErrorType = "network"
	// Undecodable payloads
	ErrTypeDecode ErrorType = "decode"
	// Configuration errors
	ErrTypeConfig ErrorType = "configuration"
	// Validation errors
	ErrTypeValidation ErrorType = "validation"
	// Generic application errors
	ErrTypeApp ErrorType = "application"
)

// AppError represents a structured application error
type AppError struct {
	Type        ErrorType              `json:"type"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	UserMessage string                 `json:"userMessage"`
	Status      int                    `json:"status,omitempty"`
	Field       string                 `json:"field,omitempty"`
	InternalErr error                  `json:"-"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.InternalErr != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.InternalErr)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap exposes the wrapped cause
func (e *AppError) Unwrap() error {
	return e.InternalErr
}

// Is matches errors of the same type and code, so the predefined values
// below work with errors.Is
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Code == e.Code
}

// GetUserMessage returns a user-friendly error message
func (e *AppError) GetUserMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.Message
}

// WithContext returns a copy carrying an extra context entry
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	c := e.clone()
	if c.Context == nil {
		c.Context = make(map[string]interface{})
	}
	c.Context[key] = value
	return c
}

// WithUserMessage returns a copy with a user-friendly message
func (e *AppError) WithUserMessage(msg string) *AppError {
	c := e.clone()
	c.UserMessage = msg
	return c
}

// WithStatus returns a copy recording the HTTP status that caused it
func (e *AppError) WithStatus(status int) *AppError {
	c := e.clone()
	c.Status = status
	return c
}

// WithInternal returns a copy wrapping the underlying cause
func (e *AppError) WithInternal(err error) *AppError {
	c := e.clone()
	c.InternalErr = err
	return c
}

// WithField returns a copy naming the offending form field
func (e *AppError) WithField(field string) *AppError {
	c := e.clone()
	c.Field = field
	return c
}

func (e *AppError) clone() *AppError {
	c := *e
	if e.Context != nil {
		c.Context = make(map[string]interface{}, len(e.Context))
		for k, v := range e.Context {
			c.Context[k] = v
		}
	}
	return &c
}

// Log writes the error to logger at a level matching its type
func (e *AppError) Log(logger *zap.Logger) {
	if e == nil || logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("type", string(e.Type)),
		zap.String("code", e.Code),
	}
	if e.Status != 0 {
		fields = append(fields, zap.Int("status", e.Status))
	}
	if e.InternalErr != nil {
		fields = append(fields, zap.Error(e.InternalErr))
	}
	for k, v := range e.Context {
		fields = append(fields, zap.Any(k, v))
	}

	switch e.Type {
	case ErrTypeValidation, ErrTypeAuth:
		logger.Warn(e.Message, fields...)
	default:
		logger.Error(e.Message, fields...)
	}
}

// New creates a new AppError
func New(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:        errType,
		Code:        code,
		Message:     message,
		InternalErr: err,
	}
}

// HTTPError builds the error for a non-2xx backend answer
func HTTPError(status int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("Error %d: %s", status, http.StatusText(status))
	}
	return New(ErrTypeHTTP, "HTTP_ERROR", message).WithStatus(status)
}

// Predefined errors for common scenarios
var (
	ErrNoSession = New(ErrTypeAuth, "NO_SESSION", "no active session").
			WithUserMessage("No active session")

	ErrSessionExpired = New(ErrTypeAuth, "SESSION_EXPIRED", "session expired").
				WithUserMessage("Session expired")

	ErrInvalidCredentials = New(ErrTypeAuth, "INVALID_CREDENTIALS", "invalid credentials").
				WithUserMessage("Invalid credentials")

	ErrMissingToken = New(ErrTypeAuth, "MISSING_TOKEN", "login response carried no access token").
			WithUserMessage("Invalid response: no token received")

	ErrNetwork = New(ErrTypeNetwork, "NETWORK", "request failed").
			WithUserMessage("Connection error. Please try again")

	ErrInvalidResponse = New(ErrTypeDecode, "INVALID_RESPONSE", "invalid response from server").
				WithUserMessage("Invalid response from server")

	ErrConfigInvalid = New(ErrTypeConfig, "CONFIG_INVALID", "invalid configuration")

	ErrConfigLoadFailed = New(ErrTypeConfig, "CONFIG_LOAD_FAILED", "failed to load configuration").
				WithUserMessage("Configuration file could not be loaded")
)

// IsAuth reports whether err means the visitor must log in again
func IsAuth(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Type == ErrTypeAuth
}

// StatusOf returns the backend status carried by err, or 0
func StatusOf(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}

// UserMessage returns the text to show for any error
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.GetUserMessage()
	}
	return err.Error()
}

// TypeOf returns the taxonomy type of err, or "" when err is not an AppError
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
