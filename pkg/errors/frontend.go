package errors

import stderrors "errors"

// FrontendError represents an error formatted for frontend consumption
type FrontendError struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status,omitempty"`
	Field   string                 `json:"field,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// ToFrontendError converts an error to a frontend-friendly format
func ToFrontendError(err error) *FrontendError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &FrontendError{
			Type:    string(appErr.Type),
			Code:    appErr.Code,
			Message: appErr.GetUserMessage(),
			Status:  appErr.Status,
			Field:   appErr.Field,
			Context: appErr.Context,
		}
	}

	return &FrontendError{
		Type:    string(ErrTypeApp),
		Code:    "GENERIC_ERROR",
		Message: "An unexpected error occurred. Please try again",
	}
}
