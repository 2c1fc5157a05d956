package errors

import (
	"strings"
	"time"
)

// ValidationResult holds validation results
type ValidationResult struct {
	IsValid bool
	Errors  []*AppError
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(err *AppError) {
	vr.IsValid = false
	vr.Errors = append(vr.Errors, err)
}

// GetFirstError returns the first error or nil
func (vr *ValidationResult) GetFirstError() *AppError {
	if len(vr.Errors) > 0 {
		return vr.Errors[0]
	}
	return nil
}

// Err returns the first error as an error value, or nil when valid
func (vr *ValidationResult) Err() error {
	if first := vr.GetFirstError(); first != nil {
		return first
	}
	return nil
}

// Validator provides validation utilities
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

func required(field, label string) *AppError {
	return New(ErrTypeValidation, "FIELD_REQUIRED", field+" is required").
		WithUserMessage(label).
		WithField(field)
}

// ValidateCredentials checks the login form
func (v *Validator) ValidateCredentials(username, password string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(username) == "" || password == "" {
		result.AddError(New(ErrTypeValidation, "CREDENTIALS_REQUIRED", "username and password are required").
			WithUserMessage("Please fill in all fields"))
	}

	return result
}

// ValidateContentForm checks the required content fields: type, page, key and title
func (v *Validator) ValidateContentForm(contentType, page, key, title string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(contentType) == "" {
		result.AddError(required("type", "Please select a content type"))
	}
	if strings.TrimSpace(page) == "" {
		result.AddError(required("page", "Please select a page"))
	}
	if strings.TrimSpace(key) == "" {
		result.AddError(required("key", "Please enter a key"))
	}
	if strings.TrimSpace(title) == "" {
		result.AddError(required("title", "Please enter a title"))
	}

	return result
}

// ValidateNoteForm checks the required note fields: type and title.
// A date, when present, must be YYYY-MM-DD.
func (v *Validator) ValidateNoteForm(noteType, title, date string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(noteType) == "" {
		result.AddError(required("type", "Please select a note type"))
	}
	if strings.TrimSpace(title) == "" {
		result.AddError(required("title", "Please enter a title"))
	}
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			result.AddError(New(ErrTypeValidation, "DATE_INVALID", "date must be YYYY-MM-DD").
				WithUserMessage("Please enter a valid date").
				WithField("date").
				WithContext("date", date))
		}
	}

	return result
}

// ValidateID validates a record identifier taken from a URL
func (v *Validator) ValidateID(id int) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if id <= 0 {
		result.AddError(New(ErrTypeValidation, "ID_INVALID", "invalid record id").
			WithUserMessage("Invalid record id").
			WithContext("id", id))
	}

	return result
}
