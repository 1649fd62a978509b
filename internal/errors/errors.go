package errors

import (
	stderrors "errors"
	"fmt"
)

// AmanError is the structured error type for AmanWeb.
// Pipeline stages swallow most of these and degrade; they surface at the
// request boundary (validation) and in the CLI/HTTP/MCP layers.
type AmanError struct {
	// Code is the unique error code (e.g., "ERR_404_QUERY_EMPTY").
	Code string

	// Message is the human-readable error message.
	Message string

	Category Category
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *AmanError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *AmanError) Unwrap() error {
	return e.Cause
}

// Is matches by code so errors.Is(err, errors.New(code, "", nil)) works.
func (e *AmanError) Is(target error) bool {
	if t, ok := target.(*AmanError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *AmanError) WithDetail(key, value string) *AmanError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *AmanError) WithSuggestion(suggestion string) *AmanError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AmanError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *AmanError {
	return &AmanError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates an AmanError from an existing error.
func Wrap(code string, err error) *AmanError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *AmanError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates an error for a malformed research request.
func ValidationError(code, message string) *AmanError {
	return New(code, message, nil)
}

// LLMError creates an error for a failed language-model call.
func LLMError(message string, cause error) *AmanError {
	return New(ErrCodeLLMUnavailable, message, cause).
		WithSuggestion("Check that Ollama is running (ollama serve) and the model is pulled")
}

// SearchBackendError creates an error for an unreachable search backend.
func SearchBackendError(message string, cause error) *AmanError {
	return New(ErrCodeSearchUnavailable, message, cause).
		WithSuggestion("Check that SearXNG is running and has the JSON format enabled")
}

// asAman finds an AmanError anywhere in the chain.
func asAman(err error) (*AmanError, bool) {
	var ae *AmanError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if ae, ok := asAman(err); ok {
		return ae.Retryable
	}
	return false
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	if ae, ok := asAman(err); ok {
		return ae.Category == CategoryValidation
	}
	return false
}

// GetCode extracts the error code from an AmanError.
// Returns empty string if not an AmanError.
func GetCode(err error) string {
	if ae, ok := asAman(err); ok {
		return ae.Code
	}
	return ""
}

// GetCategory extracts the category from an AmanError.
func GetCategory(err error) Category {
	if ae, ok := asAman(err); ok {
		return ae.Category
	}
	return ""
}
