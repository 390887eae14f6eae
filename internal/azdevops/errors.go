package azdevops

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an Azure DevOps REST error response
type APIError struct {
	StatusCode int
	Message    string
	TypeKey    string
}

// Error returns the error message
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("azure devops api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("azure devops api error (status %d)", e.StatusCode)
}

// AuthError wraps 401/403 responses. Fatal: the token is wrong or lacks
// scopes, so retrying cannot help.
type AuthError struct {
	*APIError
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected (status %d): check %s token and its scopes", e.StatusCode, "AZURE_DEVOPS_PAT")
}

// NotFoundError wraps 404 responses (repository or branch absent)
type NotFoundError struct {
	*APIError
	Resource string
}

func (e *NotFoundError) Error() string {
	if e.Resource != "" {
		return "not found: " + e.Resource
	}
	return e.APIError.Error()
}

// TransientServiceError is returned after bounded retries of a read
// operation are exhausted
type TransientServiceError struct {
	Attempts int
	Last     error
}

func (e *TransientServiceError) Error() string {
	return fmt.Sprintf("service unavailable after %d attempts: %v", e.Attempts, e.Last)
}

func (e *TransientServiceError) Unwrap() error { return e.Last }

// SubmissionFailed indicates the create call failed or returned an
// unexpected shape. The create is never retried, so this is terminal.
type SubmissionFailed struct {
	Reason string
	Cause  error
}

func (e *SubmissionFailed) Error() string {
	if e.Cause != nil {
		return "pull request submission failed: " + e.Reason + ": " + e.Cause.Error()
	}
	return "pull request submission failed: " + e.Reason
}

func (e *SubmissionFailed) Unwrap() error { return e.Cause }

// IsAuthError returns true for 401/403 failures
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNotFoundError returns true for 404 failures
func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// asAPIError unwraps err onto *APIError, looking through the typed wrappers
func asAPIError(err error, target **APIError) bool {
	var ae *AuthError
	if errors.As(err, &ae) {
		*target = ae.APIError
		return true
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		*target = nf.APIError
		return true
	}
	return errors.As(err, target)
}

// isTransientStatus reports whether a status class is worth retrying
// on idempotent reads
func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// parseErrorResponse maps a non-2xx response body onto the error taxonomy
func parseErrorResponse(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var azureErr struct {
		Message string `json:"message"`
		TypeKey string `json:"typeKey"`
	}
	if err := json.Unmarshal(body, &azureErr); err == nil && azureErr.Message != "" {
		apiErr.Message = azureErr.Message
		apiErr.TypeKey = azureErr.TypeKey
	} else {
		apiErr.Message = string(body)
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &AuthError{APIError: apiErr}
	case statusCode == http.StatusNotFound:
		return &NotFoundError{APIError: apiErr}
	default:
		return apiErr
	}
}
