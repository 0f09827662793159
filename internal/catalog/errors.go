package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// codeVerificationRequired is the service error code sent for accounts
// with two-factor protection enabled.
const codeVerificationRequired = 1029

// AuthError is a structured authorization rejection from the catalog
// service. Callers react to it by re-authenticating; any other failure
// at a session-establishment call site is fatal.
type AuthError struct {
	Code    int
	Message string
}

func (e *AuthError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("authorization rejected (code %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("authorization rejected: %s", e.Message)
}

// NeedsVerificationCode reports whether the rejection asks for a
// second-factor code. The structured code is checked first; the
// message match is a fallback for backends that only return text.
func (e *AuthError) NeedsVerificationCode() bool {
	if e.Code == codeVerificationRequired {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "verification code")
}

// IsAuthRejected reports whether err is an authorization rejection.
func IsAuthRejected(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// AsAuthError extracts the typed rejection from err, if present.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
