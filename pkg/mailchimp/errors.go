package mailchimp

import (
	"errors"
	"fmt"
)

// ErrNoCampaigns is returned when the list exists but has no sent campaigns
// to report on, or when the list itself is unknown to the API.
var ErrNoCampaigns = errors.New("no campaigns found for list")

// TransientError wraps network, timeout and 5xx failures. A later retry of
// the whole invocation may succeed.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient mailchimp error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// AuthError reports a 401/403 response, meaning the API key is invalid or
// not allowed to read the list.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("mailchimp authentication failed: status %d", e.StatusCode)
}

// ProtocolError reports a response the client could not interpret: a body
// that fails to decode or a status outside the expected set.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected mailchimp response: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
