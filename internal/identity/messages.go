// Package identity maps identity provider failures to user-facing messages.
package identity

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Provider error codes.
const (
	CodeEmailInUse    = "auth/email-already-in-use"
	CodeWeakPassword  = "auth/weak-password"
	CodeInvalidEmail  = "auth/invalid-email"
	CodeUserNotFound  = "auth/user-not-found"
	CodeWrongPassword = "auth/wrong-password"
)

// User-facing messages.
const (
	MsgEmailInUse     = "This email is already registered"
	MsgWeakPassword   = "Password must be at least 6 characters"
	MsgInvalidEmail   = "Invalid email"
	MsgBadCredentials = "Email or password incorrect"
	MsgGeneric        = "Something went wrong. Please try again."
	MsgNameRequired   = "Please enter your name"
)

var messages = map[string]string{
	CodeEmailInUse:    MsgEmailInUse,
	CodeWeakPassword:  MsgWeakPassword,
	CodeInvalidEmail:  MsgInvalidEmail,
	CodeUserNotFound:  MsgBadCredentials,
	CodeWrongPassword: MsgBadCredentials,
}

// ProviderError is a failure reported by the identity provider.
type ProviderError struct {
	Code string
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity provider: %s: %v", e.Code, e.Err)
	}
	return "identity provider: " + e.Code
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Message returns the message for code. Unknown codes get MsgGeneric.
func Message(code string) string {
	if m, ok := messages[strings.TrimSpace(code)]; ok {
		return m
	}
	return MsgGeneric
}

// MessageFor returns the message for err. Errors that do not carry a
// ProviderError get MsgGeneric; nil yields an empty string.
func MessageFor(err error) string {
	if err == nil {
		return ""
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return Message(pe.Code)
	}
	return MsgGeneric
}

// ValidateSignUp checks the fields the storefront requires before calling
// the provider. It returns the message to show, or "" when valid.
func ValidateSignUp(displayName string) string {
	if strings.TrimSpace(displayName) == "" {
		return MsgNameRequired
	}
	return ""
}
