package identity

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{code: CodeEmailInUse, want: MsgEmailInUse},
		{code: CodeWeakPassword, want: MsgWeakPassword},
		{code: CodeInvalidEmail, want: MsgInvalidEmail},
		{code: CodeUserNotFound, want: MsgBadCredentials},
		{code: CodeWrongPassword, want: MsgBadCredentials},
		{code: "auth/too-many-requests", want: MsgGeneric},
		{code: "", want: MsgGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.code))
		})
	}
}

func TestMessageFor(t *testing.T) {
	wrapped := errors.Wrap(&ProviderError{Code: CodeWrongPassword}, "sign in")

	assert.Equal(t, MsgBadCredentials, MessageFor(wrapped))
	assert.Equal(t, MsgGeneric, MessageFor(errors.New("network down")))
	assert.Empty(t, MessageFor(nil))
}

func TestProviderError(t *testing.T) {
	cause := errors.New("400")
	err := &ProviderError{Code: CodeInvalidEmail, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), CodeInvalidEmail)
}

func TestValidateSignUp(t *testing.T) {
	assert.Equal(t, MsgNameRequired, ValidateSignUp("  "))
	assert.Empty(t, ValidateSignUp("Ada"))
}
