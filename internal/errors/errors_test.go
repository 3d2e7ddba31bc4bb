package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"prsboot/domain/core"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ConfigInvalid("n_boot must be positive")
	wrapped := Wrap(base, "failed to load configuration")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.Equal(t, "failed to load configuration: n_boot must be positive", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapDerivesCodeFromDomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"missing column", core.NewMissingColumnError("prs.tsv", "PRS"), CodeMissingColumn},
		{"insufficient", core.NewInsufficientSamplesError("prs.tsv", 1), CodeInsufficientSamples},
		{"invalid value", core.NewInvalidValueError("prs.tsv", 2, "PRS", "NA"), CodeInvalidInput},
		{"missing file", fmt.Errorf("PRS file not found: %w", os.ErrNotExist), CodeNotFound},
		{"other", fmt.Errorf("disk failure"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrapf(tt.err, "processing %s", "prs.tsv")
			assert.Equal(t, tt.code, GetCode(wrapped))
			assert.True(t, stderrors.Is(wrapped, tt.err))
		})
	}
}

func TestNilPassthrough(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	assert.Nil(t, Wrapf(nil, "x %d", 1))
	assert.Nil(t, WithCode(CodeIOError, nil))
	assert.Equal(t, "UNKNOWN", GetCode(nil))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeIOError, fmt.Errorf("permission denied"))
	assert.Equal(t, CodeIOError, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.False(t, IsUserError(err))
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(core.NewMissingColumnError("a", "b")))
	assert.True(t, IsUserError(InvalidInput("bad")))
	assert.False(t, IsUserError(DatabaseError("insert failed", fmt.Errorf("conn reset"))))
}
