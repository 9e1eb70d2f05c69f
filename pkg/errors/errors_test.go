package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		is   func(error) bool
	}{
		{"configuration", Configuration("cookies must be provided"), CodeConfiguration, IsConfiguration},
		{"navigation", Navigation(context.DeadlineExceeded), CodeNavigation, IsNavigation},
		{"reveal timeout", RevealTimeout(context.DeadlineExceeded), CodeRevealTimeout, IsRevealTimeout},
		{"reveal not found", RevealNotFound("View story", 4), CodeRevealNotFound, IsRevealNotFound},
		{"capture", Capture(stderrors.New("boom")), CodeCapture, IsCapture},
		{"persist", Persist("record", stderrors.New("disk full")), CodePersist, IsPersist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("request failed: %w", tt.err)
			assert.True(t, tt.is(wrapped))
			assert.Equal(t, tt.code, GetCode(wrapped))
		})
	}
}

func TestCauseSurvivesWrapping(t *testing.T) {
	err := RevealTimeout(context.DeadlineExceeded)

	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))
	assert.False(t, IsRevealNotFound(err))
	assert.Equal(t, "no reveal candidate appeared", GetMessage(err))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))
	assert.NoError(t, WrapWithCode(nil, CodeCapture, "ignored"))
	assert.Equal(t, "", GetCode(stderrors.New("plain")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("browser gone")
	err := Wrap(cause, "failed to open page")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to open page", GetMessage(err))
	assert.Equal(t, "failed to open page: browser gone", err.Error())
	assert.Equal(t, "plain", GetMessage(stderrors.New("plain")))
	assert.Equal(t, "", GetMessage(nil))
}
