package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCode_ThroughWrapping(t *testing.T) {
	base := NewFormatError("bad json", errors.New("unexpected token"))
	wrapped := fmt.Errorf("quiz: %w", base)

	assert.True(t, IsCode(wrapped, CodeFormat))
	assert.False(t, IsCode(wrapped, CodeRemoteFailure))
	assert.Equal(t, CodeFormat, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestDomainError_Error(t *testing.T) {
	err := NewTransportError("request failed", errors.New("connection refused"))
	assert.Equal(t, "request failed: connection refused", err.Error())
	assert.ErrorContains(t, errors.Unwrap(err), "connection refused")
}

func TestRemoteFailureCarriesReason(t *testing.T) {
	err := NewRemoteFailureError("shotstack", "asset not found")
	assert.Equal(t, "asset not found", err.Context["reason"])
	assert.Contains(t, err.Error(), "asset not found")
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{NewMissingFieldError("answer"), NewMissingFieldError("concept")}
	assert.Equal(t, "answer: field is required (and 1 more)", errs.Error())
}
