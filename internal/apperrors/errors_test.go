package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestCodedErrorUnwrapsToKind(t *testing.T) {
	err := apperrors.New(apperrors.ErrValidation, apperrors.CodeUnbalancedEntry, "debits and credits differ").
		WithDetail("difference", "200000")
	wrapped := fmt.Errorf("create entry: %w", err)

	assert.ErrorIs(t, wrapped, apperrors.ErrValidation)
	assert.NotErrorIs(t, wrapped, apperrors.ErrConflict)
	assert.Equal(t, apperrors.CodeUnbalancedEntry, apperrors.CodeOf(wrapped))
	assert.Equal(t, "200000", apperrors.DetailsOf(wrapped)["difference"])
	assert.Equal(t, "debits and credits differ", apperrors.MessageOf(wrapped))
	assert.Equal(t, "VALIDATION", apperrors.KindName(wrapped))
}

func TestDuplicateIsConflict(t *testing.T) {
	assert.ErrorIs(t, apperrors.ErrDuplicate, apperrors.ErrConflict)
	assert.Equal(t, "CONFLICT", apperrors.KindName(apperrors.ErrDuplicate))
}

func TestHelpersOnPlainErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Empty(t, apperrors.CodeOf(plain))
	assert.Nil(t, apperrors.DetailsOf(plain))
	assert.Equal(t, "boom", apperrors.MessageOf(plain))
	assert.Equal(t, "INTERNAL", apperrors.KindName(plain))
}
