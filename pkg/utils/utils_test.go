package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"radruga/pkg/models"
)

func TestGenerateID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	assert.True(t, strings.HasPrefix(a, "req-"))
	assert.NotEqual(t, a, b)
	assert.Len(t, GenerateID(""), 36)
}

func TestUntilNext(t *testing.T) {
	now := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 30*time.Minute, UntilNext(now, 24*time.Hour))
	assert.Equal(t, 30*time.Minute, UntilNext(now, time.Hour))
	assert.Equal(t, time.Duration(0), UntilNext(now, 0))
}

func TestValidateStruct(t *testing.T) {
	ok := models.RegisterRequest{ID: "u1", NickName: "neo"}
	assert.NoError(t, ValidateStruct(ok))

	bad := models.RegisterRequest{NickName: "n"}
	err := ValidateStruct(bad)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Contains(t, err.Error(), "ID failed required")
}

func TestIsContextError(t *testing.T) {
	assert.True(t, IsContextError(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.False(t, IsContextError(errors.New("boom")))
	assert.False(t, IsContextError(nil))
}

func TestCombineErrors(t *testing.T) {
	assert.NoError(t, CombineErrors(nil, nil))

	first, second := errors.New("decay"), errors.New("places")
	err := CombineErrors(first, nil, second)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestValidateNickName(t *testing.T) {
	assert.NoError(t, ValidateNickName(" neo "))
	assert.ErrorIs(t, ValidateNickName("x"), models.ErrInvalidInput)
	assert.ErrorIs(t, ValidateNickName(strings.Repeat("n", 51)), models.ErrInvalidInput)
}
