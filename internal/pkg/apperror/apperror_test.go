package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDetailsKeepsSentinelIdentity(t *testing.T) {
	sentinel := New(http.StatusBadRequest, "engineer is not assigned to this room")

	err := sentinel.WithDetails("assigned_rooms", []string{"A"})

	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, http.StatusBadRequest, err.Code)
	assert.Equal(t, sentinel.Message, err.Error())
	assert.Equal(t, []string{"A"}, err.Details["assigned_rooms"])
	assert.Nil(t, sentinel.Details, "sentinel must not be mutated")
}

func TestWrapExposesCause(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := Wrap(cause, http.StatusInternalServerError, "storage failure")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage failure", err.Error())
}
