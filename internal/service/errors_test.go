package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(Conflict("x")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", NotFound("y"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("raw")))
}

func TestMessageOf_HidesInternals(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:3306: connection refused")
	err := Internal(cause)
	assert.Equal(t, GenericMessage, MessageOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, GenericMessage, MessageOf(cause))
	assert.Equal(t, GenericMessage, MessageOf(Storage(cause)))
	assert.Equal(t, "Incorrect password", MessageOf(Unauthorized("Incorrect password")))
}
