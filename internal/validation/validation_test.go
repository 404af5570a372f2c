package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	e := Errors{}
	assert.NoError(t, e.Err())

	e.Add("row", "must be positive")
	e.Add("row", "ignored")
	e.Add("actors", "invalid id")

	err := e.Err()
	assert.Error(t, err)
	assert.Equal(t, "validation failed: actors: invalid id; row: must be positive", err.Error())

	var ve Errors
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "must be positive", ve["row"])
}
