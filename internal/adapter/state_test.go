package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	s := NewState(true)
	assert.True(t, s.Enabled())

	assert.False(t, s.Set(true), "same value is not a change")
	assert.True(t, s.Set(false))
	assert.False(t, s.Enabled())
	assert.True(t, s.Set(true))
	assert.True(t, s.Enabled())
}
