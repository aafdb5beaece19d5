package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func TestPropertyCanAct(t *testing.T) {
	builder := uint(1)
	locker := uint(2)
	other := uint(3)

	open := Property{BuilderID: uintPtr(builder)}
	assert.False(t, open.IsLocked())
	assert.True(t, open.CanAct(other))

	locked := Property{BuilderID: uintPtr(builder), LockedBy: uintPtr(locker)}
	assert.True(t, locked.IsLocked())
	assert.True(t, locked.CanAct(builder))
	assert.True(t, locked.CanAct(locker))
	assert.False(t, locked.CanAct(other))
}

func TestParseThreadScope(t *testing.T) {
	scope, err := ParseThreadScope("group")
	assert.NoError(t, err)
	assert.Equal(t, ThreadScopeGroup, scope)

	_, err = ParseThreadScope("direct")
	assert.True(t, HasCode(err, CodeValidation))
}
