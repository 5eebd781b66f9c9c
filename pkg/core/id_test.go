package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutoIncrementID(t *testing.T) {
	ids := NewAutoIncrementID(1)

	assert.Equal(t, int64(1), ids.Initial())
	assert.Equal(t, int64(1), ids.Current())
	assert.Equal(t, int64(0), ids.Count())
	assert.False(t, ids.Exists(1))

	assert.Equal(t, int64(1), ids.Next())
	assert.Equal(t, int64(2), ids.Next())
	assert.Equal(t, int64(3), ids.Next())

	assert.Equal(t, int64(4), ids.Current())
	assert.Equal(t, int64(3), ids.Count())

	assert.True(t, ids.Exists(1))
	assert.True(t, ids.Exists(3))
	assert.False(t, ids.Exists(4))
	assert.False(t, ids.Exists(0))
}

func TestAutoIncrementIDNonDefaultInitial(t *testing.T) {
	ids := NewAutoIncrementID(1000)

	assert.Equal(t, int64(1000), ids.Next())
	assert.Equal(t, int64(1001), ids.Next())

	assert.False(t, ids.Exists(999))
	assert.True(t, ids.Exists(1000))
	assert.True(t, ids.Exists(1001))
	assert.False(t, ids.Exists(1002))
}
