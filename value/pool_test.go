package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lookbusy1344/slox/value"
)

func TestInternReturnsSameHandleForIdenticalContent(t *testing.T) {
	pool := value.NewPool()
	a := pool.Intern("hello")
	b := pool.Intern("hello")

	assert.Same(t, a, b)
}

func TestInternReturnsDistinctHandlesForDifferentContent(t *testing.T) {
	pool := value.NewPool()
	a := pool.Intern("hello")
	b := pool.Intern("world")

	assert.NotSame(t, a, b)
}

func TestLenCountsDistinctInternedStrings(t *testing.T) {
	pool := value.NewPool()
	pool.Intern("a")
	pool.Intern("b")
	pool.Intern("a")

	assert.Equal(t, 2, pool.Len())
}

func TestNilHandleStringIsEmpty(t *testing.T) {
	var h *value.StringHandle
	assert.Equal(t, "", h.String())
}
