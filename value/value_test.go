package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lookbusy1344/slox/value"
)

func TestZeroValueIsNil(t *testing.T) {
	var v value.Value
	assert.True(t, v.IsNil())
	assert.Equal(t, value.KindNil, v.Kind())
}

func TestFalseyOnlyNilAndFalseAreFalsey(t *testing.T) {
	assert.True(t, value.Nil.Falsey())
	assert.True(t, value.Bool(false).Falsey())
	assert.False(t, value.Bool(true).Falsey())
	assert.False(t, value.Number(0).Falsey())
}

func TestEqualComparesByTagThenPayload(t *testing.T) {
	assert.True(t, value.Equal(value.Nil, value.Nil))
	assert.True(t, value.Equal(value.Number(1), value.Number(1)))
	assert.False(t, value.Equal(value.Number(1), value.Number(2)))
	assert.False(t, value.Equal(value.Number(1), value.Bool(true)))
}

func TestEqualStringsCompareByInternedHandleIdentity(t *testing.T) {
	pool := value.NewPool()
	a := value.Obj(value.String{Handle: pool.Intern("hi")})
	b := value.Obj(value.String{Handle: pool.Intern("hi")})

	assert.True(t, value.Equal(a, b))
}

func TestDisplayFormatsEachKind(t *testing.T) {
	pool := value.NewPool()
	assert.Equal(t, "nil", value.Display(value.Nil))
	assert.Equal(t, "true", value.Display(value.Bool(true)))
	assert.Equal(t, "false", value.Display(value.Bool(false)))
	assert.Equal(t, "0.6666666666666666", value.Display(value.Number(2.0/3.0)))
	assert.Equal(t, "hello", value.Display(value.Obj(value.String{Handle: pool.Intern("hello")})))
}

func TestAsStringRequiresIsStringCheck(t *testing.T) {
	pool := value.NewPool()
	v := value.Obj(value.String{Handle: pool.Intern("x")})
	assert.True(t, v.IsString())
	assert.Equal(t, "x", v.AsString().String())
}
