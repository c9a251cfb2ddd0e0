package ax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueEqualSelfAndDistinct(t *testing.T) {
	el := NewElement("node-1")
	cases := []Value{
		Null(),
		Bool(true),
		Int64(42),
		Double(3.5),
		String("hello"),
		AttributedString("hello"),
		URL("https://example.com"),
		Rng(2, 5),
		Pt(1, 2),
		Sz(3, 4),
		Rct(Rect{Origin: Point{X: 1, Y: 2}, Size: Size{Width: 3, Height: 4}}),
		ElementValue(el),
		ArrayValue([]Value{Int64(1), String("a")}),
		DictValue(map[string]Value{"k": Bool(false)}),
		ErrorValue(Timeout),
	}

	for _, v := range cases {
		assert.True(t, v.Equal(v), "value should equal itself: %+v", v)
	}

	assert.False(t, Int64(1).Equal(Int64(2)))
	assert.False(t, String("a").Equal(Int64(1)))
}

func TestValueNonEmptyString(t *testing.T) {
	assert.True(t, String("x").NonEmptyString())
	assert.False(t, String("").NonEmptyString())
	assert.False(t, Int64(1).NonEmptyString())
	assert.True(t, AttributedString("x").NonEmptyString())
}

func TestValueIsNull(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.False(t, Int64(0).IsNull())
}

func TestIntegerRangeEnd(t *testing.T) {
	r := IntegerRange{Start: 3, Length: 4}
	assert.Equal(t, int64(7), r.End())
}
