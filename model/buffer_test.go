package model_test

import (
	"testing"

	. "github.com/coreman2200/funtimes-ledfader/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPixelBufferRejectsEmpty(t *testing.T) {
	_, err := NewPixelBuffer(0)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = NewPixelBuffer(-3)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSetThenRead(t *testing.T) {
	b, err := NewPixelBuffer(16)
	require.NoError(t, err)
	require.NoError(t, b.Set(5, Cyan))

	for i, p := range b.Pixels() {
		if i == 5 {
			assert.Equal(t, Cyan, p, "set pixel")
		} else {
			assert.Equal(t, Black, p, "unset pixel %d", i)
		}
	}
	c, err := b.At(5)
	require.NoError(t, err)
	assert.Equal(t, Cyan, c)
}

func TestSetOutOfRange(t *testing.T) {
	b, err := NewPixelBuffer(4)
	require.NoError(t, err)

	for _, i := range []int{4, 5, 100, -1} {
		assert.ErrorIs(t, b.Set(i, Red), ErrIndexOutOfRange, "index %d", i)
		_, err := b.At(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", i)
	}
	assert.Equal(t, []Color{Black, Black, Black, Black}, b.Pixels(), "failed sets must not write")
}

func TestFillIsUniform(t *testing.T) {
	b, err := NewPixelBuffer(10)
	require.NoError(t, err)
	b.Fill(Yellow)
	assert.Equal(t, 10, b.Len())
	for _, p := range b.Pixels() {
		assert.Equal(t, Yellow, p)
	}
	b.Clear()
	for _, p := range b.Pixels() {
		assert.Equal(t, Black, p)
	}
}

func TestPixelsIsACopy(t *testing.T) {
	b, err := NewPixelBuffer(2)
	require.NoError(t, err)
	px := b.Pixels()
	px[0] = White
	c, _ := b.At(0)
	assert.Equal(t, Black, c)
}
