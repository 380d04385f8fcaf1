package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectOverlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"inside", Rect{X: 2, Y: 2, Width: 2, Height: 2}, true},
		{"partial", Rect{X: 5, Y: 5, Width: 10, Height: 10}, true},
		{"touching edge", Rect{X: 10, Y: 0, Width: 5, Height: 5}, false},
		{"touching corner", Rect{X: 10, Y: 10, Width: 5, Height: 5}, false},
		{"apart", Rect{X: 20, Y: 20, Width: 5, Height: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(a))
		})
	}
}

func TestRectExpand(t *testing.T) {
	r := Rect{Width: 600, Height: 1000}.Expand(50)
	assert.Equal(t, Rect{X: -50, Y: -50, Width: 700, Height: 1100}, r)
}

func TestEntityGeometry(t *testing.T) {
	e := BaseEntity{Position: Vector2D{X: 10, Y: 20}, Size: Size{Width: 30, Height: 40}}
	assert.Equal(t, Vector2D{X: 25, Y: 40}, e.Center())
	assert.Equal(t, Rect{X: 10, Y: 20, Width: 30, Height: 40}, e.Bounds())

	other := BaseEntity{Position: Vector2D{X: 39, Y: 59}, Size: Size{Width: 5, Height: 5}}
	assert.True(t, Collides(&e, &other))
	other.Position.X = 40
	assert.False(t, Collides(&e, &other))
}
