package battle

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

func TestLayoutDeterministicShapes(t *testing.T) {
	shapes := []tables.FormationShape{
		tables.ShapeLineHorizontal,
		tables.ShapeLineVertical,
		tables.ShapeV,
		tables.ShapeCircle,
		tables.ShapeSquare,
		tables.ShapeDiamond,
		tables.ShapeStaggered,
	}
	for _, shape := range shapes {
		t.Run(string(shape), func(t *testing.T) {
			for _, count := range []int{1, 2, 7, 20} {
				a := Layout(shape, count, 300, 250, 50, rand.New(rand.NewSource(1)))
				b := Layout(shape, count, 300, 250, 50, rand.New(rand.NewSource(2)))
				require.Len(t, a, count)
				assert.Equal(t, a, b)
			}
		})
	}
}

func TestLayoutLines(t *testing.T) {
	h := Layout(tables.ShapeLineHorizontal, 3, 300, 250, 50, nil)
	assert.Equal(t, []models.Vector2D{{X: 250, Y: 250}, {X: 300, Y: 250}, {X: 350, Y: 250}}, h)

	v := Layout(tables.ShapeLineVertical, 3, 300, 250, 50, nil)
	assert.Equal(t, []models.Vector2D{{X: 300, Y: 200}, {X: 300, Y: 250}, {X: 300, Y: 300}}, v)
}

func TestLayoutV(t *testing.T) {
	got := Layout(tables.ShapeV, 5, 300, 250, 50, nil)
	want := []models.Vector2D{
		{X: 300, Y: 250},
		{X: 260, Y: 300},
		{X: 340, Y: 300},
		{X: 220, Y: 350},
		{X: 380, Y: 350},
	}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, got[i].X, 1e-9, "slot %d", i)
		assert.InDelta(t, want[i].Y, got[i].Y, 1e-9, "slot %d", i)
	}
}

func TestLayoutCircleRadius(t *testing.T) {
	for _, p := range Layout(tables.ShapeCircle, 8, 300, 250, 40, nil) {
		assert.InDelta(t, 80.0, math.Hypot(p.X-300, p.Y-250), 1e-9)
	}
}

func TestLayoutSquareGrid(t *testing.T) {
	got := Layout(tables.ShapeSquare, 4, 300, 250, 50, nil)
	assert.Equal(t, []models.Vector2D{
		{X: 275, Y: 225}, {X: 325, Y: 225},
		{X: 275, Y: 275}, {X: 325, Y: 275},
	}, got)
}

func TestLayoutDiamondRings(t *testing.T) {
	got := Layout(tables.ShapeDiamond, 13, 300, 250, 50, nil)
	require.Len(t, got, 13)
	assert.Equal(t, models.Vector2D{X: 300, Y: 250}, got[0])
	for i, p := range got[1:5] {
		assert.InDelta(t, 50.0, math.Hypot(p.X-300, p.Y-250), 1e-9, "ring 1 slot %d", i)
	}
	for i, p := range got[5:] {
		assert.InDelta(t, 100.0, math.Hypot(p.X-300, p.Y-250), 1e-9, "ring 2 slot %d", i)
	}
}

func TestLayoutStaggered(t *testing.T) {
	got := Layout(tables.ShapeStaggered, 4, 300, 250, 50, nil)
	ys := []float64{190, 310, 190, 310}
	for i, p := range got {
		assert.Equal(t, ys[i], p.Y)
	}
}

func TestLayoutScatteredStaysInBox(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	got := Layout(tables.ShapeScattered, 200, 300, 250, 40, rng)
	require.Len(t, got, 200)
	for _, p := range got {
		assert.GreaterOrEqual(t, p.X, 60.0)
		assert.LessOrEqual(t, p.X, 540.0)
		assert.GreaterOrEqual(t, p.Y, 175.0)
		assert.LessOrEqual(t, p.Y, 325.0)
	}
}

func TestLayoutRejectsBadInput(t *testing.T) {
	assert.Nil(t, Layout("hexagon", 3, 300, 250, 50, nil))
	assert.Nil(t, Layout(tables.ShapeCircle, 0, 300, 250, 50, nil))
}

func TestVFormationSlotsNeverOverlap(t *testing.T) {
	for _, count := range []int{2, 3, 8, 15} {
		got := Layout(tables.ShapeV, count, 300, 250, 50, nil)
		seen := make(map[models.Vector2D]bool, len(got))
		for i, pos := range got {
			assert.False(t, seen[pos], "count %d slot %d", count, i)
			seen[pos] = true
		}
	}
}
