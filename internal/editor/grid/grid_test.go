package grid

import (
	"testing"

	"floorplan-editor/internal/editor/models"

	"github.com/stretchr/testify/assert"
)

func TestSnap_OddFootprintCentersOnCell(t *testing.T) {
	x, y := Snap(100, 100, 64, 64, 64)

	assert.Equal(t, 96, x)
	assert.Equal(t, 96, y)
}

func TestSnap_EvenFootprintAlignsToBoundary(t *testing.T) {
	x, y := Snap(100, 200, 128, 128, 64)

	assert.Equal(t, 64, x)
	assert.Equal(t, 192, y)
}

func TestSnap_MixedParity(t *testing.T) {
	// door: 1x2 cells
	x, y := Snap(70, 70, 64, 128, 64)

	assert.Equal(t, 96, x)
	assert.Equal(t, 64, y)
}

func TestSnap_NegativeCoordinatesFloor(t *testing.T) {
	x, y := Snap(-1, -65, 64, 128, 64)

	assert.Equal(t, -32, x)
	assert.Equal(t, -128, y)
}

func TestSnap_Idempotent(t *testing.T) {
	cases := []struct {
		x, y   float64
		fw, fh int
		grid   int
	}{
		{100, 100, 64, 64, 64},
		{0, 0, 128, 64, 64},
		{-300.5, 17.25, 192, 64, 64},
		{1023.9, -0.1, 128, 192, 64},
		{55, 55, 30, 30, 25},
		{12, 999, 0, 0, 32},
	}

	for _, tc := range cases {
		x1, y1 := Snap(tc.x, tc.y, tc.fw, tc.fh, tc.grid)
		x2, y2 := Snap(float64(x1), float64(y1), tc.fw, tc.fh, tc.grid)
		assert.Equal(t, x1, x2, "x for %+v", tc)
		assert.Equal(t, y1, y2, "y for %+v", tc)
	}
}

func TestSnap_ZeroGridIsTotal(t *testing.T) {
	x, y := Snap(10.6, -3.2, 64, 64, 0)

	assert.Equal(t, 11, x)
	assert.Equal(t, -3, y)
}

func TestNormalize_UnresolvedFootprintFallsBackToGrid(t *testing.T) {
	fp := Normalize(models.Footprint{Width: 0, Height: 128}, 64)

	assert.Equal(t, models.Footprint{Width: 64, Height: 128}, fp)
}

func TestBounds_Contains(t *testing.T) {
	r := Bounds(96, 96, models.Footprint{Width: 64, Height: 64})

	assert.True(t, r.Contains(64, 64))
	assert.True(t, r.Contains(127.9, 127.9))
	assert.False(t, r.Contains(128, 100))
	assert.False(t, r.Contains(63.9, 100))
}
