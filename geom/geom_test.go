package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointArithmetic(t *testing.T) {
	p := Pt(3, 4)
	assert.InDelta(t, 5, p.Len(), 1e-12)
	assert.InDelta(t, 1, p.Unit().Len(), 1e-12)
	assert.Equal(t, Pt(4, 6), p.Add(Pt(1, 2)))
	assert.Equal(t, Pt(6, 8), p.Scale(2))
	assert.InDelta(t, 0, Point{}.Unit().Len(), 1e-12, "zero vector stays zero")
}

func TestBox(t *testing.T) {
	b := Rect(0, 0, 10, 5)
	assert.Equal(t, Pt(5, 2.5), b.Center())
	assert.True(t, b.Contains(Pt(10, 5)), "boundary counts as inside")
	assert.False(t, b.Overlaps(Rect(10, 0, 20, 5)), "touching boxes do not overlap")
	assert.True(t, b.Overlaps(Rect(9, 4, 20, 20)))
	assert.Equal(t, Rect(-1, -2, 11, 7), b.Expand(1, 2))
	assert.Equal(t, Rect(0, 0, 20, 20), b.Union(Rect(5, 5, 20, 20)))
}

func TestSegSegIntersect(t *testing.T) {
	assert.True(t, SegSegIntersect(Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0)))
	assert.False(t, SegSegIntersect(Pt(0, 0), Pt(1, 1), Pt(5, 5), Pt(6, 6)))
	assert.True(t, SegSegIntersect(Pt(0, 0), Pt(10, 0), Pt(5, 0), Pt(5, 5)), "touching endpoint intersects")
}

func TestPointInPolygon(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	assert.True(t, PointInPolygon(square, Pt(5, 5)))
	assert.True(t, PointInPolygon(square, Pt(0, 5)), "boundary is inside")
	assert.False(t, PointInPolygon(square, Pt(15, 5)))
}

func TestBezier(t *testing.T) {
	bz := PolylineToBezier([]Point{{0, 0}, {9, 0}, {9, 9}})
	assert.Equal(t, 2, bz.Segments())
	assert.Equal(t, Pt(0, 0), bz.Eval(0, 0))
	assert.Equal(t, Pt(9, 0), bz.Eval(0, 1))
	assert.Equal(t, Pt(9, 9), bz.Eval(1, 1))
	// a promoted polyline stays on its segments
	assert.InDelta(t, 0, bz.Eval(0, 0.5).Y, 1e-12)
	assert.InDelta(t, 4.5, bz.Eval(0, 0.5).X, 1e-12)

	sp := Pt(-1, 0)
	bz.SP = &sp
	bz.Translate(Pt(1, 1))
	assert.Equal(t, Pt(1, 1), bz.Points[0])
	assert.Equal(t, Pt(0, 1), *bz.SP)
}

func TestPolygonArea(t *testing.T) {
	ccw := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	assert.InDelta(t, 100, PolygonArea(ccw), 1e-12)
	cw := []Point{{0, 0}, {0, 10}, {10, 10}, {10, 0}}
	assert.InDelta(t, -100, PolygonArea(cw), 1e-12)
}
