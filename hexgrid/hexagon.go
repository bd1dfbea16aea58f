package hexgrid

// Hexagon is a hex-shaped region of radius Radius centered at Center.
type Hexagon struct {
	Center Axial
	Radius int32
}

// NewHexagon builds a Hexagon.
func NewHexagon(center Axial, radius int32) Hexagon {
	return Hexagon{Center: center, Radius: radius}
}

// Contains reports whether point lies within the hexagon, via the cube-coord
// box test: every cube axis must fall within [-radius, radius] once
// recentred.
func (h Hexagon) Contains(point Axial) bool {
	p := point.Sub(h.Center)
	c := p.Cube()
	r := h.Radius

	return -r <= c[0] && c[0] <= r &&
		-r <= c[1] && c[1] <= r &&
		-r <= c[2] && c[2] <= r
}

// PointCount returns the exact number of points a Hexagon of the given
// radius contains: 1 + 3*r*(r+1).
func PointCount(radius int32) int {
	r := int(radius)
	return 1 + 3*r*(r+1)
}

// IterPoints calls visit for every point in the hexagon exactly once, in
// row-major order over x in [-radius, radius].
func (h Hexagon) IterPoints(visit func(Axial)) {
	radius := h.Radius
	for x := -radius; x <= radius; x++ {
		fromY := maxI32(-radius, -x-radius)
		toY := minI32(radius, -x+radius)
		for y := fromY; y <= toY; y++ {
			p := Axial{Q: x, R: -x - y}
			visit(p.Add(h.Center))
		}
	}
}

// Points returns every point in the hexagon as a slice, in the same order as
// IterPoints.
func (h Hexagon) Points() []Axial {
	out := make([]Axial, 0, PointCount(h.Radius))
	h.IterPoints(func(a Axial) {
		out = append(out, a)
	})
	return out
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
