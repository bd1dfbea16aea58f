package mapgen

import (
	"math"
	"math/rand"

	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/morton"
)

// permTableSize is the classic Perlin permutation-table size; doubled to
// avoid wrapping during the index lookup.
const permTableSize = 256

// perlinGrid is a seeded 2D gradient-noise field over a square of side
// dsides, sampled at unit-spaced lattice points matching axial coordinates.
type perlinGrid struct {
	perm      [permTableSize * 2]int
	gradients [permTableSize][2]float64
}

// newPerlinGrid builds a deterministic permutation table and gradient set
// from seed, via a Fisher-Yates shuffle of the identity permutation.
func newPerlinGrid(seed uint64) *perlinGrid {
	rng := rand.New(rand.NewSource(int64(seed)))
	g := &perlinGrid{}

	var p [permTableSize]int
	for i := range p {
		p[i] = i
	}
	for i := permTableSize - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	for i := 0; i < permTableSize*2; i++ {
		g.perm[i] = p[i%permTableSize]
	}
	for i := range g.gradients {
		angle := rng.Float64() * 2 * math.Pi
		g.gradients[i] = [2]float64{math.Cos(angle), math.Sin(angle)}
	}
	return g
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func (g *perlinGrid) gradAt(ix, iy int) [2]float64 {
	idx := g.perm[(ix+g.perm[iy&0xff])&0xff]
	return g.gradients[idx]
}

// sample returns the gradient-noise value at (x, y), in roughly [-1, 1].
func (g *perlinGrid) sample(x, y float64) float64 {
	ix, iy := int(math.Floor(x)), int(math.Floor(y))
	fx, fy := x-math.Floor(x), y-math.Floor(y)

	dot := func(cellX, cellY int, dx, dy float64) float64 {
		grad := g.gradAt(cellX, cellY)
		return grad[0]*dx + grad[1]*dy
	}

	n00 := dot(ix, iy, fx, fy)
	n10 := dot(ix+1, iy, fx-1, fy)
	n01 := dot(ix, iy+1, fx, fy-1)
	n11 := dot(ix+1, iy+1, fx-1, fy-1)

	u, v := fade(fx), fade(fy)
	return lerp(v, lerp(u, n00, n10), lerp(u, n01, n11))
}

// layeredGradientLayers is how many octaves are merged on top of each
// other, weighted by their layer index, matching the reference's repeated
// noise-and-merge loop.
const layeredGradientLayers = 3

// layeredGradient samples a 3-octave Perlin field over the dsides x dsides
// square bounding the room's hexagon, returning the merged gradient table
// plus its observed min/max for later normalization.
func layeredGradient(seed uint64, dsides int32) (*morton.Table[float32], float32, float32) {
	gradient := morton.NewTable[float32]()
	minGrad, maxGrad := float32(math.MaxFloat32), float32(-math.MaxFloat32)

	const scale = 0.08

	for layer := 0; layer < layeredGradientLayers; layer++ {
		field := newPerlinGrid(seed + uint64(layer)*0x9E3779B97F4A7C15)
		// layer 0 carries weight 0, matching the reference's merge step
		// (lhs + rhs*i for i in 0..3) — the first pass only establishes the
		// baseline before the second and third layers start accumulating.
		weight := float32(layer)

		for x := int32(0); x <= dsides; x++ {
			for y := int32(0); y <= dsides; y++ {
				pos := hexgrid.New(x, y)
				n := float32(field.sample(float64(x)*scale, float64(y)*scale))

				prev, _ := gradient.Get(pos)
				merged := prev + n*weight
				gradient.InsertOrUpdate(pos, merged)

				if merged < minGrad {
					minGrad = merged
				}
				if merged > maxGrad {
					maxGrad = merged
				}
			}
		}
	}

	return gradient, minGrad, maxGrad
}
