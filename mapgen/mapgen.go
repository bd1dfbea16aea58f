// Package mapgen synthesizes a room's terrain from a Perlin height field and
// a sequence of post-processing passes: dilation, coastline smoothing, chunk
// connection, and edge filling for bridges to neighboring rooms.
package mapgen

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/morton"
	"github.com/sarchlab/caolo/pathfind"
)

// Errors returned by GenerateRoom and its passes.
var (
	ErrTooManyNeighbours   = errors.New("mapgen: a room may only have up to 6 neighbours")
	ErrExpectedSingleChunk = errors.New("mapgen: expected a single connected chunk before filling edges")
)

// InvalidNeighbourError reports an edge direction that is not one of the 6
// hex unit vectors.
type InvalidNeighbourError struct{ Direction hexgrid.Axial }

func (e InvalidNeighbourError) Error() string {
	return fmt.Sprintf("mapgen: invalid neighbour direction %v", e.Direction)
}

// BadArgumentsError reports a room radius too small to generate.
type BadArgumentsError struct{ Radius int32 }

func (e BadArgumentsError) Error() string {
	return fmt.Sprintf("mapgen: cannot generate a room with radius %d", e.Radius)
}

// BadEdgeOffsetError reports an edge whose start/end offsets leave no room
// for the edge itself.
type BadEdgeOffsetError struct {
	Direction                hexgrid.Axial
	OffsetStart, OffsetEnd   int32
	Radius                   int32
}

func (e BadEdgeOffsetError) Error() string {
	return fmt.Sprintf("mapgen: bad edge offsets at edge %v with radius %d: start=%d end=%d",
		e.Direction, e.Radius, e.OffsetStart, e.OffsetEnd)
}

// Params configures one room's generation.
type Params struct {
	Radius        int32
	Seed          uint64
	ChancePlain   float32
	ChanceWall    float32
	PlainDilation uint32
}

// Connection describes one of a room's up-to-6 boundary edges: the unit
// direction it faces, and how far from its two corners the bridge is
// inset.
type Connection struct {
	Direction              hexgrid.Axial
	OffsetStart, OffsetEnd uint32
}

// HeightMapProperties summarizes the generated gradient field, returned
// alongside the terrain for diagnostics and the boundary snapshot.
type HeightMapProperties struct {
	Center                       hexgrid.Axial
	Radius                       int32
	Std, Mean                    float32
	NormalStd, NormalMean        float32
	Min, Max, Depth              float32
	Width, Height                int32
}

// Terrain is the generated room's walkable-classification table, keyed by
// axial position.
type Terrain = morton.Table[pathfind.Terrain]

// pot returns the smallest power of two >= size.
func pot(size int32) int32 {
	if size <= 1 {
		return 1
	}
	p := int32(1)
	for p < size {
		p <<= 1
	}
	return p
}

// GenerateRoom builds a room's terrain for the given parameters and boundary
// connections: a layered Perlin gradient thresholded into Plain/Wall/Empty,
// then dilated, coastlined, chunk-connected, and edge-filled so every
// declared connection is reachable from the interior.
func GenerateRoom(params Params, edges []Connection, rng *rand.Rand) (*Terrain, HeightMapProperties, error) {
	if len(edges) > 6 {
		return nil, HeightMapProperties{}, ErrTooManyNeighbours
	}
	if params.Radius < 2 {
		return nil, HeightMapProperties{}, BadArgumentsError{Radius: params.Radius}
	}

	radius := params.Radius
	dsides := pot(radius * 2)
	center := hexgrid.New(radius, radius)

	gradient, minGrad, maxGrad := layeredGradient(params.Seed, dsides)

	terrain := morton.NewTable[pathfind.Terrain]()
	props, err := transformHeightmapIntoTerrain(heightMapTransformParams{
		center:      center,
		maxGrad:     maxGrad,
		minGrad:     minGrad,
		dsides:      dsides,
		radius:      radius - 1,
		chancePlain: params.ChancePlain,
		chanceWall:  params.ChanceWall,
	}, gradient, terrain)
	if err != nil {
		return nil, HeightMapProperties{}, err
	}

	// ensure at least one walkable tile to seed chunk computation from.
	seedQ := center.Q - (radius - 1) + rng.Int31n(2*(radius-1))
	seedR := center.R - (radius - 1) + rng.Int31n(2*(radius-1))
	terrain.InsertOrUpdate(hexgrid.New(seedQ, seedR), pathfind.TerrainPlain)

	dilate(center, radius, params.PlainDilation, terrain)

	coastline(center, radius-1, terrain)

	chunks := calculatePlainChunks(terrain)
	if len(chunks) > 1 {
		connectChunks(center, radius-1, rng, chunks, terrain)
	}

	if err := fillEdges(center, radius, edges, terrain, rng); err != nil {
		return nil, HeightMapProperties{}, err
	}

	terrain.Dedupe()

	bounds := hexgrid.NewHexagon(center, radius)
	var outside []hexgrid.Axial
	terrain.Iterate(func(p hexgrid.Axial, _ pathfind.Terrain) {
		if !bounds.Contains(p) {
			outside = append(outside, p)
		}
	})
	for _, p := range outside {
		terrain.Delete(p)
	}

	return terrain, props, nil
}
