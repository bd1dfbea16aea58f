package mapgen

import (
	"math/rand"

	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/pathfind"
)

// fillEdges carves one corridor per declared connection: first a Plain
// strip one tile inside the boundary, recorded as its own chunk, which
// connectChunks then wires to the mainland; then a final Bridge strip along
// the boundary proper. No Empty tiles are painted along the edges.
func fillEdges(center hexgrid.Axial, radius int32, edges []Connection, terrain *Terrain, rng *rand.Rand) error {
	chunks := calculatePlainChunks(terrain)
	if len(chunks) != 1 {
		return ErrExpectedSingleChunk
	}

	for _, edge := range edges {
		edge.OffsetStart = clampDec(edge.OffsetStart)
		edge.OffsetEnd = clampDec(edge.OffsetEnd)

		chunk := map[hexgrid.Axial]struct{}{}
		if err := fillEdge(center, radius-1, pathfind.TerrainPlain, edge, terrain, chunk); err != nil {
			return err
		}
		chunks = append(chunks, chunk)
	}

	connectChunks(center, radius-2, rng, chunks, terrain)

	for _, edge := range edges {
		chunk := map[hexgrid.Axial]struct{}{}
		if err := fillEdge(center, radius, pathfind.TerrainBridge, edge, terrain, chunk); err != nil {
			return err
		}
	}
	return nil
}

func clampDec(v uint32) uint32 {
	if v == 0 {
		return 0
	}
	return v - 1
}

// fillEdge paints ty along the boundary segment facing edge.Direction,
// inset by OffsetStart/OffsetEnd tiles from each corner, recording every
// painted tile into chunk.
func fillEdge(center hexgrid.Axial, radius int32, ty pathfind.Terrain, edge Connection, terrain *Terrain, chunk map[hexgrid.Axial]struct{}) error {
	points, err := iterEdge(center, radius, edge)
	if err != nil {
		return err
	}
	for _, pos := range points {
		terrain.InsertOrUpdate(pos, ty)
		if chunk != nil {
			chunk[pos] = struct{}{}
		}
	}
	return nil
}

// iterEdge enumerates the tiles along one hexagon boundary edge, from the
// corner at edge.Direction*radius + offsetStart steps toward the next
// corner (rotating right), stopping offsetEnd steps short of it.
func iterEdge(center hexgrid.Axial, radius int32, edge Connection) ([]hexgrid.Axial, error) {
	dir := edge.Direction
	if absI32(dir.Q) > 1 || absI32(dir.R) > 1 || dir.Q == dir.R {
		return nil, InvalidNeighbourError{Direction: dir}
	}

	end := dir.RotateRight()
	vel := end.Sub(dir)
	vertex := dir.Mul(radius).Add(center)

	offsetStart, offsetEnd := int32(edge.OffsetStart), int32(edge.OffsetEnd)
	if radius-offsetStart-offsetEnd <= 0 {
		return nil, BadEdgeOffsetError{
			Direction:   dir,
			OffsetStart: offsetStart,
			OffsetEnd:   offsetEnd,
			Radius:      radius,
		}
	}

	out := make([]hexgrid.Axial, 0, radius-offsetStart-offsetEnd)
	for i := offsetStart; i < radius-offsetEnd; i++ {
		out = append(out, vertex.Add(vel.Mul(i)))
	}
	return out, nil
}
