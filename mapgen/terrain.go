package mapgen

import (
	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/morton"
	"github.com/sarchlab/caolo/pathfind"
)

type heightMapTransformParams struct {
	center                hexgrid.Axial
	maxGrad, minGrad      float32
	dsides                int32
	radius                int32
	chancePlain, chanceWall float32
}

// transformHeightmapIntoTerrain thresholds every gradient sample within the
// room's hexagon into Plain, Wall, or left Empty (unreached), tracking
// running mean/stddev of both the raw and normalized gradient for the
// returned HeightMapProperties.
func transformHeightmapIntoTerrain(
	p heightMapTransformParams,
	gradient *morton.Table[float32],
	terrain *Terrain,
) (HeightMapProperties, error) {
	var mean, std, normalMean, normalStd float32
	i := float32(1)
	depth := p.maxGrad - p.minGrad

	bounds := hexgrid.NewHexagon(p.center, p.radius-1)
	bounds.IterPoints(func(pos hexgrid.Axial) {
		grad, ok := gradient.Get(pos)
		if !ok {
			return
		}

		tmp := grad - mean
		mean += tmp / i
		std += tmp * (grad - mean)

		grad -= p.minGrad
		if depth != 0 {
			grad /= depth
		}

		tmp2 := grad - normalMean
		normalMean += tmp2 / i
		normalStd += tmp2 * (grad - normalMean)
		i++

		if grad != grad { // NaN guard mirroring the reference's is_finite check
			return
		}

		switch {
		case grad <= p.chancePlain:
			terrain.InsertOrUpdate(pos, pathfind.TerrainPlain)
		case grad <= p.chancePlain+p.chanceWall:
			terrain.InsertOrUpdate(pos, pathfind.TerrainWall)
		}
	})

	std = sqrtF32(std / i)
	normalStd = sqrtF32(normalStd / i)

	return HeightMapProperties{
		Center:     p.center,
		Radius:     p.radius,
		Mean:       mean,
		Std:        std,
		NormalMean: normalMean,
		NormalStd:  normalStd,
		Min:        p.minGrad,
		Max:        p.maxGrad,
		Depth:      depth,
		Width:      p.dsides,
		Height:     p.dsides,
	}, nil
}

func sqrtF32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	lo, hi := float32(0), v
	if hi < 1 {
		hi = 1
	}
	for i := 0; i < 32; i++ {
		mid := (lo + hi) / 2
		if mid*mid < v {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// coastline turns every Wall within bounds that has at least one Empty (or
// out-of-room) neighbor into Plain, softening the gradient's threshold edge
// into a natural-looking shoreline.
func coastline(center hexgrid.Axial, radius int32, terrain *Terrain) {
	bounds := hexgrid.NewHexagon(center, radius)
	var changeset []hexgrid.Axial

	terrain.Iterate(func(pos hexgrid.Axial, t pathfind.Terrain) {
		if !bounds.Contains(pos) || t != pathfind.TerrainWall {
			return
		}
		count := 0
		terrain.QueryRange(pos, 1, func(hexgrid.Axial, pathfind.Terrain) {
			count++
		})
		if count < 7 { // 1 (self) + 6 neighbours all present means fully landlocked
			changeset = append(changeset, pos)
		}
	})

	for _, pos := range changeset {
		terrain.Update(pos, pathfind.TerrainPlain)
	}
}

// dilate converts any non-walkable tile whose walkable-neighbour count
// within kernelWidth exceeds kernel²/3 into Plain, reading from a frozen
// snapshot of terrain so the pass doesn't bias itself on its own output.
func dilate(center hexgrid.Axial, radius int32, kernelWidth uint32, terrain *Terrain) {
	if radius < int32(kernelWidth)+1 || kernelWidth == 0 {
		return
	}
	threshold := int32(kernelWidth * kernelWidth / 3)
	if threshold < 1 {
		threshold = 1
	}

	snapshot := morton.NewTable[pathfind.Terrain]()
	terrain.Iterate(func(pos hexgrid.Axial, t pathfind.Terrain) {
		snapshot.InsertOrUpdate(pos, t)
	})

	bounds := hexgrid.NewHexagon(center, radius-1)
	var toPlain []hexgrid.Axial
	bounds.IterPoints(func(pos hexgrid.Axial) {
		t, _ := snapshot.Get(pos)
		if t.Walkable() {
			return
		}
		neighboursOn := 0
		snapshot.QueryRange(pos, kernelWidth, func(_ hexgrid.Axial, t pathfind.Terrain) {
			if t.Walkable() {
				neighboursOn++
			}
		})
		if neighboursOn > int(threshold) {
			toPlain = append(toPlain, pos)
		}
	})

	for _, pos := range toPlain {
		terrain.InsertOrUpdate(pos, pathfind.TerrainPlain)
	}
}
