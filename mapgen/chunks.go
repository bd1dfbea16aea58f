package mapgen

import (
	"math/rand"
	"sort"

	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/pathfind"
)

// calculatePlainChunks flood-fills every walkable tile into disjoint
// chunks, sorted with the largest (by tile count) first — the "mainland"
// every smaller chunk gets connected to.
func calculatePlainChunks(terrain *Terrain) []map[hexgrid.Axial]struct{} {
	visited := map[hexgrid.Axial]struct{}{}
	var all []hexgrid.Axial
	terrain.Iterate(func(pos hexgrid.Axial, t pathfind.Terrain) {
		if t.Walkable() {
			all = append(all, pos)
		}
	})

	var chunks []map[hexgrid.Axial]struct{}

	for _, start := range all {
		if _, seen := visited[start]; seen {
			continue
		}
		chunk := map[hexgrid.Axial]struct{}{}
		todo := []hexgrid.Axial{start}
		visited[start] = struct{}{}
		for len(todo) > 0 {
			cur := todo[len(todo)-1]
			todo = todo[:len(todo)-1]
			chunk[cur] = struct{}{}
			terrain.QueryRange(cur, 1, func(p hexgrid.Axial, t pathfind.Terrain) {
				if !t.Walkable() {
					return
				}
				if _, seen := visited[p]; seen {
					return
				}
				visited[p] = struct{}{}
				todo = append(todo, p)
			})
		}
		chunks = append(chunks, chunk)
	}

	sort.SliceStable(chunks, func(i, j int) bool { return len(chunks[i]) > len(chunks[j]) })
	return chunks
}

// connectChunks greedy-steps from each non-mainland chunk toward the
// nearest tile of the mainland (chunks[0]), painting Plain along the way.
// After each straight step it takes up to four sideways steps, each the
// straight step rotated left or right with equal chance (steps that would
// leave the bounds are skipped), so corridors aren't perfectly linear.
func connectChunks(center hexgrid.Axial, radius int32, rng *rand.Rand, chunks []map[hexgrid.Axial]struct{}, terrain *Terrain) {
	bounds := hexgrid.NewHexagon(center, radius-1)

	for _, chunk := range chunks[1:] {
		avg := chunkAverage(chunk)
		closest := nearestTo(chunks[0], avg)
		current := nearestTo(chunk, closest)

		if current.Distance(closest) <= 1 {
			continue
		}

		for {
			vel := nextStep(current, closest)
			current = current.Add(vel)
			terrain.InsertOrUpdate(current, pathfind.TerrainPlain)
			if current.Distance(closest) == 0 {
				break
			}

			reached := false
			for i := 0; i < 4; i++ {
				v := vel
				if rng.Intn(2) == 0 {
					v = v.RotateLeft()
				} else {
					v = v.RotateRight()
				}
				c := current.Add(v)
				if !bounds.Contains(c) {
					continue
				}
				current = c
				terrain.InsertOrUpdate(current, pathfind.TerrainPlain)
				if current.Distance(closest) < 1 {
					reached = true
					break
				}
			}
			if reached {
				break
			}
		}
	}
}

func chunkAverage(chunk map[hexgrid.Axial]struct{}) hexgrid.Axial {
	var sum hexgrid.Axial
	for p := range chunk {
		sum = sum.Add(p)
	}
	n := int32(len(chunk))
	if n == 0 {
		return sum
	}
	return hexgrid.New(sum.Q/n, sum.R/n)
}

func nearestTo(chunk map[hexgrid.Axial]struct{}, target hexgrid.Axial) hexgrid.Axial {
	var best hexgrid.Axial
	bestDist := uint32(0)
	first := true
	for p := range chunk {
		d := p.Distance(target)
		if first || d < bestDist {
			best, bestDist, first = p, d, false
		}
	}
	return best
}

// nextStep picks a unit step from current toward closest, preferring the
// axis with the larger remaining delta.
func nextStep(current, closest hexgrid.Axial) hexgrid.Axial {
	vel := closest.Sub(current)
	qAbs, rAbs := absI32(vel.Q), absI32(vel.R)

	switch {
	case qAbs == rAbs:
		if (vel.Q+vel.R)%2 == 0 {
			return hexgrid.New(signI32(vel.Q), 0)
		}
		return hexgrid.New(0, signI32(vel.R))
	case qAbs < rAbs:
		return hexgrid.New(0, signI32(vel.R))
	default:
		return hexgrid.New(signI32(vel.Q), 0)
	}
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func signI32(v int32) int32 {
	if v < 0 {
		return -1
	}
	if v > 0 {
		return 1
	}
	return 0
}
