// Package world is the concrete store the tick pipeline and scripting's
// foreign functions read and write through: per-room terrain/entity tables,
// entity component tables keyed by ids.EntityId, and the lookup/mutation
// methods that back scripting.WorldView and pathfind's adapter interfaces.
package world

import (
	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/morton"
	"github.com/sarchlab/caolo/pathfind"
)

// Room holds one room's terrain and the entities currently standing in it.
type Room struct {
	Radius      int32
	Connections pathfind.RoomConnections
	Terrain     *morton.Table[pathfind.Terrain]
	Occupants   *morton.Table[ids.EntityId]
}

// NewRoom builds an empty Room of the given radius with no connections
// filled in yet; SetConnection installs them as the world graph is wired
// up.
func NewRoom(radius int32) *Room {
	return &Room{
		Radius:  radius,
		Terrain: morton.NewTable[pathfind.Terrain](),
		Occupants: morton.NewTable[ids.EntityId](),
	}
}

// SetConnection installs room's edge in the given neighbour direction.
func (r *Room) SetConnection(direction hexgrid.Axial) {
	idx, ok := hexgrid.NeighbourIndex(direction)
	if !ok {
		return
	}
	r.Connections[idx] = &pathfind.RoomConnection{Direction: direction}
}

// terrainAt reads a tile's terrain, defaulting to TerrainEmpty when the
// table has no entry (matching the morton.Table's own sparse-by-default
// semantics: untouched tiles were never generated).
func (r *Room) terrainAt(pos hexgrid.Axial) pathfind.Terrain {
	t, ok := r.Terrain.Get(pos)
	if !ok {
		return pathfind.TerrainEmpty
	}
	return t
}
