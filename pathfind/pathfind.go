// Package pathfind implements intra-room and inter-room A* search over the
// hex grid, bridge selection for multi-room paths, and a per-entity path
// cache that intent emitters consult before launching a new search.
package pathfind

import (
	"container/heap"
	"errors"
	"sort"

	"github.com/sarchlab/caolo/hexgrid"
)

// Errors returned by the search functions.
var (
	ErrNotFound     = errors.New("pathfind: budget exhausted before reaching goal")
	ErrUnreachable  = errors.New("pathfind: open set emptied before reaching goal")
	ErrRoomNotFound = errors.New("pathfind: room not found")
	ErrEdgeNotExists = errors.New("pathfind: proposed edge does not exist")
	ErrInvalidPos   = errors.New("pathfind: corner tile has no mirrored position")
)

// Terrain is the walkability classification of a tile, read from the map's
// TerrainComponent table.
type Terrain byte

const (
	TerrainEmpty Terrain = iota
	TerrainPlain
	TerrainWall
	TerrainBridge
)

// Walkable reports whether a bot may occupy a tile of this terrain.
func (t Terrain) Walkable() bool { return t == TerrainPlain || t == TerrainBridge }

// TerrainView reads terrain at a position; a read-only view over a room's
// TerrainComponent table.
type TerrainView interface {
	TerrainAt(pos hexgrid.Axial) Terrain
}

// EntityView reports whether a position is occupied by another entity; a
// read-only view over a room's EntityComponent positions.
type EntityView interface {
	Occupied(pos hexgrid.Axial) bool
}

type openNode struct {
	pos    hexgrid.Axial
	parent hexgrid.Axial
	hCost  int32
	gCost  int32
	fCost  int32
	index  int
}

// reversedHeap is a min-f-cost heap: Go's container/heap is a min-heap by
// Less, so unlike the reference's reversed max-heap we simply order on
// ascending f-cost directly.
type reversedHeap []*openNode

func (h reversedHeap) Len() int            { return len(h) }
func (h reversedHeap) Less(i, j int) bool  { return h[i].fCost < h[j].fCost }
func (h reversedHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *reversedHeap) Push(x interface{}) {
	n := x.(*openNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *reversedHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// FindPathInRoom searches for a path from `from` to within `distance` hex
// steps of `to`, using only the 6 hex neighbors that are walkable terrain,
// unoccupied (except when the neighbor equals the goal), and previously
// unvisited. The result path is appended to `path` in reverse order (pop to
// walk it forward). Returns the number of search-budget steps remaining.
func FindPathInRoom(
	from, to hexgrid.Axial,
	distance uint32,
	entities EntityView,
	terrain TerrainView,
	maxSteps uint32,
	path *[]hexgrid.Axial,
) (uint32, error) {
	closed := map[hexgrid.Axial]*openNode{}
	open := &reversedHeap{}
	heap.Init(open)

	start := &openNode{pos: from, parent: from, hCost: int32(from.Distance(to)), gCost: 0}
	start.fCost = start.hCost + start.gCost
	closed[from] = start
	heap.Push(open, start)

	var current *openNode
	for open.Len() > 0 && maxSteps > 0 {
		current = heap.Pop(open).(*openNode)
		closed[current.pos] = current

		if current.pos.Distance(to) <= distance {
			reconstruct(closed, current.pos, from, path)
			return maxSteps, nil
		}

		maxSteps--

		for _, neighbour := range current.pos.Neighbours() {
			if _, seen := closed[neighbour]; seen {
				continue
			}
			if !terrain.TerrainAt(neighbour).Walkable() {
				continue
			}
			if neighbour != to && entities.Occupied(neighbour) {
				continue
			}

			node := &openNode{
				pos:    neighbour,
				parent: current.pos,
				hCost:  int32(neighbour.Distance(to)),
				gCost:  current.gCost + 1,
			}
			node.fCost = node.hCost + node.gCost
			heap.Push(open, node)
		}
	}

	if current != nil && current.pos.Distance(to) <= distance {
		reconstruct(closed, current.pos, from, path)
		return maxSteps, nil
	}
	if open.Len() == 0 {
		return 0, ErrUnreachable
	}
	return 0, ErrNotFound
}

func reconstruct(closed map[hexgrid.Axial]*openNode, goal, start hexgrid.Axial, path *[]hexgrid.Axial) {
	cur := goal
	for cur != start {
		*path = append(*path, cur)
		node, ok := closed[cur]
		if !ok {
			return
		}
		cur = node.parent
	}
}

// RoomConnection describes one of a room's up-to-6 edges to a neighboring
// room.
type RoomConnection struct {
	Direction hexgrid.Axial
}

// RoomConnections lists the (at most 6) connections of a room, indexed by
// hexgrid neighbour index; a nil entry means no connection on that edge.
type RoomConnections [6]*RoomConnection

// RoomGraph reads a room's connections, keyed by room axial coordinate.
type RoomGraph interface {
	ConnectionsOf(room hexgrid.Axial) (RoomConnections, bool)
}

// FindPathOverworld runs A* over the room-adjacency graph from room `from`
// to room `to`, appending the room chain in reverse order to `rooms`: the
// destination room first, the room next to `from` last, so popping from the
// end walks the chain.
func FindPathOverworld(
	from, to hexgrid.Axial,
	graph RoomGraph,
	maxSteps uint32,
	rooms *[]hexgrid.Axial,
) (uint32, error) {
	closed := map[hexgrid.Axial]*openNode{}
	open := &reversedHeap{}
	heap.Init(open)

	start := &openNode{pos: from, parent: from, hCost: int32(from.Distance(to)), gCost: 0}
	start.fCost = start.hCost
	closed[from] = start
	heap.Push(open, start)

	var current *openNode
	for open.Len() > 0 && maxSteps > 0 {
		current = heap.Pop(open).(*openNode)
		closed[current.pos] = current
		if current.pos == to {
			reconstruct(closed, to, from, rooms)
			return maxSteps, nil
		}
		maxSteps--

		conns, ok := graph.ConnectionsOf(current.pos)
		if !ok {
			return 0, ErrRoomNotFound
		}
		for _, conn := range conns {
			if conn == nil {
				continue
			}
			neighbour := current.pos.Add(conn.Direction)
			if _, seen := closed[neighbour]; seen {
				continue
			}
			node := &openNode{
				pos:    neighbour,
				parent: current.pos,
				hCost:  int32(neighbour.Distance(to)),
				gCost:  current.gCost + 1,
			}
			node.fCost = node.hCost + node.gCost
			heap.Push(open, node)
		}
	}

	if current != nil && current.pos == to {
		reconstruct(closed, to, from, rooms)
		return maxSteps, nil
	}
	if open.Len() == 0 {
		return 0, ErrUnreachable
	}
	return 0, ErrNotFound
}

// SortBridgeByDistance sorts candidate bridge tiles by hex distance from
// `from`, nearest first, matching the reference's greedy bridge-selection
// order.
func SortBridgeByDistance(tiles []hexgrid.Axial, from hexgrid.Axial) {
	sort.Slice(tiles, func(i, j int) bool {
		return tiles[i].Distance(from) < tiles[j].Distance(from)
	})
}

// MirroredRoomPosition computes the tile a bot lands on in the neighboring
// room reached by crossing the edge pos lies on: translate to room-local
// cube coordinates, find the max-abs axis, swap the other two and negate
// all three, then translate back. Corner tiles (on two edges at once) have no well-defined
// mirror and return ErrInvalidPos.
func MirroredRoomPosition(pos, roomCenter hexgrid.Axial, radius int32) (hexgrid.Axial, error) {
	local := pos.Sub(roomCenter)
	cube := local.Cube()

	maxIdx, maxAbs := 0, absI32(cube[0])
	tiesAtMax := 1
	for i := 1; i < 3; i++ {
		a := absI32(cube[i])
		if a > maxAbs {
			maxAbs, maxIdx, tiesAtMax = a, i, 1
		} else if a == maxAbs {
			tiesAtMax++
		}
	}
	if maxAbs != int32(radius) || tiesAtMax > 1 {
		return hexgrid.Axial{}, ErrInvalidPos
	}

	mirrored := cube
	switch maxIdx {
	case 0:
		mirrored[1], mirrored[2] = -cube[2], -cube[1]
	case 1:
		mirrored[0], mirrored[2] = -cube[2], -cube[0]
	case 2:
		mirrored[0], mirrored[1] = -cube[1], -cube[0]
	}
	mirrored[maxIdx] = -cube[maxIdx]

	return hexgrid.FromCube(mirrored).Add(roomCenter), nil
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
