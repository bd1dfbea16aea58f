package pathfind

import (
	"testing"

	"github.com/sarchlab/caolo/hexgrid"
)

type mapTerrain struct {
	walls map[hexgrid.Axial]bool
}

func (m mapTerrain) TerrainAt(pos hexgrid.Axial) Terrain {
	if m.walls[pos] {
		return TerrainWall
	}
	return TerrainPlain
}

type noEntities struct{}

func (noEntities) Occupied(hexgrid.Axial) bool { return false }

func TestFindPathInRoomStraightLine(t *testing.T) {
	terrain := mapTerrain{walls: map[hexgrid.Axial]bool{}}
	from := hexgrid.New(0, 0)
	to := hexgrid.New(4, 0)

	var path []hexgrid.Axial
	remaining, err := FindPathInRoom(from, to, 0, noEntities{}, terrain, 100, &path)
	if err != nil {
		t.Fatalf("expected path, got %v", err)
	}
	if remaining == 0 {
		t.Fatalf("expected budget remaining")
	}
	if len(path) == 0 {
		t.Fatalf("expected a non-empty path")
	}
	if path[0] != to {
		t.Fatalf("expected path[0] (last pop) to be the goal, got %v", path[0])
	}
}

// TestFindPathAroundWall builds a wall that blocks the direct line between
// from and to, forcing the search to detour.
func TestFindPathAroundWall(t *testing.T) {
	walls := map[hexgrid.Axial]bool{}
	from := hexgrid.New(-3, 0)
	to := hexgrid.New(3, 0)
	for r := -3; r <= 3; r++ {
		if r == 3 || r == -3 {
			continue
		}
		walls[hexgrid.New(0, int32(r))] = true
	}
	terrain := mapTerrain{walls: walls}

	var path []hexgrid.Axial
	remaining, err := FindPathInRoom(from, to, 0, noEntities{}, terrain, 1000, &path)
	if err != nil {
		t.Fatalf("expected a detour path, got %v", err)
	}
	if remaining == 0 {
		t.Fatalf("expected budget remaining")
	}

	visited := map[hexgrid.Axial]bool{from: true}
	cur := from
	for i := len(path) - 1; i >= 0; i-- {
		step := path[i]
		if walls[step] {
			t.Fatalf("path steps through a wall at %v", step)
		}
		if step.Distance(cur) != 1 {
			t.Fatalf("non-adjacent step from %v to %v", cur, step)
		}
		cur = step
		visited[step] = true
	}
	if cur != to {
		t.Fatalf("expected path to end at %v, got %v", to, cur)
	}
}

func TestFindPathUnreachable(t *testing.T) {
	walls := map[hexgrid.Axial]bool{}
	center := hexgrid.New(0, 0)
	for _, n := range center.Neighbours() {
		walls[n] = true
	}
	terrain := mapTerrain{walls: walls}

	var path []hexgrid.Axial
	_, err := FindPathInRoom(center, hexgrid.New(10, 0), 0, noEntities{}, terrain, 1000, &path)
	if err != ErrUnreachable {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestFindPathBudgetExhausted(t *testing.T) {
	terrain := mapTerrain{walls: map[hexgrid.Axial]bool{}}
	var path []hexgrid.Axial
	_, err := FindPathInRoom(hexgrid.New(0, 0), hexgrid.New(50, 0), 0, noEntities{}, terrain, 2, &path)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type roomGraph struct {
	conns map[hexgrid.Axial]RoomConnections
}

func (g roomGraph) ConnectionsOf(room hexgrid.Axial) (RoomConnections, bool) {
	c, ok := g.conns[room]
	return c, ok
}

func TestFindPathOverworldLinearChain(t *testing.T) {
	r0, r1, r2 := hexgrid.New(0, 0), hexgrid.New(1, 0), hexgrid.New(2, 0)
	east := RoomConnection{Direction: hexgrid.New(1, 0)}
	west := RoomConnection{Direction: hexgrid.New(-1, 0)}

	g := roomGraph{conns: map[hexgrid.Axial]RoomConnections{
		r0: {0: &east},
		r1: {0: &east, 3: &west},
		r2: {3: &west},
	}}

	var rooms []hexgrid.Axial
	_, err := FindPathOverworld(r0, r2, g, 100, &rooms)
	if err != nil {
		t.Fatalf("expected a room chain, got %v", err)
	}
	if len(rooms) == 0 || rooms[0] != r2 {
		t.Fatalf("expected rooms[0] (last pop) to be the destination room, got %v", rooms)
	}
}

func TestCachePopOrder(t *testing.T) {
	path := []hexgrid.Axial{hexgrid.New(2, 0), hexgrid.New(1, 0), hexgrid.New(0, 0)}
	cache := NewCache(path)
	first, ok := cache.Pop()
	if !ok || first != hexgrid.New(0, 0) {
		t.Fatalf("expected first pop to be (0,0), got %v ok=%v", first, ok)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 remaining, got %d", cache.Len())
	}
}

func TestMirroredRoomPositionRejectsCorner(t *testing.T) {
	center := hexgrid.New(0, 0)
	corner := hexgrid.New(2, -2)
	if _, err := MirroredRoomPosition(corner, center, 2); err != ErrInvalidPos {
		t.Fatalf("expected ErrInvalidPos for corner tile, got %v", err)
	}
}

func TestMirroredRoomPositionEdgeTile(t *testing.T) {
	center := hexgrid.New(0, 0)
	edge := hexgrid.New(2, -1)
	mirrored, err := MirroredRoomPosition(edge, center, 2)
	if err != nil {
		t.Fatalf("expected a mirrored position, got %v", err)
	}
	if mirrored.Distance(center) != 2 {
		t.Fatalf("expected mirrored position to stay on the radius-2 ring, got %v", mirrored)
	}
}
