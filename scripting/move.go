package scripting

import (
	"github.com/sarchlab/caolo/caolang/vm"
	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/pathfind"
)

// terrainAdapter and entityAdapter pin a WorldView to one room so the
// pathfind package's room-local search can address tiles by bare Axial
// rather than the full WorldPosition the host tracks them by.
type terrainAdapter struct {
	world WorldView
	room  hexgrid.Room
}

func (t terrainAdapter) TerrainAt(pos hexgrid.Axial) pathfind.Terrain {
	return t.world.TerrainAt(hexgrid.WorldPosition{Room: t.room, Pos: pos})
}

type entityAdapter struct {
	world WorldView
	room  hexgrid.Room
}

func (e entityAdapter) Occupied(pos hexgrid.Axial) bool {
	return e.world.Occupied(hexgrid.WorldPosition{Room: e.room, Pos: pos})
}

type roomGraphAdapter struct {
	world WorldView
}

func (g roomGraphAdapter) ConnectionsOf(room hexgrid.Axial) (pathfind.RoomConnections, bool) {
	return g.world.RoomConnections(hexgrid.NewRoom(room))
}

// approachEntity moves the calling bot toward the position of targetPtr
// (an encoded EntityId), stopping at melee/mine range rather than the
// target's own tile.
func approachEntity(vmach *vm.VM[*Aux], targetPtr int32) (int, error) {
	aux := vmach.Aux()
	blob, ok := vmach.ReadBlob(targetPtr)
	if !ok {
		return 0, vmach.Push(int32ToScalar(int32(OperationInvalidInput)))
	}
	target, ok := aux.World.PositionOf(decodeEntityID(blob))
	if !ok {
		return 0, vmach.Push(int32ToScalar(int32(OperationInvalidTarget)))
	}
	if here, ok := aux.World.PositionOf(aux.EntityID); ok && here.Room == target.Room && here.Pos.Distance(target.Pos) <= 1 {
		return 0, vmach.Push(int32ToScalar(int32(OperationOk)))
	}
	result := moveToPos(vmach, aux, target)
	return 0, vmach.Push(int32ToScalar(int32(result)))
}

// moveBotToPosition moves the calling bot toward the WorldPosition blob at
// pointPtr.
func moveBotToPosition(vmach *vm.VM[*Aux], pointPtr int32) (int, error) {
	aux := vmach.Aux()
	blob, ok := vmach.ReadBlob(pointPtr)
	if !ok || len(blob) < 16 {
		return 0, vmach.Push(int32ToScalar(int32(OperationInvalidInput)))
	}
	target := decodeWorldPosition(blob)
	result := moveToPos(vmach, aux, target)
	return 0, vmach.Push(int32ToScalar(int32(result)))
}

// moveToPos is the shared path-cache-aware move logic both entry points
// funnel through: consult the entity's cached path first, and only fall
// back to a fresh A* search (intra-room, or room-to-room via the overworld
// graph) when the cache is empty, stale, or its proposed step no longer
// checks out.
func moveToPos(vmach *vm.VM[*Aux], aux *Aux, target hexgrid.WorldPosition) OperationResult {
	here, ok := aux.World.PositionOf(aux.EntityID)
	if !ok {
		return OperationInvalidInput
	}

	if cached, steps, ok := aux.World.PathCache(aux.EntityID); ok && cached == target && len(steps) > 0 {
		next := steps[len(steps)-1]
		intent := MoveIntent{Bot: aux.EntityID, Position: hexgrid.WorldPosition{Room: here.Room, Pos: next}}
		if aux.World.CheckMove(intent, aux.UserID) == OperationOk {
			aux.Intents.Move = &intent
			aux.Intents.MutPathCache = &MutPathCacheIntent{Bot: aux.EntityID, Action: PathCachePop}
			return OperationOk
		}
		aux.Intents.MutPathCache = &MutPathCacheIntent{Bot: aux.EntityID, Action: PathCacheClear}
	}

	if here.Room == target.Room {
		return moveWithinRoom(aux, here, target)
	}
	return moveAcrossRooms(aux, here, target)
}

func moveWithinRoom(aux *Aux, here, target hexgrid.WorldPosition) OperationResult {
	if here.Pos == target.Pos {
		return OperationOk
	}

	var path []hexgrid.Axial
	_, err := pathfind.FindPathInRoom(
		here.Pos, target.Pos, 0,
		entityAdapter{aux.World, here.Room},
		terrainAdapter{aux.World, here.Room},
		aux.MaxPathfindingIter,
		&path,
	)
	if err != nil || len(path) == 0 {
		return OperationPathNotFound
	}

	return commitPath(aux, here.Room, target, path)
}

func moveAcrossRooms(aux *Aux, here, target hexgrid.WorldPosition) OperationResult {
	var roomPath []hexgrid.Axial
	_, err := pathfind.FindPathOverworld(
		here.Room.Axial, target.Room.Axial,
		roomGraphAdapter{aux.World},
		aux.MaxPathfindingIter,
		&roomPath,
	)
	if err != nil || len(roomPath) == 0 {
		return OperationPathNotFound
	}

	nextRoom := roomPath[len(roomPath)-1]
	delta := nextRoom.Sub(here.Room.Axial)
	idx, ok := hexgrid.NeighbourIndex(delta)
	if !ok {
		return OperationPathNotFound
	}
	conns, ok := aux.World.RoomConnections(here.Room)
	if !ok || conns[idx] == nil {
		return OperationPathNotFound
	}

	radius := aux.World.RoomRadius(here.Room)
	roomCenter := hexgrid.New(radius, radius)
	edgeTile := roomCenter.Add(conns[idx].Direction.Mul(radius))

	var path []hexgrid.Axial
	_, err = pathfind.FindPathInRoom(
		here.Pos, edgeTile, 1,
		entityAdapter{aux.World, here.Room},
		terrainAdapter{aux.World, here.Room},
		aux.MaxPathfindingIter,
		&path,
	)
	if err != nil || len(path) == 0 {
		return OperationPathNotFound
	}

	return commitPath(aux, here.Room, target, path)
}

func commitPath(aux *Aux, room hexgrid.Room, target hexgrid.WorldPosition, path []hexgrid.Axial) OperationResult {
	next := path[len(path)-1]
	intent := MoveIntent{Bot: aux.EntityID, Position: hexgrid.WorldPosition{Room: room, Pos: next}}
	if aux.World.CheckMove(intent, aux.UserID) != OperationOk {
		return OperationPathNotFound
	}
	aux.Intents.Move = &intent
	aux.Intents.CachePath = &CachePathIntent{
		Bot:    aux.EntityID,
		Target: target,
		Path:   path[:len(path)-1],
	}
	return OperationOk
}
