package world

import (
	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/pathfind"
)

// PositionOf implements scripting.WorldView.
func (w *World) PositionOf(id ids.EntityId) (hexgrid.WorldPosition, bool) {
	return w.Positions.Get(id)
}

// OwnerOf implements scripting.WorldView.
func (w *World) OwnerOf(id ids.EntityId) (ids.UserId, bool) {
	return w.Owners.Get(id)
}

// PathCache implements scripting.WorldView.
func (w *World) PathCache(id ids.EntityId) (hexgrid.WorldPosition, []hexgrid.Axial, bool) {
	target, okTarget := w.PathTargets.Get(id)
	cache, okCache := w.PathCaches.Get(id)
	if !okTarget || !okCache || cache == nil || cache.Len() == 0 {
		return hexgrid.WorldPosition{}, nil, false
	}
	return target, cache.Steps(), true
}

// TerrainAt implements scripting.WorldView.
func (w *World) TerrainAt(pos hexgrid.WorldPosition) pathfind.Terrain {
	room, ok := w.Rooms[pos.Room.Axial]
	if !ok {
		return pathfind.TerrainEmpty
	}
	return room.terrainAt(pos.Pos)
}

// Occupied implements scripting.WorldView.
func (w *World) Occupied(pos hexgrid.WorldPosition) bool {
	room, ok := w.Rooms[pos.Room.Axial]
	if !ok {
		return false
	}
	return room.Occupants.Contains(pos.Pos)
}

// RoomRadius implements scripting.WorldView.
func (w *World) RoomRadius(room hexgrid.Room) int32 {
	r, ok := w.Rooms[room.Axial]
	if !ok {
		return 0
	}
	return r.Radius
}

// RoomConnections implements scripting.WorldView.
func (w *World) RoomConnections(room hexgrid.Room) (pathfind.RoomConnections, bool) {
	r, ok := w.Rooms[room.Axial]
	if !ok {
		return pathfind.RoomConnections{}, false
	}
	return r.Connections, true
}

// RoomOf implements scripting.WorldView.
func (w *World) RoomOf(axial hexgrid.Axial) hexgrid.Room {
	return hexgrid.NewRoom(axial)
}

// FindClosestInRoom implements scripting.WorldView.
func (w *World) FindClosestInRoom(room hexgrid.Room, center hexgrid.Axial, pred func(ids.EntityId) bool) (ids.EntityId, bool) {
	r, ok := w.Rooms[room.Axial]
	if !ok {
		return 0, false
	}
	_, id, found := r.Occupants.FindClosestByFilter(center, func(_ hexgrid.Axial, candidate ids.EntityId) bool {
		return pred(candidate)
	})
	return id, found
}

// IsResource implements scripting.WorldView.
func (w *World) IsResource(id ids.EntityId) bool { return w.Resources.Contains(id) }

// IsSpawnOwnedBy implements scripting.WorldView.
func (w *World) IsSpawnOwnedBy(id ids.EntityId, user ids.UserId) bool {
	if !w.Spawns.Contains(id) {
		return false
	}
	owner, ok := w.Owners.Get(id)
	return ok && owner == user
}

// IsEnemyBot implements scripting.WorldView.
func (w *World) IsEnemyBot(id ids.EntityId, user ids.UserId) bool {
	if !w.Bots.Contains(id) {
		return false
	}
	owner, ok := w.Owners.Get(id)
	return ok && owner != user
}
