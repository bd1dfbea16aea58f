// Package boundary is the external edge of the simulation (C10): it turns
// a World into the rendering-agnostic snapshot spec §6.2 describes, and
// turns inbound commands (spec §6.3) into validated mutations against that
// same World.
package boundary

import (
	"github.com/sarchlab/caolo/config"
	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/pathfind"
	"github.com/sarchlab/caolo/world"
)

// AxialView is the {q,r} wire shape spec §6.2 names for both room and
// in-room coordinates.
type AxialView struct {
	Q int32 `json:"q"`
	R int32 `json:"r"`
}

func axialView(a hexgrid.Axial) AxialView { return AxialView{Q: a.Q, R: a.R} }

// PixelView is an absolute rendering coordinate, room-level flat-top
// packing composed with in-room pointy-top tile placement.
type PixelView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PositionView is the WorldPosition wire shape spec §6.2 names:
// { room:{q,r}, roomPos:{q,r}, absolutePos:{x,y} }.
type PositionView struct {
	Room        AxialView `json:"room"`
	RoomPos     AxialView `json:"roomPos"`
	AbsolutePos PixelView `json:"absolutePos"`
}

// CargoView mirrors a world.CargoHold.
type CargoView struct {
	Energy   int32 `json:"energy"`
	Mineral  int32 `json:"mineral"`
	Capacity int32 `json:"capacity"`
}

// BotView is one bot entity's snapshot row.
type BotView struct {
	ID       ids.EntityId `json:"id"`
	Owner    *string      `json:"owner,omitempty"`
	Position PositionView `json:"position"`
	Health   int32        `json:"health"`
	Cargo    CargoView    `json:"cargo"`
}

// StructureView is one spawn structure's snapshot row.
type StructureView struct {
	ID       ids.EntityId `json:"id"`
	Owner    *string      `json:"owner,omitempty"`
	Position PositionView `json:"position"`
}

// ResourceView is one harvestable resource's snapshot row.
type ResourceView struct {
	ID       ids.EntityId `json:"id"`
	Position PositionView `json:"position"`
	Cargo    CargoView    `json:"cargo"`
}

// LogView is one console_log payload emitted during the tick.
type LogView struct {
	Entity  ids.EntityId `json:"entity"`
	Payload string       `json:"payload"`
	Tick    uint64       `json:"tick"`
}

// TerrainTileView is one tile's terrain kind, keyed by its in-room axial
// position.
type TerrainTileView struct {
	Pos  AxialView `json:"pos"`
	Kind string    `json:"kind"`
}

// RoomConnectionView is one filled edge of a room's connection array.
type RoomConnectionView struct {
	Direction int       `json:"direction"`
	Target    AxialView `json:"target"`
}

// RoomPropertiesView is one room's static shape: its radius and the
// overworld edges it connects across.
type RoomPropertiesView struct {
	Radius      int32                `json:"radius"`
	Connections []RoomConnectionView `json:"connections"`
}

// Snapshot is the JSON-shaped object spec §6.2 names, with bots,
// structures, resources, and terrain each keyed by room "q;r" (matching
// how the reference's own world-state cache shards these fields).
type Snapshot struct {
	Bots           map[string][]BotView           `json:"bots"`
	Structures     map[string][]StructureView      `json:"structures"`
	Resources      map[string][]ResourceView        `json:"resources"`
	Logs           []LogView                        `json:"logs"`
	Terrain        map[string][]TerrainTileView     `json:"terrain"`
	Rooms          []AxialView                       `json:"rooms"`
	RoomProperties map[string]RoomPropertiesView     `json:"roomProperties"`
	GameConfig     config.Config                     `json:"gameConfig"`
}

// SnapshotBuilder converts a World into a Snapshot, fixing the tile size
// and per-room footprint used by the axial-to-pixel conversion spec §4.10
// calls for (pointy-top tiles, flat-top room packing).
type SnapshotBuilder struct {
	TileSize   float64
	RoomRadius int32
}

// NewSnapshotBuilder builds a SnapshotBuilder sized for rooms of the given
// radius (in tiles), the same value config.Config.RoomRadius carries.
func NewSnapshotBuilder(tileSize float64, roomRadius int32) SnapshotBuilder {
	return SnapshotBuilder{TileSize: tileSize, RoomRadius: roomRadius}
}

func (b SnapshotBuilder) position(w *world.World, pos hexgrid.WorldPosition) PositionView {
	roomPitch := b.TileSize * float64(2*b.RoomRadius+1)
	roomX, roomY := pos.Room.Axial.ToPixelFlat(roomPitch)
	tileX, tileY := pos.Pos.ToPixelPointy(b.TileSize)
	return PositionView{
		Room:        axialView(pos.Room.Axial),
		RoomPos:     axialView(pos.Pos),
		AbsolutePos: PixelView{X: roomX + tileX, Y: roomY + tileY},
	}
}

func ownerString(owner ids.UserId, ok bool) *string {
	if !ok {
		return nil
	}
	s := owner.String()
	return &s
}

func terrainName(t pathfind.Terrain) string {
	switch t {
	case pathfind.TerrainPlain:
		return "plain"
	case pathfind.TerrainWall:
		return "wall"
	case pathfind.TerrainBridge:
		return "bridge"
	default:
		return "empty"
	}
}

// Build walks every table the snapshot needs and assembles the result.
// Read-only: Build never mutates w.
func (b SnapshotBuilder) Build(w *world.World, cfg config.Config) Snapshot {
	snap := Snapshot{
		Bots:           map[string][]BotView{},
		Structures:     map[string][]StructureView{},
		Resources:      map[string][]ResourceView{},
		Terrain:        map[string][]TerrainTileView{},
		RoomProperties: map[string]RoomPropertiesView{},
		GameConfig:     cfg,
	}

	w.Bots.Iterate(func(id ids.EntityId) {
		pos, ok := w.PositionOf(id)
		if !ok {
			return
		}
		owner, hasOwner := w.OwnerOf(id)
		hp, _ := w.Health.Get(id)
		cargo, _ := w.Cargo.Get(id)
		key := pos.Room.Key()
		snap.Bots[key] = append(snap.Bots[key], BotView{
			ID:       id,
			Owner:    ownerString(owner, hasOwner),
			Position: b.position(w, pos),
			Health:   hp,
			Cargo:    CargoView{Energy: cargo.Energy, Mineral: cargo.Mineral, Capacity: cargo.Capacity},
		})
	})

	w.Spawns.Iterate(func(id ids.EntityId) {
		pos, ok := w.PositionOf(id)
		if !ok {
			return
		}
		owner, hasOwner := w.OwnerOf(id)
		key := pos.Room.Key()
		snap.Structures[key] = append(snap.Structures[key], StructureView{
			ID:       id,
			Owner:    ownerString(owner, hasOwner),
			Position: b.position(w, pos),
		})
	})

	w.Resources.Iterate(func(id ids.EntityId) {
		pos, ok := w.PositionOf(id)
		if !ok {
			return
		}
		cargo, _ := w.Cargo.Get(id)
		key := pos.Room.Key()
		snap.Resources[key] = append(snap.Resources[key], ResourceView{
			ID:       id,
			Position: b.position(w, pos),
			Cargo:    CargoView{Energy: cargo.Energy, Mineral: cargo.Mineral, Capacity: cargo.Capacity},
		})
	})

	for _, l := range w.Logs {
		snap.Logs = append(snap.Logs, LogView{Entity: l.Entity, Payload: l.Payload, Tick: l.Tick})
	}

	for axial, room := range w.Rooms {
		key := hexgrid.NewRoom(axial).Key()
		snap.Rooms = append(snap.Rooms, axialView(axial))

		room.Terrain.Iterate(func(pos hexgrid.Axial, t pathfind.Terrain) {
			snap.Terrain[key] = append(snap.Terrain[key], TerrainTileView{
				Pos:  axialView(pos),
				Kind: terrainName(t),
			})
		})

		var conns []RoomConnectionView
		for i, c := range room.Connections {
			if c == nil {
				continue
			}
			conns = append(conns, RoomConnectionView{
				Direction: i,
				Target:    axialView(axial.Add(c.Direction)),
			})
		}
		snap.RoomProperties[key] = RoomPropertiesView{Radius: room.Radius, Connections: conns}
	}

	return snap
}
