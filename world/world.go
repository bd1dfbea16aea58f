package world

import (
	"github.com/sarchlab/caolo/caolang"
	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/pathfind"
	"github.com/sarchlab/caolo/scripting"
	"github.com/sarchlab/caolo/table"
)

// CargoHold is a bot's or structure's carried resources.
type CargoHold struct {
	Energy   int32
	Mineral  int32
	Capacity int32
}

// World is the store every tick reads through and mutates via resolved
// intents: entity lifetime, per-room terrain/occupancy, and the component
// tables scripting's foreign functions consult as a scripting.WorldView.
type World struct {
	Allocator *ids.Allocator
	Archetype *table.Archetype

	Rooms map[hexgrid.Axial]*Room

	Positions *table.Dense[hexgrid.WorldPosition]
	Owners    *table.Dense[ids.UserId]
	Health    *table.Dense[int32]
	Cargo     *table.Dense[CargoHold]

	Resources *table.SparseFlag
	Spawns    *table.SparseFlag
	Bots      *table.SparseFlag

	PathTargets *table.Dense[hexgrid.WorldPosition]
	PathCaches  *table.Dense[*pathfind.Cache]

	Scripts        *table.Dense[ids.ScriptId]
	Programs       map[ids.ScriptId]*caolang.CompiledProgram
	DefaultScripts map[ids.UserId]ids.ScriptId

	EnergyRegen *table.Dense[int32]
	Decay       *table.Dense[DecaySchedule]
	Spawning    *table.Dense[SpawnSchedule]

	Logs []scripting.LogIntent

	tick uint64
}

// DecaySchedule is a bot's periodic HP drain: every Interval ticks it loses
// Amount HP, until a deferred delete is queued at zero.
type DecaySchedule struct {
	Interval int32
	Counter  int32
	Amount   int32
}

// SpawnSchedule is a spawn structure's in-progress bot production: once
// Countdown reaches zero a new bot is instantiated at the spawn's position
// under BotScript, owned by the spawn structure's owner.
type SpawnSchedule struct {
	Countdown int32
	Period    int32
	BotScript ids.ScriptId
}

// New builds an empty World with every component table registered against
// the Archetype's deferred-delete purge.
func New() *World {
	w := &World{
		Allocator:      ids.NewAllocator(),
		Archetype:      table.NewArchetype(),
		Rooms:          map[hexgrid.Axial]*Room{},
		Positions:      table.NewDense[hexgrid.WorldPosition](),
		Owners:         table.NewDense[ids.UserId](),
		Health:         table.NewDense[int32](),
		Cargo:          table.NewDense[CargoHold](),
		Resources:      table.NewSparseFlag(),
		Spawns:         table.NewSparseFlag(),
		Bots:           table.NewSparseFlag(),
		PathTargets:    table.NewDense[hexgrid.WorldPosition](),
		PathCaches:     table.NewDense[*pathfind.Cache](),
		Scripts:        table.NewDense[ids.ScriptId](),
		Programs:       map[ids.ScriptId]*caolang.CompiledProgram{},
		DefaultScripts: map[ids.UserId]ids.ScriptId{},
		EnergyRegen:    table.NewDense[int32](),
		Decay:          table.NewDense[DecaySchedule](),
		Spawning:       table.NewDense[SpawnSchedule](),
	}
	w.Archetype.Register(w.Positions)
	w.Archetype.Register(w.Owners)
	w.Archetype.Register(w.Health)
	w.Archetype.Register(w.Cargo)
	w.Archetype.Register(w.Resources)
	w.Archetype.Register(w.Spawns)
	w.Archetype.Register(w.Bots)
	w.Archetype.Register(w.PathTargets)
	w.Archetype.Register(w.PathCaches)
	w.Archetype.Register(w.Scripts)
	w.Archetype.Register(w.EnergyRegen)
	w.Archetype.Register(w.Decay)
	w.Archetype.Register(w.Spawning)
	return w
}

// AddRoom installs room at axial, keyed by its overworld coordinate.
func (w *World) AddRoom(axial hexgrid.Axial, room *Room) {
	w.Rooms[axial] = room
}

// Tick returns the current tick counter.
func (w *World) Tick() uint64 { return w.tick }

// AdvanceTick increments and returns the new tick counter; called once per
// tick by the sim pipeline's post_process stage.
func (w *World) AdvanceTick() uint64 {
	w.tick++
	return w.tick
}

func (w *World) place(id ids.EntityId, pos hexgrid.WorldPosition) {
	w.Positions.Insert(id, pos)
	if room, ok := w.Rooms[pos.Room.Axial]; ok {
		room.Occupants.InsertOrUpdate(pos.Pos, id)
	}
}

func (w *World) unplace(id ids.EntityId) {
	pos, ok := w.Positions.Get(id)
	if !ok {
		return
	}
	if room, ok := w.Rooms[pos.Room.Axial]; ok {
		room.Occupants.Delete(pos.Pos)
	}
}

// defaultDecay mirrors a freshly spawned bot's maintenance schedule: decay
// starts after an initial 100-tick grace period, then recurs every 20
// ticks, draining the bot's health to zero in a single hit once it fires.
var defaultDecay = DecaySchedule{Interval: 20, Counter: 100, Amount: 100}

// defaultCargoCapacity is the carry capacity granted to a freshly spawned
// bot.
const defaultCargoCapacity = 50

// SpawnBot allocates a new bot entity owned by owner at pos, wiring in its
// decay schedule and empty cargo hold.
func (w *World) SpawnBot(owner ids.UserId, pos hexgrid.WorldPosition, health int32) ids.EntityId {
	id := w.Allocator.Allocate()
	w.Owners.Insert(id, owner)
	w.place(id, pos)
	w.Health.Insert(id, health)
	w.Decay.Insert(id, defaultDecay)
	w.Cargo.Insert(id, CargoHold{Capacity: defaultCargoCapacity})
	w.Bots.Set(id)
	if script, ok := w.DefaultScripts[owner]; ok {
		w.Scripts.Insert(id, script)
	}
	return id
}

// SpawnResource allocates a new harvestable resource entity at pos.
func (w *World) SpawnResource(pos hexgrid.WorldPosition, amount int32) ids.EntityId {
	id := w.Allocator.Allocate()
	w.place(id, pos)
	w.Cargo.Insert(id, CargoHold{Energy: amount, Capacity: amount})
	w.Resources.Set(id)
	return id
}

// SpawnSpawnPoint allocates a new spawn structure owned by owner at pos.
func (w *World) SpawnSpawnPoint(owner ids.UserId, pos hexgrid.WorldPosition) ids.EntityId {
	id := w.Allocator.Allocate()
	w.Owners.Insert(id, owner)
	w.place(id, pos)
	w.Spawns.Set(id)
	return id
}

// QueueSpawn starts a spawn structure producing a new bot running botScript,
// ready in period ticks. Replaces any spawn already in progress.
func (w *World) QueueSpawn(spawn ids.EntityId, botScript ids.ScriptId, period int32) {
	w.Spawning.Insert(spawn, SpawnSchedule{Countdown: period, Period: period, BotScript: botScript})
}

// RegisterProgram installs a compiled script under id, reachable by entities
// whose Scripts entry names it.
func (w *World) RegisterProgram(id ids.ScriptId, program *caolang.CompiledProgram) {
	w.Programs[id] = program
}

// AssignScript sets the script an entity's tick execution runs.
func (w *World) AssignScript(entity ids.EntityId, script ids.ScriptId) {
	w.Scripts.Insert(entity, script)
}

// SetDefaultScript sets the script newly spawned bots owned by user run
// unless assigned one explicitly.
func (w *World) SetDefaultScript(user ids.UserId, script ids.ScriptId) {
	w.DefaultScripts[user] = script
}

// DeleteEntity queues id for removal at the next Archetype.Flush, moving
// its tile back to unoccupied immediately so pathfinding and occupancy
// checks within the same tick see it as vacated.
func (w *World) DeleteEntity(id ids.EntityId) {
	w.unplace(id)
	w.Archetype.QueueDelete(id)
}

// MoveEntity relocates id's position, updating both the component table
// and the per-room occupancy index. Intended to be called only by the
// tick pipeline's resolution stage, after CheckMove has approved the move.
func (w *World) MoveEntity(id ids.EntityId, to hexgrid.WorldPosition) {
	w.unplace(id)
	w.place(id, to)
}

// RecordLog appends a script-emitted log line to this tick's buffer,
// drained by the external boundary's snapshot builder.
func (w *World) RecordLog(l scripting.LogIntent) {
	w.Logs = append(w.Logs, l)
}

// PostProcess implements tick pipeline step 5: frees every deferred-deleted
// entity id back to the allocator and advances the tick counter. Must run
// single-threaded, after every other resolution system has finished.
func (w *World) PostProcess() []ids.EntityId {
	flushed := w.Archetype.Flush()
	for _, id := range flushed {
		w.Allocator.Free(id)
	}
	w.AdvanceTick()
	return flushed
}

// RandomUncontestedPosition picks a position within radius hexes of center,
// in room, that no entity currently occupies. Used by mineral respawn to
// relocate a depleted resource; loops until the rng turns up a free tile,
// matching the original's random_uncontested_pos_in_range retry loop.
func (w *World) RandomUncontestedPosition(room hexgrid.Room, center hexgrid.Axial, radius int32, rng func(int32) int32) hexgrid.WorldPosition {
	for {
		q := center.Q + rng(2*radius+1) - radius
		r := center.R + rng(2*radius+1) - radius
		pos := hexgrid.WorldPosition{Room: room, Pos: hexgrid.New(q, r)}
		if pos.Pos.Distance(center) > uint32(radius) {
			continue
		}
		if !w.Occupied(pos) {
			return pos
		}
	}
}

var _ scripting.WorldView = (*World)(nil)
