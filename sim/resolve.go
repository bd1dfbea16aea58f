package sim

import (
	"sort"

	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/pathfind"
	"github.com/sarchlab/caolo/scripting"
	"github.com/sarchlab/caolo/world"
)

// meleeDamage is the fixed HP loss a successful melee_attack inflicts,
// mirroring the reference's lack of a weapon/armor stat system.
const meleeDamage = 10

// mineralRespawnRadius bounds how far a depleted resource may relocate to
// from its room's center when the reference's random_uncontested_pos_in_range
// search succeeds.
const mineralRespawnRadius = 14

// resolve runs every intent-resolution system in the order spec'd for
// step 4 of the tick pipeline: energy regen, spawn countdown, decay,
// mineral respawn, position-index rebuild, path-cache update/pop, melee,
// dropoff/mine transfers, moves, logs. Everything here is single-threaded.
func (c *Core) resolve(b intentBuckets) {
	c.resolveEnergyRegen()
	c.resolveSpawns()
	c.resolveDecayAndDeletes(b.deleteEntity)
	c.resolveMineralRespawn()
	c.resolvePositionIndexRebuild()
	c.resolvePathCache(b.cachePath, b.mutPathCache)
	c.resolveMelee(b.melee)
	c.resolveDropoff(b.dropoff)
	c.resolveMine(b.mine)
	c.resolveMoves(b.move)
	c.resolveLogs(b.log)
}

// resolveEnergyRegen implements update_energy: every entity carrying an
// EnergyRegen rate gains that much energy each tick, capped at its cargo
// capacity.
func (c *Core) resolveEnergyRegen() {
	type bump struct {
		id   ids.EntityId
		rate int32
	}
	var bumps []bump
	c.World.EnergyRegen.Iterate(func(id ids.EntityId, rate int32) {
		bumps = append(bumps, bump{id, rate})
	})
	for _, bu := range bumps {
		hold, ok := c.World.Cargo.Get(bu.id)
		if !ok {
			continue
		}
		hold.Energy += bu.rate
		if hold.Capacity > 0 && hold.Energy > hold.Capacity {
			hold.Energy = hold.Capacity
		}
		c.World.Cargo.Insert(bu.id, hold)
	}
}

// resolveSpawns implements update_spawns: every spawn structure's
// countdown ticks down, instantiating a fresh bot at zero.
func (c *Core) resolveSpawns() {
	type pending struct {
		id ids.EntityId
		s  world.SpawnSchedule
	}
	var schedules []pending
	c.World.Spawning.Iterate(func(id ids.EntityId, s world.SpawnSchedule) {
		schedules = append(schedules, pending{id, s})
	})
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].id < schedules[j].id })

	for _, p := range schedules {
		p.s.Countdown--
		if p.s.Countdown > 0 {
			c.World.Spawning.Insert(p.id, p.s)
			continue
		}

		pos, ok := c.World.PositionOf(p.id)
		owner, hasOwner := c.World.OwnerOf(p.id)
		if ok && hasOwner {
			bot := c.World.SpawnBot(owner, pos, 100)
			c.World.AssignScript(bot, p.s.BotScript)
		}

		if p.s.Period > 0 {
			p.s.Countdown = p.s.Period
			c.World.Spawning.Insert(p.id, p.s)
		} else {
			c.World.Spawning.Delete(p.id)
		}
	}
}

// resolveDecayAndDeletes implements update_decay plus the self_destruct
// intent: decay counters tick down, applying damage and queuing a delete
// once HP reaches zero; script-requested deletes are queued alongside.
func (c *Core) resolveDecayAndDeletes(deletes []scripting.DeleteEntityIntent) {
	type pending struct {
		id ids.EntityId
		d  world.DecaySchedule
	}
	var schedules []pending
	c.World.Decay.Iterate(func(id ids.EntityId, d world.DecaySchedule) {
		schedules = append(schedules, pending{id, d})
	})
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].id < schedules[j].id })

	for _, p := range schedules {
		if p.d.Counter > 0 {
			p.d.Counter--
		}
		if p.d.Counter > 0 {
			c.World.Decay.Insert(p.id, p.d)
			continue
		}

		hp, ok := c.World.Health.Get(p.id)
		if !ok {
			continue
		}
		hp -= p.d.Amount
		if hp <= 0 {
			c.World.DeleteEntity(p.id)
			continue
		}
		c.World.Health.Insert(p.id, hp)
		p.d.Counter = p.d.Interval
		c.World.Decay.Insert(p.id, p.d)
	}

	for _, del := range deletes {
		c.World.DeleteEntity(del.Entity)
	}
}

// resolveMineralRespawn implements update_minerals: depleted resources
// relocate to an uncontested tile near their room's center and refill.
func (c *Core) resolveMineralRespawn() {
	var depleted []ids.EntityId
	c.World.Resources.Iterate(func(id ids.EntityId) {
		if hold, ok := c.World.Cargo.Get(id); ok && hold.Energy <= 0 {
			depleted = append(depleted, id)
		}
	})
	sort.Slice(depleted, func(i, j int) bool { return depleted[i] < depleted[j] })

	for _, id := range depleted {
		pos, ok := c.World.PositionOf(id)
		if !ok {
			continue
		}
		hold, ok := c.World.Cargo.Get(id)
		if !ok {
			continue
		}
		radius := c.World.RoomRadius(pos.Room)
		newPos := c.World.RandomUncontestedPosition(pos.Room, hexgrid.New(radius, radius), mineralRespawnRadius, c.randRange)
		c.World.MoveEntity(id, newPos)
		hold.Energy = hold.Capacity
		c.World.Cargo.Insert(id, hold)
	}
}

// randRange returns a pseudo-random value in [0, n), used by
// RandomUncontestedPosition's retry loop.
func (c *Core) randRange(n int32) int32 {
	if n <= 0 {
		return 0
	}
	return int32(c.rng.Int63n(int64(n)))
}

// resolvePositionIndexRebuild is a deliberate no-op: unlike the reference's
// batched point-table rebuild, World.place/unplace keep the per-room
// occupancy index synchronously consistent on every spawn, move, and
// delete, so there is nothing left to rebuild here.
func (c *Core) resolvePositionIndexRebuild() {}

// resolvePathCache applies CachePathIntent (install a freshly computed
// path) before MutPathCacheIntent (pop the step just consumed, or clear on
// a stale cache), matching the "update/pop" ordering named in the pipeline.
func (c *Core) resolvePathCache(installs []scripting.CachePathIntent, muts []scripting.MutPathCacheIntent) {
	for _, in := range installs {
		c.World.PathTargets.Insert(in.Bot, in.Target)
		c.World.PathCaches.Insert(in.Bot, pathfind.NewCache(in.Path))
	}
	for _, m := range muts {
		switch m.Action {
		case scripting.PathCachePop:
			if cache, ok := c.World.PathCaches.Get(m.Bot); ok && cache != nil {
				cache.Pop()
			}
		case scripting.PathCacheClear:
			c.World.PathCaches.Delete(m.Bot)
			c.World.PathTargets.Delete(m.Bot)
		}
	}
}

// resolveMelee re-validates and applies melee_attack intents.
func (c *Core) resolveMelee(intents []scripting.MeleeIntent) {
	for _, in := range intents {
		owner, ok := c.World.OwnerOf(in.Attacker)
		if !ok {
			continue
		}
		if c.World.CheckMelee(in, owner) != scripting.OperationOk {
			continue
		}
		hp, ok := c.World.Health.Get(in.Defender)
		if !ok {
			continue
		}
		hp -= meleeDamage
		if hp <= 0 {
			c.World.DeleteEntity(in.Defender)
			continue
		}
		c.World.Health.Insert(in.Defender, hp)
	}
}

// resolveDropoff re-validates and applies unload intents, transferring
// amount from the bot's cargo into the target structure's.
func (c *Core) resolveDropoff(intents []scripting.DropoffIntent) {
	for _, in := range intents {
		owner, ok := c.World.OwnerOf(in.Bot)
		if !ok {
			continue
		}
		if c.World.CheckDropoff(in, owner) != scripting.OperationOk {
			continue
		}
		botHold, ok := c.World.Cargo.Get(in.Bot)
		if !ok {
			continue
		}
		structHold, ok := c.World.Cargo.Get(in.Structure)
		if !ok {
			continue
		}
		transfer(&botHold, &structHold, in.Type, in.Amount)
		c.World.Cargo.Insert(in.Bot, botHold)
		c.World.Cargo.Insert(in.Structure, structHold)
	}
}

// resolveMine re-validates and applies mine_resource intents, transferring
// a fixed amount from the resource's cargo into the bot's.
func (c *Core) resolveMine(intents []scripting.MineIntent) {
	const mineAmount = 5
	for _, in := range intents {
		owner, ok := c.World.OwnerOf(in.Bot)
		if !ok {
			continue
		}
		if c.World.CheckMine(in, owner) != scripting.OperationOk {
			continue
		}
		resHold, ok := c.World.Cargo.Get(in.Resource)
		if !ok {
			continue
		}
		botHold, ok := c.World.Cargo.Get(in.Bot)
		if !ok {
			continue
		}
		transfer(&resHold, &botHold, scripting.ResourceMineral, mineAmount)
		c.World.Cargo.Insert(in.Resource, resHold)
		c.World.Cargo.Insert(in.Bot, botHold)
	}
}

// transfer moves up to amount of kind from src to dst, clamped by what src
// actually holds and by dst's remaining capacity.
func transfer(src, dst *world.CargoHold, kind scripting.Resource, amount int32) {
	available := src.Mineral
	if kind == scripting.ResourceEnergy {
		available = src.Energy
	}
	if amount > available {
		amount = available
	}
	if dst.Capacity > 0 {
		room := dst.Capacity - (dst.Energy + dst.Mineral)
		if amount > room {
			amount = room
		}
	}
	if amount <= 0 {
		return
	}
	if kind == scripting.ResourceEnergy {
		src.Energy -= amount
		dst.Energy += amount
	} else {
		src.Mineral -= amount
		dst.Mineral += amount
	}
}

// resolveMoves re-validates and applies move_bot_to_position /
// approach_entity intents, per the pipeline's "moves (validated again at
// apply time)" step.
func (c *Core) resolveMoves(intents []scripting.MoveIntent) {
	for _, in := range intents {
		owner, ok := c.World.OwnerOf(in.Bot)
		if !ok {
			continue
		}
		if c.World.CheckMove(in, owner) != scripting.OperationOk {
			continue
		}
		c.World.MoveEntity(in.Bot, in.Position)
	}
}

// resolveLogs replaces the world's log buffer with this tick's
// console_log payloads, for the external boundary to read before the next
// tick overwrites it.
func (c *Core) resolveLogs(entries []scripting.LogIntent) {
	c.World.Logs = nil
	for _, e := range entries {
		c.World.RecordLog(e)
	}
}
