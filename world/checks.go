package world

import (
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/scripting"
)

// adjacentRange is the hex distance within which mine/dropoff/melee
// intents are considered in range, matching a bot's single-tile reach.
const adjacentRange = 1

// CheckMove implements scripting.WorldView. The reference's own
// check_move_intent body was not present in the retrieved source tree, so
// this validates against the vocabulary its OperationResult carries:
// ownership, terrain walkability, and destination occupancy.
func (w *World) CheckMove(intent scripting.MoveIntent, user ids.UserId) scripting.OperationResult {
	owner, ok := w.Owners.Get(intent.Bot)
	if !ok || owner != user {
		return scripting.OperationNotOwner
	}
	if !w.TerrainAt(intent.Position).Walkable() {
		return scripting.OperationInvalidTarget
	}
	if w.Occupied(intent.Position) {
		return scripting.OperationFailed
	}
	return scripting.OperationOk
}

// CheckMine implements scripting.WorldView.
func (w *World) CheckMine(intent scripting.MineIntent, user ids.UserId) scripting.OperationResult {
	owner, ok := w.Owners.Get(intent.Bot)
	if !ok || owner != user {
		return scripting.OperationNotOwner
	}
	if !w.Resources.Contains(intent.Resource) {
		return scripting.OperationInvalidTarget
	}
	if !w.inRange(intent.Bot, intent.Resource, adjacentRange) {
		return scripting.OperationNotInRange
	}
	cargo, ok := w.Cargo.Get(intent.Resource)
	if !ok || cargo.Energy <= 0 {
		return scripting.OperationEmpty
	}
	return scripting.OperationOk
}

// CheckDropoff implements scripting.WorldView.
func (w *World) CheckDropoff(intent scripting.DropoffIntent, user ids.UserId) scripting.OperationResult {
	owner, ok := w.Owners.Get(intent.Bot)
	if !ok || owner != user {
		return scripting.OperationNotOwner
	}
	if intent.Amount <= 0 {
		return scripting.OperationInvalidInput
	}
	if !w.Spawns.Contains(intent.Structure) {
		return scripting.OperationInvalidTarget
	}
	if !w.inRange(intent.Bot, intent.Structure, adjacentRange) {
		return scripting.OperationNotInRange
	}
	hold, ok := w.Cargo.Get(intent.Structure)
	if ok && hold.Capacity > 0 && hold.Energy+hold.Mineral+intent.Amount > hold.Capacity {
		return scripting.OperationFull
	}
	return scripting.OperationOk
}

// CheckMelee implements scripting.WorldView.
func (w *World) CheckMelee(intent scripting.MeleeIntent, user ids.UserId) scripting.OperationResult {
	owner, ok := w.Owners.Get(intent.Attacker)
	if !ok || owner != user {
		return scripting.OperationNotOwner
	}
	if !w.Positions.Contains(intent.Defender) {
		return scripting.OperationInvalidTarget
	}
	if !w.inRange(intent.Attacker, intent.Defender, adjacentRange) {
		return scripting.OperationNotInRange
	}
	return scripting.OperationOk
}

func (w *World) inRange(a, b ids.EntityId, within uint32) bool {
	posA, ok := w.Positions.Get(a)
	if !ok {
		return false
	}
	posB, ok := w.Positions.Get(b)
	if !ok || posA.Room != posB.Room {
		return false
	}
	return posA.Pos.Distance(posB.Pos) <= within
}
