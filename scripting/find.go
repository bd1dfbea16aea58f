package scripting

import (
	"github.com/sarchlab/caolo/caolang"
	"github.com/sarchlab/caolo/caolang/vm"
	"github.com/sarchlab/caolo/ids"
)

// parseFindConstant maps a string literal blob ("Resource", "Spawn",
// "EnemyBot") to its FindConstant, pushing 0 for a name it doesn't
// recognise so a script can branch on the result.
func parseFindConstant(vmach *vm.VM[*Aux], ptr int32) (int, error) {
	blob, ok := vmach.ReadBlob(ptr)
	if !ok {
		return 0, vmach.Push(int32ToScalar(0))
	}
	c, ok := ParseFindConstant(string(blob))
	if !ok {
		return 0, vmach.Push(int32ToScalar(0))
	}
	return 0, vmach.Push(int32ToScalar(int32(c)))
}

// findClosestByRange searches the caller's room for the nearest entity
// matching kind within rng hex steps of the caller's own position. On
// success it pushes a pointer to the found EntityId and then OperationOk on
// top; on failure it pushes only the failing OperationResult, matching the
// reference's two call-site tests (a bot that is itself the closest
// Resource, and a bot with no Resource in range).
func findClosestByRange(vmach *vm.VM[*Aux], kind, rng int32) (int, error) {
	aux := vmach.Aux()
	pos, ok := aux.World.PositionOf(aux.EntityID)
	if !ok {
		return 0, vmach.Push(int32ToScalar(int32(OperationInvalidInput)))
	}

	var pred func(id ids.EntityId) bool
	switch FindConstant(kind) {
	case FindResource:
		pred = func(id ids.EntityId) bool { return aux.World.IsResource(id) }
	case FindSpawn:
		pred = func(id ids.EntityId) bool { return aux.World.IsSpawnOwnedBy(id, aux.UserID) }
	case FindEnemyBot:
		pred = func(id ids.EntityId) bool { return aux.World.IsEnemyBot(id, aux.UserID) }
	default:
		return 0, vmach.Push(int32ToScalar(int32(OperationInvalidInput)))
	}

	found, ok := aux.World.FindClosestInRoom(pos.Room, pos.Pos, pred)
	if !ok {
		return 0, vmach.Push(int32ToScalar(int32(OperationNotInRange)))
	}
	if foundPos, ok := aux.World.PositionOf(found); ok && foundPos.Room == pos.Room {
		if int32(foundPos.Pos.Distance(pos.Pos)) > rng {
			return 0, vmach.Push(int32ToScalar(int32(OperationNotInRange)))
		}
	}

	outPtr := len(vmach.Memory())
	if _, err := vmach.WriteBlob(outPtr, encodeEntityID(found)); err != nil {
		return 0, err
	}
	if err := vmach.Push(caolang.NewPointer(int32(outPtr))); err != nil {
		return 0, err
	}
	return 0, vmach.Push(int32ToScalar(int32(OperationOk)))
}
