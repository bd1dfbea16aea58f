package scripting

import (
	"github.com/sarchlab/caolo/caolang/vm"
)

// mineResource proposes a MineIntent against targetPtr (a pointer to an
// encoded EntityId), checking ownership and range before recording it.
func mineResource(vmach *vm.VM[*Aux], targetPtr int32) (int, error) {
	aux := vmach.Aux()
	blob, ok := vmach.ReadBlob(targetPtr)
	if !ok {
		return 0, vmach.Push(int32ToScalar(int32(OperationInvalidInput)))
	}
	intent := MineIntent{Bot: aux.EntityID, Resource: decodeEntityID(blob)}
	result := aux.World.CheckMine(intent, aux.UserID)
	if result == OperationOk {
		aux.Intents.Mine = &intent
	}
	return 0, vmach.Push(int32ToScalar(int32(result)))
}

// unload proposes a DropoffIntent moving amount of resourceType from the
// calling bot into structurePtr's cargo hold.
func unload(vmach *vm.VM[*Aux], structurePtr, amount, resourceType int32) (int, error) {
	aux := vmach.Aux()
	blob, ok := vmach.ReadBlob(structurePtr)
	if !ok {
		return 0, vmach.Push(int32ToScalar(int32(OperationInvalidInput)))
	}
	intent := DropoffIntent{
		Bot:       aux.EntityID,
		Amount:    amount,
		Type:      Resource(resourceType),
		Structure: decodeEntityID(blob),
	}
	result := aux.World.CheckDropoff(intent, aux.UserID)
	if result == OperationOk {
		aux.Intents.Dropoff = &intent
	}
	return 0, vmach.Push(int32ToScalar(int32(result)))
}

// meleeAttack proposes a MeleeIntent against defenderPtr.
func meleeAttack(vmach *vm.VM[*Aux], defenderPtr int32) (int, error) {
	aux := vmach.Aux()
	blob, ok := vmach.ReadBlob(defenderPtr)
	if !ok {
		return 0, vmach.Push(int32ToScalar(int32(OperationInvalidInput)))
	}
	intent := MeleeIntent{Attacker: aux.EntityID, Defender: decodeEntityID(blob)}
	result := aux.World.CheckMelee(intent, aux.UserID)
	if result == OperationOk {
		aux.Intents.Melee = &intent
	}
	return 0, vmach.Push(int32ToScalar(int32(result)))
}

// selfDestruct queues the calling bot for deferred deletion at
// post_process, matching scripts that let a bot expire itself rather than
// wait for starvation to kill it.
func selfDestruct(vmach *vm.VM[*Aux]) (int, error) {
	aux := vmach.Aux()
	aux.Intents.DeleteEntity = &DeleteEntityIntent{Entity: aux.EntityID}
	return 0, vmach.Push(int32ToScalar(int32(OperationOk)))
}
