package scripting

import (
	"github.com/sarchlab/caolo/caolang"
	"github.com/sarchlab/caolo/caolang/vm"
)

// RegisterAll installs every foreign function a compiled bot script may
// call into vmach. Call this once per VM before running a program; the
// registrations survive Reset, so one VM can run many scripts in turn.
func RegisterAll(vmach *vm.VM[*Aux]) {
	vmach.Register("make_point", vm.Arity2[*Aux, int32, int32](vm.IntFromScalar, vm.IntFromScalar, makePoint))
	vmach.Register("world_position", vm.Arity2[*Aux, int32, int32](vm.IntFromScalar, vm.IntFromScalar, worldPosition))
	vmach.Register("point_q", vm.Arity1[*Aux, int32](vm.PointerFromScalar, pointQ))
	vmach.Register("point_r", vm.Arity1[*Aux, int32](vm.PointerFromScalar, pointR))

	vmach.Register("console_log", vm.Arity1[*Aux, int32](vm.PointerFromScalar, consoleLog))
	vmach.Register("log_scalar", vm.Arity1[*Aux, caolang.Scalar](vm.ScalarFromScalar, logScalar))

	vmach.Register("parse_find_constant", vm.Arity1[*Aux, int32](vm.PointerFromScalar, parseFindConstant))
	vmach.Register("find_closest_by_range", vm.Arity2[*Aux, int32, int32](vm.IntFromScalar, vm.IntFromScalar, findClosestByRange))

	vmach.Register("mine_resource", vm.Arity1[*Aux, int32](vm.PointerFromScalar, mineResource))
	vmach.Register("unload", vm.Arity3[*Aux, int32, int32, int32](vm.PointerFromScalar, vm.IntFromScalar, vm.IntFromScalar, unload))
	vmach.Register("melee_attack", vm.Arity1[*Aux, int32](vm.PointerFromScalar, meleeAttack))
	vmach.Register("self_destruct", vm.Arity0[*Aux](selfDestruct))

	vmach.Register("approach_entity", vm.Arity1[*Aux, int32](vm.PointerFromScalar, approachEntity))
	vmach.Register("move_bot_to_position", vm.Arity1[*Aux, int32](vm.PointerFromScalar, moveBotToPosition))
}
