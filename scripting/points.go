package scripting

import (
	"github.com/sarchlab/caolo/caolang/vm"
	"github.com/sarchlab/caolo/hexgrid"
)

// makePoint encodes an (q, r) axial pair as a blob so a script can carry a
// position value between calls without the host re-parsing two scalars
// every time.
func makePoint(vmach *vm.VM[*Aux], q, r int32) (int, error) {
	outPtr := len(vmach.Memory())
	return vmach.WriteBlob(outPtr, encodeAxial(hexgrid.New(q, r)))
}

// worldPosition anchors an axial point to the calling bot's current room,
// producing the WorldPosition blob moveBotToPosition expects.
func worldPosition(vmach *vm.VM[*Aux], q, r int32) (int, error) {
	aux := vmach.Aux()
	here, ok := aux.World.PositionOf(aux.EntityID)
	if !ok {
		return 0, nil
	}
	outPtr := len(vmach.Memory())
	wp := hexgrid.WorldPosition{Room: here.Room, Pos: hexgrid.New(q, r)}
	return vmach.WriteBlob(outPtr, encodeWorldPosition(wp))
}

// pointQ/pointR read a single coordinate back out of a point blob, for
// scripts that want to inspect a position without re-decoding the whole
// structure themselves.
func pointQ(vmach *vm.VM[*Aux], ptr int32) (int, error) {
	return readAxialField(vmach, ptr, 0)
}

func pointR(vmach *vm.VM[*Aux], ptr int32) (int, error) {
	return readAxialField(vmach, ptr, 1)
}

func readAxialField(vmach *vm.VM[*Aux], ptr int32, field int) (int, error) {
	blob, ok := vmach.ReadBlob(ptr)
	if !ok || len(blob) < 8 {
		return 0, vmach.Push(int32ToScalar(0))
	}
	axial := decodeAxial(blob)
	v := axial.Q
	if field == 1 {
		v = axial.R
	}
	return 0, vmach.Push(int32ToScalar(v))
}
