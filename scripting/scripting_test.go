package scripting

import (
	"testing"

	"github.com/sarchlab/caolo/caolang"
	vmpkg "github.com/sarchlab/caolo/caolang/vm"
	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/pathfind"
)

// fakeWorld is a minimal in-memory WorldView for exercising the foreign
// functions without a real world/archetype backend.
type fakeWorld struct {
	positions   map[ids.EntityId]hexgrid.WorldPosition
	owners      map[ids.EntityId]ids.UserId
	terrain     map[hexgrid.WorldPosition]pathfind.Terrain
	occupied    map[hexgrid.WorldPosition]bool
	resources   map[ids.EntityId]bool
	cacheTarget hexgrid.WorldPosition
	cacheSteps  []hexgrid.Axial
	hasCache    bool
	tick        uint64
	moveResult  OperationResult
	mineResult  OperationResult
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		positions: map[ids.EntityId]hexgrid.WorldPosition{},
		owners:    map[ids.EntityId]ids.UserId{},
		terrain:   map[hexgrid.WorldPosition]pathfind.Terrain{},
		occupied:  map[hexgrid.WorldPosition]bool{},
		resources: map[ids.EntityId]bool{},
	}
}

func (f *fakeWorld) PositionOf(id ids.EntityId) (hexgrid.WorldPosition, bool) {
	p, ok := f.positions[id]
	return p, ok
}
func (f *fakeWorld) OwnerOf(id ids.EntityId) (ids.UserId, bool) {
	u, ok := f.owners[id]
	return u, ok
}
func (f *fakeWorld) PathCache(id ids.EntityId) (hexgrid.WorldPosition, []hexgrid.Axial, bool) {
	return f.cacheTarget, f.cacheSteps, f.hasCache
}
func (f *fakeWorld) TerrainAt(pos hexgrid.WorldPosition) pathfind.Terrain {
	if t, ok := f.terrain[pos]; ok {
		return t
	}
	return pathfind.TerrainPlain
}
func (f *fakeWorld) Occupied(pos hexgrid.WorldPosition) bool { return f.occupied[pos] }
func (f *fakeWorld) RoomRadius(hexgrid.Room) int32            { return 10 }
func (f *fakeWorld) RoomConnections(hexgrid.Room) (pathfind.RoomConnections, bool) {
	return pathfind.RoomConnections{}, false
}
func (f *fakeWorld) RoomOf(a hexgrid.Axial) hexgrid.Room { return hexgrid.NewRoom(a) }
func (f *fakeWorld) FindClosestInRoom(room hexgrid.Room, center hexgrid.Axial, pred func(ids.EntityId) bool) (ids.EntityId, bool) {
	best := ids.EntityId(0)
	bestDist := uint32(1 << 30)
	found := false
	for id, pos := range f.positions {
		if pos.Room != room || !pred(id) {
			continue
		}
		d := pos.Pos.Distance(center)
		if d < bestDist {
			best, bestDist, found = id, d, true
		}
	}
	return best, found
}
func (f *fakeWorld) IsResource(id ids.EntityId) bool { return f.resources[id] }
func (f *fakeWorld) IsSpawnOwnedBy(ids.EntityId, ids.UserId) bool { return false }
func (f *fakeWorld) IsEnemyBot(ids.EntityId, ids.UserId) bool     { return false }
func (f *fakeWorld) CheckMove(MoveIntent, ids.UserId) OperationResult {
	if f.moveResult == 0 {
		return OperationOk
	}
	return f.moveResult
}
func (f *fakeWorld) CheckMine(MineIntent, ids.UserId) OperationResult {
	if f.mineResult == 0 {
		return OperationOk
	}
	return f.mineResult
}
func (f *fakeWorld) CheckDropoff(DropoffIntent, ids.UserId) OperationResult { return OperationOk }
func (f *fakeWorld) CheckMelee(MeleeIntent, ids.UserId) OperationResult    { return OperationOk }
func (f *fakeWorld) Tick() uint64                                          { return f.tick }

func newTestVM(aux *Aux) *vmpkg.VM[*Aux] {
	vmach := vmpkg.New[*Aux](aux)
	RegisterAll(vmach)
	return vmach
}

func TestFindClosestByRangeSelf(t *testing.T) {
	world := newFakeWorld()
	bot := ids.EntityId(1)
	room := hexgrid.NewRoom(hexgrid.New(0, 0))
	world.positions[bot] = hexgrid.WorldPosition{Room: room, Pos: hexgrid.New(5, 5)}
	world.resources[bot] = true

	aux := NewAux(bot, ids.NewUserId(), world, nil, 64)
	vmach := newTestVM(aux)

	size, err := findClosestByRange(vmach, int32(FindResource), 3)
	if err != nil {
		t.Fatalf("findClosestByRange: %v", err)
	}
	if size != 0 {
		t.Fatalf("expected direct pushes, got size %d", size)
	}

	stack := vmach.Stack()
	if len(stack) != 2 {
		t.Fatalf("expected 2 values on stack, got %d", len(stack))
	}
	if stack[0].Kind != caolang.KindPointer {
		t.Fatalf("expected pointer first, got %v", stack[0].Kind)
	}
	if stack[1].Kind != caolang.KindInteger || OperationResult(stack[1].Int) != OperationOk {
		t.Fatalf("expected OperationOk on top, got %+v", stack[1])
	}

	blob, ok := vmach.ReadBlob(stack[0].Int)
	if !ok {
		t.Fatalf("expected readable blob at returned pointer")
	}
	if decodeEntityID(blob) != bot {
		t.Fatalf("expected bot to find itself, got %v", decodeEntityID(blob))
	}
}

func TestFindClosestByRangeNotInRange(t *testing.T) {
	world := newFakeWorld()
	bot := ids.EntityId(1)
	room := hexgrid.NewRoom(hexgrid.New(0, 0))
	world.positions[bot] = hexgrid.WorldPosition{Room: room, Pos: hexgrid.New(0, 0)}

	aux := NewAux(bot, ids.NewUserId(), world, nil, 64)
	vmach := newTestVM(aux)

	if _, err := findClosestByRange(vmach, int32(FindResource), 3); err != nil {
		t.Fatalf("findClosestByRange: %v", err)
	}
	stack := vmach.Stack()
	if len(stack) != 1 {
		t.Fatalf("expected a single failure result, got %d values", len(stack))
	}
	if OperationResult(stack[0].Int) != OperationNotInRange {
		t.Fatalf("expected NotInRange, got %v", OperationResult(stack[0].Int))
	}
}

func TestMoveToPosUsesCacheHit(t *testing.T) {
	world := newFakeWorld()
	bot := ids.EntityId(2)
	room := hexgrid.NewRoom(hexgrid.New(0, 0))
	world.positions[bot] = hexgrid.WorldPosition{Room: room, Pos: hexgrid.New(0, 0)}
	target := hexgrid.WorldPosition{Room: room, Pos: hexgrid.New(5, 0)}
	world.cacheTarget = target
	world.cacheSteps = []hexgrid.Axial{hexgrid.New(1, 0)}
	world.hasCache = true

	aux := NewAux(bot, ids.NewUserId(), world, nil, 64)
	result := moveToPos(nil, aux, target)
	if result != OperationOk {
		t.Fatalf("expected OperationOk from cache hit, got %v", result)
	}
	if aux.Intents.Move == nil || aux.Intents.Move.Position.Pos != hexgrid.New(1, 0) {
		t.Fatalf("expected move intent toward cached step, got %+v", aux.Intents.Move)
	}
	if aux.Intents.MutPathCache == nil || aux.Intents.MutPathCache.Action != PathCachePop {
		t.Fatalf("expected cache pop intent, got %+v", aux.Intents.MutPathCache)
	}
}

func TestMoveToPosSearchesWhenCacheMisses(t *testing.T) {
	world := newFakeWorld()
	bot := ids.EntityId(3)
	room := hexgrid.NewRoom(hexgrid.New(0, 0))
	world.positions[bot] = hexgrid.WorldPosition{Room: room, Pos: hexgrid.New(0, 0)}
	target := hexgrid.WorldPosition{Room: room, Pos: hexgrid.New(3, 0)}

	aux := NewAux(bot, ids.NewUserId(), world, nil, 64)
	result := moveToPos(nil, aux, target)
	if result != OperationOk {
		t.Fatalf("expected OperationOk from a fresh search, got %v", result)
	}
	if aux.Intents.Move == nil {
		t.Fatalf("expected a move intent after search")
	}
	if aux.Intents.CachePath == nil || aux.Intents.CachePath.Target != target {
		t.Fatalf("expected a cache-path intent toward the target")
	}
}

func TestMineResourcePropagatesCheckFailure(t *testing.T) {
	world := newFakeWorld()
	bot := ids.EntityId(4)
	resource := ids.EntityId(5)
	world.mineResult = OperationNotInRange

	aux := NewAux(bot, ids.NewUserId(), world, nil, 64)
	vmach := newTestVM(aux)

	outPtr := len(vmach.Memory())
	if _, err := vmach.WriteBlob(outPtr, encodeEntityID(resource)); err != nil {
		t.Fatalf("writeblob: %v", err)
	}

	if _, err := mineResource(vmach, int32(outPtr)); err != nil {
		t.Fatalf("mineResource: %v", err)
	}
	stack := vmach.Stack()
	if len(stack) != 1 || OperationResult(stack[0].Int) != OperationNotInRange {
		t.Fatalf("expected NotInRange pushed, got %+v", stack)
	}
	if aux.Intents.Mine != nil {
		t.Fatalf("expected no mine intent recorded on failure")
	}
}

func TestConsoleLogCapturesPayload(t *testing.T) {
	world := newFakeWorld()
	world.tick = 7
	bot := ids.EntityId(6)
	aux := NewAux(bot, ids.NewUserId(), world, nil, 64)
	vmach := newTestVM(aux)

	outPtr := len(vmach.Memory())
	if _, err := vmach.WriteBlob(outPtr, []byte("hello")); err != nil {
		t.Fatalf("writeblob: %v", err)
	}

	if _, err := consoleLog(vmach, int32(outPtr)); err != nil {
		t.Fatalf("consoleLog: %v", err)
	}
	if aux.Intents.Log == nil || aux.Intents.Log.Payload != "hello" || aux.Intents.Log.Tick != 7 {
		t.Fatalf("expected log intent with payload, got %+v", aux.Intents.Log)
	}
}

func TestParseFindConstantUnknownYieldsZero(t *testing.T) {
	world := newFakeWorld()
	aux := NewAux(ids.EntityId(1), ids.NewUserId(), world, nil, 64)
	vmach := newTestVM(aux)

	outPtr := len(vmach.Memory())
	if _, err := vmach.WriteBlob(outPtr, []byte("NotAThing")); err != nil {
		t.Fatalf("writeblob: %v", err)
	}
	if _, err := parseFindConstant(vmach, int32(outPtr)); err != nil {
		t.Fatalf("parseFindConstant: %v", err)
	}
	stack := vmach.Stack()
	if len(stack) != 1 || stack[0].Int != 0 {
		t.Fatalf("expected 0 for an unknown constant name, got %+v", stack)
	}
}
