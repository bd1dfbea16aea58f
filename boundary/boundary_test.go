package boundary

import (
	"testing"

	"github.com/google/uuid"

	"github.com/sarchlab/caolo/caolang"
	"github.com/sarchlab/caolo/caolang/vm"
	"github.com/sarchlab/caolo/config"
	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/pathfind"
	"github.com/sarchlab/caolo/scripting"
	"github.com/sarchlab/caolo/world"
)

// testOrigin keeps every fixture position non-negative: morton.Table only
// indexes 0 <= q,r <= 2^15-1.
var testOrigin = hexgrid.New(50, 50)

func at(dq, dr int32) hexgrid.Axial {
	return hexgrid.New(testOrigin.Q+dq, testOrigin.R+dr)
}

func newTestWorld() (*world.World, hexgrid.Room) {
	w := world.New()
	room := hexgrid.NewRoom(at(0, 0))
	r := world.NewRoom(3)
	for q := int32(-2); q <= 2; q++ {
		for rr := int32(-2); rr <= 2; rr++ {
			r.Terrain.InsertOrUpdate(at(q, rr), pathfind.TerrainPlain)
		}
	}
	r.SetConnection(hexgrid.New(1, 0))
	w.AddRoom(room.Axial, r)
	return w, room
}

func TestBuildPopulatesRoomKeyedBots(t *testing.T) {
	w, room := newTestWorld()
	user := ids.NewUserId()
	bot := w.SpawnBot(user, hexgrid.WorldPosition{Room: room, Pos: at(0, 0)}, 100)

	b := NewSnapshotBuilder(1.0, 3)
	snap := b.Build(w, config.Default())

	rows, ok := snap.Bots[room.Key()]
	if !ok || len(rows) != 1 {
		t.Fatalf("expected one bot row under room key %q, got %v", room.Key(), snap.Bots)
	}
	if rows[0].ID != bot {
		t.Fatalf("expected bot id %d, got %d", bot, rows[0].ID)
	}
	if rows[0].Owner == nil || *rows[0].Owner != user.String() {
		t.Fatalf("expected owner %s, got %v", user.String(), rows[0].Owner)
	}
	if rows[0].Health != 100 {
		t.Fatalf("expected health 100, got %d", rows[0].Health)
	}
}

func TestBuildPositionComposesRoomAndTilePixels(t *testing.T) {
	w, room := newTestWorld()
	user := ids.NewUserId()
	w.SpawnBot(user, hexgrid.WorldPosition{Room: room, Pos: at(0, 0)}, 100)

	b := NewSnapshotBuilder(2.0, 3)
	snap := b.Build(w, config.Default())

	row := snap.Bots[room.Key()][0]
	wantRoomX, wantRoomY := room.Axial.ToPixelFlat(2.0 * float64(2*3+1))
	wantTileX, wantTileY := at(0, 0).ToPixelPointy(2.0)
	if row.Position.AbsolutePos.X != wantRoomX+wantTileX || row.Position.AbsolutePos.Y != wantRoomY+wantTileY {
		t.Fatalf("unexpected absolute position %+v", row.Position.AbsolutePos)
	}
	if row.Position.RoomPos != axialView(at(0, 0)) {
		t.Fatalf("expected roomPos to carry the in-room axial %v, got %+v", at(0, 0), row.Position.RoomPos)
	}
}

func TestBuildPopulatesTerrainAndRoomProperties(t *testing.T) {
	w, room := newTestWorld()
	b := NewSnapshotBuilder(1.0, 3)
	snap := b.Build(w, config.Default())

	tiles, ok := snap.Terrain[room.Key()]
	if !ok || len(tiles) == 0 {
		t.Fatalf("expected terrain tiles under room key %q", room.Key())
	}
	for _, tile := range tiles {
		if tile.Kind != "plain" {
			t.Fatalf("expected every generated tile to be plain, got %q", tile.Kind)
		}
	}

	props, ok := snap.RoomProperties[room.Key()]
	if !ok {
		t.Fatalf("expected room properties for %q", room.Key())
	}
	if props.Radius != 3 {
		t.Fatalf("expected radius 3, got %d", props.Radius)
	}
	if len(props.Connections) != 1 {
		t.Fatalf("expected exactly one connection, got %d", len(props.Connections))
	}
	wantTarget := axialView(room.Axial.Add(hexgrid.New(1, 0)))
	if props.Connections[0].Target != wantTarget {
		t.Fatalf("expected connection target %+v, got %+v", wantTarget, props.Connections[0].Target)
	}
}

func TestBuildListsResourcesAndLogs(t *testing.T) {
	w, room := newTestWorld()
	resource := w.SpawnResource(hexgrid.WorldPosition{Room: room, Pos: at(1, 0)}, 50)
	w.RecordLog(scripting.LogIntent{Entity: resource, Payload: "hello", Tick: 7})

	b := NewSnapshotBuilder(1.0, 3)
	snap := b.Build(w, config.Default())

	rows, ok := snap.Resources[room.Key()]
	if !ok || len(rows) != 1 || rows[0].ID != resource {
		t.Fatalf("expected one resource row for %d under %q, got %v", resource, room.Key(), snap.Resources)
	}
	if rows[0].Cargo.Energy != 50 {
		t.Fatalf("expected resource energy 50, got %d", rows[0].Cargo.Energy)
	}

	if len(snap.Logs) != 1 || snap.Logs[0].Entity != resource || snap.Logs[0].Payload != "hello" || snap.Logs[0].Tick != 7 {
		t.Fatalf("expected one matching log entry, got %v", snap.Logs)
	}
}

func TestBuildListsRoomsAndGameConfig(t *testing.T) {
	w, room := newTestWorld()
	b := NewSnapshotBuilder(1.0, 3)
	cfg := config.Default()
	snap := b.Build(w, cfg)

	found := false
	for _, r := range snap.Rooms {
		if r == axialView(room.Axial) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected room %+v listed in snap.Rooms, got %v", room.Axial, snap.Rooms)
	}
	if snap.GameConfig != cfg {
		t.Fatalf("expected GameConfig to round-trip Default(), got %+v", snap.GameConfig)
	}
}

func validProgram() *caolang.CompiledProgram {
	return &caolang.CompiledProgram{
		Bytecode: []byte{byte(caolang.Start), byte(caolang.Exit)},
		Labels:   map[int32]int{},
		Version:  [3]uint16{vm.CurrentMajor, 0, 0},
	}
}

func TestApplyUpdateScriptRegistersProgram(t *testing.T) {
	w, _ := newTestWorld()
	applier := NewCommandApplier(w)
	user := ids.NewUserId()
	script := ids.NewScriptId()
	msg := uuid.New()

	res := applier.Apply(Command{
		MessageID: msg,
		Kind:      CommandUpdateScript,
		UpdateScript: &UpdateScriptPayload{
			UserID:   user,
			ScriptID: script,
			Program:  validProgram(),
		},
	})
	if !res.Success || res.MessageID != msg {
		t.Fatalf("expected success for message %s, got %+v", msg, res)
	}
	if _, ok := w.Programs[script]; !ok {
		t.Fatalf("expected script %s registered", script)
	}
}

func TestApplyUpdateScriptRejectsVersionMismatch(t *testing.T) {
	w, _ := newTestWorld()
	applier := NewCommandApplier(w)
	script := ids.NewScriptId()
	program := validProgram()
	program.Version = [3]uint16{vm.CurrentMajor + 1, 0, 0}

	res := applier.Apply(Command{
		MessageID: uuid.New(),
		Kind:      CommandUpdateScript,
		UpdateScript: &UpdateScriptPayload{
			UserID:   ids.NewUserId(),
			ScriptID: script,
			Program:  program,
		},
	})
	if res.Success {
		t.Fatalf("expected version mismatch to fail, got %+v", res)
	}
	if _, ok := w.Programs[script]; ok {
		t.Fatalf("expected no partial commit on failure")
	}
}

func TestApplySetDefaultScriptRequiresRegisteredScript(t *testing.T) {
	w, _ := newTestWorld()
	applier := NewCommandApplier(w)
	user := ids.NewUserId()
	script := ids.NewScriptId()

	res := applier.Apply(Command{
		MessageID:        uuid.New(),
		Kind:             CommandSetDefaultScript,
		SetDefaultScript: &SetDefaultScriptPayload{UserID: user, ScriptID: script},
	})
	if res.Success {
		t.Fatalf("expected failure for unregistered script, got %+v", res)
	}

	w.RegisterProgram(script, validProgram())
	res = applier.Apply(Command{
		MessageID:        uuid.New(),
		Kind:             CommandSetDefaultScript,
		SetDefaultScript: &SetDefaultScriptPayload{UserID: user, ScriptID: script},
	})
	if !res.Success {
		t.Fatalf("expected success once script is registered, got %+v", res)
	}
	if w.DefaultScripts[user] != script {
		t.Fatalf("expected default script set to %s, got %s", script, w.DefaultScripts[user])
	}
}

func TestApplyPlaceStructureRejectsOccupiedTile(t *testing.T) {
	w, room := newTestWorld()
	applier := NewCommandApplier(w)
	user := ids.NewUserId()
	pos := hexgrid.WorldPosition{Room: room, Pos: at(0, 0)}
	w.SpawnBot(user, pos, 100)

	res := applier.Apply(Command{
		MessageID:      uuid.New(),
		Kind:           CommandPlaceStructure,
		PlaceStructure: &PlaceStructurePayload{UserID: user, Position: pos},
	})
	if res.Success {
		t.Fatalf("expected occupied-tile placement to fail, got %+v", res)
	}
}

func TestApplyPlaceStructureRejectsUnwalkableTile(t *testing.T) {
	w, room := newTestWorld()
	applier := NewCommandApplier(w)
	user := ids.NewUserId()
	pos := hexgrid.WorldPosition{Room: room, Pos: at(3, 3)}

	res := applier.Apply(Command{
		MessageID:      uuid.New(),
		Kind:           CommandPlaceStructure,
		PlaceStructure: &PlaceStructurePayload{UserID: user, Position: pos},
	})
	if res.Success {
		t.Fatalf("expected unwalkable-tile placement to fail, got %+v", res)
	}
}

func TestApplyPlaceStructureCommitsOnOpenTile(t *testing.T) {
	w, room := newTestWorld()
	applier := NewCommandApplier(w)
	user := ids.NewUserId()
	pos := hexgrid.WorldPosition{Room: room, Pos: at(2, 0)}

	res := applier.Apply(Command{
		MessageID:      uuid.New(),
		Kind:           CommandPlaceStructure,
		PlaceStructure: &PlaceStructurePayload{UserID: user, Position: pos},
	})
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if !w.Occupied(pos) {
		t.Fatalf("expected tile occupied after placing structure")
	}
	if !w.Spawns.Contains(res.EntityID) {
		t.Fatalf("expected echoed id %d to be a spawn structure", res.EntityID)
	}
}

func TestRoomsForUserListsOnlyRoomsWithOwnedBots(t *testing.T) {
	w, room := newTestWorld()
	user := ids.NewUserId()
	other := ids.NewUserId()
	w.SpawnBot(user, hexgrid.WorldPosition{Room: room, Pos: at(0, 0)}, 100)
	w.SpawnBot(other, hexgrid.WorldPosition{Room: room, Pos: at(1, 0)}, 100)

	rooms := RoomsForUser(w, user)
	if len(rooms) != 1 || rooms[0].Axial != room.Axial {
		t.Fatalf("expected exactly the one shared room, got %v", rooms)
	}

	stranger := ids.NewUserId()
	if rooms := RoomsForUser(w, stranger); len(rooms) != 0 {
		t.Fatalf("expected no rooms for a user with no bots, got %v", rooms)
	}
}
