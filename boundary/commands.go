package boundary

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sarchlab/caolo/caolang"
	"github.com/sarchlab/caolo/caolang/vm"
	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/world"
)

// CommandKind names the three variants spec §6.3 recognizes.
type CommandKind string

const (
	CommandUpdateScript     CommandKind = "update_script"
	CommandSetDefaultScript CommandKind = "set_default_script"
	CommandPlaceStructure   CommandKind = "place_structure"
)

// UpdateScriptPayload registers a freshly compiled program under ScriptID,
// owned by UserID.
type UpdateScriptPayload struct {
	UserID   ids.UserId
	ScriptID ids.ScriptId
	Program  *caolang.CompiledProgram
}

// SetDefaultScriptPayload makes ScriptID the script newly spawned bots
// owned by UserID run.
type SetDefaultScriptPayload struct {
	UserID   ids.UserId
	ScriptID ids.ScriptId
}

// PlaceStructurePayload installs a spawn structure owned by UserID at
// Position — the only StructureType the reference names.
type PlaceStructurePayload struct {
	UserID   ids.UserId
	Position hexgrid.WorldPosition
}

// Command is one inbound message: exactly one of the three payload fields
// is set, matching Kind.
type Command struct {
	MessageID        uuid.UUID
	Kind             CommandKind
	UpdateScript     *UpdateScriptPayload
	SetDefaultScript *SetDefaultScriptPayload
	PlaceStructure   *PlaceStructurePayload
}

// CommandResult answers one Command, carrying its MessageID back so the
// caller can correlate the response (spec §6.3). EntityID is set only for a
// successful place_structure, naming the structure that was created.
type CommandResult struct {
	MessageID uuid.UUID
	Success   bool
	Error     string
	EntityID  ids.EntityId
}

func ok(id uuid.UUID) CommandResult { return CommandResult{MessageID: id, Success: true} }

func okEntity(id uuid.UUID, entity ids.EntityId) CommandResult {
	return CommandResult{MessageID: id, Success: true, EntityID: entity}
}

func fail(id uuid.UUID, err error) CommandResult {
	return CommandResult{MessageID: id, Success: false, Error: err.Error()}
}

// CommandApplier validates and commits inbound commands against a World,
// at tick boundaries (the tick driver calls Apply only between ticks, not
// during script execution or resolution).
type CommandApplier struct {
	World *world.World
}

// NewCommandApplier builds a CommandApplier bound to w.
func NewCommandApplier(w *world.World) *CommandApplier {
	return &CommandApplier{World: w}
}

// Apply validates cmd, commits it if valid, and returns a CommandResult
// referencing the same MessageID either way — no partial commits.
func (a *CommandApplier) Apply(cmd Command) CommandResult {
	switch cmd.Kind {
	case CommandUpdateScript:
		return a.applyUpdateScript(cmd.MessageID, cmd.UpdateScript)
	case CommandSetDefaultScript:
		return a.applySetDefaultScript(cmd.MessageID, cmd.SetDefaultScript)
	case CommandPlaceStructure:
		return a.applyPlaceStructure(cmd.MessageID, cmd.PlaceStructure)
	default:
		return fail(cmd.MessageID, fmt.Errorf("unknown command kind %q", cmd.Kind))
	}
}

// applyUpdateScript validates the program's bytecode major version before
// registering it — mirroring the reference's commit handler, which
// compiles the submitted program and rejects the command on failure
// before any world state changes (spec §7's "Compilation errors surface
// to the command applier ... no world state changes").
func (a *CommandApplier) applyUpdateScript(id uuid.UUID, p *UpdateScriptPayload) CommandResult {
	if p == nil || p.Program == nil {
		return fail(id, fmt.Errorf("update_script: missing program"))
	}
	if err := vm.CheckVersion(p.Program.Version); err != nil {
		return fail(id, err)
	}
	a.World.RegisterProgram(p.ScriptID, p.Program)
	return ok(id)
}

// applySetDefaultScript validates that ScriptID names an already-registered
// program before committing — the reference's set_default_script handler
// checks the script row exists before enqueuing the command to the worker.
func (a *CommandApplier) applySetDefaultScript(id uuid.UUID, p *SetDefaultScriptPayload) CommandResult {
	if p == nil {
		return fail(id, fmt.Errorf("set_default_script: missing payload"))
	}
	if _, ok := a.World.Programs[p.ScriptID]; !ok {
		return fail(id, fmt.Errorf("set_default_script: script %s not found", p.ScriptID))
	}
	a.World.SetDefaultScript(p.UserID, p.ScriptID)
	return ok(id)
}

// applyPlaceStructure validates the target tile is walkable and
// unoccupied before spawning a spawn structure there.
func (a *CommandApplier) applyPlaceStructure(id uuid.UUID, p *PlaceStructurePayload) CommandResult {
	if p == nil {
		return fail(id, fmt.Errorf("place_structure: missing payload"))
	}
	if !a.World.TerrainAt(p.Position).Walkable() {
		return fail(id, fmt.Errorf("place_structure: tile is not walkable"))
	}
	if a.World.Occupied(p.Position) {
		return fail(id, fmt.Errorf("place_structure: tile is occupied"))
	}
	structure := a.World.SpawnSpawnPoint(p.UserID, p.Position)
	return okEntity(id, structure)
}
