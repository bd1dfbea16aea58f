// Package scripting registers the foreign functions bot scripts call into
// from compiled cao-lang bytecode. Every registered function reads its
// arguments off the VM stack, consults the world only through a read-only
// WorldView, and may mutate only the Aux's BotIntents bucket — none of them
// touch the world directly, leaving that to the tick pipeline's resolution
// stage.
package scripting

import (
	"log/slog"

	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/pathfind"
)

// OperationResult is the fixed result code every mutating foreign function
// pushes back onto the VM stack.
type OperationResult int32

const (
	OperationOk OperationResult = iota
	OperationNotOwner
	OperationInvalidInput
	OperationFailed
	OperationNotInRange
	OperationInvalidTarget
	OperationEmpty
	OperationFull
	OperationPathNotFound
)

func (r OperationResult) String() string {
	switch r {
	case OperationOk:
		return "Ok"
	case OperationNotOwner:
		return "NotOwner"
	case OperationInvalidInput:
		return "InvalidInput"
	case OperationFailed:
		return "OperationFailed"
	case OperationNotInRange:
		return "NotInRange"
	case OperationInvalidTarget:
		return "InvalidTarget"
	case OperationEmpty:
		return "Empty"
	case OperationFull:
		return "Full"
	case OperationPathNotFound:
		return "PathNotFound"
	default:
		return "Unknown"
	}
}

// Resource names a cargo type a bot can carry and a structure can accept.
type Resource int32

const (
	ResourceEnergy Resource = iota
	ResourceMineral
)

// FindConstant selects what kind of entity find_closest_by_range searches
// for.
type FindConstant int32

const (
	FindResource FindConstant = iota + 1
	FindSpawn
	FindEnemyBot
)

// ParseFindConstant maps a script-literal name to its FindConstant.
func ParseFindConstant(name string) (FindConstant, bool) {
	switch name {
	case "Resource":
		return FindResource, true
	case "Spawn":
		return FindSpawn, true
	case "EnemyBot":
		return FindEnemyBot, true
	default:
		return 0, false
	}
}

// PathCacheAction is the mutation a MutPathCacheIntent applies to an
// entity's cached path.
type PathCacheAction int

const (
	PathCachePop PathCacheAction = iota
	PathCacheClear
)

// MoveIntent requests that bot occupy position next tick.
type MoveIntent struct {
	Bot      ids.EntityId
	Position hexgrid.WorldPosition
}

// MineIntent requests that bot extract from resource.
type MineIntent struct {
	Bot      ids.EntityId
	Resource ids.EntityId
}

// DropoffIntent requests that bot deposit amount of ty into structure.
type DropoffIntent struct {
	Bot       ids.EntityId
	Amount    int32
	Type      Resource
	Structure ids.EntityId
}

// MeleeIntent requests that attacker strike defender.
type MeleeIntent struct {
	Attacker ids.EntityId
	Defender ids.EntityId
}

// SpawnIntent requests a new bot be created for owner at position.
type SpawnIntent struct {
	Owner    ids.UserId
	Position hexgrid.WorldPosition
}

// CachePathIntent replaces bot's cached path with a freshly computed one
// toward target.
type CachePathIntent struct {
	Bot    ids.EntityId
	Target hexgrid.WorldPosition
	Path   []hexgrid.Axial
}

// MutPathCacheIntent applies a small mutation (pop the next step, or clear
// entirely) to bot's existing cached path, avoiding a full recompute.
type MutPathCacheIntent struct {
	Bot    ids.EntityId
	Action PathCacheAction
}

// LogIntent records a script-emitted diagnostic message.
type LogIntent struct {
	Entity  ids.EntityId
	Payload string
	Tick    uint64
}

// DeleteEntityIntent queues entity for deferred deletion at post_process.
type DeleteEntityIntent struct {
	Entity ids.EntityId
}

// BotIntents bundles every intent kind a single script execution may
// produce. Each field is nil unless that kind of intent was emitted.
type BotIntents struct {
	Move         *MoveIntent
	Mine         *MineIntent
	Dropoff      *DropoffIntent
	Melee        *MeleeIntent
	Spawn        *SpawnIntent
	CachePath    *CachePathIntent
	MutPathCache *MutPathCacheIntent
	Log          *LogIntent
	DeleteEntity *DeleteEntityIntent
}

// WorldView is the read-only slice of world state foreign functions may
// consult. Mutations are never applied directly; they flow out as intents.
type WorldView interface {
	PositionOf(id ids.EntityId) (hexgrid.WorldPosition, bool)
	OwnerOf(id ids.EntityId) (ids.UserId, bool)
	PathCache(id ids.EntityId) (target hexgrid.WorldPosition, steps []hexgrid.Axial, ok bool)
	TerrainAt(pos hexgrid.WorldPosition) pathfind.Terrain
	Occupied(pos hexgrid.WorldPosition) bool
	RoomRadius(room hexgrid.Room) int32
	RoomConnections(room hexgrid.Room) (pathfind.RoomConnections, bool)
	RoomOf(axial hexgrid.Axial) hexgrid.Room

	FindClosestInRoom(room hexgrid.Room, center hexgrid.Axial, pred func(ids.EntityId) bool) (ids.EntityId, bool)
	IsResource(id ids.EntityId) bool
	IsSpawnOwnedBy(id ids.EntityId, user ids.UserId) bool
	IsEnemyBot(id ids.EntityId, user ids.UserId) bool

	CheckMove(intent MoveIntent, user ids.UserId) OperationResult
	CheckMine(intent MineIntent, user ids.UserId) OperationResult
	CheckDropoff(intent DropoffIntent, user ids.UserId) OperationResult
	CheckMelee(intent MeleeIntent, user ids.UserId) OperationResult

	Tick() uint64
}

// Aux is the VM's host context for one entity's script execution: which
// entity and user own the run, a view onto the world, the intents
// accumulated so far, and the budgets/log sink shared by every foreign
// function call during the run.
type Aux struct {
	EntityID           ids.EntityId
	UserID             ids.UserId
	World              WorldView
	Intents            BotIntents
	Logger             *slog.Logger
	MaxPathfindingIter uint32
}

// NewAux builds an Aux for one entity's script run.
func NewAux(entity ids.EntityId, user ids.UserId, world WorldView, logger *slog.Logger, maxPathfindingIter uint32) *Aux {
	return &Aux{
		EntityID:           entity,
		UserID:             user,
		World:              world,
		Logger:             logger,
		MaxPathfindingIter: maxPathfindingIter,
	}
}
