// Command caolo-sim is the sample driver binary: it builds an engine, a
// world, registers a starting program for each synthetic actor, queues a
// spawn structure per actor, and runs the tick pipeline until interrupted.
// Mirrors the teacher's samples/passthrough/main.go shape: build an
// engine, build the device/world, register programs, run, exit.
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/tebeka/atexit"

	akitasim "github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/caolo/boundary"
	"github.com/sarchlab/caolo/caolang"
	"github.com/sarchlab/caolo/caolang/vm"
	"github.com/sarchlab/caolo/config"
	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/mapgen"
	"github.com/sarchlab/caolo/pathfind"
	caolosim "github.com/sarchlab/caolo/sim"
	"github.com/sarchlab/caolo/telemetry"
	"github.com/sarchlab/caolo/world"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config overlay")
	logLevel := flag.String("log-level", "info", "one of debug, info, warn, error")
	spawnPeriod := flag.Int("spawn-period-ticks", 20, "ticks between each actor's spawn structure producing a bot")
	flag.Parse()

	logger := telemetry.NewLogger(parseLevel(*logLevel))

	builder := config.NewBuilder().WithEnvPrefix("CAOLO_")
	if *configPath != "" {
		var err error
		builder, err = builder.WithFile(*configPath)
		if err != nil {
			logger.Error("loading config file", "error", err)
			os.Exit(1)
		}
	}
	cfg, err := builder.Build()
	if err != nil {
		logger.Error("building config", "error", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(int64(cfg.Seed)))
	w, room := bootstrapWorld(cfg, rng)

	if err := seedActors(w, room, cfg, rng, int32(*spawnPeriod)); err != nil {
		logger.Error("seeding actors", "error", err)
		os.Exit(1)
	}

	engine := akitasim.NewSerialEngine()
	diag := telemetry.NewDiagnostics()

	caolosim.NewBuilder().
		WithEngine(engine).
		WithFreq(1 * akitasim.GHz).
		WithWorld(w).
		WithConfig(cfg).
		WithDiagnostics(diag).
		WithLogger(logger).
		Build("Core")

	logger.Info("starting simulation",
		"world_radius", cfg.WorldRadius, "room_radius", cfg.RoomRadius, "actors", cfg.NActors)

	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.Run()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigs:
		logger.Info("shutdown requested")
	case <-done:
		logger.Info("engine reported no further progress")
	}

	snap := diag.Snapshot()
	logger.Info("final diagnostics",
		"snapshot_id", snap.ID.String(),
		"scripts_ran", snap.ScriptsRan,
		"scripts_errored", snap.ScriptsErrored,
		"ticks_observed", snap.TicksObserved,
		"ticks_over_budget", snap.TickOverBudget)

	atexit.Exit(0)
}

// bootstrapWorld generates a single room sized per cfg and returns it
// alongside the world it was installed into.
func bootstrapWorld(cfg config.Config, rng *rand.Rand) (*world.World, hexgrid.Room) {
	w := world.New()
	room := hexgrid.NewRoom(hexgrid.New(0, 0))

	terrain, _, err := mapgen.GenerateRoom(mapgen.Params{
		Radius:        int32(cfg.RoomRadius),
		Seed:          cfg.Seed,
		ChancePlain:   float32(cfg.ChancePlain),
		ChanceWall:    float32(cfg.ChanceWall),
		PlainDilation: uint32(cfg.PlainDilation),
	}, nil, rng)
	if err != nil {
		panic(err)
	}

	r := world.NewRoom(int32(cfg.RoomRadius))
	r.Terrain = terrain
	w.AddRoom(room.Axial, r)
	return w, room
}

// trivialProgram is the bytecode every seeded actor runs: Start immediately
// followed by Exit, produces no intents. A real deployment compiles actual
// cao-lang source through caolang/compiler; this sample only exercises the
// boundary's registration path.
func trivialProgram() *caolang.CompiledProgram {
	return &caolang.CompiledProgram{
		Bytecode: []byte{byte(caolang.Start), byte(caolang.Exit)},
		Labels:   map[int32]int{},
		Version:  [3]uint16{vm.CurrentMajor, 0, 0},
	}
}

// seedActors registers the trivial program, then gives each of cfg.NActors
// synthetic users a spawn structure on a randomly drawn walkable tile, queued
// to produce a bot every spawnPeriod ticks (draws may repeat a tile; a user
// whose structure cannot be placed there is skipped and gets none) — driving bot creation through the
// same boundary commands and spawn-schedule machinery a real client would
// use, rather than placing bots directly.
func seedActors(w *world.World, room hexgrid.Room, cfg config.Config, rng *rand.Rand, spawnPeriod int32) error {
	applier := boundary.NewCommandApplier(w)
	script := ids.NewScriptId()

	walkable := walkableTiles(w, room)
	if len(walkable) == 0 {
		return nil
	}

	res := applier.Apply(boundary.Command{
		MessageID: uuid.New(),
		Kind:      boundary.CommandUpdateScript,
		UpdateScript: &boundary.UpdateScriptPayload{
			ScriptID: script,
			Program:  trivialProgram(),
		},
	})
	if !res.Success {
		return &commandError{res}
	}

	for i := 0; i < cfg.NActors; i++ {
		user := ids.NewUserId()

		res := applier.Apply(boundary.Command{
			MessageID: uuid.New(),
			Kind:      boundary.CommandSetDefaultScript,
			SetDefaultScript: &boundary.SetDefaultScriptPayload{
				UserID:   user,
				ScriptID: script,
			},
		})
		if !res.Success {
			return &commandError{res}
		}

		pos := hexgrid.WorldPosition{Room: room, Pos: walkable[rng.Intn(len(walkable))]}
		res = applier.Apply(boundary.Command{
			MessageID: uuid.New(),
			Kind:      boundary.CommandPlaceStructure,
			PlaceStructure: &boundary.PlaceStructurePayload{
				UserID:   user,
				Position: pos,
			},
		})
		if !res.Success {
			continue
		}
		w.QueueSpawn(res.EntityID, script, spawnPeriod)
	}
	return nil
}

func walkableTiles(w *world.World, room hexgrid.Room) []hexgrid.Axial {
	r := w.Rooms[room.Axial]
	if r == nil {
		return nil
	}
	var out []hexgrid.Axial
	r.Terrain.Iterate(func(pos hexgrid.Axial, t pathfind.Terrain) {
		if t.Walkable() {
			out = append(out, pos)
		}
	})
	return out
}

type commandError struct {
	result boundary.CommandResult
}

func (e *commandError) Error() string { return e.result.Error }

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
