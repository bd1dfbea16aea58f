// Command caolo-bench drives a fixed number of ticks against a generated
// world and reports throughput and diagnostic counters in a tabular report,
// the way the teacher's verify tooling renders its own tabular output
// (core/util.go's PrintState).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
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
	ticks := flag.Int("ticks", 1000, "number of ticks to drive")
	spawnPeriod := flag.Int("spawn-period-ticks", 20, "ticks between each actor's spawn structure producing a bot")
	flag.Parse()

	logger := telemetry.NewLogger(slog.LevelInfo)

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

	core := caolosim.NewBuilder().
		WithEngine(engine).
		WithFreq(1 * akitasim.GHz).
		WithWorld(w).
		WithConfig(cfg).
		WithDiagnostics(diag).
		WithLogger(logger).
		Build("Core")

	start := time.Now()
	for i := 0; i < *ticks; i++ {
		core.Tick(akitasim.VTimeInSec(0))
	}
	elapsed := time.Since(start)

	snap := diag.Snapshot()
	printReport(*ticks, elapsed, snap)

	atexit.Exit(0)
}

func printReport(ticks int, elapsed time.Duration, snap telemetry.CountersSnapshot) {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("caolo-bench report (snapshot %s)", snap.ID.String()))
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"Ticks driven", ticks})
	t.AppendRow(table.Row{"Wall time", elapsed.String()})
	t.AppendRow(table.Row{"Ticks/sec", fmt.Sprintf("%.1f", float64(ticks)/elapsed.Seconds())})
	t.AppendRow(table.Row{"Scripts ran", snap.ScriptsRan})
	t.AppendRow(table.Row{"Scripts errored", snap.ScriptsErrored})
	t.AppendRow(table.Row{"Intents produced", snap.IntentsProduced})
	t.AppendRow(table.Row{"Ticks observed", snap.TicksObserved})
	t.AppendRow(table.Row{"Ticks over budget", snap.TickOverBudget})
	fmt.Println(t.Render())
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
// followed by Exit, produces no intents.
func trivialProgram() *caolang.CompiledProgram {
	return &caolang.CompiledProgram{
		Bytecode: []byte{byte(caolang.Start), byte(caolang.Exit)},
		Labels:   map[int32]int{},
		Version:  [3]uint16{vm.CurrentMajor, 0, 0},
	}
}

// seedActors registers the trivial program, then gives each of cfg.NActors
// synthetic users a spawn structure on a randomly drawn walkable tile, queued
// to produce a bot every spawnPeriod ticks. Draws may repeat a tile; a user
// whose structure cannot be placed there is skipped and gets none.
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
		return fmt.Errorf("registering seed program: %s", res.Error)
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
			return fmt.Errorf("setting default script for actor %d: %s", i, res.Error)
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
