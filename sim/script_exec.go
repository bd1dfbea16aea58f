package sim

import (
	"sort"
	"sync"

	"github.com/sarchlab/caolo/caolang"
	vmpkg "github.com/sarchlab/caolo/caolang/vm"
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/scripting"
)

// entityScript is one workload item: an entity and the compiled program it
// runs this tick.
type entityScript struct {
	entity  ids.EntityId
	script  ids.ScriptId
	program *caolang.CompiledProgram
}

// scriptOutcome is one entity's execution result, kept paired with its id
// so resolution can apply intents in deterministic entity-id order.
type scriptOutcome struct {
	entity  ids.EntityId
	intents scripting.BotIntents
}

// collectWorkload gathers (entity, script) pairs from the entity-script
// table, skipping entities whose assigned script has no compiled program
// registered (step 1 of the tick pipeline).
func (c *Core) collectWorkload() []entityScript {
	var out []entityScript
	c.World.Scripts.Iterate(func(id ids.EntityId, script ids.ScriptId) {
		program, ok := c.World.Programs[script]
		if !ok {
			return
		}
		out = append(out, entityScript{entity: id, script: script, program: program})
	})
	return out
}

// executeScripts dispatches workload in chunks across a worker pool, one
// VM per chunk, reused (Reset) across every entity the chunk owns — the
// Go translation of the reference's per-chunk rayon fold that builds one
// Vm and clears it between scripts.
func (c *Core) executeScripts(workload []entityScript) (intents []scriptOutcome, ran, errored int) {
	if len(workload) == 0 {
		return nil, 0, 0
	}

	size := chunkSize(len(workload))
	var chunks [][]entityScript
	for i := 0; i < len(workload); i += size {
		end := i + size
		if end > len(workload) {
			end = len(workload)
		}
		chunks = append(chunks, workload[i:end])
	}

	results := make([]struct {
		intents []scriptOutcome
		ran     int
		errored int
	}, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []entityScript) {
			defer wg.Done()
			results[i].intents, results[i].ran, results[i].errored = c.runChunk(chunk)
		}(i, chunk)
	}
	wg.Wait()

	for _, r := range results {
		intents = append(intents, r.intents...)
		ran += r.ran
		errored += r.errored
	}

	sort.Slice(intents, func(i, j int) bool { return intents[i].entity < intents[j].entity })
	return intents, ran, errored
}

// runChunk owns one VM for its lifetime: registers every foreign function
// once, then for each entity resets the VM's per-run state and executes.
func (c *Core) runChunk(chunk []entityScript) (out []scriptOutcome, ran, errored int) {
	vmach := vmpkg.New[*scripting.Aux](nil)
	scripting.RegisterAll(vmach)

	maxInstr := uint64(c.Config.ExecutionLimit)

	for _, es := range chunk {
		owner, _ := c.World.OwnerOf(es.entity)
		aux := scripting.NewAux(es.entity, owner, c.World, c.Logger, maxPathfindingIter)
		vmach.Reset(aux, maxInstr)

		ran++
		if _, err := vmach.Run(es.program); err != nil {
			errored++
			if c.Logger != nil {
				c.Logger.Warn("script execution failed",
					"entity", es.entity, "script", es.script, "error", err)
			}
			continue
		}
		out = append(out, scriptOutcome{entity: es.entity, intents: aux.Intents})
	}
	return out, ran, errored
}

// maxPathfindingIter bounds the A* node budget a single foreign-function
// call may spend, independent of the script's own instruction budget.
const maxPathfindingIter = 2000
