package sim

import "github.com/sarchlab/caolo/scripting"

// intentBuckets sorts one tick's collected BotIntents by kind, so each
// resolution system only walks the slice relevant to it. Entities appear
// in ascending id order within every bucket, since executeScripts sorts
// its outcomes before building these.
type intentBuckets struct {
	move         []scripting.MoveIntent
	mine         []scripting.MineIntent
	dropoff      []scripting.DropoffIntent
	melee        []scripting.MeleeIntent
	cachePath    []scripting.CachePathIntent
	mutPathCache []scripting.MutPathCacheIntent
	log          []scripting.LogIntent
	deleteEntity []scripting.DeleteEntityIntent
}

func newIntentBuckets(outcomes []scriptOutcome) intentBuckets {
	var b intentBuckets
	for _, o := range outcomes {
		in := o.intents
		if in.Move != nil {
			b.move = append(b.move, *in.Move)
		}
		if in.Mine != nil {
			b.mine = append(b.mine, *in.Mine)
		}
		if in.Dropoff != nil {
			b.dropoff = append(b.dropoff, *in.Dropoff)
		}
		if in.Melee != nil {
			b.melee = append(b.melee, *in.Melee)
		}
		if in.CachePath != nil {
			b.cachePath = append(b.cachePath, *in.CachePath)
		}
		if in.MutPathCache != nil {
			b.mutPathCache = append(b.mutPathCache, *in.MutPathCache)
		}
		if in.Log != nil {
			b.log = append(b.log, *in.Log)
		}
		if in.DeleteEntity != nil {
			b.deleteEntity = append(b.deleteEntity, *in.DeleteEntity)
		}
	}
	return b
}
