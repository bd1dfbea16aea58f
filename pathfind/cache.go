package pathfind

import "github.com/sarchlab/caolo/hexgrid"

// MaxCacheLen bounds the number of upcoming steps a PathCache retains,
// matching the reference's bounded per-entity path cache.
const MaxCacheLen = 64

// Cache records up to MaxCacheLen upcoming steps for one entity. Intent
// emitters consult it before running a new search, issuing Pop/Clear
// mutation intents as steps are consumed.
type Cache struct {
	steps []hexgrid.Axial
}

// NewCache builds a Cache from a path in pop order (path's tail is the
// first step to walk, matching FindPathInRoom's reversed output), capped
// at MaxCacheLen.
func NewCache(path []hexgrid.Axial) *Cache {
	if len(path) > MaxCacheLen {
		path = path[len(path)-MaxCacheLen:]
	}
	steps := make([]hexgrid.Axial, len(path))
	copy(steps, path)
	return &Cache{steps: steps}
}

// Peek returns the next step without consuming it.
func (c *Cache) Peek() (hexgrid.Axial, bool) {
	if len(c.steps) == 0 {
		return hexgrid.Axial{}, false
	}
	return c.steps[len(c.steps)-1], true
}

// Pop consumes and returns the next step.
func (c *Cache) Pop() (hexgrid.Axial, bool) {
	pos, ok := c.Peek()
	if !ok {
		return pos, false
	}
	c.steps = c.steps[:len(c.steps)-1]
	return pos, true
}

// Len reports how many steps remain.
func (c *Cache) Len() int { return len(c.steps) }

// Steps returns the remaining path in pop order (tail-first), for callers
// that need to inspect it without mutating the cache.
func (c *Cache) Steps() []hexgrid.Axial {
	out := make([]hexgrid.Axial, len(c.steps))
	copy(out, c.steps)
	return out
}

// Clear discards all remaining steps, forcing the next consult to search
// again.
func (c *Cache) Clear() { c.steps = nil }
