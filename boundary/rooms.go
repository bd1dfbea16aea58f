package boundary

import (
	"sort"

	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/ids"
	"github.com/sarchlab/caolo/world"
)

// RoomsForUser lists the rooms a user currently has at least one bot in,
// sorted for deterministic output. Grounded on the reference's room-scoped
// read handlers, which project state down to the rooms a client actually
// cares about rather than shipping the whole world every tick.
func RoomsForUser(w *world.World, user ids.UserId) []hexgrid.Room {
	seen := map[hexgrid.Axial]bool{}
	w.Bots.Iterate(func(id ids.EntityId) {
		owner, ok := w.OwnerOf(id)
		if !ok || owner != user {
			return
		}
		pos, ok := w.PositionOf(id)
		if !ok {
			return
		}
		seen[pos.Room.Axial] = true
	})

	rooms := make([]hexgrid.Room, 0, len(seen))
	for axial := range seen {
		rooms = append(rooms, hexgrid.NewRoom(axial))
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Axial.Q != rooms[j].Axial.Q {
			return rooms[i].Axial.Q < rooms[j].Axial.Q
		}
		return rooms[i].Axial.R < rooms[j].Axial.R
	})
	return rooms
}
