package morton

import "github.com/sarchlab/caolo/hexgrid"

// RoomTable is the two-level world-room-local hierarchy: an outer Morton
// table keyed by room axial coordinate, each entry an Inner value over
// in-room positions (typically a *Table[Row] or *HexGrid[Row]).
type RoomTable[Inner any] struct {
	outer *Table[Inner]
}

// NewRoomTable builds an empty RoomTable.
func NewRoomTable[Inner any]() *RoomTable[Inner] {
	return &RoomTable[Inner]{outer: NewTable[Inner]()}
}

// Room returns the Inner value registered for room, if any.
func (rt *RoomTable[Inner]) Room(room hexgrid.Room) (Inner, bool) {
	return rt.outer.Get(room.Axial)
}

// SetRoom registers (or replaces) the Inner value for room.
func (rt *RoomTable[Inner]) SetRoom(room hexgrid.Room, inner Inner) error {
	return rt.outer.InsertOrUpdate(room.Axial, inner)
}

// DeleteRoom removes the Inner value registered for room, if any.
func (rt *RoomTable[Inner]) DeleteRoom(room hexgrid.Room) {
	rt.outer.Delete(room.Axial)
}

// Rooms calls visit for every (room, inner) pair, in ascending room-Morton
// order.
func (rt *RoomTable[Inner]) Rooms(visit func(hexgrid.Room, Inner)) {
	rt.outer.Iterate(func(pos hexgrid.Axial, inner Inner) {
		visit(hexgrid.NewRoom(pos), inner)
	})
}

// Len returns the number of registered rooms.
func (rt *RoomTable[Inner]) Len() int { return rt.outer.Len() }
