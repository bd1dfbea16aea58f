package morton

import (
	"errors"

	"github.com/sarchlab/caolo/hexgrid"
)

// ErrHexGridOutOfBounds is returned when a position falls outside a
// HexGrid's hexagon.
var ErrHexGridOutOfBounds = errors.New("morton: position outside hex grid")

// HexGrid is a dense hexagon-shaped backing vector addressed by an
// axial-to-index formula, sized to exactly hexgrid.PointCount(radius).
type HexGrid[Row any] struct {
	center    hexgrid.Axial
	radius    int32
	rowOffset []int
	data      []Row
}

// NewHexGrid builds a HexGrid covering the hexagon of the given radius
// centered at center, with every slot holding Row's zero value.
func NewHexGrid[Row any](center hexgrid.Axial, radius int32) *HexGrid[Row] {
	rows := int(2*radius + 1)
	rowOffset := make([]int, rows)
	offset := 0
	for i := 0; i < rows; i++ {
		x := int32(i) - radius
		fromY := maxI32(-radius, -x-radius)
		toY := minI32(radius, -x+radius)
		rowOffset[i] = offset
		offset += int(toY-fromY) + 1
	}
	return &HexGrid[Row]{
		center:    center,
		radius:    radius,
		rowOffset: rowOffset,
		data:      make([]Row, offset),
	}
}

// Radius returns the grid's configured radius.
func (g *HexGrid[Row]) Radius() int32 { return g.radius }

// Center returns the grid's configured center.
func (g *HexGrid[Row]) Center() hexgrid.Axial { return g.center }

func (g *HexGrid[Row]) index(p hexgrid.Axial) (int, bool) {
	local := p.Sub(g.center)
	x := local.Q
	if x < -g.radius || x > g.radius {
		return 0, false
	}
	fromY := maxI32(-g.radius, -x-g.radius)
	toY := minI32(g.radius, -x+g.radius)
	y := -x - local.R
	if y < fromY || y > toY {
		return 0, false
	}
	return g.rowOffset[x+g.radius] + int(y-fromY), true
}

// At returns a pointer to the slot's row, or nil if p lies outside the
// hexagon.
func (g *HexGrid[Row]) At(p hexgrid.Axial) *Row {
	i, ok := g.index(p)
	if !ok {
		return nil
	}
	return &g.data[i]
}

// Insert writes row at p. Fails with ErrHexGridOutOfBounds if p lies
// outside the hexagon.
func (g *HexGrid[Row]) Insert(p hexgrid.Axial, row Row) error {
	i, ok := g.index(p)
	if !ok {
		return ErrHexGridOutOfBounds
	}
	g.data[i] = row
	return nil
}

// Extend inserts every (pos, row) pair, stopping at the first out-of-bounds
// position.
func (g *HexGrid[Row]) Extend(items []struct {
	Pos hexgrid.Axial
	Row Row
}) error {
	for _, it := range items {
		if err := g.Insert(it.Pos, it.Row); err != nil {
			return err
		}
	}
	return nil
}

// Reset overwrites every slot with Row's zero value, reusing the
// allocation — used to clear a scratch grid (e.g. pathfinding's visited
// set) between runs.
func (g *HexGrid[Row]) Reset() {
	var zero Row
	for i := range g.data {
		g.data[i] = zero
	}
}

// Len returns the number of addressable slots (hexgrid.PointCount(radius)).
func (g *HexGrid[Row]) Len() int { return len(g.data) }

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
