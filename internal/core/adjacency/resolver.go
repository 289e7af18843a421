// Package adjacency contains the pure lattice lookup used by adjacent-tile
// stages to find the tile one step away along a configured axis.
// This is part of the Functional Core - no I/O, only pure functions.
package adjacency

import (
	"fmt"
	"strings"
)

// Axis selects the lattice direction a stage looks along for its predecessor.
type Axis string

const (
	AxisNone Axis = ""
	AxisX    Axis = "x"
	AxisY    Axis = "y"
	AxisZ    Axis = "z"
)

// ParseAxis maps a configured axis name to an Axis.
func ParseAxis(name string) (Axis, error) {
	switch Axis(strings.ToLower(strings.TrimSpace(name))) {
	case AxisX:
		return AxisX, nil
	case AxisY:
		return AxisY, nil
	case AxisZ:
		return AxisZ, nil
	default:
		return AxisNone, fmt.Errorf("unknown adjacency axis %q (want x, y or z)", name)
	}
}

// Valid reports whether the axis is one of X, Y or Z.
func (a Axis) Valid() bool {
	return a == AxisX || a == AxisY || a == AxisZ
}

// Coord is an integer lattice coordinate.
type Coord struct {
	X, Y, Z int
}

// Step returns the coordinate one lattice step along axis.
// The second result is false for an unrecognized axis.
func (c Coord) Step(axis Axis) (Coord, bool) {
	switch axis {
	case AxisX:
		return Coord{X: c.X + 1, Y: c.Y, Z: c.Z}, true
	case AxisY:
		return Coord{X: c.X, Y: c.Y + 1, Z: c.Z}, true
	case AxisZ:
		return Coord{X: c.X, Y: c.Y, Z: c.Z + 1}, true
	default:
		return c, false
	}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Located is anything with a lattice position.
type Located interface {
	Coord() Coord
}

// Index maps lattice coordinates to tiles of one stage.
// When two tiles share a coordinate the first one wins.
type Index[T Located] struct {
	byCoord map[Coord]T
}

// NewIndex builds a coordinate index over tiles.
func NewIndex[T Located](tiles []T) *Index[T] {
	idx := &Index[T]{byCoord: make(map[Coord]T, len(tiles))}
	for _, t := range tiles {
		c := t.Coord()
		if _, exists := idx.byCoord[c]; !exists {
			idx.byCoord[c] = t
		}
	}
	return idx
}

// At returns the tile at coordinate c, if any.
func (idx *Index[T]) At(c Coord) (T, bool) {
	t, ok := idx.byCoord[c]
	return t, ok
}

// Predecessor returns the tile one step along axis from tile.
// It returns false when no such tile exists or the axis is unrecognized.
func (idx *Index[T]) Predecessor(tile Located, axis Axis) (T, bool) {
	target, ok := tile.Coord().Step(axis)
	if !ok {
		var zero T
		return zero, false
	}
	return idx.At(target)
}

// ResolvePredecessor scans inputSet for the tile one step along axis.
// Use an Index when resolving many tiles against the same set.
func ResolvePredecessor[T Located](tile Located, axis Axis, inputSet []T) (T, bool) {
	var zero T
	target, ok := tile.Coord().Step(axis)
	if !ok {
		return zero, false
	}
	for _, candidate := range inputSet {
		if candidate.Coord() == target {
			return candidate, true
		}
	}
	return zero, false
}
