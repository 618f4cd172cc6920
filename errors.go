/*
Copyright © 2019 the CovJSON converter authors.
This file is part of the CovJSON converter.

The CovJSON converter is free software: you can redistribute it and/or
modify it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

The CovJSON converter is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with the CovJSON converter.  If not, see <http://www.gnu.org/licenses/>.
*/

package covjson

import (
	"errors"
	"fmt"
)

// All conversion failures are fatal to the current run: none are retried,
// and no partial-success mode exists. The error types below identify which
// stage failed and which variable or dimension triggered it.

// MissingCoordinateError indicates that a dimension of the target variable
// has no resolvable coordinate variable.
type MissingCoordinateError struct {
	Variable  string // the variable being converted
	Dimension string // the dimension lacking a coordinate variable
}

func (e *MissingCoordinateError) Error() string {
	return fmt.Sprintf("covjson: extracting domain of %s: no coordinate variable for dimension %s",
		e.Variable, e.Dimension)
}

// UnsupportedAxisError indicates that the axis role (x, y, z, or t) of a
// coordinate variable could not be determined, or that it conflicts with
// another coordinate, so a reference system cannot be constructed.
type UnsupportedAxisError struct {
	Coordinate string
	Reason     string
}

func (e *UnsupportedAxisError) Error() string {
	return fmt.Sprintf("covjson: coordinate %s: %s", e.Coordinate, e.Reason)
}

// InvalidTileShapeError indicates a requested tile shape whose
// dimensionality does not match the target variable or that contains a
// non-positive extent.
type InvalidTileShapeError struct {
	TileSpec []int
	Shape    []int
	Reason   string
}

func (e *InvalidTileShapeError) Error() string {
	return fmt.Sprintf("covjson: tile shape %v for array shape %v: %s",
		e.TileSpec, e.Shape, e.Reason)
}

// OutOfBoundsError indicates a tile whose offsets and extents exceed the
// source array shape. It signals an internal consistency violation: tiles
// produced by Plan always lie within the planned shape.
type OutOfBoundsError struct {
	Variable string
	Offsets  []int
	Extents  []int
	Shape    []int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("covjson: tile at %v with extents %v exceeds shape %v of variable %s",
		e.Offsets, e.Extents, e.Shape, e.Variable)
}

// SourceReadError wraps an underlying I/O or format failure reported by
// the source adapter.
type SourceReadError struct {
	Variable string
	Err      error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("covjson: reading variable %s: %v", e.Variable, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

var errNoSuchVariable = errors.New("no such variable")

type errNoSuchDimension string

func (e errNoSuchDimension) Error() string {
	return fmt.Sprintf("no such dimension %s", string(e))
}
