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
	"fmt"
	"math"
)

// A Range holds one tile's worth of serialized values: the flat row-major
// value sequence, the tile's shape, and its axis offsets for reassembly.
// A nil element marks a position where the source held its declared fill
// value (or NaN); re-reading a produced tile reproduces the masked
// positions, not the original fill constant.
type Range struct {
	DType     DType
	AxisNames []string
	Shape     []int
	Offsets   []int
	Values    []*float64
}

// SerializeTile reads the sub-array of variable p.Name addressed by tile
// from src and encodes it as a Range. Values equal to p.Missing, along
// with NaN and infinite values (which JSON cannot represent), become nil.
// The tile must lie within the variable's shape;
// plans produced by Plan always satisfy this, so a violation reports an
// internal-consistency failure rather than bad user input.
func SerializeTile(src SourceAdapter, p *Parameter, axisNames []string, tile TileIndex) (*Range, error) {
	shape, err := variableShape(src, p.Name)
	if err != nil {
		return nil, err
	}
	if !tile.contains(shape) {
		return nil, &OutOfBoundsError{Variable: p.Name,
			Offsets: tile.Offsets, Extents: tile.Extents, Shape: shape}
	}

	arr, err := src.ReadSubarray(p.Name, tile.Offsets, tile.Extents)
	if err != nil {
		return nil, &SourceReadError{Variable: p.Name, Err: err}
	}
	if len(arr.Elements) != tile.Size() {
		return nil, &SourceReadError{Variable: p.Name,
			Err: fmt.Errorf("adapter returned %d elements for a %d-element tile",
				len(arr.Elements), tile.Size())}
	}

	r := &Range{
		DType:     p.DType,
		AxisNames: axisNames,
		Shape:     tile.Extents,
		Offsets:   tile.Offsets,
		Values:    make([]*float64, len(arr.Elements)),
	}
	for i, e := range arr.Elements {
		if math.IsNaN(e) || math.IsInf(e, 0) || (p.Missing != nil && e == *p.Missing) {
			continue
		}
		e := e
		r.Values[i] = &e
	}
	return r, nil
}
