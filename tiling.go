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

// A TileSpec holds the requested per-dimension tile extents. A nil
// TileSpec requests no tiling, i.e. a single tile spanning the whole
// array.
type TileSpec []int

// A TileIndex addresses one rectangular sub-range of an array: per
// dimension, a start offset and an extent. Extents at the trailing edge
// of a dimension may be smaller than the nominal tile shape.
type TileIndex struct {
	Offsets []int
	Extents []int
}

// A TilePlan is an ordered partition of an array's index space into
// tiles. The per-dimension projections of its tiles exactly cover
// [0, size) with no gaps or overlaps.
type TilePlan []TileIndex

// Plan partitions an array of the given shape into tiles of the
// requested shape. Each dimension is split independently into
// consecutive ranges of length spec[dim], the final range truncated to
// the remainder; the plan is the cartesian product of the per-dimension
// partitions, enumerated in row-major order (first dimension varies
// slowest). Downstream consumers depend on this ordering for
// deterministic reassembly, so it is part of the function's contract:
// identical inputs always yield an identical, identically ordered plan.
//
// A nil spec yields a single tile spanning the whole array.
func Plan(shape []int, spec TileSpec) (TilePlan, error) {
	if spec == nil {
		t := TileIndex{
			Offsets: make([]int, len(shape)),
			Extents: make([]int, len(shape)),
		}
		copy(t.Extents, shape)
		return TilePlan{t}, nil
	}
	if len(spec) != len(shape) {
		return nil, &InvalidTileShapeError{TileSpec: spec, Shape: shape,
			Reason: "dimensionality mismatch"}
	}
	for _, n := range spec {
		if n <= 0 {
			return nil, &InvalidTileShapeError{TileSpec: spec, Shape: shape,
				Reason: "tile extents must be positive"}
		}
	}

	// Partition each dimension independently.
	starts := make([][]int, len(shape))
	for dim, size := range shape {
		for o := 0; o < size; o += spec[dim] {
			starts[dim] = append(starts[dim], o)
		}
	}

	nTiles := 1
	for _, s := range starts {
		nTiles *= len(s)
	}
	plan := make(TilePlan, 0, nTiles)
	if nTiles == 0 { // a zero-length dimension yields an empty plan
		return plan, nil
	}

	// Enumerate the cartesian product with the first dimension varying
	// slowest.
	idx := make([]int, len(shape))
	for {
		t := TileIndex{
			Offsets: make([]int, len(shape)),
			Extents: make([]int, len(shape)),
		}
		for dim := range shape {
			o := starts[dim][idx[dim]]
			t.Offsets[dim] = o
			e := spec[dim]
			if o+e > shape[dim] {
				e = shape[dim] - o
			}
			t.Extents[dim] = e
		}
		plan = append(plan, t)

		dim := len(shape) - 1
		for ; dim >= 0; dim-- {
			idx[dim]++
			if idx[dim] < len(starts[dim]) {
				break
			}
			idx[dim] = 0
		}
		if dim < 0 {
			return plan, nil
		}
	}
}

// Size returns the number of elements a tile covers.
func (t TileIndex) Size() int {
	n := 1
	for _, e := range t.Extents {
		n *= e
	}
	return n
}

// contains reports whether the tile lies within an array of the given
// shape.
func (t TileIndex) contains(shape []int) bool {
	if len(t.Offsets) != len(shape) || len(t.Extents) != len(shape) {
		return false
	}
	for dim, size := range shape {
		if t.Offsets[dim] < 0 || t.Extents[dim] <= 0 ||
			t.Offsets[dim]+t.Extents[dim] > size {
			return false
		}
	}
	return true
}
