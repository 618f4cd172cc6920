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

// Package netcdf adapts classic-format NetCDF files (NetCDF 4 and greater
// not supported) to the conversion pipeline's source interface.
package netcdf

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"

	"github.com/spatialmodel/covjson"
)

// A File is an open NetCDF file exposed as a covjson.SourceAdapter.
// It is not safe for concurrent use.
type File struct {
	f  *os.File
	nc *cdf.File

	// numRecs is the resolved length of the record (unlimited) dimension,
	// or -1 if the file has none.
	numRecs int64
}

var _ covjson.SourceAdapter = (*File)(nil)

// Open opens the NetCDF file at path for reading. The caller must call
// Close when finished with it.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("netcdf: opening %s: %v", path, err)
	}
	nc, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("netcdf: opening %s: %v", path, err)
	}
	o := &File{f: f, nc: nc, numRecs: -1}

	// The header stores a zero length for the record dimension; its true
	// length follows from the file size.
	for _, n := range nc.Header.Lengths("") {
		if n == 0 {
			fi, err := f.Stat()
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("netcdf: opening %s: %v", path, err)
			}
			o.numRecs = nc.Header.NumRecs(fi.Size())
			break
		}
	}
	return o, nil
}

// Close releases the underlying file handle.
func (f *File) Close() error { return f.f.Close() }

// Dimensions returns the file's dimensions, with the record dimension's
// length resolved from the file size.
func (f *File) Dimensions() []covjson.Dimension {
	names := f.nc.Header.Dimensions("")
	lengths := f.nc.Header.Lengths("")
	dims := make([]covjson.Dimension, len(names))
	for i := range names {
		n := lengths[i]
		if n == 0 && f.numRecs >= 0 {
			n = int(f.numRecs)
		}
		dims[i] = covjson.Dimension{Name: names[i], Size: n}
	}
	return dims
}

// Variables returns descriptors for the file's numeric variables.
// Character variables have no CovJSON range representation and are
// omitted.
func (f *File) Variables() []covjson.Variable {
	var vars []covjson.Variable
	for _, v := range f.nc.Header.Variables() {
		dt, ok := dtypeOf(f.nc.Header.ZeroValue(v, 0))
		if !ok {
			continue
		}
		vars = append(vars, covjson.Variable{
			Name:  v,
			Dims:  f.nc.Header.Dimensions(v),
			DType: dt,
		})
	}
	return vars
}

// ReadCoordinate reads the full value sequence of the coordinate variable
// named after dimension dim.
func (f *File) ReadCoordinate(dim string) ([]float64, error) {
	dims := f.nc.Header.Dimensions(dim)
	if dims == nil {
		return nil, fmt.Errorf("netcdf: no coordinate variable %s", dim)
	}
	if len(dims) != 1 || dims[0] != dim {
		return nil, fmt.Errorf("netcdf: variable %s has dimensions %v; a coordinate variable must have the single dimension %s",
			dim, dims, dim)
	}
	n := f.dimLength(dim)
	r := f.nc.Reader(dim, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("netcdf: reading coordinate %s: %v", dim, err)
	}
	return toFloat64s(buf)
}

// ReadSubarray reads the hyperslab of variable v starting at offsets with
// the given extents. The classic format stores each variable row-major,
// so the sub-array is assembled from one contiguous read per run along
// the innermost dimension.
func (f *File) ReadSubarray(v string, offsets, extents []int) (*sparse.DenseArray, error) {
	shape := f.nc.Header.Lengths(v)
	if shape == nil {
		return nil, fmt.Errorf("netcdf: no variable %s", v)
	}
	if len(offsets) != len(shape) || len(extents) != len(shape) {
		return nil, fmt.Errorf("netcdf: reading %s: offsets %v and extents %v do not match rank %d",
			v, offsets, extents, len(shape))
	}

	arr := sparse.ZerosDense(extents...)
	if len(arr.Elements) == 0 {
		return arr, nil
	}
	if len(shape) == 0 { // scalar variable
		r := f.nc.Reader(v, nil, nil)
		buf := r.Zero(1)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("netcdf: reading %s: %v", v, err)
		}
		vals, err := toFloat64s(buf)
		if err != nil {
			return nil, fmt.Errorf("netcdf: reading %s: %v", v, err)
		}
		arr.Elements[0] = vals[0]
		return arr, nil
	}

	last := len(shape) - 1
	runLen := extents[last]
	begin := make([]int, len(shape))
	end := make([]int, len(shape))
	idx := make([]int, len(shape)) // index within the tile, innermost fixed at 0
	for pos := 0; pos < len(arr.Elements); pos += runLen {
		for dim := range idx {
			begin[dim] = offsets[dim] + idx[dim]
			end[dim] = begin[dim]
		}
		end[last] = begin[last] + runLen

		r := f.nc.Reader(v, begin, end)
		buf := r.Zero(runLen)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("netcdf: reading %s at %v: %v", v, begin, err)
		}
		vals, err := toFloat64s(buf)
		if err != nil {
			return nil, fmt.Errorf("netcdf: reading %s at %v: %v", v, begin, err)
		}
		copy(arr.Elements[pos:pos+runLen], vals)

		// Advance the outer indices, innermost-but-one first.
		for dim := last - 1; dim >= 0; dim-- {
			idx[dim]++
			if idx[dim] < extents[dim] {
				break
			}
			idx[dim] = 0
		}
	}
	return arr, nil
}

// Attribute returns attribute key of variable v (or the global attribute
// key if v is empty), normalized to string, float64, or []float64.
func (f *File) Attribute(v, key string) (interface{}, bool) {
	val := f.nc.Header.GetAttribute(v, key)
	if val == nil {
		return nil, false
	}
	switch t := val.(type) {
	case string:
		return t, true
	case []uint8:
		return normalize(len(t), func(i int) float64 { return float64(t[i]) })
	case []int16:
		return normalize(len(t), func(i int) float64 { return float64(t[i]) })
	case []int32:
		return normalize(len(t), func(i int) float64 { return float64(t[i]) })
	case []float32:
		return normalize(len(t), func(i int) float64 { return float64(t[i]) })
	case []float64:
		return normalize(len(t), func(i int) float64 { return t[i] })
	}
	return nil, false
}

// normalize converts a numeric attribute vector to float64, collapsing
// single-element vectors to a scalar per the NetCDF convention.
func normalize(n int, get func(int) float64) (interface{}, bool) {
	if n == 0 {
		return nil, false
	}
	if n == 1 {
		return get(0), true
	}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = get(i)
	}
	return vals, true
}

// dimLength returns the resolved length of dimension dim.
func (f *File) dimLength(dim string) int {
	for _, d := range f.Dimensions() {
		if d.Name == dim {
			return d.Size
		}
	}
	return 0
}

// dtypeOf maps a cdf zero value to the CovJSON numeric representation.
// The second return is false for character variables.
func dtypeOf(zero interface{}) (covjson.DType, bool) {
	switch zero.(type) {
	case []float32, []float64:
		return covjson.Float, true
	case []uint8, []int16, []int32:
		return covjson.Integer, true
	}
	return "", false
}

// toFloat64s converts a typed value slice read from the file to float64.
func toFloat64s(buf interface{}) ([]float64, error) {
	switch t := buf.(type) {
	case []float64:
		return t, nil
	case []float32:
		vals := make([]float64, len(t))
		for i, v := range t {
			vals[i] = float64(v)
		}
		return vals, nil
	case []int32:
		vals := make([]float64, len(t))
		for i, v := range t {
			vals[i] = float64(v)
		}
		return vals, nil
	case []int16:
		vals := make([]float64, len(t))
		for i, v := range t {
			vals[i] = float64(v)
		}
		return vals, nil
	case []uint8:
		vals := make([]float64, len(t))
		for i, v := range t {
			vals[i] = float64(v)
		}
		return vals, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", buf)
}
