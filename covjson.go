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

// Package covjson converts gridded array data into CoverageJSON (CovJSON)
// documents. A conversion run extracts the coordinate axes, reference
// system, and variable metadata from a source container, partitions the
// numeric payload into rectangular tiles, and assembles either a single
// self-contained Coverage document or a coverage collection referencing
// one sub-document per tile. The conversion preserves structure and
// metadata: no resampling, reprojection, or unit conversion is performed,
// and the emitted range values losslessly reproduce the source array
// (with declared fill values replaced by JSON null).
package covjson

import (
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// Version gives the version of this package.
const Version = "0.1.0"

// DType identifies the numeric representation of a variable's values
// in an emitted range.
type DType string

// The numeric representations CovJSON distinguishes.
const (
	Float   DType = "float"
	Integer DType = "integer"
)

// Dimension is a named array extent in a source container.
type Dimension struct {
	Name string
	Size int
}

// Variable describes a data variable in a source container: its name,
// its shape as an ordered tuple of dimension names, and its numeric
// representation.
type Variable struct {
	Name  string
	Dims  []string
	DType DType
}

// A SourceAdapter exposes a self-describing array container (such as a
// NetCDF file) to the conversion pipeline. All methods are read-only.
// Implementations are not required to support concurrent calls.
type SourceAdapter interface {
	// Dimensions returns the container's named dimensions and their sizes.
	Dimensions() []Dimension

	// Variables returns descriptors for all variables in the container,
	// coordinate variables included.
	Variables() []Variable

	// ReadCoordinate returns the full value sequence of the coordinate
	// variable matching dimension dim.
	ReadCoordinate(dim string) ([]float64, error)

	// ReadSubarray reads the hyperslab of variable v starting at offsets
	// and extending extents elements along each dimension. The result is
	// in row-major order with shape equal to extents.
	ReadSubarray(v string, offsets, extents []int) (*sparse.DenseArray, error)

	// Attribute returns the value of attribute key for variable v, or the
	// global attribute key if v is empty. Numeric scalar attributes are
	// returned as float64, numeric vectors as []float64, and text
	// attributes as string. The second return is false if the attribute
	// does not exist.
	Attribute(v, key string) (interface{}, bool)
}

// variableInfo returns the descriptor for variable v.
func variableInfo(src SourceAdapter, v string) (Variable, bool) {
	for _, vv := range src.Variables() {
		if vv.Name == v {
			return vv, true
		}
	}
	return Variable{}, false
}

// variableShape returns the lengths of variable v's dimensions.
func variableShape(src SourceAdapter, v string) ([]int, error) {
	info, ok := variableInfo(src, v)
	if !ok {
		return nil, &SourceReadError{Variable: v, Err: errNoSuchVariable}
	}
	sizes := make(map[string]int)
	for _, d := range src.Dimensions() {
		sizes[d.Name] = d.Size
	}
	shape := make([]int, len(info.Dims))
	for i, d := range info.Dims {
		n, ok := sizes[d]
		if !ok {
			return nil, &SourceReadError{Variable: v, Err: errNoSuchDimension(d)}
		}
		shape[i] = n
	}
	return shape, nil
}

// nopLogger discards all messages; it stands in when ConvertOptions.Logger
// is nil.
func nopLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(nopWriter{})
	return l
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
