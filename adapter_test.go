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

	"github.com/ctessum/sparse"
)

// fakeSource is an in-memory SourceAdapter for testing the pipeline
// without a container file.
type fakeSource struct {
	dims   []Dimension
	vars   []Variable
	coords map[string][]float64
	data   map[string]*sparse.DenseArray
	attrs  map[string]map[string]interface{}
}

func (f *fakeSource) Dimensions() []Dimension { return f.dims }
func (f *fakeSource) Variables() []Variable   { return f.vars }

func (f *fakeSource) ReadCoordinate(dim string) ([]float64, error) {
	c, ok := f.coords[dim]
	if !ok {
		return nil, fmt.Errorf("no coordinate %s", dim)
	}
	return c, nil
}

func (f *fakeSource) ReadSubarray(v string, offsets, extents []int) (*sparse.DenseArray, error) {
	src, ok := f.data[v]
	if !ok {
		return nil, fmt.Errorf("no data for %s", v)
	}
	out := sparse.ZerosDense(extents...)
	idx := make([]int, len(extents))
	srcIdx := make([]int, len(extents))
	for i := range out.Elements {
		for dim := range idx {
			srcIdx[dim] = offsets[dim] + idx[dim]
		}
		out.Elements[i] = src.Get(srcIdx...)
		for dim := len(idx) - 1; dim >= 0; dim-- {
			idx[dim]++
			if idx[dim] < extents[dim] {
				break
			}
			idx[dim] = 0
		}
	}
	return out, nil
}

func (f *fakeSource) Attribute(v, key string) (interface{}, bool) {
	m, ok := f.attrs[v]
	if !ok {
		return nil, false
	}
	val, ok := m[key]
	return val, ok
}

// gridSource returns a fake 2-d source with a y×x "TMP" variable holding
// the values 0..n-1 in row-major order.
func gridSource(ny, nx int) *fakeSource {
	lat := make([]float64, ny)
	for i := range lat {
		lat[i] = float64(i)
	}
	lon := make([]float64, nx)
	for i := range lon {
		lon[i] = float64(i) * 2
	}
	data := sparse.ZerosDense(ny, nx)
	for i := range data.Elements {
		data.Elements[i] = float64(i)
	}
	return &fakeSource{
		dims: []Dimension{{Name: "lat", Size: ny}, {Name: "lon", Size: nx}},
		vars: []Variable{
			{Name: "lat", Dims: []string{"lat"}, DType: Float},
			{Name: "lon", Dims: []string{"lon"}, DType: Float},
			{Name: "TMP", Dims: []string{"lat", "lon"}, DType: Float},
		},
		coords: map[string][]float64{"lat": lat, "lon": lon},
		data:   map[string]*sparse.DenseArray{"TMP": data},
		attrs: map[string]map[string]interface{}{
			"lat": {"units": "degrees_north"},
			"lon": {"units": "degrees_east"},
			"TMP": {"units": "K", "long_name": "surface temperature"},
		},
	}
}
