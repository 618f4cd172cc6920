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
	"reflect"
	"testing"
)

func TestExtractDomain(t *testing.T) {
	src := gridSource(3, 4)
	d, err := ExtractDomain(src, "TMP")
	if err != nil {
		t.Fatal(err)
	}

	if len(d.Axes) != 2 {
		t.Fatalf("have %d axes, want 2", len(d.Axes))
	}
	if d.Axes[0].Role != RoleY || d.Axes[1].Role != RoleX {
		t.Errorf("axis roles: have %s, %s; want y, x", d.Axes[0].Role, d.Axes[1].Role)
	}
	if !reflect.DeepEqual(d.Axes[0].Values, []float64{0, 1, 2}) {
		t.Errorf("y values: have %v", d.Axes[0].Values)
	}
	if !reflect.DeepEqual(d.Axes[1].Values, []float64{0, 2, 4, 6}) {
		t.Errorf("x values: have %v", d.Axes[1].Values)
	}
	if !reflect.DeepEqual(d.shape(), []int{3, 4}) {
		t.Errorf("shape: have %v, want [3 4]", d.shape())
	}
	if !reflect.DeepEqual(d.axisNames(), []string{"y", "x"}) {
		t.Errorf("axis names: have %v, want [y x]", d.axisNames())
	}

	if len(d.Referencing) != 1 {
		t.Fatalf("have %d referencing blocks, want 1", len(d.Referencing))
	}
	ref := d.Referencing[0]
	if !reflect.DeepEqual(ref.Coordinates, []string{"x", "y"}) {
		t.Errorf("CRS coordinates: have %v", ref.Coordinates)
	}
	if ref.System.Type != "GeographicCRS" || ref.System.ID != crs84 {
		t.Errorf("CRS system: have %+v", ref.System)
	}
}

func TestExtractDomainTimeAxis(t *testing.T) {
	src := gridSource(2, 2)
	src.dims = append(src.dims, Dimension{Name: "time", Size: 3})
	src.vars = append(src.vars, Variable{Name: "time", Dims: []string{"time"}, DType: Float})
	src.coords["time"] = []float64{0, 1, 2}
	src.attrs["time"] = map[string]interface{}{"units": "days since 2000-01-01 00:00:00"}
	for i, v := range src.vars {
		if v.Name == "TMP" {
			src.vars[i].Dims = []string{"time", "lat", "lon"}
		}
	}

	d, err := ExtractDomain(src, "TMP")
	if err != nil {
		t.Fatal(err)
	}
	tAxis := d.axis(RoleT)
	if tAxis == nil {
		t.Fatal("no t axis")
	}
	want := []string{"2000-01-01T00:00:00Z", "2000-01-02T00:00:00Z", "2000-01-03T00:00:00Z"}
	if !reflect.DeepEqual(tAxis.Times, want) {
		t.Errorf("t values: have %v, want %v", tAxis.Times, want)
	}
	if len(d.Referencing) != 2 {
		t.Fatalf("have %d referencing blocks, want 2", len(d.Referencing))
	}
	if d.Referencing[1].System.Type != "TemporalRS" || d.Referencing[1].System.Calendar != "Gregorian" {
		t.Errorf("temporal RS: have %+v", d.Referencing[1].System)
	}
}

func TestExtractDomainMissingCoordinate(t *testing.T) {
	src := gridSource(3, 3)
	// Remove the lon coordinate variable; the lon dimension remains.
	for i, v := range src.vars {
		if v.Name == "lon" {
			src.vars = append(src.vars[:i], src.vars[i+1:]...)
			break
		}
	}
	_, err := ExtractDomain(src, "TMP")
	var want *MissingCoordinateError
	if !errors.As(err, &want) {
		t.Fatalf("have %v, want MissingCoordinateError", err)
	}
	if want.Dimension != "lon" {
		t.Errorf("dimension: have %s, want lon", want.Dimension)
	}
}

func TestExtractDomainUnresolvableRole(t *testing.T) {
	src := gridSource(3, 3)
	src.attrs["lon"] = map[string]interface{}{} // no units, no axis attribute
	for i, v := range src.vars {
		if v.Name == "lon" {
			src.vars[i].Name = "wavelength"
		}
	}
	src.dims[1].Name = "wavelength"
	src.coords["wavelength"] = src.coords["lon"]
	src.attrs["wavelength"] = map[string]interface{}{}
	for i, v := range src.vars {
		if v.Name == "TMP" {
			src.vars[i].Dims = []string{"lat", "wavelength"}
		}
	}

	_, err := ExtractDomain(src, "TMP")
	var want *UnsupportedAxisError
	if !errors.As(err, &want) {
		t.Fatalf("have %v, want UnsupportedAxisError", err)
	}
}

func TestExtractDomainDuplicateRole(t *testing.T) {
	src := gridSource(3, 3)
	src.attrs["lat"] = map[string]interface{}{"units": "degrees_east"} // collides with lon
	_, err := ExtractDomain(src, "TMP")
	var want *UnsupportedAxisError
	if !errors.As(err, &want) {
		t.Fatalf("have %v, want UnsupportedAxisError", err)
	}
}

func TestResolveAxisRole(t *testing.T) {
	cases := []struct {
		name  string
		attrs map[string]interface{}
		want  AxisRole
		ok    bool
	}{
		{"anything", map[string]interface{}{"axis": "X"}, RoleX, true},
		{"anything", map[string]interface{}{"axis": "t"}, RoleT, true},
		{"col", map[string]interface{}{"units": "degrees_east"}, RoleX, true},
		{"row", map[string]interface{}{"units": "degrees_north"}, RoleY, true},
		{"pressure", map[string]interface{}{"units": "hPa"}, RoleZ, true},
		{"when", map[string]interface{}{"units": "hours since 2010-01-01"}, RoleT, true},
		{"longitude", nil, RoleX, true},
		{"lat", nil, RoleY, true},
		{"level", nil, RoleZ, true},
		{"time", nil, RoleT, true},
		{"wavelength", nil, "", false},
	}
	for _, c := range cases {
		src := &fakeSource{attrs: map[string]map[string]interface{}{c.name: c.attrs}}
		role, ok := resolveAxisRole(src, c.name)
		if ok != c.ok || role != c.want {
			t.Errorf("%s %v: have (%q, %v), want (%q, %v)", c.name, c.attrs, role, ok, c.want, c.ok)
		}
	}
}

func TestSourceCRSOverride(t *testing.T) {
	src := gridSource(2, 2)
	src.attrs[""] = map[string]interface{}{"crs": "EPSG:4326"}
	d, err := ExtractDomain(src, "TMP")
	if err != nil {
		t.Fatal(err)
	}
	if d.Referencing[0].System.ID != "EPSG:4326" {
		t.Errorf("CRS id: have %s, want EPSG:4326", d.Referencing[0].System.ID)
	}
}

func TestExtractParameter(t *testing.T) {
	src := gridSource(2, 2)
	p, err := ExtractParameter(src, "TMP")
	if err != nil {
		t.Fatal(err)
	}
	want := &Parameter{
		Name:             "TMP",
		Unit:             "K",
		Label:            "surface temperature",
		ObservedProperty: "surface temperature",
		DType:            Float,
	}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("have %+v, want %+v", p, want)
	}
}
