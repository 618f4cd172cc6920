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
	"strings"

	"github.com/ctessum/geom/proj"
	"github.com/spf13/cast"
)

// AxisRole tags a coordinate axis with its function in the domain's
// reference systems. The role doubles as the axis key in emitted
// documents.
type AxisRole string

// The axis roles a Grid domain distinguishes.
const (
	RoleX AxisRole = "x"
	RoleY AxisRole = "y"
	RoleZ AxisRole = "z"
	RoleT AxisRole = "t"
)

// An Axis is one coordinate axis of a domain: the source coordinate
// variable's name, its role, and its ordered value sequence. Exactly one
// of Values and Times is set; Times holds RFC 3339 timestamps and is
// only used for the t axis.
type Axis struct {
	Name   string
	Role   AxisRole
	Values []float64
	Times  []string
}

// Len returns the number of coordinate values on the axis.
func (a *Axis) Len() int {
	if a.Times != nil {
		return len(a.Times)
	}
	return len(a.Values)
}

// slice returns a copy of the axis restricted to offset+extent.
func (a *Axis) slice(offset, extent int) *Axis {
	o := &Axis{Name: a.Name, Role: a.Role}
	if a.Times != nil {
		o.Times = a.Times[offset : offset+extent]
	} else {
		o.Values = a.Values[offset : offset+extent]
	}
	return o
}

// A ReferenceSystem relates a set of axes (identified by role) to the
// coordinate reference system their values are expressed in. Immutable
// once extracted.
type ReferenceSystem struct {
	Coordinates []string        `json:"coordinates"`
	System      referenceTarget `json:"system"`
}

type referenceTarget struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Calendar string `json:"calendar,omitempty"`
}

// Identifiers for the default geographic reference systems, used when the
// source declares no CRS of its own.
const (
	crs84  = "http://www.opengis.net/def/crs/OGC/1.3/CRS84"
	crs84h = "http://www.opengis.net/def/crs/OGC/0/CRS84h"
)

// A Domain locates a coverage's values: its coordinate axes, in the
// target variable's dimension order, plus the reference systems relating
// them to the world.
type Domain struct {
	Axes        []*Axis
	Referencing []ReferenceSystem
}

// axis returns the domain axis with the given role, or nil.
func (d *Domain) axis(role AxisRole) *Axis {
	for _, a := range d.Axes {
		if a.Role == role {
			return a
		}
	}
	return nil
}

// shape returns the axis lengths in dimension order.
func (d *Domain) shape() []int {
	s := make([]int, len(d.Axes))
	for i, a := range d.Axes {
		s[i] = a.Len()
	}
	return s
}

// axisNames returns the axis roles in dimension order, for use as range
// axis names.
func (d *Domain) axisNames() []string {
	n := make([]string, len(d.Axes))
	for i, a := range d.Axes {
		n[i] = string(a.Role)
	}
	return n
}

// slice returns a copy of the domain with each axis restricted to the
// given tile's coordinate sub-range. The referencing blocks are shared:
// restriction never alters the reference systems.
func (d *Domain) slice(t TileIndex) *Domain {
	o := &Domain{
		Axes:        make([]*Axis, len(d.Axes)),
		Referencing: d.Referencing,
	}
	for i, a := range d.Axes {
		o.Axes[i] = a.slice(t.Offsets[i], t.Extents[i])
	}
	return o
}

// ExtractDomain builds the domain description for variable v: one axis
// per dimension of v, in dimension order, with the axis role resolved
// from the coordinate variable's attributes (see resolveAxisRole), plus
// reference system blocks covering the resolved roles.
func ExtractDomain(src SourceAdapter, v string) (*Domain, error) {
	info, ok := variableInfo(src, v)
	if !ok {
		return nil, &SourceReadError{Variable: v, Err: errNoSuchVariable}
	}

	d := new(Domain)
	seen := make(map[AxisRole]string)
	for _, dim := range info.Dims {
		if _, ok := variableInfo(src, dim); !ok {
			return nil, &MissingCoordinateError{Variable: v, Dimension: dim}
		}
		role, ok := resolveAxisRole(src, dim)
		if !ok {
			return nil, &UnsupportedAxisError{Coordinate: dim,
				Reason: "cannot determine axis role (no axis attribute, and units and name match no known convention)"}
		}
		if prev, ok := seen[role]; ok {
			return nil, &UnsupportedAxisError{Coordinate: dim,
				Reason: "resolves to the same axis role as coordinate " + prev}
		}
		seen[role] = dim

		vals, err := src.ReadCoordinate(dim)
		if err != nil {
			return nil, &SourceReadError{Variable: dim, Err: err}
		}
		axis := &Axis{Name: dim, Role: role, Values: vals}
		if role == RoleT {
			units, _ := attrString(src, dim, "units")
			times, err := decodeTimes(units, vals)
			if err != nil {
				return nil, &UnsupportedAxisError{Coordinate: dim, Reason: err.Error()}
			}
			axis.Values, axis.Times = nil, times
		}
		d.Axes = append(d.Axes, axis)
	}

	var err error
	d.Referencing, err = referencing(src, d)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// referencing builds the reference system blocks for the resolved axes:
// a geographic CRS covering x and y (and z when present), and a Gregorian
// temporal RS when a t axis is present. A source-declared CRS identifier
// (crs, spatial_ref, or proj4 attribute, on the target variable or
// globally) overrides the default identifier after being checked with the
// PROJ parser when it is a projection string.
func referencing(src SourceAdapter, d *Domain) ([]ReferenceSystem, error) {
	x, y := d.axis(RoleX), d.axis(RoleY)
	if x == nil || y == nil {
		missing := "x"
		if x != nil {
			missing = "y"
		}
		return nil, &UnsupportedAxisError{Coordinate: missing,
			Reason: "no coordinate resolves to this axis role, which is required for CRS construction"}
	}

	spatial := referenceTarget{Type: "GeographicCRS", ID: crs84}
	coords := []string{string(RoleX), string(RoleY)}
	if d.axis(RoleZ) != nil {
		spatial.ID = crs84h
		coords = append(coords, string(RoleZ))
	}
	if id, ok := sourceCRS(src); ok {
		spatial.ID = id
	}

	refs := []ReferenceSystem{{Coordinates: coords, System: spatial}}
	if d.axis(RoleT) != nil {
		refs = append(refs, ReferenceSystem{
			Coordinates: []string{string(RoleT)},
			System:      referenceTarget{Type: "TemporalRS", Calendar: "Gregorian"},
		})
	}
	return refs, nil
}

// sourceCRS looks for a CRS declaration among the conventional attribute
// names. A proj4 declaration is validated by parsing it; an authority
// code (for example "EPSG:4326") is passed through untouched.
func sourceCRS(src SourceAdapter) (string, bool) {
	for _, key := range []string{"crs", "spatial_ref", "proj4"} {
		s, ok := attrString(src, "", key)
		if !ok || s == "" {
			continue
		}
		if strings.HasPrefix(s, "+proj") {
			if _, err := proj.Parse(s); err != nil {
				continue
			}
		}
		return s, true
	}
	return "", false
}

// resolveAxisRole determines the axis role of coordinate variable name.
// Resolution is attribute-driven with a documented fallback chain, never
// a silent default: an explicit axis attribute wins; otherwise the units
// attribute is matched against CF conventions (degrees east/north,
// pressure units, time-since-epoch units); otherwise the coordinate name
// is matched against common naming conventions. The second return is
// false when none of the three apply.
func resolveAxisRole(src SourceAdapter, name string) (AxisRole, bool) {
	if s, ok := attrString(src, name, "axis"); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "x":
			return RoleX, true
		case "y":
			return RoleY, true
		case "z":
			return RoleZ, true
		case "t":
			return RoleT, true
		}
	}

	if s, ok := attrString(src, name, "units"); ok {
		u := strings.ToLower(strings.TrimSpace(s))
		switch {
		case u == "degrees_east" || u == "degree_east" || u == "degrees_e":
			return RoleX, true
		case u == "degrees_north" || u == "degree_north" || u == "degrees_n":
			return RoleY, true
		case u == "pa" || u == "hpa" || u == "mbar" || u == "millibar" || u == "level":
			return RoleZ, true
		case strings.Contains(u, " since "):
			return RoleT, true
		}
	}

	switch strings.ToLower(name) {
	case "lon", "long", "longitude", "x", "xc":
		return RoleX, true
	case "lat", "latitude", "y", "yc":
		return RoleY, true
	case "lev", "level", "height", "depth", "altitude", "plev", "z":
		return RoleZ, true
	case "time", "t", "date":
		return RoleT, true
	}
	return "", false
}

// attrString returns attribute key of variable v as a string.
func attrString(src SourceAdapter, v, key string) (string, bool) {
	val, ok := src.Attribute(v, key)
	if !ok {
		return "", false
	}
	s, err := cast.ToStringE(val)
	if err != nil {
		return "", false
	}
	return s, true
}

// attrFloat returns attribute key of variable v as a float64. Vector
// attributes contribute their first element, matching the NetCDF
// convention for scalar numeric attributes.
func attrFloat(src SourceAdapter, v, key string) (float64, bool) {
	val, ok := src.Attribute(v, key)
	if !ok {
		return 0, false
	}
	if vec, ok := val.([]float64); ok {
		if len(vec) == 0 {
			return 0, false
		}
		val = vec[0]
	}
	f, err := cast.ToFloat64E(val)
	if err != nil {
		return 0, false
	}
	return f, true
}
