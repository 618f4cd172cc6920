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
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// JSON shapes of the produced CovJSON document tree.

type coverageJSON struct {
	Type       string                   `json:"type"`
	Domain     *domainJSON              `json:"domain"`
	Parameters map[string]parameterJSON `json:"parameters"`
	Ranges     map[string]interface{}   `json:"ranges"`
	Coverages  []tileRefJSON            `json:"coverages,omitempty"`
}

type domainJSON struct {
	Type        string              `json:"type"`
	DomainType  string              `json:"domainType"`
	Axes        map[string]axisJSON `json:"axes"`
	Referencing []ReferenceSystem   `json:"referencing"`
}

type axisJSON struct {
	Values interface{} `json:"values"`
}

type i18n map[string]string

type parameterJSON struct {
	Type             string    `json:"type"`
	Description      i18n      `json:"description,omitempty"`
	Unit             *unitJSON `json:"unit,omitempty"`
	ObservedProperty obsJSON   `json:"observedProperty"`
}

type unitJSON struct {
	Symbol string `json:"symbol"`
}

type obsJSON struct {
	Label i18n `json:"label"`
}

type ndArrayJSON struct {
	Type      string      `json:"type"`
	DataType  string      `json:"dataType"`
	AxisNames []string    `json:"axisNames"`
	Shape     []int       `json:"shape"`
	Values    rangeValues `json:"values"`
}

type tiledNdArrayJSON struct {
	Type      string        `json:"type"`
	DataType  string        `json:"dataType"`
	AxisNames []string      `json:"axisNames"`
	Shape     []int         `json:"shape"`
	TileSets  []tileSetJSON `json:"tileSets"`
}

type tileSetJSON struct {
	TileShape   []int  `json:"tileShape"`
	URLTemplate string `json:"urlTemplate"`
}

// tileRefJSON is the per-tile reference descriptor in a collection's root
// document: the tile's axis offsets plus a locator resolvable relative to
// the root.
type tileRefJSON struct {
	Type    string `json:"type"`
	Href    string `json:"href"`
	Offsets []int  `json:"offsets"`
}

// domainTree converts a Domain to its JSON shape, keying axes by role.
func domainTree(d *Domain) *domainJSON {
	o := &domainJSON{
		Type:        "Domain",
		DomainType:  "Grid",
		Axes:        make(map[string]axisJSON, len(d.Axes)),
		Referencing: d.Referencing,
	}
	for _, a := range d.Axes {
		if a.Times != nil {
			o.Axes[string(a.Role)] = axisJSON{Values: a.Times}
		} else {
			o.Axes[string(a.Role)] = axisJSON{Values: a.Values}
		}
	}
	return o
}

func parameterTrees(params []*Parameter) map[string]parameterJSON {
	o := make(map[string]parameterJSON, len(params))
	for _, p := range params {
		t := parameterJSON{
			Type:             "Parameter",
			Description:      i18n{"en": p.Label},
			ObservedProperty: obsJSON{Label: i18n{"en": p.ObservedProperty}},
		}
		if p.Unit != "" {
			t.Unit = &unitJSON{Symbol: p.Unit}
		}
		o[p.Name] = t
	}
	return o
}

// rangeValues marshals a flat value sequence, emitting null at masked or
// non-finite positions and integer literals for integer-typed ranges.
type rangeValues struct {
	dtype DType
	vals  []*float64
}

func (v rangeValues) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, val := range v.vals {
		if i > 0 {
			b.WriteByte(',')
		}
		switch {
		case val == nil || math.IsNaN(*val) || math.IsInf(*val, 0):
			b.WriteString("null")
		case v.dtype == Integer:
			b.WriteString(strconv.FormatInt(int64(*val), 10))
		default:
			b.Write(strconv.AppendFloat(nil, *val, 'g', -1, 64))
		}
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

// Keys whose array values are emitted on a single line. The rest of the
// document is indented; keeping the long value sequences compact makes
// the output human-readable without bloating it, matching the
// conventional CovJSON presentation.
var compactKeys = map[string]bool{
	"values":      true,
	"axisNames":   true,
	"shape":       true,
	"tileShape":   true,
	"offsets":     true,
	"coordinates": true,
}

// encodeCoverage marshals a document tree with two-space indentation,
// then re-compacts the arrays under compactKeys.
func encodeCoverage(tree *coverageJSON) ([]byte, error) {
	b, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, err
	}
	return compactArrays(b), nil
}

// compactArrays removes the whitespace inside arrays that directly follow
// one of compactKeys. The scan tracks string literals so that quoted
// content (including timestamps in axis values) is never altered.
func compactArrays(b []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(b))
	i := 0
	for i < len(b) {
		c := b[i]
		if c != '"' {
			out.WriteByte(c)
			i++
			continue
		}
		j := stringEnd(b, i)
		out.Write(b[i:j])
		key := string(b[i+1 : j-1])
		i = j
		if !compactKeys[key] {
			continue
		}
		// Only treat it as a key if a colon and an array opener follow.
		k := i
		for k < len(b) && (b[k] == ' ' || b[k] == '\t' || b[k] == '\n') {
			k++
		}
		if k >= len(b) || b[k] != ':' {
			continue
		}
		k++
		for k < len(b) && (b[k] == ' ' || b[k] == '\t' || b[k] == '\n') {
			k++
		}
		if k >= len(b) || b[k] != '[' {
			continue
		}
		out.WriteString(": ")
		i = compactSpan(&out, b, k)
	}
	return out.Bytes()
}

// compactSpan writes the array starting at b[start] to out with all
// whitespace outside string literals removed, and returns the index just
// past the array's closing bracket.
func compactSpan(out *bytes.Buffer, b []byte, start int) int {
	depth := 0
	i := start
	for i < len(b) {
		switch c := b[i]; c {
		case '"':
			j := stringEnd(b, i)
			out.Write(b[i:j])
			i = j
		case ' ', '\t', '\n':
			i++
		case '[':
			depth++
			out.WriteByte(c)
			i++
		case ']':
			depth--
			out.WriteByte(c)
			i++
			if depth == 0 {
				return i
			}
		default:
			out.WriteByte(c)
			i++
		}
	}
	return i
}

// stringEnd returns the index just past the JSON string literal starting
// at b[start].
func stringEnd(b []byte, start int) int {
	for i := start + 1; i < len(b); i++ {
		switch b[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(b)
}
