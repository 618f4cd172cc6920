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
)

// A Document is one assembled output unit: its encoded CovJSON body and
// the key naming it relative to the destination locator. The root
// document has an empty key; tile sub-documents are keyed
// "<base>-<ordinal>.covjson" with ordinals in plan order.
type Document struct {
	Key  string
	Body []byte
}

// Assemble composes the CovJSON document tree(s) from a domain, the
// parameters, and each parameter's serialized tiles in plan order. All
// parameters must carry the same number of tiles, produced from the same
// plan.
//
// With a single tile per parameter the result is one self-contained
// Coverage document with inline ranges. With more, the result is a
// coverage collection: a root document carrying the full domain, the
// parameters, a tiled-range descriptor per parameter, and a reference
// (offsets plus locator) per tile, followed by one subordinate Coverage
// document per tile whose domain is the full-array domain restricted to
// that tile's coordinate sub-range. Reassembling the tiles by their
// offsets reconstructs the full array with no gaps or overlaps.
//
// An empty baseName defaults to "coverage", so tile keys are never
// degenerate names like "-0.covjson".
func Assemble(domain *Domain, params []*Parameter, ranges map[string][]*Range, baseName string) ([]Document, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("covjson: assembling document: no parameters")
	}
	nTiles := -1
	for _, p := range params {
		r, ok := ranges[p.Name]
		if !ok || len(r) == 0 {
			return nil, fmt.Errorf("covjson: assembling document: no ranges for parameter %s", p.Name)
		}
		if nTiles == -1 {
			nTiles = len(r)
		} else if len(r) != nTiles {
			return nil, fmt.Errorf("covjson: assembling document: parameter %s has %d tiles; want %d",
				p.Name, len(r), nTiles)
		}
	}

	if nTiles == 1 {
		body, err := encodeCoverage(&coverageJSON{
			Type:       "Coverage",
			Domain:     domainTree(domain),
			Parameters: parameterTrees(params),
			Ranges:     inlineRanges(params, ranges, 0),
		})
		if err != nil {
			return nil, err
		}
		return []Document{{Body: body}}, nil
	}
	if baseName == "" {
		baseName = "coverage"
	}
	return assembleCollection(domain, params, ranges, baseName, nTiles)
}

func assembleCollection(domain *Domain, params []*Parameter, ranges map[string][]*Range, baseName string, nTiles int) ([]Document, error) {
	shape := domain.shape()
	root := &coverageJSON{
		Type:       "CoverageCollection",
		Domain:     domainTree(domain),
		Parameters: parameterTrees(params),
		Ranges:     make(map[string]interface{}),
	}
	for _, p := range params {
		// Every tile of a plan shares the nominal tile shape except at
		// the trailing edges, so the first tile's extents give the
		// nominal shape.
		root.Ranges[p.Name] = &tiledNdArrayJSON{
			Type:      "TiledNdArray",
			DataType:  string(p.DType),
			AxisNames: ranges[p.Name][0].AxisNames,
			Shape:     shape,
			TileSets:  []tileSetJSON{{TileShape: ranges[p.Name][0].Shape, URLTemplate: baseName + "-{tile}.covjson"}},
		}
	}

	docs := make([]Document, 0, nTiles+1)
	first := ranges[params[0].Name]
	for k := 0; k < nTiles; k++ {
		key := fmt.Sprintf("%s-%d.covjson", baseName, k)
		root.Coverages = append(root.Coverages, tileRefJSON{
			Type:    "Coverage",
			Href:    key,
			Offsets: first[k].Offsets,
		})

		tile := TileIndex{Offsets: first[k].Offsets, Extents: first[k].Shape}
		body, err := encodeCoverage(&coverageJSON{
			Type:       "Coverage",
			Domain:     domainTree(domain.slice(tile)),
			Parameters: parameterTrees(params),
			Ranges:     inlineRanges(params, ranges, k),
		})
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Key: key, Body: body})
	}

	body, err := encodeCoverage(root)
	if err != nil {
		return nil, err
	}
	// Root document first, tiles after, in plan order.
	return append([]Document{{Body: body}}, docs...), nil
}

// inlineRanges builds the inline NdArray trees for tile ordinal k.
func inlineRanges(params []*Parameter, ranges map[string][]*Range, k int) map[string]interface{} {
	o := make(map[string]interface{}, len(params))
	for _, p := range params {
		r := ranges[p.Name][k]
		o[p.Name] = &ndArrayJSON{
			Type:      "NdArray",
			DataType:  string(p.DType),
			AxisNames: r.AxisNames,
			Shape:     r.Shape,
			Values:    rangeValues{dtype: p.DType, vals: r.Values},
		}
	}
	return o
}
