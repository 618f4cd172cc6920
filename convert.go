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
	"reflect"

	"github.com/sirupsen/logrus"
)

// ConvertOptions configures a conversion run.
type ConvertOptions struct {
	// Variables selects the data variables to convert. All selected
	// variables must share the same dimension tuple, since they share one
	// domain in the output.
	Variables []string

	// TileSpec requests the per-dimension tile extents; nil means no
	// tiling (one whole-array tile).
	TileSpec TileSpec

	// BaseName names tile sub-documents ("<BaseName>-<k>.covjson") when
	// tiling produces more than one output unit.
	BaseName string

	// Logger receives per-stage progress messages. If nil, progress is
	// discarded.
	Logger logrus.FieldLogger
}

// Convert runs the full transcoding pipeline against src: it extracts
// the domain and parameter metadata for the selected variables, plans the
// tiling, serializes every tile in plan order, and assembles the output
// document(s). It does no I/O of its own beyond reading from src; the
// caller hands the returned documents to a writer.
//
// Any failure aborts the run; no documents are returned on error.
func Convert(src SourceAdapter, o ConvertOptions) ([]Document, error) {
	log := o.Logger
	if log == nil {
		log = nopLogger()
	}
	if len(o.Variables) == 0 {
		return nil, fmt.Errorf("covjson: no variables selected for conversion")
	}

	first, ok := variableInfo(src, o.Variables[0])
	if !ok {
		return nil, &SourceReadError{Variable: o.Variables[0], Err: errNoSuchVariable}
	}
	log.WithFields(logrus.Fields{"stage": "extract", "variable": first.Name}).
		Info("extracting domain")
	domain, err := ExtractDomain(src, first.Name)
	if err != nil {
		return nil, err
	}

	params := make([]*Parameter, len(o.Variables))
	for i, v := range o.Variables {
		info, ok := variableInfo(src, v)
		if !ok {
			return nil, &SourceReadError{Variable: v, Err: errNoSuchVariable}
		}
		if !reflect.DeepEqual(info.Dims, first.Dims) {
			return nil, fmt.Errorf("covjson: variable %s has dimensions %v; cannot share a domain with %s %v",
				v, info.Dims, first.Name, first.Dims)
		}
		if params[i], err = ExtractParameter(src, v); err != nil {
			return nil, err
		}
	}

	shape := domain.shape()
	plan, err := Plan(shape, o.TileSpec)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"stage": "plan", "shape": shape, "tiles": len(plan)}).
		Info("planned tiling")

	axisNames := domain.axisNames()
	ranges := make(map[string][]*Range, len(params))
	for _, p := range params {
		rs := make([]*Range, len(plan))
		for k, tile := range plan {
			if rs[k], err = SerializeTile(src, p, axisNames, tile); err != nil {
				return nil, err
			}
			log.WithFields(logrus.Fields{"stage": "serialize", "variable": p.Name,
				"tile": k, "offsets": tile.Offsets}).Debug("serialized tile")
		}
		ranges[p.Name] = rs
	}

	docs, err := Assemble(domain, params, ranges, o.BaseName)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"stage": "assemble", "documents": len(docs)}).
		Info("assembled documents")
	return docs, nil
}
