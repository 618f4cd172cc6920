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

// A Parameter describes one data variable of a coverage: its unit (which
// may be absent), human-readable label, observed-property identifier,
// numeric representation, and declared missing-value sentinel, if any.
type Parameter struct {
	Name             string
	Unit             string
	Label            string
	ObservedProperty string
	DType            DType

	// Missing is the source's declared fill value. Range values equal to
	// it (and NaN values) are emitted as JSON null; the sentinel itself
	// is not preserved in the output.
	Missing *float64
}

// ExtractParameter reads the metadata for variable v: unit and long name
// from the conventional attributes, the observed property from
// standard_name when present, and the missing-value sentinel from
// _FillValue or missing_value.
func ExtractParameter(src SourceAdapter, v string) (*Parameter, error) {
	info, ok := variableInfo(src, v)
	if !ok {
		return nil, &SourceReadError{Variable: v, Err: errNoSuchVariable}
	}

	p := &Parameter{Name: v, DType: info.DType}
	p.Unit, _ = attrString(src, v, "units")
	if p.Label, ok = attrString(src, v, "long_name"); !ok {
		p.Label = v
	}
	if p.ObservedProperty, ok = attrString(src, v, "standard_name"); !ok {
		p.ObservedProperty = p.Label
	}
	for _, key := range []string{"_FillValue", "missing_value"} {
		if f, ok := attrFloat(src, v, key); ok {
			p.Missing = &f
			break
		}
	}
	return p, nil
}
