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

package covjsonutil

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/spatialmodel/covjson"
	"github.com/spatialmodel/covjson/netcdf"
	"github.com/spatialmodel/covjson/output"
)

// Convert runs one conversion: it opens the input file, transcodes the
// selected variables (tiled if tileShape is non-empty), and writes the
// resulting document(s) to dst. The input handle is held for the duration
// of the run and released on every exit path.
func Convert(input, dst string, vars []string, tileShape []int) error {
	if input == "" {
		return fmt.Errorf("covjson: an input file must be specified (for example: --InputFile=data.nc)")
	}
	if len(vars) == 0 {
		return fmt.Errorf("covjson: at least one variable must be specified (for example: --Variables=TMP)")
	}

	src, err := netcdf.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	var spec covjson.TileSpec
	if len(tileShape) > 0 {
		spec = tileShape
	}
	docs, err := covjson.Convert(src, covjson.ConvertOptions{
		Variables: vars,
		TileSpec:  spec,
		BaseName:  baseName(dst),
		Logger:    logrus.StandardLogger(),
	})
	if err != nil {
		return err
	}

	if err := output.Write(context.Background(), dst, docs); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"destination": dst, "documents": len(docs)}).
		Info("conversion complete")
	return nil
}

// baseName derives the stem used to name tile sub-documents from the
// destination locator.
func baseName(dst string) string {
	name := filepath.Base(dst)
	if output.IsBlob(dst) {
		if u, err := url.Parse(dst); err == nil {
			name = path.Base(u.Path)
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Describe writes a summary of the input file to w: its dimensions, then
// its variables with their shapes, units, and descriptions.
func Describe(w io.Writer, input string) error {
	if input == "" {
		return fmt.Errorf("covjson: an input file must be specified (for example: --InputFile=data.nc)")
	}
	src, err := netcdf.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "DIMENSION\tSIZE")
	for _, d := range src.Dimensions() {
		fmt.Fprintf(tw, "%s\t%d\n", d.Name, d.Size)
	}
	fmt.Fprintln(tw)

	vars := src.Variables()
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	fmt.Fprintln(tw, "VARIABLE\tDIMENSIONS\tTYPE\tUNITS\tDESCRIPTION")
	for _, v := range vars {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.Name,
			strings.Join(v.Dims, ","), v.DType,
			attr(src, v.Name, "units"), attr(src, v.Name, "long_name"))
	}
	return tw.Flush()
}

func attr(src covjson.SourceAdapter, v, key string) string {
	val, ok := src.Attribute(v, key)
	if !ok {
		return ""
	}
	return fmt.Sprint(val)
}
