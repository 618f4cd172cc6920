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

// Command covjson is a command-line interface for converting NetCDF
// files to CoverageJSON.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/covjson/covjsonutil"
)

func main() {
	if err := covjsonutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
