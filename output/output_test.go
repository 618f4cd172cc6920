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

package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spatialmodel/covjson"
)

var testDocs = []covjson.Document{
	{Key: "", Body: []byte(`{"type":"CoverageCollection"}`)},
	{Key: "out-0.covjson", Body: []byte(`{"type":"Coverage","tile":0}`)},
	{Key: "out-1.covjson", Body: []byte(`{"type":"Coverage","tile":1}`)},
}

func TestIsBlob(t *testing.T) {
	tests := []struct {
		locator string
		want    bool
	}{
		{"out.covjson", false},
		{"/data/out.covjson", false},
		{"file://test/out.covjson", true},
		{"gs://bucket/out.covjson", true},
		{"s3://bucket/out.covjson", true},
		{"ftp://host/out.covjson", false},
	}
	for _, test := range tests {
		if have := IsBlob(test.locator); have != test.want {
			t.Errorf("IsBlob(%q): have %v, want %v", test.locator, have, test.want)
		}
	}
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.covjson")
	if err := Write(context.Background(), dest, testDocs); err != nil {
		t.Fatal(err)
	}

	checkFile(t, dest, testDocs[0].Body)
	checkFile(t, filepath.Join(dir, "out-0.covjson"), testDocs[1].Body)
	checkFile(t, filepath.Join(dir, "out-1.covjson"), testDocs[2].Body)
}

func TestWriteBlob(t *testing.T) {
	if err := os.Mkdir("test", os.ModePerm); err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll("test")

	if err := Write(context.Background(), "file://test/out.covjson", testDocs); err != nil {
		t.Fatal(err)
	}

	checkFile(t, filepath.Join("test", "out.covjson"), testDocs[0].Body)
	checkFile(t, filepath.Join("test", "out-0.covjson"), testDocs[1].Body)
	checkFile(t, filepath.Join("test", "out-1.covjson"), testDocs[2].Body)
}

func TestWriteBadDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "out.covjson")
	if err := Write(context.Background(), dest, testDocs); err == nil {
		t.Fatal("have nil error, want failure")
	}
}

func checkFile(t *testing.T, name string, want []byte) {
	t.Helper()
	have, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(have) != string(want) {
		t.Errorf("%s: have %s, want %s", name, have, want)
	}
}
