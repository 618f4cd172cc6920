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

// Package output writes assembled CovJSON documents to a destination
// locator. Locators may be plain filesystem paths or blob storage URLs
// ("file://", "gs://", or "s3://"); in either case the root document
// takes the locator's name and tile sub-documents are placed next to it
// under their own keys.
package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"

	"github.com/spatialmodel/covjson"
)

// IsBlob reports whether the locator addresses blob storage rather than
// the local filesystem.
func IsBlob(locator string) bool {
	for _, scheme := range []string{"file://", "gs://", "s3://"} {
		if strings.HasPrefix(locator, scheme) {
			return true
		}
	}
	return false
}

// Write stores docs at the destination locator: the document with the
// empty key at the locator itself, and every other document next to it
// under its key. Partially written destinations are not cleaned up on
// failure and must be treated as undefined by callers.
func Write(ctx context.Context, locator string, docs []covjson.Document) error {
	if !IsBlob(locator) {
		return writeFiles(locator, docs)
	}

	u, err := url.Parse(locator)
	if err != nil {
		return fmt.Errorf("output: parsing locator %s: %v", locator, err)
	}
	bucket, err := openBucket(ctx, u)
	if err != nil {
		return err
	}
	defer bucket.Close()

	dir, base := path.Split(strings.TrimPrefix(u.Path, "/"))
	for _, doc := range docs {
		key := base
		if doc.Key != "" {
			key = doc.Key
		}
		if err := writeBlob(ctx, bucket, dir+key, doc.Body); err != nil {
			return err
		}
	}
	return nil
}

// writeFiles stores docs on the local filesystem, rooted at the directory
// containing the destination path.
func writeFiles(dest string, docs []covjson.Document) error {
	dir := filepath.Dir(dest)
	for _, doc := range docs {
		name := dest
		if doc.Key != "" {
			name = filepath.Join(dir, doc.Key)
		}
		if err := os.WriteFile(name, doc.Body, 0644); err != nil {
			return fmt.Errorf("output: writing %s: %v", name, err)
		}
	}
	return nil
}

// openBucket returns the blob storage bucket the locator addresses.
// The accepted storage providers are "file" for the local filesystem
// (e.g., for testing), "gs" for Google Cloud Storage, and "s3" for
// AWS S3.
func openBucket(ctx context.Context, u *url.URL) (*blob.Bucket, error) {
	switch u.Scheme {
	case "file":
		return fileblob.OpenBucket(u.Hostname(), nil)
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(u.Hostname())
	default:
		return nil, fmt.Errorf("output: invalid storage provider %s", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s := session.Must(session.NewSession(c))
	return s3blob.OpenBucket(context.Background(), s, name, nil)
}

// writeBlob writes the given data to the given bucket.
func writeBlob(ctx context.Context, bucket *blob.Bucket, key string, data []byte) error {
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: "application/prs.coverage+json"})
	if err != nil {
		return fmt.Errorf("output: creating writer for blob %s: %v", key, err)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("output: copying blob %s: %v", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("output: writing blob %s: %v", key, err)
	}
	return nil
}
