/*
Copyright 2025 The llm-d Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// S3Config holds the configuration for the S3 blob adapter.
type S3Config struct {
	// Bucket is the bucket all operations are scoped to.
	Bucket string `json:"bucket"`
	// Region selects the bucket's region; empty defers to the SDK chain.
	Region string `json:"region"`
	// Endpoint overrides the S3 endpoint for S3-compatible stores.
	// Path-style addressing is used when set.
	Endpoint string `json:"endpoint"`
}

// S3Store is the S3-backed Store.
//
// S3 has no in-place metadata update, so SetMetadata is a self-copy with
// MetadataDirective=REPLACE guarded by CopySourceIfMatch. The copy rewrites
// the object's ETag, which is fine: callers treat ETags as opaque.
type S3Store struct {
	client *s3.Client
	bucket string
}

var _ Store = &S3Store{}

// NewS3Store builds an S3 client from the default credential chain.
func NewS3Store(ctx context.Context, cfg *S3Config) (*S3Store, error) {
	if cfg == nil || cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 store requires a bucket")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.RetryMaxAttempts = maxRetries + 1
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// GetProperties fetches an object's metadata and current ETag.
func (s *S3Store) GetProperties(ctx context.Context, name string) (Properties, error) {
	resp, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return Properties{}, classifyS3("GetProperties", name, err)
	}

	return Properties{
		Metadata: Metadata(resp.Metadata).Clone(),
		ETag:     aws.ToString(resp.ETag),
	}, nil
}

// Upload writes body and metadata under name. With ifNoneMatchAny set the
// request carries If-None-Match: *; S3 reports the losing upload as a
// precondition failure, surfaced here as KindConflict.
func (s *S3Store) Upload(ctx context.Context, name string, body []byte, metadata Metadata, ifNoneMatchAny bool) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(name),
		Body:     bytes.NewReader(body),
		Metadata: metadata.Clone(),
	}
	if ifNoneMatchAny {
		input.IfNoneMatch = aws.String("*")
	}

	resp, err := s.client.PutObject(ctx, input)
	if err != nil {
		classified := classifyS3("Upload", name, err)
		if ifNoneMatchAny && classified.Kind == KindPreconditionFailed {
			classified.Kind = KindConflict
		}
		return "", classified
	}

	return aws.ToString(resp.ETag), nil
}

// Download fetches an object's body together with its metadata.
func (s *S3Store) Download(ctx context.Context, name string) ([]byte, Metadata, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, nil, classifyS3("Download", name, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read error dominates

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, NewError(KindTransient, "Download", name, err)
	}

	return body, Metadata(resp.Metadata).Clone(), nil
}

// SetMetadata replaces an object's metadata if the ETag still matches, via a
// self-copy with MetadataDirective=REPLACE.
func (s *S3Store) SetMetadata(ctx context.Context, name string, metadata Metadata, ifMatchETag string) (string, error) {
	input := &s3.CopyObjectInput{
		Bucket:            aws.String(s.bucket),
		Key:               aws.String(name),
		CopySource:        aws.String(s.bucket + "/" + name),
		Metadata:          metadata.Clone(),
		MetadataDirective: types.MetadataDirectiveReplace,
	}
	if ifMatchETag != "" {
		input.CopySourceIfMatch = aws.String(ifMatchETag)
	}

	resp, err := s.client.CopyObject(ctx, input)
	if err != nil {
		return "", classifyS3("SetMetadata", name, err)
	}

	if resp.CopyObjectResult != nil {
		return aws.ToString(resp.CopyObjectResult.ETag), nil
	}

	return "", nil
}

// Delete removes an object. S3 deletes are idempotent; a missing object is
// not an error.
func (s *S3Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return classifyS3("Delete", name, err)
	}

	return nil
}

// Close is a no-op; the SDK client holds no long-lived resources here.
func (s *S3Store) Close() error {
	return nil
}

// classifyS3 maps AWS SDK failures onto the engine's error taxonomy.
func classifyS3(op, name string, err error) *Error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return NewError(KindNotFound, op, name, err)
		case "PreconditionFailed":
			return NewError(KindPreconditionFailed, op, name, err)
		case "SlowDown", "RequestTimeout", "InternalError", "ServiceUnavailable":
			return NewError(KindTransient, op, name, err)
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		switch {
		case respErr.HTTPStatusCode() == http.StatusNotFound:
			return NewError(KindNotFound, op, name, err)
		case respErr.HTTPStatusCode() == http.StatusPreconditionFailed:
			return NewError(KindPreconditionFailed, op, name, err)
		case respErr.HTTPStatusCode() == http.StatusTooManyRequests || respErr.HTTPStatusCode() >= 500:
			return NewError(KindTransient, op, name, err)
		}
	}

	return NewError(KindFatal, op, name, err)
}
