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
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	azlog "github.com/Azure/azure-sdk-for-go/sdk/azcore/log"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"k8s.io/klog/v2"
)

const (
	dialTimeout       = 3 * time.Second
	keepAliveIdle     = 10 * time.Second
	keepAliveInterval = 5 * time.Second

	maxRetries    = 2
	retryDelay    = 50 * time.Millisecond
	maxRetryDelay = time.Second
)

// AzureConfig holds the configuration for the Azure blob adapter.
type AzureConfig struct {
	// AccountURL is the storage account endpoint, e.g.
	// "https://myaccount.blob.core.windows.net".
	AccountURL string `json:"accountURL"`
	// ContainerName is the blob container all operations are scoped to.
	ContainerName string `json:"containerName"`
	// EnableSDKLogging forwards Azure SDK diagnostics to klog.
	EnableSDKLogging bool `json:"enableSDKLogging"`
	// EnableMultiNIC binds outgoing connections round-robin across the
	// host's non-loopback interfaces. Best effort; bind failures fall back
	// to the default route.
	EnableMultiNIC bool `json:"enableMultiNIC"`
}

// AzureStore is the Azure-blob-backed Store.
type AzureStore struct {
	client *container.Client
}

var _ Store = &AzureStore{}

// NewAzureStore builds a container-scoped client with the service's transport
// and retry tuning. Credentials come from the default Azure credential chain.
func NewAzureStore(ctx context.Context, cfg *AzureConfig) (*AzureStore, error) {
	if cfg == nil || cfg.AccountURL == "" || cfg.ContainerName == "" {
		return nil, fmt.Errorf("azure store requires accountURL and containerName")
	}

	if cfg.EnableSDKLogging {
		logger := klog.FromContext(ctx).WithName("azure-sdk")
		azlog.SetListener(func(event azlog.Event, msg string) {
			logger.Info(msg, "event", string(event))
		})
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build Azure credential: %w", err)
	}

	transport := newTransport(ctx, cfg.EnableMultiNIC)
	opts := &container.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    maxRetries,
				RetryDelay:    retryDelay,
				MaxRetryDelay: maxRetryDelay,
			},
			Transport: &http.Client{Transport: transport},
		},
	}

	client, err := container.NewClient(cfg.AccountURL+"/"+cfg.ContainerName, cred, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create container client for %s: %w", cfg.AccountURL, err)
	}

	return &AzureStore{client: client}, nil
}

// newTransport builds the HTTP transport: bounded dial timeout, TCP
// keepalive probing, TLS session resumption, and optionally a source-address
// rotating dialer.
func newTransport(ctx context.Context, multiNIC bool) *http.Transport {
	var dial func(ctx context.Context, network, addr string) (net.Conn, error)
	if multiNIC {
		dial = newMultiNICDialer(ctx).DialContext
	} else {
		dial = (&net.Dialer{
			Timeout: dialTimeout,
			KeepAliveConfig: net.KeepAliveConfig{
				Enable:   true,
				Idle:     keepAliveIdle,
				Interval: keepAliveInterval,
			},
		}).DialContext
	}

	return &http.Transport{
		DialContext:         dial,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			ClientSessionCache: tls.NewLRUClientSessionCache(64),
		},
	}
}

// GetProperties fetches a blob's metadata and current ETag.
func (s *AzureStore) GetProperties(ctx context.Context, name string) (Properties, error) {
	resp, err := s.client.NewBlobClient(name).GetProperties(ctx, nil)
	if err != nil {
		return Properties{}, classify("GetProperties", name, err)
	}

	props := Properties{Metadata: fromAzureMetadata(resp.Metadata)}
	if resp.ETag != nil {
		props.ETag = string(*resp.ETag)
	}

	return props, nil
}

// Upload writes body and metadata under name. With ifNoneMatchAny set the
// request carries If-None-Match: * so an existing blob yields KindConflict.
func (s *AzureStore) Upload(ctx context.Context, name string, body []byte, metadata Metadata, ifNoneMatchAny bool) (string, error) {
	opts := &blockblob.UploadBufferOptions{Metadata: toAzureMetadata(metadata)}
	if ifNoneMatchAny {
		etagAny := azcore.ETagAny
		opts.AccessConditions = &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{IfNoneMatch: &etagAny},
		}
	}

	resp, err := s.client.NewBlockBlobClient(name).UploadBuffer(ctx, body, opts)
	if err != nil {
		return "", classify("Upload", name, err)
	}

	var etag string
	if resp.ETag != nil {
		etag = string(*resp.ETag)
	}

	return etag, nil
}

// Download fetches a blob's body together with its metadata.
func (s *AzureStore) Download(ctx context.Context, name string) ([]byte, Metadata, error) {
	resp, err := s.client.NewBlobClient(name).DownloadStream(ctx, nil)
	if err != nil {
		return nil, nil, classify("Download", name, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read error dominates

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, NewError(KindTransient, "Download", name, err)
	}

	return body, fromAzureMetadata(resp.Metadata), nil
}

// SetMetadata replaces a blob's metadata if the ETag still matches.
func (s *AzureStore) SetMetadata(ctx context.Context, name string, metadata Metadata, ifMatchETag string) (string, error) {
	var opts *blob.SetMetadataOptions
	if ifMatchETag != "" {
		etag := azcore.ETag(ifMatchETag)
		opts = &blob.SetMetadataOptions{
			AccessConditions: &blob.AccessConditions{
				ModifiedAccessConditions: &blob.ModifiedAccessConditions{IfMatch: &etag},
			},
		}
	}

	resp, err := s.client.NewBlobClient(name).SetMetadata(ctx, toAzureMetadata(metadata), opts)
	if err != nil {
		return "", classify("SetMetadata", name, err)
	}

	var etag string
	if resp.ETag != nil {
		etag = string(*resp.ETag)
	}

	return etag, nil
}

// Delete removes a blob.
func (s *AzureStore) Delete(ctx context.Context, name string) error {
	if _, err := s.client.NewBlobClient(name).Delete(ctx, nil); err != nil {
		return classify("Delete", name, err)
	}

	return nil
}

// Close does nothing and returns nil; idle connections held by the transport
// are not released explicitly.
func (s *AzureStore) Close() error {
	return nil
}

// classify maps Azure SDK failures onto the engine's error taxonomy.
func classify(op, name string, err error) *Error {
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound):
		return NewError(KindNotFound, op, name, err)
	case bloberror.HasCode(err, bloberror.BlobAlreadyExists):
		return NewError(KindConflict, op, name, err)
	case bloberror.HasCode(err, bloberror.ConditionNotMet):
		return NewError(KindPreconditionFailed, op, name, err)
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch {
		case respErr.StatusCode == http.StatusNotFound:
			return NewError(KindNotFound, op, name, err)
		case respErr.StatusCode == http.StatusConflict:
			return NewError(KindConflict, op, name, err)
		case respErr.StatusCode == http.StatusPreconditionFailed:
			return NewError(KindPreconditionFailed, op, name, err)
		case respErr.StatusCode == http.StatusTooManyRequests || respErr.StatusCode >= 500:
			return NewError(KindTransient, op, name, err)
		}
	}

	return NewError(KindFatal, op, name, err)
}

func toAzureMetadata(m Metadata) map[string]*string {
	out := make(map[string]*string, len(m))
	for k, v := range m.Clone() {
		value := v
		out[k] = &value
	}

	return out
}

func fromAzureMetadata(m map[string]*string) Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		if v != nil {
			out.Set(k, *v)
		}
	}

	return out
}
