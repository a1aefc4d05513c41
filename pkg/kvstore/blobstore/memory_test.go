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

package blobstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/blobstore"
)

func TestConditionalUpload(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()

	etag, err := store.Upload(ctx, "b", []byte("one"), blobstore.Metadata{"k": "v"}, true)
	require.NoError(t, err)
	assert.NotEmpty(t, etag)

	_, err = store.Upload(ctx, "b", []byte("two"), blobstore.Metadata{}, true)
	require.Error(t, err)
	assert.True(t, blobstore.IsConflict(err))

	// Unconditional upload replaces and rotates the ETag.
	etag2, err := store.Upload(ctx, "b", []byte("two"), blobstore.Metadata{}, false)
	require.NoError(t, err)
	assert.NotEqual(t, etag, etag2)
}

func TestSetMetadataETagGuard(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()

	etag, err := store.Upload(ctx, "b", []byte("x"), blobstore.Metadata{"a": "1"}, false)
	require.NoError(t, err)

	etag2, err := store.SetMetadata(ctx, "b", blobstore.Metadata{"a": "2"}, etag)
	require.NoError(t, err)
	assert.NotEqual(t, etag, etag2)

	// The old ETag is stale now.
	_, err = store.SetMetadata(ctx, "b", blobstore.Metadata{"a": "3"}, etag)
	require.Error(t, err)
	assert.True(t, blobstore.IsPreconditionFailed(err))

	props, err := store.GetProperties(ctx, "b")
	require.NoError(t, err)
	v, ok := props.Metadata.Get("a")
	require.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestMetadataCaseInsensitive(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Upload(ctx, "b", nil, blobstore.Metadata{"ParentHash": "9"}, false)
	require.NoError(t, err)

	props, err := store.GetProperties(ctx, "b")
	require.NoError(t, err)

	v, ok := props.Metadata.Get("parenthash")
	require.True(t, ok)
	assert.Equal(t, "9", v)

	v, ok = props.Metadata.Get("PARENTHASH")
	require.True(t, ok)
	assert.Equal(t, "9", v)
}

func TestNotFoundOperations(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetProperties(ctx, "absent")
	assert.True(t, blobstore.IsNotFound(err))

	_, _, err = store.Download(ctx, "absent")
	assert.True(t, blobstore.IsNotFound(err))

	_, err = store.SetMetadata(ctx, "absent", blobstore.Metadata{}, "")
	assert.True(t, blobstore.IsNotFound(err))

	err = store.Delete(ctx, "absent")
	assert.True(t, blobstore.IsNotFound(err))
}

func TestDownloadReturnsCopy(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Upload(ctx, "b", []byte("abc"), blobstore.Metadata{}, false)
	require.NoError(t, err)

	body, _, err := store.Download(ctx, "b")
	require.NoError(t, err)
	body[0] = 'z'

	again, _, err := store.Download(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}
