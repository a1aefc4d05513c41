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

package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/llm-d/llm-d-kv-store-service/pkg/api/kvstorepb"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/blobstore"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/blockcodec"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/resolver"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/service"
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()

	var mu sync.Mutex
	stores := map[string]*blobstore.MemoryStore{}
	factory := func(_ context.Context, accountURL, containerName string) (blobstore.Store, error) {
		mu.Lock()
		defer mu.Unlock()

		key := accountURL + "|" + containerName
		if s, ok := stores[key]; ok {
			return s, nil
		}
		s := blobstore.NewMemoryStore()
		stores[key] = s
		return s, nil
	}

	r := resolver.NewStaticResolver(nil, factory)
	t.Cleanup(func() { _ = r.Close() })

	return service.NewService(nil, r)
}

func blockTokens(seed int64) []int64 {
	tokens := make([]int64, blockcodec.BlockSize)
	for i := range tokens {
		tokens[i] = seed*1000 + int64(i)
	}
	return tokens
}

func writeChunk(t *testing.T, svc *service.Service, hash, parent uint64, tokens []int64) {
	t.Helper()

	resp, err := svc.Write(context.Background(), &kvstorepb.WriteRequest{
		ResourceName:  "acct",
		ContainerName: "kv",
		Chunk: &kvstorepb.PromptChunk{
			Hash:         hash,
			ParentHash:   parent,
			PartitionKey: "pk",
			CompletionId: fmt.Sprintf("c-%d", hash),
			Tokens:       tokens,
			Buffer:       []byte(fmt.Sprintf("payload-%d", hash)),
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.GetSuccess())
	require.NotNil(t, resp.GetServerMetrics())
}

func TestLookupValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *kvstorepb.LookupRequest
	}{
		{"empty resource", &kvstorepb.LookupRequest{ContainerName: "kv", Tokens: blockTokens(0)}},
		{"empty container", &kvstorepb.LookupRequest{ResourceName: "acct", Tokens: blockTokens(0)}},
		{"empty tokens", &kvstorepb.LookupRequest{ResourceName: "acct", ContainerName: "kv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Lookup(ctx, tt.req)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestReadValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Read(ctx, &kvstorepb.ReadRequest{ContainerName: "kv", Location: "x"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.Read(ctx, &kvstorepb.ReadRequest{ResourceName: "acct", Location: "x"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.Read(ctx, &kvstorepb.ReadRequest{ResourceName: "acct", ContainerName: "kv"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestWriteValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Write(ctx, &kvstorepb.WriteRequest{ResourceName: "acct", ContainerName: "kv"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestWriteLookupReadRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t0, t1 := blockTokens(0), blockTokens(1)
	writeChunk(t, svc, 7, 0, t0)
	writeChunk(t, svc, 11, 7, t1)

	lookup, err := svc.Lookup(ctx, &kvstorepb.LookupRequest{
		ResourceName:      "acct",
		ContainerName:     "kv",
		PartitionKey:      "pk",
		CompletionId:      "c",
		Tokens:            append(append([]int64{}, t0...), t1...),
		PrecomputedHashes: []uint64{7, 11},
	})
	require.NoError(t, err)
	assert.True(t, lookup.GetSuccess())
	assert.Equal(t, int32(2), lookup.GetCachedBlocks())
	assert.Equal(t, uint64(11), lookup.GetLastHash())
	require.Len(t, lookup.GetLocations(), 2)

	metrics := lookup.GetServerMetrics()
	require.NotNil(t, metrics)
	assert.Equal(t, metrics.GetTotalLatencyUs()-metrics.GetStorageLatencyUs(), metrics.GetOverheadUs())

	read, err := svc.Read(ctx, &kvstorepb.ReadRequest{
		ResourceName:  "acct",
		ContainerName: "kv",
		Location:      lookup.GetLocations()[1].GetLocation(),
		CompletionId:  "c",
	})
	require.NoError(t, err)
	assert.True(t, read.GetSuccess())
	assert.True(t, read.GetFound())
	assert.Equal(t, uint64(11), read.GetChunk().GetHash())
	assert.Equal(t, uint64(7), read.GetChunk().GetParentHash())
	assert.Equal(t, []byte("payload-11"), read.GetChunk().GetBuffer())
}

func TestReadMissingIsNotAnError(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Read(context.Background(), &kvstorepb.ReadRequest{
		ResourceName:  "acct",
		ContainerName: "kv",
		Location:      "absent-location",
	})
	require.NoError(t, err)
	assert.True(t, resp.GetSuccess())
	assert.False(t, resp.GetFound())
	assert.Nil(t, resp.GetChunk())
}
