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

// Package service is the gRPC front end: request validation, dispatch to the
// cache engine through the account resolver, latency stamping and metrics.
package service

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-kv-store-service/pkg/api/kvstorepb"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/engine"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/metrics"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/resolver"
	"github.com/llm-d/llm-d-kv-store-service/pkg/utils"
	"github.com/llm-d/llm-d-kv-store-service/pkg/utils/logging"
)

// Config holds the configuration for the KVStore service.
type Config struct {
	// StreamWindow bounds how many StreamingRead responses may be in
	// flight (computed but not yet written) per stream.
	StreamWindow int `json:"streamWindow"`
}

// DefaultConfig returns a default service configuration.
func DefaultConfig() *Config {
	return &Config{StreamWindow: 64}
}

// Service implements kvstorepb.KVStoreServiceServer on top of a Resolver.
type Service struct {
	kvstorepb.UnimplementedKVStoreServiceServer

	config   *Config
	resolver resolver.Resolver
}

var _ kvstorepb.KVStoreServiceServer = &Service{}

// NewService creates a Service over an account resolver.
func NewService(cfg *Config, accountResolver resolver.Resolver) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.StreamWindow <= 0 {
		cfg.StreamWindow = DefaultConfig().StreamWindow
	}

	return &Service{config: cfg, resolver: accountResolver}
}

// stamp fills a ServerMetrics from the reactor-entry time and the measured
// storage interval, and records the aggregate sample.
func stamp(method string, rpcStart time.Time, storage time.Duration, success bool) *kvstorepb.ServerMetrics {
	total := time.Since(rpcStart)
	metrics.ObserveRPC(method, storage, total, success)

	return &kvstorepb.ServerMetrics{
		StorageLatencyUs: storage.Microseconds(),
		TotalLatencyUs:   total.Microseconds(),
		OverheadUs:       total.Microseconds() - storage.Microseconds(),
	}
}

// Lookup probes the request's token blocks and returns the longest
// chain-valid cached prefix.
func (s *Service) Lookup(ctx context.Context, req *kvstorepb.LookupRequest) (*kvstorepb.LookupResponse, error) {
	rpcStart := time.Now()

	switch {
	case req.GetResourceName() == "":
		return nil, status.Error(codes.InvalidArgument, "resource_name is required")
	case req.GetContainerName() == "":
		return nil, status.Error(codes.InvalidArgument, "container_name is required")
	case len(req.GetTokens()) == 0:
		return nil, status.Error(codes.InvalidArgument, "tokens list cannot be empty")
	}

	eng, err := s.resolver.Resolve(ctx, req.GetResourceName(), req.GetContainerName())
	if err != nil {
		stamp("Lookup", rpcStart, 0, false)
		return nil, status.Errorf(codes.Internal, "failed to resolve storage for account: %v", err)
	}

	storageStart := time.Now()
	result, err := eng.Lookup(ctx, req.GetPartitionKey(), req.GetCompletionId(), req.GetTokens(), req.GetPrecomputedHashes())
	storage := time.Since(storageStart)
	if err != nil {
		stamp("Lookup", rpcStart, storage, false)
		return nil, status.Error(codes.Internal, err.Error())
	}

	klog.FromContext(ctx).V(logging.DEBUG).WithName("service.Lookup").Info("lookup served",
		"completionID", req.GetCompletionId(), "cachedBlocks", result.CachedBlocks)

	return &kvstorepb.LookupResponse{
		Success:      true,
		CachedBlocks: int32(result.CachedBlocks), //nolint:gosec // bounded by request size
		LastHash:     result.LastHash,
		Locations: utils.SliceMap(result.Locations, func(loc engine.BlockLocation) *kvstorepb.BlockLocation {
			return &kvstorepb.BlockLocation{Hash: loc.Hash, Location: loc.Location}
		}),
		ServerMetrics: stamp("Lookup", rpcStart, storage, true),
	}, nil
}

// Read downloads the block stored at the request's location.
func (s *Service) Read(ctx context.Context, req *kvstorepb.ReadRequest) (*kvstorepb.ReadResponse, error) {
	rpcStart := time.Now()

	switch {
	case req.GetResourceName() == "":
		return nil, status.Error(codes.InvalidArgument, "resource_name is required")
	case req.GetContainerName() == "":
		return nil, status.Error(codes.InvalidArgument, "container_name is required")
	case req.GetLocation() == "":
		return nil, status.Error(codes.InvalidArgument, "location is required")
	}

	eng, err := s.resolver.Resolve(ctx, req.GetResourceName(), req.GetContainerName())
	if err != nil {
		stamp("Read", rpcStart, 0, false)
		return nil, status.Errorf(codes.Internal, "failed to resolve storage for account: %v", err)
	}

	storageStart := time.Now()
	found, block, err := eng.Read(ctx, req.GetLocation(), req.GetCompletionId())
	storage := time.Since(storageStart)
	if err != nil {
		stamp("Read", rpcStart, storage, false)
		return nil, status.Error(codes.Internal, err.Error())
	}

	resp := &kvstorepb.ReadResponse{Success: true, Found: found}
	if found {
		resp.Chunk = &kvstorepb.PromptChunk{
			Hash:         block.Hash,
			PartitionKey: block.PartitionKey,
			ParentHash:   block.ParentHash,
			Buffer:       block.Buffer,
			CompletionId: block.CompletionID,
		}
	}
	resp.ServerMetrics = stamp("Read", rpcStart, storage, true)

	return resp, nil
}

// Write stores the request's chunk, resolving version conflicts server-side.
func (s *Service) Write(ctx context.Context, req *kvstorepb.WriteRequest) (*kvstorepb.WriteResponse, error) {
	rpcStart := time.Now()

	switch {
	case req.GetResourceName() == "":
		return nil, status.Error(codes.InvalidArgument, "resource_name is required")
	case req.GetContainerName() == "":
		return nil, status.Error(codes.InvalidArgument, "container_name is required")
	case req.GetChunk() == nil:
		return nil, status.Error(codes.InvalidArgument, "chunk is required")
	case len(req.GetChunk().GetTokens()) == 0:
		return nil, status.Error(codes.InvalidArgument, "chunk tokens cannot be empty")
	}

	eng, err := s.resolver.Resolve(ctx, req.GetResourceName(), req.GetContainerName())
	if err != nil {
		stamp("Write", rpcStart, 0, false)
		return nil, status.Errorf(codes.Internal, "failed to resolve storage for account: %v", err)
	}

	chunk := req.GetChunk()
	block := &engine.Block{
		Hash:         chunk.GetHash(),
		ParentHash:   chunk.GetParentHash(),
		PartitionKey: chunk.GetPartitionKey(),
		CompletionID: chunk.GetCompletionId(),
		Tokens:       chunk.GetTokens(),
		Buffer:       chunk.GetBuffer(),
	}

	storageStart := time.Now()
	err = eng.Write(ctx, block)
	storage := time.Since(storageStart)
	if err != nil {
		stamp("Write", rpcStart, storage, false)
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &kvstorepb.WriteResponse{
		Success:       true,
		ServerMetrics: stamp("Write", rpcStart, storage, true),
	}, nil
}
