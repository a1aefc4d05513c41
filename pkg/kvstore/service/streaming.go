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

package service

import (
	"errors"
	"io"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-kv-store-service/pkg/api/kvstorepb"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/metrics"
	"github.com/llm-d/llm-d-kv-store-service/pkg/utils/logging"
)

// StreamingRead pipelines reads: each incoming request is served by its own
// worker goroutine while the next request is already being read, and a
// single writer emits responses in request order.
//
// Ordering is carried by a FIFO of single-slot channels: the reader enqueues
// one slot per request before spawning its worker, the writer blocks on the
// head slot. Per-item validation failures become success=false responses in
// their slot so the stream survives them; only transport failures abort the
// stream. Teardown waits for every worker through the WaitGroup, so no
// goroutine outlives the handler.
func (s *Service) StreamingRead(stream kvstorepb.KVStoreService_StreamingReadServer) error {
	streamStart := time.Now()
	ctx := stream.Context()
	logger := klog.FromContext(ctx).V(logging.DEBUG).WithName("service.StreamingRead")

	slots := make(chan chan *kvstorepb.ReadResponse, s.config.StreamWindow)

	var workers sync.WaitGroup
	defer workers.Wait()

	// Writer: drain slots in order. One Send is outstanding at a time.
	writeErr := make(chan error, 1)
	go func() {
		for slot := range slots {
			resp := <-slot
			if err := stream.Send(resp); err != nil {
				writeErr <- err
				// Drain remaining slots so workers never block on a
				// slot nobody reads.
				for slot := range slots {
					<-slot
				}
				return
			}
		}
		writeErr <- nil
	}()

	var recvErr error
	items := 0
	for {
		req, err := stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				recvErr = err
			}
			break
		}

		items++
		slot := make(chan *kvstorepb.ReadResponse, 1)
		select {
		case slots <- slot:
		case <-ctx.Done():
			recvErr = ctx.Err()
		}
		if recvErr != nil {
			break
		}

		if msg, ok := validateStreamItem(req); !ok {
			slot <- &kvstorepb.ReadResponse{Success: false, Found: false, Error: msg}
			continue
		}

		workers.Add(1)
		go func(req *kvstorepb.ReadRequest) {
			defer workers.Done()
			slot <- s.serveStreamItem(stream, req)
		}(req)
	}

	close(slots)
	workers.Wait()

	if err := <-writeErr; err != nil {
		logger.Info("stream write failed", "err", err)
		return status.Error(codes.Internal, "write failed")
	}

	metrics.ObserveRPC("StreamingRead", 0, time.Since(streamStart), recvErr == nil)
	logger.Info("stream completed", "items", items, "durationUs", time.Since(streamStart).Microseconds())

	if recvErr != nil && !errors.Is(recvErr, io.EOF) {
		return status.FromContextError(recvErr).Err()
	}

	return nil
}

// validateStreamItem checks the per-item required fields.
func validateStreamItem(req *kvstorepb.ReadRequest) (string, bool) {
	if req.GetResourceName() == "" || req.GetContainerName() == "" || req.GetLocation() == "" {
		return "invalid request: missing required fields", false
	}

	return "", true
}

// serveStreamItem performs one read and shapes its response. Failures stay
// per-item: the response reports them and the stream moves on.
func (s *Service) serveStreamItem(stream kvstorepb.KVStoreService_StreamingReadServer, req *kvstorepb.ReadRequest) *kvstorepb.ReadResponse {
	ctx := stream.Context()

	eng, err := s.resolver.Resolve(ctx, req.GetResourceName(), req.GetContainerName())
	if err != nil {
		return &kvstorepb.ReadResponse{Success: false, Found: false, Error: "failed to resolve storage for account"}
	}

	storageStart := time.Now()
	found, block, err := eng.Read(ctx, req.GetLocation(), req.GetCompletionId())
	storage := time.Since(storageStart)
	if err != nil {
		return &kvstorepb.ReadResponse{Success: false, Found: false, Error: err.Error()}
	}

	resp := &kvstorepb.ReadResponse{
		Success: true,
		Found:   found,
		ServerMetrics: &kvstorepb.ServerMetrics{
			StorageLatencyUs: storage.Microseconds(),
			TotalLatencyUs:   storage.Microseconds(),
		},
	}
	if found {
		resp.Chunk = &kvstorepb.PromptChunk{
			Hash:         block.Hash,
			PartitionKey: block.PartitionKey,
			ParentHash:   block.ParentHash,
			Buffer:       block.Buffer,
			CompletionId: block.CompletionID,
		}
	}

	return resp
}
