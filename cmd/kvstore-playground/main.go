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

// The kvstore-playground binary exercises a running kvstore-service end to
// end: it writes a chain of synthetic blocks, looks the chain up, and reads
// every returned location back, printing per-stage latencies.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/llm-d/llm-d-kv-store-service/pkg/api/kvstorepb"
	"github.com/llm-d/llm-d-kv-store-service/pkg/client"
	"github.com/llm-d/llm-d-kv-store-service/pkg/client/tokenhash"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/blockcodec"
)

type playgroundOptions struct {
	target       string
	resourceName string
	container    string
	partitionKey string
	blocks       int
	blockBytes   int
	seed         int64
	streaming    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &playgroundOptions{}

	cmd := &cobra.Command{
		Use:           "kvstore-playground",
		Short:         "Write, look up and read back a synthetic block chain",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.target, "endpoint", "localhost:50051", "service address")
	flags.StringVar(&opts.resourceName, "resource", "", "resource name (required)")
	flags.StringVar(&opts.container, "container", "", "container name (required)")
	flags.StringVar(&opts.partitionKey, "partition-key", "playground", "partition key")
	flags.IntVar(&opts.blocks, "blocks", 4, "number of blocks in the chain")
	flags.IntVar(&opts.blockBytes, "block-bytes", 1<<20, "payload bytes per block")
	flags.Int64Var(&opts.seed, "seed", 1, "token generator seed")
	flags.BoolVar(&opts.streaming, "streaming", false, "read back over a StreamingRead stream")

	_ = cmd.MarkFlagRequired("resource")  //nolint:errcheck // flag exists
	_ = cmd.MarkFlagRequired("container") //nolint:errcheck // flag exists

	return cmd
}

func run(ctx context.Context, opts *playgroundOptions) error {
	kv, err := client.New(&client.Config{Target: opts.target})
	if err != nil {
		return err
	}
	defer kv.Close() //nolint:errcheck // process is exiting

	rng := rand.New(rand.NewSource(opts.seed)) //nolint:gosec // synthetic data

	tokens := make([]int64, opts.blocks*blockcodec.BlockSize)
	for i := range tokens {
		tokens[i] = int64(rng.Uint32())
	}

	chain, err := tokenhash.NewChain(nil)
	if err != nil {
		return err
	}
	hashes, err := chain.PrefixHashes(tokens)
	if err != nil {
		return err
	}

	completionID := fmt.Sprintf("playground-%d", opts.seed)

	// Write the chain, first block's parent is zero.
	var parent uint64
	for i := 0; i < opts.blocks; i++ {
		buffer := make([]byte, opts.blockBytes)
		rng.Read(buffer) //nolint:errcheck,gosec // never fails

		start := time.Now()
		_, err := kv.Write(ctx, &kvstorepb.WriteRequest{
			ResourceName:  opts.resourceName,
			ContainerName: opts.container,
			Chunk: &kvstorepb.PromptChunk{
				Hash:         hashes[i],
				ParentHash:   parent,
				PartitionKey: opts.partitionKey,
				CompletionId: completionID,
				Tokens:       tokens[i*blockcodec.BlockSize : (i+1)*blockcodec.BlockSize],
				Buffer:       buffer,
			},
		})
		if err != nil {
			return fmt.Errorf("write of block %d failed: %w", i, err)
		}
		fmt.Printf("write block %d: hash=%d parent=%d (%v)\n", i, hashes[i], parent, time.Since(start))
		parent = hashes[i]
	}

	start := time.Now()
	lookup, err := kv.Lookup(ctx, &kvstorepb.LookupRequest{
		ResourceName:      opts.resourceName,
		ContainerName:     opts.container,
		PartitionKey:      opts.partitionKey,
		CompletionId:      completionID,
		Tokens:            tokens,
		PrecomputedHashes: hashes,
	})
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	fmt.Printf("lookup: cached=%d lastHash=%d (%v, storage %dus)\n",
		lookup.GetCachedBlocks(), lookup.GetLastHash(), time.Since(start),
		lookup.GetServerMetrics().GetStorageLatencyUs())

	if opts.streaming {
		return readBackStreaming(ctx, kv, opts, lookup, completionID)
	}

	return readBackUnary(ctx, kv, opts, lookup, completionID)
}

func readBackUnary(ctx context.Context, kv *client.Client, opts *playgroundOptions, lookup *kvstorepb.LookupResponse, completionID string) error {
	for i, loc := range lookup.GetLocations() {
		start := time.Now()
		resp, err := kv.Read(ctx, &kvstorepb.ReadRequest{
			ResourceName:  opts.resourceName,
			ContainerName: opts.container,
			Location:      loc.GetLocation(),
			CompletionId:  completionID,
		})
		if err != nil {
			return fmt.Errorf("read of block %d failed: %w", i, err)
		}
		fmt.Printf("read block %d: found=%v bytes=%d (%v)\n",
			i, resp.GetFound(), len(resp.GetChunk().GetBuffer()), time.Since(start))
	}

	return nil
}

func readBackStreaming(ctx context.Context, kv *client.Client, opts *playgroundOptions, lookup *kvstorepb.LookupResponse, completionID string) error {
	stream, err := kv.StreamingRead(ctx)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}

	for _, loc := range lookup.GetLocations() {
		if err := stream.Send(&kvstorepb.ReadRequest{
			ResourceName:  opts.resourceName,
			ContainerName: opts.container,
			Location:      loc.GetLocation(),
			CompletionId:  completionID,
		}); err != nil {
			return fmt.Errorf("stream send failed: %w", err)
		}
	}
	if err := stream.CloseSend(); err != nil {
		return fmt.Errorf("stream close failed: %w", err)
	}

	for i := range lookup.GetLocations() {
		resp, err := stream.Recv()
		if err != nil {
			return fmt.Errorf("stream recv %d failed: %w", i, err)
		}
		fmt.Printf("streamed block %d: found=%v bytes=%d (storage %dus)\n",
			i, resp.GetFound(), len(resp.GetChunk().GetBuffer()),
			resp.GetServerMetrics().GetStorageLatencyUs())
	}

	return nil
}
