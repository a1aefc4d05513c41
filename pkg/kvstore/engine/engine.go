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

// Package engine implements the hash-chain cache protocol over a blob store:
// parallel prefix probing, chain validation with sibling tie-breaking, and
// multi-version writes with optimistic-concurrency metadata updates.
package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/blobstore"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/blockcodec"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/metrics"
	"github.com/llm-d/llm-d-kv-store-service/pkg/utils/logging"
)

// Blob metadata keys. Blob services treat metadata case-insensitively; we
// write and read lowercase throughout.
const (
	metaHash               = "hash"
	metaParentHash         = "parenthash"
	metaLocation           = "location"
	metaAdditionalVersions = "additionalversions"
	metaPartitionKey       = "partitionkey"
)

const (
	// maxSiblings caps the additionalversions list; overflow evicts FIFO.
	maxSiblings = 60
	// maxPatchAttempts bounds the optimistic-concurrency metadata update.
	maxPatchAttempts = 5
)

// Config holds the configuration for a cache engine.
type Config struct {
	// ReadCacheConfig enables a local read-through cache of downloaded
	// blocks. Nil disables caching.
	ReadCacheConfig *ReadCacheConfig `json:"readCacheConfig"`
}

// ReadCacheConfig sizes the read-through block cache.
type ReadCacheConfig struct {
	// MaxBytes bounds the total buffer bytes held in memory.
	MaxBytes int64 `json:"maxBytes"`
}

// DefaultConfig returns a default engine configuration. The read cache is
// off by default: inference workers read each location once per completion.
func DefaultConfig() *Config {
	return &Config{}
}

// Engine binds one (accountURL, containerName) pair through a Store and
// implements Lookup, Read and Write. It serializes nothing; callers may
// issue concurrent operations freely.
type Engine struct {
	store     blobstore.Store
	readCache *ristretto.Cache[string, *Block]
}

// NewEngine creates an engine over an initialized blob store.
func NewEngine(store blobstore.Store, cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	e := &Engine{store: store}

	if cfg.ReadCacheConfig != nil && cfg.ReadCacheConfig.MaxBytes > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, *Block]{
			NumCounters: 1e5,
			MaxCost:     cfg.ReadCacheConfig.MaxBytes,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create read cache: %w", err)
		}
		e.readCache = cache
	}

	return e, nil
}

// Close releases the engine's storage adapter and cache.
func (e *Engine) Close() error {
	if e.readCache != nil {
		e.readCache.Close()
	}

	return e.store.Close()
}

// probeResult carries one block's GetProperties outcome into the chain walk.
type probeResult struct {
	found              bool
	hash               uint64
	parentHash         uint64
	additionalVersions string
}

// Lookup returns the longest prefix of full blocks already present in
// storage whose stored parentHash links form an unbroken chain from zero.
// For each matched block the result names the specific stored version that
// participates in the chain.
//
// The probe is parallel; validation is sequential and truncates on the first
// gap. Probe failures of any kind count as not-found for that block. The
// client's precomputed hashes never gate acceptance; the stored chain links
// are authoritative. Among versions that all continue the chain, a version
// whose hash equals the client's declared hash is preferred.
func (e *Engine) Lookup(ctx context.Context, partitionKey, completionID string, tokens []int64, precomputedHashes []uint64) (*LookupResult, error) {
	logger := klog.FromContext(ctx).V(logging.TRACE).WithName("engine.Lookup").
		WithValues("completionID", completionID, "partitionKey", partitionKey)

	numBlocks := len(tokens) / blockcodec.BlockSize
	if numBlocks == 0 {
		return &LookupResult{}, nil
	}

	names := make([]string, numBlocks)
	for i := range names {
		names[i] = blockcodec.EncodeTokens(tokens[i*blockcodec.BlockSize : (i+1)*blockcodec.BlockSize])
	}

	// Probe every block concurrently; the walk below consumes the results
	// in order.
	probes := make([]probeResult, numBlocks)
	group, groupCtx := errgroup.WithContext(ctx)
	for i := range names {
		group.Go(func() error {
			props, err := e.store.GetProperties(groupCtx, names[i])
			if err != nil {
				return nil //nolint:nilerr // absence truncates the chain, it is not a failure
			}

			probes[i] = probeResult{found: true}
			if v, ok := props.Metadata.Get(metaHash); ok {
				probes[i].hash, _ = strconv.ParseUint(v, 10, 64)
			}
			if v, ok := props.Metadata.Get(metaParentHash); ok {
				probes[i].parentHash, _ = strconv.ParseUint(v, 10, 64)
			}
			if v, ok := props.Metadata.Get(metaAdditionalVersions); ok {
				probes[i].additionalVersions = v
			}

			return nil
		})
	}
	_ = group.Wait() //nolint:errcheck // goroutines never return errors

	result := &LookupResult{}
	var expectedParent uint64

	for i := 0; i < numBlocks; i++ {
		probe := probes[i]
		if !probe.found {
			logger.Info("block not found, truncating chain", "block", i)
			break
		}

		var expectedHash uint64
		if i < len(precomputedHashes) {
			expectedHash = precomputedHashes[i]
		}

		canonicalOK := i == 0 || probe.parentHash == expectedParent

		selectedHash := probe.hash
		selectedLocation := names[i]
		matched := canonicalOK

		if probe.additionalVersions == "" {
			if !canonicalOK {
				logger.Info("parent chain mismatch, truncating",
					"block", i, "storedParent", probe.parentHash, "expectedParent", expectedParent)
				break
			}
		} else {
			siblings, err := blockcodec.ParseSiblings(probe.additionalVersions)
			if err != nil {
				logger.Info("unparseable sibling list, truncating", "block", i, "err", err)
				break
			}

			// The client's declared hash never gates acceptance, but among
			// versions that continue the chain it selects which one the
			// chain follows. Without it, canonical wins ties and the first
			// matching sibling breaks the rest.
			if expectedHash != 0 && !(canonicalOK && probe.hash == expectedHash) {
				for _, sibling := range siblings {
					if sibling.ParentHash == expectedParent && sibling.Hash == expectedHash {
						selectedHash = sibling.Hash
						selectedLocation = sibling.Location
						matched = true
						break
					}
				}
			}

			if !matched {
				for _, sibling := range siblings {
					if sibling.ParentHash == expectedParent {
						selectedHash = sibling.Hash
						selectedLocation = sibling.Location
						matched = true
						break
					}
				}
			}

			if !matched {
				logger.Info("no version continues the chain, truncating",
					"block", i, "expectedParent", expectedParent)
				break
			}
		}

		logger.Info("block matched", "block", i,
			"hash", selectedHash, "clientHash", expectedHash, "location", selectedLocation)

		result.Locations = append(result.Locations, BlockLocation{Hash: selectedHash, Location: selectedLocation})
		result.CachedBlocks++
		result.LastHash = selectedHash
		expectedParent = selectedHash
	}

	metrics.LookupBlocksRequested.Add(float64(numBlocks))
	metrics.LookupBlocksMatched.Add(float64(result.CachedBlocks))

	return result, nil
}

// Read downloads the blob named by location and rebuilds the block from its
// body and metadata. Tokens are not reconstructed; the caller holds them.
// A missing blob returns (false, nil, nil).
func (e *Engine) Read(ctx context.Context, location, completionID string) (bool, *Block, error) {
	if e.readCache != nil {
		if block, ok := e.readCache.Get(location); ok {
			return true, block, nil
		}
	}

	body, metadata, err := e.store.Download(ctx, location)
	if err != nil {
		if blobstore.IsNotFound(err) {
			return false, nil, nil
		}
		return false, nil, fmt.Errorf("failed to read block at %q: %w", location, err)
	}

	block := &Block{CompletionID: completionID, Buffer: body}
	if v, ok := metadata.Get(metaHash); ok {
		block.Hash, _ = strconv.ParseUint(v, 10, 64)
	}
	if v, ok := metadata.Get(metaParentHash); ok {
		block.ParentHash, _ = strconv.ParseUint(v, 10, 64)
	}
	if v, ok := metadata.Get(metaPartitionKey); ok {
		block.PartitionKey = v
	}

	if e.readCache != nil {
		e.readCache.Set(location, block, int64(len(block.Buffer)))
	}

	return true, block, nil
}

// Write establishes or extends the version set at the block's canonical
// name. Many writers may race on the same name with no coordination beyond
// the store's conditional primitives:
//
//  1. Conditional upload to the canonical name ("no blob exists").
//  2. On conflict, probe the canonical metadata; identical (hash, parent)
//     pairs are duplicates and complete as no-ops.
//  3. Otherwise upload the body under a fresh GUID and append it to the
//     canonical additionalversions list under an ETag guard, evicting FIFO
//     beyond the sibling cap. A stale ETag re-probes; five attempts total.
func (e *Engine) Write(ctx context.Context, block *Block) error {
	logger := klog.FromContext(ctx).V(logging.TRACE).WithName("engine.Write").
		WithValues("completionID", block.CompletionID, "hash", block.Hash, "parentHash", block.ParentHash)

	if len(block.Tokens) == 0 {
		return fmt.Errorf("write requires the block's tokens")
	}

	name := blockcodec.EncodeTokens(block.Tokens)

	metadata := blobstore.Metadata{}
	metadata.Set(metaHash, strconv.FormatUint(block.Hash, 10))
	metadata.Set(metaParentHash, strconv.FormatUint(block.ParentHash, 10))
	metadata.Set(metaLocation, name)

	_, err := e.store.Upload(ctx, name, block.Buffer, metadata, true)
	if err == nil {
		logger.Info("first version uploaded", "name", name)
		return nil
	}
	if !blobstore.IsConflict(err) {
		return fmt.Errorf("failed to upload block %q: %w", name, err)
	}

	// The canonical blob exists. Probe it and reconcile.
	props, err := e.store.GetProperties(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to probe existing block %q: %w", name, err)
	}

	if isDuplicate(props.Metadata, block) {
		logger.Info("identical version already stored", "name", name)
		return nil
	}

	// New (hash, parent) pair: store the body under a sibling GUID, then
	// link it from the canonical metadata.
	guid := uuid.NewString()
	siblingMetadata := blobstore.Metadata{}
	siblingMetadata.Set(metaHash, strconv.FormatUint(block.Hash, 10))
	siblingMetadata.Set(metaParentHash, strconv.FormatUint(block.ParentHash, 10))
	siblingMetadata.Set(metaLocation, guid)

	if _, err := e.store.Upload(ctx, guid, block.Buffer, siblingMetadata, false); err != nil {
		return fmt.Errorf("failed to upload sibling blob %q: %w", guid, err)
	}

	logger.Info("sibling blob uploaded", "name", name, "sibling", guid)

	return e.patchSiblingList(ctx, logger, name, guid, block, props)
}

// patchSiblingList appends the new sibling to the canonical blob's version
// list under optimistic concurrency, evicting from the front past the cap.
func (e *Engine) patchSiblingList(ctx context.Context, logger klog.Logger, name, guid string, block *Block, props blobstore.Properties) error {
	for attempt := 1; attempt <= maxPatchAttempts; attempt++ {
		if attempt > 1 {
			// Lost the ETag race; refetch and re-check the duplicate
			// guards against the fresh metadata.
			refreshed, err := e.store.GetProperties(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to re-probe block %q: %w", name, err)
			}
			props = refreshed

			if isDuplicate(props.Metadata, block) {
				// Another writer landed the same version; the sibling
				// blob we uploaded is left as a tolerated orphan.
				logger.Info("identical version landed concurrently", "name", name)
				return nil
			}
		}

		versionsStr, _ := props.Metadata.Get(metaAdditionalVersions)
		siblings, err := blockcodec.ParseSiblings(versionsStr)
		if err != nil {
			return fmt.Errorf("failed to parse sibling list of %q: %w", name, err)
		}

		siblings = append(siblings, blockcodec.Sibling{
			Hash:       block.Hash,
			ParentHash: block.ParentHash,
			Location:   guid,
		})

		// FIFO eviction past the cap: pop from the front, best-effort
		// delete of the evicted sibling blob.
		for len(siblings) > maxSiblings {
			evicted := siblings[0]
			siblings = siblings[1:]

			if err := e.store.Delete(ctx, evicted.Location); err != nil && !blobstore.IsNotFound(err) {
				logger.Info("failed to delete evicted sibling blob",
					"name", name, "sibling", evicted.Location, "err", err)
			}
			metrics.SiblingEvictions.Inc()
			logger.Info("evicted oldest sibling", "name", name, "sibling", evicted.Location)
		}

		merged := props.Metadata.Clone()
		merged.Set(metaAdditionalVersions, blockcodec.SerializeSiblings(siblings))

		_, err = e.store.SetMetadata(ctx, name, merged, props.ETag)
		if err == nil {
			logger.Info("sibling list updated", "name", name, "siblings", len(siblings), "attempt", attempt)
			return nil
		}
		if !blobstore.IsPreconditionFailed(err) {
			return fmt.Errorf("failed to update sibling list of %q: %w", name, err)
		}

		logger.Info("etag race on sibling list, retrying", "name", name, "attempt", attempt)
	}

	return fmt.Errorf("failed to update sibling list of %q after %d attempts", name, maxPatchAttempts)
}

// isDuplicate reports whether the canonical metadata already records this
// block's (hash, parentHash) identity, either as the canonical version or as
// one of the listed siblings.
func isDuplicate(metadata blobstore.Metadata, block *Block) bool {
	hashStr := strconv.FormatUint(block.Hash, 10)
	parentStr := strconv.FormatUint(block.ParentHash, 10)

	storedHash, okHash := metadata.Get(metaHash)
	storedParent, okParent := metadata.Get(metaParentHash)
	if okHash && okParent && storedHash == hashStr && storedParent == parentStr {
		return true
	}

	versionsStr, _ := metadata.Get(metaAdditionalVersions)
	siblings, err := blockcodec.ParseSiblings(versionsStr)
	if err != nil {
		return false
	}

	for _, sibling := range siblings {
		if sibling.Hash == block.Hash && sibling.ParentHash == block.ParentHash {
			return true
		}
	}

	return false
}
