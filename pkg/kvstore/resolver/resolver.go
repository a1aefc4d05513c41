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

// Package resolver maps tenant-facing resource names to ready cache engines.
// Two strategies share one interface: a static resolver that derives the
// account URL from the resource name, and a database resolver that fetches a
// per-tenant region map from a configuration store.
package resolver

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/blobstore"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/engine"
)

// AccountInfo is the outcome of resolving a resource name, for diagnostics.
type AccountInfo struct {
	AccountURL    string
	ContainerName string
}

// Resolver turns (resourceName, containerName) into a shared Engine.
// Engines are created lazily, cached for the resolver's lifetime, and
// released on Close.
type Resolver interface {
	// Resolve returns the engine for a resource/container pair, creating
	// and caching it on first use.
	Resolve(ctx context.Context, resourceName, containerName string) (*engine.Engine, error)
	// ResolveAccountInfo resolves without creating an engine.
	ResolveAccountInfo(ctx context.Context, resourceName, containerName string) (AccountInfo, error)
	// Close releases every cached engine.
	Close() error
}

// StoreFactory builds the blob store an engine binds to. Tests substitute
// in-memory stores; production uses NewAzureStoreFactory.
type StoreFactory func(ctx context.Context, accountURL, containerName string) (blobstore.Store, error)

// NewAzureStoreFactory returns a StoreFactory producing Azure-backed stores
// with the given adapter options.
func NewAzureStoreFactory(enableSDKLogging, enableMultiNIC bool) StoreFactory {
	return func(ctx context.Context, accountURL, containerName string) (blobstore.Store, error) {
		return blobstore.NewAzureStore(ctx, &blobstore.AzureConfig{
			AccountURL:       accountURL,
			ContainerName:    containerName,
			EnableSDKLogging: enableSDKLogging,
			EnableMultiNIC:   enableMultiNIC,
		})
	}
}

// engineCache shares the read-mostly engine map between resolver variants.
// Creation double-checks under the write lock so concurrent resolutions of
// the same key build a single engine.
type engineCache struct {
	mu      sync.RWMutex
	engines map[string]*engine.Engine
}

func newEngineCache() *engineCache {
	return &engineCache{engines: make(map[string]*engine.Engine)}
}

func cacheKey(resourceName, containerName string) string {
	return resourceName + "|" + containerName
}

// getOrCreate returns the cached engine for key or builds one with create.
func (c *engineCache) getOrCreate(key string, create func() (*engine.Engine, error)) (*engine.Engine, error) {
	c.mu.RLock()
	eng, ok := c.engines[key]
	c.mu.RUnlock()
	if ok {
		return eng, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if eng, ok := c.engines[key]; ok {
		return eng, nil
	}

	eng, err := create()
	if err != nil {
		return nil, err
	}
	c.engines[key] = eng

	return eng, nil
}

func (c *engineCache) close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := klog.FromContext(ctx).WithName("resolver")
	var firstErr error
	for key, eng := range c.engines {
		if err := eng.Close(); err != nil {
			logger.Error(err, "failed to close engine", "key", key)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	c.engines = make(map[string]*engine.Engine)

	return firstErr
}

// buildEngine creates a store through the factory and wraps it in an engine.
func buildEngine(ctx context.Context, factory StoreFactory, engineCfg *engine.Config, accountURL, containerName string) (*engine.Engine, error) {
	store, err := factory(ctx, accountURL, containerName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store for %s/%s: %w", accountURL, containerName, err)
	}

	eng, err := engine.NewEngine(store, engineCfg)
	if err != nil {
		store.Close() //nolint:errcheck,gosec // best effort on the construction error path
		return nil, fmt.Errorf("failed to create engine for %s/%s: %w", accountURL, containerName, err)
	}

	klog.FromContext(ctx).WithName("resolver").Info("created engine",
		"accountURL", accountURL, "container", containerName)

	return eng, nil
}
