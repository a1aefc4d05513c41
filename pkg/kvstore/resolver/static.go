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

package resolver

import (
	"context"
	"fmt"

	"github.com/llm-d/llm-d-kv-store-service/pkg/config"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/engine"
)

// StaticConfig holds the configuration for the static resolver.
type StaticConfig struct {
	// URLScheme prefixes resolved account URLs.
	URLScheme string `json:"urlScheme"`
	// DomainSuffix is appended to the resource name to form the account URL.
	DomainSuffix string `json:"domainSuffix"`
	// EngineConfig configures the engines this resolver creates.
	EngineConfig *engine.Config `json:"engineConfig"`
}

// DefaultStaticConfig returns a default static resolver configuration.
func DefaultStaticConfig() *StaticConfig {
	return &StaticConfig{
		URLScheme:    "https",
		DomainSuffix: config.DefaultDomainSuffix,
	}
}

// StaticResolver resolves by treating the resource name as a storage account
// name: accountURL = scheme://resourceName + domainSuffix. Intended for
// tests and local development.
type StaticResolver struct {
	config  *StaticConfig
	factory StoreFactory
	cache   *engineCache
}

var _ Resolver = &StaticResolver{}

// NewStaticResolver creates a StaticResolver with the given store factory.
func NewStaticResolver(cfg *StaticConfig, factory StoreFactory) *StaticResolver {
	if cfg == nil {
		cfg = DefaultStaticConfig()
	}

	return &StaticResolver{
		config:  cfg,
		factory: factory,
		cache:   newEngineCache(),
	}
}

// ResolveAccountInfo resolves without creating an engine.
func (r *StaticResolver) ResolveAccountInfo(_ context.Context, resourceName, containerName string) (AccountInfo, error) {
	if resourceName == "" {
		return AccountInfo{}, fmt.Errorf("resource name cannot be empty")
	}
	if containerName == "" {
		return AccountInfo{}, fmt.Errorf("container name cannot be empty")
	}

	return AccountInfo{
		AccountURL:    r.config.URLScheme + "://" + resourceName + r.config.DomainSuffix,
		ContainerName: containerName,
	}, nil
}

// Resolve returns the engine for a resource/container pair.
func (r *StaticResolver) Resolve(ctx context.Context, resourceName, containerName string) (*engine.Engine, error) {
	info, err := r.ResolveAccountInfo(ctx, resourceName, containerName)
	if err != nil {
		return nil, err
	}

	return r.cache.getOrCreate(cacheKey(resourceName, containerName), func() (*engine.Engine, error) {
		return buildEngine(ctx, r.factory, r.config.EngineConfig, info.AccountURL, info.ContainerName)
	})
}

// Close releases every cached engine.
func (r *StaticResolver) Close() error {
	return r.cache.close(context.Background())
}
