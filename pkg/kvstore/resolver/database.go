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
	"encoding/json"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-kv-store-service/pkg/config"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/blobstore"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/engine"
	"github.com/llm-d/llm-d-kv-store-service/pkg/utils/logging"
)

// defaultAccountConfigCacheSize bounds the number of cached tenant configs.
const defaultAccountConfigCacheSize = 4096

// PromptAccountConfig is the per-tenant configuration object stored at
// "{resourceName}.json" in the configuration container.
type PromptAccountConfig struct {
	PromptAccountID   string              `json:"promptAccountId"`
	PromptAccountName string              `json:"promptAccountName"`
	Location          string              `json:"location"`
	Kind              string              `json:"kind"`
	RegionStorageMap  map[string][]string `json:"regionStorageMap"`
}

// DatabaseConfig holds the configuration for the database resolver.
type DatabaseConfig struct {
	// ServiceConfig supplies the current region and configuration store.
	ServiceConfig *config.ServiceConfig `json:"serviceConfig"`
	// URLScheme prefixes resolved account URLs.
	URLScheme string `json:"urlScheme"`
	// AccountConfigCacheSize bounds the tenant-config cache.
	AccountConfigCacheSize int `json:"accountConfigCacheSize"`
	// EngineConfig configures the engines this resolver creates.
	EngineConfig *engine.Config `json:"engineConfig"`
}

// DatabaseResolver resolves tenant prompt-account names through per-tenant
// configuration objects in a meta container, routing each tenant to the
// storage account mapped to the service's current region.
type DatabaseResolver struct {
	config  *DatabaseConfig
	factory StoreFactory

	// configStore reads the configuration container; built lazily so the
	// resolver can be constructed before credentials are available.
	configStoreOnce sync.Once
	configStore     blobstore.Store
	configStoreErr  error

	accountConfigs *lru.Cache[string, *PromptAccountConfig]
	cache          *engineCache
}

var _ Resolver = &DatabaseResolver{}

// NewDatabaseResolver creates a DatabaseResolver. The factory builds both
// the configuration-store client and the tenant data stores.
func NewDatabaseResolver(cfg *DatabaseConfig, factory StoreFactory) (*DatabaseResolver, error) {
	if cfg == nil || cfg.ServiceConfig == nil {
		return nil, fmt.Errorf("database resolver requires a service configuration")
	}
	if err := cfg.ServiceConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service configuration: %w", err)
	}
	if cfg.URLScheme == "" {
		cfg.URLScheme = "https"
	}

	size := cfg.AccountConfigCacheSize
	if size <= 0 {
		size = defaultAccountConfigCacheSize
	}

	accountConfigs, err := lru.New[string, *PromptAccountConfig](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create account config cache: %w", err)
	}

	return &DatabaseResolver{
		config:         cfg,
		factory:        factory,
		accountConfigs: accountConfigs,
		cache:          newEngineCache(),
	}, nil
}

// fetchAccountConfig loads and caches the tenant's configuration object. At
// most one fetch happens per tenant while the entry stays cached.
func (r *DatabaseResolver) fetchAccountConfig(ctx context.Context, resourceName string) (*PromptAccountConfig, error) {
	if cfg, ok := r.accountConfigs.Get(resourceName); ok {
		return cfg, nil
	}

	store, err := r.getConfigStore(ctx)
	if err != nil {
		return nil, err
	}

	blobName := resourceName + ".json"
	body, _, err := store.Download(ctx, blobName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account config for %q: %w", resourceName, err)
	}

	cfg := &PromptAccountConfig{}
	if err := json.Unmarshal(body, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse account config for %q: %w", resourceName, err)
	}
	if len(cfg.RegionStorageMap) == 0 {
		return nil, fmt.Errorf("account config for %q has an empty regionStorageMap", resourceName)
	}

	klog.FromContext(ctx).V(logging.DEBUG).WithName("resolver").Info("fetched account config",
		"resource", resourceName, "account", cfg.PromptAccountName, "regions", len(cfg.RegionStorageMap))

	r.accountConfigs.Add(resourceName, cfg)

	return cfg, nil
}

// storageAccountForCurrentRegion picks the first storage account mapped to
// the service's region.
func (r *DatabaseResolver) storageAccountForCurrentRegion(cfg *PromptAccountConfig) (string, error) {
	region := r.config.ServiceConfig.CurrentLocation

	accounts, ok := cfg.RegionStorageMap[region]
	if !ok {
		return "", fmt.Errorf("no storage account mapped to region %q", region)
	}
	if len(accounts) == 0 {
		return "", fmt.Errorf("empty storage account list for region %q", region)
	}

	return accounts[0], nil
}

// ResolveAccountInfo resolves without creating an engine.
func (r *DatabaseResolver) ResolveAccountInfo(ctx context.Context, resourceName, containerName string) (AccountInfo, error) {
	if resourceName == "" {
		return AccountInfo{}, fmt.Errorf("resource name cannot be empty")
	}
	if containerName == "" {
		return AccountInfo{}, fmt.Errorf("container name cannot be empty")
	}

	accountConfig, err := r.fetchAccountConfig(ctx, resourceName)
	if err != nil {
		return AccountInfo{}, err
	}

	storageAccount, err := r.storageAccountForCurrentRegion(accountConfig)
	if err != nil {
		return AccountInfo{}, err
	}

	return AccountInfo{
		AccountURL:    r.config.URLScheme + "://" + storageAccount + r.config.ServiceConfig.DomainSuffix,
		ContainerName: containerName,
	}, nil
}

// Resolve returns the engine for a resource/container pair. The cache key is
// the tenant-facing name, not the resolved account, so re-resolution stays
// off the hot path entirely.
func (r *DatabaseResolver) Resolve(ctx context.Context, resourceName, containerName string) (*engine.Engine, error) {
	if resourceName == "" || containerName == "" {
		return nil, fmt.Errorf("resource name and container name are required")
	}

	return r.cache.getOrCreate(cacheKey(resourceName, containerName), func() (*engine.Engine, error) {
		info, err := r.ResolveAccountInfo(ctx, resourceName, containerName)
		if err != nil {
			return nil, err
		}

		return buildEngine(ctx, r.factory, r.config.EngineConfig, info.AccountURL, info.ContainerName)
	})
}

// Close releases every cached engine and the configuration-store client.
func (r *DatabaseResolver) Close() error {
	if r.configStore != nil {
		r.configStore.Close() //nolint:errcheck,gosec // best effort
	}

	return r.cache.close(context.Background())
}

// getConfigStore lazily builds the configuration-store client.
func (r *DatabaseResolver) getConfigStore(ctx context.Context) (blobstore.Store, error) {
	r.configStoreOnce.Do(func() {
		svc := r.config.ServiceConfig
		url := r.config.URLScheme + "://" + svc.ConfigurationStore + svc.DomainSuffix

		store, err := r.factory(ctx, url, svc.ConfigurationContainer)
		if err != nil {
			r.configStoreErr = fmt.Errorf("failed to initialize configuration store client: %w", err)
			return
		}
		r.configStore = store
	})

	if r.configStoreErr != nil {
		return nil, r.configStoreErr
	}

	return r.configStore, nil
}
