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

package resolver_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/llm-d-kv-store-service/pkg/config"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/blobstore"
	"github.com/llm-d/llm-d-kv-store-service/pkg/kvstore/resolver"
)

// countingStore wraps a MemoryStore and counts Download calls.
type countingStore struct {
	*blobstore.MemoryStore
	downloads atomic.Int64
}

func (s *countingStore) Download(ctx context.Context, name string) ([]byte, blobstore.Metadata, error) {
	s.downloads.Add(1)
	return s.MemoryStore.Download(ctx, name)
}

func memoryFactory() (resolver.StoreFactory, map[string]*blobstore.MemoryStore) {
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

	return factory, stores
}

func TestStaticResolverBuildsURL(t *testing.T) {
	factory, _ := memoryFactory()
	r := resolver.NewStaticResolver(nil, factory)
	defer r.Close() //nolint:errcheck // test cleanup

	info, err := r.ResolveAccountInfo(context.Background(), "myaccount", "kv")
	require.NoError(t, err)
	assert.Equal(t, "https://myaccount.blob.core.windows.net", info.AccountURL)
	assert.Equal(t, "kv", info.ContainerName)
}

func TestStaticResolverRejectsEmptyInputs(t *testing.T) {
	factory, _ := memoryFactory()
	r := resolver.NewStaticResolver(nil, factory)
	defer r.Close() //nolint:errcheck // test cleanup

	_, err := r.Resolve(context.Background(), "", "kv")
	require.Error(t, err)

	_, err = r.Resolve(context.Background(), "myaccount", "")
	require.Error(t, err)
}

func TestStaticResolverCachesEngines(t *testing.T) {
	factory, _ := memoryFactory()
	r := resolver.NewStaticResolver(nil, factory)
	defer r.Close() //nolint:errcheck // test cleanup

	ctx := context.Background()
	first, err := r.Resolve(ctx, "acct", "kv")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, "acct", "kv")
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := r.Resolve(ctx, "acct", "kv2")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func testServiceConfig() *config.ServiceConfig {
	return &config.ServiceConfig{
		CurrentLocation:        "eastus",
		ConfigurationStore:     "meta",
		ConfigurationContainer: "tenants",
		DomainSuffix:           config.DefaultDomainSuffix,
	}
}

// newDatabaseResolver wires a DatabaseResolver whose configuration store is
// a counting in-memory store preloaded with tenant configs.
func newDatabaseResolver(t *testing.T, tenantJSON map[string]string) (*resolver.DatabaseResolver, *countingStore) {
	t.Helper()

	configStore := &countingStore{MemoryStore: blobstore.NewMemoryStore()}
	ctx := context.Background()
	for name, body := range tenantJSON {
		_, err := configStore.Upload(ctx, name+".json", []byte(body), blobstore.Metadata{}, false)
		require.NoError(t, err)
	}

	dataFactory, _ := memoryFactory()
	factory := func(ctx context.Context, accountURL, containerName string) (blobstore.Store, error) {
		if containerName == "tenants" {
			return configStore, nil
		}
		return dataFactory(ctx, accountURL, containerName)
	}

	r, err := resolver.NewDatabaseResolver(&resolver.DatabaseConfig{
		ServiceConfig: testServiceConfig(),
		URLScheme:     "https",
	}, factory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	return r, configStore
}

const tenantA = `{
	"promptAccountId": "id-a",
	"promptAccountName": "tenant-a",
	"location": "eastus",
	"kind": "prompt",
	"regionStorageMap": {
		"eastus": ["storeeast1", "storeeast2"],
		"westus2": ["storewest1"]
	}
}`

func TestDatabaseResolverRoutesByRegion(t *testing.T) {
	r, _ := newDatabaseResolver(t, map[string]string{"tenant-a": tenantA})

	info, err := r.ResolveAccountInfo(context.Background(), "tenant-a", "kv")
	require.NoError(t, err)
	assert.Equal(t, "https://storeeast1.blob.core.windows.net", info.AccountURL)
}

func TestDatabaseResolverFetchesConfigOnce(t *testing.T) {
	r, configStore := newDatabaseResolver(t, map[string]string{"tenant-a": tenantA})
	ctx := context.Background()

	first, err := r.Resolve(ctx, "tenant-a", "kv")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := r.Resolve(ctx, "tenant-a", "kv")
		require.NoError(t, err)
		assert.Same(t, first, again)

		_, err = r.ResolveAccountInfo(ctx, "tenant-a", "other")
		require.NoError(t, err)
	}

	assert.Equal(t, int64(1), configStore.downloads.Load())
}

func TestDatabaseResolverUnknownTenant(t *testing.T) {
	r, _ := newDatabaseResolver(t, map[string]string{"tenant-a": tenantA})

	_, err := r.Resolve(context.Background(), "tenant-b", "kv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant-b")
}

func TestDatabaseResolverMissingRegion(t *testing.T) {
	onlyWest := `{
		"promptAccountName": "tenant-w",
		"regionStorageMap": {"westus2": ["storewest1"]}
	}`
	r, _ := newDatabaseResolver(t, map[string]string{"tenant-w": onlyWest})

	_, err := r.Resolve(context.Background(), "tenant-w", "kv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eastus")
}

func TestDatabaseResolverEmptyRegionList(t *testing.T) {
	emptyList := `{
		"promptAccountName": "tenant-e",
		"regionStorageMap": {"eastus": []}
	}`
	r, _ := newDatabaseResolver(t, map[string]string{"tenant-e": emptyList})

	_, err := r.Resolve(context.Background(), "tenant-e", "kv")
	require.Error(t, err)
}

func TestDatabaseResolverConcurrentResolutionSharesEngine(t *testing.T) {
	r, _ := newDatabaseResolver(t, map[string]string{"tenant-a": tenantA})
	ctx := context.Background()

	const workers = 16
	engines := make([]any, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			eng, err := r.Resolve(ctx, "tenant-a", "kv")
			if err == nil {
				engines[i] = eng
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, engines[0], engines[i])
	}
}
