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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/llm-d-kv-store-service/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "service-config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		"currentLocation": "eastus",
		"configurationStore": "metaaccount",
		"configurationContainer": "tenants"
	}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "eastus", cfg.CurrentLocation)
	assert.Equal(t, config.DefaultDomainSuffix, cfg.DomainSuffix)
	assert.Equal(t, "https://metaaccount.blob.core.windows.net", cfg.ConfigurationStoreURL())
}

func TestLoadCustomSuffix(t *testing.T) {
	path := writeConfig(t, `{
		"currentLocation": "eastus",
		"configurationStore": "metaaccount",
		"configurationContainer": "tenants",
		"domainSuffix": ".blob.storage.azure.net"
	}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ".blob.storage.azure.net", cfg.DomainSuffix)
}

func TestLoadMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing location",
			content: `{"configurationStore": "a", "configurationContainer": "b"}`,
			wantErr: "currentLocation",
		},
		{
			name:    "missing store",
			content: `{"currentLocation": "eastus", "configurationContainer": "b"}`,
			wantErr: "configurationStore",
		},
		{
			name:    "missing container",
			content: `{"currentLocation": "eastus", "configurationStore": "a"}`,
			wantErr: "configurationContainer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadBadFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)

	_, err = config.Load(writeConfig(t, "{not json"))
	require.Error(t, err)
}
