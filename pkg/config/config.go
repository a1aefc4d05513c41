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

// Package config loads the service's startup configuration. The loaded
// struct is treated as immutable for the life of the process.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultDomainSuffix is appended to storage account names to form URLs.
const DefaultDomainSuffix = ".blob.core.windows.net"

// ServiceConfig is the startup configuration of the service.
type ServiceConfig struct {
	// CurrentLocation is the region this instance runs in, e.g. "eastus".
	// Tenant resolution picks the storage account mapped to this region.
	CurrentLocation string `json:"currentLocation"`
	// ConfigurationStore is the storage account holding per-tenant account
	// configuration objects.
	ConfigurationStore string `json:"configurationStore"`
	// ConfigurationContainer is the container within ConfigurationStore
	// where tenant objects live, named "{resourceName}.json".
	ConfigurationContainer string `json:"configurationContainer"`
	// DomainSuffix turns account names into URLs.
	DomainSuffix string `json:"domainSuffix"`
}

// Validate reports the first missing required field.
func (c *ServiceConfig) Validate() error {
	switch {
	case c.CurrentLocation == "":
		return fmt.Errorf("currentLocation is required")
	case c.ConfigurationStore == "":
		return fmt.Errorf("configurationStore is required")
	case c.ConfigurationContainer == "":
		return fmt.Errorf("configurationContainer is required")
	case c.DomainSuffix == "":
		return fmt.Errorf("domainSuffix is required")
	}

	return nil
}

// ConfigurationStoreURL returns the full URL of the configuration store.
func (c *ServiceConfig) ConfigurationStoreURL() string {
	return "https://" + c.ConfigurationStore + c.DomainSuffix
}

// Load reads and validates a service configuration from a JSON file.
func Load(path string) (*ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service config %q: %w", path, err)
	}

	cfg := &ServiceConfig{DomainSuffix: DefaultDomainSuffix}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse service config %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config %q: %w", path, err)
	}

	return cfg, nil
}
