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

// Package tokenhash precomputes the per-block hash chain that clients pass
// as precomputed_hashes. The service treats these values as opaque
// identities; all writers of a shared prefix must agree on the scheme and
// the seed.
package tokenhash

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Config holds the configuration for the hash chain.
type Config struct {
	// BlockSize is the number of tokens per block.
	BlockSize int `json:"blockSize"`
	// HashSeed prefixes the chain's root hash. All clients sharing a
	// cache must agree on the seed value.
	HashSeed string `json:"hashSeed"`
}

// DefaultConfig returns the default hash-chain configuration.
func DefaultConfig() *Config {
	return &Config{BlockSize: 128}
}

// Chain computes block hash chains for token sequences.
type Chain struct {
	config   *Config
	initHash uint64
}

// NewChain creates a Chain, deriving the root hash from the seed.
func NewChain(config *Config) (*Chain, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BlockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", config.BlockSize)
	}

	init, err := hashPayload(config.HashSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to derive root hash: %w", err)
	}

	return &Chain{config: config, initHash: init}, nil
}

// hashPayload CBOR-encodes the payload deterministically and folds the
// SHA-256 digest down to its low 64 bits.
func hashPayload(payload any) (uint64, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return 0, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	b, err := encMode.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal payload to CBOR: %w", err)
	}

	sum := sha256.Sum256(b)

	return binary.BigEndian.Uint64(sum[24:]), nil
}

// PrefixHashes returns one hash per full block of tokens: each block's hash
// covers its parent's hash and its own tokens, so equal prefixes yield equal
// chains. Partial trailing blocks are ignored.
func (c *Chain) PrefixHashes(tokens []int64) ([]uint64, error) {
	numBlocks := len(tokens) / c.config.BlockSize

	hashes := make([]uint64, 0, numBlocks)
	parent := c.initHash
	for i := 0; i < numBlocks; i++ {
		chunk := tokens[i*c.config.BlockSize : (i+1)*c.config.BlockSize]

		h, err := hashPayload([]any{parent, chunk, nil})
		if err != nil {
			return nil, fmt.Errorf("failed to hash block %d: %w", i, err)
		}

		hashes = append(hashes, h)
		parent = h
	}

	return hashes, nil
}
