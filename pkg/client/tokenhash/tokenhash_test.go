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

package tokenhash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/llm-d-kv-store-service/pkg/client/tokenhash"
)

func makeTokens(n int, seed int64) []int64 {
	tokens := make([]int64, n)
	for i := range tokens {
		tokens[i] = seed + int64(i)
	}
	return tokens
}

func TestPrefixHashesDeterministic(t *testing.T) {
	chain, err := tokenhash.NewChain(nil)
	require.NoError(t, err)

	tokens := makeTokens(256, 100)

	first, err := chain.PrefixHashes(tokens)
	require.NoError(t, err)
	second, err := chain.PrefixHashes(tokens)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestPrefixHashesChainLinks(t *testing.T) {
	chain, err := tokenhash.NewChain(nil)
	require.NoError(t, err)

	tokens := makeTokens(384, 7)

	full, err := chain.PrefixHashes(tokens)
	require.NoError(t, err)
	prefix, err := chain.PrefixHashes(tokens[:256])
	require.NoError(t, err)

	// Shared prefixes hash identically; extending only appends.
	require.Len(t, full, 3)
	assert.Equal(t, prefix, full[:2])
}

func TestPrefixHashesIgnoresPartialTail(t *testing.T) {
	chain, err := tokenhash.NewChain(nil)
	require.NoError(t, err)

	hashes, err := chain.PrefixHashes(makeTokens(200, 0))
	require.NoError(t, err)
	assert.Len(t, hashes, 1)

	hashes, err = chain.PrefixHashes(makeTokens(100, 0))
	require.NoError(t, err)
	assert.Empty(t, hashes)
}

func TestSeedChangesChain(t *testing.T) {
	chainA, err := tokenhash.NewChain(&tokenhash.Config{BlockSize: 128, HashSeed: "a"})
	require.NoError(t, err)
	chainB, err := tokenhash.NewChain(&tokenhash.Config{BlockSize: 128, HashSeed: "b"})
	require.NoError(t, err)

	tokens := makeTokens(128, 1)
	hashesA, err := chainA.PrefixHashes(tokens)
	require.NoError(t, err)
	hashesB, err := chainB.PrefixHashes(tokens)
	require.NoError(t, err)

	assert.NotEqual(t, hashesA, hashesB)
}

func TestNewChainRejectsBadBlockSize(t *testing.T) {
	_, err := tokenhash.NewChain(&tokenhash.Config{BlockSize: -1})
	require.Error(t, err)
}
