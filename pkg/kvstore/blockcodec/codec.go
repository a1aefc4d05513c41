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

// Package blockcodec maps a block's token sequence to its canonical blob name
// and back, and encodes the sibling-version list carried in blob metadata.
package blockcodec

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// BlockSize is the number of tokens covered by one stored block.
const BlockSize = 128

// EncodeTokens returns the canonical blob name for a token sequence:
// url-safe unpadded base64 over the big-endian 32-bit representation of each
// token. Tokens are truncated from 64 to 32 bits.
func EncodeTokens(tokens []int64) string {
	buf := make([]byte, 4*len(tokens))
	for i, tok := range tokens {
		binary.BigEndian.PutUint32(buf[4*i:], uint32(tok)) //nolint:gosec // deliberate truncation
	}

	return base64.RawURLEncoding.EncodeToString(buf)
}

// DecodeTokens inverts EncodeTokens. Decoded tokens are the zero-extended
// 32-bit values; the high 32 bits lost in encoding are not recoverable.
func DecodeTokens(name string) ([]int64, error) {
	buf, err := base64.RawURLEncoding.DecodeString(name)
	if err != nil {
		return nil, fmt.Errorf("failed to decode blob name: %w", err)
	}

	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("blob name decodes to %d bytes, not a multiple of 4", len(buf))
	}

	tokens := make([]int64, len(buf)/4)
	for i := range tokens {
		tokens[i] = int64(binary.BigEndian.Uint32(buf[4*i:]))
	}

	return tokens, nil
}
