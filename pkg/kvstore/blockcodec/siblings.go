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

package blockcodec

import (
	"fmt"
	"strconv"
	"strings"
)

// Sibling is one alternate-parent version of a canonical blob, stored under
// its own GUID blob and referenced from the canonical blob's metadata.
type Sibling struct {
	Hash       uint64
	ParentHash uint64
	Location   string
}

// SerializeSiblings renders the sibling list into the metadata wire format:
// [{"hash":"1","parentHash":"2","location":"guid"},...] with [] for empty.
// Order is preserved; the list is a FIFO queue and must never be re-sorted.
func SerializeSiblings(siblings []Sibling) string {
	if len(siblings) == 0 {
		return "[]"
	}

	var sb strings.Builder
	sb.WriteByte('[')
	for i, s := range siblings {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(`{"hash":"`)
		sb.WriteString(strconv.FormatUint(s.Hash, 10))
		sb.WriteString(`","parentHash":"`)
		sb.WriteString(strconv.FormatUint(s.ParentHash, 10))
		sb.WriteString(`","location":"`)
		sb.WriteString(s.Location)
		sb.WriteString(`"}`)
	}
	sb.WriteByte(']')

	return sb.String()
}

// ParseSiblings parses the output of SerializeSiblings. It tolerates exactly
// the serializer's format: unquoted content inside quoted decimal hashes and
// a free-form location string. Empty input and "[]" yield an empty list.
func ParseSiblings(s string) ([]Sibling, error) {
	if s == "" || s == "[]" {
		return nil, nil
	}

	var siblings []Sibling
	pos := 0
	for pos < len(s) {
		start := strings.Index(s[pos:], `{"hash":`)
		if start < 0 {
			break
		}
		start += pos

		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			break
		}
		end += start

		obj := s[start : end+1]

		hashStr, err := fieldValue(obj, `"hash":"`)
		if err != nil {
			return nil, err
		}
		parentStr, err := fieldValue(obj, `"parentHash":"`)
		if err != nil {
			return nil, err
		}
		location, err := fieldValue(obj, `"location":"`)
		if err != nil {
			return nil, err
		}

		hash, err := strconv.ParseUint(hashStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sibling hash %q: %w", hashStr, err)
		}
		parentHash, err := strconv.ParseUint(parentStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sibling parentHash %q: %w", parentStr, err)
		}

		siblings = append(siblings, Sibling{
			Hash:       hash,
			ParentHash: parentHash,
			Location:   location,
		})

		pos = end + 1
	}

	return siblings, nil
}

func fieldValue(obj, key string) (string, error) {
	start := strings.Index(obj, key)
	if start < 0 {
		return "", fmt.Errorf("sibling record %q is missing %s", obj, key)
	}
	start += len(key)

	end := strings.IndexByte(obj[start:], '"')
	if end < 0 {
		return "", fmt.Errorf("sibling record %q has unterminated %s", obj, key)
	}

	return obj[start : start+end], nil
}
