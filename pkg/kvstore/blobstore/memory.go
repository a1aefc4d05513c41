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

package blobstore

import (
	"context"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// MemoryStore is an in-process Store used by tests and local development.
// Conditional semantics match the cloud implementations exactly: uploads with
// ifNoneMatchAny fail on existing blobs, metadata updates check the ETag.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]*memoryBlob
	rev   uint64
}

type memoryBlob struct {
	body     []byte
	metadata Metadata
	etag     string
}

var _ Store = &MemoryStore{}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]*memoryBlob)}
}

// etagFor derives a fresh ETag from the blob name and a monotonic revision.
func (s *MemoryStore) etagFor(name string) string {
	s.rev++
	return strconv.FormatUint(xxhash.Sum64String(name+"#"+strconv.FormatUint(s.rev, 10)), 16)
}

// GetProperties fetches a blob's metadata and current ETag.
func (s *MemoryStore) GetProperties(_ context.Context, name string) (Properties, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[name]
	if !ok {
		return Properties{}, NewError(KindNotFound, "GetProperties", name, nil)
	}

	return Properties{Metadata: blob.metadata.Clone(), ETag: blob.etag}, nil
}

// Upload writes body and metadata under name.
func (s *MemoryStore) Upload(_ context.Context, name string, body []byte, metadata Metadata, ifNoneMatchAny bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blobs[name]; exists && ifNoneMatchAny {
		return "", NewError(KindConflict, "Upload", name, nil)
	}

	blob := &memoryBlob{
		body:     append([]byte(nil), body...),
		metadata: metadata.Clone(),
		etag:     s.etagFor(name),
	}
	s.blobs[name] = blob

	return blob.etag, nil
}

// Download fetches a blob's body together with its metadata.
func (s *MemoryStore) Download(_ context.Context, name string) ([]byte, Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[name]
	if !ok {
		return nil, nil, NewError(KindNotFound, "Download", name, nil)
	}

	return append([]byte(nil), blob.body...), blob.metadata.Clone(), nil
}

// SetMetadata replaces a blob's metadata if the ETag still matches.
func (s *MemoryStore) SetMetadata(_ context.Context, name string, metadata Metadata, ifMatchETag string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok := s.blobs[name]
	if !ok {
		return "", NewError(KindNotFound, "SetMetadata", name, nil)
	}

	if ifMatchETag != "" && blob.etag != ifMatchETag {
		return "", NewError(KindPreconditionFailed, "SetMetadata", name, nil)
	}

	blob.metadata = metadata.Clone()
	blob.etag = s.etagFor(name)

	return blob.etag, nil
}

// Delete removes a blob.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[name]; !ok {
		return NewError(KindNotFound, "Delete", name, nil)
	}

	delete(s.blobs, name)

	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.blobs)
}
