/*
   Copyright 2025 The DIRPX Authors.

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

// Package store provides the schema store: the façade that runs type
// normalizers over a requested type in registration order and then produces
// (or retrieves from the cache) the extracted schema.
//
// A Store is not safe for unsynchronized concurrent mutation. Callers using
// one from multiple goroutines must serialize GetSchema/CleanUp externally;
// the process-wide default store in the root package inherits the same
// contract.
package store

import (
	"errors"
	"reflect"

	"dirpx.dev/msx/apis"
	"dirpx.dev/msx/cache"
	"dirpx.dev/msx/modeltype"
	"dirpx.dev/msx/schema"
)

// ErrNilInstance is returned when a nil instance is provided.
var ErrNilInstance = errors.New("msx(store): nil instance provided")

// New constructs a Store around x with the given normalizers, applied in
// the order given. Nil normalizers are ignored; the slice is copied so
// later caller mutation cannot reorder the chain.
func New(x apis.Extractor, normalizers ...apis.Normalizer) *Store {
	out := make([]apis.Normalizer, 0, len(normalizers))
	for _, n := range normalizers {
		if n != nil {
			out = append(out, n)
		}
	}
	return &Store{
		cache:       cache.New(),
		extractor:   x,
		normalizers: out,
	}
}

// Store applies type normalizers and memoizes extraction through its cache.
type Store struct {
	// cache owns the extracted schemas for the store's lifetime.
	cache *cache.Cache
	// extractor produces schemas on cache misses.
	extractor apis.Extractor
	// normalizers rewrite requested types before extraction, in order.
	normalizers []apis.Normalizer
}

// Ensure Store implements apis.Store.
var _ apis.Store = (*Store)(nil)

// GetSchema returns the schema for t, extracting and caching it on first
// request. Normalizers run first, so a synthetic or runtime-specific type
// canonicalized to its declared contract hits the contract's cache entry.
func (s *Store) GetSchema(t modeltype.ModelType) (*schema.Schema, error) {
	for _, n := range s.normalizers {
		t = n.Normalize(t)
	}
	return s.extractor.Extract(t, s, s.cache)
}

// GetSchemaOf wraps t as a ModelType and delegates to GetSchema.
func (s *Store) GetSchemaOf(t reflect.Type) (*schema.Schema, error) {
	return s.GetSchema(modeltype.Of(t))
}

// GetInstanceSchema derives the instance's most specific managed type and
// delegates to GetSchema. Generated instances self-report their contract
// through apis.ManagedInstance; other values fall back to their runtime type.
func (s *Store) GetInstanceSchema(instance any) (*schema.Schema, error) {
	if instance == nil {
		return nil, ErrNilInstance
	}
	if mi, ok := instance.(apis.ManagedInstance); ok {
		return s.GetSchema(mi.ManagedType())
	}
	return s.GetSchemaOf(reflect.TypeOf(instance))
}

// CleanUp clears the backing cache.
func (s *Store) CleanUp() {
	s.cache.CleanUp()
}

// Size reports the backing cache size.
func (s *Store) Size() int {
	return s.cache.Size()
}
