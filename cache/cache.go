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

// Package cache provides the process-lifetime schema cache: a mapping from
// contract-type identity to its extracted schema. Entries live until an
// explicit CleanUp; there is no eviction policy.
//
// The cache is intentionally unsynchronized. The schema store drives it
// single-writer; callers sharing a cache across goroutines must provide
// external mutual exclusion.
package cache

import (
	"dirpx.dev/msx/apis"
	"dirpx.dev/msx/modeltype"
	"dirpx.dev/msx/schema"
)

// New constructs an empty schema cache.
func New() *Cache {
	return &Cache{m: make(map[string]*schema.Schema)}
}

// Cache maps ModelType identity to extracted schemas. Distinct
// parameterizations of one container type occupy distinct entries because
// keys carry the full type-argument decomposition.
type Cache struct {
	// m maps ModelType canonical keys to schemas.
	m map[string]*schema.Schema
}

// Ensure Cache implements apis.Cache.
var _ apis.Cache = (*Cache)(nil)

// Get returns the cached schema for t, if present.
func (c *Cache) Get(t modeltype.ModelType) (*schema.Schema, bool) {
	s, ok := c.m[t.Key()]
	return s, ok
}

// Put inserts a fully built schema for t, replacing any previous entry.
// Partial schemas must never be inserted; the extractor only calls Put
// after a complete, error-free extraction.
func (c *Cache) Put(t modeltype.ModelType, s *schema.Schema) {
	c.m[t.Key()] = s
}

// CleanUp removes all entries.
func (c *Cache) CleanUp() {
	c.m = make(map[string]*schema.Schema)
}

// Size returns the number of cached schemas.
func (c *Cache) Size() int {
	return len(c.m)
}
