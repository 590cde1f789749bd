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

package apis

import (
	"dirpx.dev/msx/modeltype"
	"dirpx.dev/msx/schema"
)

// Cache is a process-lifetime mapping from contract-type identity to its
// extracted schema. Entries live until CleanUp; there is no eviction.
//
// Implementations are not required to be safe for unsynchronized concurrent
// mutation. Callers sharing a Cache across goroutines must provide external
// mutual exclusion around writes.
type Cache interface {
	// Get returns the cached schema for t, if present.
	Get(t modeltype.ModelType) (*schema.Schema, bool)
	// Put inserts a fully built schema for t, replacing any previous entry.
	Put(t modeltype.ModelType, s *schema.Schema)
	// CleanUp removes all entries.
	CleanUp()
	// Size returns the number of cached schemas.
	Size() int
}
