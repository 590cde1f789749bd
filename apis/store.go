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
	"reflect"

	"dirpx.dev/msx/modeltype"
	"dirpx.dev/msx/schema"
)

// Store is the schema façade: it normalizes the requested type, then
// produces (or retrieves from its cache) the extracted schema.
//
// Stores are not safe for unsynchronized concurrent mutation; callers using
// one from multiple goroutines must serialize GetSchema/CleanUp externally.
type Store interface {
	// GetSchema returns the schema for t, extracting it on first request.
	GetSchema(t modeltype.ModelType) (*schema.Schema, error)
	// GetSchemaOf wraps t as a ModelType and delegates to GetSchema.
	GetSchemaOf(t reflect.Type) (*schema.Schema, error)
	// GetInstanceSchema derives the instance's most specific managed type
	// (via ManagedInstance if implemented, the runtime type otherwise) and
	// delegates to GetSchema.
	GetInstanceSchema(instance any) (*schema.Schema, error)
	// CleanUp clears the backing cache.
	CleanUp()
	// Size reports the backing cache size.
	Size() int
}

// Normalizer rewrites a requested ModelType before extraction. Normalizers
// run in registration order; each receives the current ModelType and returns
// a (possibly identical) replacement. A typical normalizer canonicalizes a
// synthetic or runtime-specific subtype back to its declared contract so
// generated-instance lookups hit the same cache entry as the contract.
type Normalizer interface {
	// Normalize returns the replacement ModelType for t.
	Normalize(t modeltype.ModelType) modeltype.ModelType
}

// NormalizerFunc adapts a plain function to the Normalizer interface.
type NormalizerFunc func(t modeltype.ModelType) modeltype.ModelType

// Normalize calls f.
func (f NormalizerFunc) Normalize(t modeltype.ModelType) modeltype.ModelType {
	return f(t)
}

// Extractor produces schemas for contract types. Extraction must be
// idempotent and side-effect-free so memoization through the cache is safe.
type Extractor interface {
	// Extract returns the schema for t, consulting c first and inserting
	// into c on success. st is used for recursive extraction of property
	// value types that are themselves contract types.
	Extract(t modeltype.ModelType, st Store, c Cache) (*schema.Schema, error)
}

// Policy classifies each extracted property by management kind. The policy
// is supplied by the caller or registration, never inferred; the default
// policy classifies every property Managed.
type Policy interface {
	// Classify returns the management kind for the named property of
	// contract, whose declared value type is value.
	Classify(contract modeltype.ModelType, property string, value modeltype.ModelType) schema.ManagementKind
}

// PolicyFunc adapts a plain function to the Policy interface.
type PolicyFunc func(contract modeltype.ModelType, property string, value modeltype.ModelType) schema.ManagementKind

// Classify calls f.
func (f PolicyFunc) Classify(contract modeltype.ModelType, property string, value modeltype.ModelType) schema.ManagementKind {
	return f(contract, property, value)
}
