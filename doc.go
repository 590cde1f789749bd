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

// Package msx provides managed schema extraction: a host application
// declares contract types (property-bearing Go interface types) and obtains,
// at runtime, concrete instances of those contracts whose property storage
// is not hand-written but synthesized from a declarative schema.
//
// # Design
//
// The core of msx is a schema store. The store holds three things:
//
//   - Cache: a process-lifetime mapping from contract-type identity
//     (modeltype.ModelType, which carries full type-argument
//     parameterization) to its extracted schema. Extraction is a one-time,
//     memoized operation per type.
//
//   - Extractor: walks a contract type's declared property accessors,
//     pairs getters with setters, classifies each property by management
//     kind (managed / unmanaged / delegated) through a caller-supplied
//     policy, and assembles the schema. Extraction is all-or-nothing:
//     every problem on a contract is reported in one aggregated error and
//     nothing partial is ever cached.
//
//   - Normalizers: run in registration order before extraction, each may
//     rewrite the requested type. This lets a store canonicalize synthetic
//     or runtime-specific types back to the declared contract so
//     generated-instance lookups hit the same cache entry as the contract.
//
// Separately, the proxy package turns a contract type plus property
// extraction results into an Implementation: a runtime-dispatch
// implementation type whose instances read and write managed properties
// through an externally supplied state object, forward delegated
// properties and extra behavior to an attached delegate, and carry the
// identity of their state's backing node.
//
// # Global API
//
// The package exposes a process-wide default store, created lazily on
// first use, alive for the process lifetime, never torn down:
//
//	s, err := msx.GetSchemaFor[Person]()
//	s, err := msx.GetSchemaOf(reflect.TypeOf(v))
//	s, err := msx.GetInstanceSchema(instance)
//	msx.CleanUp()
//	n := msx.Size()
//
// Mutation helpers (SetConfig, SetStore, SetBuilder, SetExt, SetAll) follow
// the snapshot model: each acquires an internal build lock, derives a new
// immutable snapshot (rebuilding the store as needed), and publishes it via
// an atomic pointer swap. SetStore pins the store so configuration changes
// stop rebuilding it until UnpinStore. SetAll is the hard-reset API, mainly
// for tests. Hosts needing isolation construct their own store.New(...)
// instead of using the global one.
//
// # Concurrency model
//
// The snapshot swap makes reads of the global state race-free, but schema
// extraction itself is synchronous, single-threaded work: a Store and its
// Cache are not safe for unsynchronized concurrent mutation. Callers using
// one store (including the default) from multiple goroutines must provide
// external mutual exclusion around GetSchema/CleanUp. The proxy generator
// performs no memoization of its own; callers caching generated
// implementations across goroutines synchronize that cache themselves.
//
// # Scope
//
// msx is intentionally small. It does not persist schemas across process
// restarts, does not provide a query API beyond property enumeration, and
// does not validate business rules beyond structural property
// classification. The backing store behind generated instances is an
// external collaborator, consumed only through the apis.State contract.
package msx
