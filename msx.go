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

package msx

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/msx/apis"
	"dirpx.dev/msx/builder"
	"dirpx.dev/msx/config"
	"dirpx.dev/msx/modeltype"
	"dirpx.dev/msx/schema"
)

// ErrNilStore is returned when a builder returns a nil store.
var ErrNilStore = errors.New("msx: builder returned nil store")

// GetSchema returns the schema for t from the process-wide default store.
// This is a convenience wrapper around the global store.
func GetSchema(t modeltype.ModelType) (*schema.Schema, error) {
	return current().str.GetSchema(t)
}

// GetSchemaOf wraps t as a ModelType and resolves it through the
// process-wide default store.
func GetSchemaOf(t reflect.Type) (*schema.Schema, error) {
	return current().str.GetSchemaOf(t)
}

// GetSchemaFor resolves the schema of type parameter T through the
// process-wide default store.
func GetSchemaFor[T any]() (*schema.Schema, error) {
	return current().str.GetSchema(modeltype.For[T]())
}

// GetInstanceSchema derives instance's most specific managed type and
// resolves its schema through the process-wide default store.
func GetInstanceSchema(instance any) (*schema.Schema, error) {
	return current().str.GetInstanceSchema(instance)
}

// CleanUp clears the default store's schema cache.
func CleanUp() {
	current().str.CleanUp()
}

// Size reports the default store's schema cache size.
func Size() int {
	return current().str.Size()
}

// Store returns the process-wide default store.
func Store() apis.Store {
	return current().str
}

// SetStore sets the process-wide store to str and pins it: further calls
// to SetConfig will not rebuild the store until UnpinStore.
func SetStore(str apis.Store) {
	if str == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := current()

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  old.cfg,
			ext:  old.ext,
			str:  str,
			bld:  old.bld,
			pstr: true,
		},
	)
}

// IsStorePinned returns whether the global store is pinned (immutable).
func IsStorePinned() bool {
	return current().pstr
}

// UnpinStore makes the global store rebuildable again.
func UnpinStore() {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := current()

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  old.cfg,
			ext:  old.ext,
			str:  old.str,
			bld:  old.bld,
			pstr: false,
		},
	)
}

// Config returns the global msx configuration.
func Config() apis.Config {
	return current().cfg
}

// SetConfig sets the global msx configuration to cfg.
// It rebuilds the global store using the new configuration unless the
// store is pinned. A rebuild discards the previous store's schema cache.
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := current()
	b := old.bld

	// Build a new store based on the new cfg, unless pinned.
	nstr := old.str
	if !old.pstr {
		nstr = b.BuildStore(cfg, old.str, old.ext)
	}

	// Ensure a non-nil store.
	if nstr == nil {
		panic(ErrNilStore)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  cfg,
			ext:  old.ext,
			str:  nstr,
			bld:  b,
			pstr: old.pstr,
		},
	)
}

// Builder returns the global msx builder.
func Builder() apis.Builder {
	return current().bld
}

// SetBuilder sets the global msx builder to b and rebuilds the store with
// it unless the store is pinned.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := current()

	// Build a new store based on the new builder, unless pinned.
	nstr := old.str
	if !old.pstr {
		nstr = b.BuildStore(old.cfg, old.str, old.ext)
	}

	// Ensure a non-nil store.
	if nstr == nil {
		panic(ErrNilStore)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  old.cfg,
			ext:  old.ext,
			str:  nstr,
			bld:  b,
			pstr: old.pstr,
		},
	)
}

// SetExt replaces the extension context and rebuilds the store via the
// builder unless pinned. The default builder interprets an apis.Policy ext
// as the classification policy for the rebuilt store's extractor.
func SetExt[T any](ext T) {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := current()
	b := old.bld

	// Build a new store based on the new ext, unless pinned.
	nstr := old.str
	if !old.pstr {
		nstr = b.BuildStore(old.cfg, old.str, ext)
	}

	// Ensure a non-nil store.
	if nstr == nil {
		panic(ErrNilStore)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  old.cfg,
			ext:  ext,
			str:  nstr,
			bld:  b,
			pstr: old.pstr,
		},
	)
}

// ExtAs returns the global msx extension context as type T.
func ExtAs[T any]() (T, bool) {
	ext, ok := current().ext.(T)
	return ext, ok
}

// SetAll explicitly sets all global msx state components.
//
// Nil arguments leave the corresponding component unchanged, except for ext
// which is always replaced. Passing a nil str rebuilds the store and resets
// the pin; this is mainly used by tests to get a clean deterministic state
// between test cases.
func SetAll(cfg *apis.Config, ext any, str apis.Store, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := current()

	// Configuration
	ncfg := old.cfg
	if cfg != nil {
		ncfg = *cfg
	}

	// Extension
	next := ext

	// Builder
	nbld := old.bld
	if bld != nil {
		nbld = bld
	}

	// Store
	nstr := str
	npstr := false
	if nstr == nil {
		nstr = nbld.BuildStore(ncfg, old.str, next)
	} else {
		npstr = true
	}

	// Ensure a non-nil store.
	if nstr == nil {
		panic(ErrNilStore)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg:  ncfg,
			ext:  next,
			str:  nstr,
			bld:  nbld,
			pstr: npstr,
		},
	)
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots. current() callers inside writers already hold it.
var buildMu sync.Mutex

// st is the global msx state. Nil until first use; the default store is
// created lazily, alive for the process lifetime, never torn down.
var st atomic.Pointer[state]

// initOnce guards the one-time lazy construction of the initial snapshot.
var initOnce sync.Once

// current returns the published snapshot, building the initial one on
// first use.
func current() *state {
	if s := st.Load(); s != nil {
		return s
	}
	initOnce.Do(func() {
		s := &state{cfg: config.DefaultConfig()}
		b := builder.New()
		s.str = b.BuildStore(s.cfg, nil, nil)
		s.bld = b
		st.Store(s)
	})
	return st.Load()
}

// state is the global msx state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	// cfg is the global msx configuration.
	cfg apis.Config
	// ext is the global msx extension context.
	ext any
	// str is the global msx store.
	str apis.Store
	// bld is the global msx builder.
	bld apis.Builder
	// pstr indicates whether the store is pinned (immutable).
	pstr bool
}
