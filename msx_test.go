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
	"reflect"
	"runtime"
	"sync"
	"testing"

	apis "dirpx.dev/msx/apis"
	"dirpx.dev/msx/modeltype"
	"dirpx.dev/msx/schema"
)

// ---------------------- Helpers ----------------------

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	buf := [20]byte{}
	pos := len(buf)
	n := i
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// Reset to a clean snapshot using our test builder.
// This fully replaces builder, config, ext and rebuilds the store.
// The store pin is reset because we pass a nil store.
func resetWithBuilder(tb testing.TB, b apis.Builder, cfg apis.Config, ext any) {
	tb.Helper()
	SetAll(&cfg, ext, nil, b)
}

// ---------------------- Contract fixtures ----------------------

type account interface {
	Owner() string
	SetOwner(string)
}

// ---------------------- Test doubles (mocks) ----------------------

type mockStore struct {
	id   string
	mu   sync.Mutex
	data map[string]*schema.Schema
}

func newMockStore(id string) *mockStore {
	return &mockStore{id: id, data: make(map[string]*schema.Schema)}
}

func (m *mockStore) GetSchema(t modeltype.ModelType) (*schema.Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.data[t.Key()]; ok {
		return s, nil
	}
	s := schema.NewValue(t)
	m.data[t.Key()] = s
	return s, nil
}

func (m *mockStore) GetSchemaOf(t reflect.Type) (*schema.Schema, error) {
	return m.GetSchema(modeltype.Of(t))
}

func (m *mockStore) GetInstanceSchema(instance any) (*schema.Schema, error) {
	return m.GetSchemaOf(reflect.TypeOf(instance))
}

func (m *mockStore) CleanUp() {
	m.mu.Lock()
	m.data = make(map[string]*schema.Schema)
	m.mu.Unlock()
}

func (m *mockStore) Size() int { m.mu.Lock(); defer m.mu.Unlock(); return len(m.data) }

type mockBuilder struct {
	mu             sync.Mutex
	lastCfg        apis.Config
	lastExt        any
	lastPrevID     string
	counter        int
	returnFixedStr apis.Store // optional override
}

func (b *mockBuilder) BuildStore(cfg apis.Config, prev apis.Store, ext any) apis.Store {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastCfg, b.lastExt = cfg, ext
	if prev != nil {
		if ms, ok := prev.(*mockStore); ok {
			b.lastPrevID = ms.id
		}
	}
	if b.returnFixedStr != nil {
		return b.returnFixedStr
	}
	b.counter++
	return newMockStore("str#" + itoa(b.counter))
}

func (b *mockBuilder) builds() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counter
}

// ---------------------- Tests ----------------------

func TestDefaultStore_LazyAndResolves(t *testing.T) {
	SetAll(nil, nil, nil, nil)

	s1, err := GetSchemaFor[account]()
	if err != nil {
		t.Fatalf("GetSchemaFor[account]: unexpected error: %v", err)
	}
	if !s1.Type().Equal(modeltype.For[account]()) {
		t.Fatalf("schema type: got %s, want account", s1.Type())
	}
	if _, ok := s1.Property("owner"); !ok {
		t.Fatalf("schema missing property %q", "owner")
	}

	s2, err := GetSchema(modeltype.For[account]())
	if err != nil {
		t.Fatalf("GetSchema(account): unexpected error: %v", err)
	}
	if s1 != s2 {
		t.Fatalf("default store did not memoize the schema")
	}
	if Size() != 1 {
		t.Fatalf("Size: got %d, want 1", Size())
	}

	CleanUp()
	if Size() != 0 {
		t.Fatalf("Size after CleanUp: got %d, want 0", Size())
	}
}

func TestGetSchemaOf_DefaultStore(t *testing.T) {
	SetAll(nil, nil, nil, nil)

	s, err := GetSchemaOf(reflect.TypeOf((*account)(nil)).Elem())
	if err != nil {
		t.Fatalf("GetSchemaOf(account): unexpected error: %v", err)
	}
	if !s.Type().Equal(modeltype.For[account]()) {
		t.Fatalf("schema type: got %s, want account", s.Type())
	}
}

func TestSetConfig_Rebuilds_Unpinned(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, apis.Config{AcceptGetPrefix: true, MaxNesting: 8}, nil)

	s1 := Store()

	SetConfig(apis.Config{AcceptGetPrefix: false, MaxNesting: 4})

	s2 := Store()
	if s1 == s2 {
		t.Fatalf("store was not rebuilt on SetConfig (unpinned)")
	}

	b.mu.Lock()
	gotCfg := b.lastCfg
	b.mu.Unlock()
	if gotCfg.AcceptGetPrefix || gotCfg.MaxNesting != 4 {
		t.Fatalf("builder received wrong cfg: %+v", gotCfg)
	}
	if got := Config(); got.AcceptGetPrefix || got.MaxNesting != 4 {
		t.Fatalf("Config() after SetConfig: %+v", got)
	}
}

func TestSetStore_Pins(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, apis.Config{AcceptGetPrefix: true, MaxNesting: 8}, nil)

	custom := newMockStore("custom")
	SetStore(custom)

	if !IsStorePinned() {
		t.Fatalf("SetStore did not pin the store")
	}

	// Change cfg -> store must survive the reconfiguration while pinned.
	SetConfig(apis.Config{AcceptGetPrefix: false, MaxNesting: 8})

	if Store() != custom {
		t.Fatalf("pinned store was rebuilt unexpectedly")
	}
	if got := Config(); got.AcceptGetPrefix {
		t.Fatalf("config was not updated while store pinned: %+v", got)
	}
}

func TestSetStore_Nil_Ignored(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, apis.Config{AcceptGetPrefix: true, MaxNesting: 8}, nil)

	before := Store()
	SetStore(nil)
	if Store() != before {
		t.Fatalf("SetStore(nil) replaced the store")
	}
	if IsStorePinned() {
		t.Fatalf("SetStore(nil) pinned the store")
	}
}

func TestUnpinStore_Allows_Rebuild_After(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, apis.Config{AcceptGetPrefix: true, MaxNesting: 8}, nil)

	custom := newMockStore("pinned")
	SetStore(custom)

	SetConfig(apis.Config{AcceptGetPrefix: false, MaxNesting: 4})
	if Store() != custom {
		t.Fatalf("pinned store should not rebuild on SetConfig")
	}

	UnpinStore()
	if IsStorePinned() {
		t.Fatalf("UnpinStore left the store pinned")
	}
	SetConfig(apis.Config{AcceptGetPrefix: true, MaxNesting: 6})
	if Store() == custom {
		t.Fatalf("store should rebuild after UnpinStore+SetConfig")
	}
}

func TestSetBuilder_Rebuilds_With_New_Builder(t *testing.T) {
	a := &mockBuilder{}
	resetWithBuilder(t, a, apis.Config{AcceptGetPrefix: true, MaxNesting: 8}, nil)

	before := Store()

	b := &mockBuilder{}
	SetBuilder(b)

	if Store() == before {
		t.Fatalf("store did not rebuild on SetBuilder (unpinned)")
	}
	if b.builds() != 1 {
		t.Fatalf("new builder builds: got %d, want 1", b.builds())
	}
	if Builder() != apis.Builder(b) {
		t.Fatalf("Builder() did not return the new builder")
	}
}

func TestSetBuilder_Nil_Ignored(t *testing.T) {
	a := &mockBuilder{}
	resetWithBuilder(t, a, apis.Config{AcceptGetPrefix: true, MaxNesting: 8}, nil)

	before := Builder()
	SetBuilder(nil)
	if Builder() != before {
		t.Fatalf("SetBuilder(nil) replaced the builder")
	}
}

func TestSetExt_Rebuilds_Unpinned_and_PassesValue(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, apis.Config{AcceptGetPrefix: true, MaxNesting: 8}, nil)

	type extCfg struct{ X int }
	SetExt(extCfg{X: 42})

	b.mu.Lock()
	got := b.lastExt
	b.mu.Unlock()
	ec, ok := got.(extCfg)
	if !ok || ec.X != 42 {
		t.Fatalf("builder did not receive ext properly: %#v", got)
	}

	gotExt, ok := ExtAs[extCfg]()
	if !ok || gotExt.X != 42 {
		t.Fatalf("ExtAs did not return the ext: %#v ok=%v", gotExt, ok)
	}

	// Pin the store and ensure no rebuild on SetExt.
	SetStore(Store())
	before := b.builds()
	SetExt(extCfg{X: 7})
	if b.builds() != before {
		t.Fatalf("SetExt should not rebuild when the store is pinned")
	}
	if gotExt, ok := ExtAs[extCfg](); !ok || gotExt.X != 7 {
		t.Fatalf("ext not replaced while pinned: %#v ok=%v", gotExt, ok)
	}
}

func TestSetAll_Resets_Pin(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, apis.Config{AcceptGetPrefix: true, MaxNesting: 8}, nil)

	SetStore(newMockStore("pinned"))
	if !IsStorePinned() {
		t.Fatalf("SetStore did not pin the store")
	}

	resetWithBuilder(t, b, apis.Config{AcceptGetPrefix: true, MaxNesting: 8}, nil)
	if IsStorePinned() {
		t.Fatalf("SetAll with nil store should reset the pin")
	}
}

func TestSetAll_Explicit_Store_Pins(t *testing.T) {
	b := &mockBuilder{}
	custom := newMockStore("explicit")
	cfg := apis.Config{AcceptGetPrefix: true, MaxNesting: 8}
	SetAll(&cfg, nil, custom, b)

	if Store() != apis.Store(custom) {
		t.Fatalf("SetAll did not install the explicit store")
	}
	if !IsStorePinned() {
		t.Fatalf("SetAll with an explicit store should pin it")
	}
}

func TestSetConfig_Panics_On_NilStore(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, apis.Config{AcceptGetPrefix: true, MaxNesting: 8}, nil)

	nilBuilder := &nilStoreBuilder{}
	SetBuilder(nilBuilder)

	defer func() {
		if r := recover(); r != ErrNilStore {
			t.Fatalf("expected panic with ErrNilStore, got %v", r)
		}
		// Restore a sane snapshot for later tests.
		resetWithBuilder(t, b, apis.Config{AcceptGetPrefix: true, MaxNesting: 8}, nil)
	}()
	SetConfig(apis.Config{AcceptGetPrefix: false, MaxNesting: 8})
}

// nilStoreBuilder returns a usable store once (so SetBuilder succeeds) and
// nil afterwards.
type nilStoreBuilder struct {
	mu    sync.Mutex
	calls int
}

func (b *nilStoreBuilder) BuildStore(apis.Config, apis.Store, any) apis.Store {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.calls == 1 {
		return newMockStore("first")
	}
	return nil
}

func TestGetSchema_Concurrent_With_SetConfig(t *testing.T) {
	b := &mockBuilder{}
	resetWithBuilder(t, b, apis.Config{AcceptGetPrefix: true, MaxNesting: 8}, nil)

	done := make(chan struct{})
	var wg sync.WaitGroup

	readers := runtime.GOMAXPROCS(0) * 4
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if _, err := GetSchema(modeltype.For[account]()); err != nil {
					t.Errorf("GetSchema under churn: %v", err)
					return
				}
			}
		}()
	}

	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			SetConfig(apis.Config{AcceptGetPrefix: i%2 == 0, MaxNesting: 8})
		}
	}()

	<-done
	wg.Wait()
}
