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

package extract_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"dirpx.dev/msx/cache"
	"dirpx.dev/msx/config"
	"dirpx.dev/msx/extract"
	"dirpx.dev/msx/modeltype"
	"dirpx.dev/msx/schema"
	"dirpx.dev/msx/store"
)

// ---------------------- Contract fixtures ----------------------

type person interface {
	Name() string
	SetName(string)
	Age() int
	SetAge(int)
	Nicknames() []string
}

type prefixed interface {
	GetTitle() string
	SetTitle(string)
}

type acronyms interface {
	URL() string
	SetURL(string)
}

type orphan interface {
	Name() string
	SetAge(int)
}

type mismatched interface {
	Count() int
	SetCount(string)
}

type doubled interface {
	Name() string
	GetName() string
}

type misshapen interface {
	Name(prefix string) string
}

type address interface {
	City() string
	SetCity(string)
}

type customer interface {
	Name() string
	Home() address
	SetHome(address)
}

type linked interface {
	Value() int
	SetValue(int)
	Next() linked
	SetNext(linked)
}

func newStore(cfg ...config.Option) *store.Store {
	return store.New(extract.New(config.NewConfig(cfg...), nil))
}

// ---------------------- Properties ----------------------

func TestProperties_PairingAndOrder(t *testing.T) {
	results, err := extract.Properties(modeltype.For[person](), config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Properties(person): unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Properties(person): got %d results, want 3", len(results))
	}

	// Interface method sets enumerate alphabetically, so derivation order
	// is deterministic: Age, Name, Nicknames.
	wants := []struct {
		name     string
		typ      reflect.Type
		writable bool
	}{
		{"age", reflect.TypeOf(0), true},
		{"name", reflect.TypeOf(""), true},
		{"nicknames", reflect.TypeOf([]string{}), false},
	}
	for i, want := range wants {
		p := results[i].Property
		if p.Name() != want.name {
			t.Fatalf("result[%d]: got property %q, want %q", i, p.Name(), want.name)
		}
		if p.Type().Raw() != want.typ {
			t.Fatalf("result[%d]: got type %s, want %s", i, p.Type().Raw(), want.typ)
		}
		if p.Writable() != want.writable {
			t.Fatalf("result[%d]: got writable=%v, want %v", i, p.Writable(), want.writable)
		}
		if p.Kind() != schema.Managed {
			t.Fatalf("result[%d]: got kind %s, want managed (default policy)", i, p.Kind())
		}
		if results[i].HasSetter != want.writable {
			t.Fatalf("result[%d]: HasSetter=%v disagrees with writable=%v", i, results[i].HasSetter, want.writable)
		}
	}
}

func TestProperties_GetPrefix(t *testing.T) {
	results, err := extract.Properties(modeltype.For[prefixed](), config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Properties(prefixed): unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Property.Name() != "title" {
		t.Fatalf("Properties(prefixed): got %v, want single property %q", results, "title")
	}
	if !results[0].HasSetter {
		t.Fatalf("GetTitle/SetTitle: setter not paired")
	}

	// With the prefix rejected, "GetTitle" derives property "getTitle" and
	// "SetTitle" becomes an orphan.
	_, err = extract.Properties(modeltype.For[prefixed](), config.NewConfig(config.WithAcceptGetPrefix(false)), nil)
	if !errors.Is(err, extract.ErrOrphanSetter) {
		t.Fatalf("Properties(prefixed, no Get prefix): got %v, want ErrOrphanSetter", err)
	}
}

func TestProperties_AcronymName(t *testing.T) {
	results, err := extract.Properties(modeltype.For[acronyms](), config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Properties(acronyms): unexpected error: %v", err)
	}
	if results[0].Property.Name() != "URL" {
		t.Fatalf("acronym property: got %q, want %q", results[0].Property.Name(), "URL")
	}
}

func TestProperties_Errors(t *testing.T) {
	cases := []struct {
		name string
		typ  modeltype.ModelType
		want error
	}{
		{"orphan setter", modeltype.For[orphan](), extract.ErrOrphanSetter},
		{"type mismatch", modeltype.For[mismatched](), extract.ErrTypeMismatch},
		{"duplicate property", modeltype.For[doubled](), extract.ErrDuplicateProperty},
		{"unsupported shape", modeltype.For[misshapen](), extract.ErrInvalidAccessor},
		{"not a contract", modeltype.Of(reflect.TypeOf(0)), extract.ErrNotContract},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := extract.Properties(tc.typ, config.DefaultConfig(), nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Properties(%s): got %v, want %v", tc.typ, err, tc.want)
			}
		})
	}
}

func TestProperties_ErrorNamesContractAndProperty(t *testing.T) {
	_, err := extract.Properties(modeltype.For[orphan](), config.DefaultConfig(), nil)
	if err == nil {
		t.Fatalf("Properties(orphan): got nil error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "extract_test.orphan") {
		t.Fatalf("error must name the contract type, got %q", msg)
	}
	if !strings.Contains(msg, "age") {
		t.Fatalf("error must name the offending property, got %q", msg)
	}
}

func TestProperties_AggregatesAllProblems(t *testing.T) {
	type messy interface {
		Name() string
		SetAge(int) // orphan
		Count() int
		SetCount(string) // mismatch
	}
	_, err := extract.Properties(modeltype.For[messy](), config.DefaultConfig(), nil)
	if !errors.Is(err, extract.ErrOrphanSetter) || !errors.Is(err, extract.ErrTypeMismatch) {
		t.Fatalf("aggregated error must carry both problems, got %v", err)
	}
}

// ---------------------- Extract ----------------------

func TestExtract_Memoized(t *testing.T) {
	x := extract.New(config.DefaultConfig(), nil)
	c := cache.New()
	st := store.New(x)

	mt := modeltype.For[person]()
	first, err := x.Extract(mt, st, c)
	if err != nil {
		t.Fatalf("Extract(person): unexpected error: %v", err)
	}
	if c.Size() != 1 {
		t.Fatalf("cache size after first extraction: got %d, want 1", c.Size())
	}
	second, err := x.Extract(mt, st, c)
	if err != nil {
		t.Fatalf("Extract(person) again: unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("memoization: second extraction returned a different schema object")
	}
	if c.Size() != 1 {
		t.Fatalf("cache size after second extraction: got %d, want 1", c.Size())
	}
}

func TestExtract_ValueType(t *testing.T) {
	x := extract.New(config.DefaultConfig(), nil)
	c := cache.New()
	s, err := x.Extract(modeltype.Of(reflect.TypeOf(0)), store.New(x), c)
	if err != nil {
		t.Fatalf("Extract(int): unexpected error: %v", err)
	}
	if s.Kind() != schema.ValueKind || s.Len() != 0 {
		t.Fatalf("Extract(int): got kind %s with %d properties, want empty value schema", s.Kind(), s.Len())
	}
}

func TestExtract_NestedContract(t *testing.T) {
	st := newStore()
	s, err := st.GetSchema(modeltype.For[customer]())
	if err != nil {
		t.Fatalf("GetSchema(customer): unexpected error: %v", err)
	}
	home, ok := s.Property("home")
	if !ok || home.Type().Raw() != reflect.TypeOf((*address)(nil)).Elem() {
		t.Fatalf("home property: got %v, want address-typed property", home)
	}
	// The nested contract received its own cache entry.
	if st.Size() != 2 {
		t.Fatalf("store size: got %d, want 2 (customer and address)", st.Size())
	}
}

func TestExtract_CyclicContract(t *testing.T) {
	st := newStore()
	s, err := st.GetSchema(modeltype.For[linked]())
	if err != nil {
		t.Fatalf("GetSchema(linked): unexpected error: %v", err)
	}
	if _, ok := s.Property("next"); !ok {
		t.Fatalf("cyclic contract: property %q missing", "next")
	}
	if st.Size() != 1 {
		t.Fatalf("store size: got %d, want 1", st.Size())
	}
}

func TestExtract_ErrorNotCached(t *testing.T) {
	x := extract.New(config.DefaultConfig(), nil)
	c := cache.New()
	st := store.New(x)

	if _, err := x.Extract(modeltype.For[orphan](), st, c); err == nil {
		t.Fatalf("Extract(orphan): got nil error")
	}
	if c.Size() != 0 {
		t.Fatalf("cache size after failed extraction: got %d, want 0", c.Size())
	}
}

// ---------------------- Policies ----------------------

type ownedDelegate struct{ owner string }

func (d *ownedDelegate) Owner() string     { return d.owner }
func (d *ownedDelegate) SetOwner(s string) { d.owner = s }

type resource interface {
	Name() string
	SetName(string)
	Owner() string
	SetOwner(string)
}

func TestDelegatePolicy(t *testing.T) {
	policy := extract.DelegatePolicy(reflect.TypeOf(&ownedDelegate{}))
	results, err := extract.Properties(modeltype.For[resource](), config.DefaultConfig(), policy)
	if err != nil {
		t.Fatalf("Properties(resource): unexpected error: %v", err)
	}
	kinds := map[string]schema.ManagementKind{}
	for _, r := range results {
		kinds[r.Property.Name()] = r.Property.Kind()
	}
	if kinds["owner"] != schema.Delegated {
		t.Fatalf("owner: got %s, want delegated", kinds["owner"])
	}
	if kinds["name"] != schema.Managed {
		t.Fatalf("name: got %s, want managed", kinds["name"])
	}
}

func TestDelegatePolicy_NilDelegate(t *testing.T) {
	policy := extract.DelegatePolicy(nil)
	results, err := extract.Properties(modeltype.For[resource](), config.DefaultConfig(), policy)
	if err != nil {
		t.Fatalf("Properties(resource): unexpected error: %v", err)
	}
	for _, r := range results {
		if r.Property.Kind() != schema.Managed {
			t.Fatalf("%s: got %s, want managed with nil delegate", r.Property.Name(), r.Property.Kind())
		}
	}
}
