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

// Package modeltype provides the immutable type descriptor used throughout
// msx as the identity of contract types, property value types, and schema
// cache keys.
//
// A ModelType pairs a raw reflect.Type with an ordered list of type-argument
// descriptors derived from the type's container structure:
//
//   - ptr/slice/array/chan T  -> one argument: T
//   - map[K]V                 -> two arguments: K, V
//   - everything else         -> no arguments
//
// Decomposition is recursive, so a map[string][]int carries the full
// parameterization down to the leaves. Two ModelTypes are equal iff their
// raw types are identical and all arguments are equal recursively; a
// list-of-string property and a list-of-int property therefore produce
// distinct descriptors and distinct schema cache entries.
package modeltype

import (
	"path"
	"reflect"
	"strings"
)

// ModelType is an immutable descriptor of a (possibly parameterized)
// contract or value type. The zero ModelType describes no type; see IsZero.
type ModelType struct {
	// raw is the underlying reflect.Type identity.
	raw reflect.Type
	// args are the ordered type-argument descriptors derived from raw.
	args []ModelType
}

// Of builds the ModelType for t, decomposing container kinds into
// type arguments recursively. A nil t yields the zero ModelType.
func Of(t reflect.Type) ModelType {
	return of(t, nil)
}

// For builds the ModelType for the type parameter T without requiring a
// value of T. It works for interface types as well as concrete types.
func For[T any]() ModelType {
	return Of(reflect.TypeOf((*T)(nil)).Elem())
}

// of builds the descriptor for t; seen tracks the container types currently
// being decomposed on this path.
func of(t reflect.Type, seen []reflect.Type) ModelType {
	if t == nil {
		return ModelType{}
	}
	return ModelType{raw: t, args: decompose(t, seen)}
}

// decompose derives the ordered type arguments for t. A type already being
// decomposed terminates its argument list, keeping self-referential
// containers (type S []S) finite.
func decompose(t reflect.Type, seen []reflect.Type) []ModelType {
	for _, s := range seen {
		if s == t {
			return nil
		}
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Chan:
		seen = append(seen, t)
		return []ModelType{of(t.Elem(), seen)}
	case reflect.Map:
		seen = append(seen, t)
		return []ModelType{of(t.Key(), seen), of(t.Elem(), seen)}
	default:
		return nil
	}
}

// Raw returns the underlying reflect.Type, or nil for the zero ModelType.
func (m ModelType) Raw() reflect.Type {
	return m.raw
}

// TypeArgs returns a copy of the ordered type-argument descriptors.
func (m ModelType) TypeArgs() []ModelType {
	if len(m.args) == 0 {
		return nil
	}
	out := make([]ModelType, len(m.args))
	copy(out, m.args)
	return out
}

// IsZero reports whether m describes no type.
func (m ModelType) IsZero() bool {
	return m.raw == nil
}

// IsContract reports whether m describes a contract type: a non-empty
// interface type. The empty interface carries no accessors and is treated
// as a plain value type.
func (m ModelType) IsContract() bool {
	return m.raw != nil && m.raw.Kind() == reflect.Interface && m.raw.NumMethod() > 0
}

// Equal reports whether m and o describe the same type, comparing raw type
// identity and all type arguments recursively.
func (m ModelType) Equal(o ModelType) bool {
	if m.raw != o.raw {
		return false
	}
	if len(m.args) != len(o.args) {
		return false
	}
	for i := range m.args {
		if !m.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

// Key returns the canonical key string for m, suitable as a map key. The
// rendering is fully qualified and recursive, so distinct parameterizations
// of a container type never collide.
func (m ModelType) Key() string {
	if m.raw == nil {
		return ""
	}
	var b strings.Builder
	m.writeKey(&b)
	return b.String()
}

// writeKey renders m's canonical key into b.
func (m ModelType) writeKey(b *strings.Builder) {
	if p := m.raw.PkgPath(); p != "" {
		b.WriteString(p)
		b.WriteByte('.')
		b.WriteString(m.raw.Name())
	} else {
		// Unnamed or builtin: reflect's own rendering is canonical.
		b.WriteString(m.raw.String())
	}
	if len(m.args) > 0 {
		b.WriteByte('[')
		for i, a := range m.args {
			if i > 0 {
				b.WriteByte(',')
			}
			a.writeKey(b)
		}
		b.WriteByte(']')
	}
}

// String returns a short display name for m: "pkg.Type" for named types
// (package base only), reflect's rendering otherwise. This is the name used
// in every diagnostic that must identify the contract type.
func (m ModelType) String() string {
	if m.raw == nil {
		return "<none>"
	}
	name := m.raw.Name()
	if name == "" {
		return m.raw.String()
	}
	name = stripTypeParams(name)
	if p := m.raw.PkgPath(); p != "" {
		return path.Base(p) + "." + name
	}
	return name
}

// stripTypeParams removes generic instantiation suffix: "T[int]" -> "T".
func stripTypeParams(s string) string {
	if i := strings.IndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}
