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

// Package schema defines the extracted, classified property model of a
// contract type: the Schema owning an ordered, name-unique collection of
// Property descriptors, each classified by management kind.
//
// Schemas are created by the extractor on first request for a type,
// immutable thereafter, and owned by the schema cache for the remainder of
// process life (or until explicit clear).
package schema

import (
	"errors"
	"fmt"

	"dirpx.dev/msx/modeltype"
)

var (
	// ErrDuplicateProperty indicates two properties sharing one name.
	ErrDuplicateProperty = errors.New("msx(schema): duplicate property name")
	// ErrNoProperty indicates a lookup for a property the schema lacks.
	ErrNoProperty = errors.New("msx(schema): no such property")
)

// Property describes one extracted property of a contract type.
// Properties are immutable after construction.
type Property struct {
	// name is the property name, unique within its schema.
	name string
	// typ is the declared value type.
	typ modeltype.ModelType
	// kind is the management classification.
	kind ManagementKind
	// writable reports whether a matching setter was declared.
	writable bool
}

// NewProperty constructs an immutable property descriptor.
func NewProperty(name string, typ modeltype.ModelType, kind ManagementKind, writable bool) *Property {
	return &Property{name: name, typ: typ, kind: kind, writable: writable}
}

// Name returns the property name.
func (p *Property) Name() string { return p.name }

// Type returns the declared value type.
func (p *Property) Type() modeltype.ModelType { return p.typ }

// Kind returns the management classification.
func (p *Property) Kind() ManagementKind { return p.kind }

// Writable reports whether the property has a setter.
func (p *Property) Writable() bool { return p.writable }

// Schema is the extracted property set of one ModelType.
type Schema struct {
	// typ is the owning contract or value type.
	typ modeltype.ModelType
	// kind classifies the schema (value or struct).
	kind Kind
	// props holds the properties in declaration order.
	props []*Property
	// byName indexes props for lookup.
	byName map[string]*Property
}

// NewValue constructs the schema of a primitive or plain value type.
// Value schemas carry no properties.
func NewValue(typ modeltype.ModelType) *Schema {
	return &Schema{typ: typ, kind: ValueKind, byName: map[string]*Property{}}
}

// NewStruct constructs the schema of a contract type from its ordered
// properties. It fails if two properties share a name.
func NewStruct(typ modeltype.ModelType, props []*Property) (*Schema, error) {
	s := &Schema{
		typ:    typ,
		kind:   StructKind,
		props:  make([]*Property, 0, len(props)),
		byName: make(map[string]*Property, len(props)),
	}
	for _, p := range props {
		if _, ok := s.byName[p.name]; ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateProperty, typ, p.name)
		}
		s.props = append(s.props, p)
		s.byName[p.name] = p
	}
	return s, nil
}

// Type returns the owning ModelType.
func (s *Schema) Type() modeltype.ModelType { return s.typ }

// Kind returns the schema kind.
func (s *Schema) Kind() Kind { return s.kind }

// Properties returns a snapshot of the properties in declaration order.
func (s *Schema) Properties() []*Property {
	out := make([]*Property, len(s.props))
	copy(out, s.props)
	return out
}

// Property returns the named property, if declared.
func (s *Schema) Property(name string) (*Property, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Len returns the number of properties.
func (s *Schema) Len() int { return len(s.props) }
