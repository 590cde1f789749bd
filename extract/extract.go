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

// Package extract walks the declared property accessors of a contract type
// and produces its schema: an ordered, name-unique collection of classified
// property descriptors.
//
// A contract type is a non-empty Go interface. Its accessors follow the
// pairing rules:
//
//   - getter: a niladic method with exactly one result, named "X" (or
//     "GetX" when the config accepts the Get prefix); derives property "x".
//   - setter: a method "SetX" taking exactly one argument with no results.
//
// A setter with no matching getter, a getter/setter pair whose types
// disagree, two accessors deriving one property name, and any other method
// shape are extraction errors. Extraction is all-or-nothing: every problem
// found on a contract is reported in one aggregated error naming the
// contract type and each offending property, and nothing is cached.
package extract

import (
	"errors"
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"dirpx.dev/rxmerr"

	"dirpx.dev/msx/apis"
	"dirpx.dev/msx/config"
	"dirpx.dev/msx/modeltype"
	"dirpx.dev/msx/schema"
)

var (
	// ErrNotContract is returned when a struct schema is requested for a
	// type that is not a non-empty interface type.
	ErrNotContract = errors.New("msx(extract): not a contract type")
	// ErrOrphanSetter indicates a setter with no matching getter.
	ErrOrphanSetter = errors.New("msx(extract): setter with no matching getter")
	// ErrTypeMismatch indicates a getter/setter pair whose types disagree.
	ErrTypeMismatch = errors.New("msx(extract): getter and setter types disagree")
	// ErrDuplicateProperty indicates two accessors deriving one property name.
	ErrDuplicateProperty = errors.New("msx(extract): duplicate property name")
	// ErrInvalidAccessor indicates a method with an unsupported shape.
	ErrInvalidAccessor = errors.New("msx(extract): unsupported accessor shape")
	// ErrNestingTooDeep indicates nested contract properties beyond the
	// configured MaxNesting guard.
	ErrNestingTooDeep = errors.New("msx(extract): contract nesting too deep")
)

// New constructs an Extractor using cfg and policy. A nil policy defaults
// to ManagedPolicy; a non-positive MaxNesting resets to the default.
func New(cfg apis.Config, policy apis.Policy) *Extractor {
	if policy == nil {
		policy = ManagedPolicy()
	}
	if cfg.MaxNesting <= 0 {
		cfg.MaxNesting = config.DefaultMaxNesting
	}
	return &Extractor{cfg: cfg, policy: policy, inFlight: make(map[string]bool)}
}

// Extractor produces schemas for contract types. Extraction is idempotent
// and side-effect-free apart from cache insertion, making memoization safe.
// Not safe for unsynchronized concurrent use.
type Extractor struct {
	// cfg carries the accessor-enumeration knobs.
	cfg apis.Config
	// policy classifies properties by management kind.
	policy apis.Policy
	// inFlight tracks types currently being extracted, guarding recursive
	// resolution of nested contract properties against cycles.
	inFlight map[string]bool
}

// Ensure Extractor implements apis.Extractor.
var _ apis.Extractor = (*Extractor)(nil)

// Extract returns the schema for t, consulting c first and inserting into c
// on success. Property value types that are themselves contract types are
// resolved recursively through st, so nested managed structures get their
// own cache entries.
func (x *Extractor) Extract(t modeltype.ModelType, st apis.Store, c apis.Cache) (*schema.Schema, error) {
	if s, ok := c.Get(t); ok {
		return s, nil
	}
	if t.IsZero() {
		return nil, fmt.Errorf("%w: no type", ErrNotContract)
	}
	if !t.IsContract() {
		// Primitive and plain value types carry no accessors.
		s := schema.NewValue(t)
		c.Put(t, s)
		return s, nil
	}

	results, err := Properties(t, x.cfg, x.policy)
	if err != nil {
		return nil, err
	}

	key := t.Key()
	x.inFlight[key] = true
	defer delete(x.inFlight, key)

	props := make([]*schema.Property, 0, len(results))
	for _, r := range results {
		if err := x.resolveNested(t, r.Property, st); err != nil {
			return nil, err
		}
		props = append(props, r.Property)
	}

	s, err := schema.NewStruct(t, props)
	if err != nil {
		return nil, err
	}
	c.Put(t, s)
	return s, nil
}

// resolveNested extracts the schema of p's value type when that type is
// itself a contract. Types already being extracted are skipped: the nested
// schema stays obtainable later through its own store lookup, and skipping
// keeps cyclic contracts extractable.
func (x *Extractor) resolveNested(owner modeltype.ModelType, p *schema.Property, st apis.Store) error {
	vt := p.Type()
	if !vt.IsContract() {
		return nil
	}
	if x.inFlight[vt.Key()] {
		return nil
	}
	if len(x.inFlight) > x.cfg.MaxNesting {
		return fmt.Errorf("%w: %s property %q", ErrNestingTooDeep, owner, p.Name())
	}
	if _, err := st.GetSchema(vt); err != nil {
		return fmt.Errorf("%s property %q: %w", owner, p.Name(), err)
	}
	return nil
}

// PropertyResult pairs a property descriptor with the accessor methods used
// to derive it. Results are consumed by the proxy generator and are not part
// of the schema's public surface.
type PropertyResult struct {
	// Property is the derived descriptor.
	Property *schema.Property
	// Getter is the mandatory getter accessor.
	Getter reflect.Method
	// Setter is the setter accessor; valid only when HasSetter is true.
	Setter reflect.Method
	// HasSetter reports whether a setter was declared.
	HasSetter bool
}

// Properties enumerates, pairs, and classifies the declared property
// accessors of contract type t. The result order follows the interface
// method set order (alphabetical per Go reflection), making derivation
// deterministic. All problems found on t are aggregated into one error.
func Properties(t modeltype.ModelType, cfg apis.Config, policy apis.Policy) ([]PropertyResult, error) {
	if !t.IsContract() {
		return nil, fmt.Errorf("%w: %s", ErrNotContract, t)
	}
	if policy == nil {
		policy = ManagedPolicy()
	}

	raw := t.Raw()
	problems := rxmerr.NewCollector()

	var order []string
	getters := make(map[string]*PropertyResult)
	setters := make(map[string]reflect.Method)

	for i := 0; i < raw.NumMethod(); i++ {
		m := raw.Method(i)
		mt := m.Type
		switch {
		case isSetterName(m.Name):
			if mt.NumIn() != 1 || mt.NumOut() != 0 || mt.IsVariadic() {
				problems.Append(fmt.Errorf("%w: %s.%s", ErrInvalidAccessor, t, m.Name))
				continue
			}
			base := m.Name[len("Set"):]
			if prev, dup := setters[base]; dup {
				problems.Append(fmt.Errorf("%w: %s.%s (%s and %s)", ErrDuplicateProperty, t, propertyName(base), prev.Name, m.Name))
				continue
			}
			setters[base] = m

		case mt.NumIn() == 0 && mt.NumOut() == 1:
			base := getterBase(m.Name, cfg)
			name := propertyName(base)
			if prev, dup := getters[base]; dup {
				problems.Append(fmt.Errorf("%w: %s.%s (%s and %s)", ErrDuplicateProperty, t, name, prev.Getter.Name, m.Name))
				continue
			}
			getters[base] = &PropertyResult{Getter: m}
			order = append(order, base)

		default:
			problems.Append(fmt.Errorf("%w: %s.%s", ErrInvalidAccessor, t, m.Name))
		}
	}

	// Pair setters with their getters.
	for base, sm := range setters {
		g, ok := getters[base]
		if !ok {
			problems.Append(fmt.Errorf("%w: %s.%s (%s)", ErrOrphanSetter, t, propertyName(base), sm.Name))
			continue
		}
		if g.Getter.Type.Out(0) != sm.Type.In(0) {
			problems.Append(fmt.Errorf("%w: %s.%s (%s returns %s, %s takes %s)",
				ErrTypeMismatch, t, propertyName(base),
				g.Getter.Name, g.Getter.Type.Out(0),
				sm.Name, sm.Type.In(0)))
			continue
		}
		g.Setter = sm
		g.HasSetter = true
	}

	if err := problems.Err(); err != nil {
		return nil, fmt.Errorf("msx(extract): invalid contract type %s: %w", t, err)
	}

	results := make([]PropertyResult, 0, len(order))
	for _, base := range order {
		g := getters[base]
		name := propertyName(base)
		vt := modeltype.Of(g.Getter.Type.Out(0))
		kind := policy.Classify(t, name, vt)
		g.Property = schema.NewProperty(name, vt, kind, g.HasSetter)
		results = append(results, *g)
	}
	return results, nil
}

// isSetterName reports whether name has the "SetX" accessor form.
func isSetterName(name string) bool {
	return len(name) > len("Set") && name[:3] == "Set" && startsUpper(name[3:])
}

// getterBase strips an accepted "Get" prefix from a getter name.
func getterBase(name string, cfg apis.Config) string {
	if cfg.AcceptGetPrefix && len(name) > len("Get") && name[:3] == "Get" && startsUpper(name[3:]) {
		return name[len("Get"):]
	}
	return name
}

// startsUpper reports whether s begins with an uppercase rune.
func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// accessorBase is the inverse of propertyName: "name" -> "Name", while
// acronym property names are kept as-is ("URL" -> "URL").
func accessorBase(property string) string {
	r, size := utf8.DecodeRuneInString(property)
	if size == 0 || unicode.IsUpper(r) {
		return property
	}
	return string(unicode.ToUpper(r)) + property[size:]
}

// propertyName derives the property name from an accessor base: the first
// rune is lowered unless the base opens with a multi-rune acronym, which is
// kept as-is ("URL" -> "URL", "Name" -> "name").
func propertyName(base string) string {
	r, size := utf8.DecodeRuneInString(base)
	if size == 0 || !unicode.IsUpper(r) {
		return base
	}
	if next, _ := utf8.DecodeRuneInString(base[size:]); unicode.IsUpper(next) {
		return base
	}
	return string(unicode.ToLower(r)) + base[size:]
}
