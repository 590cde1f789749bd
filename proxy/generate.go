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

// Package proxy generates concrete implementations of contract types from
// property extraction results.
//
// Go compiles ahead of time, so the generator does not synthesize a new
// named type; it produces an Implementation — a per-contract dispatch plan —
// whose Instances resolve property access by name. Managed properties read
// and write through the externally supplied apis.State; delegated properties
// and any extra delegate behavior forward to the attached delegate value.
// Exact accessor signatures, including primitive kinds and full
// type-argument parameterization, are preserved: Instance.Getter and
// Instance.Setter build typed func values carrying the contract accessor's
// own reflect.Type.
//
// Generation is a pure function of (contract, delegate type, results).
// Repeated calls with equal inputs produce interchangeable Implementations,
// so callers may memoize them keyed on (contract key, delegate type); the
// generator itself holds no cache.
//
// Every failure an Implementation or Instance reports names the contract
// type, never the synthesized machinery.
package proxy

import (
	"errors"
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"dirpx.dev/msx/apis"
	"dirpx.dev/msx/extract"
	"dirpx.dev/msx/modeltype"
	"dirpx.dev/msx/schema"
)

var (
	// ErrNotContract is returned when the generation target is not a
	// contract type.
	ErrNotContract = errors.New("msx(proxy): not a contract type")
	// ErrDelegateRequired indicates a non-managed property with no
	// delegate type supplied to satisfy it.
	ErrDelegateRequired = errors.New("msx(proxy): property requires a delegate")
	// ErrDelegateMismatch indicates a delegate type unable to satisfy a
	// non-managed property with signature-exact accessors.
	ErrDelegateMismatch = errors.New("msx(proxy): delegate cannot satisfy property")
	// ErrNilState is returned when a nil state is provided at construction.
	ErrNilState = errors.New("msx(proxy): nil state provided")
	// ErrDelegateMissing is returned when an implementation generated with
	// a delegate type is constructed without a delegate instance.
	ErrDelegateMissing = errors.New("msx(proxy): delegate instance required")
	// ErrNoDelegateType is returned when a delegate instance is supplied
	// to an implementation generated without a delegate type.
	ErrNoDelegateType = errors.New("msx(proxy): implementation takes no delegate")
	// ErrDelegateNotAssignable is returned when the supplied delegate
	// instance is not assignable to the declared delegate type.
	ErrDelegateNotAssignable = errors.New("msx(proxy): delegate instance not assignable")
)

// accessorPlan is the generated per-property dispatch entry.
type accessorPlan struct {
	// prop is the classified property descriptor.
	prop *schema.Property
	// getterType and setterType are the contract accessors' exact types.
	getterType reflect.Type
	setterType reflect.Type
	// delGetter/delSetter name the delegate accessors for forwarding
	// properties; empty for managed ones.
	delGetter string
	delSetter string
}

// forwarded reports whether the property calls through to the delegate.
func (p *accessorPlan) forwarded() bool {
	return p.delGetter != ""
}

// Implementation is a synthesized implementation type for one contract:
// an immutable dispatch plan shared by all of its instances.
type Implementation struct {
	// contract is the implemented contract type.
	contract modeltype.ModelType
	// delegateType is the declared delegate type, nil when absent.
	delegateType reflect.Type
	// props maps property names to their dispatch plans.
	props map[string]*accessorPlan
	// order preserves property declaration order.
	order []string
	// methods records delegate-only methods available for forwarding,
	// keyed by name, with the bound method signature expected at call time.
	methods map[string]reflect.Type
}

// Generate synthesizes the implementation type for contract from its
// property extraction results. delegateType may be nil; when present,
// instances are constructed from a state plus a delegate assignable to it,
// and every unmanaged or delegated property must be satisfiable by it with
// signature-exact accessors. Generation is all-or-nothing: on error no
// implementation type is produced.
func Generate(contract modeltype.ModelType, delegateType reflect.Type, results []extract.PropertyResult) (*Implementation, error) {
	if !contract.IsContract() {
		return nil, fmt.Errorf("%w: %s", ErrNotContract, contract)
	}

	im := &Implementation{
		contract:     contract,
		delegateType: delegateType,
		props:        make(map[string]*accessorPlan, len(results)),
		order:        make([]string, 0, len(results)),
	}

	// accessors collects delegate method names consumed by forwarding
	// properties, so they are not also exposed as extra behavior.
	accessors := make(map[string]bool)

	for _, r := range results {
		p := r.Property
		plan := &accessorPlan{
			prop:       p,
			getterType: r.Getter.Type,
		}
		if r.HasSetter {
			plan.setterType = r.Setter.Type
		}

		if p.Kind() != schema.Managed {
			if delegateType == nil {
				return nil, fmt.Errorf("%w: %s property %q is %s and no delegate type was given",
					ErrDelegateRequired, contract, p.Name(), p.Kind())
			}
			if err := bindDelegate(plan, delegateType, contract); err != nil {
				return nil, err
			}
			accessors[plan.delGetter] = true
			if plan.delSetter != "" {
				accessors[plan.delSetter] = true
			}
		}

		im.props[p.Name()] = plan
		im.order = append(im.order, p.Name())
	}

	// Record delegate-only methods for unchanged forwarding.
	if delegateType != nil {
		im.methods = make(map[string]reflect.Type)
		for i := 0; i < delegateType.NumMethod(); i++ {
			m := delegateType.Method(i)
			if accessors[m.Name] {
				continue
			}
			im.methods[m.Name] = boundType(delegateType, m)
		}
	}

	return im, nil
}

// bindDelegate resolves the delegate accessors backing a forwarding
// property, requiring exact signature agreement with the contract.
func bindDelegate(plan *accessorPlan, delegateType reflect.Type, contract modeltype.ModelType) error {
	p := plan.prop
	base := accessorBase(p.Name())
	out := p.Type().Raw()

	getter := ""
	for _, name := range []string{base, "Get" + base} {
		m, ok := delegateType.MethodByName(name)
		if !ok {
			continue
		}
		bt := boundType(delegateType, m)
		if bt.NumIn() == 0 && bt.NumOut() == 1 && bt.Out(0) == out {
			getter = name
			break
		}
	}
	if getter == "" {
		return fmt.Errorf("%w: %s property %q has no getter on %s",
			ErrDelegateMismatch, contract, p.Name(), delegateType)
	}
	plan.delGetter = getter

	if p.Writable() {
		name := "Set" + base
		m, ok := delegateType.MethodByName(name)
		if !ok {
			return fmt.Errorf("%w: %s property %q has no setter on %s",
				ErrDelegateMismatch, contract, p.Name(), delegateType)
		}
		bt := boundType(delegateType, m)
		if bt.NumIn() != 1 || bt.NumOut() != 0 || bt.In(0) != out {
			return fmt.Errorf("%w: %s property %q setter signature disagrees on %s",
				ErrDelegateMismatch, contract, p.Name(), delegateType)
		}
		plan.delSetter = name
	}
	return nil
}

// boundType returns m's signature as seen on a bound method value: for
// concrete delegate types the receiver argument is stripped.
func boundType(delegateType reflect.Type, m reflect.Method) reflect.Type {
	mt := m.Type
	if delegateType.Kind() == reflect.Interface {
		return mt
	}
	in := make([]reflect.Type, 0, mt.NumIn()-1)
	for i := 1; i < mt.NumIn(); i++ {
		in = append(in, mt.In(i))
	}
	out := make([]reflect.Type, 0, mt.NumOut())
	for i := 0; i < mt.NumOut(); i++ {
		out = append(out, mt.Out(i))
	}
	return reflect.FuncOf(in, out, mt.IsVariadic())
}

// Contract returns the implemented contract type.
func (im *Implementation) Contract() modeltype.ModelType {
	return im.contract
}

// DelegateType returns the declared delegate type, nil when absent.
func (im *Implementation) DelegateType() reflect.Type {
	return im.delegateType
}

// PropertyNames returns the implemented property names in declaration order.
func (im *Implementation) PropertyNames() []string {
	out := make([]string, len(im.order))
	copy(out, im.order)
	return out
}

// New constructs an instance backed by state. It fails if the
// implementation was generated with a delegate type; use NewWithDelegate.
func (im *Implementation) New(state apis.State) (*Instance, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilState, im.contract)
	}
	if im.delegateType != nil {
		return nil, fmt.Errorf("%w: %s", ErrDelegateMissing, im.contract)
	}
	return &Instance{impl: im, state: state}, nil
}

// NewWithDelegate constructs an instance backed by state and delegate.
// The delegate must be assignable to the declared delegate type.
func (im *Implementation) NewWithDelegate(state apis.State, delegate any) (*Instance, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilState, im.contract)
	}
	if im.delegateType == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDelegateType, im.contract)
	}
	if delegate == nil {
		return nil, fmt.Errorf("%w: %s", ErrDelegateMissing, im.contract)
	}
	dv := reflect.ValueOf(delegate)
	if !dv.Type().AssignableTo(im.delegateType) {
		return nil, fmt.Errorf("%w: %s (got %s, want %s)",
			ErrDelegateNotAssignable, im.contract, dv.Type(), im.delegateType)
	}
	return &Instance{impl: im, state: state, delegate: dv}, nil
}

// accessorBase derives the accessor method base from a property name:
// "name" -> "Name", acronym names stay as-is.
func accessorBase(property string) string {
	r, size := utf8.DecodeRuneInString(property)
	if size == 0 || unicode.IsUpper(r) {
		return property
	}
	return string(unicode.ToUpper(r)) + property[size:]
}
