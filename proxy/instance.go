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

package proxy

import (
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/msx/apis"
	"dirpx.dev/msx/modeltype"
)

var (
	// ErrUnknownProperty is returned for access to a property the
	// contract does not declare.
	ErrUnknownProperty = errors.New("msx(proxy): unknown property")
	// ErrUnknownMethod is returned for invocation of a method neither the
	// contract nor the delegate declares.
	ErrUnknownMethod = errors.New("msx(proxy): unknown method")
	// ErrReadOnlyProperty is returned for writes to a property with no
	// setter.
	ErrReadOnlyProperty = errors.New("msx(proxy): property is read-only")
	// ErrIncompatibleValue is returned when a value does not match the
	// property's declared type.
	ErrIncompatibleValue = errors.New("msx(proxy): incompatible value")
	// ErrIncompatibleArgs is returned for an invocation whose arguments do
	// not match the forwarded method's signature.
	ErrIncompatibleArgs = errors.New("msx(proxy): incompatible arguments")
)

// Instance is a live managed instance of a generated implementation type.
// All managed-property state lives in the externally owned state object,
// whose lifetime must exceed the instance's; the instance itself owns no
// shared mutable state.
type Instance struct {
	// impl is the shared dispatch plan.
	impl *Implementation
	// state backs every managed property and supplies identity.
	state apis.State
	// delegate receives forwarded properties and extra behavior.
	// Invalid when the implementation has no delegate type.
	delegate reflect.Value
}

// Ensure Instance satisfies the managed-instance capability.
var _ apis.ManagedInstance = (*Instance)(nil)

// ManagedType returns the contract type this instance implements.
func (in *Instance) ManagedType() modeltype.ModelType {
	return in.impl.contract
}

// BackingNode returns the identity object of the instance's state.
func (in *Instance) BackingNode() apis.Node {
	return in.state.BackingNode()
}

// Get returns the named property's value: from the state for managed
// properties, through the delegate's own getter for forwarded ones.
func (in *Instance) Get(name string) (any, error) {
	plan, ok := in.impl.props[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, in.impl.contract, name)
	}
	if plan.forwarded() {
		out := in.delegate.MethodByName(plan.delGetter).Call(nil)
		return out[0].Interface(), nil
	}
	return in.state.Get(name), nil
}

// Set stores the named property's value after checking it against the
// declared type; exact primitive kinds are preserved, so a set-then-get
// round trip yields a value equal to the original. Managed properties write
// to the state; forwarded ones call the delegate's setter, making side
// effects observable by reading the delegate directly.
func (in *Instance) Set(name string, value any) error {
	plan, ok := in.impl.props[name]
	if !ok {
		return fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, in.impl.contract, name)
	}
	if !plan.prop.Writable() {
		return fmt.Errorf("%w: %s.%s", ErrReadOnlyProperty, in.impl.contract, name)
	}

	declared := plan.prop.Type().Raw()
	rv := reflect.ValueOf(value)
	if value == nil {
		if !nilable(declared.Kind()) {
			return fmt.Errorf("%w: %s.%s cannot be nil (%s)", ErrIncompatibleValue, in.impl.contract, name, declared)
		}
		rv = reflect.Zero(declared)
	} else if !rv.Type().AssignableTo(declared) {
		return fmt.Errorf("%w: %s.%s (got %s, want %s)", ErrIncompatibleValue, in.impl.contract, name, rv.Type(), declared)
	}

	if plan.forwarded() {
		in.delegate.MethodByName(plan.delSetter).Call([]reflect.Value{rv})
		return nil
	}
	in.state.Set(name, value)
	return nil
}

// Getter returns the named property's getter as a typed func value whose
// reflect type is exactly the contract accessor's signature, generic type
// arguments and primitive kinds included.
func (in *Instance) Getter(name string) (any, error) {
	plan, ok := in.impl.props[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, in.impl.contract, name)
	}
	ret := plan.getterType.Out(0)
	fn := reflect.MakeFunc(plan.getterType, func([]reflect.Value) []reflect.Value {
		v, err := in.Get(name)
		if err != nil {
			panic(err)
		}
		if v == nil {
			return []reflect.Value{reflect.Zero(ret)}
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(ret) {
			// The state returned a value outside the declared type.
			panic(fmt.Errorf("%w: %s.%s (state holds %s, want %s)",
				ErrIncompatibleValue, in.impl.contract, name, rv.Type(), ret))
		}
		if rv.Type() != ret {
			rv = rv.Convert(ret)
		}
		return []reflect.Value{rv}
	})
	return fn.Interface(), nil
}

// Setter returns the named property's setter as a typed func value whose
// reflect type is exactly the contract accessor's signature. Read-only
// properties have no setter.
func (in *Instance) Setter(name string) (any, error) {
	plan, ok := in.impl.props[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, in.impl.contract, name)
	}
	if !plan.prop.Writable() {
		return nil, fmt.Errorf("%w: %s.%s", ErrReadOnlyProperty, in.impl.contract, name)
	}
	fn := reflect.MakeFunc(plan.setterType, func(args []reflect.Value) []reflect.Value {
		if err := in.Set(name, args[0].Interface()); err != nil {
			// Statically typed by the signature; only host bugs reach here.
			panic(err)
		}
		return nil
	})
	return fn.Interface(), nil
}

// Call forwards a delegate-declared method that is not part of any
// property. Results are returned unchanged; when the method's final result
// is an error it is split off and returned as Call's error, identical to
// the value the delegate produced. Panics raised by the delegate propagate
// to the caller unrecovered.
func (in *Instance) Call(method string, args ...any) ([]any, error) {
	mt, ok := in.impl.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no method %q", ErrUnknownMethod, in.impl.contract, method)
	}

	if mt.IsVariadic() {
		if len(args) < mt.NumIn()-1 {
			return nil, fmt.Errorf("%w: %s.%s takes at least %d arguments, got %d",
				ErrIncompatibleArgs, in.impl.contract, method, mt.NumIn()-1, len(args))
		}
	} else if len(args) != mt.NumIn() {
		return nil, fmt.Errorf("%w: %s.%s takes %d arguments, got %d",
			ErrIncompatibleArgs, in.impl.contract, method, mt.NumIn(), len(args))
	}

	call := make([]reflect.Value, len(args))
	for i, a := range args {
		want := argType(mt, i)
		if a == nil {
			if !nilable(want.Kind()) {
				return nil, fmt.Errorf("%w: %s.%s argument %d cannot be nil (%s)",
					ErrIncompatibleArgs, in.impl.contract, method, i, want)
			}
			call[i] = reflect.Zero(want)
			continue
		}
		rv := reflect.ValueOf(a)
		if !rv.Type().AssignableTo(want) {
			return nil, fmt.Errorf("%w: %s.%s argument %d (got %s, want %s)",
				ErrIncompatibleArgs, in.impl.contract, method, i, rv.Type(), want)
		}
		call[i] = rv
	}

	out := in.delegate.MethodByName(method).Call(call)

	results := make([]any, 0, len(out))
	for _, o := range out {
		results = append(results, o.Interface())
	}
	if n := len(results); n > 0 && mt.NumOut() > 0 && mt.Out(mt.NumOut()-1) == errorType {
		err, _ := results[n-1].(error)
		return results[:n-1], err
	}
	return results, nil
}

// Equal implements the identity contract: true for the same instance and
// for another instance of the same generated type (same contract, same
// delegate type) whose state reports an equal backing node; false otherwise,
// including for nil and unrelated types. It never panics.
func (in *Instance) Equal(other any) bool {
	o, ok := other.(*Instance)
	if !ok || o == nil {
		return false
	}
	if o == in {
		return true
	}
	if !in.impl.contract.Equal(o.impl.contract) {
		return false
	}
	if in.impl.delegateType != o.impl.delegateType {
		return false
	}
	a, b := in.state.BackingNode(), o.state.BackingNode()
	if a == nil || b == nil {
		return false
	}
	return a.Equal(b)
}

// Hash returns the hash of the state's backing node.
func (in *Instance) Hash() uint64 {
	n := in.state.BackingNode()
	if n == nil {
		return 0
	}
	return n.Hash()
}

// String returns the state's display name.
func (in *Instance) String() string {
	return in.state.DisplayName()
}

// errorType is the reflect type of the error interface.
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// argType returns the declared type of argument i, unrolling the variadic
// tail.
func argType(mt reflect.Type, i int) reflect.Type {
	if mt.IsVariadic() && i >= mt.NumIn()-1 {
		return mt.In(mt.NumIn() - 1).Elem()
	}
	return mt.In(i)
}

// nilable reports whether values of kind k can be nil.
func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	default:
		return false
	}
}
