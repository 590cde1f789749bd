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

package extract

import (
	"reflect"

	"dirpx.dev/msx/apis"
	"dirpx.dev/msx/modeltype"
	"dirpx.dev/msx/schema"
)

// ManagedPolicy returns the default classification policy: every property
// is Managed, with storage owned by the external state.
func ManagedPolicy() apis.Policy {
	return apis.PolicyFunc(func(modeltype.ModelType, string, modeltype.ModelType) schema.ManagementKind {
		return schema.Managed
	})
}

// DelegatePolicy returns a policy that classifies a property Delegated when
// delegate declares a getter able to satisfy it, and Managed otherwise.
// Classification looks at the delegate's method set only; signature-exact
// satisfiability is enforced again at generation time.
func DelegatePolicy(delegate reflect.Type) apis.Policy {
	return apis.PolicyFunc(func(_ modeltype.ModelType, property string, value modeltype.ModelType) schema.ManagementKind {
		if delegate == nil {
			return schema.Managed
		}
		if hasGetter(delegate, property, value.Raw()) {
			return schema.Delegated
		}
		return schema.Managed
	})
}

// hasGetter reports whether t declares a getter for the named property
// returning exactly out. Both the plain and Get-prefixed forms are checked.
func hasGetter(t reflect.Type, property string, out reflect.Type) bool {
	base := accessorBase(property)
	for _, name := range []string{base, "Get" + base} {
		m, ok := t.MethodByName(name)
		if !ok {
			continue
		}
		mt := m.Type
		in := 0
		if t.Kind() != reflect.Interface {
			in = 1 // receiver
		}
		if mt.NumIn() == in && mt.NumOut() == 1 && mt.Out(0) == out {
			return true
		}
	}
	return false
}
