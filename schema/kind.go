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

package schema

import "fmt"

// ManagementKind classifies how a property's value is managed.
type ManagementKind int

const (
	// Managed properties delegate their storage entirely to the external
	// state supplied at instance construction; the generated implementation
	// holds no field for them.
	Managed ManagementKind = iota
	// Unmanaged properties are declared on a supertype contract whose
	// storage this schema does not own; they are expected to be satisfied
	// by an attached delegate or otherwise provided by the caller.
	Unmanaged
	// Delegated properties are like Unmanaged, but the generator emits
	// forwarding accessors that call through to the attached delegate's
	// own accessors.
	Delegated
)

// String returns the string representation of the management kind.
func (k ManagementKind) String() string {
	switch k {
	case Managed:
		return "managed"
	case Unmanaged:
		return "unmanaged"
	case Delegated:
		return "delegated"
	default:
		return "unknown"
	}
}

// ParseManagementKind converts a string to a ManagementKind.
func ParseManagementKind(s string) (ManagementKind, error) {
	switch s {
	case "managed":
		return Managed, nil
	case "unmanaged":
		return Unmanaged, nil
	case "delegated":
		return Delegated, nil
	default:
		return 0, fmt.Errorf("msx(schema): unknown management kind %q", s)
	}
}

// Kind classifies a schema as a whole.
type Kind int

const (
	// ValueKind marks schemas of primitive and plain value types. They
	// carry no properties and exist so value-typed lookups are total.
	ValueKind Kind = iota
	// StructKind marks schemas of contract types with extracted,
	// classified properties.
	StructKind
)

// String returns the string representation of the schema kind.
func (k Kind) String() string {
	switch k {
	case ValueKind:
		return "value"
	case StructKind:
		return "struct"
	default:
		return "unknown"
	}
}
