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

package apis

// State is the external storage behind a generated managed instance.
//
// # Overview
//
// Every managed property of a generated instance reads and writes through
// exactly one State value supplied at instance construction. The instance
// owns no property storage of its own; the State's lifetime MUST exceed the
// instance's.
//
// # Contract
//
//   - Get and Set address properties by their schema name (e.g. "name",
//     never "GetName"). The core performs no name translation beyond that.
//   - Implementations MAY assume single-writer usage unless they document
//     otherwise; the core neither locks a State nor assumes atomicity of
//     Get/Set pairs. No compound managed-property operation is atomic.
//   - BackingNode and DisplayName feed the generated instance's identity
//     contract (Equal/Hash and String respectively) and MUST be stable for
//     the lifetime of the State.
type State interface {
	// Get returns the stored value for the named property.
	Get(property string) any
	// Set stores the value for the named property.
	Set(property string, value any)
	// BackingNode returns the identity object for this state.
	BackingNode() Node
	// DisplayName returns the human-readable name for this state.
	DisplayName() string
}

// Node is the identity object a State exposes.
//
// The core never interprets a Node's contents: it only forwards equality
// and hashing to implement the generated instance's identity contract.
// Implementations MUST keep Equal and Hash consistent with the value
// semantics of the host's identity domain (two nodes that are Equal MUST
// report the same Hash).
type Node interface {
	// Equal reports whether other denotes the same identity.
	Equal(other Node) bool
	// Hash returns the identity's hash code.
	Hash() uint64
}
