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

import "dirpx.dev/msx/modeltype"

// ManagedInstance is the capability every generated instance exposes: the
// contract type it implements and the backing identity of its state.
//
// Store.GetInstanceSchema prefers this interface over the value's runtime
// type, so a generated instance self-reports the contract whose cache entry
// it belongs to. Host code MAY implement ManagedInstance on hand-written
// values to opt into the same schema lookup path.
type ManagedInstance interface {
	// ManagedType returns the contract type this instance implements.
	ManagedType() modeltype.ModelType
	// BackingNode returns the identity object of the instance's state.
	BackingNode() Node
}
