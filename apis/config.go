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

// Config carries read-only extraction knobs that influence how contract
// accessors are enumerated and paired. It is passed by value and should be
// treated as immutable by implementations.
type Config struct {
	// AcceptGetPrefix controls whether "GetX" methods are recognized as
	// getters in addition to the plain "X" form. Both derive property "x";
	// declaring both forms on one contract is a duplicate-property error.
	AcceptGetPrefix bool `yaml:"acceptGetPrefix"`
	// MaxNesting limits how deep the extractor follows properties whose
	// value types are themselves contract types. Acts as a safety guard
	// against pathological nesting.
	MaxNesting int `yaml:"maxNesting"`
}
