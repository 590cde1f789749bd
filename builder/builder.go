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

package builder

import (
	"dirpx.dev/msx/apis"
	"dirpx.dev/msx/extract"
	"dirpx.dev/msx/store"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildStore builds and returns a new apis.Store for the provided
// configuration: a store with no normalizers around an extractor using the
// default Managed classification policy. The previous store's cache is
// deliberately not migrated; schemas extracted under an old configuration
// may pair accessors differently.
func (b *builder) BuildStore(cfg apis.Config, _ apis.Store, ext any) apis.Store {
	policy, _ := ext.(apis.Policy)
	if policy == nil {
		policy = extract.ManagedPolicy()
	}
	return store.New(extract.New(cfg, policy))
}
