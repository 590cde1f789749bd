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

import (
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Description is the plain, serializable mirror of a Schema, suitable for
// diagnostics, documentation, and snapshotting. It enumerates the schema's
// properties and nothing more; reflect.Type identities are rendered as
// display names.
type Description struct {
	// Type is the owning type's display name.
	Type string `json:"type" yaml:"type"`
	// Kind is the schema kind ("value" or "struct").
	Kind string `json:"kind" yaml:"kind"`
	// Properties lists the property rows in declaration order.
	Properties []PropertyDescription `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// PropertyDescription is one property row of a Description.
type PropertyDescription struct {
	// Name is the property name.
	Name string `json:"name" yaml:"name"`
	// Type is the declared value type's display name.
	Type string `json:"type" yaml:"type"`
	// Kind is the management kind ("managed", "unmanaged", "delegated").
	Kind string `json:"kind" yaml:"kind"`
	// Writable reports whether the property has a setter.
	Writable bool `json:"writable" yaml:"writable"`
}

// Describe renders s into its serializable Description.
func Describe(s *Schema) Description {
	d := Description{
		Type: s.Type().String(),
		Kind: s.Kind().String(),
	}
	for _, p := range s.props {
		d.Properties = append(d.Properties, PropertyDescription{
			Name:     p.Name(),
			Type:     p.Type().String(),
			Kind:     p.Kind().String(),
			Writable: p.Writable(),
		})
	}
	return d
}

// ToJSON serializes the description to JSON bytes.
func (d Description) ToJSON() ([]byte, error) {
	return json.Marshal(d)
}

// ToYAML serializes the description to YAML bytes.
func (d Description) ToYAML() ([]byte, error) {
	return yaml.Marshal(d)
}
