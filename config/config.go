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

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"dirpx.dev/msx/apis"
)

const (
	// DefaultAcceptGetPrefix represents the default for AcceptGetPrefix.
	// When true, "GetX" methods are recognized as getters alongside "X".
	DefaultAcceptGetPrefix = true
	// DefaultMaxNesting represents the default for MaxNesting.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxNesting = 8
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxNesting is valid.
	if cfg.MaxNesting <= 0 {
		cfg.MaxNesting = DefaultMaxNesting
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		AcceptGetPrefix: DefaultAcceptGetPrefix,
		MaxNesting:      DefaultMaxNesting,
	}
}

// FromYAML decodes an apis.Config from YAML bytes. Knobs absent from the
// document keep their defaults; invalid values are normalized the same way
// NewConfig normalizes them.
func FromYAML(data []byte) (apis.Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return apis.Config{}, fmt.Errorf("msx(config): decode: %w", err)
	}
	if cfg.MaxNesting <= 0 {
		cfg.MaxNesting = DefaultMaxNesting
	}
	return cfg, nil
}

// ToYAML encodes cfg as YAML bytes.
func ToYAML(cfg apis.Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithAcceptGetPrefix sets the AcceptGetPrefix option.
func WithAcceptGetPrefix(accept bool) Option {
	return func(c *apis.Config) {
		c.AcceptGetPrefix = accept
	}
}

// WithMaxNesting sets the MaxNesting option.
// A non-positive value resets to the default.
func WithMaxNesting(max int) Option {
	return func(c *apis.Config) {
		if max <= 0 {
			c.MaxNesting = DefaultMaxNesting
			return
		}
		c.MaxNesting = max
	}
}
