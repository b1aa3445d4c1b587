// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chunk

import "errors"

// Config holds tuning parameters for the chunking engine.
// Values are read once at construction; a Chunker never consults ambient state.
type Config struct {
	// ChunkSize is the token budget for a single chunk, heading context
	// included, overlap excluded.
	ChunkSize int

	// ChunkOverlap is the total overlap token budget. Each chunk receives up
	// to ChunkOverlap/2 tokens from its predecessor and ChunkOverlap/2 from
	// its successor.
	ChunkOverlap int

	// TOCMinContent is the minimum content length (in characters, after
	// stripping dot leaders and page-number tokens) for a section to survive
	// the table-of-contents filter. A tuned heuristic, not an exact bound.
	TOCMinContent int

	// OverviewMinRegisters is the minimum number of distinct register-like
	// identifiers for a chunk to classify as an overview.
	OverviewMinRegisters int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithChunkSize sets the per-chunk token budget.
func WithChunkSize(size int) ConfigOption {
	return func(c *Config) {
		c.ChunkSize = size
	}
}

// WithChunkOverlap sets the total overlap token budget.
func WithChunkOverlap(overlap int) ConfigOption {
	return func(c *Config) {
		c.ChunkOverlap = overlap
	}
}

// WithTOCMinContent sets the table-of-contents filter threshold.
func WithTOCMinContent(chars int) ConfigOption {
	return func(c *Config) {
		c.TOCMinContent = chars
	}
}

// WithOverviewMinRegisters sets the overview classification threshold.
func WithOverviewMinRegisters(count int) ConfigOption {
	return func(c *Config) {
		c.OverviewMinRegisters = count
	}
}

// DefaultConfig returns a Config with the defaults tuned for technical
// reference manuals.
func DefaultConfig() Config {
	return Config{
		ChunkSize:            500,
		ChunkOverlap:         50,
		TOCMinContent:        50,
		OverviewMinRegisters: 4,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return errors.New("chunk config: ChunkSize must be positive")
	}
	if c.ChunkOverlap < 0 {
		return errors.New("chunk config: ChunkOverlap must not be negative")
	}
	if c.TOCMinContent < 0 {
		return errors.New("chunk config: TOCMinContent must not be negative")
	}
	if c.OverviewMinRegisters < 1 {
		return errors.New("chunk config: OverviewMinRegisters must be at least 1")
	}
	return nil
}
