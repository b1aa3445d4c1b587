// Copyright 2026 Poiesic Systems
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


// Package storage defines the persistence abstractions for Refdex.
//
// The central interface is ChunkRepository, which stores embedded chunk
// records and answers vector similarity queries over them. Implementations
// must be thread-safe. The package also provides the MUS serialization
// helpers shared by all backends.
//
// The only production backend lives in storage/badger. Tests should use
// badger.NewMemoryRepository, which runs entirely in memory.
package storage
