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


// Package ai provides abstractions for the model services used in Refdex.
//
// This package defines interfaces for text embedding and candidate
// reranking. The core domain and business logic depend on these
// abstractions rather than on concrete API clients, so providers can be
// swapped per deployment.
//
// # Implementation Packages
//
//   - ai/openai: embeddings via OpenAI-compatible APIs (Ollama, vLLM, ...)
//   - ai/cohere: reranking via the Cohere v2 rerank API
//   - ai/tei: reranking via a local text-embeddings-inference server
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors (openai.NewEmbedder, cohere.NewReranker, ...) return
// interface types to enforce abstraction. Mock constructors return concrete
// types so tests can inject behavior and assert call counts.
package ai
