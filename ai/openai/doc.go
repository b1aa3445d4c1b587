// Package openai implements text embedding against OpenAI-compatible APIs.
//
// Any server speaking the OpenAI embeddings protocol works: the hosted
// OpenAI API, Ollama, LocalAI, vLLM. Local servers that skip
// authentication are handled by sending a placeholder token.
package openai
