// Package mock provides test doubles for the ai package interfaces.
//
// The doubles default to deterministic behavior so tests are repeatable
// without external services. Custom behavior is injected via function
// fields, and call counts support interaction assertions.
package mock
