// Package processor wires the configured producers, caches and exporters
// together. Both frontends (HTTP server and terminal UI) get their quiz
// sessions and deck exports from a Processor.
package processor
