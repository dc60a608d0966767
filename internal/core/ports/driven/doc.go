// Package driven defines the interfaces the core services depend on:
// source adapters, the fetch client, persistent stores and the OCR
// engine. Adapters under internal/adapters and internal/sources
// implement them.
package driven
