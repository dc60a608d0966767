// Package driving defines the interfaces through which the CLI invokes
// the core services: ingestion, extraction, index building, validation
// and search.
package driving
