// Package services implements the driving port interfaces: the
// ingestion coordinator, the analysis pipeline, the index builder,
// the integrity checker and search. Services orchestrate calls to
// driven ports (adapters) and hold the pipeline's business rules.
package services
