// Package file provides the TOML-backed settings store. Every tunable
// heuristic threshold in the pipeline lives here rather than in code:
// classification cutoffs, OCR DPI bands, backoff parameters and run
// limits.
package file
