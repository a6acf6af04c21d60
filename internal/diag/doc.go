// Package diag defines the diagnostic model shared by the reader, the fixture
// resolver and the lowering pass.
//
// Producers emit through a Reporter, usually via ReportError/ReportWarning and
// the ReportBuilder chain, so they never depend on storage. BagReporter
// aggregates into a Bag which supports a cap, sorting and deduplication.
// Rendering for golden files and the CLI lives in golden.go.
//
// Codes are grouped in ranges: LEX 1000, SYN 2000, RES 3000, LOW 4000, IO 5000.
package diag
