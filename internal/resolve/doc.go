// Package resolve holds the name-resolution answers the lowering stage
// consumes: path resolutions, region outcomes and the definition table.
//
// Resolver is the contract lowering depends on. Table is the in-memory
// implementation, and Collect fills a Table from a parsed crate with a
// deliberately small lexical resolver.
package resolve
