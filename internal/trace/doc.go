// Package trace provides a tracing subsystem for the ferrule front end.
//
// The trace package enables tracking of compilation phases, per-crate lowering,
// and per-owner work. A ring tracer keeps the latest events so they can be
// dumped when lowering hits an internal error.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	ferrule lower --trace=- --trace-level=phase crate.yaml
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - NopTracer: Zero-overhead no-op tracer when disabled
//   - StreamTracer: Immediate write to output (file/stderr)
//   - RingTracer: Circular buffer for crash dumps
//   - MultiTracer: Combines multiple tracers
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: No tracing
//   - LevelError: Only crash dumps
//   - LevelPhase: Driver and pass boundaries
//   - LevelDetail: Crate-level events
//   - LevelDebug: Everything including HIR owners
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeDriver: Top-level CLI operations
//   - ScopePass: Driver passes (load, lower, validate, cache)
//   - ScopeCrate: Per-crate processing
//   - ScopeOwner: One HIR owner being lowered
//
// # Context Propagation
//
// Tracers travel through the driver in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.StartSpan(ctx, trace.ScopePass, "lower")
//	defer span.End("")
package trace
