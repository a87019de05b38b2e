// Package trace records span events for the abigen pipeline.
//
// Spans mark the coarse stages of a run (load, typeck, one defgraph and
// one plan span per target) and are written either immediately to a stream
// or kept in a bounded ring for post-mortem dumps.
//
//	abigen plan --trace=- --trace-level=detail abi.toml
//
// Tracers travel through the pipeline via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "typeck", 0)
//	defer span.End("")
package trace
