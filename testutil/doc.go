// Package testutil provides testing utilities for rocketsim.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic, thread-safe RNG and generators for random
// resource operation sequences used by the concurrency tests.
//
// # Random Operation Sequences
//
//	rng := testutil.NewRNG(seed)
//	ops := rng.Ops(10_000, 25)               // mixed consume/produce
//	perWorker := testutil.SplitOps(ops, 8)   // one slice per goroutine
package testutil
