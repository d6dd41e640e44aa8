// Package journal records a run's drained events, controller status
// changes and final outcome, and stores them as a JSON-lines blob.
//
// Blobs are named runs/<run-id>.jsonl, with a .zst or .lz4 suffix when
// compressed. A journal is a post-run report; it is never replayed into a
// simulation.
//
// Records are buffered in memory until Flush, so a journal grows with the
// number of drained events. Long runs should set WithMaxRecords, which
// keeps the first n events plus every status change and the outcome.
package journal
