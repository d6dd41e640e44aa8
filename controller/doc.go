// Package controller implements the reaction loop that drains subsystem
// events and globally retunes subsystem behaviour.
//
// Each cycle drains the queue completely and applies, per event in
// priority order:
//
//	EMPTY on the vital resource       -> TERMINATE all (critical failure)
//	CAPACITY on the goal resource     -> TERMINATE all (completed)
//	LOW, EMPTY or INSUFFICIENT         -> FAST for producers of the resource
//	CAPACITY                          -> SLOW for producers of the resource
//
// The first terminal event of a run decides its outcome. Producers are
// indexed per resource in a roaring bitmap at construction time.
package controller
