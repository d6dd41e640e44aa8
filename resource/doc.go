// Package resource implements the shared, capacity-bounded quantities that
// subsystems consume and produce.
//
// # Locking Protocol
//
// Every Resource owns a mutex. TryConsume and TryProduce hold it only for
// the check-and-update arithmetic, never across simulated work, so
// unrelated subsystems are not serialized on a busy resource:
//
//	if r.TryConsume(5) == resource.StatusOK {
//	    time.Sleep(work)           // no lock held
//	    leftover, st := out.TryProduce(25)
//	    ...
//	}
//
// A caller never holds two resource locks at once, which rules out
// lock-ordering deadlocks.
//
// # Invariant
//
// 0 <= Amount() <= MaxCapacity() holds at every observation. Amount reads
// an atomic copy and never blocks.
//
// # Nil Safety
//
// A nil *Resource stands for "no resource involved": consuming from it or
// producing into it always succeeds.
package resource
