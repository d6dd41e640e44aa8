// Package subsystem implements the concurrent production units of the
// simulation and the worker loop that drives them.
//
// # Worker Loop
//
//	for status != TERMINATE {
//	    if stored == 0 {
//	        consume input        // EMPTY/INSUFFICIENT -> HIGH event, back off
//	        sleep(processing)    // scaled by status: SLOW x2, FAST x0.5
//	        stored += produced
//	    }
//	    if stored > 0 {
//	        deposit stored       // CAPACITY -> LOW event, back off, keep leftover
//	    }
//	}
//
// A subsystem without input (pure source) always refills instantly; one
// without output (pure sink) never deposits.
//
// # Status
//
// Status is written by the controller and read by the worker at the top of
// each iteration. It is an atomic; StatusTerminate is final.
package subsystem
