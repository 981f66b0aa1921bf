// Package watchdog implements a task watchdog.
//
// Each long-running task registers once with Add and calls Reset on its
// Liaison whenever it makes progress. Run checks all liaisons every
// CheckInterval; any liaison not reset within Timeout is reported as a FALHA
// line. With TriggerPanic set the watchdog then aborts the process (by
// default with a panic), leaving the restart to the process manager.
// Without it, the expiry is only logged and the liaison re-armed.
//
// IdleSlots adds liaisons fed by dedicated goroutines that do nothing but
// yield, so a scheduler starved by a runaway task is caught as well.
package watchdog
