// Package delivery sequences achievement presentations: at most one
// notification is showing at any time, and only an explicit acknowledgment
// advances to the next.
//
// The engine is a two-state machine (idle, showing) driven by wake signals
// from the daemon's reload path. Every state step happens under a single
// mutex and side effects (celebration push, journal writes, remote mark-read)
// run outside it, so a reload arriving mid-presentation can never tear down
// or duplicate the current presentation. The celebration fires exactly once
// per idle-to-showing transition.
//
// Dismissal is fire-and-forget toward the store: the local queue entry is
// removed and sequencing continues regardless of the remote mark-read
// outcome. A failed mark-read is journaled and the notification may reappear
// on a later reload; that gap is accepted rather than papered over with
// retries.
package delivery
