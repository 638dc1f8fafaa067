// Package daemon coordinates the long-running kudosd process.
//
// It wires configuration, the store client, the live change feed, the pending
// queue, and the delivery engine into a single lifecycle with flock-based
// locking to prevent multiple instances. Every change signal (live feed
// frame, periodic refresh tick, explicit request) funnels into one coalescing
// reload trigger that replaces the queue wholesale, so overlapping signals
// collapse into "reload once more" and the newest store snapshot always wins.
//
// Keep orchestration logic here: sequencing rules live in the delivery
// package and the daemon focuses on startup, shutdown, and plumbing.
package daemon
