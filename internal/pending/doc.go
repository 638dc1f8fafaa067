// Package pending holds the in-memory queue of unread achievement
// notifications awaiting presentation.
//
// The queue is not a persistent store: the team activity store is
// authoritative, and every reload replaces the queue wholesale. Order is
// created_at ascending with duplicate IDs collapsed, so a reload never
// reorders or double-delivers.
package pending
