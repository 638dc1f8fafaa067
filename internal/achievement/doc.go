// Package achievement defines the data model shared by the delivery pipeline:
// achievement snapshots as published by the team activity store, the
// notification rows that reference them, and the category mapping used when
// presenting an achievement to the user.
//
// Notifications are the unit the rest of the system manages. Achievement
// payloads are carried by value and never mutated; the metadata blob is
// opaque and passed through untouched.
package achievement
