// Package journal records every presentation and its acknowledgment outcome
// in a local SQLite database.
//
// The journal is an audit trail, not a queue: the activity store stays
// authoritative for what is unread, and the journal exists so mark-read
// failures (which do not block local dismissal) leave a visible trace. The
// kudos history command reads it.
package journal
