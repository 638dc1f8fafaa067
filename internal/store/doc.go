// Package store talks to the team activity store's notification API.
//
// The client covers exactly two calls: fetching the unread notification set
// for the configured user and marking a single notification as read. Both are
// plain request/response; retries and fail-soft handling belong to the
// callers, which treat a failed fetch as a recoverable empty state.
package store
