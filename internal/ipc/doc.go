// Package ipc exposes daemon control via JSON-RPC over a Unix domain socket.
//
// The kudos CLI is the only intended client. Requests and responses are plain
// DTO structs so the wire surface stays decoupled from internal types; the
// dismissal gesture, status, pending listing, history, and test notification
// all go through here.
package ipc
