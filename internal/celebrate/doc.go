// Package celebrate delivers the visible side of a presentation: a push
// notification sent through ntfy when an achievement reaches the front of the
// queue.
//
// The push is fire-once per presentation and its failure never blocks
// sequencing. When no ntfy topic is configured a noop implementation is
// returned so the delivery engine stays topic-agnostic.
package celebrate
