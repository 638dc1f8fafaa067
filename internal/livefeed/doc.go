// Package livefeed subscribes to the activity store's websocket change feed.
//
// Feed frames are pure triggers: payload contents are never trusted, every
// frame just requests a full reload from the store. The subscription handle
// owns its teardown; Unsubscribe is idempotent and guarantees the callback is
// never invoked afterwards. A dropped feed reconnects with exponential
// backoff and the daemon degrades to periodic refresh in the meantime.
package livefeed
