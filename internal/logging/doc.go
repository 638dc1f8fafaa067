// Package logging builds the slog loggers used by the daemon and CLI.
//
// It provides a console handler for interactive output, a JSON handler for
// the daemon log file, attr helper shims so call sites stay terse, and the
// standardized field keys (component, event_type, error_hint, impact) that
// make warnings actionable. Boundary components absorb failures and log them
// with these fields instead of propagating fatals; see the store and livefeed
// packages.
package logging
