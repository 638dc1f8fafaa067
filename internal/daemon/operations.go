package daemon

import (
	"context"
	"errors"
	"time"

	"kudos/internal/achievement"
	"kudos/internal/delivery"
	"kudos/internal/journal"
)

// StatusSummary is a point-in-time view of the daemon for the CLI.
type StatusSummary struct {
	Running         bool
	StartedAt       time.Time
	UserID          string
	State           delivery.State
	Current         *achievement.Notification
	PendingCount    int
	Settling        bool
	LiveFeed        bool
	LastReloadAt    time.Time
	LastReloadError string
}

// Status reports daemon and sequencer state.
func (d *Daemon) Status() StatusSummary {
	engineStatus := d.engine.Status()

	d.mu.Lock()
	summary := StatusSummary{
		Running:         d.running,
		StartedAt:       d.startedAt,
		UserID:          d.cfg.Store.UserID,
		State:           engineStatus.State,
		Current:         engineStatus.Current,
		PendingCount:    engineStatus.PendingCount,
		Settling:        engineStatus.Settling,
		LiveFeed:        d.feed != nil,
		LastReloadAt:    d.lastReloadAt,
		LastReloadError: d.lastReloadError,
	}
	d.mu.Unlock()
	return summary
}

// Dismiss acknowledges the currently showing notification. An empty id
// dismisses whatever is showing; a non-empty id only matches that exact
// notification. Reports whether a presentation was dismissed.
func (d *Daemon) Dismiss(ctx context.Context, notificationID string) bool {
	return d.engine.Acknowledge(ctx, notificationID)
}

// Pending returns the queue contents in presentation order.
func (d *Daemon) Pending() []achievement.Notification {
	return d.queue.Items()
}

// History returns recent presentation journal entries, newest first.
func (d *Daemon) History(ctx context.Context, limit int) ([]journal.Entry, error) {
	if d.journal == nil {
		return nil, errors.New("presentation journal unavailable")
	}
	return d.journal.Recent(ctx, limit)
}

// TestNotification sends a test push through the celebration service.
func (d *Daemon) TestNotification(ctx context.Context) error {
	if d.celebrator == nil {
		return errors.New("celebration service unavailable")
	}
	return d.celebrator.TestNotification(ctx)
}
