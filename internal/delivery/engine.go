package delivery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"kudos/internal/achievement"
	"kudos/internal/logging"
	"kudos/internal/pending"
)

// State is the sequencer state.
type State string

const (
	// StateIdle means nothing is being presented.
	StateIdle State = "idle"
	// StateShowing means exactly one notification is on display awaiting
	// acknowledgment.
	StateShowing State = "showing"
)

// ReadMarker marks a notification read on the activity store.
type ReadMarker interface {
	MarkRead(ctx context.Context, notificationID string) error
}

// Journal records presentation lifecycle events.
type Journal interface {
	RecordShown(ctx context.Context, presentationID string, item achievement.Notification, shownAt time.Time) error
	RecordAcknowledged(ctx context.Context, presentationID string, ackedAt time.Time, markReadErr error) error
}

// Celebrator fires the user-visible celebration for a presentation.
type Celebrator interface {
	CelebrateAchievement(ctx context.Context, item achievement.Notification) error
}

// Options configures engine timing.
type Options struct {
	// SettlingDelay is the pause between an acknowledgment and the next
	// presentation.
	SettlingDelay time.Duration
	// MarkReadTimeout bounds the asynchronous mark-read call.
	MarkReadTimeout time.Duration
	Logger          *slog.Logger
}

// Engine owns the presentation state machine over a pending queue.
type Engine struct {
	queue           *pending.Queue
	marker          ReadMarker
	journal         Journal
	celebrator      Celebrator
	settlingDelay   time.Duration
	markReadTimeout time.Duration
	logger          *slog.Logger

	wake chan struct{}

	mu             sync.Mutex
	running        bool
	state          State
	current        achievement.Notification
	presentationID string
	settling       bool
	settleTimer    *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine builds an engine. The queue and marker are required; journal and
// celebrator may be nil, which disables those side effects.
func NewEngine(queue *pending.Queue, marker ReadMarker, journal Journal, celebrator Celebrator, opts Options) *Engine {
	markReadTimeout := opts.MarkReadTimeout
	if markReadTimeout <= 0 {
		markReadTimeout = 15 * time.Second
	}
	return &Engine{
		queue:           queue,
		marker:          marker,
		journal:         journal,
		celebrator:      celebrator,
		settlingDelay:   opts.SettlingDelay,
		markReadTimeout: markReadTimeout,
		logger:          logging.NewComponentLogger(opts.Logger, "delivery"),
		wake:            make(chan struct{}, 1),
		state:           StateIdle,
	}
}

// Start begins background sequencing.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return errors.New("delivery engine already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.ctx = runCtx
	e.cancel = cancel
	e.running = true
	e.mu.Unlock()

	e.wg.Add(1)
	go e.run(runCtx)
	return nil
}

// Stop terminates sequencing and waits for in-flight work, including pending
// mark-read calls. A settling timer that has not fired yet is cancelled.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	cancel := e.cancel
	e.running = false
	e.cancel = nil
	if e.settleTimer != nil {
		e.settleTimer.Stop()
		e.settleTimer = nil
	}
	e.settling = false
	e.mu.Unlock()

	cancel()
	e.wg.Wait()
}

// Notify wakes the sequencer to re-evaluate the queue head. Signals coalesce:
// many reloads in a row produce at most one pending wake, and evaluation
// always reads current queue state, so the last reload wins.
func (e *Engine) Notify() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.wake:
			e.evaluate(ctx)
		}
	}
}

// evaluate presents the queue head when idle. The idle-to-showing transition
// commits under the mutex before any side effect runs, so the celebration and
// journal write happen exactly once per transition no matter how many wakes
// race in.
func (e *Engine) evaluate(ctx context.Context) {
	e.mu.Lock()
	if !e.running || e.state != StateIdle || e.settling {
		e.mu.Unlock()
		return
	}
	head, ok := e.queue.Head()
	if !ok {
		e.mu.Unlock()
		return
	}
	presentationID := uuid.NewString()
	e.state = StateShowing
	e.current = head
	e.presentationID = presentationID
	e.mu.Unlock()

	shownAt := time.Now()
	logger := e.logger.With(
		logging.String(logging.FieldNotificationID, head.ID),
		logging.String(logging.FieldPresentationID, presentationID),
	)
	logger.Info("showing notification",
		logging.String(logging.FieldEventType, "presentation_started"),
		logging.String("achievement_type", string(head.Achievement.Type)),
	)

	if e.journal != nil {
		if err := e.journal.RecordShown(ctx, presentationID, head, shownAt); err != nil {
			logging.WarnWithContext(logger, "journal write failed", "journal_record_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check state_dir permissions and disk space"),
				logging.String(logging.FieldImpact, "presentation missing from history"),
			)
		}
	}
	if e.celebrator != nil {
		if err := e.celebrator.CelebrateAchievement(ctx, head); err != nil {
			logging.WarnWithContext(logger, "celebration push failed", "celebrate_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and connectivity"),
				logging.String(logging.FieldImpact, "achievement shown without push notification"),
			)
		}
	}
}

// Acknowledge dismisses the currently showing notification. With a non-empty
// notificationID the call is a no-op unless that exact notification is
// showing, which makes duplicate dismissals of the same presentation safe. It
// reports whether a presentation was dismissed.
//
// Local removal is unconditional; the remote mark-read runs asynchronously
// and its outcome only lands in the journal and logs.
func (e *Engine) Acknowledge(ctx context.Context, notificationID string) bool {
	e.mu.Lock()
	if !e.running || e.state != StateShowing {
		e.mu.Unlock()
		return false
	}
	if notificationID != "" && notificationID != e.current.ID {
		e.mu.Unlock()
		return false
	}
	item := e.current
	presentationID := e.presentationID
	e.state = StateIdle
	e.current = achievement.Notification{}
	e.presentationID = ""
	e.settling = true
	// The queue entry must be gone before the settling timer can fire:
	// at a zero settling delay the settle wake races this section, and a
	// stale head would re-present the dismissed item.
	e.queue.RemoveByID(item.ID)
	e.settleTimer = time.AfterFunc(e.settlingDelay, e.settle)
	// Registered before the running flag can flip so Stop waits for the
	// mark-read goroutine.
	e.wg.Add(1)
	e.mu.Unlock()

	ackedAt := time.Now()

	logger := e.logger.With(
		logging.String(logging.FieldNotificationID, item.ID),
		logging.String(logging.FieldPresentationID, presentationID),
	)
	logger.Info("notification dismissed",
		logging.String(logging.FieldEventType, "presentation_acknowledged"),
	)

	go e.finishAcknowledgment(logger, item.ID, presentationID, ackedAt)
	return true
}

// finishAcknowledgment performs the remote mark-read and journals the
// outcome. It deliberately uses a fresh context: the dismissal has already
// happened locally and cancelling the caller must not lose the store call.
func (e *Engine) finishAcknowledgment(logger *slog.Logger, notificationID, presentationID string, ackedAt time.Time) {
	defer e.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), e.markReadTimeout)
	defer cancel()

	markErr := e.marker.MarkRead(ctx, notificationID)
	if markErr != nil {
		logging.WarnWithContext(logger, "mark-read failed; notification may reappear", "mark_read_failed",
			logging.Error(markErr),
			logging.String(logging.FieldErrorHint, "check store connectivity; dismiss again if it reappears"),
			logging.String(logging.FieldImpact, "dismissed notification can resurface on the next reload"),
		)
	}
	if e.journal != nil {
		if err := e.journal.RecordAcknowledged(ctx, presentationID, ackedAt, markErr); err != nil {
			logging.WarnWithContext(logger, "journal write failed", "journal_record_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check state_dir permissions and disk space"),
				logging.String(logging.FieldImpact, "acknowledgment outcome missing from history"),
			)
		}
	}
}

// settle ends the settling pause and wakes the sequencer for the next head.
func (e *Engine) settle() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.settling = false
	e.settleTimer = nil
	e.mu.Unlock()
	e.Notify()
}

// Status is a point-in-time snapshot of the sequencer.
type Status struct {
	State        State
	Current      *achievement.Notification
	PendingCount int
	Settling     bool
}

// Status reports the current sequencer state and queue depth.
func (e *Engine) Status() Status {
	e.mu.Lock()
	status := Status{
		State:    e.state,
		Settling: e.settling,
	}
	if e.state == StateShowing {
		current := e.current
		status.Current = &current
	}
	e.mu.Unlock()
	status.PendingCount = e.queue.Len()
	return status
}
