package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"kudos/internal/achievement"
	"kudos/internal/celebrate"
	"kudos/internal/config"
	"kudos/internal/delivery"
	"kudos/internal/journal"
	"kudos/internal/livefeed"
	"kudos/internal/logging"
	"kudos/internal/pending"
)

// Loader fetches the unread notification snapshot from the activity store.
type Loader interface {
	LoadUnread(ctx context.Context, userID string) ([]achievement.Notification, error)
}

// Options bundles daemon dependencies. Config, Loader, and Marker are
// required; Journal and Celebrator may be nil.
type Options struct {
	Config     *config.Config
	Logger     *slog.Logger
	Loader     Loader
	Marker     delivery.ReadMarker
	Journal    *journal.Store
	Celebrator celebrate.Service
}

// Daemon owns the delivery pipeline lifecycle.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	loader     Loader
	journal    *journal.Store
	celebrator celebrate.Service

	queue  *pending.Queue
	engine *delivery.Engine

	subscriber *livefeed.Subscriber
	feed       *livefeed.Subscription

	lockPath string
	lock     *flock.Flock

	reload chan struct{}

	mu              sync.Mutex
	running         bool
	startedAt       time.Time
	lastReloadAt    time.Time
	lastReloadError string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a daemon. The lock is acquired in Start, not here.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil {
		return nil, errors.New("daemon requires configuration")
	}
	if opts.Loader == nil {
		return nil, errors.New("daemon requires a store loader")
	}
	if opts.Marker == nil {
		return nil, errors.New("daemon requires a read marker")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	queue := pending.NewQueue()
	var engineJournal delivery.Journal
	if opts.Journal != nil {
		engineJournal = opts.Journal
	}
	var engineCelebrator delivery.Celebrator
	if opts.Celebrator != nil {
		engineCelebrator = opts.Celebrator
	}
	engine := delivery.NewEngine(queue, opts.Marker, engineJournal, engineCelebrator, delivery.Options{
		SettlingDelay: opts.Config.SettlingDelay(),
		Logger:        logger,
	})

	d := &Daemon{
		cfg:        opts.Config,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		loader:     opts.Loader,
		journal:    opts.Journal,
		celebrator: opts.Celebrator,
		queue:      queue,
		engine:     engine,
		lockPath:   opts.Config.LockPath(),
		lock:       flock.New(opts.Config.LockPath()),
		reload:     make(chan struct{}, 1),
	}

	if opts.Config.LiveFeed.Enabled {
		d.subscriber = livefeed.NewSubscriber(livefeed.Options{
			URL:                  opts.Config.LiveFeed.URL,
			PingInterval:         time.Duration(opts.Config.LiveFeed.PingInterval) * time.Second,
			MaxReconnectInterval: time.Duration(opts.Config.LiveFeed.MaxReconnectInterval) * time.Second,
			HandshakeTimeout:     time.Duration(opts.Config.LiveFeed.HandshakeTimeout) * time.Second,
			Logger:               logger,
		})
	}

	return d, nil
}

// Start acquires the daemon lock and launches the delivery pipeline.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return errors.New("daemon already running")
	}
	d.mu.Unlock()

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another kudosd instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.engine.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start delivery engine: %w", err)
	}

	d.mu.Lock()
	d.ctx = runCtx
	d.cancel = cancel
	d.running = true
	d.startedAt = time.Now()
	d.mu.Unlock()

	d.wg.Add(2)
	go d.reloadLoop(runCtx)
	go d.refreshLoop(runCtx)

	feedActive := false
	if d.subscriber != nil {
		feed, err := d.subscriber.Subscribe(runCtx, d.RequestReload)
		if err != nil {
			logging.WarnWithContext(d.logger, "change feed unavailable", "livefeed_subscribe_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check live_feed.url in the config"),
				logging.String(logging.FieldImpact, "notifications arrive on periodic refresh only"),
			)
		} else {
			d.mu.Lock()
			d.feed = feed
			d.mu.Unlock()
			feedActive = true
		}
	}

	d.RequestReload()
	d.logger.Info("kudosd started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String(logging.FieldUserID, d.cfg.Store.UserID),
		logging.String("lock", d.lockPath),
		logging.Bool("live_feed", feedActive),
	)
	return nil
}

// Stop tears down the feed, loops, and engine, then releases the lock. The
// feed is unsubscribed first so no reload can arrive mid-shutdown.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	cancel := d.cancel
	feed := d.feed
	d.running = false
	d.cancel = nil
	d.ctx = nil
	d.feed = nil
	d.mu.Unlock()

	if feed != nil {
		feed.Unsubscribe()
	}
	cancel()
	d.wg.Wait()
	d.engine.Stop()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.logger.Info("kudosd stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// RequestReload schedules a full reload from the store. Requests coalesce:
// any number of pending triggers results in at most one queued reload.
func (d *Daemon) RequestReload() {
	select {
	case d.reload <- struct{}{}:
	default:
	}
}

func (d *Daemon) reloadLoop(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.reload:
			d.doReload(ctx)
		}
	}
}

func (d *Daemon) refreshLoop(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.cfg.RefreshInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.RequestReload()
		}
	}
}

// doReload fetches the unread snapshot and swaps the queue. A failed fetch
// keeps the previous queue contents; an empty result is a valid state and
// clears it.
func (d *Daemon) doReload(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout())
	defer cancel()

	items, err := d.loader.LoadUnread(fetchCtx, d.cfg.Store.UserID)

	d.mu.Lock()
	d.lastReloadAt = time.Now()
	if err != nil {
		d.lastReloadError = err.Error()
	} else {
		d.lastReloadError = ""
	}
	d.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.WarnWithContext(d.logger, "reload failed; keeping previous queue", "store_reload_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check store.base_url, api_token, and network reachability"),
			logging.String(logging.FieldImpact, "new achievements delayed until the next successful reload"),
		)
		return
	}

	d.queue.Replace(items)
	d.logger.Debug("queue reloaded",
		logging.String(logging.FieldEventType, "queue_reloaded"),
		logging.Int("pending", d.queue.Len()),
	)
	d.engine.Notify()
}
