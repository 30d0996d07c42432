package portfolio

import (
	"context"
	"sync"
	"time"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
)

// DefaultRefreshInterval is how often held symbols are re-quoted when no
// interval is configured.
const DefaultRefreshInterval = 5 * time.Minute

// Refresher drives the periodic quote refresh cycle for one owner. At most
// one handle is active at a time: starting again stops the previous handle
// before scheduling a new one. The handle is an owned reference, never
// process-wide state.
type Refresher struct {
	svc      interfaces.PortfolioService
	logger   *common.Logger
	interval time.Duration

	mu     sync.Mutex
	active *RefreshHandle

	// runMu serializes refresh cycles: a tick that fires while a cycle is
	// still in flight is skipped, never run concurrently.
	runMu sync.Mutex
}

// NewRefresher creates a refresher. A non-positive interval falls back to
// DefaultRefreshInterval.
func NewRefresher(svc interfaces.PortfolioService, logger *common.Logger, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{
		svc:      svc,
		logger:   logger,
		interval: interval,
	}
}

// RefreshHandle cancels a running refresh schedule. Stop is immediate (no
// further ticks fire) but does not abort a refresh cycle already in flight.
type RefreshHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the schedule and waits for the scheduling loop to exit.
func (h *RefreshHandle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Start begins the refresh schedule for an owner and returns its handle.
// Any previously active handle is stopped first. The first refresh runs
// immediately, not after one full interval.
func (r *Refresher) Start(ownerID string) *RefreshHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		r.active.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle := &RefreshHandle{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.active = handle

	go r.loop(ctx, ownerID, handle)

	r.logger.Info().
		Str("owner", ownerID).
		Dur("interval", r.interval).
		Msg("Refresh schedule started")

	return handle
}

// Stop stops the active handle, if any.
func (r *Refresher) Stop() {
	r.mu.Lock()
	handle := r.active
	r.active = nil
	r.mu.Unlock()

	if handle != nil {
		handle.Stop()
	}
}

func (r *Refresher) loop(ctx context.Context, ownerID string, handle *RefreshHandle) {
	defer close(handle.done)

	r.runOnce(ownerID)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Str("owner", ownerID).Msg("Refresh schedule stopped")
			return
		case <-ticker.C:
			r.runOnce(ownerID)
		}
	}
}

// runOnce executes a single refresh cycle unless one is already running.
// The cycle uses its own context so stopping the schedule never aborts a
// refresh that has already started.
func (r *Refresher) runOnce(ownerID string) {
	if !r.runMu.TryLock() {
		r.logger.Debug().Str("owner", ownerID).Msg("Refresh cycle still in flight, tick skipped")
		return
	}
	defer r.runMu.Unlock()

	start := time.Now()
	report, err := r.svc.RefreshAll(context.Background(), ownerID)
	if err != nil {
		r.logger.Warn().Err(err).Str("owner", ownerID).Msg("Scheduled refresh failed")
		return
	}

	r.logger.Info().
		Str("owner", ownerID).
		Int("updated", report.Updated).
		Int("failed", report.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled refresh complete")
}
