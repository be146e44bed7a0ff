package reminder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"zero-finance-go/internal/models"
)

// Notifier is the external reminder scheduler. The bridge is its only caller.
type Notifier interface {
	CancelAll(ctx context.Context, userID uint) error
	ScheduleAt(ctx context.Context, at time.Time, r Reminder) (handle string, err error)
}

type PaymentSource interface {
	Payments(ctx context.Context, userID uint) ([]models.PaymentDetails, error)
}

// Bridge replaces a user's scheduled reminders with the current plan whenever
// that user's payment set changes.
type Bridge struct {
	src      PaymentSource
	notifier Notifier
	policy   Policy
	log      *zap.Logger
	now      func() time.Time

	syncMu sync.Mutex

	mu      sync.Mutex
	pending map[uint]struct{}
	wake    chan struct{}
}

func NewBridge(src PaymentSource, notifier Notifier, policy Policy, log *zap.Logger) *Bridge {
	return &Bridge{
		src:      src,
		notifier: notifier,
		policy:   policy,
		log:      log,
		now:      time.Now,
		pending:  make(map[uint]struct{}),
		wake:     make(chan struct{}, 1),
	}
}

func (b *Bridge) WithClock(now func() time.Time) *Bridge {
	b.now = now
	return b
}

// Sync cancels every reminder of the user and schedules the current plan.
// Steps run in order and two syncs never interleave. It returns the number
// of reminders scheduled; scheduling failures are joined into the error but
// do not stop the remaining reminders.
func (b *Bridge) Sync(ctx context.Context, userID uint) (int, error) {
	b.syncMu.Lock()
	defer b.syncMu.Unlock()

	payments, err := b.src.Payments(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load payments: %w", err)
	}
	if err := b.notifier.CancelAll(ctx, userID); err != nil {
		return 0, fmt.Errorf("cancel reminders: %w", err)
	}

	var (
		scheduled int
		errs      []error
	)
	for _, r := range Plan(payments, b.now(), b.policy) {
		if _, err := b.notifier.ScheduleAt(ctx, r.TriggerAt, r); err != nil {
			errs = append(errs, fmt.Errorf("payment %d: %w", r.PaymentID, err))
			continue
		}
		scheduled++
	}
	return scheduled, errors.Join(errs...)
}

// Trigger queues a resync for the user and returns immediately. Repeated
// triggers before the worker runs collapse into one sync.
func (b *Bridge) Trigger(userID uint) {
	if userID == 0 {
		return
	}
	b.mu.Lock()
	b.pending[userID] = struct{}{}
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Run syncs queued users until ctx is cancelled. Failures are logged.
func (b *Bridge) Run(ctx context.Context) {
	b.log.Info("reminder bridge started")
	for {
		select {
		case <-ctx.Done():
			b.log.Info("reminder bridge stopped")
			return
		case <-b.wake:
			for _, userID := range b.drain() {
				n, err := b.Sync(ctx, userID)
				if err != nil {
					b.log.Warn("reminder sync failed", zap.Uint("user_id", userID), zap.Error(err))
					continue
				}
				b.log.Debug("reminders synced", zap.Uint("user_id", userID), zap.Int("scheduled", n))
			}
		}
	}
}

func (b *Bridge) drain() []uint {
	b.mu.Lock()
	defer b.mu.Unlock()
	users := make([]uint, 0, len(b.pending))
	for id := range b.pending {
		users = append(users, id)
	}
	clear(b.pending)
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}
