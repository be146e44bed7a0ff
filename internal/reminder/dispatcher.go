package reminder

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const dispatchBatch = 100

// Sink receives reminders once their trigger instant has passed.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, r Reminder) error
}

// Dispatcher polls the outbox and hands due reminders to every sink.
type Dispatcher struct {
	outbox   *Outbox
	sinks    []Sink
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewDispatcher(outbox *Outbox, interval time.Duration, log *zap.Logger, sinks ...Sink) *Dispatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Dispatcher{outbox: outbox, sinks: sinks, interval: interval, log: log, now: time.Now}
}

func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.Info("reminder dispatcher started", zap.Duration("interval", d.interval), zap.Int("sinks", len(d.sinks)))
	for {
		select {
		case <-ctx.Done():
			d.log.Info("reminder dispatcher stopped")
			return
		case <-ticker.C:
			if _, err := d.DispatchDue(ctx); err != nil {
				d.log.Error("dispatch reminders", zap.Error(err))
			}
		}
	}
}

// DispatchDue delivers every reminder due at or before now and marks it
// delivered. A sink failure is logged; the reminder is not retried.
func (d *Dispatcher) DispatchDue(ctx context.Context) (int, error) {
	now := d.now()
	rows, err := d.outbox.Due(ctx, now, dispatchBatch)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, row := range rows {
		r, err := Decode(row)
		if err != nil {
			d.log.Warn("skipping unreadable reminder", zap.String("handle", row.Handle), zap.Error(err))
		} else {
			for _, sink := range d.sinks {
				if err := sink.Deliver(ctx, r); err != nil {
					d.log.Warn("reminder delivery failed",
						zap.String("sink", sink.Name()),
						zap.String("handle", row.Handle),
						zap.Error(err))
				}
			}
		}
		if err := d.outbox.MarkDelivered(ctx, row.ID, now); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}
