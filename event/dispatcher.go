package event

import (
	"context"
	"skillbridge/infra/metrics"
	"skillbridge/persistence"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type DispatcherConfig struct {
	Interval     time.Duration `env:"OUTBOX_INTERVAL" envDefault:"2s"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	MaxRetries   int           `env:"OUTBOX_MAX_RETRIES" envDefault:"5"`
	RetryBackoff time.Duration `env:"OUTBOX_RETRY_BACKOFF" envDefault:"5s"`
	RatePerSec   float64       `env:"OUTBOX_RATE_PER_SECOND" envDefault:"200"`
}

// Dispatcher drains unsynced outbox records and runs the registered handlers.
type Dispatcher struct {
	config  DispatcherConfig
	limiter *rate.Limiter
	wake    chan struct{}
	now     func() time.Time
}

func NewDispatcher(config DispatcherConfig) *Dispatcher {
	if config.Interval <= 0 {
		config.Interval = 2 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 5
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = 5 * time.Second
	}
	limit := rate.Inf
	if config.RatePerSec > 0 {
		limit = rate.Limit(config.RatePerSec)
	}
	return &Dispatcher{
		config:  config,
		limiter: rate.NewLimiter(limit, config.BatchSize),
		wake:    make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Notify wakes the dispatcher loop, it never blocks.
func (d *Dispatcher) Notify(records ...*EventRecord) {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	logrus.WithFields(logrus.Fields{
		"interval":    d.config.Interval,
		"batch_size":  d.config.BatchSize,
		"max_retries": d.config.MaxRetries,
	}).Info("outbox dispatcher started")

	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.ProcessPending(ctx)
		case <-d.wake:
			d.ProcessPending(ctx)
		}
	}
}

// ProcessPending handles one batch of due records and returns how many were synced.
func (d *Dispatcher) ProcessPending(ctx context.Context) int {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	records, err := LoadPendingEvents(db, d.now(), d.config.BatchSize)
	if err != nil {
		logrus.Errorf("failed to load pending events: %v", err)
		return 0
	}

	synced := 0
	for i := range records {
		if err := d.limiter.Wait(ctx); err != nil {
			return synced
		}
		record := &records[i]
		d.dispatch(record)
		if err := saveDispatchState(persistence.ActiveDataSourceManager.GormDB(ctx), record); err != nil {
			logrus.Errorf("failed to save dispatch state of event %d: %v", record.ID, err)
			continue
		}
		if record.Synced {
			synced++
			metrics.EventDispatchLag.Observe(d.now().Sub(record.Timestamp.Time()).Seconds())
		}
	}
	return synced
}

func (d *Dispatcher) dispatch(record *EventRecord) {
	allSuccess := true
	for _, r := range InvokeHandlersFunc(record) {
		metrics.RecordEventHandled(r.HandlerIdentifier, r.Success)
		if r.Success {
			record.HandledBy = append(record.HandledBy, r.HandlerIdentifier)
		} else {
			allSuccess = false
		}
	}
	if allSuccess {
		record.Synced = true
		return
	}

	scheduleRetry(record, d.now(), d.config.RetryBackoff, d.config.MaxRetries)
	if record.Failed {
		logrus.Errorf("event %d %s given up after %d attempts", record.ID, record.EventCategory, record.RetryCount)
	} else {
		logrus.Warnf("event %d %s will be retried at %v", record.ID, record.EventCategory, record.NextRetryTime.Time())
	}
}
