package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	models "github.com/fatflowers/pledge/internal/models"
	"github.com/fatflowers/pledge/internal/platform/rabbitmq"
	"github.com/fatflowers/pledge/internal/platform/storage"
	"github.com/fatflowers/pledge/pkg/clock"
	"github.com/fatflowers/pledge/pkg/logctx"
	"github.com/fatflowers/pledge/pkg/metrics"
	"github.com/fatflowers/pledge/pkg/tool"
)

const publishTimeout = 3 * time.Second

// SubscriptionStore is the part of the subscription service the scheduler drives.
type SubscriptionStore interface {
	ListAll(ctx context.Context) ([]*models.Subscription, error)
	AdvanceCharge(ctx context.Context, tx storage.Tx, donorID string, at time.Time) error
}

// Ledger records charges.
type Ledger interface {
	Append(ctx context.Context, tx storage.Tx, sub *models.Subscription, chargedAt time.Time) (*models.Transaction, error)
}

// TickReport summarizes one billing scan.
type TickReport struct {
	Now     time.Time
	Scanned int
	// Charged subscriptions produced exactly one transaction each.
	Charged int
	// Skipped were due at scan time but changed before their charge ran.
	Skipped      int
	Failed       int
	Transactions []*models.Transaction
}

// errSkip aborts a charge transaction without counting a failure.
var errSkip = errors.New("charge skipped")

// Scheduler charges due subscriptions on a fixed cadence.
type Scheduler struct {
	backend   storage.Backend
	subs      SubscriptionStore
	ledger    Ledger
	publisher rabbitmq.Publisher
	clock     clock.Clock
	metrics   *metrics.Billing
	log       *zap.SugaredLogger

	// mu serializes ticks, whether started by cron or called directly.
	mu sync.Mutex

	interval time.Duration
	cron     *cron.Cron
	cancel   context.CancelFunc
}

type Options struct {
	Backend   storage.Backend
	Store     SubscriptionStore
	Ledger    Ledger
	Publisher rabbitmq.Publisher
	Clock     clock.Clock
	Metrics   *metrics.Billing
	Log       *zap.SugaredLogger
	Interval  time.Duration
}

func NewScheduler(opts Options) *Scheduler {
	if opts.Publisher == nil {
		opts.Publisher = rabbitmq.NoopPublisher{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	return &Scheduler{
		backend:   opts.Backend,
		subs:      opts.Store,
		ledger:    opts.Ledger,
		publisher: opts.Publisher,
		clock:     opts.Clock,
		metrics:   opts.Metrics,
		log:       opts.Log,
		interval:  opts.Interval,
	}
}

// Tick scans every subscription once and charges the due ones against a single
// captured instant. It never returns an error: failures are logged, counted and left
// for the next tick.
func (s *Scheduler) Tick(ctx context.Context) TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer s.metrics.ObserveTick(start)

	now := s.clock.Now()
	report := TickReport{Now: now}
	ctx = logctx.WithTraceID(ctx, tool.GenerateTraceID())
	log := logctx.FromCtx(ctx, s.log)

	subs, err := s.subs.ListAll(ctx)
	if err != nil {
		log.Errorw("billing tick failed to list subscriptions", "error", err)
		return report
	}

	for _, sub := range subs {
		if ctx.Err() != nil {
			log.Warnw("billing tick interrupted", "scanned", report.Scanned)
			break
		}
		report.Scanned++
		if !IsDue(sub, now) {
			continue
		}

		txn, err := s.chargeOne(ctx, sub, now)
		switch {
		case err != nil:
			report.Failed++
			s.metrics.IncFailure()
			log.Errorw("charge failed", "donor_id", sub.DonorID, "subscription_id", sub.ID, "error", err)
		case txn == nil:
			report.Skipped++
		default:
			report.Charged++
			report.Transactions = append(report.Transactions, txn)
			s.metrics.IncCharge(txn.Interval.String())
			s.publish(ctx, txn)
		}
	}

	if report.Charged > 0 || report.Failed > 0 {
		log.Infow("billing tick finished",
			"scanned", report.Scanned, "charged", report.Charged,
			"skipped", report.Skipped, "failed", report.Failed)
	}
	return report
}

// chargeOne re-reads candidate inside a storage transaction and, if it is still the
// same lifecycle and still due at now, appends its transaction and advances
// lastChargedAt. A nil transaction with a nil error means the charge was skipped.
func (s *Scheduler) chargeOne(ctx context.Context, candidate *models.Subscription, now time.Time) (txn *models.Transaction, err error) {
	defer func() {
		if r := recover(); r != nil {
			txn = nil
			err = fmt.Errorf("panic while charging: %v", r)
		}
	}()

	err = s.backend.InTx(ctx, func(tx storage.Tx) error {
		current, err := tx.Subscriptions().Get(ctx, candidate.DonorID)
		if errors.Is(err, storage.ErrNotFound) {
			return errSkip
		}
		if err != nil {
			return err
		}
		if current.ID != candidate.ID || !IsDue(current, now) {
			return errSkip
		}

		txn, err = s.ledger.Append(ctx, tx, current, now)
		if err != nil {
			return err
		}
		return s.subs.AdvanceCharge(ctx, tx, current.DonorID, now)
	})
	if errors.Is(err, errSkip) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *Scheduler) publish(ctx context.Context, txn *models.Transaction) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := s.publisher.PublishChargeEvent(ctx, rabbitmq.ChargeEvent{
		TransactionID:  txn.ID,
		SubscriptionID: txn.SubscriptionID,
		DonorID:        txn.DonorID,
		Amount:         txn.Amount,
		Currency:       txn.Currency,
		AmountInUSD:    txn.AmountInUSD,
		Interval:       txn.Interval.String(),
		ChargedAt:      txn.LastChargedAt,
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("failed to publish charge event", "transaction_id", txn.ID, "error", err)
	}
}

// Start schedules Tick every interval. Overlapping runs are skipped.
func (s *Scheduler) Start() error {
	cl := cronLogger{l: s.log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	runCtx, cancel := context.WithCancel(context.Background())
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := c.AddFunc(spec, func() { s.Tick(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("failed to schedule billing tick %q: %w", spec, err)
	}
	s.cron = c
	s.cancel = cancel
	c.Start()
	s.log.Infow("billing scheduler started", "schedule", spec)
	return nil
}

// Stop waits for the running tick to finish. If ctx expires first the tick is
// cancelled between charges.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	defer s.cancel()
	select {
	case <-done.Done():
		s.log.Infow("billing scheduler stopped")
		return nil
	case <-ctx.Done():
		s.log.Warnw("billing scheduler stop timed out, cancelling running tick")
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger. Per-run chatter goes to debug.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
