package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/pledge/internal/app/service/classifier"
	"github.com/fatflowers/pledge/internal/app/service/subscription"
	"github.com/fatflowers/pledge/internal/app/service/transaction"
	models "github.com/fatflowers/pledge/internal/models"
	"github.com/fatflowers/pledge/internal/platform/rabbitmq"
	"github.com/fatflowers/pledge/internal/platform/storage"
	"github.com/fatflowers/pledge/pkg/clock"
	"github.com/fatflowers/pledge/pkg/metrics"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []rabbitmq.ChargeEvent
	err    error
}

func (p *recordingPublisher) PublishChargeEvent(_ context.Context, e rabbitmq.ChargeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() {}

type harness struct {
	mem       *storage.Memory
	clk       *clock.Fake
	subs      *subscription.Service
	ledger    *transaction.Ledger
	publisher *recordingPublisher
	metrics   *metrics.Billing
	sched     *Scheduler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zap.NewNop().Sugar()
	h := &harness{
		mem:       storage.NewMemory(),
		clk:       clock.NewFake(t0),
		publisher: &recordingPublisher{},
	}
	h.subs = subscription.NewService(h.mem, classifier.NewKeyword(), h.clk, log)
	h.ledger = transaction.NewLedger(h.mem, h.clk, log)
	m, err := metrics.NewBilling(prometheus.NewRegistry())
	require.NoError(t, err)
	h.metrics = m
	h.sched = NewScheduler(Options{
		Backend:   h.mem,
		Store:     h.subs,
		Ledger:    h.ledger,
		Publisher: h.publisher,
		Clock:     h.clk,
		Metrics:   m,
		Log:       log,
		Interval:  time.Second,
	})
	return h
}

func (h *harness) create(t *testing.T, donorID, interval string) *models.Subscription {
	t.Helper()
	sub, err := h.subs.Create(context.Background(), &subscription.CreateRequest{
		DonorID:             donorID,
		Amount:              10,
		Currency:            "USD",
		Interval:            interval,
		CampaignDescription: "Feed children",
	})
	require.NoError(t, err)
	return sub
}

func (h *harness) transactions(t *testing.T, donorID string) []*models.Transaction {
	t.Helper()
	txns, err := h.ledger.ListForDonor(context.Background(), donorID)
	require.NoError(t, err)
	return txns
}

func TestTick_MinuteScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.create(t, "d1", "minute")

	r := h.sched.Tick(ctx)
	require.Equal(t, 1, r.Charged)
	require.Len(t, h.transactions(t, "d1"), 1)

	got, err := h.subs.GetByDonor(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, t0, *got.LastChargedAt)

	h.clk.Advance(5 * time.Second)
	r = h.sched.Tick(ctx)
	require.Zero(t, r.Charged)
	require.Equal(t, 1, r.Scanned)

	h.clk.Set(t0.Add(59 * time.Second))
	require.Zero(t, h.sched.Tick(ctx).Charged)

	h.clk.Set(t0.Add(60 * time.Second))
	r = h.sched.Tick(ctx)
	require.Equal(t, 1, r.Charged)
	require.Equal(t, t0.Add(60*time.Second), r.Transactions[0].LastChargedAt)

	txns := h.transactions(t, "d1")
	require.Len(t, txns, 2)
	require.Equal(t, t0, txns[0].LastChargedAt)
	require.Equal(t, t0.Add(time.Minute), txns[1].LastChargedAt)

	require.Equal(t, 2.0, testutil.ToFloat64(h.metrics.Charges.WithLabelValues("minute")))
	require.Len(t, h.publisher.events, 2)
	require.Equal(t, "d1", h.publisher.events[0].DonorID)
}

func TestTick_OnlyDueSubscriptionsCharged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.create(t, "m", "minute")
	h.create(t, "d", "daily")
	require.Equal(t, 2, h.sched.Tick(ctx).Charged)

	h.clk.Advance(time.Hour)
	r := h.sched.Tick(ctx)
	require.Equal(t, 1, r.Charged)
	require.Equal(t, "m", r.Transactions[0].DonorID)

	h.clk.Advance(23 * time.Hour)
	require.Equal(t, 2, h.sched.Tick(ctx).Charged)
}

func TestTick_ConcurrentTicksChargeOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	donors := []string{"a", "b", "c", "d", "e"}
	for _, d := range donors {
		h.create(t, d, "monthly")
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.sched.Tick(ctx)
		}()
	}
	wg.Wait()

	require.Len(t, h.transactions(t, ""), len(donors))
	for _, d := range donors {
		require.Len(t, h.transactions(t, d), 1)
	}
}

func TestChargeOne_SecondEvaluationAtSameInstantIsNoop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sub := h.create(t, "d1", "minute")

	txn, err := h.sched.chargeOne(ctx, sub, t0)
	require.NoError(t, err)
	require.NotNil(t, txn)

	txn, err = h.sched.chargeOne(ctx, sub, t0)
	require.NoError(t, err)
	require.Nil(t, txn)
	require.Len(t, h.transactions(t, "d1"), 1)
}

// snapshotStore hands the scheduler a stale list and then runs mutate, so the
// charge sees state changed after the scan.
type snapshotStore struct {
	*subscription.Service
	mutate func()
}

func (s *snapshotStore) ListAll(ctx context.Context) ([]*models.Subscription, error) {
	subs, err := s.Service.ListAll(ctx)
	if err == nil && s.mutate != nil {
		s.mutate()
	}
	return subs, err
}

func TestTick_SoftDeleteAfterScanSkipsCharge(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.create(t, "d1", "minute")
	h.create(t, "d2", "minute")
	h.sched.subs = &snapshotStore{Service: h.subs, mutate: func() {
		require.NoError(t, h.subs.SoftDelete(ctx, "d2"))
	}}

	r := h.sched.Tick(ctx)
	require.Equal(t, 1, r.Charged)
	require.Equal(t, 1, r.Skipped)

	got, err := h.subs.GetByDonor(ctx, "d2")
	require.NoError(t, err)
	require.Nil(t, got.LastChargedAt)

	all, err := h.mem.Transactions().List(ctx, storage.TransactionFilter{DonorID: "d2"})
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestTick_ResurrectedAfterScanSkipsStaleLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	old := h.create(t, "d1", "minute")
	require.NoError(t, h.subs.SoftDelete(ctx, "d1"))

	// an active copy of the old lifecycle, as a scan would have seen it
	stale := old.Clone()
	h.sched.subs = &fixedStore{Service: h.subs, list: []*models.Subscription{stale}}
	h.create(t, "d1", "minute")

	r := h.sched.Tick(ctx)
	require.Equal(t, 1, r.Skipped)
	require.Zero(t, r.Charged)
}

type fixedStore struct {
	*subscription.Service
	list []*models.Subscription
}

func (s *fixedStore) ListAll(context.Context) ([]*models.Subscription, error) {
	return s.list, nil
}

type flakyLedger struct {
	*transaction.Ledger
	panicFor string
	failFor  string
}

func (l *flakyLedger) Append(ctx context.Context, tx storage.Tx, sub *models.Subscription, at time.Time) (*models.Transaction, error) {
	switch sub.DonorID {
	case l.panicFor:
		panic("ledger exploded")
	case l.failFor:
		return nil, errors.New("disk full")
	}
	return l.Ledger.Append(ctx, tx, sub, at)
}

func TestTick_FailuresAreIsolated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.create(t, "boom", "minute")
	h.create(t, "fail", "minute")
	h.create(t, "ok", "minute")
	h.sched.ledger = &flakyLedger{Ledger: h.ledger, panicFor: "boom", failFor: "fail"}

	r := h.sched.Tick(ctx)
	require.Equal(t, 3, r.Scanned)
	require.Equal(t, 1, r.Charged)
	require.Equal(t, 2, r.Failed)
	require.Equal(t, 2.0, testutil.ToFloat64(h.metrics.Failures))

	for _, d := range []string{"boom", "fail"} {
		got, err := h.subs.GetByDonor(ctx, d)
		require.NoError(t, err)
		require.Nil(t, got.LastChargedAt, d)
	}

	h.sched.ledger = h.ledger
	r = h.sched.Tick(ctx)
	require.Equal(t, 2, r.Charged)
	require.Len(t, h.transactions(t, ""), 3)
}

func TestTick_PublishFailureKeepsCharge(t *testing.T) {
	h := newHarness(t)
	h.publisher.err = errors.New("broker down")
	h.create(t, "d1", "daily")

	r := h.sched.Tick(context.Background())
	require.Equal(t, 1, r.Charged)
	require.Len(t, h.transactions(t, "d1"), 1)
}

func TestTick_SoftDeletedTransactionsHidden(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.create(t, "d1", "minute")
	h.create(t, "d2", "minute")
	h.sched.Tick(ctx)

	require.NoError(t, h.subs.SoftDelete(ctx, "d1"))
	h.clk.Advance(time.Minute)
	r := h.sched.Tick(ctx)
	require.Equal(t, 1, r.Charged)

	require.Empty(t, h.transactions(t, "d1"))
	require.Len(t, h.transactions(t, ""), 2)
}

func TestStartStop(t *testing.T) {
	h := newHarness(t)
	h.create(t, "d1", "minute")
	require.NoError(t, h.sched.Start())

	require.Eventually(t, func() bool {
		return len(h.transactions(t, "d1")) == 1
	}, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.sched.Stop(ctx))
}

func TestStop_WithoutStart(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sched.Stop(context.Background()))
}
