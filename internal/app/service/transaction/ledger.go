package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	models "github.com/fatflowers/pledge/internal/models"
	"github.com/fatflowers/pledge/internal/platform/storage"
	"github.com/fatflowers/pledge/pkg/clock"
	"github.com/fatflowers/pledge/pkg/logctx"
	"github.com/fatflowers/pledge/pkg/tool"
)

// Ledger is the append-only record of completed charges.
type Ledger struct {
	backend storage.Backend
	clock   clock.Clock
	log     *zap.SugaredLogger
}

func NewLedger(backend storage.Backend, clk clock.Clock, log *zap.SugaredLogger) *Ledger {
	return &Ledger{backend: backend, clock: clk, log: log}
}

// Append snapshots sub into a new transaction charged at chargedAt, written through tx.
func (l *Ledger) Append(ctx context.Context, tx storage.Tx, sub *models.Subscription, chargedAt time.Time) (*models.Transaction, error) {
	txn := &models.Transaction{
		ID:                  tool.GenerateUUIDV7(),
		SubscriptionID:      sub.ID,
		DonorID:             sub.DonorID,
		Amount:              sub.Amount,
		Currency:            sub.Currency,
		AmountInUSD:         sub.AmountInUSD,
		Interval:            sub.Interval,
		CampaignDescription: sub.CampaignDescription,
		CampaignTags:        append(datatypes.JSONSlice[string]{}, sub.CampaignTags...),
		CampaignSummary:     sub.CampaignSummary,
		CreatedAt:           l.clock.Now(),
		LastChargedAt:       chargedAt,
	}
	if err := tx.Transactions().Append(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}
	return txn, nil
}

// ListForDonor returns transactions of currently active subscriptions, optionally
// narrowed to one donor. Charges of soft-deleted or replaced lifecycles are excluded.
func (l *Ledger) ListForDonor(ctx context.Context, donorID string) ([]*models.Transaction, error) {
	log := logctx.FromCtx(ctx, l.log)
	subs, err := l.backend.Subscriptions().List(ctx)
	if err != nil {
		log.Errorw("ledger read failed to list subscriptions", "donor_id", donorID, "error", err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	activeIDs := lo.FilterMap(subs, func(s *models.Subscription, _ int) (string, bool) {
		return s.ID, s.Active
	})
	if activeIDs == nil {
		activeIDs = []string{}
	}

	txns, err := l.backend.Transactions().List(ctx, storage.TransactionFilter{
		SubscriptionIDs: activeIDs,
		DonorID:         donorID,
	})
	if err != nil {
		log.Errorw("ledger read failed to list transactions", "donor_id", donorID, "active_subscriptions", len(activeIDs), "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}
