package subscription

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/pledge/internal/app/service/classifier"
	models "github.com/fatflowers/pledge/internal/models"
	"github.com/fatflowers/pledge/internal/platform/storage"
	"github.com/fatflowers/pledge/pkg/clock"
	"github.com/fatflowers/pledge/pkg/currency"
	"github.com/fatflowers/pledge/pkg/logctx"
	"github.com/fatflowers/pledge/pkg/tool"
	"github.com/fatflowers/pledge/pkg/types"
)

// CreateRequest is a donor's pledge as submitted. A non-numeric amount is carried as NaN.
type CreateRequest struct {
	DonorID             string  `json:"donorId"`
	Amount              float64 `json:"amount"`
	Currency            string  `json:"currency"`
	Interval            string  `json:"interval"`
	CampaignDescription string  `json:"campaignDescription"`
}

// Validate checks required fields first, then currency, interval and amount.
func (r *CreateRequest) Validate() error {
	if r.DonorID == "" || r.Amount == 0 || r.Currency == "" || r.Interval == "" || r.CampaignDescription == "" {
		return errMissingFields()
	}
	if !currency.IsSupported(r.Currency) {
		return errUnsupportedCurrency(r.Currency)
	}
	if !types.Interval(r.Interval).Valid() {
		return errUnsupportedInterval(r.Interval)
	}
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) || r.Amount <= 0 {
		return errInvalidAmount()
	}
	return nil
}

// Service owns donor subscriptions. Only the billing scheduler advances charges.
type Service struct {
	backend  storage.Backend
	analyzer classifier.Analyzer
	clock    clock.Clock
	log      *zap.SugaredLogger
}

func NewService(backend storage.Backend, analyzer classifier.Analyzer, clk clock.Clock, log *zap.SugaredLogger) *Service {
	return &Service{backend: backend, analyzer: analyzer, clock: clk, log: log}
}

// Create persists an active subscription. A donor whose previous subscription was
// soft-deleted gets a new lifecycle in the same slot.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*models.Subscription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	code := currency.Normalize(req.Currency)
	usd, err := currency.ToUSD(req.Amount, code)
	if err != nil {
		return nil, errUnsupportedCurrency(req.Currency)
	}

	// the classifier may call out, so it runs before any storage lock is taken
	analysis := s.analyzer.Analyze(ctx, req.CampaignDescription)

	sub := &models.Subscription{
		DonorID:             req.DonorID,
		ID:                  tool.GenerateUUIDV7(),
		Amount:              req.Amount,
		Currency:            code,
		AmountInUSD:         usd,
		Interval:            types.Interval(req.Interval),
		CampaignDescription: req.CampaignDescription,
		CampaignTags:        datatypes.JSONSlice[string](analysis.Tags),
		CampaignSummary:     analysis.Summary,
		CreatedAt:           s.clock.Now(),
		Active:              true,
	}

	var resurrected bool
	err = s.backend.InTx(ctx, func(tx storage.Tx) error {
		existing, err := tx.Subscriptions().Get(ctx, req.DonorID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			if err := tx.Subscriptions().Insert(ctx, sub); err != nil {
				return err
			}
			return s.appendLog(ctx, tx, types.SubscriptionChangeReasonCreated, nil, sub)
		case err != nil:
			return err
		case existing.Active:
			return errAlreadyExists(req.DonorID)
		default:
			resurrected = true
			if err := tx.Subscriptions().Update(ctx, sub); err != nil {
				return err
			}
			return s.appendLog(ctx, tx, types.SubscriptionChangeReasonResurrected, existing, sub)
		}
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, errAlreadyExists(req.DonorID)
	}
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription created",
		"donor_id", sub.DonorID, "subscription_id", sub.ID, "interval", sub.Interval,
		"amount", currency.Format(sub.Amount, sub.Currency), "resurrected", resurrected)
	return sub, nil
}

// ListAll returns every record, inactive ones included.
func (s *Service) ListAll(ctx context.Context) ([]*models.Subscription, error) {
	subs, err := s.backend.Subscriptions().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

func (s *Service) ListActive(ctx context.Context) ([]*models.Subscription, error) {
	subs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(subs, func(sub *models.Subscription, _ int) bool { return sub.Active }), nil
}

func (s *Service) GetByDonor(ctx context.Context, donorID string) (*models.Subscription, error) {
	sub, err := s.backend.Subscriptions().Get(ctx, donorID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// SoftDelete deactivates the donor's subscription. Deleting an absent or already
// inactive subscription returns ErrNotFound.
func (s *Service) SoftDelete(ctx context.Context, donorID string) error {
	err := s.backend.InTx(ctx, func(tx storage.Tx) error {
		sub, err := tx.Subscriptions().Get(ctx, donorID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !sub.Active {
			return ErrNotFound
		}
		before := sub.Clone()
		now := s.clock.Now()
		sub.Active = false
		sub.DeletedAt = &now
		if err := tx.Subscriptions().Update(ctx, sub); err != nil {
			return err
		}
		return s.appendLog(ctx, tx, types.SubscriptionChangeReasonDeleted, before, sub)
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("subscription deleted", "donor_id", donorID)
	return nil
}

// History returns the lifecycle changes of the donor's slot, oldest first.
func (s *Service) History(ctx context.Context, donorID string) ([]*models.SubscriptionLog, error) {
	logs, err := s.backend.SubscriptionLogs().List(ctx, donorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription history: %w", err)
	}
	if len(logs) == 0 {
		return nil, ErrNotFound
	}
	return logs, nil
}

func (s *Service) appendLog(ctx context.Context, tx storage.Tx, reason types.SubscriptionChangeReason, before, after *models.Subscription) error {
	return tx.SubscriptionLogs().Append(ctx, &models.SubscriptionLog{
		ID:             tool.GenerateUUIDV7(),
		DonorID:        after.DonorID,
		SubscriptionID: after.ID,
		Reason:         reason,
		Before:         datatypes.NewJSONType(before.Clone()),
		After:          datatypes.NewJSONType(after.Clone()),
		TraceID:        logctx.TraceID(ctx),
		CreatedAt:      s.clock.Now(),
	})
}

// AdvanceCharge records at as the donor's last charge inside the caller's transaction.
func (s *Service) AdvanceCharge(ctx context.Context, tx storage.Tx, donorID string, at time.Time) error {
	sub, err := tx.Subscriptions().Get(ctx, donorID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	charged := at
	sub.LastChargedAt = &charged
	return tx.Subscriptions().Update(ctx, sub)
}
