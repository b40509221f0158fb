package storage

import (
	"context"
	"errors"
	"fmt"

	models "github.com/fatflowers/pledge/internal/models"
	"github.com/fatflowers/pledge/pkg/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm stores records through gorm. The *gorm.DB must be opened with TranslateError
// so that duplicate keys surface as gorm.ErrDuplicatedKey.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Subscriptions() SubscriptionTable { return gormSubscriptions{db: g.db} }

func (g *Gorm) Transactions() TransactionTable { return gormTransactions{db: g.db} }

func (g *Gorm) SubscriptionLogs() SubscriptionLogTable { return gormLogs{db: g.db} }

func (g *Gorm) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormTx{db: tx})
	})
}

type gormTx struct{ db *gorm.DB }

func (t gormTx) Subscriptions() SubscriptionTable { return gormSubscriptions{db: t.db, lock: true} }

func (t gormTx) Transactions() TransactionTable { return gormTransactions{db: t.db} }

func (t gormTx) SubscriptionLogs() SubscriptionLogTable { return gormLogs{db: t.db} }

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

type gormSubscriptions struct {
	db *gorm.DB
	// lock makes reads take row locks; only set inside a transaction.
	lock bool
}

func (s gormSubscriptions) Get(ctx context.Context, donorID string) (*models.Subscription, error) {
	q := s.db.WithContext(ctx)
	if s.lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var sub models.Subscription
	if err := q.Where("donor_id = ?", donorID).First(&sub).Error; err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (s gormSubscriptions) Insert(ctx context.Context, sub *models.Subscription) error {
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s gormSubscriptions) Update(ctx context.Context, sub *models.Subscription) error {
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("donor_id = ?", sub.DonorID).
		Select("*").
		Updates(sub)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s gormSubscriptions) List(ctx context.Context) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

type gormTransactions struct{ db *gorm.DB }

func (t gormTransactions) Append(ctx context.Context, txn *models.Transaction) error {
	if err := t.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("failed to append transaction: %w", translate(err))
	}
	return nil
}

func (t gormTransactions) List(ctx context.Context, f TransactionFilter) ([]*models.Transaction, error) {
	filters := toCommonFilters(f)
	if filters == nil {
		return []*models.Transaction{}, nil
	}
	var txns []*models.Transaction
	err := t.db.WithContext(ctx).
		Where(clause.Where{Exprs: []clause.Expression{filters}}).
		Order("last_charged_at asc").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// toCommonFilters returns nil when the filter cannot match anything.
func toCommonFilters(f TransactionFilter) types.FiltersAnd {
	filters := types.FiltersAnd{}
	if f.SubscriptionIDs != nil {
		if len(f.SubscriptionIDs) == 0 {
			return nil
		}
		values := make([]any, 0, len(f.SubscriptionIDs))
		for _, id := range f.SubscriptionIDs {
			values = append(values, id)
		}
		filters = append(filters, &types.CommonFilter{Field: "subscription_id", Operator: types.CommonFilterOperatorIn, Values: values})
	}
	if f.DonorID != "" {
		filters = append(filters, &types.CommonFilter{Field: "donor_id", Operator: types.CommonFilterOperatorEq, Values: []any{f.DonorID}})
	}
	return filters
}

type gormLogs struct{ db *gorm.DB }

func (l gormLogs) Append(ctx context.Context, entry *models.SubscriptionLog) error {
	if err := l.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append subscription log: %w", translate(err))
	}
	return nil
}

func (l gormLogs) List(ctx context.Context, donorID string) ([]*models.SubscriptionLog, error) {
	var logs []*models.SubscriptionLog
	err := l.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at asc").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription logs: %w", err)
	}
	return logs, nil
}
