package statistics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	models "github.com/fatflowers/pledge/internal/models"
	"github.com/fatflowers/pledge/pkg/currency"
	"github.com/fatflowers/pledge/pkg/types"
)

type StatisticType string

const (
	StatisticTypeActiveSubscriptionCount StatisticType = "active_subscription_count"
	StatisticTypeSubscriptionsByInterval StatisticType = "subscriptions_by_interval"
	// monthly recurring pledge volume, every interval scaled to 30 days
	StatisticTypeMonthlyRecurringUSD StatisticType = "monthly_recurring_usd"
	StatisticTypeTotalChargedUSD     StatisticType = "total_charged_usd"
	StatisticTypeDailyChargedUSD     StatisticType = "daily_charged_usd"
	StatisticTypeCampaignTags        StatisticType = "campaign_tags"
)

// AllStatisticTypes is served when a request names no data items.
var AllStatisticTypes = []StatisticType{
	StatisticTypeActiveSubscriptionCount,
	StatisticTypeSubscriptionsByInterval,
	StatisticTypeMonthlyRecurringUSD,
	StatisticTypeTotalChargedUSD,
	StatisticTypeDailyChargedUSD,
	StatisticTypeCampaignTags,
}

type StatisticRequest struct {
	DataItems []StatisticType `json:"data_items"`
}

type StatisticResponseDataItem struct {
	Date  string  `json:"date,omitempty"`
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
	Count int64   `json:"count,omitempty"`
}

type StatisticResponse struct {
	Currency  string                                        `json:"currency"`
	DataItems map[StatisticType][]StatisticResponseDataItem `json:"data_items"`
}

type SubscriptionLister interface {
	ListActive(ctx context.Context) ([]*models.Subscription, error)
}

type TransactionLister interface {
	ListForDonor(ctx context.Context, donorID string) ([]*models.Transaction, error)
}

// Service reports over active subscriptions and their ledger, normalized to USD.
type Service struct {
	subs   SubscriptionLister
	ledger TransactionLister
}

func New(subs SubscriptionLister, ledger TransactionLister) *Service {
	return &Service{subs: subs, ledger: ledger}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *Service) getActiveSubscriptionCount(ctx context.Context) ([]StatisticResponseDataItem, error) {
	subs, err := s.subs.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return []StatisticResponseDataItem{{Value: float64(len(subs)), Count: int64(len(subs))}}, nil
}

func (s *Service) getSubscriptionsByInterval(ctx context.Context) ([]StatisticResponseDataItem, error) {
	subs, err := s.subs.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	grouped := lo.GroupBy(subs, func(sub *models.Subscription) types.Interval { return sub.Interval })
	return lo.FilterMap(types.SupportedIntervals, func(i types.Interval, _ int) (StatisticResponseDataItem, bool) {
		group, ok := grouped[i]
		return StatisticResponseDataItem{
			Label: i.String(),
			Value: roundCents(lo.SumBy(group, func(sub *models.Subscription) float64 { return sub.AmountInUSD })),
			Count: int64(len(group)),
		}, ok
	}), nil
}

func (s *Service) getMonthlyRecurringUSD(ctx context.Context) ([]StatisticResponseDataItem, error) {
	subs, err := s.subs.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	month, _ := types.IntervalMonthly.Period()
	total := lo.SumBy(subs, func(sub *models.Subscription) float64 {
		period, ok := sub.Interval.Period()
		if !ok {
			return 0
		}
		return sub.AmountInUSD * float64(month) / float64(period)
	})
	return []StatisticResponseDataItem{{Value: roundCents(total), Count: int64(len(subs))}}, nil
}

func (s *Service) getTotalChargedUSD(ctx context.Context) ([]StatisticResponseDataItem, error) {
	txns, err := s.ledger.ListForDonor(ctx, "")
	if err != nil {
		return nil, err
	}
	byCurrency := lo.GroupBy(txns, func(t *models.Transaction) string { return t.Currency })
	codes := lo.Keys(byCurrency)
	sort.Strings(codes)

	items := []StatisticResponseDataItem{{
		Label: currency.Base,
		Value: roundCents(lo.SumBy(txns, func(t *models.Transaction) float64 { return t.AmountInUSD })),
		Count: int64(len(txns)),
	}}
	for _, code := range codes {
		group := byCurrency[code]
		items = append(items, StatisticResponseDataItem{
			Label: currency.Format(lo.SumBy(group, func(t *models.Transaction) float64 { return t.Amount }), code),
			Value: roundCents(lo.SumBy(group, func(t *models.Transaction) float64 { return t.AmountInUSD })),
			Count: int64(len(group)),
		})
	}
	return items, nil
}

func (s *Service) getDailyChargedUSD(ctx context.Context) ([]StatisticResponseDataItem, error) {
	txns, err := s.ledger.ListForDonor(ctx, "")
	if err != nil {
		return nil, err
	}
	byDate := lo.GroupBy(txns, func(t *models.Transaction) string { return t.LastChargedAt.UTC().Format(time.DateOnly) })
	dates := lo.Keys(byDate)
	// newest first
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return lo.Map(dates, func(date string, _ int) StatisticResponseDataItem {
		group := byDate[date]
		return StatisticResponseDataItem{
			Date:  date,
			Value: roundCents(lo.SumBy(group, func(t *models.Transaction) float64 { return t.AmountInUSD })),
			Count: int64(len(group)),
		}
	}), nil
}

func (s *Service) getCampaignTags(ctx context.Context) ([]StatisticResponseDataItem, error) {
	subs, err := s.subs.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	pledged := map[string]float64{}
	for _, sub := range subs {
		for _, tag := range lo.Uniq([]string(sub.CampaignTags)) {
			counts[tag]++
			pledged[tag] += sub.AmountInUSD
		}
	}
	tags := lo.Keys(counts)
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	return lo.Map(tags, func(tag string, _ int) StatisticResponseDataItem {
		return StatisticResponseDataItem{Label: tag, Value: roundCents(pledged[tag]), Count: counts[tag]}
	}), nil
}

func (s *Service) getStatistic(ctx context.Context, t StatisticType) ([]StatisticResponseDataItem, error) {
	switch t {
	case StatisticTypeActiveSubscriptionCount:
		return s.getActiveSubscriptionCount(ctx)
	case StatisticTypeSubscriptionsByInterval:
		return s.getSubscriptionsByInterval(ctx)
	case StatisticTypeMonthlyRecurringUSD:
		return s.getMonthlyRecurringUSD(ctx)
	case StatisticTypeTotalChargedUSD:
		return s.getTotalChargedUSD(ctx)
	case StatisticTypeDailyChargedUSD:
		return s.getDailyChargedUSD(ctx)
	case StatisticTypeCampaignTags:
		return s.getCampaignTags(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidDataItem, t)
	}
}

// GetStatistic computes the requested data items concurrently.
func (s *Service) GetStatistic(ctx context.Context, request *StatisticRequest) (*StatisticResponse, error) {
	items := AllStatisticTypes
	if request != nil && len(request.DataItems) > 0 {
		items = lo.Uniq(request.DataItems)
	}
	for _, item := range items {
		if !lo.Contains(AllStatisticTypes, item) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDataItem, item)
		}
	}

	var mu sync.Mutex
	results := make(map[StatisticType][]StatisticResponseDataItem, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for _, item := range items {
		g.Go(func() error {
			res, err := s.getStatistic(gctx, item)
			if err != nil {
				return err
			}
			mu.Lock()
			results[item] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &StatisticResponse{Currency: currency.Base, DataItems: results}, nil
}
