package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	models "github.com/fatflowers/pledge/internal/models"
	"github.com/fatflowers/pledge/pkg/types"
)

type fakeSubs struct {
	subs []*models.Subscription
	err  error
}

func (f fakeSubs) ListActive(context.Context) ([]*models.Subscription, error) { return f.subs, f.err }

type fakeLedger struct {
	txns []*models.Transaction
	err  error
}

func (f fakeLedger) ListForDonor(context.Context, string) ([]*models.Transaction, error) {
	return f.txns, f.err
}

var day1 = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

func fixture() *Service {
	subs := []*models.Subscription{
		{DonorID: "a", Interval: types.IntervalMonthly, AmountInUSD: 30, Active: true,
			CampaignTags: datatypes.JSONSlice[string]{"water", "nonprofit"}},
		{DonorID: "b", Interval: types.IntervalDaily, AmountInUSD: 1, Active: true,
			CampaignTags: datatypes.JSONSlice[string]{"general", "nonprofit"}},
		{DonorID: "c", Interval: types.IntervalYearly, AmountInUSD: 365, Active: true,
			CampaignTags: datatypes.JSONSlice[string]{"water", "nonprofit", "water"}},
	}
	txns := []*models.Transaction{
		{DonorID: "a", Currency: "USD", Amount: 30, AmountInUSD: 30, LastChargedAt: day1},
		{DonorID: "b", Currency: "EUR", Amount: 0.85, AmountInUSD: 1, LastChargedAt: day1},
		{DonorID: "b", Currency: "EUR", Amount: 0.85, AmountInUSD: 1, LastChargedAt: day1.Add(24 * time.Hour)},
	}
	return New(fakeSubs{subs: subs}, fakeLedger{txns: txns})
}

func TestGetStatistic_AllItemsByDefault(t *testing.T) {
	res, err := fixture().GetStatistic(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "USD", res.Currency)
	require.Len(t, res.DataItems, len(AllStatisticTypes))

	require.Equal(t, int64(3), res.DataItems[StatisticTypeActiveSubscriptionCount][0].Count)
	// 30 monthly + 1 daily * 30 + 365 yearly * 30/365
	require.InDelta(t, 90.0, res.DataItems[StatisticTypeMonthlyRecurringUSD][0].Value, 0.001)
}

func TestGetStatistic_ByInterval(t *testing.T) {
	res, err := fixture().GetStatistic(context.Background(), &StatisticRequest{
		DataItems: []StatisticType{StatisticTypeSubscriptionsByInterval},
	})
	require.NoError(t, err)
	items := res.DataItems[StatisticTypeSubscriptionsByInterval]
	require.Equal(t, []string{"daily", "monthly", "yearly"}, []string{items[0].Label, items[1].Label, items[2].Label})
	require.Equal(t, 365.0, items[2].Value)
}

func TestGetStatistic_Charged(t *testing.T) {
	res, err := fixture().GetStatistic(context.Background(), &StatisticRequest{
		DataItems: []StatisticType{StatisticTypeTotalChargedUSD, StatisticTypeDailyChargedUSD},
	})
	require.NoError(t, err)

	total := res.DataItems[StatisticTypeTotalChargedUSD]
	require.Equal(t, StatisticResponseDataItem{Label: "USD", Value: 32, Count: 3}, total[0])
	require.Len(t, total, 3)

	daily := res.DataItems[StatisticTypeDailyChargedUSD]
	require.Equal(t, "2025-02-02", daily[0].Date)
	require.Equal(t, 1.0, daily[0].Value)
	require.Equal(t, "2025-02-01", daily[1].Date)
	require.Equal(t, int64(2), daily[1].Count)
}

func TestGetStatistic_CampaignTags(t *testing.T) {
	res, err := fixture().GetStatistic(context.Background(), &StatisticRequest{
		DataItems: []StatisticType{StatisticTypeCampaignTags},
	})
	require.NoError(t, err)
	tags := res.DataItems[StatisticTypeCampaignTags]
	require.Equal(t, "nonprofit", tags[0].Label)
	require.Equal(t, int64(3), tags[0].Count)
	require.Equal(t, "water", tags[1].Label)
	require.Equal(t, int64(2), tags[1].Count)
	require.Equal(t, 395.0, tags[1].Value)
}

func TestGetStatistic_NeverDropsItems(t *testing.T) {
	svc := fixture()
	ctx := context.Background()
	for i := 0; i < 2000; i++ {
		res, err := svc.GetStatistic(ctx, nil)
		require.NoError(t, err)
		require.Len(t, res.DataItems, len(AllStatisticTypes), "iteration %d", i)
		for _, item := range AllStatisticTypes {
			require.Contains(t, res.DataItems, item, "iteration %d", i)
		}
	}
}

func TestGetStatistic_OneFailingItemFailsRequest(t *testing.T) {
	svc := New(fixture().subs, fakeLedger{err: errors.New("ledger down")})
	for i := 0; i < 200; i++ {
		res, err := svc.GetStatistic(context.Background(), nil)
		require.ErrorContains(t, err, "ledger down")
		require.Nil(t, res)
	}
}

func TestGetStatistic_InvalidItem(t *testing.T) {
	_, err := fixture().GetStatistic(context.Background(), &StatisticRequest{DataItems: []StatisticType{"nope"}})
	require.ErrorIs(t, err, ErrInvalidDataItem)
}

func TestGetStatistic_PropagatesErrors(t *testing.T) {
	svc := New(fakeSubs{err: errors.New("db down")}, fakeLedger{})
	_, err := svc.GetStatistic(context.Background(), &StatisticRequest{
		DataItems: []StatisticType{StatisticTypeActiveSubscriptionCount},
	})
	require.Error(t, err)
}
