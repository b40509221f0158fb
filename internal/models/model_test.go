package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestTableNames(t *testing.T) {
	require.Equal(t, "donation_subscription", Subscription{}.TableName())
	require.Equal(t, "donation_transaction", Transaction{}.TableName())
	require.Equal(t, "donation_subscription_log", SubscriptionLog{}.TableName())
}

func TestSubscriptionClone_IsDeep(t *testing.T) {
	charged := time.Unix(1700000000, 0).UTC()
	orig := &Subscription{DonorID: "d1", CampaignTags: []string{"a"}, LastChargedAt: &charged}

	c := orig.Clone()
	c.CampaignTags[0] = "b"
	*c.LastChargedAt = charged.Add(time.Hour)

	require.Equal(t, "a", orig.CampaignTags[0])
	require.Equal(t, charged, *orig.LastChargedAt)
	require.Nil(t, (*Subscription)(nil).Clone())
}

func TestSubscriptionJSON_NeverChargedIsNull(t *testing.T) {
	b, err := json.Marshal(&Subscription{DonorID: "d1", CampaignTags: []string{"general"}})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	require.Contains(t, m, "lastChargedAt")
	require.Nil(t, m["lastChargedAt"])
	require.NotContains(t, m, "deletedAt")
	require.Equal(t, []any{"general"}, m["campaignTags"])
}

func TestSubscriptionLogClone_IsDeep(t *testing.T) {
	orig := &SubscriptionLog{
		ID:    "l1",
		After: datatypes.NewJSONType(&Subscription{DonorID: "d1", CampaignTags: []string{"a"}}),
	}
	c := orig.Clone()
	c.After.Data().CampaignTags[0] = "b"

	require.Equal(t, "a", orig.After.Data().CampaignTags[0])
	require.Nil(t, c.Before.Data())
}

func TestSubscriptionLogJSON_EmptyBeforeIsNull(t *testing.T) {
	b, err := json.Marshal(&SubscriptionLog{ID: "l1", After: datatypes.NewJSONType(&Subscription{DonorID: "d1"})})
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	require.Nil(t, out["before"])
	require.Equal(t, "d1", out["after"].(map[string]any)["donorId"])
}
