package models

import (
	"time"

	"github.com/fatflowers/pledge/pkg/types"

	"gorm.io/datatypes"
)

// Transaction is an immutable record of one completed charge. It snapshots the
// subscription as it was at charge time.
type Transaction struct {
	ID             string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SubscriptionID string         `gorm:"column:subscription_id;type:uuid;not null;index" json:"subscriptionId"`
	DonorID        string         `gorm:"column:donor_id;type:varchar(128);not null;index" json:"donorId"`
	Amount         float64        `gorm:"column:amount;type:numeric(20,6);not null" json:"amount"`
	Currency       string         `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	AmountInUSD    float64        `gorm:"column:amount_in_usd;type:numeric(20,6);not null" json:"amountInUSD"`
	Interval       types.Interval `gorm:"column:interval;type:varchar(16);not null" json:"interval"`

	CampaignDescription string                      `gorm:"column:campaign_description;type:text" json:"campaignDescription"`
	CampaignTags        datatypes.JSONSlice[string] `gorm:"column:campaign_tags;type:jsonb;default:'[]'" json:"campaignTags"`
	CampaignSummary     string                      `gorm:"column:campaign_summary;type:text" json:"campaignSummary"`

	// CreatedAt is when the record was produced.
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"createdAt"`
	// LastChargedAt is the instant of this charge.
	LastChargedAt time.Time `gorm:"column:last_charged_at;not null;index" json:"lastChargedAt"`
}

func (Transaction) TableName() string {
	return "donation_transaction"
}

func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	c := *t
	if t.CampaignTags != nil {
		c.CampaignTags = append(datatypes.JSONSlice[string]{}, t.CampaignTags...)
	}
	return &c
}
