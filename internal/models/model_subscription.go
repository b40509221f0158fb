package models

import (
	"time"

	"github.com/fatflowers/pledge/pkg/types"

	"gorm.io/datatypes"
)

// Subscription is a donor's recurring pledge. DonorID is the primary key, so a donor
// holds at most one record; a soft-deleted record keeps the slot until it is resurrected.
type Subscription struct {
	DonorID string `gorm:"column:donor_id;type:varchar(128);primaryKey" json:"donorId"`
	// ID identifies this lifecycle of the donor slot. Transactions reference it.
	ID          string         `gorm:"column:id;type:uuid;not null;uniqueIndex" json:"subscriptionId"`
	Amount      float64        `gorm:"column:amount;type:numeric(20,6);not null" json:"amount"`
	Currency    string         `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	AmountInUSD float64        `gorm:"column:amount_in_usd;type:numeric(20,6);not null" json:"amountInUSD"`
	Interval    types.Interval `gorm:"column:interval;type:varchar(16);not null" json:"interval"`

	CampaignDescription string                      `gorm:"column:campaign_description;type:text;not null" json:"campaignDescription"`
	CampaignTags        datatypes.JSONSlice[string] `gorm:"column:campaign_tags;type:jsonb;default:'[]'" json:"campaignTags"`
	CampaignSummary     string                      `gorm:"column:campaign_summary;type:text" json:"campaignSummary"`

	CreatedAt time.Time `gorm:"column:created_at;not null" json:"createdAt"`
	Active    bool      `gorm:"column:active;not null;index" json:"active"`
	// LastChargedAt is nil until the first charge; nil means due immediately.
	LastChargedAt *time.Time `gorm:"column:last_charged_at;default:null" json:"lastChargedAt"`
	DeletedAt     *time.Time `gorm:"column:deleted_at;default:null" json:"deletedAt,omitempty"`
}

func (Subscription) TableName() string {
	return "donation_subscription"
}

// Clone returns a deep copy safe to hand across goroutines.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	c := *s
	if s.CampaignTags != nil {
		c.CampaignTags = append(datatypes.JSONSlice[string]{}, s.CampaignTags...)
	}
	if s.LastChargedAt != nil {
		t := *s.LastChargedAt
		c.LastChargedAt = &t
	}
	if s.DeletedAt != nil {
		t := *s.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}
