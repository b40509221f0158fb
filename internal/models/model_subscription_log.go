package models

import (
	"time"

	"github.com/fatflowers/pledge/pkg/types"

	"gorm.io/datatypes"
)

// SubscriptionLog records lifecycle changes to a donor's subscription slot.
// Charges are not logged here; the transaction ledger covers them.
type SubscriptionLog struct {
	ID             string                         `gorm:"column:id;type:uuid;primary_key" json:"id"`
	DonorID        string                         `gorm:"column:donor_id;type:varchar(128);index:idx_donor_id_created_at,priority:1;not null" json:"donorId"`
	SubscriptionID string                         `gorm:"column:subscription_id;type:uuid;not null" json:"subscriptionId"`
	Reason         types.SubscriptionChangeReason `gorm:"column:reason;type:varchar(32);not null" json:"reason"`
	// Before is null for a first creation.
	Before datatypes.JSONType[*Subscription] `gorm:"column:before;type:jsonb;default:'null'" json:"before"`
	After  datatypes.JSONType[*Subscription] `gorm:"column:after;type:jsonb;default:'null'" json:"after"`
	// TraceID ties the entry to the request that caused it.
	TraceID   string    `gorm:"column:trace_id;type:varchar(64)" json:"traceId,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_donor_id_created_at,priority:2" json:"createdAt"`
}

func (SubscriptionLog) TableName() string {
	return "donation_subscription_log"
}

func (l *SubscriptionLog) Clone() *SubscriptionLog {
	if l == nil {
		return nil
	}
	c := *l
	c.Before = datatypes.NewJSONType(l.Before.Data().Clone())
	c.After = datatypes.NewJSONType(l.After.Data().Clone())
	return &c
}
