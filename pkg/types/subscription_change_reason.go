package types

// SubscriptionChangeReason labels an entry in a donor's subscription history.
type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonCreated     SubscriptionChangeReason = "created"
	SubscriptionChangeReasonResurrected SubscriptionChangeReason = "resurrected"
	SubscriptionChangeReasonDeleted     SubscriptionChangeReason = "deleted"
)
