package handlers

import (
	models "github.com/fatflowers/pledge/internal/models"
)

type RespHealth struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type RespMessage struct {
	Message string `json:"message"`
}

type RespCreateSubscription struct {
	Message      string               `json:"message"`
	Subscription *models.Subscription `json:"subscription"`
}

type SubscriptionSummary struct {
	TotalSubscriptions int `json:"totalSubscriptions"`
}

type RespListSubscriptions struct {
	Subscriptions []SubscriptionView  `json:"subscriptions"`
	Summary       SubscriptionSummary `json:"summary"`
}

type HistorySummary struct {
	TotalEntries int `json:"totalEntries"`
}

type RespSubscriptionHistory struct {
	History []HistoryEntryView `json:"history"`
	Summary HistorySummary     `json:"summary"`
}

type TransactionSummary struct {
	TotalTransactions int `json:"totalTransactions"`
}

type RespListTransactions struct {
	Transactions []*models.Transaction `json:"transactions"`
	Summary      TransactionSummary    `json:"summary"`
}
