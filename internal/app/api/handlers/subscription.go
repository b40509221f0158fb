package handlers

import (
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/fatflowers/pledge/internal/app/service/subscription"
	models "github.com/fatflowers/pledge/internal/models"
	"github.com/fatflowers/pledge/pkg/currency"
	"github.com/fatflowers/pledge/pkg/logctx"
	"github.com/fatflowers/pledge/pkg/response"
	"github.com/fatflowers/pledge/pkg/types"
)

// CreateSubscriptionBody is decoded loosely so that a missing or falsy amount
// reads as missing and a non-numeric one as invalid.
type CreateSubscriptionBody struct {
	DonorID             string `json:"donorId"`
	Amount              any    `json:"amount" swaggertype:"number"`
	Currency            string `json:"currency"`
	Interval            string `json:"interval"`
	CampaignDescription string `json:"campaignDescription"`
}

func (b *CreateSubscriptionBody) toRequest() *subscription.CreateRequest {
	return &subscription.CreateRequest{
		DonorID:             b.DonorID,
		Amount:              parseAmount(b.Amount),
		Currency:            b.Currency,
		Interval:            b.Interval,
		CampaignDescription: b.CampaignDescription,
	}
}

func parseAmount(v any) float64 {
	switch a := v.(type) {
	case nil:
		return 0
	case float64:
		return a
	case bool:
		if !a {
			return 0
		}
	case string:
		if a == "" {
			return 0
		}
	}
	return math.NaN()
}

// SubscriptionView is a subscription as listed to clients, without amountInUSD.
type SubscriptionView struct {
	DonorID             string         `json:"donorId"`
	SubscriptionID      string         `json:"subscriptionId"`
	Amount              float64        `json:"amount"`
	Currency            string         `json:"currency"`
	Interval            types.Interval `json:"interval" swaggertype:"string"`
	CampaignDescription string         `json:"campaignDescription"`
	CampaignTags        []string       `json:"campaignTags"`
	CampaignSummary     string         `json:"campaignSummary"`
	CreatedAt           time.Time      `json:"createdAt"`
	Active              bool           `json:"active"`
	LastChargedAt       *time.Time     `json:"lastChargedAt"`
}

func toSubscriptionView(s *models.Subscription, _ int) SubscriptionView {
	return SubscriptionView{
		DonorID:             s.DonorID,
		SubscriptionID:      s.ID,
		Amount:              s.Amount,
		Currency:            s.Currency,
		Interval:            s.Interval,
		CampaignDescription: s.CampaignDescription,
		CampaignTags:        lo.Ternary(s.CampaignTags == nil, []string{}, []string(s.CampaignTags)),
		CampaignSummary:     s.CampaignSummary,
		CreatedAt:           s.CreatedAt,
		Active:              s.Active,
		LastChargedAt:       s.LastChargedAt,
	}
}

// HistoryEntryView is one lifecycle change of a donor's subscription slot.
type HistoryEntryView struct {
	ID             string                         `json:"id"`
	SubscriptionID string                         `json:"subscriptionId"`
	Reason         types.SubscriptionChangeReason `json:"reason" swaggertype:"string"`
	Before         *SubscriptionView              `json:"before"`
	After          *SubscriptionView              `json:"after"`
	CreatedAt      time.Time                      `json:"createdAt"`
}

func toHistoryEntryView(l *models.SubscriptionLog, _ int) HistoryEntryView {
	view := func(s *models.Subscription) *SubscriptionView {
		if s == nil {
			return nil
		}
		v := toSubscriptionView(s, 0)
		return &v
	}
	return HistoryEntryView{
		ID:             l.ID,
		SubscriptionID: l.SubscriptionID,
		Reason:         l.Reason,
		Before:         view(l.Before.Data()),
		After:          view(l.After.Data()),
		CreatedAt:      l.CreatedAt,
	}
}

func createErrorTitle(err error) (int, string) {
	switch {
	case errors.Is(err, subscription.ErrValidation):
		return http.StatusBadRequest, "Missing required fields"
	case errors.Is(err, currency.ErrUnsupportedCurrency):
		return http.StatusBadRequest, "Unsupported currency"
	case errors.Is(err, types.ErrUnsupportedInterval):
		return http.StatusBadRequest, "Unsupported interval"
	case errors.Is(err, subscription.ErrInvalidAmount):
		return http.StatusBadRequest, "Invalid amount"
	case errors.Is(err, subscription.ErrAlreadyExists):
		return http.StatusBadRequest, "Subscription already exists"
	default:
		return http.StatusInternalServerError, "Failed to create subscription"
	}
}

// @Summary      Create subscription
// @Description  Creates a recurring donation. The first charge happens on the next billing tick.
// @Tags         Subscriptions
// @Accept       json
// @Produce      json
// @Param        request body handlers.CreateSubscriptionBody true "Subscription"
// @Success      201  {object}  handlers.RespCreateSubscription
// @Failure      400  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/subscriptions [post]
func ApiCreateSubscription(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body CreateSubscriptionBody
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			response.BadRequest(c, "Invalid request", err.Error())
			return
		}
		ctx := logctx.WithDonorID(c.Request.Context(), body.DonorID)
		sub, err := svc.Create(ctx, body.toRequest())
		if err != nil {
			status, title := createErrorTitle(err)
			response.Abort(c, status, response.Error(title, err.Error()))
			return
		}
		c.JSON(http.StatusCreated, RespCreateSubscription{
			Message:      "Subscription created successfully",
			Subscription: sub,
		})
	}
}

// @Summary      List subscriptions
// @Description  Lists active subscriptions.
// @Tags         Subscriptions
// @Produce      json
// @Success      200  {object}  handlers.RespListSubscriptions
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/subscriptions [get]
func ApiListSubscriptions(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		subs, err := svc.ListActive(c.Request.Context())
		if err != nil {
			response.InternalError(c, "Failed to get subscriptions", err.Error())
			return
		}
		c.JSON(http.StatusOK, RespListSubscriptions{
			Subscriptions: lo.Map(subs, toSubscriptionView),
			Summary:       SubscriptionSummary{TotalSubscriptions: len(subs)},
		})
	}
}

// @Summary      Delete subscription
// @Description  Soft-deletes the donor's active subscription. Its transactions are hidden from listings.
// @Tags         Subscriptions
// @Produce      json
// @Param        donorId path string true "Donor ID"
// @Success      200  {object}  handlers.RespMessage
// @Failure      404  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/subscriptions/{donorId} [delete]
func ApiDeleteSubscription(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		donorID := c.Param("donorId")
		err := svc.SoftDelete(logctx.WithDonorID(c.Request.Context(), donorID), donorID)
		if errors.Is(err, subscription.ErrNotFound) {
			response.NotFound(c, "Subscription not found", "Failed to delete subscription")
			return
		}
		if err != nil {
			response.InternalError(c, "Failed to delete subscription", err.Error())
			return
		}
		c.JSON(http.StatusOK, RespMessage{Message: "Subscription deleted successfully"})
	}
}

// @Summary      Subscription history
// @Description  Lists the lifecycle changes (created, deleted, resurrected) of the donor's subscription, oldest first.
// @Tags         Subscriptions
// @Produce      json
// @Param        donorId path string true "Donor ID"
// @Success      200  {object}  handlers.RespSubscriptionHistory
// @Failure      404  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/subscriptions/{donorId}/history [get]
func ApiSubscriptionHistory(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		donorID := c.Param("donorId")
		logs, err := svc.History(c.Request.Context(), donorID)
		if errors.Is(err, subscription.ErrNotFound) {
			response.NotFound(c, "Subscription not found", "No history for donor "+donorID)
			return
		}
		if err != nil {
			response.InternalError(c, "Failed to get subscription history", err.Error())
			return
		}
		c.JSON(http.StatusOK, RespSubscriptionHistory{
			History: lo.Map(logs, toHistoryEntryView),
			Summary: HistorySummary{TotalEntries: len(logs)},
		})
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, svc *subscription.Service) {
	r.POST("/subscriptions", ApiCreateSubscription(svc))
	r.GET("/subscriptions", ApiListSubscriptions(svc))
	r.DELETE("/subscriptions/:donorId", ApiDeleteSubscription(svc))
	r.GET("/subscriptions/:donorId/history", ApiSubscriptionHistory(svc))
}
