package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/pledge/internal/app/service/transaction"
	"github.com/fatflowers/pledge/pkg/response"
)

// @Summary      List transactions
// @Description  Lists charges of active subscriptions, optionally for one donor.
// @Tags         Transactions
// @Produce      json
// @Param        donorId query string false "Donor ID"
// @Success      200  {object}  handlers.RespListTransactions
// @Failure      400  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/transactions [get]
func ApiListTransactions(ledger *transaction.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		donorIDs := c.QueryArray("donorId")
		if len(donorIDs) > 1 {
			response.BadRequest(c, "Invalid donorId", "donorId must be a string")
			return
		}
		donorID := ""
		if len(donorIDs) == 1 {
			donorID = donorIDs[0]
		}

		txns, err := ledger.ListForDonor(c.Request.Context(), donorID)
		if err != nil {
			response.InternalError(c, "Failed to get transactions", err.Error())
			return
		}
		c.JSON(http.StatusOK, RespListTransactions{
			Transactions: txns,
			Summary:      TransactionSummary{TotalTransactions: len(txns)},
		})
	}
}

func RegisterTransactionRoutes(r gin.IRouter, ledger *transaction.Ledger) {
	r.GET("/transactions", ApiListTransactions(ledger))
}
