package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/fatflowers/pledge/internal/app/service/statistics"
	"github.com/fatflowers/pledge/pkg/response"
)

// @Summary      Donation statistics
// @Description  USD-normalized reporting over active subscriptions and their charges. Repeat item to pick data items; all are returned by default.
// @Tags         Statistics
// @Produce      json
// @Param        item query []string false "Data item ids" collectionFormat(multi)
// @Success      200  {object}  statistics.StatisticResponse
// @Failure      400  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/statistics [get]
func ApiGetStatistics(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := &statistics.StatisticRequest{
			DataItems: lo.Map(c.QueryArray("item"), func(s string, _ int) statistics.StatisticType {
				return statistics.StatisticType(s)
			}),
		}
		res, err := svc.GetStatistic(c.Request.Context(), req)
		if errors.Is(err, statistics.ErrInvalidDataItem) {
			response.BadRequest(c, "Invalid request", err.Error())
			return
		}
		if err != nil {
			response.InternalError(c, "Failed to get statistics", err.Error())
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func RegisterStatisticsRoutes(r gin.IRouter, svc *statistics.Service) {
	r.GET("/statistics", ApiGetStatistics(svc))
}
