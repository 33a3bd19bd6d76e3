package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/gallon_backend/middlewares"
	"github.com/mmdatafocus/gallon_backend/models"
	"github.com/mmdatafocus/gallon_backend/utils"
)

func bindTransactionFilter(c *gin.Context) (models.TransactionFilter, error) {
	var filter models.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		return filter, &models.ValidationError{Fields: map[string]string{"page": "numeric"}}
	}
	return filter, nil
}

func (s *server) listTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := bindTransactionFilter(c)
		if err != nil {
			respondError(c, err)
			return
		}
		ctx := c.Request.Context()
		page, err := models.ListTransactions(ctx, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := middlewares.LoadTransactionEmployees(ctx, page.Data); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func (s *server) periodsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		periods, err := models.DistinctPeriods(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": periods})
	}
}

func (s *server) exportTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := bindTransactionFilter(c)
		if err != nil {
			respondError(c, err)
			return
		}
		data, err := models.ExportTransactions(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFileName(filter.Month)))
		c.Data(http.StatusOK, utils.XlsxContentType, data)
	}
}

func exportFileName(month string) string {
	if month == "" {
		month = "all"
	}
	return "gallon-transactions-" + month + ".xlsx"
}
