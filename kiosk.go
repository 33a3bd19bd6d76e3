package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/gallon_backend/config"
	"github.com/mmdatafocus/gallon_backend/models"
)

type takeGallonsRequest struct {
	EmployeeId string `json:"employee_id" binding:"required"`
	Quantity   int    `json:"quantity"`
}

// lookupHandler resolves a scanned badge to the employee's current allowance.
func (s *server) lookupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		externalId := strings.TrimSpace(c.Query("employee_id"))
		if externalId == "" {
			respondError(c, &models.ValidationError{Fields: map[string]string{"employee_id": "required"}})
			return
		}

		found, err := s.services().ledger.Lookup(c.Request.Context(), externalId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, found)
	}
}

// takeGallonsHandler records a distribution and answers with the refreshed kiosk state.
func (s *server) takeGallonsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input takeGallonsRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		ctx := c.Request.Context()
		svc := s.services()
		created, err := svc.recorder.Distribute(ctx, input.EmployeeId, input.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}

		body := gin.H{
			"message":     fmt.Sprintf("Successfully dispensed %d gallon(s).", created.Quantity),
			"transaction": created,
		}
		found, err := svc.ledger.Lookup(ctx, input.EmployeeId)
		if err != nil {
			// the distribution is already committed
			config.LogError(s.logger, "kiosk.go", "takeGallonsHandler", "Lookup", input.EmployeeId, err)
		} else {
			body["message"] = fmt.Sprintf("Successfully dispensed %d gallon(s) to %s.", created.Quantity, found.Employee.Name)
			body["employee"] = found.Employee
			body["remaining_allowance"] = found.RemainingAllowance
			body["transactions"] = found.Transactions
			body["current_month"] = found.CurrentMonth
		}
		c.JSON(http.StatusCreated, body)
	}
}
