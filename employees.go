package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/gallon_backend/models"
	"github.com/mmdatafocus/gallon_backend/utils"
)

type toggleActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// employeeIdParam reads :id. Anything unparsable is treated as a missing employee.
func employeeIdParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, models.ErrEmployeeNotFound
	}
	return id, nil
}

func (s *server) listEmployeesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		result, err := models.ListEmployees(c.Request.Context(), page)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *server) createEmployeeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewEmployee
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		employee, err := models.CreateEmployee(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, employee)
	}
}

func (s *server) getEmployeeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := employeeIdParam(c)
		if err != nil {
			respondError(c, err)
			return
		}
		detail, err := models.GetEmployeeDetail(c.Request.Context(), s.services().ledger, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func (s *server) updateEmployeeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := employeeIdParam(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var input models.UpdateEmployee
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		employee, err := models.UpdateEmployeeById(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, employee)
	}
}

func (s *server) deleteEmployeeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := employeeIdParam(c)
		if err != nil {
			respondError(c, err)
			return
		}
		employee, err := models.DeleteEmployee(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully.", "employee": employee})
	}
}

// toggleActiveHandler sets is_active when given, otherwise flips it.
func (s *server) toggleActiveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := employeeIdParam(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var input toggleActiveRequest
		if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err)
			return
		}

		ctx := c.Request.Context()
		employee, err := models.GetEmployee(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		isActive := utils.DereferencePtr(input.IsActive, !employee.Active())
		employee, err = models.ToggleActiveEmployee(ctx, id, isActive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, employee)
	}
}

// qrHandler returns what a badge QR code encodes. Rendering the image is left to the client.
func (s *server) qrHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := employeeIdParam(c)
		if err != nil {
			respondError(c, err)
			return
		}
		employee, err := models.GetEmployee(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"employee_id": employee.EmployeeId,
			"name":        employee.Name,
			"qr_data":     employee.EmployeeId,
		})
	}
}
