package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arbitrage-shift-tracker/internal/database"
)

type employeeRequest struct {
	Name          string   `json:"name" binding:"required"`
	Telegram      *string  `json:"telegram"`
	IsActive      *bool    `json:"is_active"`
	SalaryPercent *float64 `json:"salary_percent"`
}

func (s *Server) handleListEmployees(c *gin.Context) {
	employees, err := s.repo.ListEmployees(c.Request.Context())
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

func (s *Server) handleCreateEmployee(c *gin.Context) {
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	employee := &database.Employee{
		Name:          req.Name,
		Telegram:      req.Telegram,
		IsActive:      true,
		SalaryPercent: req.SalaryPercent,
	}
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}

	if err := s.repo.CreateEmployee(c.Request.Context(), employee); err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func (s *Server) handleGetEmployee(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	employee, err := s.repo.GetEmployeeByID(c.Request.Context(), id)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (s *Server) handleUpdateEmployee(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	employee, err := s.repo.GetEmployeeByID(c.Request.Context(), id)
	if err != nil {
		respondRepoError(c, err)
		return
	}

	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	employee.Name = req.Name
	employee.Telegram = req.Telegram
	employee.SalaryPercent = req.SalaryPercent
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateEmployee(c.Request.Context(), employee); err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (s *Server) handleDeleteEmployee(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.repo.DeleteEmployee(c.Request.Context(), id); err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (s *Server) handleListEmployeeScams(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if _, err := s.repo.GetEmployeeByID(c.Request.Context(), id); err != nil {
		respondRepoError(c, err)
		return
	}
	history, err := s.repo.ListScamHistory(c.Request.Context(), id)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scams": history})
}
