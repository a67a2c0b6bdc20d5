package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"arbitrage-shift-tracker/internal/database"
	"arbitrage-shift-tracker/internal/platform"
)

type accountRequest struct {
	EmployeeID  *int64 `json:"employee_id"`
	Platform    string `json:"platform" binding:"required"`
	AccountName string `json:"account_name" binding:"required"`
	IsActive    *bool  `json:"is_active"`
}

func (s *Server) handleListAccounts(c *gin.Context) {
	accounts, err := s.repo.ListAccounts(c.Request.Context())
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (s *Server) handleCreateAccount(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	platformName, err := platform.Validate(req.Platform)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	account := &database.Account{
		EmployeeID:  req.EmployeeID,
		Platform:    platformName,
		AccountName: req.AccountName,
		IsActive:    true,
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}

	if err := s.repo.CreateAccount(c.Request.Context(), account); err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (s *Server) handleUpdateAccount(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	account, err := s.repo.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		respondRepoError(c, err)
		return
	}

	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	platformName, err := platform.Validate(req.Platform)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	account.EmployeeID = req.EmployeeID
	account.Platform = platformName
	account.AccountName = req.AccountName
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateAccount(c.Request.Context(), account); err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.repo.DeleteAccount(c.Request.Context(), id); err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (s *Server) handleBalanceHistory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	history, err := s.repo.ListBalanceHistory(c.Request.Context(), id, limit)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

type initialBalanceRequest struct {
	Balances []struct {
		Platform    string  `json:"platform" binding:"required"`
		AccountID   *int64  `json:"account_id"`
		AccountName string  `json:"account_name" binding:"required"`
		Balance     float64 `json:"balance"`
	} `json:"balances" binding:"required"`
}

func (s *Server) handleListInitialBalances(c *gin.Context) {
	balances, err := s.repo.ListInitialBalances(c.Request.Context())
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"initial_balances": balances})
}

func (s *Server) handleReplaceInitialBalances(c *gin.Context) {
	var req initialBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	balances := make([]*database.InitialBalance, 0, len(req.Balances))
	for _, item := range req.Balances {
		platformName, err := platform.Validate(item.Platform)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		balances = append(balances, &database.InitialBalance{
			Platform:    platformName,
			AccountID:   item.AccountID,
			AccountName: item.AccountName,
			Balance:     item.Balance,
		})
	}

	err := s.repo.WithTx(c.Request.Context(), func(tx *database.Repository) error {
		return tx.ReplaceInitialBalances(c.Request.Context(), balances)
	})
	if err != nil {
		respondRepoError(c, err)
		return
	}
	if s.cache != nil {
		s.cache.InvalidateComputed(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"initial_balances": balances})
}
