package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"arbitrage-shift-tracker/internal/database"
	"arbitrage-shift-tracker/internal/ingest"
	"arbitrage-shift-tracker/internal/platform"
)

func (s *Server) handleListOrders(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}
	employeeID, _ := strconv.ParseInt(c.Query("employee_id"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "500"))

	platformName := c.Query("platform")
	if platformName != "" && !platform.IsSupported(platformName) {
		respondError(c, http.StatusBadRequest, "unsupported platform")
		return
	}

	orders, err := s.repo.ListOrders(c.Request.Context(), database.OrderFilter{
		Platform:   platform.Normalize(platformName),
		EmployeeID: employeeID,
		From:       from,
		To:         to,
		Limit:      limit,
	})
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

type orderRequest struct {
	OrderID      string    `json:"order_id" binding:"required"`
	EmployeeID   *int64    `json:"employee_id"`
	Platform     string    `json:"platform" binding:"required"`
	AccountName  string    `json:"account_name"`
	Symbol       string    `json:"symbol"`
	Side         string    `json:"side"`
	Quantity     float64   `json:"quantity" binding:"required"`
	Price        float64   `json:"price"`
	TotalUSDT    float64   `json:"total_usdt"`
	FeesUSDT     float64   `json:"fees_usdt"`
	Status       string    `json:"status"`
	Counterparty *string   `json:"counterparty"`
	ExecutedAt   time.Time `json:"executed_at" binding:"required"`
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	platformName, err := platform.Validate(req.Platform)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	order := &database.Order{
		OrderID:      req.OrderID,
		EmployeeID:   req.EmployeeID,
		Platform:     platformName,
		AccountName:  req.AccountName,
		Symbol:       req.Symbol,
		Side:         req.Side,
		Quantity:     req.Quantity,
		Price:        req.Price,
		TotalUSDT:    req.TotalUSDT,
		FeesUSDT:     req.FeesUSDT,
		Status:       req.Status,
		Counterparty: req.Counterparty,
		ExecutedAt:   req.ExecutedAt,
	}
	if order.Symbol == "" {
		order.Symbol = "USDT"
	}
	if order.Status == "" {
		order.Status = "filled"
	}

	if err := s.repo.CreateOrder(c.Request.Context(), order); err != nil {
		respondError(c, http.StatusConflict, "order already exists or could not be created")
		return
	}
	if s.cache != nil {
		s.cache.InvalidateComputed(c.Request.Context())
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) handleDeleteOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.repo.DeleteOrder(c.Request.Context(), id); err != nil {
		respondRepoError(c, err)
		return
	}
	if s.cache != nil {
		s.cache.InvalidateComputed(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// handleUploadOrders ingests a platform export file. Multipart form fields:
// file, platform, account_name, and optionally report_id to scope the upload
// to a shift's window and link its orders.
func (s *Server) handleUploadOrders(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}

	maxBytes := int64(s.upload.MaxFileSizeMB) * 1024 * 1024
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	platformName := c.PostForm("platform")
	if platformName == "" {
		respondError(c, http.StatusBadRequest, "platform is required")
		return
	}
	accountName := c.PostForm("account_name")

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "unable to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "unable to read file")
		return
	}

	req := ingest.Request{
		Platform:    platformName,
		Filename:    fileHeader.Filename,
		Data:        data,
		AccountName: accountName,
	}

	if v := c.PostForm("report_id"); v != "" {
		reportID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid report_id")
			return
		}
		report, err := s.repo.GetShiftReportByID(c.Request.Context(), reportID)
		if err != nil {
			respondRepoError(c, err)
			return
		}
		req.Report = report
		req.WindowStart = report.ShiftStartTime
		req.WindowEnd = report.ShiftEndTime
	}

	summary, err := s.ingest.Ingest(c.Request.Context(), req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	s.eventBus.PublishOrdersUploaded(platform.Normalize(platformName), fileHeader.Filename,
		summary.TotalParsed, summary.Created, summary.Skipped)
	c.JSON(http.StatusOK, summary)
}
