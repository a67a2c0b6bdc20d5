package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"arbitrage-shift-tracker/internal/balance"
	"arbitrage-shift-tracker/internal/database"
	"arbitrage-shift-tracker/internal/events"
	"arbitrage-shift-tracker/internal/linker"
)

type reportRequest struct {
	EmployeeID    int64            `json:"employee_id" binding:"required"`
	ShiftDate     string           `json:"shift_date" binding:"required"` // YYYY-MM-DD
	ShiftType     string           `json:"shift_type" binding:"required"`
	TotalRequests int              `json:"total_requests"`
	Balances      balance.Snapshot `json:"balances"`

	ScamAmount   float64 `json:"scam_amount"`
	ScamComment  string  `json:"scam_comment"`
	ScamPersonal bool    `json:"scam_personal"`

	DokidkaAmount           float64 `json:"dokidka_amount"`
	DokidkaComment          string  `json:"dokidka_comment"`
	InternalTransferAmount  float64 `json:"internal_transfer_amount"`
	InternalTransferComment string  `json:"internal_transfer_comment"`

	AppealAmount   float64 `json:"appeal_amount"`
	AppealComment  string  `json:"appeal_comment"`
	AppealDeducted bool    `json:"appeal_deducted"`

	BybitRequests int `json:"bybit_requests"`
	HTXRequests   int `json:"htx_requests"`
	BlissRequests int `json:"bliss_requests"`

	StartPhoto *string `json:"start_photo"`
	EndPhoto   *string `json:"end_photo"`

	ShiftStartTime *time.Time `json:"shift_start_time"`
	ShiftEndTime   *time.Time `json:"shift_end_time"`
}

func (r *reportRequest) toModel(report *database.ShiftReport) (bool, string) {
	shiftDate, err := time.Parse("2006-01-02", r.ShiftDate)
	if err != nil {
		return false, "invalid shift_date, expected YYYY-MM-DD"
	}

	report.EmployeeID = r.EmployeeID
	report.ShiftDate = shiftDate
	report.ShiftType = r.ShiftType
	report.TotalRequests = r.TotalRequests
	report.Balances = r.Balances
	if report.Balances == nil {
		report.Balances = balance.Snapshot{}
	}
	report.ScamAmount = r.ScamAmount
	report.ScamComment = r.ScamComment
	report.ScamPersonal = r.ScamPersonal
	report.DokidkaAmount = r.DokidkaAmount
	report.DokidkaComment = r.DokidkaComment
	report.InternalTransferAmount = r.InternalTransferAmount
	report.InternalTransferComment = r.InternalTransferComment
	report.AppealAmount = r.AppealAmount
	report.AppealComment = r.AppealComment
	report.AppealDeducted = r.AppealDeducted
	report.BybitRequests = r.BybitRequests
	report.HTXRequests = r.HTXRequests
	report.BlissRequests = r.BlissRequests
	report.StartPhoto = r.StartPhoto
	report.EndPhoto = r.EndPhoto
	report.ShiftStartTime = r.ShiftStartTime
	report.ShiftEndTime = r.ShiftEndTime
	return true, ""
}

func (s *Server) handleListReports(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}
	employeeID, _ := strconv.ParseInt(c.Query("employee_id"), 10, 64)

	list, err := s.reports.List(c.Request.Context(), from, to, employeeID)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": list})
}

func (s *Server) handleCreateReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	report := &database.ShiftReport{}
	if ok, msg := req.toModel(report); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	result, err := s.reports.Create(c.Request.Context(), report)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	s.eventBus.PublishReportCreated(report.ID, report.EmployeeID,
		report.ShiftDate.Format("2006-01-02"), report.ShiftType)
	if report.ScamAmount != 0 {
		s.eventBus.PublishScamRecorded(report.ID, report.EmployeeID, report.ScamAmount, report.ScamPersonal)
	}
	if result.Linked > 0 {
		s.eventBus.PublishOrdersLinked(report.ID, report.EmployeeID, result.Linked)
	}

	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleGetReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	result, err := s.reports.Get(c.Request.Context(), id)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleUpdateReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	existing, err := s.reports.Get(c.Request.Context(), id)
	if err != nil {
		respondRepoError(c, err)
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	report := existing.ShiftReport
	if ok, msg := req.toModel(report); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	result, err := s.reports.Update(c.Request.Context(), report)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	s.eventBus.PublishReportUpdated(report.ID, report.EmployeeID)
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleDeleteReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.reports.Delete(c.Request.Context(), id); err != nil {
		respondRepoError(c, err)
		return
	}
	s.eventBus.PublishReportDeleted(id)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// handleLinkReport re-runs the link pass for a report, used after its shift
// window was supplied late
func (s *Server) handleLinkReport(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	result, err := s.reports.Get(c.Request.Context(), id)
	if err != nil {
		respondRepoError(c, err)
		return
	}

	linked, err := linker.New(s.repo).Link(c.Request.Context(), result.ShiftReport)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if linked > 0 {
		if s.cache != nil {
			s.cache.InvalidateComputed(c.Request.Context())
		}
		s.eventBus.PublishOrdersLinked(id, result.EmployeeID, linked)
	}
	c.JSON(http.StatusOK, gin.H{"linked": linked})
}

func (s *Server) handleDashboard(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}
	dashboard, err := s.reports.BuildDashboard(c.Request.Context(), from, to)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (s *Server) handlePayroll(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}
	payroll, err := s.reports.Payroll(c.Request.Context(), from, to)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payroll": payroll})
}

func (s *Server) handleScamHistory(c *gin.Context) {
	from, to, ok := periodQuery(c)
	if !ok {
		return
	}
	history, err := s.repo.ListScamHistoryForPeriod(c.Request.Context(), from, to)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scams": history})
}

type salarySettingsRequest struct {
	BasePercent            int `json:"base_percent" binding:"required"`
	MinRequestsPerDay      int `json:"min_requests_per_day"`
	BonusPercent           int `json:"bonus_percent"`
	BonusRequestsThreshold int `json:"bonus_requests_threshold"`
}

func (s *Server) handleGetSalarySettings(c *gin.Context) {
	settings, err := s.repo.GetSalarySettings(c.Request.Context())
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) handleUpdateSalarySettings(c *gin.Context) {
	var req salarySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.BasePercent <= 0 || req.BasePercent > 100 {
		respondError(c, http.StatusBadRequest, "base_percent must be between 1 and 100")
		return
	}

	settings := &database.SalarySettings{
		BasePercent:            req.BasePercent,
		MinRequestsPerDay:      req.MinRequestsPerDay,
		BonusPercent:           req.BonusPercent,
		BonusRequestsThreshold: req.BonusRequestsThreshold,
	}
	if err := s.repo.UpdateSalarySettings(c.Request.Context(), settings); err != nil {
		respondRepoError(c, err)
		return
	}
	if s.cache != nil {
		s.cache.InvalidateComputed(c.Request.Context())
	}
	c.JSON(http.StatusOK, settings)
}

// bridgeEvents forwards bus events to connected WebSocket clients
func (s *Server) bridgeEvents() {
	s.eventBus.SubscribeAll(func(event events.Event) {
		s.hub.BroadcastEvent(event)
	})
}
