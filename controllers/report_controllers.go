package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/utils"
	"gorm.io/gorm"
)

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// parseRange membaca ?start=YYYY-MM-DD&end=YYYY-MM-DD, default 30 hari
// terakhir. End bersifat inklusif (sampai akhir hari).
func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	const layout = "2006-01-02"
	now := time.Now()
	start := now.AddDate(0, 0, -30)
	end := now

	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			return start, end, utils.NewValidationError("invalid start date, use YYYY-MM-DD")
		}
		start = parsed
	}
	if e := c.Query("end"); e != "" {
		parsed, err := time.Parse(layout, e)
		if err != nil {
			return start, end, utils.NewValidationError("invalid end date, use YYYY-MM-DD")
		}
		end = parsed.AddDate(0, 0, 1)
	}
	if end.Before(start) {
		return start, end, utils.NewValidationError("end date is before start date")
	}
	return start, end, nil
}

// GetDashboardStats -> angka-angka ringkas untuk kartu dashboard:
// sesi aktif, baris pending, panggilan pending, pendapatan hari ini.
func (rc *ReportController) GetDashboardStats(c *gin.Context) {
	var activeSessions, pendingLines, pendingCalls int64
	rc.DB.Model(&models.TableSession{}).
		Where("status = ?", models.SessionActive).
		Count(&activeSessions)
	rc.DB.Model(&models.OrderLine{}).
		Joins("JOIN table_sessions ts ON ts.id = order_lines.session_id").
		Where("order_lines.status = ? AND ts.status = ?", models.LinePending, models.SessionActive).
		Count(&pendingLines)
	rc.DB.Model(&models.WaiterCall{}).
		Where("status = ?", models.CallPending).
		Count(&pendingCalls)

	// Awal hari mengikuti zona waktu server, bukan UTC.
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var todayRevenue *float64
	rc.DB.Model(&models.OrderLine{}).
		Select("SUM(order_lines.quantity * order_lines.unit_price)").
		Joins("JOIN table_sessions ts ON ts.id = order_lines.session_id").
		Where("order_lines.status != ? AND ts.status = ? AND ts.ended_at >= ?",
			models.LineCancelled, models.SessionFinalized, startOfDay).
		Scan(&todayRevenue)

	revenue := 0.0
	if todayRevenue != nil {
		revenue = *todayRevenue
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard statistics", gin.H{
		"active_sessions": activeSessions,
		"pending_lines":   pendingLines,
		"pending_calls":   pendingCalls,
		"today_revenue":   revenue,
	})
}

// GetRevenueReport -> pendapatan per hari dan per metode pembayaran
// dalam rentang tanggal. Hanya sesi finalized dan baris non-cancelled
// yang dihitung.
func (rc *ReportController) GetRevenueReport(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	type dailyRow struct {
		Day      string  `json:"day"`
		Sessions int64   `json:"sessions"`
		Revenue  float64 `json:"revenue"`
	}
	var daily []dailyRow
	err = rc.DB.Model(&models.OrderLine{}).
		Select("DATE(ts.ended_at) AS day, COUNT(DISTINCT ts.id) AS sessions, SUM(order_lines.quantity * order_lines.unit_price) AS revenue").
		Joins("JOIN table_sessions ts ON ts.id = order_lines.session_id").
		Where("order_lines.status != ? AND ts.status = ? AND ts.ended_at >= ? AND ts.ended_at < ?",
			models.LineCancelled, models.SessionFinalized, start, end).
		Group("DATE(ts.ended_at)").
		Order("day ASC").
		Scan(&daily).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type methodRow struct {
		PaymentMethod string  `json:"payment_method"`
		Sessions      int64   `json:"sessions"`
		Revenue       float64 `json:"revenue"`
	}
	var byMethod []methodRow
	err = rc.DB.Model(&models.OrderLine{}).
		Select("ts.payment_method AS payment_method, COUNT(DISTINCT ts.id) AS sessions, SUM(order_lines.quantity * order_lines.unit_price) AS revenue").
		Joins("JOIN table_sessions ts ON ts.id = order_lines.session_id").
		Where("order_lines.status != ? AND ts.status = ? AND ts.ended_at >= ? AND ts.ended_at < ?",
			models.LineCancelled, models.SessionFinalized, start, end).
		Group("ts.payment_method").
		Order("revenue DESC").
		Scan(&byMethod).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Revenue report", gin.H{
		"daily":             daily,
		"by_payment_method": byMethod,
	})
}

// GetTopProducts -> produk terlaris berdasarkan kuantitas terjual.
func (rc *ReportController) GetTopProducts(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	type productRow struct {
		ProductID uint    `json:"product_id"`
		Name      string  `json:"name"`
		Quantity  int64   `json:"quantity"`
		Revenue   float64 `json:"revenue"`
	}
	var rows []productRow
	err = rc.DB.Model(&models.OrderLine{}).
		Select("order_lines.product_id AS product_id, p.name AS name, SUM(order_lines.quantity) AS quantity, SUM(order_lines.quantity * order_lines.unit_price) AS revenue").
		Joins("JOIN products p ON p.id = order_lines.product_id").
		Joins("JOIN table_sessions ts ON ts.id = order_lines.session_id").
		Where("order_lines.status != ? AND ts.status = ? AND ts.ended_at >= ? AND ts.ended_at < ?",
			models.LineCancelled, models.SessionFinalized, start, end).
		Group("order_lines.product_id, p.name").
		Order("quantity DESC").
		Limit(10).
		Scan(&rows).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Top products", rows)
}
