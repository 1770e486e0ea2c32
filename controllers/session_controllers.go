package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/realtime"
	"github.com/yeremiapane/table-order-app/utils"
	"gorm.io/gorm"
)

type SessionController struct {
	DB  *gorm.DB
	Bus *realtime.Bus
}

func NewSessionController(db *gorm.DB, bus *realtime.Bus) *SessionController {
	return &SessionController{DB: db, Bus: bus}
}

// billableTotal menghitung total tagihan sesi: semua baris yang tidak
// dibatalkan. Invariant: jumlah baris non-cancelled = total tagihan.
func billableTotal(db *gorm.DB, sessionID uint) float64 {
	var total *float64
	db.Model(&models.OrderLine{}).
		Select("SUM(quantity * unit_price)").
		Where("session_id = ? AND status != ?", sessionID, models.LineCancelled).
		Scan(&total)
	if total == nil {
		return 0
	}
	return *total
}

// StartSession -> tablet meja (token meja) membuka sesi customer baru.
func (sc *SessionController) StartSession(c *gin.Context) {
	tableID := c.GetUint("user_id") // id meja dari token
	tableName := c.GetString("user_name")

	var req struct {
		Name     string  `json:"name" binding:"required"`
		Phone    *string `json:"phone"`
		Document *string `json:"document"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Satu meja satu sesi aktif.
	var active int64
	sc.DB.Model(&models.TableSession{}).
		Where("table_id = ? AND status = ?", tableID, models.SessionActive).
		Count(&active)
	if active > 0 {
		utils.RespondAppError(c, utils.NewConflictError("table already has an active session"))
		return
	}

	session := models.TableSession{
		TableID:          tableID,
		CustomerName:     req.Name,
		CustomerPhone:    req.Phone,
		CustomerDocument: req.Document,
		Status:           models.SessionActive,
		StartedAt:        time.Now(),
	}
	if err := sc.DB.Create(&session).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Session %d started at table %s for %s",
		session.ID, tableName, req.Name)

	sc.Bus.PublishToAll(realtime.NewSessionStatusChangedEvent(
		session.ID, tableID, models.SessionActive))

	utils.RespondJSON(c, http.StatusCreated, "Session started", gin.H{
		"session_id":    session.ID,
		"customer_name": session.CustomerName,
	})
}

// GetActiveSessions -> semua sesi aktif beserta item non-cancelled dan
// totalnya. Endpoint rekonsiliasi utama layar dapur/balcao: setiap
// event pesanan memicu re-fetch ke sini.
func (sc *SessionController) GetActiveSessions(c *gin.Context) {
	var sessions []models.TableSession
	if err := sc.DB.
		Preload("Table").
		Preload("Lines", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("status != ?", models.LineCancelled).
				Order("created_at ASC, id ASC")
		}).
		Preload("Lines.Product").
		Preload("Lines.Product.Category").
		Where("status = ?", models.SessionActive).
		Order("started_at ASC").
		Find(&sessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type sessionRow struct {
		SessionID    uint               `json:"session_id"`
		CustomerName string             `json:"customer_name"`
		TableName    string             `json:"table_name"`
		Total        float64            `json:"total"`
		Lines        []models.OrderLine `json:"lines"`
	}
	out := make([]sessionRow, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionRow{
			SessionID:    s.ID,
			CustomerName: s.CustomerName,
			TableName:    s.Table.Username,
			Total:        billableTotal(sc.DB, s.ID),
			Lines:        s.Lines,
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Active sessions", out)
}

// GetAccount -> tagihan lengkap satu sesi, termasuk baris cancelled
// dengan alasannya, plus total yang harus dibayar. Dipakai tablet
// customer; hasilnya deterministik supaya re-fetch idempotent.
func (sc *SessionController) GetAccount(c *gin.Context) {
	idStr := c.Param("session_id")
	id, _ := strconv.Atoi(idStr)

	var session models.TableSession
	if err := sc.DB.First(&session, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("session not found"))
		return
	}

	var lines []models.OrderLine
	if err := sc.DB.
		Preload("Product").
		Where("session_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&lines).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session account", gin.H{
		"lines": lines,
		"total": billableTotal(sc.DB, session.ID),
	})
}

// GetSessionLines -> daftar baris satu sesi (modal edit pesanan gerencia).
func (sc *SessionController) GetSessionLines(c *gin.Context) {
	idStr := c.Param("session_id")
	id, _ := strconv.Atoi(idStr)

	var lines []models.OrderLine
	if err := sc.DB.
		Preload("Product").
		Where("session_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&lines).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session lines", lines)
}

// GetSessionInfo -> data customer dan meja satu sesi (untuk struk).
func (sc *SessionController) GetSessionInfo(c *gin.Context) {
	idStr := c.Param("session_id")
	id, _ := strconv.Atoi(idStr)

	var session models.TableSession
	if err := sc.DB.Preload("Table").First(&session, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("session not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session info", gin.H{
		"customer_name":     session.CustomerName,
		"customer_phone":    session.CustomerPhone,
		"customer_document": session.CustomerDocument,
		"table_name":        session.Table.Username,
		"status":            session.Status,
		"payment_method":    session.PaymentMethod,
	})
}

// finalizeSession menjalankan transisi active -> finalized dengan guard
// kondisional di level baris: dua penutupan bersamaan menghasilkan
// tepat satu sukses. Dipakai jalur staff dan jalur force-close dev.
func finalizeSession(db *gorm.DB, sessionID uint, paymentMethod string, closedBy *uint) (*models.TableSession, error) {
	var session models.TableSession
	if err := db.First(&session, sessionID).Error; err != nil {
		return nil, utils.NewNotFoundError("session not found")
	}

	now := time.Now()
	res := db.Model(&models.TableSession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionActive).
		Updates(map[string]interface{}{
			"status":         models.SessionFinalized,
			"ended_at":       now,
			"payment_method": paymentMethod,
			"closed_by_id":   closedBy,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Sesi ada tapi sudah finalized: kalah balapan atau klik ganda.
		return nil, utils.NewInvalidStateError("session already finalized")
	}

	session.Status = models.SessionFinalized
	session.EndedAt = &now
	session.PaymentMethod = &paymentMethod
	session.ClosedByID = closedBy
	return &session, nil
}

// CloseSession -> staff menutup bon sebuah sesi.
func (sc *SessionController) CloseSession(c *gin.Context) {
	idStr := c.Param("session_id")
	id, _ := strconv.Atoi(idStr)

	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		utils.RespondAppError(c, utils.NewValidationError("payment method is required"))
		return
	}

	actorID, actorName := actorFromContext(c)

	session, err := finalizeSession(sc.DB, uint(id), strings.TrimSpace(req.PaymentMethod), actorID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RecordAudit(sc.DB, actorID, actorName, "CLOSED_SESSION",
		fmt.Sprintf("Closed session ID %d paid via %s.", session.ID, req.PaymentMethod))

	// Mutasi sudah commit; baru sekarang observer diberi tahu.
	sc.Bus.PublishToAll(realtime.NewSessionStatusChangedEvent(
		session.ID, session.TableID, models.SessionFinalized))
	sc.Bus.PublishToAll(realtime.NewPaymentFinalizedEvent())

	utils.RespondJSON(c, http.StatusOK, "Session closed", gin.H{
		"session_id":     session.ID,
		"payment_method": session.PaymentMethod,
	})
}
