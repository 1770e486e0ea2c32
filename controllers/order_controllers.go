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

type OrderController struct {
	DB  *gorm.DB
	Bus *realtime.Bus
}

func NewOrderController(db *gorm.DB, bus *realtime.Bus) *OrderController {
	return &OrderController{DB: db, Bus: bus}
}

// PlaceOrder -> tablet mengirim satu batch baris pesanan untuk sesinya.
// Validasi dulu semuanya, tulis dalam satu transaksi, baru broadcast.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	type lineReq struct {
		ProductID   uint    `json:"product_id" binding:"required"`
		Quantity    int     `json:"quantity" binding:"required"`
		Observation *string `json:"observation"`
	}
	var req struct {
		SessionID uint      `json:"session_id" binding:"required"`
		Lines     []lineReq `json:"lines" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if len(req.Lines) == 0 {
		utils.RespondAppError(c, utils.NewValidationError("order must contain at least one line"))
		return
	}
	for _, l := range req.Lines {
		if l.Quantity <= 0 {
			utils.RespondAppError(c, utils.NewValidationError("line quantity must be positive"))
			return
		}
	}

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		var session models.TableSession
		if err := tx.First(&session, req.SessionID).Error; err != nil {
			return utils.NewValidationError("session not found")
		}
		if session.Status != models.SessionActive {
			return utils.NewValidationError("session is not active")
		}

		for _, l := range req.Lines {
			var product models.Product
			if err := tx.First(&product, l.ProductID).Error; err != nil {
				return utils.NewValidationError(
					fmt.Sprintf("product %d not found", l.ProductID))
			}
			line := models.OrderLine{
				SessionID:   req.SessionID,
				ProductID:   product.ID,
				Quantity:    l.Quantity,
				UnitPrice:   product.Price, // snapshot: harga produk boleh berubah nanti
				Observation: l.Observation,
				Status:      models.LinePending,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	oc.Bus.PublishToAll(realtime.NewOrderPlacedEvent())

	utils.RespondJSON(c, http.StatusCreated, "Order received and sent to the kitchen", gin.H{
		"session_id": req.SessionID,
		"lines":      len(req.Lines),
	})
}

// MarkDelivered -> staff menandai satu baris terkirim ke meja.
// Guard kondisional di WHERE: dua staff menandai bersamaan, hanya satu
// yang menang, yang kalah dapat invalid_state (bukan sukses diam-diam).
func (oc *OrderController) MarkDelivered(c *gin.Context) {
	idStr := c.Param("line_id")
	id, _ := strconv.Atoi(idStr)

	var line models.OrderLine
	if err := oc.DB.Preload("Product").First(&line, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("order line not found"))
		return
	}

	res := oc.DB.Model(&models.OrderLine{}).
		Where("id = ? AND status = ?", id, models.LinePending).
		Updates(map[string]interface{}{
			"status":     models.LineDelivered,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondAppError(c, utils.NewInvalidStateError("order line already delivered or cancelled"))
		return
	}

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(oc.DB, actorID, actorName, "DELIVERED_LINE",
		fmt.Sprintf("Delivered item '%s' (line ID: %d).", line.Product.Name, line.ID))

	oc.Bus.PublishToAll(realtime.NewOrderStatusChangedEvent())

	utils.RespondJSON(c, http.StatusOK, "Line marked as delivered", gin.H{"line_id": id})
}

// CancelLine -> membatalkan baris, total atau parsial. Pembatalan
// parsial memecah baris: baris asli dikurangi, baris baru berstatus
// cancelled membawa kuantitas dan alasannya. Baris tidak pernah
// dihapus; jumlah kuantitas sebelum dan sesudah selalu sama.
func (oc *OrderController) CancelLine(c *gin.Context) {
	idStr := c.Param("line_id")
	id, _ := strconv.Atoi(idStr)

	var req struct {
		Reason   string `json:"reason"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		utils.RespondAppError(c, utils.NewValidationError("cancellation reason is required"))
		return
	}
	if req.Quantity <= 0 {
		utils.RespondAppError(c, utils.NewValidationError("cancellation quantity is invalid"))
		return
	}

	actorID, actorName := actorFromContext(c)

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		var line models.OrderLine
		if err := tx.Preload("Product").First(&line, id).Error; err != nil {
			return utils.NewNotFoundError("order line not found")
		}
		if line.Status == models.LineCancelled {
			return utils.NewInvalidStateError("this line has already been fully cancelled")
		}
		if req.Quantity > line.Quantity {
			return utils.NewValidationError(fmt.Sprintf(
				"cannot cancel %d items, the line only has %d", req.Quantity, line.Quantity))
		}

		if req.Quantity == line.Quantity {
			// Pembatalan total. Guard quantity ikut di WHERE: kalau
			// kuantitas berubah sejak staff melihat layar, tolak,
			// jangan diam-diam membatalkan jumlah yang berbeda.
			res := tx.Model(&models.OrderLine{}).
				Where("id = ? AND status = ? AND quantity = ?", line.ID, line.Status, line.Quantity).
				Updates(map[string]interface{}{
					"status":        models.LineCancelled,
					"cancel_reason": reason,
					"updated_at":    time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return utils.NewConflictError("line changed while cancelling, refresh and retry")
			}

			utils.RecordAudit(tx, actorID, actorName, "CANCELLED_LINE_FULL",
				fmt.Sprintf("Fully cancelled line ID %d (%s), reason: %q.",
					line.ID, line.Product.Name, reason))
			return nil
		}

		// Pembatalan parsial: kurangi baris asli, sisipkan baris baru
		// cancelled. Status baris asli tidak berubah.
		res := tx.Model(&models.OrderLine{}).
			Where("id = ? AND status = ? AND quantity = ?", line.ID, line.Status, line.Quantity).
			Updates(map[string]interface{}{
				"quantity":   line.Quantity - req.Quantity,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewConflictError("line changed while cancelling, refresh and retry")
		}

		cancelled := models.OrderLine{
			SessionID:    line.SessionID,
			ProductID:    line.ProductID,
			Quantity:     req.Quantity,
			UnitPrice:    line.UnitPrice,
			Observation:  line.Observation,
			Status:       models.LineCancelled,
			CancelReason: &reason,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := tx.Create(&cancelled).Error; err != nil {
			return err
		}

		utils.RecordAudit(tx, actorID, actorName, "CANCELLED_LINE_PARTIAL",
			fmt.Sprintf("Cancelled %d of %d from line ID %d (%s), reason: %q.",
				req.Quantity, line.Quantity, line.ID, line.Product.Name, reason))
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	oc.Bus.PublishToAll(realtime.NewOrderStatusChangedEvent())

	utils.RespondJSON(c, http.StatusOK, "Order line(s) cancelled", gin.H{"line_id": id})
}

// GetPendingCount -> jumlah baris pending di sesi aktif (badge dashboard).
func (oc *OrderController) GetPendingCount(c *gin.Context) {
	var count int64
	err := oc.DB.Model(&models.OrderLine{}).
		Joins("JOIN table_sessions ts ON ts.id = order_lines.session_id").
		Where("order_lines.status = ? AND ts.status = ?", models.LinePending, models.SessionActive).
		Count(&count).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Pending line count", gin.H{"count": count})
}
