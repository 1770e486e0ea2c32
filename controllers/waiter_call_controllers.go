package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/realtime"
	"github.com/yeremiapane/table-order-app/utils"
	"gorm.io/gorm"
)

type WaiterCallController struct {
	DB  *gorm.DB
	Bus *realtime.Bus
}

func NewWaiterCallController(db *gorm.DB, bus *realtime.Bus) *WaiterCallController {
	return &WaiterCallController{DB: db, Bus: bus}
}

// CallWaiter -> tablet memanggil pelayan. Nama meja disalin ke record
// supaya dashboard tidak perlu join saat menampilkan notifikasi.
func (wc *WaiterCallController) CallWaiter(c *gin.Context) {
	tableID := c.GetUint("user_id")

	var table models.Table
	if err := wc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("table not found"))
		return
	}

	// Satu panggilan pending per meja sudah cukup berisik.
	var existing int64
	wc.DB.Model(&models.WaiterCall{}).
		Where("table_id = ? AND status = ?", tableID, models.CallPending).
		Count(&existing)
	if existing > 0 {
		utils.RespondJSON(c, http.StatusOK, "A waiter has already been called for this table", nil)
		return
	}

	call := models.WaiterCall{
		TableID:   tableID,
		TableName: table.Username,
		Status:    models.CallPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := wc.DB.Create(&call).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	event := realtime.NewWaiterCallEvent(call.ID, call.TableID, call.TableName, call.CreatedAt)
	wc.Bus.PublishToKind(realtime.KindManagement, event)
	wc.Bus.PublishToKind(realtime.KindDev, event)

	utils.RespondJSON(c, http.StatusCreated, "Waiter called", gin.H{"call_id": call.ID})
}

// ListPendingCalls -> panggilan pending hari ini, terlama duluan.
func (wc *WaiterCallController) ListPendingCalls(c *gin.Context) {
	// Awal hari mengikuti zona waktu server, bukan UTC.
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var calls []models.WaiterCall
	err := wc.DB.Where("status = ? AND created_at >= ?", models.CallPending, startOfDay).
		Order("created_at ASC").
		Find(&calls).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Pending waiter calls", calls)
}

func (wc *WaiterCallController) GetPendingCount(c *gin.Context) {
	var count int64
	err := wc.DB.Model(&models.WaiterCall{}).
		Where("status = ?", models.CallPending).
		Count(&count).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Pending call count", gin.H{"count": count})
}

// AttendCall -> staff menandai panggilan sudah dilayani. Guard yang
// sama seperti baris pesanan: dua staff bersamaan, satu yang menang.
func (wc *WaiterCallController) AttendCall(c *gin.Context) {
	idStr := c.Param("call_id")
	id, _ := strconv.Atoi(idStr)

	var call models.WaiterCall
	if err := wc.DB.First(&call, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("waiter call not found"))
		return
	}

	res := wc.DB.Model(&models.WaiterCall{}).
		Where("id = ? AND status = ?", id, models.CallPending).
		Updates(map[string]interface{}{
			"status":     models.CallAttended,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondAppError(c, utils.NewInvalidStateError("call has already been attended"))
		return
	}

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(wc.DB, actorID, actorName, "ATTENDED_CALL",
		fmt.Sprintf("Attended waiter call ID %d (table %s).", call.ID, call.TableName))

	event := realtime.NewWaiterCallEvent(call.ID, call.TableID, call.TableName, call.CreatedAt)
	wc.Bus.PublishToKind(realtime.KindManagement, event)
	wc.Bus.PublishToKind(realtime.KindDev, event)

	utils.RespondJSON(c, http.StatusOK, "Call attended", gin.H{"call_id": id})
}

// ClearAttended -> hapus massal panggilan yang sudah dilayani (housekeeping).
func (wc *WaiterCallController) ClearAttended(c *gin.Context) {
	res := wc.DB.Where("status = ?", models.CallAttended).Delete(&models.WaiterCall{})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(wc.DB, actorID, actorName, "CLEARED_CALLS",
		fmt.Sprintf("Cleared %d attended waiter calls.", res.RowsAffected))

	utils.RespondJSON(c, http.StatusOK, "Attended calls cleared", gin.H{"removed": res.RowsAffected})
}
