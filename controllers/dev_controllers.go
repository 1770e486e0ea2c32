package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/realtime"
	"github.com/yeremiapane/table-order-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DevController melayani panel dev/owner: inspeksi koneksi hidup,
// pemutusan paksa, dan operasi darurat pada sesi.
type DevController struct {
	DB       *gorm.DB
	Registry *realtime.Registry
	Bus      *realtime.Bus
}

func NewDevController(db *gorm.DB, registry *realtime.Registry, bus *realtime.Bus) *DevController {
	return &DevController{DB: db, Registry: registry, Bus: bus}
}

// ListUsers -> daftar akun staff non-owner (owner tidak bisa diutak-atik
// lewat panel).
func (dc *DevController) ListUsers(c *gin.Context) {
	var users []models.User
	err := dc.DB.Where("role != ?", "owner").
		Order("name ASC").
		Find(&users).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Staff accounts", users)
}

// ChangePassword -> owner mereset password staff non-owner.
func (dc *DevController) ChangePassword(c *gin.Context) {
	idStr := c.Param("user_id")
	id, _ := strconv.Atoi(idStr)

	var req struct {
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if len(req.NewPassword) < 6 {
		utils.RespondAppError(c, utils.NewValidationError("password must be at least 6 characters"))
		return
	}

	var user models.User
	if err := dc.DB.First(&user, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("user not found"))
		return
	}
	if user.Role == "owner" {
		utils.RespondAppError(c, utils.NewValidationError("owner password cannot be changed here"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := dc.DB.Model(&user).Update("password", string(hashed)).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(dc.DB, actorID, actorName, "CHANGED_PASSWORD",
		fmt.Sprintf("Changed password of user %q (ID: %d).", user.Name, user.ID))

	utils.RespondJSON(c, http.StatusOK, "Password changed", nil)
}

// GetRegistrySnapshot -> daftar koneksi realtime hidup saat ini.
// Versi pull dari REGISTRY_SNAPSHOT yang juga di-push lewat websocket.
func (dc *DevController) GetRegistrySnapshot(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Active realtime connections", dc.Registry.ListAll())
}

// DisconnectClient -> putus satu koneksi berdasarkan sequence id.
// Client menerima FORCE_DISCONNECT dulu supaya bisa menampilkan alasan
// sebelum koneksinya ditutup.
func (dc *DevController) DisconnectClient(c *gin.Context) {
	seqStr := c.Param("seq")
	seq, err := strconv.ParseUint(seqStr, 10, 64)
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid connection id"))
		return
	}

	client := dc.Registry.FindBySeq(seq)
	if client == nil {
		utils.RespondAppError(c, utils.NewNotFoundError("connection not found"))
		return
	}

	client.Kick("Koneksi diputus oleh developer.")

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(dc.DB, actorID, actorName, "DISCONNECTED_CLIENT",
		fmt.Sprintf("Forcefully disconnected realtime client #%d (%s).", seq, client.Kind))

	utils.RespondJSON(c, http.StatusOK, "Client disconnected", gin.H{"seq": seq})
}

// ForceCloseSession -> tutup paksa sesi yang macet (tablet hilang,
// pelanggan pergi tanpa bayar, dsb). Metode pembayaran diberi label
// sentinel supaya laporan bisa membedakannya dari penutupan normal.
func (dc *DevController) ForceCloseSession(c *gin.Context) {
	idStr := c.Param("session_id")
	id, _ := strconv.Atoi(idStr)

	actorID, actorName := actorFromContext(c)

	session, err := finalizeSession(dc.DB, uint(id), "FORCED_BY_DEV", actorID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RecordAudit(dc.DB, actorID, actorName, "FORCE_CLOSED_SESSION",
		fmt.Sprintf("Forcefully closed session ID %d (table ID %d).", session.ID, session.TableID))

	dc.Bus.PublishToAll(realtime.NewSessionStatusChangedEvent(
		session.ID, session.TableID, models.SessionFinalized))
	// Tablet yang masih terhubung untuk sesi ini diusir secara eksplisit.
	dc.Bus.PublishToDomain(realtime.KindCustomer, session.ID,
		realtime.NewForceDisconnectEvent("Sesi ditutup oleh developer.", realtime.KindCustomer))

	utils.RespondJSON(c, http.StatusOK, "Session forcefully closed", gin.H{"session_id": session.ID})
}
