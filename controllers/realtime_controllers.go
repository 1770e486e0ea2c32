package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/table-order-app/middlewares"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/realtime"
	"github.com/yeremiapane/table-order-app/utils"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS untuk handshake ws ditangani di sini; kebijakan origin
	// HTTP biasa ada di middleware CORS.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RealtimeController meng-upgrade koneksi websocket dan mengikatnya ke
// registry. Satu handler untuk tiga jenis klien; jenis klien harus
// cocok dengan jenis token yang dibawa.
type RealtimeController struct {
	DB       *gorm.DB
	Registry *realtime.Registry
	Bus      *realtime.Bus
}

func NewRealtimeController(db *gorm.DB, registry *realtime.Registry, bus *realtime.Bus) *RealtimeController {
	return &RealtimeController{DB: db, Registry: registry, Bus: bus}
}

// HandleWS -> GET /ws?token=...&clientType=...&page=...[&sessionId=...]
//
// Aturan pencocokan:
//   - customer   butuh token meja; domain id = sessionId milik meja itu
//   - management butuh token staff; domain id = user id
//   - dev        butuh token staff dengan role owner; domain id = user id
func (rc *RealtimeController) HandleWS(c *gin.Context) {
	kind, err := realtime.ParseClientKind(c.Query("clientType"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid clientType"))
		return
	}

	tokenType := c.GetString("token_type")
	role := c.GetString("role")
	userID := c.GetUint("user_id")

	var domainID *uint
	switch kind {
	case realtime.KindCustomer:
		if tokenType != utils.TokenTypeTable {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		sessionIDStr := c.Query("sessionId")
		sid, convErr := strconv.Atoi(sessionIDStr)
		if convErr != nil || sid <= 0 {
			utils.RespondAppError(c, utils.NewValidationError("sessionId is required for customer clients"))
			return
		}
		// Sesi harus aktif dan milik meja yang login.
		var session models.TableSession
		if err := rc.DB.First(&session, sid).Error; err != nil {
			utils.RespondAppError(c, utils.NewNotFoundError("session not found"))
			return
		}
		if session.TableID != userID || session.Status != models.SessionActive {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		id := session.ID
		domainID = &id

	case realtime.KindManagement:
		if tokenType != utils.TokenTypeStaff {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		id := userID
		domainID = &id

	case realtime.KindDev:
		if tokenType != utils.TokenTypeStaff || role != middlewares.RoleOwner {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		id := userID
		domainID = &id
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := realtime.NewClient(conn, kind, c.Query("page"), domainID, c.ClientIP())
	rc.Registry.Register(client)
	rc.Bus.PublishSnapshot()

	utils.InfoLogger.Printf("realtime client #%d connected (%s, page=%s)",
		client.Seq, kind, client.Page)

	// Read loop hanya untuk mendeteksi close/error; klien tidak
	// mengirim perintah lewat websocket, semua command lewat HTTP.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	client.Close()
	rc.Registry.Remove(client)
	rc.Bus.PublishSnapshot()

	utils.InfoLogger.Printf("realtime client #%d disconnected", client.Seq)
}
