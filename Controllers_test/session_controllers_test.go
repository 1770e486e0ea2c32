package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/controllers"
	"github.com/yeremiapane/table-order-app/models"
)

func seedSessionFixtures(db *gorm.DB) models.Table {
	table := models.Table{Username: "Mesa 2", Password: "hashed", CreatedAt: time.Now()}
	db.Create(&table)
	staff := models.User{
		Name: "Bruno", Email: "bruno@example.com", Username: "bruno",
		Password: "hashed", Role: "general",
	}
	db.Create(&staff)
	return table
}

func setupSessionRouter(db *gorm.DB, tableID uint) *gin.Engine {
	r := gin.Default()
	bus := newTestBus()
	sessionCtrl := controllers.NewSessionController(db, bus)

	r.POST("/sessions", withIdentity(tableID, "Mesa 2", "", "table"), sessionCtrl.StartSession)
	staff := withIdentity(1, "Bruno", "general", "staff")
	r.GET("/sessions", staff, sessionCtrl.GetActiveSessions)
	r.GET("/sessions/:session_id/account", staff, sessionCtrl.GetAccount)
	r.POST("/sessions/:session_id/close", staff, sessionCtrl.CloseSession)
	return r
}

func TestStartSessionOnePerTable(t *testing.T) {
	db := openTestDB("sessions_start")
	table := seedSessionFixtures(db)
	r := setupSessionRouter(db, table.ID)

	w := doJSON(t, r, "POST", "/sessions", map[string]interface{}{"name": "Ana"})
	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Ana", data["customer_name"])

	// Meja yang sama tidak bisa membuka sesi kedua selagi yang pertama aktif.
	w = doJSON(t, r, "POST", "/sessions", map[string]interface{}{"name": "Beto"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Nama customer wajib.
	w = doJSON(t, r, "POST", "/sessions", map[string]interface{}{"phone": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCloseSessionRequiresPaymentMethod(t *testing.T) {
	db := openTestDB("sessions_close_validation")
	table := seedSessionFixtures(db)
	r := setupSessionRouter(db, table.ID)

	w := doJSON(t, r, "POST", "/sessions", map[string]interface{}{"name": "Ana"})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	sessionID := int(data["session_id"].(float64))

	w = doJSON(t, r, "POST", fmt.Sprintf("/sessions/%d/close", sessionID),
		map[string]interface{}{"payment_method": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var session models.TableSession
	db.First(&session, sessionID)
	assert.Equal(t, models.SessionActive, session.Status)
}

// Penutupan kedua pada sesi yang sama gagal dengan invalid_state dan
// tidak menyentuh hasil penutupan pertama.
func TestCloseSessionSecondAttemptFails(t *testing.T) {
	db := openTestDB("sessions_double_close")
	table := seedSessionFixtures(db)
	r := setupSessionRouter(db, table.ID)

	w := doJSON(t, r, "POST", "/sessions", map[string]interface{}{"name": "Ana"})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	sessionID := int(data["session_id"].(float64))

	w = doJSON(t, r, "POST", fmt.Sprintf("/sessions/%d/close", sessionID),
		map[string]interface{}{"payment_method": "cash"})
	assert.Equal(t, http.StatusOK, w.Code)

	var closed models.TableSession
	db.First(&closed, sessionID)
	firstEndedAt := closed.EndedAt

	w = doJSON(t, r, "POST", fmt.Sprintf("/sessions/%d/close", sessionID),
		map[string]interface{}{"payment_method": "card"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var after models.TableSession
	db.First(&after, sessionID)
	assert.Equal(t, models.SessionFinalized, after.Status)
	if assert.NotNil(t, after.PaymentMethod) {
		assert.Equal(t, "cash", *after.PaymentMethod)
	}
	if assert.NotNil(t, after.EndedAt) && assert.NotNil(t, firstEndedAt) {
		assert.WithinDuration(t, *firstEndedAt, *after.EndedAt, time.Second)
	}
	if assert.NotNil(t, after.ClosedByID) {
		assert.Equal(t, uint(1), *after.ClosedByID)
	}
}

// Membaca rekening berulang tanpa mutasi mengembalikan respons yang
// persis sama, termasuk urutan baris.
func TestGetAccountRepeatedReadsIdentical(t *testing.T) {
	db := openTestDB("sessions_account_stable")
	table := seedSessionFixtures(db)
	r := setupSessionRouter(db, table.ID)

	category := models.Category{Name: "Drinks"}
	db.Create(&category)
	product := models.Product{Name: "Lemonade", Price: 10.00, CategoryID: category.ID}
	db.Create(&product)

	w := doJSON(t, r, "POST", "/sessions", map[string]interface{}{"name": "Ana"})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	sessionID := uint(data["session_id"].(float64))

	reason := "customer changed mind"
	now := time.Now()
	lines := []models.OrderLine{
		{SessionID: sessionID, ProductID: product.ID, Quantity: 2,
			UnitPrice: 10.00, Status: models.LinePending,
			CreatedAt: now, UpdatedAt: now},
		{SessionID: sessionID, ProductID: product.ID, Quantity: 1,
			UnitPrice: 10.00, Status: models.LineDelivered,
			CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second)},
		{SessionID: sessionID, ProductID: product.ID, Quantity: 1,
			UnitPrice: 10.00, Status: models.LineCancelled, CancelReason: &reason,
			CreatedAt: now.Add(2 * time.Second), UpdatedAt: now.Add(2 * time.Second)},
	}
	db.Create(&lines)

	path := fmt.Sprintf("/sessions/%d/account", sessionID)
	first := doJSON(t, r, "GET", path, nil)
	assert.Equal(t, http.StatusOK, first.Code)
	second := doJSON(t, r, "GET", path, nil)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())

	// Daftar sesi aktif juga stabil antar pembacaan.
	firstList := doJSON(t, r, "GET", "/sessions", nil)
	secondList := doJSON(t, r, "GET", "/sessions", nil)
	assert.Equal(t, firstList.Body.String(), secondList.Body.String())
}

func TestCloseSessionNotFound(t *testing.T) {
	db := openTestDB("sessions_close_missing")
	table := seedSessionFixtures(db)
	r := setupSessionRouter(db, table.ID)

	w := doJSON(t, r, "POST", "/sessions/9999/close",
		map[string]interface{}{"payment_method": "cash"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Sesi yang sudah ditutup membebaskan mejanya untuk sesi berikutnya.
func TestNewSessionAfterClose(t *testing.T) {
	db := openTestDB("sessions_reopen")
	table := seedSessionFixtures(db)
	r := setupSessionRouter(db, table.ID)

	w := doJSON(t, r, "POST", "/sessions", map[string]interface{}{"name": "Ana"})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	sessionID := int(data["session_id"].(float64))

	w = doJSON(t, r, "POST", fmt.Sprintf("/sessions/%d/close", sessionID),
		map[string]interface{}{"payment_method": "pix"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "POST", "/sessions", map[string]interface{}{"name": "Beto"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Hanya sesi baru yang muncul di daftar aktif.
	w = doJSON(t, r, "GET", "/sessions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	sessions := decodeBody(t, w)["data"].([]interface{})
	if assert.Len(t, sessions, 1) {
		row := sessions[0].(map[string]interface{})
		assert.Equal(t, "Beto", row["customer_name"])
	}
}
