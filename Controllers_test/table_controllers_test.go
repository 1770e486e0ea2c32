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

func setupTableRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()
	tableCtrl := controllers.NewTableController(db)
	staff := withIdentity(1, "Bruno", "general", "staff")
	r.GET("/tables", staff, tableCtrl.GetAllTables)
	r.GET("/tables/status", staff, tableCtrl.GetTableStatus)
	r.POST("/tables", staff, tableCtrl.CreateTable)
	r.DELETE("/tables/:table_id", staff, tableCtrl.DeleteTable)
	return r
}

func TestCreateTableRejectsDuplicateName(t *testing.T) {
	db := openTestDB("tables_create")
	r := setupTableRouter(db)

	w := doJSON(t, r, "POST", "/tables", map[string]interface{}{
		"username": "Mesa 1", "password": "pass",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/tables", map[string]interface{}{
		"username": "Mesa 1", "password": "other",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Password tersimpan sebagai hash, bukan plaintext.
	var table models.Table
	db.First(&table)
	assert.NotEqual(t, "pass", table.Password)

	// Pembuatan meja meninggalkan jejak audit.
	var logCount int64
	db.Model(&models.AuditLog{}).Where("action = ?", "CREATED_TABLE").Count(&logCount)
	assert.Equal(t, int64(1), logCount)
}

func TestDeleteTableWithHistoryRejected(t *testing.T) {
	db := openTestDB("tables_delete")
	r := setupTableRouter(db)

	used := models.Table{Username: "Mesa 1", Password: "hashed", CreatedAt: time.Now()}
	db.Create(&used)
	db.Create(&models.TableSession{
		TableID: used.ID, CustomerName: "Ana",
		Status: models.SessionFinalized, StartedAt: time.Now(),
	})
	fresh := models.Table{Username: "Mesa 2", Password: "hashed", CreatedAt: time.Now()}
	db.Create(&fresh)

	// Riwayat sesi memblokir penghapusan.
	w := doJSON(t, r, "DELETE", fmt.Sprintf("/tables/%d", used.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, "DELETE", fmt.Sprintf("/tables/%d", fresh.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "DELETE", "/tables/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	db.Model(&models.Table{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTableStatusBoardShowsActiveSession(t *testing.T) {
	db := openTestDB("tables_status")
	r := setupTableRouter(db)

	occupied := models.Table{Username: "Mesa 1", Password: "hashed", CreatedAt: time.Now()}
	db.Create(&occupied)
	empty := models.Table{Username: "Mesa 2", Password: "hashed", CreatedAt: time.Now()}
	db.Create(&empty)

	// Sesi lama yang sudah tutup tidak boleh membuat meja tampak terisi.
	db.Create(&models.TableSession{
		TableID: occupied.ID, CustomerName: "Old",
		Status: models.SessionFinalized, StartedAt: time.Now().Add(-2 * time.Hour),
	})
	db.Create(&models.TableSession{
		TableID: occupied.ID, CustomerName: "Ana",
		Status: models.SessionActive, StartedAt: time.Now(),
	})

	w := doJSON(t, r, "GET", "/tables/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	rows := decodeBody(t, w)["data"].([]interface{})
	assert.Len(t, rows, 2)

	first := rows[0].(map[string]interface{})
	assert.Equal(t, "Mesa 1", first["username"])
	assert.Equal(t, "Ana", first["customer_name"])

	second := rows[1].(map[string]interface{})
	assert.Equal(t, "Mesa 2", second["username"])
	_, hasSession := second["session_id"]
	assert.False(t, hasSession)
}
