package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// GetAllTables -> daftar semua meja terdaftar.
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Order("username").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// CreateTable -> membuat meja baru sekaligus kredensial login tablet-nya.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var count int64
	tc.DB.Model(&models.Table{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		utils.RespondAppError(c, utils.NewConflictError("table name already in use"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	table := models.Table{Username: req.Username, Password: string(hashed)}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(tc.DB, actorID, actorName, "CREATED_TABLE",
		fmt.Sprintf("Created table '%s'.", table.Username))

	utils.RespondJSON(c, http.StatusCreated, "Table created", gin.H{
		"id":       table.ID,
		"username": table.Username,
	})
}

// DeleteTable -> menghapus meja. Meja yang punya riwayat sesi ditolak
// (RESTRICT), tidak di-cascade.
func (tc *TableController) DeleteTable(c *gin.Context) {
	idStr := c.Param("table_id")
	id, _ := strconv.Atoi(idStr)

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("table not found"))
		return
	}

	var sessionCount int64
	tc.DB.Model(&models.TableSession{}).Where("table_id = ?", id).Count(&sessionCount)
	if sessionCount > 0 {
		utils.RespondAppError(c, utils.NewConflictError("table has session history and cannot be deleted"))
		return
	}

	if err := tc.DB.Delete(&models.Table{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(tc.DB, actorID, actorName, "DELETED_TABLE",
		fmt.Sprintf("Deleted table '%s'.", table.Username))

	utils.RespondJSON(c, http.StatusOK, "Table removed", gin.H{"table_id": id})
}

// GetTableStatus -> status semua meja: kosong atau terisi beserta nama
// customer sesi aktifnya. Dipakai papan meja gerencia.
func (tc *TableController) GetTableStatus(c *gin.Context) {
	type row struct {
		ID           uint    `json:"id"`
		Username     string  `json:"username"`
		SessionID    *uint   `json:"session_id,omitempty"`
		CustomerName *string `json:"customer_name,omitempty"`
		StartedAt    *string `json:"started_at,omitempty"`
	}

	var rows []row
	err := tc.DB.Model(&models.Table{}).
		Select("tables.id, tables.username, ts.id AS session_id, ts.customer_name, ts.started_at").
		Joins("LEFT JOIN table_sessions ts ON ts.table_id = tables.id AND ts.status = ?", models.SessionActive).
		Order("tables.username").
		Scan(&rows).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table status board", rows)
}

// GetTableSessions -> riwayat sesi satu meja, sesi aktif paling atas.
func (tc *TableController) GetTableSessions(c *gin.Context) {
	idStr := c.Param("table_id")
	id, _ := strconv.Atoi(idStr)

	var sessions []models.TableSession
	if err := tc.DB.
		Preload("ClosedBy").
		Where("table_id = ?", id).
		Order("status = 'active' DESC, started_at DESC").
		Find(&sessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type sessionRow struct {
		models.TableSession
		TotalSpent float64 `json:"total_spent"`
	}
	out := make([]sessionRow, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionRow{
			TableSession: s,
			TotalSpent:   billableTotal(tc.DB, s.ID),
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Table session history", out)
}
