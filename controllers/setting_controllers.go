package controllers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/realtime"
	"github.com/yeremiapane/table-order-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingController struct {
	DB  *gorm.DB
	Bus *realtime.Bus
}

func NewSettingController(db *gorm.DB, bus *realtime.Bus) *SettingController {
	return &SettingController{DB: db, Bus: bus}
}

// GetSettings -> semua setting, atau subset via ?keys=a,b,c.
// Respons selalu map key->value; key yang belum pernah disimpan
// tidak muncul, frontend yang pegang default-nya.
func (sc *SettingController) GetSettings(c *gin.Context) {
	query := sc.DB.Model(&models.AppSetting{})

	if keysParam := c.Query("keys"); keysParam != "" {
		keys := strings.Split(keysParam, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		query = query.Where("key IN ?", keys)
	}

	var settings []models.AppSetting
	if err := query.Find(&settings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	result := make(map[string]string, len(settings))
	for _, s := range settings {
		result[s.Key] = s.Value
	}

	utils.RespondJSON(c, http.StatusOK, "Settings", result)
}

// SaveSettings -> upsert beberapa key sekaligus, lalu broadcast nilai
// yang berubah ke semua klien supaya tablet ikut menyesuaikan tanpa reload.
func (sc *SettingController) SaveSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if len(req) == 0 {
		utils.RespondAppError(c, utils.NewValidationError("no settings provided"))
		return
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		for key, value := range req {
			key = strings.TrimSpace(key)
			if key == "" {
				return utils.NewValidationError("setting key cannot be empty")
			}
			setting := models.AppSetting{Key: key, Value: value}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value"}),
			}).Create(&setting).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	keys := make([]string, 0, len(req))
	for key := range req {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(sc.DB, actorID, actorName, "UPDATED_SETTINGS",
		fmt.Sprintf("Updated settings: %s.", strings.Join(keys, ", ")))

	sc.Bus.PublishToAll(realtime.NewConfigChangedEvent(req))

	utils.RespondJSON(c, http.StatusOK, "Settings saved", req)
}
