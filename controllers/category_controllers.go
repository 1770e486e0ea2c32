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

type CategoryController struct {
	DB  *gorm.DB
	Bus *realtime.Bus
}

func NewCategoryController(db *gorm.DB, bus *realtime.Bus) *CategoryController {
	return &CategoryController{DB: db, Bus: bus}
}

func (cc *CategoryController) GetAllCategories(c *gin.Context) {
	var categories []models.Category
	if err := cc.DB.Order("name ASC").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category list", categories)
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.RespondAppError(c, utils.NewValidationError("category name is required"))
		return
	}

	var existing int64
	cc.DB.Model(&models.Category{}).Where("name = ?", name).Count(&existing)
	if existing > 0 {
		utils.RespondAppError(c, utils.NewConflictError("a category with this name already exists"))
		return
	}

	category := models.Category{
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := cc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(cc.DB, actorID, actorName, "CREATED_CATEGORY",
		fmt.Sprintf("Created category %q (ID: %d).", category.Name, category.ID))

	cc.Bus.PublishToAll(realtime.NewMenuUpdatedEvent())

	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	idStr := c.Param("category_id")
	id, _ := strconv.Atoi(idStr)

	var category models.Category
	if err := cc.DB.First(&category, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("category not found"))
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.RespondAppError(c, utils.NewValidationError("category name is required"))
		return
	}

	var existing int64
	cc.DB.Model(&models.Category{}).Where("name = ? AND id != ?", name, id).Count(&existing)
	if existing > 0 {
		utils.RespondAppError(c, utils.NewConflictError("a category with this name already exists"))
		return
	}

	category.Name = name
	category.UpdatedAt = time.Now()
	if err := cc.DB.Save(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	cc.Bus.PublishToAll(realtime.NewMenuUpdatedEvent())

	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory menolak menghapus kategori yang masih punya produk.
// Produk menyimpan snapshot histori, biarkan FK RESTRICT jadi jaring
// terakhir, tapi beri pesan yang jelas lebih dulu.
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	idStr := c.Param("category_id")
	id, _ := strconv.Atoi(idStr)

	var category models.Category
	if err := cc.DB.First(&category, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("category not found"))
		return
	}

	var productCount int64
	cc.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&productCount)
	if productCount > 0 {
		utils.RespondAppError(c, utils.NewConflictError(
			"category still has products, move or delete them first"))
		return
	}

	if err := cc.DB.Delete(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(cc.DB, actorID, actorName, "DELETED_CATEGORY",
		fmt.Sprintf("Deleted category %q (ID: %d).", category.Name, category.ID))

	cc.Bus.PublishToAll(realtime.NewMenuUpdatedEvent())

	utils.RespondJSON(c, http.StatusOK, "Category deleted", nil)
}
