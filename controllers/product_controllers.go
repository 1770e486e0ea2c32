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

type ProductController struct {
	DB  *gorm.DB
	Bus *realtime.Bus
}

func NewProductController(db *gorm.DB, bus *realtime.Bus) *ProductController {
	return &ProductController{DB: db, Bus: bus}
}

// GetAllProducts -> katalog lengkap, bisa difilter per kategori.
// Dipakai tablet (menu) dan dashboard (manajemen produk).
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	query := pc.DB.Preload("Category").Order("name ASC")

	if catStr := c.Query("category_id"); catStr != "" {
		catID, err := strconv.Atoi(catStr)
		if err != nil {
			utils.RespondAppError(c, utils.NewValidationError("invalid category_id"))
			return
		}
		query = query.Where("category_id = ?", catID)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product list", products)
}

type productRequest struct {
	Name        string  `json:"name" binding:"required"`
	CategoryID  uint    `json:"category_id" binding:"required"`
	Price       float64 `json:"price"`
	Description *string `json:"description"`
	ImageSVG    *string `json:"image_svg"`
}

func (pc *ProductController) validateProductRequest(req *productRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return utils.NewValidationError("product name is required")
	}
	if req.Price < 0 {
		return utils.NewValidationError("product price cannot be negative")
	}
	var count int64
	pc.DB.Model(&models.Category{}).Where("id = ?", req.CategoryID).Count(&count)
	if count == 0 {
		return utils.NewValidationError("category not found")
	}
	return nil
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := pc.validateProductRequest(&req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	product := models.Product{
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Description: req.Description,
		ImageSVG:    req.ImageSVG,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := pc.DB.Create(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pc.DB.Preload("Category").First(&product, product.ID)

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(pc.DB, actorID, actorName, "CREATED_PRODUCT",
		fmt.Sprintf("Created product %q (ID: %d) at %.2f.", product.Name, product.ID, product.Price))

	pc.Bus.PublishToAll(realtime.NewMenuUpdatedEvent())

	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

// UpdateProduct mengubah produk. Harga baru hanya berlaku untuk pesanan
// berikutnya, baris yang sudah ada menyimpan snapshot harganya sendiri.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	idStr := c.Param("product_id")
	id, _ := strconv.Atoi(idStr)

	var product models.Product
	if err := pc.DB.First(&product, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("product not found"))
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := pc.validateProductRequest(&req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	product.Name = req.Name
	product.CategoryID = req.CategoryID
	product.Price = req.Price
	product.Description = req.Description
	if req.ImageSVG != nil {
		product.ImageSVG = req.ImageSVG
	}
	product.UpdatedAt = time.Now()

	if err := pc.DB.Save(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	pc.DB.Preload("Category").First(&product, product.ID)

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(pc.DB, actorID, actorName, "UPDATED_PRODUCT",
		fmt.Sprintf("Updated product %q (ID: %d).", product.Name, product.ID))

	pc.Bus.PublishToAll(realtime.NewMenuUpdatedEvent())

	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

// DeleteProduct menolak menghapus produk yang pernah dipesan, karena
// baris pesanan menunjuk ke sini (histori penjualan harus utuh).
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	idStr := c.Param("product_id")
	id, _ := strconv.Atoi(idStr)

	var product models.Product
	if err := pc.DB.First(&product, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("product not found"))
		return
	}

	var lineCount int64
	pc.DB.Model(&models.OrderLine{}).Where("product_id = ?", id).Count(&lineCount)
	if lineCount > 0 {
		utils.RespondAppError(c, utils.NewConflictError(
			"product has order history and cannot be deleted"))
		return
	}

	if err := pc.DB.Delete(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	actorID, actorName := actorFromContext(c)
	utils.RecordAudit(pc.DB, actorID, actorName, "DELETED_PRODUCT",
		fmt.Sprintf("Deleted product %q (ID: %d).", product.Name, product.ID))

	pc.Bus.PublishToAll(realtime.NewMenuUpdatedEvent())

	utils.RespondJSON(c, http.StatusOK, "Product deleted", nil)
}
