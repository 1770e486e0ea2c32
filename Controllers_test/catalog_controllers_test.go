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

func setupCatalogRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()
	bus := newTestBus()
	categoryCtrl := controllers.NewCategoryController(db, bus)
	productCtrl := controllers.NewProductController(db, bus)

	owner := withIdentity(1, "Dona", "owner", "staff")
	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.POST("/categories", owner, categoryCtrl.CreateCategory)
	r.DELETE("/categories/:category_id", owner, categoryCtrl.DeleteCategory)
	r.GET("/products", productCtrl.GetAllProducts)
	r.POST("/products", owner, productCtrl.CreateProduct)
	r.PATCH("/products/:product_id", owner, productCtrl.UpdateProduct)
	r.DELETE("/products/:product_id", owner, productCtrl.DeleteProduct)
	return r
}

func TestCreateProductValidatesCategory(t *testing.T) {
	db := openTestDB("catalog_create")
	r := setupCatalogRouter(db)

	w := doJSON(t, r, "POST", "/categories", map[string]interface{}{"name": "Drinks"})
	assert.Equal(t, http.StatusCreated, w.Code)
	category := decodeBody(t, w)["data"].(map[string]interface{})
	categoryID := uint(category["id"].(float64))

	// Kategori duplikat ditolak.
	w = doJSON(t, r, "POST", "/categories", map[string]interface{}{"name": "Drinks"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, "POST", "/products", map[string]interface{}{
		"name": "Lemonade", "category_id": categoryID, "price": 10.0,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Kategori tidak dikenal.
	w = doJSON(t, r, "POST", "/products", map[string]interface{}{
		"name": "Ghost", "category_id": 9999, "price": 5.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Harga negatif.
	w = doJSON(t, r, "POST", "/products", map[string]interface{}{
		"name": "Broken", "category_id": categoryID, "price": -1.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Mengubah harga produk tidak menyentuh baris pesanan yang sudah ada:
// baris menyimpan snapshot harga saat dipesan.
func TestUpdateProductPriceKeepsOrderSnapshots(t *testing.T) {
	db := openTestDB("catalog_price_snapshot")
	r := setupCatalogRouter(db)

	category := models.Category{Name: "Drinks", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	db.Create(&category)
	product := models.Product{
		CategoryID: category.ID, Name: "Lemonade", Price: 10.0,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	db.Create(&product)

	table := models.Table{Username: "Mesa 1", Password: "hashed", CreatedAt: time.Now()}
	db.Create(&table)
	session := models.TableSession{
		TableID: table.ID, CustomerName: "Ana",
		Status: models.SessionActive, StartedAt: time.Now(),
	}
	db.Create(&session)
	line := models.OrderLine{
		SessionID: session.ID, ProductID: product.ID, Quantity: 2,
		UnitPrice: 10.0, Status: models.LinePending,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	db.Create(&line)

	w := doJSON(t, r, "PATCH", fmt.Sprintf("/products/%d", product.ID), map[string]interface{}{
		"name": "Lemonade", "category_id": category.ID, "price": 15.0,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Product
	db.First(&updated, product.ID)
	assert.Equal(t, 15.0, updated.Price)

	var untouched models.OrderLine
	db.First(&untouched, line.ID)
	assert.Equal(t, 10.0, untouched.UnitPrice)
}

func TestDeleteProductWithOrderHistoryRejected(t *testing.T) {
	db := openTestDB("catalog_delete")
	r := setupCatalogRouter(db)

	category := models.Category{Name: "Drinks", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	db.Create(&category)
	ordered := models.Product{
		CategoryID: category.ID, Name: "Lemonade", Price: 10.0,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	db.Create(&ordered)
	unused := models.Product{
		CategoryID: category.ID, Name: "Soda", Price: 8.0,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	db.Create(&unused)

	table := models.Table{Username: "Mesa 1", Password: "hashed", CreatedAt: time.Now()}
	db.Create(&table)
	session := models.TableSession{
		TableID: table.ID, CustomerName: "Ana",
		Status: models.SessionFinalized, StartedAt: time.Now(),
	}
	db.Create(&session)
	db.Create(&models.OrderLine{
		SessionID: session.ID, ProductID: ordered.ID, Quantity: 1,
		UnitPrice: 10.0, Status: models.LineDelivered,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})

	w := doJSON(t, r, "DELETE", fmt.Sprintf("/products/%d", ordered.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, "DELETE", fmt.Sprintf("/products/%d", unused.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Kategori dengan produk tersisa tidak bisa dihapus.
	w = doJSON(t, r, "DELETE", fmt.Sprintf("/categories/%d", category.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetProductsFiltersByCategory(t *testing.T) {
	db := openTestDB("catalog_filter")
	r := setupCatalogRouter(db)

	drinks := models.Category{Name: "Drinks", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	db.Create(&drinks)
	food := models.Category{Name: "Food", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	db.Create(&food)
	db.Create(&models.Product{CategoryID: drinks.ID, Name: "Lemonade", Price: 10.0,
		CreatedAt: time.Now(), UpdatedAt: time.Now()})
	db.Create(&models.Product{CategoryID: food.ID, Name: "Burger", Price: 25.0,
		CreatedAt: time.Now(), UpdatedAt: time.Now()})

	w := doJSON(t, r, "GET", fmt.Sprintf("/products?category_id=%d", drinks.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	products := decodeBody(t, w)["data"].([]interface{})
	if assert.Len(t, products, 1) {
		row := products[0].(map[string]interface{})
		assert.Equal(t, "Lemonade", row["name"])
	}

	w = doJSON(t, r, "GET", "/products", nil)
	products = decodeBody(t, w)["data"].([]interface{})
	assert.Len(t, products, 2)
}
