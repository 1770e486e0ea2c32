package controllers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order-app/middlewares"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

// Register staff baru. Dilindungi register secret dari environment,
// bukan token login, supaya onboarding awal tetap bisa dilakukan.
func (ac *AuthController) Register(c *gin.Context) {
	type request struct {
		Name        string `json:"name" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		Username    string `json:"username" binding:"required"`
		Password    string `json:"password" binding:"required"`
		Role        string `json:"role" binding:"required"` // general, orders, owner
		SecretToken string `json:"secret_token"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.SecretToken != os.Getenv("REGISTER_SECRET_TOKEN") {
		utils.RespondError(c, http.StatusForbidden, errors.New("invalid register code"))
		return
	}

	var count int64
	ac.DB.Model(&models.User{}).
		Where("email = ? OR username = ?", req.Email, req.Username).
		Count(&count)
	if count > 0 {
		utils.RespondAppError(c, utils.NewConflictError("email or username already in use"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: string(hashed),
		Role:     req.Role,
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New staff registered: %s (role=%s)", user.Email, user.Role)

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login staff, menerima email atau username.
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if input.Email == "" && input.Username == "" {
		utils.RespondAppError(c, utils.NewValidationError("provide email or username"))
		return
	}

	var user models.User
	q := ac.DB
	if input.Email != "" {
		q = q.Where("email = ?", input.Email)
	} else {
		q = q.Where("username = ?", input.Username)
	}
	if err := q.First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateStaffToken(user.ID, user.Name, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":   user.ID,
			"name": user.Name,
			"role": user.Role,
		},
	})
}

// TableLogin mengautentikasi tablet meja dengan kredensial mejanya.
func (ac *AuthController) TableLogin(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := ac.DB.Where("username = ?", input.Username).First(&table).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid table credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(table.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid table credentials"))
		return
	}

	token, err := utils.GenerateTableToken(table.ID, table.Username)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table login successful", gin.H{
		"token": token,
		"table": gin.H{
			"id":       table.ID,
			"username": table.Username,
		},
	})
}

// DevLogin hanya menerima user dengan role owner.
func (ac *AuthController) DevLogin(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := ac.DB.
		Where("username = ? AND role = ?", input.Username, middlewares.RoleOwner).
		First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("developer user not found"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid developer credentials"))
		return
	}

	token, err := utils.GenerateStaffToken(user.ID, user.Name, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Developer login: %s (ID=%d)", user.Name, user.ID)

	utils.RespondJSON(c, http.StatusOK, "Developer login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":   user.ID,
			"name": user.Name,
			"role": user.Role,
		},
	})
}

// VerifyStaff memeriksa kredensial staff tanpa menerbitkan token.
// Dipakai tablet saat butuh konfirmasi pelayan untuk aksi tertentu.
func (ac *AuthController) VerifyStaff(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := ac.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid staff credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid staff credentials"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Staff verified", gin.H{
		"id":   user.ID,
		"name": user.Name,
		"role": user.Role,
	})
}

// GetProfile mengembalikan profil dari klaim token.
func (ac *AuthController) GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	tokenType := c.GetString("token_type")
	if tokenType == utils.TokenTypeTable {
		var table models.Table
		if err := ac.DB.First(&table, userID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Table profile", gin.H{
			"id":       table.ID,
			"username": table.Username,
			"type":     "table",
		})
		return
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
		"type":  "staff",
	})
}
