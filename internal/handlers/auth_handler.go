package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bocm-app/bocm-api/internal/config"
	"github.com/bocm-app/bocm-api/internal/middleware"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, config: cfg}
}

// --------- Requests ---------

type RegisterRequest struct {
	AccountType string `json:"account_type" binding:"required,oneof=barber client"`

	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`

	// Barber-only profile fields.
	ShopName  string `json:"shop_name"`
	Specialty string `json:"specialty"`
	City      string `json:"city"`
	Address   string `json:"address"`
}

type LoginRequest struct {
	AccountType string `json:"account_type" binding:"required,oneof=barber client"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !validators.IsEmailDomainValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_email_domain",
			"message": "The email domain does not look valid.",
		})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_hash_password"})
		return
	}

	switch req.AccountType {
	case middleware.RoleBarber:
		var count int64
		h.db.Model(&models.Barber{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email_already_exists"})
			return
		}

		barber := models.Barber{
			Name:         req.Name,
			Email:        email,
			PasswordHash: string(hashed),
			Phone:        req.Phone,
			ShopName:     req.ShopName,
			Specialty:    req.Specialty,
			City:         req.City,
			Address:      req.Address,
		}

		if err := h.db.Create(&barber).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_account"})
			return
		}

		token, err := h.generateToken(barber.ID, middleware.RoleBarber)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"barber": barber, "token": token})

	case middleware.RoleClient:
		var count int64
		h.db.Model(&models.Client{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email_already_exists"})
			return
		}

		client := models.Client{
			Name:         req.Name,
			Email:        email,
			PasswordHash: string(hashed),
			Phone:        req.Phone,
		}

		if err := h.db.Create(&client).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_account"})
			return
		}

		token, err := h.generateToken(client.ID, middleware.RoleClient)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"client": client, "token": token})
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var (
		id           uint
		passwordHash string
		payload      gin.H
	)

	switch req.AccountType {
	case middleware.RoleBarber:
		var barber models.Barber
		if err := h.db.Where("email = ?", email).First(&barber).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
			return
		}
		id, passwordHash = barber.ID, barber.PasswordHash
		payload = gin.H{"barber": barber}

	case middleware.RoleClient:
		var client models.Client
		if err := h.db.Where("email = ?", email).First(&client).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
			return
		}
		id, passwordHash = client.ID, client.PasswordHash
		payload = gin.H{"client": client}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	token, err := h.generateToken(id, req.AccountType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	payload["token"] = token
	c.JSON(http.StatusOK, payload)
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(id uint, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  id,
		"role": role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
