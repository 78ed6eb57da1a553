package handlers

import (
	"errors"
	"net/http"

	"mentor-api/internal/models"
	"mentor-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler містить handlers для локальної автентифікації
type AuthHandler struct {
	authService  services.AuthService
	tokenService services.TokenService
}

// NewAuthHandler створює новий AuthHandler
func NewAuthHandler(authService services.AuthService, tokenService services.TokenService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
	}
}

// HealthCheck перевіряє доступність auth API
// @Summary Health Check
// @Description Перевіряє доступність auth API
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/auth/health-check [get]
func (h *AuthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Signup реєструє нового учасника
// @Summary Signup
// @Description Реєструє нового учасника за email та паролем
// @Tags auth
// @Accept json
// @Produce json
// @Param signupRequest body models.SignupRequest true "Signup Data"
// @Success 201 {object} models.SignupResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	logrus.Info("Signup request")

	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Error("Invalid signup request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "Missing or invalid signup fields",
		})
		return
	}

	response, err := h.authService.Signup(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error":             "duplicate_email",
				"error_description": "Email already registered",
			})
			return
		}
		logrus.WithError(err).Error("Failed to sign up member")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to sign up member",
		})
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login виконує локальний вхід за email та паролем
// @Summary Login
// @Description Вхід за email та паролем з випуском JWT токенів
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body models.LoginRequest true "Login Data"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	logrus.Info("Local login request")

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "Missing or invalid email/password",
		})
		return
	}

	tokens, err := h.authService.Login(&req)
	if err != nil {
		// Одне повідомлення для невірного email і невірного пароля
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_grant",
			"error_description": services.ErrLoginFailed.Error(),
		})
		return
	}

	// Access токен дублюється в заголовку, як і при ротації
	h.tokenService.SendAccessToken(c, tokens.AccessToken)

	c.JSON(http.StatusOK, tokens)
}

// Reissue endpoint ротації токенів.
// Сама ротація виконується фільтром автентифікації: якщо запит
// дійшов до handler, валідного refresh токена не було
// @Summary Reissue Tokens
// @Description Перевипускає пару токенів за refresh токеном
// @Tags auth
// @Produce json
// @Success 200
// @Failure 401 {object} map[string]interface{}
// @Router /auth/reissue [post]
func (h *AuthHandler) Reissue(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":             "invalid_grant",
		"error_description": "Invalid or expired refresh token",
	})
}
