package services

import (
	"fmt"
	"strings"
	"time"

	"mentor-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	accessTokenSubject  = "AccessToken"
	refreshTokenSubject = "RefreshToken"
	bearerPrefix        = "Bearer "

	// RefreshTokenCookieName ім'я cookie з refresh токеном
	RefreshTokenCookieName = "refresh_token"

	// ReissueCookiePath шлях дії refresh cookie (тільки endpoint перевипуску)
	ReissueCookiePath = "/auth/reissue"
)

// tokenService реалізація TokenService
type tokenService struct {
	secretKey     []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	accessHeader  string
	refreshHeader string
}

// NewTokenService створює новий Token сервіс
func NewTokenService(secretKey string, accessTTL, refreshTTL time.Duration, accessHeader, refreshHeader string) TokenService {
	return &tokenService{
		secretKey:     []byte(secretKey),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		accessHeader:  accessHeader,
		refreshHeader: refreshHeader,
	}
}

// AccessTokenClaims представляє claims для Access Token
type AccessTokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshTokenClaims представляє claims для Refresh Token
// Refresh токен навмисно не містить identity claims: учасник
// визначається пошуком збереженого значення токена в базі
type RefreshTokenClaims struct {
	jwt.RegisteredClaims
}

// CreateAccessToken генерує Access Token з email та роллю
func (t *tokenService) CreateAccessToken(email string, role models.Role) (string, error) {
	now := time.Now()

	claims := AccessTokenClaims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accessTokenSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// CreateRefreshToken генерує Refresh Token без identity claims
func (t *tokenService) CreateRefreshToken() (string, error) {
	now := time.Now()

	claims := RefreshTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   refreshTokenSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, nil
}

// IsTokenValid перевіряє підпис і термін дії токена
// Будь-який зіпсований чи прострочений токен дає false, без помилок назовні
func (t *tokenService) IsTokenValid(tokenString string) bool {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secretKey, nil
	})
	if err != nil {
		logrus.WithError(err).Debug("Token validation failed")
		return false
	}

	return token.Valid
}

// ExtractEmail витягує email з валідного Access Token
func (t *tokenService) ExtractEmail(accessToken string) (string, bool) {
	token, err := jwt.ParseWithClaims(accessToken, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secretKey, nil
	})
	if err != nil {
		logrus.Debug("Access token is not valid")
		return "", false
	}

	if claims, ok := token.Claims.(*AccessTokenClaims); ok && token.Valid && claims.Email != "" {
		return claims.Email, true
	}

	return "", false
}

// ExtractRole витягує роль з валідного Access Token
func (t *tokenService) ExtractRole(accessToken string) (models.Role, bool) {
	token, err := jwt.ParseWithClaims(accessToken, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secretKey, nil
	})
	if err != nil {
		return "", false
	}

	if claims, ok := token.Claims.(*AccessTokenClaims); ok && token.Valid {
		role := models.Role(claims.Role)
		if role.IsValid() {
			return role, true
		}
	}

	return "", false
}

// ExtractAccessToken витягує Access Token з заголовка запиту
func (t *tokenService) ExtractAccessToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(t.accessHeader)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" {
		return "", false
	}

	return token, true
}

// ExtractRefreshToken витягує Refresh Token з заголовка запиту
// Якщо заголовка немає - пробуємо cookie, встановлену федеративним входом
func (t *tokenService) ExtractRefreshToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(t.refreshHeader)
	if strings.HasPrefix(header, bearerPrefix) {
		token := strings.TrimPrefix(header, bearerPrefix)
		if token != "" {
			return token, true
		}
	}

	cookie, err := c.Cookie(RefreshTokenCookieName)
	if err != nil || cookie == "" {
		return "", false
	}

	return cookie, true
}

// SendAccessToken встановлює Access Token у заголовок відповіді
func (t *tokenService) SendAccessToken(c *gin.Context, accessToken string) {
	c.Header(t.accessHeader, bearerPrefix+accessToken)
	logrus.Debug("Access token attached to response")
}

// SendAccessAndRefreshToken встановлює обидва токени у заголовки відповіді
func (t *tokenService) SendAccessAndRefreshToken(c *gin.Context, accessToken, refreshToken string) {
	c.Header(t.accessHeader, bearerPrefix+accessToken)
	c.Header(t.refreshHeader, bearerPrefix+refreshToken)
	logrus.Debug("Access and refresh tokens attached to response")
}

// AddRefreshTokenCookie встановлює http-only cookie з refresh токеном,
// обмежену шляхом endpoint перевипуску
func (t *tokenService) AddRefreshTokenCookie(c *gin.Context, refreshToken string) {
	maxAge := int(t.refreshTTL.Seconds())
	c.SetCookie(RefreshTokenCookieName, refreshToken, maxAge, ReissueCookiePath, "", true, true)
}

// RemoveRefreshTokenCookie видаляє refresh cookie
func (t *tokenService) RemoveRefreshTokenCookie(c *gin.Context) {
	c.SetCookie(RefreshTokenCookieName, "", -1, ReissueCookiePath, "", true, true)
}

// AccessTTL повертає термін дії Access Token
func (t *tokenService) AccessTTL() time.Duration {
	return t.accessTTL
}
