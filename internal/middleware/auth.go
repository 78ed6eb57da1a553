package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"mentor-api/internal/models"
	"mentor-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const principalContextKey = "principal"

// Principal представляє автентифікованого учасника в контексті запиту
type Principal struct {
	Member     *services.Member
	Role       models.Role
	Credential string
}

// AuthenticationFilter створює middleware автентифікації.
// Виконується один раз на запит, до бізнес-маршрутів:
//   - незахищені шляхи пропускаються без перевірок
//   - валідний refresh токен запускає ротацію і завершує запит
//   - валідний access токен прикріплює учасника до контексту
//   - інакше запит іде далі неавтентифікованим; відмову дає
//     авторизаційний шар маршрутів
func AuthenticationFilter(tokenService services.TokenService, memberService services.MemberService, skipPrefixes []string) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		if isUnauthenticatedPath(c.Request.URL.Path, skipPrefixes) {
			c.Next()
			return
		}

		// 1. Refresh токен - запит на перевипуск пари токенів
		if refreshToken, ok := tokenService.ExtractRefreshToken(c); ok && tokenService.IsTokenValid(refreshToken) {
			if reissueTokens(c, tokenService, memberService, refreshToken) {
				return
			}
			// Невідомий refresh токен: тихо продовжуємо без автентифікації
			c.Next()
			return
		}

		// 2. Access токен - звичайна автентифікація
		checkAccessTokenAndAuthenticate(c, tokenService, memberService)

		c.Next()
	})
}

// reissueTokens виконує ротацію refresh токена.
// Повертає true якщо пару переведено і запит завершено
func reissueTokens(c *gin.Context, tokenService services.TokenService, memberService services.MemberService, refreshToken string) bool {
	member, err := memberService.FindByRefreshToken(refreshToken)
	if err != nil {
		if !errors.Is(err, services.ErrMemberNotFound) {
			logrus.WithError(err).Error("Failed to look up member by refresh token")
		}
		return false
	}

	newRefreshToken, err := tokenService.CreateRefreshToken()
	if err != nil {
		logrus.WithError(err).Error("Failed to create refresh token")
		return false
	}

	// Збереження нового значення робить попередній токен недійсним
	if err := memberService.UpdateRefreshToken(member.ID, newRefreshToken); err != nil {
		logrus.WithError(err).Error("Failed to persist rotated refresh token")
		return false
	}

	accessToken, err := tokenService.CreateAccessToken(member.Email, models.Role(member.Role))
	if err != nil {
		logrus.WithError(err).Error("Failed to create access token")
		return false
	}

	tokenService.SendAccessAndRefreshToken(c, accessToken, newRefreshToken)

	logrus.WithField("member_id", member.ID).Info("Tokens reissued successfully")

	// Перевипуск завершує запит - це не бізнес-виклик
	c.AbortWithStatus(http.StatusOK)
	return true
}

// checkAccessTokenAndAuthenticate перевіряє access токен і прикріплює
// учасника до контексту. Будь-яка невдача означає відсутність
// автентифікації, а не помилку клієнту
func checkAccessTokenAndAuthenticate(c *gin.Context, tokenService services.TokenService, memberService services.MemberService) {
	accessToken, ok := tokenService.ExtractAccessToken(c)
	if !ok || !tokenService.IsTokenValid(accessToken) {
		return
	}

	email, ok := tokenService.ExtractEmail(accessToken)
	if !ok {
		return
	}

	// Claim ролі має містити відому платформі роль
	if _, ok := tokenService.ExtractRole(accessToken); !ok {
		return
	}

	member, err := memberService.FindByEmail(email)
	if err != nil {
		if !errors.Is(err, services.ErrMemberNotFound) {
			logrus.WithError(err).Error("Failed to look up member by email")
		}
		return
	}

	saveAuthentication(c, member)
}

// saveAuthentication будує principal і зберігає його в контексті
func saveAuthentication(c *gin.Context, member *services.Member) {
	credential := member.PasswordHash
	if credential == "" {
		// Учасники з федеративним входом не мають локального пароля
		credential = generatePasswordPlaceholder()
	}

	principal := &Principal{
		Member:     member,
		Role:       models.Role(member.Role),
		Credential: credential,
	}

	c.Set(principalContextKey, principal)

	logrus.WithFields(logrus.Fields{
		"member_id": member.ID,
		"role":      member.Role,
		"path":      c.Request.URL.Path,
	}).Debug("Member authenticated successfully")
}

// RequireRole створює guard маршруту для заданих ролей.
// Без principal - 401, з недостатньою роллю - 403
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":             "unauthorized",
				"error_description": "Authentication required",
			})
			c.Abort()
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		logrus.WithFields(logrus.Fields{
			"member_id": principal.Member.ID,
			"role":      principal.Role,
			"path":      c.Request.URL.Path,
		}).Warn("Access denied for insufficient role")

		c.JSON(http.StatusForbidden, gin.H{
			"error":             "access_denied",
			"error_description": "Insufficient role",
		})
		c.Abort()
	})
}

// CurrentPrincipal витягує principal поточного запиту з контексту
func CurrentPrincipal(c *gin.Context) (*Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return nil, false
	}

	principal, ok := value.(*Principal)
	return principal, ok
}

// CurrentMember витягує автентифікованого учасника з контексту
func CurrentMember(c *gin.Context) (*services.Member, bool) {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		return nil, false
	}
	return principal.Member, true
}

// isUnauthenticatedPath перевіряє чи шлях виключений з фільтра
func isUnauthenticatedPath(path string, skipPrefixes []string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// generatePasswordPlaceholder генерує випадковий замінник пароля
func generatePasswordPlaceholder() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
