package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"

	"mentor-api/internal/models"
	"mentor-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// OAuth2Handler містить handlers для федеративного входу
type OAuth2Handler struct {
	authService        services.AuthService
	tokenService       services.TokenService
	providerService    services.OAuthProviderService
	requestRepository  services.AuthorizationRequestRepository
	defaultRedirectURL string
}

// NewOAuth2Handler створює новий OAuth2Handler
func NewOAuth2Handler(
	authService services.AuthService,
	tokenService services.TokenService,
	providerService services.OAuthProviderService,
	requestRepository services.AuthorizationRequestRepository,
	defaultRedirectURL string,
) *OAuth2Handler {
	return &OAuth2Handler{
		authService:        authService,
		tokenService:       tokenService,
		providerService:    providerService,
		requestRepository:  requestRepository,
		defaultRedirectURL: defaultRedirectURL,
	}
}

// Authorize ініціює федеративний вхід через провайдера
// @Summary OAuth2 Authorize
// @Description Зберігає очікуючий запит і перенаправляє на провайдера
// @Tags oauth2
// @Param provider path string true "Provider code (google, kakao, naver, github)"
// @Param redirect_uri query string false "Redirect URI after login"
// @Success 302
// @Failure 400 {object} map[string]interface{}
// @Router /oauth2/authorize/{provider} [get]
func (h *OAuth2Handler) Authorize(c *gin.Context) {
	socialType, ok := federatedProvider(c.Param("provider"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "Unknown oauth provider",
		})
		return
	}

	state := generateState()

	authURL, request, err := h.providerService.BuildAuthorizationRequest(socialType, state)
	if err != nil {
		logrus.WithError(err).Error("Failed to build authorization request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "Failed to build authorization request",
		})
		return
	}

	if err := h.requestRepository.Save(c, request); err != nil {
		logrus.WithError(err).Error("Failed to save authorization request")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to save authorization request",
		})
		return
	}

	logrus.WithField("provider", socialType.Code()).Info("Redirecting to OAuth provider")
	c.Redirect(http.StatusFound, authURL)
}

// Callback обробляє повернення від провайдера.
// Очікуючий запит споживається рівно один раз: стан correlator
// очищується і при успіху, і при невдачі
// @Summary OAuth2 Callback
// @Description Завершує федеративний вхід після повернення від провайдера
// @Tags oauth2
// @Param provider path string true "Provider code"
// @Param code query string false "Authorization Code"
// @Param state query string false "State"
// @Success 302
// @Router /login/oauth2/code/{provider} [get]
func (h *OAuth2Handler) Callback(c *gin.Context) {
	socialType, ok := federatedProvider(c.Param("provider"))
	if !ok {
		h.handleFailure(c, "unknown oauth provider")
		return
	}

	if errorParam := c.Query("error"); errorParam != "" {
		message := c.Query("error_description")
		if message == "" {
			message = errorParam
		}
		logrus.WithField("error", errorParam).Warn("OAuth provider returned error")
		h.handleFailure(c, message)
		return
	}

	saved := h.requestRepository.Load(c)
	if saved == nil {
		h.handleFailure(c, "authorization request not found or expired")
		return
	}

	if state := c.Query("state"); state == "" || state != saved.State {
		h.handleFailure(c, "state parameter mismatch")
		return
	}

	code := c.Query("code")
	if code == "" {
		h.handleFailure(c, "missing authorization code")
		return
	}

	info, err := h.providerService.FetchUserInfo(c.Request.Context(), socialType, code)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch user info from provider")
		h.handleFailure(c, err.Error())
		return
	}

	member, err := h.authService.ResolveOAuthMember(info)
	if err != nil {
		logrus.WithError(err).Error("Failed to resolve oauth member")
		h.handleFailure(c, err.Error())
		return
	}

	h.handleSuccess(c, member)
}

// handleSuccess завершує успішний федеративний вхід: випускає токени,
// встановлює refresh cookie, очищує correlator і перенаправляє клієнта
// з access токеном у query параметрі
func (h *OAuth2Handler) handleSuccess(c *gin.Context, member *services.Member) {
	tokens, err := h.authService.FinalizeOAuthLogin(member)
	if err != nil {
		logrus.WithError(err).Error("Failed to finalize oauth login")
		h.handleFailure(c, err.Error())
		return
	}

	h.tokenService.AddRefreshTokenCookie(c, tokens.RefreshToken)

	target, ok := h.requestRepository.LoadRedirectURI(c)
	if !ok {
		target = h.defaultRedirectURL
	}
	target = appendQueryParam(target, "accessToken", tokens.AccessToken)

	h.requestRepository.Clear(c)

	logrus.WithField("member_id", member.ID).Info("OAuth2 login succeeded")
	c.Redirect(http.StatusFound, target)
}

// handleFailure термінальна межа помилок федеративного входу.
// Ніколи не повертає помилку клієнту напряму - тільки redirect
// з параметром error
func (h *OAuth2Handler) handleFailure(c *gin.Context, message string) {
	target, ok := h.requestRepository.LoadRedirectURI(c)
	if !ok {
		target = "/"
	}
	target = appendQueryParam(target, "error", message)

	h.requestRepository.Clear(c)

	logrus.WithField("reason", message).Warn("OAuth2 login failed")
	c.Redirect(http.StatusFound, target)
}

// federatedProvider повертає тип провайдера за кодом з маршруту.
// LOCAL не є федеративним провайдером
func federatedProvider(code string) (models.SocialType, bool) {
	socialType, ok := models.SocialTypeOf(code)
	if !ok || socialType == models.SocialLocal {
		return "", false
	}
	return socialType, true
}

// appendQueryParam додає query параметр до URL
func appendQueryParam(target, key, value string) string {
	parsed, err := url.Parse(target)
	if err != nil {
		return target
	}

	query := parsed.Query()
	query.Set(key, value)
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

// generateState генерує криптографічно стійкий state параметр
func generateState() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.RawURLEncoding.EncodeToString(bytes)
}
