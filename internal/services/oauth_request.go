package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	// AuthorizationRequestCookieName ім'я cookie з очікуючим запитом авторизації
	AuthorizationRequestCookieName = "oauth2_auth_request"

	// RedirectURICookieName ім'я cookie з цільовим URI після входу.
	// Збігається з ім'ям query параметра запиту
	RedirectURICookieName = "redirect_uri"

	// authorizationRequestTTL термін життя cookie в секундах.
	// TTL очікуючого запиту живе в MaxAge самої cookie
	authorizationRequestTTL = 180
)

// AuthorizationRequest представляє очікуючий запит федеративного входу.
// Стан живе повністю в cookie клієнта - сервер нічого не зберігає
type AuthorizationRequest struct {
	AuthorizationURI     string                 `json:"authorizationUri"`
	GrantType            string                 `json:"authorizationGrantType"`
	ResponseType         string                 `json:"responseType"`
	ClientID             string                 `json:"clientId"`
	RedirectURI          string                 `json:"redirectUri"`
	Scopes               []string               `json:"scopes"`
	State                string                 `json:"state"`
	AdditionalParameters map[string]interface{} `json:"additionalParameters,omitempty"`
	Attributes           map[string]interface{} `json:"attributes,omitempty"`
}

// cookieAuthorizationRequestRepository реалізація AuthorizationRequestRepository
type cookieAuthorizationRequestRepository struct{}

// NewAuthorizationRequestRepository створює новий репозиторій
// очікуючих запитів авторизації на основі cookie
func NewAuthorizationRequestRepository() AuthorizationRequestRepository {
	return &cookieAuthorizationRequestRepository{}
}

// Save серіалізує запит авторизації в cookie.
// Порожній запит трактується як явне скасування - стан очищується.
// Якщо запит містить query параметр redirect_uri, він зберігається
// в окрему cookie з тим самим TTL
func (r *cookieAuthorizationRequestRepository) Save(c *gin.Context, request *AuthorizationRequest) error {
	if request == nil {
		r.Clear(c)
		return nil
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to serialize authorization request: %w", err)
	}

	value := base64.URLEncoding.EncodeToString(payload)
	c.SetCookie(AuthorizationRequestCookieName, value, authorizationRequestTTL, "/", "", true, true)

	if redirectURI := c.Query(RedirectURICookieName); redirectURI != "" {
		c.SetCookie(RedirectURICookieName, redirectURI, authorizationRequestTTL, "/", "", true, true)
	}

	logrus.WithField("client_id", request.ClientID).Debug("Authorization request saved to cookie")
	return nil
}

// Load відновлює запит авторизації з cookie.
// Відсутня, зіпсована чи неповна cookie означає "немає очікуючого
// запиту" - nil без помилки
func (r *cookieAuthorizationRequestRepository) Load(c *gin.Context) *AuthorizationRequest {
	value, err := c.Cookie(AuthorizationRequestCookieName)
	if err != nil || value == "" {
		return nil
	}

	payload, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		logrus.Debug("Authorization request cookie is not valid base64")
		return nil
	}

	var request AuthorizationRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		logrus.Debug("Authorization request cookie is not valid JSON")
		return nil
	}

	if request.AuthorizationURI == "" || request.ClientID == "" {
		return nil
	}

	return &request
}

// LoadRedirectURI повертає збережений цільовий URI після входу
func (r *cookieAuthorizationRequestRepository) LoadRedirectURI(c *gin.Context) (string, bool) {
	value, err := c.Cookie(RedirectURICookieName)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

// Clear видаляє обидві cookie. Повторний виклик - no-op
func (r *cookieAuthorizationRequestRepository) Clear(c *gin.Context) {
	c.SetCookie(AuthorizationRequestCookieName, "", -1, "/", "", true, true)
	c.SetCookie(RedirectURICookieName, "", -1, "/", "", true, true)
}
