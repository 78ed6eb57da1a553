package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mentor-api/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// ProviderUserInfo представляє нормалізовану ідентичність від провайдера
type ProviderUserInfo struct {
	SocialType models.SocialType
	ID         string
	Email      string
	Nickname   string
	ImageURL   string
}

// ProviderConfig містить налаштування одного OAuth2 провайдера
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RedirectURI  string
	Scopes       []string
}

// oauthProviderService реалізація OAuthProviderService
type oauthProviderService struct {
	providers  map[models.SocialType]ProviderConfig
	httpClient *http.Client
}

// NewOAuthProviderService створює новий OAuth Provider сервіс.
// Набір провайдерів закритий: google, kakao, naver, github
func NewOAuthProviderService(providers map[models.SocialType]ProviderConfig) OAuthProviderService {
	return &oauthProviderService{
		providers: providers,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// oauthConfig будує oauth2.Config для провайдера
func (s *oauthProviderService) oauthConfig(cfg ProviderConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
	}
}

// BuildAuthorizationRequest будує URL авторизації провайдера та
// очікуючий запит для збереження в correlator
func (s *oauthProviderService) BuildAuthorizationRequest(socialType models.SocialType, state string) (string, *AuthorizationRequest, error) {
	cfg, ok := s.providers[socialType]
	if !ok {
		return "", nil, fmt.Errorf("unsupported oauth provider: %s", socialType.Code())
	}

	conf := s.oauthConfig(cfg)
	authURL := conf.AuthCodeURL(state)

	request := &AuthorizationRequest{
		AuthorizationURI: cfg.AuthURL,
		GrantType:        "authorization_code",
		ResponseType:     "code",
		ClientID:         cfg.ClientID,
		RedirectURI:      cfg.RedirectURI,
		Scopes:           cfg.Scopes,
		State:            state,
		Attributes: map[string]interface{}{
			"registration_id": socialType.Code(),
		},
	}

	return authURL, request, nil
}

// FetchUserInfo обмінює authorization code на токен провайдера
// та повертає нормалізовану ідентичність користувача
func (s *oauthProviderService) FetchUserInfo(ctx context.Context, socialType models.SocialType, code string) (*ProviderUserInfo, error) {
	cfg, ok := s.providers[socialType]
	if !ok {
		return nil, fmt.Errorf("unsupported oauth provider: %s", socialType.Code())
	}

	conf := s.oauthConfig(cfg)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", bearerPrefix+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var attributes map[string]interface{}
	if err := json.Unmarshal(body, &attributes); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo response: %w", err)
	}

	info, err := MapProviderUserInfo(socialType, attributes)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"social_type": socialType.Code(),
		"social_id":   info.ID,
	}).Info("User info retrieved from OAuth provider")

	return info, nil
}

// MapProviderUserInfo мапить сирі атрибути провайдера на нормалізовану
// ідентичність. Набір провайдерів закритий - невідомий код це помилка
func MapProviderUserInfo(socialType models.SocialType, attributes map[string]interface{}) (*ProviderUserInfo, error) {
	switch socialType {
	case models.SocialGoogle:
		return mapGoogleUserInfo(attributes), nil
	case models.SocialKakao:
		return mapKakaoUserInfo(attributes), nil
	case models.SocialNaver:
		return mapNaverUserInfo(attributes), nil
	case models.SocialGitHub:
		return mapGitHubUserInfo(attributes), nil
	default:
		return nil, fmt.Errorf("unsupported oauth provider: %s", socialType.Code())
	}
}

// mapGoogleUserInfo мапить атрибути Google (OpenID Connect схема)
func mapGoogleUserInfo(attributes map[string]interface{}) *ProviderUserInfo {
	return &ProviderUserInfo{
		SocialType: models.SocialGoogle,
		ID:         stringAttribute(attributes, "sub"),
		Email:      stringAttribute(attributes, "email"),
		Nickname:   stringAttribute(attributes, "name"),
		ImageURL:   stringAttribute(attributes, "picture"),
	}
}

// mapKakaoUserInfo мапить атрибути Kakao.
// Email не надається провайдером, профіль вкладений у kakao_account
func mapKakaoUserInfo(attributes map[string]interface{}) *ProviderUserInfo {
	info := &ProviderUserInfo{
		SocialType: models.SocialKakao,
		ID:         stringAttribute(attributes, "id"),
		Email:      "",
	}

	account := nestedAttributes(attributes, "kakao_account")
	profile := nestedAttributes(account, "profile")
	if profile != nil {
		info.Nickname = stringAttribute(profile, "nickname")
		info.ImageURL = stringAttribute(profile, "thumbnail_image_url")
	}

	return info
}

// mapNaverUserInfo мапить атрибути Naver (дані вкладені у response)
func mapNaverUserInfo(attributes map[string]interface{}) *ProviderUserInfo {
	response := nestedAttributes(attributes, "response")
	if response == nil {
		return &ProviderUserInfo{SocialType: models.SocialNaver}
	}

	return &ProviderUserInfo{
		SocialType: models.SocialNaver,
		ID:         stringAttribute(response, "id"),
		Email:      stringAttribute(response, "email"),
		Nickname:   stringAttribute(response, "nickname"),
		ImageURL:   stringAttribute(response, "profile_image"),
	}
}

// mapGitHubUserInfo мапить атрибути GitHub
func mapGitHubUserInfo(attributes map[string]interface{}) *ProviderUserInfo {
	nickname := stringAttribute(attributes, "name")
	if nickname == "" {
		nickname = stringAttribute(attributes, "login")
	}

	return &ProviderUserInfo{
		SocialType: models.SocialGitHub,
		ID:         stringAttribute(attributes, "id"),
		Email:      stringAttribute(attributes, "email"),
		Nickname:   nickname,
		ImageURL:   stringAttribute(attributes, "avatar_url"),
	}
}

// stringAttribute витягує атрибут як рядок.
// Числові ID (kakao, github) конвертуються в рядок
func stringAttribute(attributes map[string]interface{}, key string) string {
	value, ok := attributes[key]
	if !ok || value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// nestedAttributes витягує вкладену мапу атрибутів
func nestedAttributes(attributes map[string]interface{}, key string) map[string]interface{} {
	if attributes == nil {
		return nil
	}
	nested, ok := attributes[key].(map[string]interface{})
	if !ok {
		return nil
	}
	return nested
}
