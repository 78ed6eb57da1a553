package services

import (
	"context"
	"time"

	"mentor-api/internal/models"

	"github.com/gin-gonic/gin"
)

// TokenService інтерфейс для випуску та перевірки JWT токенів
type TokenService interface {
	CreateAccessToken(email string, role models.Role) (string, error)
	CreateRefreshToken() (string, error)
	IsTokenValid(tokenString string) bool
	ExtractEmail(accessToken string) (string, bool)
	ExtractRole(accessToken string) (models.Role, bool)
	ExtractAccessToken(c *gin.Context) (string, bool)
	ExtractRefreshToken(c *gin.Context) (string, bool)
	SendAccessToken(c *gin.Context, accessToken string)
	SendAccessAndRefreshToken(c *gin.Context, accessToken, refreshToken string)
	AddRefreshTokenCookie(c *gin.Context, refreshToken string)
	RemoveRefreshTokenCookie(c *gin.Context)
	AccessTTL() time.Duration
}

// MemberService інтерфейс для роботи з учасниками платформи
type MemberService interface {
	Signup(req models.SignupRequest) (*models.SignupResponse, error)
	ValidateLogin(email, password string) (*Member, error)
	FindByEmail(email string) (*Member, error)
	FindByID(id string) (*Member, error)
	FindByRefreshToken(refreshToken string) (*Member, error)
	FindBySocial(socialType models.SocialType, socialID string) (*Member, error)
	UpdateRefreshToken(memberID, refreshToken string) error
	Authorize(memberID string) error
	CreateFromOAuth(info *ProviderUserInfo) (*Member, error)
	ListMembers() ([]Member, error)
	DeactivateMember(memberID string) error
}

// AuthService інтерфейс для автентифікації
type AuthService interface {
	Signup(req *models.SignupRequest) (*models.SignupResponse, error)
	Login(req *models.LoginRequest) (*models.TokenResponse, error)
	ResolveOAuthMember(info *ProviderUserInfo) (*Member, error)
	FinalizeOAuthLogin(member *Member) (*models.TokenResponse, error)
}

// AuthorizationRequestRepository інтерфейс для очікуючих запитів
// федеративного входу. Стан живе в cookie клієнта, не на сервері
type AuthorizationRequestRepository interface {
	Save(c *gin.Context, request *AuthorizationRequest) error
	Load(c *gin.Context) *AuthorizationRequest
	LoadRedirectURI(c *gin.Context) (string, bool)
	Clear(c *gin.Context)
}

// OAuthProviderService інтерфейс для роботи з зовнішніми OAuth2 провайдерами
type OAuthProviderService interface {
	BuildAuthorizationRequest(socialType models.SocialType, state string) (string, *AuthorizationRequest, error)
	FetchUserInfo(ctx context.Context, socialType models.SocialType, code string) (*ProviderUserInfo, error)
}
