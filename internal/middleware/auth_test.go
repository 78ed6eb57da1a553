package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mentor-api/internal/models"
	"mentor-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memberStore мінімальна in-memory реалізація MemberService для фільтра
type memberStore struct {
	members map[string]*services.Member
}

func newMemberStore(members ...*services.Member) *memberStore {
	store := &memberStore{members: make(map[string]*services.Member)}
	for _, member := range members {
		store.members[member.ID] = member
	}
	return store
}

func (s *memberStore) Signup(req models.SignupRequest) (*models.SignupResponse, error) {
	return nil, services.ErrEmailAlreadyExists
}

func (s *memberStore) ValidateLogin(email, password string) (*services.Member, error) {
	return nil, services.ErrLoginFailed
}

func (s *memberStore) FindByEmail(email string) (*services.Member, error) {
	for _, member := range s.members {
		if member.Email == email && member.IsActive {
			return member, nil
		}
	}
	return nil, services.ErrMemberNotFound
}

func (s *memberStore) FindByID(id string) (*services.Member, error) {
	if member, ok := s.members[id]; ok && member.IsActive {
		return member, nil
	}
	return nil, services.ErrMemberNotFound
}

func (s *memberStore) FindByRefreshToken(refreshToken string) (*services.Member, error) {
	for _, member := range s.members {
		if member.RefreshToken == refreshToken && member.RefreshToken != "" && member.IsActive {
			return member, nil
		}
	}
	return nil, services.ErrMemberNotFound
}

func (s *memberStore) FindBySocial(socialType models.SocialType, socialID string) (*services.Member, error) {
	return nil, services.ErrMemberNotFound
}

func (s *memberStore) UpdateRefreshToken(memberID, refreshToken string) error {
	member, ok := s.members[memberID]
	if !ok {
		return services.ErrMemberNotFound
	}
	member.RefreshToken = refreshToken
	return nil
}

func (s *memberStore) Authorize(memberID string) error {
	return nil
}

func (s *memberStore) CreateFromOAuth(info *services.ProviderUserInfo) (*services.Member, error) {
	return nil, services.ErrMemberNotFound
}

func (s *memberStore) ListMembers() ([]services.Member, error) {
	return nil, nil
}

func (s *memberStore) DeactivateMember(memberID string) error {
	return nil
}

func newFilterTokenService() services.TokenService {
	return services.NewTokenService(
		"filter-test-secret",
		30*time.Minute,
		7*24*time.Hour,
		"Authorization",
		"Authorization-Refresh",
	)
}

// newFilterRouter будує роутер з фільтром і пробним захищеним маршрутом
func newFilterRouter(tokenService services.TokenService, memberService services.MemberService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AuthenticationFilter(tokenService, memberService, []string{"/api/v1/auth"}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": "root"})
	})
	r.GET("/api/v1/auth/health-check", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/auth/reissue", func(c *gin.Context) {
		// Сюди запит доходить лише без валідного refresh токена
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_grant"})
	})

	protected := r.Group("/api/v1/member")
	protected.Use(RequireRole(models.RoleUser, models.RoleAdmin))
	protected.GET("/me", func(c *gin.Context) {
		member, ok := CurrentMember(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no principal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": member.Email})
	})

	admin := r.Group("/api/v1/admin")
	admin.Use(RequireRole(models.RoleAdmin))
	admin.GET("/members", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"members": []string{}})
	})

	return r
}

func activeMember(id, email, role, refreshToken string) *services.Member {
	return &services.Member{
		ID:           id,
		Email:        email,
		Role:         role,
		SocialType:   string(models.SocialLocal),
		PasswordHash: "hashed-password",
		RefreshToken: refreshToken,
		IsActive:     true,
	}
}

func TestAuthenticationFilter_SkipsUnprotectedPaths(t *testing.T) {
	tokenService := newFilterTokenService()
	router := newFilterRouter(tokenService, newMemberStore())

	t.Run("root path", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("auth prefix", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/health-check", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthenticationFilter_ValidAccessTokenAttachesPrincipal(t *testing.T) {
	tokenService := newFilterTokenService()
	member := activeMember("member-1", "user@example.com", string(models.RoleUser), "")
	router := newFilterRouter(tokenService, newMemberStore(member))

	accessToken, err := tokenService.CreateAccessToken("user@example.com", models.RoleUser)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/member/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user@example.com")
}

func TestAuthenticationFilter_NoTokenLeavesRequestUnauthenticated(t *testing.T) {
	tokenService := newFilterTokenService()
	router := newFilterRouter(tokenService, newMemberStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/member/me", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func TestAuthenticationFilter_InvalidAccessToken(t *testing.T) {
	tokenService := newFilterTokenService()
	member := activeMember("member-1", "user@example.com", string(models.RoleUser), "")
	router := newFilterRouter(tokenService, newMemberStore(member))

	otherService := services.NewTokenService("other-secret", 30*time.Minute, time.Hour, "Authorization", "Authorization-Refresh")
	foreignToken, err := otherService.CreateAccessToken("user@example.com", models.RoleUser)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/member/me", nil)
	req.Header.Set("Authorization", "Bearer "+foreignToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationFilter_UnknownRoleClaimRejected(t *testing.T) {
	tokenService := newFilterTokenService()
	member := activeMember("member-1", "user@example.com", string(models.RoleUser), "")
	router := newFilterRouter(tokenService, newMemberStore(member))

	// Підпис валідний, але claim ролі не відповідає жодній ролі платформи
	token, err := tokenService.CreateAccessToken("user@example.com", models.Role("SUPERVISOR"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/member/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationFilter_RefreshRotation(t *testing.T) {
	tokenService := newFilterTokenService()

	oldRefreshToken, err := tokenService.CreateRefreshToken()
	require.NoError(t, err)

	member := activeMember("member-1", "user@example.com", string(models.RoleUser), oldRefreshToken)
	store := newMemberStore(member)
	router := newFilterRouter(tokenService, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/reissue", nil)
	req.Header.Set("Authorization-Refresh", "Bearer "+oldRefreshToken)
	router.ServeHTTP(w, req)

	// Ротація завершує запит сама, handler не викликається
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "invalid_grant")

	newAccess := w.Header().Get("Authorization")
	newRefresh := w.Header().Get("Authorization-Refresh")
	require.NotEmpty(t, newAccess)
	require.NotEmpty(t, newRefresh)
	assert.Contains(t, newAccess, "Bearer ")
	assert.Contains(t, newRefresh, "Bearer ")

	// Збережений токен замінено новим
	assert.NotEqual(t, oldRefreshToken, member.RefreshToken)
	assert.Equal(t, "Bearer "+member.RefreshToken, newRefresh)
}

func TestAuthenticationFilter_OldRefreshTokenInvalidAfterRotation(t *testing.T) {
	tokenService := newFilterTokenService()

	oldRefreshToken, err := tokenService.CreateRefreshToken()
	require.NoError(t, err)

	member := activeMember("member-1", "user@example.com", string(models.RoleUser), oldRefreshToken)
	router := newFilterRouter(tokenService, newMemberStore(member))

	// Перша ротація
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/reissue", nil)
	req.Header.Set("Authorization-Refresh", "Bearer "+oldRefreshToken)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEqual(t, oldRefreshToken, member.RefreshToken)

	// Повторне використання старого токена: невідомий токен,
	// запит доходить до handler неавтентифікованим
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/reissue", nil)
	req.Header.Set("Authorization-Refresh", "Bearer "+oldRefreshToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_grant")
}

func TestAuthenticationFilter_UnknownRefreshTokenContinuesChain(t *testing.T) {
	tokenService := newFilterTokenService()
	router := newFilterRouter(tokenService, newMemberStore())

	// Криптографічно валідний, але ніде не збережений токен
	strayToken, err := tokenService.CreateRefreshToken()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/reissue", nil)
	req.Header.Set("Authorization-Refresh", "Bearer "+strayToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_grant")
	assert.Empty(t, w.Header().Get("Authorization"))
}

func TestAuthenticationFilter_ExpiredRefreshTokenIgnored(t *testing.T) {
	expiredService := services.NewTokenService("filter-test-secret", -time.Minute, -time.Minute, "Authorization", "Authorization-Refresh")
	expiredToken, err := expiredService.CreateRefreshToken()
	require.NoError(t, err)

	tokenService := newFilterTokenService()
	member := activeMember("member-1", "user@example.com", string(models.RoleUser), expiredToken)
	router := newFilterRouter(tokenService, newMemberStore(member))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/reissue", nil)
	req.Header.Set("Authorization-Refresh", "Bearer "+expiredToken)
	router.ServeHTTP(w, req)

	// Прострочений токен не запускає ротацію
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, expiredToken, member.RefreshToken)
}

func TestRequireRole_InsufficientRole(t *testing.T) {
	tokenService := newFilterTokenService()
	member := activeMember("member-1", "user@example.com", string(models.RoleUser), "")
	router := newFilterRouter(tokenService, newMemberStore(member))

	accessToken, err := tokenService.CreateAccessToken("user@example.com", models.RoleUser)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/members", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "access_denied")
}

func TestRequireRole_AdminAllowed(t *testing.T) {
	tokenService := newFilterTokenService()
	member := activeMember("member-1", "admin@example.com", string(models.RoleAdmin), "")
	router := newFilterRouter(tokenService, newMemberStore(member))

	accessToken, err := tokenService.CreateAccessToken("admin@example.com", models.RoleAdmin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/members", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSaveAuthentication_SocialMemberGetsPlaceholderCredential(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/member/me", nil)

	member := &services.Member{
		ID:         "member-social",
		Email:      "social@example.com",
		Role:       string(models.RoleUser),
		SocialType: string(models.SocialGoogle),
		IsActive:   true,
	}
	saveAuthentication(c, member)

	principal, ok := CurrentPrincipal(c)
	require.True(t, ok)
	assert.NotEmpty(t, principal.Credential)
	assert.Equal(t, models.RoleUser, principal.Role)
}
