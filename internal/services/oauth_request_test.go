package services

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingRequest() *AuthorizationRequest {
	return &AuthorizationRequest{
		AuthorizationURI: "https://accounts.google.com/o/oauth2/v2/auth",
		GrantType:        "authorization_code",
		ResponseType:     "code",
		ClientID:         "test-client-id",
		RedirectURI:      "http://localhost:8080/login/oauth2/code/google",
		Scopes:           []string{"openid", "profile", "email"},
		State:            "random-state-value",
		Attributes: map[string]interface{}{
			"registration_id": "google",
		},
	}
}

// saveToRecorder зберігає запит і повертає встановлені cookie
func saveToRecorder(t *testing.T, request *AuthorizationRequest, rawQuery string) []*http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/oauth2/authorize/google?"+rawQuery, nil)

	repo := NewAuthorizationRequestRepository()
	require.NoError(t, repo.Save(c, request))

	return w.Result().Cookies()
}

// contextWithCookies будує контекст запиту з переданими cookie
func contextWithCookies(cookies []*http.Cookie) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/login/oauth2/code/google", nil)
	for _, cookie := range cookies {
		c.Request.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	return c
}

func TestAuthorizationRequest_SaveLoadRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)

	saved := newPendingRequest()
	cookies := saveToRecorder(t, saved, "")

	require.Len(t, cookies, 1)
	assert.Equal(t, AuthorizationRequestCookieName, cookies[0].Name)
	assert.Equal(t, 180, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)

	repo := NewAuthorizationRequestRepository()
	loaded := repo.Load(contextWithCookies(cookies))

	require.NotNil(t, loaded)
	assert.Equal(t, saved.AuthorizationURI, loaded.AuthorizationURI)
	assert.Equal(t, saved.ClientID, loaded.ClientID)
	assert.Equal(t, saved.State, loaded.State)
	assert.Equal(t, saved.Scopes, loaded.Scopes)
	assert.Equal(t, "google", loaded.Attributes["registration_id"])
}

func TestAuthorizationRequest_SaveStoresRedirectURI(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cookies := saveToRecorder(t, newPendingRequest(), "redirect_uri=http%3A%2F%2Flocalhost%3A3000%2Fafter-login")
	require.Len(t, cookies, 2)

	repo := NewAuthorizationRequestRepository()
	target, ok := repo.LoadRedirectURI(contextWithCookies(cookies))
	require.True(t, ok)
	assert.Equal(t, "http://localhost:3000/after-login", target)
}

func TestAuthorizationRequest_SaveNilClearsState(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/oauth2/authorize/google", nil)

	repo := NewAuthorizationRequestRepository()
	require.NoError(t, repo.Save(c, nil))

	for _, cookie := range w.Result().Cookies() {
		assert.Less(t, cookie.MaxAge, 0)
		assert.Empty(t, cookie.Value)
	}
}

func TestAuthorizationRequest_LoadAbsentCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := NewAuthorizationRequestRepository()
	assert.Nil(t, repo.Load(contextWithCookies(nil)))

	_, ok := repo.LoadRedirectURI(contextWithCookies(nil))
	assert.False(t, ok)
}

func TestAuthorizationRequest_LoadMalformedCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := NewAuthorizationRequestRepository()

	t.Run("not base64", func(t *testing.T) {
		c := contextWithCookies([]*http.Cookie{
			{Name: AuthorizationRequestCookieName, Value: "%%%not-base64%%%"},
		})
		assert.Nil(t, repo.Load(c))
	})

	t.Run("not json", func(t *testing.T) {
		value := base64.URLEncoding.EncodeToString([]byte("plain text, not json"))
		c := contextWithCookies([]*http.Cookie{
			{Name: AuthorizationRequestCookieName, Value: value},
		})
		assert.Nil(t, repo.Load(c))
	})

	t.Run("missing required fields", func(t *testing.T) {
		value := base64.URLEncoding.EncodeToString([]byte(`{"state":"abc"}`))
		c := contextWithCookies([]*http.Cookie{
			{Name: AuthorizationRequestCookieName, Value: value},
		})
		assert.Nil(t, repo.Load(c))
	})
}

func TestAuthorizationRequest_ClearIsIdempotent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/login/oauth2/code/google", nil)

	repo := NewAuthorizationRequestRepository()
	repo.Clear(c)
	repo.Clear(c)

	for _, cookie := range w.Result().Cookies() {
		assert.Less(t, cookie.MaxAge, 0)
	}

	// Після очищення стан не відновлюється
	assert.Nil(t, repo.Load(contextWithCookies(nil)))
}
