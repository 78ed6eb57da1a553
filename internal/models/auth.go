package models

// TokenResponse представляє пару випущених токенів
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginRequest представляє запит на вхід через email/password
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest представляє запит на реєстрацію
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2"`
	Password string `json:"password" binding:"required,min=8,max=20"`
}

// SignupResponse представляє відповідь на реєстрацію
type SignupResponse struct {
	MemberID string `json:"member_id"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}
