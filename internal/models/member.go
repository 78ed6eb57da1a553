package models

import "time"

// MemberProfile представляє профіль учасника для API відповідей
type MemberProfile struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	ImageURL   string     `json:"image_url,omitempty"`
	Role       Role       `json:"role"`
	SocialType SocialType `json:"social_type"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MemberListResponse представляє список учасників
type MemberListResponse struct {
	Members []MemberProfile `json:"members"`
	Total   int             `json:"total"`
}
