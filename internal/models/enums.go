package models

import "strings"

// Role представляє роль учасника платформи
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
	RoleGuest Role = "GUEST"
)

// roleCodes мапа код -> роль (аналог lookup по коду)
var roleCodes = map[string]Role{
	"ROLE_ADMIN": RoleAdmin,
	"ROLE_USER":  RoleUser,
	"ROLE_GUEST": RoleGuest,
}

// Code повертає код ролі для авторизаційних перевірок
func (r Role) Code() string {
	return "ROLE_" + string(r)
}

// IsValid перевіряє чи роль належить до закритого набору
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	}
	return false
}

// RoleOf повертає роль за кодом
func RoleOf(code string) (Role, bool) {
	role, ok := roleCodes[code]
	return role, ok
}

// SocialType представляє тип зовнішнього провайдера автентифікації
type SocialType string

const (
	SocialLocal  SocialType = "LOCAL"
	SocialGoogle SocialType = "GOOGLE"
	SocialNaver  SocialType = "NAVER"
	SocialKakao  SocialType = "KAKAO"
	SocialGitHub SocialType = "GITHUB"
)

// socialCodes мапа код -> тип провайдера
var socialCodes = map[string]SocialType{
	"local":  SocialLocal,
	"google": SocialGoogle,
	"naver":  SocialNaver,
	"kakao":  SocialKakao,
	"github": SocialGitHub,
}

// Code повертає код провайдера (використовується в URL маршрутах)
func (s SocialType) Code() string {
	switch s {
	case SocialLocal:
		return "local"
	case SocialGoogle:
		return "google"
	case SocialNaver:
		return "naver"
	case SocialKakao:
		return "kakao"
	case SocialGitHub:
		return "github"
	}
	return ""
}

// SocialTypeOf повертає тип провайдера за кодом.
// Код нечутливий до регістру: маршрути використовують "google",
// конфігурація - "GOOGLE"
func SocialTypeOf(code string) (SocialType, bool) {
	socialType, ok := socialCodes[strings.ToLower(code)]
	return socialType, ok
}
