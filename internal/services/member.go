package services

import (
	"errors"
	"fmt"
	"time"

	"mentor-api/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrMemberNotFound повертається коли учасник не знайдений
var ErrMemberNotFound = errors.New("member not found")

// ErrLoginFailed повертається при невдалому вході.
// Повідомлення однакове для невірного email і невірного пароля
var ErrLoginFailed = errors.New("invalid email or password")

// ErrEmailAlreadyExists повертається при реєстрації на зайнятий email
var ErrEmailAlreadyExists = errors.New("email already registered")

// Member представляє учасника платформи в базі даних.
// Email унікальний лише для непорожніх значень: деякі провайдери
// (kakao) не віддають email взагалі
type Member struct {
	ID           string    `gorm:"primaryKey;size:255" json:"id"`
	Email        string    `gorm:"index:idx_members_email,unique,where:email <> '';not null;size:255" json:"email"`
	Name         string    `gorm:"size:255" json:"name"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	ImageURL     string    `gorm:"size:500" json:"image_url,omitempty"`
	Role         string    `gorm:"not null;size:32" json:"role"`
	SocialType   string    `gorm:"size:32" json:"social_type"`
	SocialID     string    `gorm:"index;size:255" json:"-"`
	RefreshToken string    `gorm:"index;size:512" json:"-"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName явно задає ім'я таблиці для GORM
func (Member) TableName() string {
	return "members"
}

// Profile конвертує учасника в профіль для API відповідей
func (m *Member) Profile() models.MemberProfile {
	return models.MemberProfile{
		ID:         m.ID,
		Email:      m.Email,
		Name:       m.Name,
		ImageURL:   m.ImageURL,
		Role:       models.Role(m.Role),
		SocialType: models.SocialType(m.SocialType),
		CreatedAt:  m.CreatedAt,
	}
}

// memberService реалізація MemberService
type memberService struct {
	db *gorm.DB
}

// NewMemberService створює новий Member сервіс
func NewMemberService(db *gorm.DB) MemberService {
	return &memberService{
		db: db,
	}
}

// Signup реєструє нового учасника з email та паролем
func (s *memberService) Signup(req models.SignupRequest) (*models.SignupResponse, error) {
	var existing Member
	err := s.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing member: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := Member{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hashedPassword),
		Role:         string(models.RoleUser),
		SocialType:   string(models.SocialLocal),
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.db.Create(&member).Error; err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	logrus.WithField("member_id", member.ID).Info("Member registered successfully")

	return &models.SignupResponse{
		MemberID: member.ID,
		Email:    member.Email,
		Message:  "Signup successful",
	}, nil
}

// ValidateLogin перевіряє email та пароль учасника.
// При будь-якій невідповідності повертає одну й ту саму помилку
func (s *memberService) ValidateLogin(email, password string) (*Member, error) {
	member, err := s.FindByEmail(email)
	if err != nil {
		return nil, ErrLoginFailed
	}

	if member.PasswordHash == "" {
		return nil, ErrLoginFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return nil, ErrLoginFailed
	}

	return member, nil
}

// FindByEmail шукає учасника за email
func (s *memberService) FindByEmail(email string) (*Member, error) {
	var member Member
	err := s.db.Where("email = ? AND is_active = ?", email, true).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member by email: %w", err)
	}
	return &member, nil
}

// FindByID шукає учасника за ID
func (s *memberService) FindByID(id string) (*Member, error) {
	var member Member
	err := s.db.Where("id = ? AND is_active = ?", id, true).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member by id: %w", err)
	}
	return &member, nil
}

// FindByRefreshToken шукає учасника за збереженим refresh токеном.
// Пошук за значенням: старий токен стає недійсним одразу після ротації
func (s *memberService) FindByRefreshToken(refreshToken string) (*Member, error) {
	var member Member
	err := s.db.Where("refresh_token = ? AND is_active = ?", refreshToken, true).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member by refresh token: %w", err)
	}
	return &member, nil
}

// FindBySocial шукає учасника за провайдером та зовнішнім ID
func (s *memberService) FindBySocial(socialType models.SocialType, socialID string) (*Member, error) {
	var member Member
	err := s.db.Where("social_type = ? AND social_id = ? AND is_active = ?", string(socialType), socialID, true).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member by social id: %w", err)
	}
	return &member, nil
}

// UpdateRefreshToken зберігає новий refresh токен учасника,
// замінюючи попередній
func (s *memberService) UpdateRefreshToken(memberID, refreshToken string) error {
	result := s.db.Model(&Member{}).Where("id = ? AND is_active = ?", memberID, true).Updates(map[string]interface{}{
		"refresh_token": refreshToken,
		"updated_at":    time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update refresh token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// Authorize підвищує роль GUEST до USER.
// Перехід односторонній: учасник з роллю USER чи ADMIN не змінюється
func (s *memberService) Authorize(memberID string) error {
	result := s.db.Model(&Member{}).
		Where("id = ? AND role = ? AND is_active = ?", memberID, string(models.RoleGuest), true).
		Updates(map[string]interface{}{
			"role":       string(models.RoleUser),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to authorize member: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		logrus.WithField("member_id", memberID).Info("Member elevated from GUEST to USER")
	}

	return nil
}

// CreateFromOAuth створює нового учасника на основі даних від провайдера.
// Новий учасник отримує роль GUEST до першого зв'язування з акаунтом
func (s *memberService) CreateFromOAuth(info *ProviderUserInfo) (*Member, error) {
	member := Member{
		ID:         uuid.NewString(),
		Email:      info.Email,
		Name:       info.Nickname,
		ImageURL:   info.ImageURL,
		Role:       string(models.RoleGuest),
		SocialType: string(info.SocialType),
		SocialID:   info.ID,
		IsActive:   true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.db.Create(&member).Error; err != nil {
		return nil, fmt.Errorf("failed to create member from oauth: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"member_id":   member.ID,
		"social_type": member.SocialType,
	}).Info("Member created from OAuth provider")

	return &member, nil
}

// ListMembers повертає всіх активних учасників
func (s *memberService) ListMembers() ([]Member, error) {
	var members []Member
	if err := s.db.Where("is_active = ?", true).Order("created_at").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// DeactivateMember деактивує учасника (soft delete)
func (s *memberService) DeactivateMember(memberID string) error {
	result := s.db.Model(&Member{}).Where("id = ?", memberID).Updates(map[string]interface{}{
		"is_active":     false,
		"refresh_token": "",
		"updated_at":    time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}
