package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Member модель для міграції
type Member struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"index:idx_members_email,unique,where:email <> '';not null" json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	ImageURL     string    `json:"image_url"`
	Role         string    `gorm:"not null" json:"role"`
	SocialType   string    `gorm:"not null" json:"social_type"`
	SocialID     string    `gorm:"index" json:"social_id"`
	RefreshToken string    `gorm:"index" json:"-"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName явно задає ім'я таблиці для GORM
func (Member) TableName() string {
	return "members"
}

// CreateMembersTable створює таблицю members
func CreateMembersTable(tx *gorm.DB) error {
	return tx.AutoMigrate(&Member{})
}

// DropMembersTable видаляє таблицю members
func DropMembersTable(tx *gorm.DB) error {
	return tx.Migrator().DropTable("members")
}
